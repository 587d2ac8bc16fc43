package response

import (
	"github.com/gofiber/fiber/v2"
)

// StandardResponse is the envelope for every JSON reply. Error.Code is the
// stable machine-readable discriminator; Message stays human-readable (French).
type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusCreated).JSON(StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func Error(c *fiber.Ctx, statusCode int, errorCode string, message string, details interface{}) error {
	return c.Status(statusCode).JSON(StandardResponse{
		Success: false,
		Error: &ErrorDetail{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
	})
}

func BadRequest(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusBadRequest, "BAD_REQUEST", message, details)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, "FORBIDDEN", message, nil)
}

// NotApproved is a 403 distinct from Forbidden: the account exists and the
// credentials are right, but the approval code was never confirmed.
func NotApproved(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, "NOT_APPROVED", message, nil)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, "NOT_FOUND", message, nil)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, "CONFLICT", message, nil)
}

func ValidationError(c *fiber.Ctx, errors interface{}) error {
	return Error(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "Champs invalides", errors)
}

func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}
