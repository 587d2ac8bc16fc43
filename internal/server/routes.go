package server

import (
	"os"
	"time"

	"github.com/maintech/api/internal/auth"
	"github.com/maintech/api/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	frontendOrigin := os.Getenv("FRONTEND_URL")
	if frontendOrigin == "" {
		frontendOrigin = "http://localhost:3000"
	}

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     frontendOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "MainTech API is running",
		})
	})

	// ==========================================
	// AUTH (no authentication required)
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Post("/register", auth.RegisterHandler)
	authGroup.Post("/approve", auth.ApproveHandler)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.LoginHandler)
	authGroup.Get("/google", auth.GoogleLogin)
	authGroup.Get("/google/callback", auth.GoogleCallback)
	authGroup.Post("/forgot-password", auth.ForgotPasswordHandler)
	authGroup.Post("/reset-password", auth.ResetPasswordHandler)
	authGroup.Post("/refresh-token", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 5 * time.Minute,
	}), auth.RefreshHandler)
	authGroup.Post("/logout", auth.LogoutHandler)
	authGroup.Get("/profile", auth.JWTProtected(), auth.ProfileHandler)

	// ==========================================
	// USER MANAGEMENT (admin only)
	// ==========================================
	userGroup := app.Group("/users")
	userGroup.Use(auth.JWTProtected())
	userGroup.Use(auth.RoleProtected("admin"))
	userGroup.Post("/", user.CreateUserHandler)
	userGroup.Get("/", user.ListUsersHandler)
	userGroup.Get("/:id", user.GetUserHandler)
	userGroup.Put("/:id", user.UpdateUserHandler)
	userGroup.Delete("/:id", user.DeleteUserHandler)
	userGroup.Put("/:id/photo", user.UploadPhotoHandler)
}
