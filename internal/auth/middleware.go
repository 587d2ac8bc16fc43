package auth

import (
	"strings"

	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/response"
	"github.com/maintech/api/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// JWTProtected is tier one of the two-tier check: cryptographic validity
// only. It never touches the database.
func JWTProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Jeton d'authentification manquant")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return response.Unauthorized(c, "Format du jeton invalide")
		}

		userID, err := utils.ParseJWT(tokenParts[1])
		if err != nil {
			return response.Unauthorized(c, "Jeton invalide ou expiré")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// RoleProtected is tier two: current authority. The user and role are
// re-loaded from the database on every request, so a deleted account or a
// role change takes effect immediately despite stateless tokens.
func RoleProtected(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok {
			return response.Unauthorized(c, "Utilisateur non authentifié")
		}

		var u models.User
		if err := database.DB.Preload("Role").First(&u, userID).Error; err != nil {
			return response.Unauthorized(c, "Utilisateur introuvable")
		}

		for _, roleName := range allowedRoles {
			if u.Role != nil && u.Role.Name == roleName {
				c.Locals("user", &u)
				return c.Next()
			}
		}

		return response.Forbidden(c, "Accès refusé pour ce rôle")
	}
}
