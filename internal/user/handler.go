package user

import (
	"errors"

	"github.com/maintech/api/internal/auth"
	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/response"
	"github.com/maintech/api/internal/role"
	"github.com/maintech/api/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var namePolicy = bluemonday.StrictPolicy()

// CreateUserHandler provisions an account directly. Admin-created accounts
// skip the approval round-trip.
func CreateUserHandler(c *fiber.Ctx) error {
	var body struct {
		Nom        string `json:"nom"`
		Prenom     string `json:"prenom"`
		Email      string `json:"email"`
		MotDePasse string `json:"motDePasse"`
		Role       string `json:"role"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Requête invalide", err.Error())
	}

	if body.Nom == "" || body.Prenom == "" || body.Email == "" || body.MotDePasse == "" || body.Role == "" {
		return response.ValidationError(c, map[string]string{
			"nom":        "nom requis",
			"prenom":     "prénom requis",
			"email":      "email requis",
			"motDePasse": "mot de passe requis",
			"role":       "rôle requis",
		})
	}

	if !role.IsValid(body.Role) {
		return response.BadRequest(c, "Rôle inconnu", nil)
	}

	hashedPassword, err := utils.HashPassword(body.MotDePasse)
	if err != nil {
		return response.InternalError(c, "Échec du hachage du mot de passe")
	}

	r, err := role.GetByName(body.Role)
	if err != nil {
		return response.BadRequest(c, "Rôle inconnu", nil)
	}

	u := models.User{
		Nom:        namePolicy.Sanitize(body.Nom),
		Prenom:     namePolicy.Sanitize(body.Prenom),
		Email:      body.Email,
		Password:   hashedPassword,
		Provider:   "local",
		RoleID:     r.ID,
		IsApproved: true,
	}

	if err := database.DB.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "Email déjà utilisé")
		}
		return response.InternalError(c, "Échec de la création de l'utilisateur")
	}

	database.DB.Preload("Role").First(&u, u.ID)

	return response.Created(c, u, "Utilisateur créé")
}

func ListUsersHandler(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Preload("Role").Find(&users).Error; err != nil {
		return response.InternalError(c, "Échec de la récupération des utilisateurs")
	}

	return response.Success(c, users, "Utilisateurs récupérés")
}

func GetUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Identifiant invalide", nil)
	}

	var u models.User
	if err := database.DB.Preload("Role").First(&u, id).Error; err != nil {
		return response.NotFound(c, "Utilisateur introuvable")
	}

	return response.Success(c, u, "Utilisateur récupéré")
}

func UpdateUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Identifiant invalide", nil)
	}

	var body struct {
		Nom    string `json:"nom"`
		Prenom string `json:"prenom"`
		Email  string `json:"email"`
		Role   string `json:"role"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Requête invalide", err.Error())
	}

	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return response.NotFound(c, "Utilisateur introuvable")
	}

	if body.Email != "" {
		u.Email = body.Email
	}

	if body.Nom != "" {
		u.Nom = namePolicy.Sanitize(body.Nom)
	}
	if body.Prenom != "" {
		u.Prenom = namePolicy.Sanitize(body.Prenom)
	}

	if body.Role != "" {
		r, err := role.GetByName(body.Role)
		if err != nil {
			return response.BadRequest(c, "Rôle inconnu", nil)
		}
		u.RoleID = r.ID
	}

	if err := database.DB.Save(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "Email déjà utilisé")
		}
		return response.InternalError(c, "Échec de la mise à jour de l'utilisateur")
	}

	database.DB.Preload("Role").First(&u, u.ID)

	return response.Success(c, u, "Utilisateur mis à jour")
}

// DeleteUserHandler hard-deletes an account. Refresh sessions, reset tokens
// and the stored profile image go with it, which is what makes
// revocation-by-deletion effective despite stateless access tokens.
func DeleteUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Identifiant invalide", nil)
	}

	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return response.NotFound(c, "Utilisateur introuvable")
	}

	currentUserID := c.Locals("user_id").(uint)
	if uint(id) == currentUserID {
		return response.BadRequest(c, "Impossible de supprimer son propre compte", nil)
	}

	auth.RevokeAllSessions(u.ID)
	database.DB.Where("user_id = ?", u.ID).Delete(&models.ResetToken{})

	if u.Profile != "" {
		_ = utils.DeleteProfileImage(u.Profile)
	}

	if err := database.DB.Delete(&u).Error; err != nil {
		return response.InternalError(c, "Échec de la suppression de l'utilisateur")
	}

	return response.NoContent(c)
}

// UploadPhotoHandler replaces a user's profile image.
func UploadPhotoHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Identifiant invalide", nil)
	}

	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return response.NotFound(c, "Utilisateur introuvable")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return response.BadRequest(c, "Photo manquante", nil)
	}

	path, err := utils.UploadProfileImage(file)
	if err != nil {
		return response.BadRequest(c, "Échec de l'envoi de la photo", err.Error())
	}

	if u.Profile != "" {
		_ = utils.DeleteProfileImage(u.Profile)
	}

	u.Profile = path
	if err := database.DB.Save(&u).Error; err != nil {
		return response.InternalError(c, "Échec de la mise à jour du profil")
	}

	return response.Success(c, fiber.Map{"profile": path}, "Photo de profil mise à jour")
}
