package auth

import (
	"errors"
	"time"

	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/mailer"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/response"
	"github.com/maintech/api/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

// Mail is wired by main; when nil (unit tests) the out-of-band emails are skipped.
var Mail *mailer.Mailer

// Display names come straight from user input and end up in dashboards and
// emails, so they are stripped of any markup before persistence.
var namePolicy = bluemonday.StrictPolicy()

const refreshCookieName = "jwt"

func RegisterHandler(c *fiber.Ctx) error {
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

	u, err := RegisterUser(
		namePolicy.Sanitize(body.Nom),
		namePolicy.Sanitize(body.Prenom),
		body.Email,
		body.MotDePasse,
		body.Role,
	)
	switch {
	case errors.Is(err, ErrEmailTaken):
		return response.Conflict(c, "Email déjà utilisé")
	case errors.Is(err, ErrInvalidRole):
		return response.BadRequest(c, "Rôle inconnu", nil)
	case err != nil:
		return response.InternalError(c, "Échec de la création du compte")
	}

	if Mail != nil {
		Mail.SendApprovalCode(u.Email, u.Prenom, u.ApprovalCode)
	}

	u.ApprovalCode = ""
	return response.Created(c, u, "Compte créé, un code d'activation a été envoyé par email")
}

func ApproveHandler(c *fiber.Ctx) error {
	var body struct {
		Email        string `json:"email"`
		ApprovalCode string `json:"approvalCode"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Requête invalide", err.Error())
	}

	if body.Email == "" || body.ApprovalCode == "" {
		return response.ValidationError(c, map[string]string{
			"email":        "email requis",
			"approvalCode": "code requis",
		})
	}

	err := ApproveUser(body.Email, body.ApprovalCode)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return response.NotFound(c, "Utilisateur introuvable")
	case errors.Is(err, ErrInvalidCode):
		return response.BadRequest(c, "Code d'activation invalide", nil)
	case err != nil:
		return response.InternalError(c, "Échec de l'activation du compte")
	}

	return response.Success(c, nil, "Compte activé")
}

func LoginHandler(c *fiber.Ctx) error {
	var body struct {
		Email      string `json:"email"`
		MotDePasse string `json:"motDePasse"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Requête invalide", err.Error())
	}

	if body.Email == "" || body.MotDePasse == "" {
		return response.ValidationError(c, map[string]string{
			"email":      "email requis",
			"motDePasse": "mot de passe requis",
		})
	}

	accessToken, refreshToken, u, err := LoginUser(body.Email, body.MotDePasse, c.Get("User-Agent"))
	switch {
	case errors.Is(err, ErrUserNotFound):
		return response.NotFound(c, "Utilisateur introuvable")
	case errors.Is(err, ErrInvalidCredentials):
		return response.Unauthorized(c, "Email ou mot de passe incorrect")
	case errors.Is(err, ErrNotApproved):
		return response.NotApproved(c, "Compte non activé, vérifiez votre email")
	case err != nil:
		return response.InternalError(c, "Échec de la connexion")
	}

	setRefreshCookie(c, refreshToken)

	return response.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          u,
		"redirect":      DashboardRoute(u.Role.Name),
	}, "Connexion réussie")
}

// RefreshHandler exchanges the refresh cookie for a new access token. The
// refresh token itself is not rotated on this path.
func RefreshHandler(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return response.Unauthorized(c, "Jeton de rafraîchissement manquant")
	}

	accessToken, exp, err := RefreshAccess(refreshToken)
	if err != nil {
		return response.Forbidden(c, "Jeton de rafraîchissement invalide")
	}

	return response.Success(c, fiber.Map{
		"access_token": accessToken,
		"expires_at":   exp.Unix(),
	}, "Jeton renouvelé")
}

func LogoutHandler(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.BodyParser(&body)
		refreshToken = body.RefreshToken
	}

	if refreshToken != "" {
		RevokeRefreshSession(refreshToken)
	}

	clearRefreshCookie(c)
	return response.Success(c, nil, "Déconnexion réussie")
}

func ForgotPasswordHandler(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Requête invalide", err.Error())
	}

	if body.Email == "" {
		return response.ValidationError(c, map[string]string{
			"email": "email requis",
		})
	}

	var u models.User
	if err := database.DB.Where("email = ?", body.Email).First(&u).Error; err != nil {
		return response.NotFound(c, "Utilisateur introuvable")
	}

	plainToken, tokenHash, err := utils.GenerateResetToken()
	if err != nil {
		return response.InternalError(c, "Échec de la génération du jeton")
	}

	reset := models.ResetToken{
		UserID:    u.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		return response.InternalError(c, "Échec de l'enregistrement du jeton")
	}

	if Mail != nil {
		Mail.SendResetLink(u.Email, plainToken)
	}

	return response.Success(c, nil, "Un lien de réinitialisation a été envoyé par email")
}

func ResetPasswordHandler(c *fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Requête invalide", err.Error())
	}

	if body.Token == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"token":    "jeton requis",
			"password": "mot de passe requis",
		})
	}

	var reset models.ResetToken
	if err := database.DB.Where("token_hash = ?", utils.HashResetToken(body.Token)).First(&reset).Error; err != nil {
		return response.BadRequest(c, "Jeton invalide ou expiré", nil)
	}

	if reset.ExpiresAt.Before(time.Now()) {
		database.DB.Delete(&reset)
		return response.BadRequest(c, "Jeton invalide ou expiré", nil)
	}

	var u models.User
	if err := database.DB.First(&u, reset.UserID).Error; err != nil {
		return response.NotFound(c, "Utilisateur introuvable")
	}

	hashedPassword, err := utils.HashPassword(body.Password)
	if err != nil {
		return response.InternalError(c, "Échec du hachage du mot de passe")
	}

	u.Password = hashedPassword
	if err := database.DB.Save(&u).Error; err != nil {
		return response.InternalError(c, "Échec de la mise à jour du mot de passe")
	}

	// One-time semantics: the consumed token goes away, sibling tokens stay valid.
	database.DB.Delete(&reset)

	return response.Success(c, nil, "Mot de passe réinitialisé")
}

// ProfileHandler returns the public-safe projection of the bearer's account.
func ProfileHandler(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return response.Unauthorized(c, "Utilisateur non authentifié")
	}

	var u models.User
	if err := database.DB.Preload("Role").First(&u, userID).Error; err != nil {
		return response.NotFound(c, "Utilisateur introuvable")
	}

	return response.Success(c, u, "Profil récupéré")
}

func setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
	})
}
