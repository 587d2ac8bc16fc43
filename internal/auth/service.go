package auth

import (
	"errors"
	"time"

	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/role"
	"github.com/maintech/api/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email déjà utilisé")
	ErrUserNotFound       = errors.New("utilisateur introuvable")
	ErrInvalidCredentials = errors.New("email ou mot de passe incorrect")
	ErrNotApproved        = errors.New("compte non activé")
	ErrInvalidCode        = errors.New("code d'activation invalide")
	ErrInvalidRole        = errors.New("rôle inconnu")
	ErrInvalidRefresh     = errors.New("jeton de rafraîchissement invalide")
)

// RegisterUser creates an unapproved account carrying a one-time 6-digit
// approval code. The caller emails the code; delivery failure does not roll
// the account back.
func RegisterUser(nom, prenom, email, password, roleName string) (*models.User, error) {
	if !role.IsValid(roleName) {
		return nil, ErrInvalidRole
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateApprovalCode()
	if err != nil {
		return nil, err
	}

	r, err := role.GetByName(roleName)
	if err != nil {
		return nil, ErrInvalidRole
	}

	u := models.User{
		Nom:          nom,
		Prenom:       prenom,
		Email:        email,
		Password:     hashedPassword,
		Provider:     "local",
		RoleID:       r.ID,
		IsApproved:   false,
		ApprovalCode: code,
	}

	// The unique index on email is the arbiter: a pre-lookup would race with
	// a concurrent registration and surface the loser as a 500.
	if err := database.DB.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	database.DB.Preload("Role").First(&u, u.ID)
	return &u, nil
}

// ApproveUser activates an account on exact match of the stored code and
// clears the code so it can never be replayed.
func ApproveUser(email, code string) error {
	var u models.User
	if err := database.DB.Where("email = ?", email).First(&u).Error; err != nil {
		return ErrUserNotFound
	}

	if u.ApprovalCode == "" || u.ApprovalCode != code {
		return ErrInvalidCode
	}

	u.IsApproved = true
	u.ApprovalCode = ""
	return database.DB.Save(&u).Error
}

// LoginUser verifies the credential pair and, for approved accounts only,
// issues a token pair. Unapproved accounts are rejected outright: the
// approval flag exists to gate access, password login is no exception.
func LoginUser(email, password, deviceInfo string) (string, string, *models.User, error) {
	var u models.User
	if err := database.DB.Preload("Role").Where("email = ?", email).First(&u).Error; err != nil {
		return "", "", nil, ErrUserNotFound
	}

	if !utils.CheckPasswordHash(password, u.Password) {
		return "", "", nil, ErrInvalidCredentials
	}

	if !u.IsApproved {
		return "", "", nil, ErrNotApproved
	}

	accessToken, refreshToken, err := IssueTokens(&u, deviceInfo)
	if err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, &u, nil
}

// IssueTokens signs an access/refresh pair and records the refresh token as a
// live session row. Sessions are keyed per device: issuing a new pair never
// evicts another device's session.
func IssueTokens(u *models.User, deviceInfo string) (string, string, error) {
	accessToken, _, err := utils.GenerateAccessToken(u.ID, u.RoleID)
	if err != nil {
		return "", "", err
	}

	refreshToken, refreshExp, err := utils.GenerateRefreshToken(u.ID)
	if err != nil {
		return "", "", err
	}

	session := models.RefreshSession{
		UserID:     u.ID,
		TokenHash:  utils.HashToken(refreshToken),
		DeviceInfo: deviceInfo,
		ExpiresAt:  refreshExp,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// RefreshAccess exchanges a refresh token for a new access token. The token
// must both verify cryptographically and match a live session row — a revoked
// or unknown token is rejected even with a valid signature.
func RefreshAccess(refreshToken string) (string, time.Time, error) {
	userID, err := utils.ParseJWT(refreshToken)
	if err != nil {
		return "", time.Time{}, ErrInvalidRefresh
	}

	var session models.RefreshSession
	err = database.DB.
		Where("token_hash = ? AND revoked = ? AND expires_at > ?",
			utils.HashToken(refreshToken), false, time.Now()).
		First(&session).Error
	if err != nil || session.UserID != userID {
		return "", time.Time{}, ErrInvalidRefresh
	}

	var u models.User
	if err := database.DB.First(&u, session.UserID).Error; err != nil {
		return "", time.Time{}, ErrUserNotFound
	}

	accessToken, exp, err := utils.GenerateAccessToken(u.ID, u.RoleID)
	if err != nil {
		return "", time.Time{}, err
	}

	return accessToken, exp, nil
}

// RevokeRefreshSession invalidates the session behind a presented refresh
// token. Unknown tokens are a no-op so logout stays idempotent.
func RevokeRefreshSession(refreshToken string) {
	database.DB.Model(&models.RefreshSession{}).
		Where("token_hash = ?", utils.HashToken(refreshToken)).
		Update("revoked", true)
}

// RevokeAllSessions drops every refresh session of a user. Used on hard delete.
func RevokeAllSessions(userID uint) {
	database.DB.Where("user_id = ?", userID).Delete(&models.RefreshSession{})
}

// DashboardRoute maps a role to its landing page. The switch is exhaustive
// over the seeded role set with an explicit fallback.
func DashboardRoute(roleName string) string {
	switch roleName {
	case "operateur":
		return "/operateur/pannes"
	case "technicien":
		return "/technicien/taches"
	case "magasinier":
		return "/magasinier/demandes"
	case "responsable":
		return "/responsable/planning"
	case "admin":
		return "/admin/utilisateurs"
	default:
		return "/dashboard"
	}
}
