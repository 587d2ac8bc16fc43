package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/role"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Federated accounts carry this sentinel instead of a hash. It is not valid
// bcrypt output, so password login can never succeed against it.
const federatedPasswordSentinel = "federated-login"

// googleOauthConfig is built per call so the client id/secret are read after
// godotenv has loaded, not frozen at package init.
func googleOauthConfig() *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  getEnvOr("GOOGLE_CALLBACK_URL", "http://localhost:8080/auth/google/callback"),
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func frontendURL() string {
	return getEnvOr("FRONTEND_URL", "http://localhost:3000")
}

var (
	stateStore = make(map[string]time.Time)
	stateMutex sync.RWMutex
)

func generateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func storeState(state string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	stateStore[state] = time.Now().Add(5 * time.Minute)

	for k, v := range stateStore {
		if time.Now().After(v) {
			delete(stateStore, k)
		}
	}
}

func validateState(state string) bool {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	expiry, exists := stateStore[state]
	if !exists || time.Now().After(expiry) {
		return false
	}
	delete(stateStore, state)
	return true
}

func GoogleLogin(c *fiber.Ctx) error {
	state := generateState()
	storeState(state)
	url := googleOauthConfig().AuthCodeURL(state)
	return c.Redirect(url)
}

// GoogleCallback finishes the authorization-code flow. Failures redirect to
// the frontend with a discriminated ?error= flag: mid-redirect the user agent
// cannot process a JSON error body.
func GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if !validateState(state) {
		return c.Redirect(frontendURL() + "/login?error=auth_failed")
	}

	if c.Query("error") != "" {
		return c.Redirect(frontendURL() + "/login?error=auth_failed")
	}

	cfg := googleOauthConfig()

	token, err := cfg.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		return c.Redirect(frontendURL() + "/login?error=auth_failed")
	}

	client := cfg.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return c.Redirect(frontendURL() + "/login?error=auth_failed")
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var profile struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(data, &profile); err != nil || profile.Email == "" {
		return c.Redirect(frontendURL() + "/login?error=user_not_found")
	}

	var u models.User
	err = database.DB.Where("email = ?", profile.Email).First(&u).Error
	if err != nil {
		// First federated login: the identity is provider-verified, so the
		// account is provisioned pre-approved with the default role.
		r, err := role.GetByName("operateur")
		if err != nil {
			return c.Redirect(frontendURL() + "/login?error=auth_failed")
		}

		u = models.User{
			Nom:        profile.FamilyName,
			Prenom:     profile.GivenName,
			Email:      profile.Email,
			Password:   federatedPasswordSentinel,
			Provider:   "google",
			RoleID:     r.ID,
			IsApproved: true,
		}
		if err := database.DB.Create(&u).Error; err != nil {
			return c.Redirect(frontendURL() + "/login?error=auth_failed")
		}
	}

	database.DB.Preload("Role").First(&u, u.ID)

	accessToken, refreshToken, err := IssueTokens(&u, c.Get("User-Agent"))
	if err != nil {
		return c.Redirect(frontendURL() + "/login?error=auth_failed")
	}

	// Token delivery happens through cookies because this is the tail of a
	// redirect chain. Cookie lifetimes are independent of the JWT exp claims:
	// an expired access token inside a live cookie still fails verification.
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		SameSite: "Lax",
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})

	return c.Redirect(frontendURL() + DashboardRoute(u.Role.Name))
}
