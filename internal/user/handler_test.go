package user_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/maintech/api/internal/auth"
	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/testutils"

	"github.com/stretchr/testify/assert"
)

func TestCreateUserHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@example.com", "Secret123!", "admin")
	adminToken := testutils.GetAuthToken(t, admin)

	t.Run("Success - Admin-created account skips approval", func(t *testing.T) {
		body := map[string]interface{}{
			"nom":        "Petit",
			"prenom":     "Marc",
			"email":      "marc@example.com",
			"motDePasse": "Secret123!",
			"role":       "magasinier",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users/", body, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var u models.User
		database.DB.Where("email = ?", "marc@example.com").First(&u)
		assert.True(t, u.IsApproved)
		assert.Empty(t, u.ApprovalCode)
	})

	t.Run("Error - Duplicate email", func(t *testing.T) {
		body := map[string]interface{}{
			"nom":        "Petit",
			"prenom":     "Marc",
			"email":      "marc@example.com",
			"motDePasse": "Secret123!",
			"role":       "magasinier",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users/", body, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)

		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Error - Unknown role", func(t *testing.T) {
		body := map[string]interface{}{
			"nom":        "Petit",
			"prenom":     "Paul",
			"email":      "paul@example.com",
			"motDePasse": "Secret123!",
			"role":       "stagiaire",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users/", body, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Error - Non-admin caller", func(t *testing.T) {
		tech := testutils.CreateTestUser(t, database.DB, "tech@example.com", "Secret123!", "technicien")
		techToken := testutils.GetAuthToken(t, tech)

		resp, err := testutils.MakeRequest(app, "POST", "/users/", nil, techToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}

func TestListAndGetUserHandlers(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@example.com", "Secret123!", "admin")
	other := testutils.CreateTestUser(t, database.DB, "other@example.com", "Secret123!", "operateur")
	adminToken := testutils.GetAuthToken(t, admin)

	t.Run("Success - List", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/users/", nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		users := result.Data.([]interface{})
		assert.Len(t, users, 2)
	})

	t.Run("Success - Get by id", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", fmt.Sprintf("/users/%d", other.ID), nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "other@example.com", data["email"])
		assert.Nil(t, data["password"])
	})

	t.Run("Error - Unknown id", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/users/9999", nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}

func TestUpdateUserHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@example.com", "Secret123!", "admin")
	target := testutils.CreateTestUser(t, database.DB, "target@example.com", "Secret123!", "operateur")
	taken := testutils.CreateTestUser(t, database.DB, "taken@example.com", "Secret123!", "operateur")
	adminToken := testutils.GetAuthToken(t, admin)

	t.Run("Success - Promote to another role", func(t *testing.T) {
		body := map[string]interface{}{
			"role": "responsable",
		}

		resp, err := testutils.MakeRequest(app, "PUT", fmt.Sprintf("/users/%d", target.ID), body, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var u models.User
		database.DB.Preload("Role").First(&u, target.ID)
		assert.Equal(t, "responsable", u.Role.Name)
	})

	t.Run("Error - Email already taken", func(t *testing.T) {
		body := map[string]interface{}{
			"email": taken.Email,
		}

		resp, err := testutils.MakeRequest(app, "PUT", fmt.Sprintf("/users/%d", target.ID), body, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
	})

	t.Run("Error - Unknown role", func(t *testing.T) {
		body := map[string]interface{}{
			"role": "patron",
		}

		resp, err := testutils.MakeRequest(app, "PUT", fmt.Sprintf("/users/%d", target.ID), body, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@example.com", "Secret123!", "admin")
	victim := testutils.CreateTestUser(t, database.DB, "victim@example.com", "Secret123!", "technicien")
	adminToken := testutils.GetAuthToken(t, admin)

	_, refreshToken, err := auth.IssueTokens(victim, "victim-device")
	assert.NoError(t, err)

	t.Run("Error - Cannot delete own account", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "DELETE", fmt.Sprintf("/users/%d", admin.ID), nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Success - Hard delete removes sessions too", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "DELETE", fmt.Sprintf("/users/%d", victim.ID), nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		var count int64
		database.DB.Model(&models.User{}).Where("id = ?", victim.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		database.DB.Model(&models.RefreshSession{}).Where("user_id = ?", victim.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		// The orphaned refresh token is useless now.
		refreshResp, err := testutils.MakeRequestWithCookies(app, "POST", "/auth/refresh-token", nil, "",
			map[string]string{"jwt": refreshToken})
		assert.NoError(t, err)
		assert.Equal(t, 403, refreshResp.Code)
	})

	t.Run("Error - Already gone", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "DELETE", fmt.Sprintf("/users/%d", victim.ID), nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}

func TestUploadPhotoHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@example.com", "Secret123!", "admin")
	target := testutils.CreateTestUser(t, database.DB, "photo@example.com", "Secret123!", "operateur")
	adminToken := testutils.GetAuthToken(t, admin)

	t.Run("Success - Upload sets the profile path", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequestWithFile(app, "PUT",
			fmt.Sprintf("/users/%d/photo", target.ID),
			nil,
			map[string][]byte{"photo": []byte("fake-jpeg-bytes")},
			adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var u models.User
		database.DB.First(&u, target.ID)
		assert.True(t, strings.HasPrefix(u.Profile, "/uploads/profiles/"), "got %q", u.Profile)
	})

	t.Run("Error - Missing file", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "PUT",
			fmt.Sprintf("/users/%d/photo", target.ID), nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Error - Unknown user", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequestWithFile(app, "PUT", "/users/9999/photo",
			nil,
			map[string][]byte{"photo": []byte("fake-jpeg-bytes")},
			adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}
