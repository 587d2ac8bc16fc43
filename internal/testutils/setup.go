package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/role"
	"github.com/maintech/api/internal/server"
	"github.com/maintech/api/internal/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.ResetToken{},
		&models.RefreshSession{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

func SetupTestApp(t *testing.T) *fiber.App {
	db := TestDB(t)
	database.DB = db

	err := role.SeedDefaultRoles()
	assert.NoError(t, err, "Failed to seed roles")

	err = utils.InitLocalStorage()
	assert.NoError(t, err, "Failed to initialize storage")
	utils.SetStorageMode(true)

	app := server.New(db)
	return app
}

// CreateTestUser inserts an approved account directly, bypassing the
// register/approve round-trip.
func CreateTestUser(t *testing.T, db *gorm.DB, email, password, roleName string) *models.User {
	hashedPassword, _ := utils.HashPassword(password)

	var r models.Role
	if err := db.Where("name = ?", roleName).First(&r).Error; err != nil {
		t.Fatalf("Failed to find role %q: %v. Make sure SeedDefaultRoles was called.", roleName, err)
	}

	u := &models.User{
		Nom:        "Test",
		Prenom:     "User",
		Email:      email,
		Password:   hashedPassword,
		Provider:   "local",
		RoleID:     r.ID,
		IsApproved: true,
	}

	err := db.Create(u).Error
	assert.NoError(t, err, "Failed to create test user")

	db.Preload("Role").First(u, u.ID)

	if u.Role == nil {
		t.Fatal("Role not loaded for user")
	}

	return u
}

func GetAuthToken(t *testing.T, u *models.User) string {
	token, _, err := utils.GenerateAccessToken(u.ID, u.RoleID)
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	return MakeRequestWithCookies(app, method, url, body, token, nil)
}

// MakeRequestWithCookies attaches cookies to the request, which the refresh
// and logout flows rely on.
func MakeRequestWithCookies(app *fiber.App, method, url string, body interface{}, token string, cookies map[string]string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	for k, v := range resp.Header {
		for _, val := range v {
			rec.Header().Add(k, val)
		}
	}

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	if result.Error != nil {
		assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
	}
}

func MakeMultipartRequestWithFile(app *fiber.App, method, url string, fields map[string]string, files map[string][]byte, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}

	for fieldName, fileContent := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fieldName+".jpg"))
		h.Set("Content-Type", "image/jpeg")
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		part.Write(fileContent)
	}

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func MakeRedirectRequest(app *fiber.App, method, url string, token string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(method, url, nil)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	for k, v := range resp.Header {
		for _, val := range v {
			rec.Header().Add(k, val)
		}
	}

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}
