package server_test

import (
	"net/http/httptest"
	"os"
	"testing"

	"github.com/maintech/api/internal/testutils"

	"github.com/stretchr/testify/assert"
)

func TestCORSUsesConfiguredFrontendOrigin(t *testing.T) {
	origin := "https://maintech.example.com"
	os.Setenv("FRONTEND_URL", origin)
	defer os.Unsetenv("FRONTEND_URL")

	app := testutils.SetupTestApp(t)

	req := httptest.NewRequest("OPTIONS", "/health", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
