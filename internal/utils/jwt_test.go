package utils_test

import (
	"testing"
	"time"

	"github.com/maintech/api/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test_secret_key_minimum_32_characters_long_for_testing_only"

func TestComputeExpiry(t *testing.T) {
	t.Run("Minutes", func(t *testing.T) {
		exp, err := utils.ComputeExpiry(15, "minutes")
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 2*time.Second)
	})

	t.Run("Hours", func(t *testing.T) {
		exp, err := utils.ComputeExpiry(2, "hours")
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(2*time.Hour), exp, 2*time.Second)
	})

	t.Run("Days", func(t *testing.T) {
		exp, err := utils.ComputeExpiry(30, "days")
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), exp, 2*time.Second)
	})

	t.Run("Invalid unit", func(t *testing.T) {
		_, err := utils.ComputeExpiry(1, "weeks")
		assert.Error(t, err)
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, exp, err := utils.GenerateAccessToken(42, 3)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()), "Expiry should be in the future")

	userID, err := utils.ParseJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, exp, err := utils.GenerateRefreshToken(7)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now().Add(24*time.Hour)), "Refresh expiry should be days away")

	userID, err := utils.ParseJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestRefreshTokensAreUniquePerMint(t *testing.T) {
	// Two mints for the same user in the same second must still differ, or
	// their hashes would collide on the session table's unique index.
	first, _, err := utils.GenerateRefreshToken(1)
	assert.NoError(t, err)
	second, _, err := utils.GenerateRefreshToken(1)
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestParseJWTRejectsTampered(t *testing.T) {
	token, _, err := utils.GenerateAccessToken(1, 1)
	assert.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = utils.ParseJWT(tampered)
	assert.Error(t, err)
}

func TestParseJWTRejectsWrongKey(t *testing.T) {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := other.SignedString([]byte("another_secret_that_is_also_32_characters_long"))
	assert.NoError(t, err)

	_, err = utils.ParseJWT(signed)
	assert.Error(t, err)
}

func TestParseJWTRejectsExpired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	_, err = utils.ParseJWT(signed)
	assert.Error(t, err)
}
