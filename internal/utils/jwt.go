package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var jwtKey []byte

var (
	accessTTLMinutes = 15
	refreshTTLDays   = 30
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Default().Println("No .env file found")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "test_secret_key_minimum_32_characters_long_for_testing_only"
	}
	jwtKey = []byte(secret)

	if v := os.Getenv("ACCESS_TOKEN_TTL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			accessTTLMinutes = n
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			refreshTTLDays = n
		}
	}
}

func ValidateJWTSecret() error {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}

	if secret == "test_secret_key_minimum_32_characters_long_for_testing_only" {
		return fmt.Errorf("cannot use default test secret in production")
	}

	return nil
}

// ComputeExpiry converts a relative TTL into an absolute expiry time.
// unit must be one of "minutes", "hours" or "days".
func ComputeExpiry(amount int, unit string) (time.Time, error) {
	switch unit {
	case "minutes":
		return time.Now().Add(time.Duration(amount) * time.Minute), nil
	case "hours":
		return time.Now().Add(time.Duration(amount) * time.Hour), nil
	case "days":
		return time.Now().Add(time.Duration(amount) * 24 * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("invalid expiry unit: %q", unit)
	}
}

// GenerateAccessToken signs a short-lived token carrying the user id and role id.
func GenerateAccessToken(userID uint, roleID uint) (string, time.Time, error) {
	exp, err := ComputeExpiry(accessTTLMinutes, "minutes")
	if err != nil {
		return "", time.Time{}, err
	}

	claims := jwt.MapClaims{
		"sub":     strconv.Itoa(int(userID)),
		"role_id": roleID,
		"exp":     exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// GenerateRefreshToken signs a long-lived token carrying the user id and a
// unique jti. The jti keeps every mint distinct: exp has second granularity,
// and two same-second tokens would otherwise be byte-identical and collide on
// the session table's hash index. Callers persist the hash as a RefreshSession;
// the token itself stays client-side.
func GenerateRefreshToken(userID uint) (string, time.Time, error) {
	exp, err := ComputeExpiry(refreshTTLDays, "days")
	if err != nil {
		return "", time.Time{}, err
	}

	claims := jwt.MapClaims{
		"sub": strconv.Itoa(int(userID)),
		"jti": uuid.NewString(),
		"exp": exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseJWT verifies signature and expiry and returns the embedded user id.
// It is stateless on purpose: current authority is re-checked against the
// database by the middleware, never inferred from the claims alone.
func ParseJWT(tokenStr string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}
