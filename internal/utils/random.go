package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"math/big"
)

// GenerateApprovalCode returns a 6-digit numeric code, uniform in [100000, 999999].
func GenerateApprovalCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	code := n.Int64() + 100000
	return big.NewInt(code).String(), nil
}

// GenerateResetToken returns a high-entropy plaintext token and its SHA-256
// hash. Only the hash is ever persisted; the plaintext travels by email.
func GenerateResetToken() (string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	token := base64.URLEncoding.EncodeToString(b)
	return token, HashResetToken(token), nil
}

// HashResetToken recomputes the persisted hash of a presented reset token,
// letting the row be fetched by index instead of scanning every hash.
func HashResetToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.URLEncoding.EncodeToString(hash[:])
}

// HashToken is the lookup hash for refresh sessions.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
