package testutil

import (
	"time"

	"civitas/api_governance/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTestHelper provides utilities for JWT testing
type JWTTestHelper struct {
	Secret []byte
}

// NewJWTTestHelper creates a new JWT test helper with a default test secret
func NewJWTTestHelper() *JWTTestHelper {
	return &JWTTestHelper{
		Secret: []byte("test-secret-for-unit-tests"),
	}
}

// NewJWTTestHelperWithSecret creates a new JWT test helper with a custom secret
func NewJWTTestHelperWithSecret(secret []byte) *JWTTestHelper {
	return &JWTTestHelper{
		Secret: secret,
	}
}

// GenerateValidJWT generates a valid JWT token for testing
func (h *JWTTestHelper) GenerateValidJWT(userID, email, role string) (string, error) {
	return auth.GenerateJWT(userID, email, role, h.Secret)
}

// GenerateExpiredJWT generates an expired JWT token for testing
func (h *JWTTestHelper) GenerateExpiredJWT(userID, email, role string) (string, error) {
	claims := &auth.Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.Secret)
}

// GenerateJWTWithCustomExpiry generates a JWT with custom expiry time
func (h *JWTTestHelper) GenerateJWTWithCustomExpiry(userID, email, role string, expiresAt time.Time) (string, error) {
	claims := &auth.Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.Secret)
}

// GenerateMalformedJWT generates a malformed JWT for testing error scenarios
func (h *JWTTestHelper) GenerateMalformedJWT() string {
	return "invalid.jwt.token.format"
}

// GenerateJWTWithWrongSecret generates a JWT signed with a different secret
func (h *JWTTestHelper) GenerateJWTWithWrongSecret(userID, email, role string) (string, error) {
	wrongSecret := []byte("wrong-secret")
	return auth.GenerateJWT(userID, email, role, wrongSecret)
}
