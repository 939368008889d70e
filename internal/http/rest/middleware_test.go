package rest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit/reportit_api/config"
)

const testSecret = "test-secret"

func testAPI() *API {
	return &API{Config: &config.Config{JwtSecret: testSecret}}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	api := testAPI()
	userID := uuid.New().String()
	exp := time.Now().Add(time.Hour).Unix()

	token := signToken(t, jwt.MapClaims{
		"typ": "access",
		"sub": userID,
		"exp": exp,
	})

	claims, err := api.verifyToken(token, false)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, exp, claims.Exp)
}

func TestVerifyTokenMissingExpiry(t *testing.T) {
	api := testAPI()

	token := signToken(t, jwt.MapClaims{
		"typ": "access",
		"sub": uuid.New().String(),
	})

	_, err := api.verifyToken(token, false)
	assert.Error(t, err)
}

func TestVerifyTokenWrongType(t *testing.T) {
	api := testAPI()

	token := signToken(t, jwt.MapClaims{
		"typ": "refresh",
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := api.verifyToken(token, false)
	assert.Error(t, err)
}
