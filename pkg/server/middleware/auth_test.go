package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtherapy/report-engine/pkg/models/api"
)

func signedToken(t *testing.T, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "therapist-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func authedServer(secret []byte) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Auth(secret)(ok)
}

func TestAuth_ValidToken(t *testing.T) {
	secret := []byte("s3cret")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, secret))
	rec := httptest.NewRecorder()

	authedServer(secret).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)
	rec := httptest.NewRecorder()

	authedServer([]byte("s3cret")).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unauthenticated", resp.Error.Kind)
	assert.False(t, resp.Success)
}

func TestAuth_WrongSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, []byte("other")))
	rec := httptest.NewRecorder()

	authedServer([]byte("s3cret")).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	authedServer([]byte("s3cret")).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDevAuth_PassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)
	rec := httptest.NewRecorder()
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	DevAuth()(ok).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
