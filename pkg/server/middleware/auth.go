package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/qtherapy/report-engine/pkg/models/api"
	"github.com/qtherapy/report-engine/pkg/models/domain"
)

// Auth enforces the bearer-token precondition. Requests without a
// valid token are rejected with the unauthenticated error kind and
// never reach the pipeline.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token, err := bearerToken(req)
			if err != nil {
				unauthenticated(w, req, err)
				return
			}

			_, err = jwt.Parse(token, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil {
				unauthenticated(w, req, err)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

// DevAuth passes every request through. Local development only.
func DevAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

func bearerToken(req *http.Request) (string, error) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", fmt.Errorf("malformed Authorization header")
	}
	return token, nil
}

func unauthenticated(w http.ResponseWriter, req *http.Request, err error) {
	zerolog.Ctx(req.Context()).Warn().Err(err).Msg("rejected unauthenticated request")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: api.APIError{
			Kind:    string(domain.KindUnauthenticated),
			Message: "a valid bearer token is required",
		},
	})
}
