package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qtherapy/report-engine/pkg/models/api"
	"github.com/qtherapy/report-engine/pkg/models/domain"
	enginemiddleware "github.com/qtherapy/report-engine/pkg/server/middleware"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.ReportRequest) (*domain.ReportArtifact, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportArtifact), args.Error(1)
}

func newTestServer(t *testing.T, gen *mockGenerator, secret []byte) *httptest.Server {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	router := ConfigureRouter(logger, Config{
		Addr:            ":0",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Generator:      gen,
			AuthMiddleware: enginemiddleware.Auth(secret),
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func bearer(t *testing.T, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "therapist-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return "Bearer " + s
}

func TestWebAPI_ReportEndpoint(t *testing.T) {
	secret := []byte("s3cret")
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(&domain.ReportArtifact{
		Bytes:    []byte("%PDF-1.4"),
		Filename: "relatorio_quantico_Maria_Silva_2026-08-31.pdf",
	}, nil)

	srv := newTestServer(t, gen, secret)

	body, _ := json.Marshal(api.ReportRequest{PatientName: "Maria Silva"})
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/reports", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", bearer(t, secret))

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ReportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.PDF)
	gen.AssertExpectations(t)
}

func TestWebAPI_RejectsMissingToken(t *testing.T) {
	gen := new(mockGenerator)
	srv := newTestServer(t, gen, []byte("s3cret"))

	resp, err := srv.Client().Post(srv.URL+"/api/v1/reports", "application/json", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)

	var out api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "unauthenticated", out.Error.Kind)
}

func TestWebAPI_Healthz(t *testing.T) {
	srv := newTestServer(t, new(mockGenerator), []byte("s3cret"))

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewWebAPI_ShutdownTimeout(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	deps := Dependencies{
		Generator:      new(mockGenerator),
		AuthMiddleware: enginemiddleware.DevAuth(),
	}

	web := NewWebAPI(logger, Config{Addr: ":0", ShutdownTimeout: 3 * time.Second, Dependencies: deps})
	assert.Equal(t, 3*time.Second, web.shutdownTimeout)

	web = NewWebAPI(logger, Config{Addr: ":0", Dependencies: deps})
	assert.Equal(t, 10*time.Second, web.shutdownTimeout)
}
