package report

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/qtherapy/report-engine/pkg/models/api"
	"github.com/qtherapy/report-engine/pkg/models/domain"
)

// Generator is the pipeline as the handler sees it.
type Generator interface {
	Generate(ctx context.Context, req domain.ReportRequest) (*domain.ReportArtifact, error)
}

type Handler struct {
	generator Generator
}

func NewHandler(generator Generator) *Handler {
	return &Handler{generator: generator}
}

// CreateReport runs the rendering pipeline for one request and
// returns the artifact base64-encoded.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var payload api.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, logger, domain.NewError(domain.KindInvalidArgument, "malformed request body", err))
		return
	}

	artifact, err := h.generator.Generate(ctx, payload.ToDomain())
	if err != nil {
		writeError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(api.ReportResponse{
		Success:  true,
		PDF:      base64.StdEncoding.EncodeToString(artifact.Bytes),
		Filename: artifact.Filename,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode report response")
	}
}

var statusByKind = map[domain.Kind]int{
	domain.KindUnauthenticated:     http.StatusUnauthorized,
	domain.KindInvalidArgument:     http.StatusBadRequest,
	domain.KindChartLibraryTimeout: http.StatusBadGateway,
	domain.KindRenderTimeout:       http.StatusGatewayTimeout,
	domain.KindEngineLaunchFailure: http.StatusServiceUnavailable,
	domain.KindInternalRenderError: http.StatusInternalServerError,
}

func writeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	logger.Error().Err(err).Str("kind", string(kind)).Msg("report generation failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: api.APIError{
			Kind:    string(kind),
			Message: err.Error(),
		},
	})
	if encodeErr != nil {
		logger.Error().Err(encodeErr).Msg("failed to encode error response")
	}
}
