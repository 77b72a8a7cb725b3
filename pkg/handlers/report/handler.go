package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-forge/pkg/adapters"
	"github.com/de-tools/report-forge/pkg/models/api"
	"github.com/de-tools/report-forge/pkg/services/pipeline"
	"github.com/de-tools/report-forge/pkg/services/source"
)

// Runner executes a single report run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// GenerateReport accepts records in the request body and streams the
// assembled document back. This path touches no shared file, so it
// bypasses destination validation and locking entirely.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var request api.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(request.Records) == 0 {
		http.Error(w, "records must not be empty", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	_, err := h.runner.Run(ctx, pipeline.Request{
		Source: source.NewStaticSource(adapters.MapAPIRecordsToDomain(request.Records)),
		Sink:   &buf,
		Title:  request.Title,
	})
	if err != nil {
		logger.Error().Err(err).Msg("report run failed")
		if errors.Is(err, pipeline.ErrBadRequest) || errors.Is(err, source.ErrNoRecords) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "report generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("failed to stream report")
	}
}
