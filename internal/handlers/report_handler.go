package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/interfaces"
)

// HeaderProviderKey carries a caller-supplied model API key. Requests
// with this header run in isolation: their result is never shared.
const HeaderProviderKey = "X-Provider-Key"

// HeaderReportSource tells the caller which tier served the report.
const HeaderReportSource = "X-Report-Source"

// ReportHandler serves report requests through the pipeline.
type ReportHandler struct {
	pipeline interfaces.ReportPipeline
	storage  interfaces.ReportStorage
	logger   arbor.ILogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(pipeline interfaces.ReportPipeline, storage interfaces.ReportStorage, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		pipeline: pipeline,
		storage:  storage,
		logger:   logger,
	}
}

// GetReportHandler handles GET /api/report.
func (h *ReportHandler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := interfaces.RequestOptions{
		ForceRefresh: isTruthy(r.URL.Query().Get("refresh")),
		CallerAPIKey: r.Header.Get(HeaderProviderKey),
	}

	result, err := h.pipeline.GetReport(r.Context(), opts)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	w.Header().Set(HeaderReportSource, string(result.Source))
	WriteJSON(w, http.StatusOK, result.Report)
}

// ListReportsHandler handles GET /api/reports.
func (h *ReportHandler) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	reports, err := h.storage.ListReports(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list reports")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to list reports")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

func (h *ReportHandler) writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interfaces.ErrNoData):
		WriteError(w, http.StatusNotFound, "no_data", "no report data available")
	case errors.Is(err, interfaces.ErrUpstreamExhausted):
		WriteError(w, http.StatusServiceUnavailable, "upstream_exhausted", "all upstream providers exhausted")
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, "timeout", "report generation timed out")
	case errors.Is(err, context.Canceled):
		// Suppress the body only when this client is the one that went
		// away; a live caller still gets an explicit error.
		if r.Context().Err() != nil {
			return
		}
		WriteError(w, http.StatusGatewayTimeout, "timeout", "report generation cancelled")
	default:
		h.logger.Error().Err(err).Msg("Report request failed")
		WriteError(w, http.StatusInternalServerError, "internal", "report generation failed")
	}
}

func isTruthy(v string) bool {
	return v == "true" || v == "1" || v == "yes"
}
