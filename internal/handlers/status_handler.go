package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/services/llm"
	"github.com/ternarybob/nuntium/internal/services/scheduler"
)

// StatusHandler exposes pipeline state and the analysis audit trail.
type StatusHandler struct {
	pipeline  interfaces.ReportPipeline
	storage   interfaces.ReportStorage
	audit     *llm.AuditLog
	scheduler *scheduler.Service
	logger    arbor.ILogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(pipeline interfaces.ReportPipeline, storage interfaces.ReportStorage, audit *llm.AuditLog, sched *scheduler.Service, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		pipeline:  pipeline,
		storage:   storage,
		audit:     audit,
		scheduler: sched,
		logger:    logger,
	}
}

// StatusHandler handles GET /api/status.
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]interface{}{
		"pipeline_state": h.pipeline.State(),
	}

	if count, err := h.storage.CountReports(r.Context()); err == nil {
		status["stored_reports"] = count
	}
	if h.audit != nil {
		status["analysis_attempts"] = h.audit.Recent()
	}
	if h.scheduler != nil {
		running, lastRun, lastErr := h.scheduler.Status()
		sched := map[string]interface{}{"running": running}
		if !lastRun.IsZero() {
			sched["last_run"] = lastRun
		}
		if lastErr != "" {
			sched["last_error"] = lastErr
		}
		status["scheduler"] = sched
	}

	WriteJSON(w, http.StatusOK, status)
}
