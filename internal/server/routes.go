package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.ServeHTTP)

	// API routes - Reports
	mux.HandleFunc("/api/report", s.app.ReportHandler.GetReportHandler)    // GET - current report
	mux.HandleFunc("/api/reports", s.app.ReportHandler.ListReportsHandler) // GET - stored history

	// API routes - Operational
	mux.HandleFunc("/api/status", s.app.StatusHandler.StatusHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// Everything else is a JSON 404
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
