package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Documents (ingestion pipeline)
	mux.HandleFunc("/api/documents", s.handleDocumentsRoute)               // GET (list), POST (ingest)
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.DeleteHandler) // DELETE /{id}
	mux.HandleFunc("/api/formats", s.app.DocumentHandler.FormatsHandler)

	// API routes - Records (structured search corpus)
	mux.HandleFunc("/api/records", s.app.RecordHandler.RecordsHandler) // GET (list), POST (create)

	// API routes - Query
	mux.HandleFunc("/api/answer", s.app.AnswerHandler.AnswerHandler)

	// API routes - Operational
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleDocumentsRoute dispatches /api/documents by method.
func (s *Server) handleDocumentsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		s.app.DocumentHandler.UploadHandler(w, r)
	case "GET":
		s.app.DocumentHandler.ListHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
