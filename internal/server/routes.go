package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Dashboard page and the downloadable sample dataset
	mux.Handle("/", s.app.PageHandler)
	mux.HandleFunc("/static/sample.csv", s.app.PageHandler.ServeSample)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	api := s.app.APIHandler
	mux.HandleFunc("/api/dashboard", api.HandleDashboard)
	mux.HandleFunc("/api/overview", api.HandleOverview)
	mux.HandleFunc("/api/series", api.HandleSeries)
	mux.Handle("/api/upload", s.rateLimitMiddleware(s.uploadLimiter)(http.HandlerFunc(api.HandleUpload)))
	mux.Handle("/api/reload", s.rateLimitMiddleware(s.uploadLimiter)(http.HandlerFunc(api.HandleReload)))
	mux.HandleFunc("/api/tables/{table}", api.HandleTableQuery)
	mux.HandleFunc("/api/tables/{table}/{action}", api.HandleTableAction)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"status":"error","error":"The requested endpoint does not exist"}`))
}
