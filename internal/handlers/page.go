package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/dashboard"
	"github.com/bobmcallan/divvy/internal/sample"
)

//go:embed pages/*.html
var pagesFS embed.FS

// PageHandler serves the dashboard page and the downloadable sample.
type PageHandler struct {
	logger     *common.Logger
	templates  *template.Template
	controller *dashboard.Controller
	version    string
	devMode    bool
}

// NewPageHandler creates a page handler with the embedded templates.
func NewPageHandler(logger *common.Logger, controller *dashboard.Controller, version string, devMode bool) *PageHandler {
	return &PageHandler{
		logger:     logger,
		templates:  template.Must(template.ParseFS(pagesFS, "pages/*.html")),
		controller: controller,
		version:    version,
		devMode:    devMode,
	}
}

// ServeHTTP renders GET /. The initial dashboard state is embedded so the
// first paint needs no API round trip.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data := map[string]interface{}{
		"Page":      "dashboard",
		"DevMode":   h.devMode,
		"Version":   h.version,
		"Dashboard": h.controller.Snapshot(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		if h.logger != nil {
			h.logger.Error().Str("template", "dashboard.html").Str("error", err.Error()).Msg("failed to render dashboard")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ServeSample handles GET /static/sample.csv with the embedded dataset.
func (h *PageHandler) ServeSample(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="sample.csv"`)
	w.Write(sample.CSV())
}
