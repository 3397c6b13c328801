package handlers

import (
	"net/http"
	"time"

	"github.com/bobmcallan/divvy/internal/dashboard"
)

// HealthHandler reports liveness together with the dataset currently shown.
type HealthHandler struct {
	controller *dashboard.Controller
	started    time.Time
}

type healthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Dataset *dashboard.Status `json:"dataset,omitempty"`
}

// NewHealthHandler creates a health handler. controller may be nil.
func NewHealthHandler(controller *dashboard.Controller) *HealthHandler {
	return &HealthHandler{controller: controller, started: time.Now()}
}

// ServeHTTP handles GET /api/health. An empty dashboard is still healthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Truncate(time.Second).String(),
	}
	if h.controller != nil {
		st := h.controller.Status()
		resp.Dataset = &st
	}
	WriteJSON(w, http.StatusOK, resp)
}
