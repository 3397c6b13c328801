package handlers

import (
	"net/http"

	"github.com/bobmcallan/divvy/internal/config"
)

// VersionHandler serves the build metadata of the running binary.
type VersionHandler struct {
	build config.BuildInfo
}

func NewVersionHandler(build config.BuildInfo) *VersionHandler {
	return &VersionHandler{build: build}
}

// ServeHTTP handles GET /api/version.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.build)
}
