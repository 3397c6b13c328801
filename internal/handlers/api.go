package handlers

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/dashboard"
	"github.com/bobmcallan/divvy/internal/dividends"
	"github.com/bobmcallan/divvy/internal/ingest"
)

// APIHandler serves the dashboard JSON API.
type APIHandler struct {
	logger         *common.Logger
	controller     *dashboard.Controller
	maxUploadBytes int64
}

// NewAPIHandler creates a new API handler over controller.
func NewAPIHandler(logger *common.Logger, controller *dashboard.Controller, maxUploadBytes int64) *APIHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &APIHandler{
		logger:         logger,
		controller:     controller,
		maxUploadBytes: maxUploadBytes,
	}
}

// loadResponse is returned by upload and reload.
type loadResponse struct {
	Status    string                `json:"status"`
	Load      *dashboard.LoadResult `json:"load"`
	Dashboard dashboard.View        `json:"dashboard"`
}

// seriesResponse carries both chart series.
type seriesResponse struct {
	LastTwelveMonths dividends.Series `json:"lastTwelveMonths"`
	Growth           dividends.Series `json:"growth"`
}

// sortRequest is the body of POST /api/tables/{table}/sort. Without Dir the
// column toggles.
type sortRequest struct {
	Key string `json:"key"`
	Dir string `json:"dir,omitempty"`
}

// pageRequest is the body of POST /api/tables/{table}/page.
type pageRequest struct {
	Delta *int `json:"delta,omitempty"`
	Page  *int `json:"page,omitempty"`
}

// pageSizeRequest is the body of POST /api/tables/{table}/page-size.
type pageSizeRequest struct {
	Size int `json:"size"`
}

// HandleDashboard handles GET /api/dashboard.
func (h *APIHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.controller.Snapshot())
}

// HandleOverview handles GET /api/overview.
func (h *APIHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.controller.Snapshot().Overview)
}

// HandleSeries handles GET /api/series.
func (h *APIHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	v := h.controller.Snapshot()
	WriteJSON(w, http.StatusOK, seriesResponse{
		LastTwelveMonths: v.LastTwelveMonths,
		Growth:           v.Growth,
	})
}

// HandleUpload handles POST /api/upload.
func (h *APIHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	up, err := readUpload(w, r, h.maxUploadBytes)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upload rejected")
		WriteError(w, statusFor(err), err.Error())
		return
	}

	res, err := h.controller.Load(up.Data, up.Name)
	if err != nil {
		WriteError(w, statusFor(err), err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, loadResponse{
		Status:    "ok",
		Load:      res,
		Dashboard: h.controller.Snapshot(),
	})
}

// HandleReload handles POST /api/reload.
func (h *APIHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	res, err := h.controller.LoadDefault(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("default dataset reload failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, loadResponse{
		Status:    "ok",
		Load:      res,
		Dashboard: h.controller.Snapshot(),
	})
}

// HandleTableQuery handles GET /api/tables/{table}. The query parameters
// sort, dir, page and size select a page without changing dashboard state.
func (h *APIHandler) HandleTableQuery(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	table, err := dashboard.ParseTableName(r.PathValue("table"))
	if err != nil {
		WriteError(w, statusFor(err), err.Error())
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch table {
	case dashboard.PaymentsTable:
		view, err := h.controller.QueryPayments(q)
		if err != nil {
			WriteError(w, statusFor(err), err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, view)
	case dashboard.SummaryTable:
		view, err := h.controller.QuerySummary(q)
		if err != nil {
			WriteError(w, statusFor(err), err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, view)
	}
}

// HandleTableAction handles POST /api/tables/{table}/{action} for the
// sort, page and page-size events, and responds with the new dashboard.
func (h *APIHandler) HandleTableAction(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	table, err := dashboard.ParseTableName(r.PathValue("table"))
	if err != nil {
		WriteError(w, statusFor(err), err.Error())
		return
	}

	switch r.PathValue("action") {
	case "sort":
		err = h.applySort(r, table)
	case "page":
		err = h.applyPage(r, table)
	case "page-size":
		err = h.applyPageSize(r, table)
	default:
		WriteError(w, http.StatusNotFound, "unknown table action")
		return
	}
	if err != nil {
		WriteError(w, statusFor(err), err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.controller.Snapshot())
}

func (h *APIHandler) applySort(r *http.Request, table dashboard.TableName) error {
	var req sortRequest
	if err := DecodeJSON(r, &req); err != nil {
		return badRequest(err)
	}
	if req.Key == "" {
		return badRequest(errors.New("sort key is required"))
	}
	if req.Dir == "" {
		return h.controller.Sort(table, req.Key)
	}
	dir, err := dividends.ParseSortDirection(req.Dir)
	if err != nil {
		return badRequest(err)
	}
	return h.controller.SetSort(table, req.Key, dir)
}

func (h *APIHandler) applyPage(r *http.Request, table dashboard.TableName) error {
	var req pageRequest
	if err := DecodeJSON(r, &req); err != nil {
		return badRequest(err)
	}
	switch {
	case req.Page != nil:
		return h.controller.SetPage(table, *req.Page)
	case req.Delta != nil:
		return h.controller.ChangePage(table, *req.Delta)
	}
	return badRequest(errors.New("page or delta is required"))
}

func (h *APIHandler) applyPageSize(r *http.Request, table dashboard.TableName) error {
	var req pageSizeRequest
	if err := DecodeJSON(r, &req); err != nil {
		return badRequest(err)
	}
	return h.controller.SetPageSize(table, req.Size)
}

func parseQuery(r *http.Request) (dashboard.Query, error) {
	var q dashboard.Query
	var err error

	q.SortKey = r.URL.Query().Get("sort")
	if raw := r.URL.Query().Get("dir"); raw != "" {
		if q.SortDir, err = dividends.ParseSortDirection(raw); err != nil {
			return q, err
		}
	}
	if q.Page, err = queryInt(r, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = queryInt(r, "size"); err != nil {
		return q, err
	}
	return q, nil
}

// requestError marks an error caused by a malformed request.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	var reqErr *requestError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, dashboard.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, errNoFile),
		errors.Is(err, ingest.ErrEmptyInput),
		errors.Is(err, dashboard.ErrUnknownColumn),
		errors.Is(err, dividends.ErrInvalidPageSize),
		errors.As(err, &reqErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
