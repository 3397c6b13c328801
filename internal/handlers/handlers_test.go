package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/config"
	"github.com/bobmcallan/divvy/internal/dashboard"
	"github.com/bobmcallan/divvy/internal/sample"
)

func TestHealthHandler_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Status != "ok" || body.Uptime == "" {
		t.Errorf("unexpected health body %+v", body)
	}
	if body.Dataset != nil {
		t.Errorf("expected no dataset without a controller, got %+v", body.Dataset)
	}
}

func TestHealthHandler_ReportsDataset(t *testing.T) {
	ctl := dashboard.New(dashboard.Options{PageSize: 10, SummaryPageSize: 10}, common.NewSilentLogger())
	handler := NewHealthHandler(ctl)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	var empty healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.Status != "ok" || empty.Dataset == nil || empty.Dataset.Loaded {
		t.Errorf("expected healthy with nothing loaded, got %+v", empty)
	}

	if _, err := ctl.Load([]byte("Ticker,Value\nAAPL,1.00\nMSFT,2.00\n"), "holdings.csv"); err != nil {
		t.Fatal(err)
	}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	var loaded healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Dataset == nil || !loaded.Dataset.Loaded || loaded.Dataset.Source != "holdings.csv" || loaded.Dataset.Records != 2 {
		t.Errorf("unexpected dataset status %+v", loaded.Dataset)
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("POST", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestVersionHandler_ReportsInjectedBuild(t *testing.T) {
	build := config.BuildInfo{Service: "divvy", Version: "1.2.3", Build: "2025-10-20", Commit: "deadbee"}
	handler := NewVersionHandler(build)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/version", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	want := map[string]string{"service": "divvy", "version": "1.2.3", "build": "2025-10-20", "git_commit": "deadbee"}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, body[k])
		}
	}
}

func TestVersionHandler_RejectsNonGET(t *testing.T) {
	handler := NewVersionHandler(config.Build())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/version", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestRequireMethod_Matches(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	ok := RequireMethod(w, req, "GET")
	if !ok {
		t.Error("expected RequireMethod to return true for matching method")
	}
}

func TestRequireMethod_Mismatch(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()

	ok := RequireMethod(w, req, "GET")
	if ok {
		t.Error("expected RequireMethod to return false for mismatching method")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	WriteJSON(w, http.StatusCreated, data)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", w.Code)
	}

	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["key"] != "value" {
		t.Errorf("expected key=value, got key=%s", body["key"])
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["error"] != "something went wrong" {
		t.Errorf("expected error message 'something went wrong', got %s", body["error"])
	}
	if body["status"] != "error" {
		t.Errorf("expected status 'error', got %s", body["status"])
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Size int `json:"size"`
	}
	req := httptest.NewRequest("POST", "/x", strings.NewReader(`{"size": 25}`))
	if err := DecodeJSON(req, &v); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if v.Size != 25 {
		t.Errorf("expected size 25, got %d", v.Size)
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	var v struct {
		Size int `json:"size"`
	}
	req := httptest.NewRequest("POST", "/x", strings.NewReader(""))
	if err := DecodeJSON(req, &v); err != nil {
		t.Fatalf("expected empty body to be accepted, got %v", err)
	}
}

func TestDecodeJSON_UnknownField(t *testing.T) {
	var v struct {
		Size int `json:"size"`
	}
	req := httptest.NewRequest("POST", "/x", strings.NewReader(`{"sise": 25}`))
	if err := DecodeJSON(req, &v); err == nil {
		t.Error("expected error for unknown field")
	}
}

// --- Page Handler Tests ---

func newPageHandler(t *testing.T, csv string) *PageHandler {
	t.Helper()
	ctl := dashboard.New(dashboard.Options{PageSize: 10, SummaryPageSize: 10}, common.NewSilentLogger())
	if csv != "" {
		if _, err := ctl.Load([]byte(csv), "test.csv"); err != nil {
			t.Fatalf("load failed: %v", err)
		}
	}
	return NewPageHandler(common.NewSilentLogger(), ctl, "test", false)
}

func TestPageHandler_Returns200(t *testing.T) {
	handler := newPageHandler(t, testCSV)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %s", ct)
	}

	body := w.Body.String()
	for _, want := range []string{`id="payments-table"`, `id="summary-table"`, `id="initial-state"`, "4 payments", "Apple Inc.", "divvy test"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected dashboard to contain %q", want)
		}
	}
}

func TestPageHandler_EmptyState(t *testing.T) {
	handler := newPageHandler(t, "")

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "0 payments") {
		t.Error("expected empty dashboard to show 0 payments")
	}
}

func TestPageHandler_UnknownPath(t *testing.T) {
	handler := newPageHandler(t, "")

	req := httptest.NewRequest("GET", "/nope", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestPageHandler_XSSEscaping(t *testing.T) {
	csv := "Ticker,Ticker Name,Number of Shares,Payment Date,Value\n" +
		"EVIL,</script><script>alert('xss')</script>,1,2025-01-01,1.00\n"
	handler := newPageHandler(t, csv)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	body := w.Body.String()
	if strings.Contains(body, "<script>alert") {
		t.Error("expected ticker name to be escaped in embedded state")
	}
	if !strings.Contains(body, "EVIL") {
		t.Error("expected ticker to be present in embedded state")
	}
}

func TestPageHandler_ServeSample(t *testing.T) {
	handler := newPageHandler(t, "")

	req := httptest.NewRequest("GET", "/static/sample.csv", nil)
	w := httptest.NewRecorder()

	handler.ServeSample(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %s", ct)
	}
	if !bytes.Equal(w.Body.Bytes(), sample.CSV()) {
		t.Error("expected embedded sample CSV body")
	}
}
