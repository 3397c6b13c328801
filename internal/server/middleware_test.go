package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/config"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// chain wraps next in the full middleware stack of a server whose body cap
// is maxBody bytes.
func chain(logger *common.Logger, maxBody int64, next http.Handler) http.Handler {
	s := &Server{logger: logger, maxBodyBytes: maxBody}
	return s.withMiddleware(next)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// --- Body cap ---

func TestNew_BodyCapAddsMultipartOverhead(t *testing.T) {
	srv := New(newTestApp(t, func(cfg *config.Config) {
		cfg.Dashboard.MaxUploadMB = 3
	}))

	want := int64(3<<20) + multipartOverhead
	if srv.maxBodyBytes != want {
		t.Errorf("expected body cap %d, got %d", want, srv.maxBodyBytes)
	}
}

func TestMiddleware_BodyCapBoundary(t *testing.T) {
	const limit = 4096
	handler := chain(common.NewSilentLogger(), limit, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		size int
		want int
	}{
		{limit, http.StatusOK},
		{limit + 1, http.StatusRequestEntityTooLarge},
	} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/upload", bytes.NewReader(make([]byte, tc.size))))
		if w.Code != tc.want {
			t.Errorf("body of %d bytes: expected %d, got %d", tc.size, tc.want, w.Code)
		}
	}
}

func TestMiddleware_MultipartUploadNearLimitPasses(t *testing.T) {
	srv := New(newTestApp(t, func(cfg *config.Config) {
		cfg.Dashboard.MaxUploadMB = 1
	}))

	// File content just under the 1 MB upload limit; the multipart envelope
	// must not push it over the body cap.
	var csv strings.Builder
	csv.WriteString("Ticker,Payment Date,Value\n")
	row := "AAPL,2025-08-15,1.00\n"
	for csv.Len()+len(row) < 1<<20-256 {
		csv.WriteString(row)
	}

	w := serve(srv, uploadRequest(t, csv.String()))
	if w.Code != http.StatusOK {
		t.Fatalf("expected upload near the limit to pass, got %d: %s", w.Code, w.Body.String())
	}
}

// --- Security headers ---

func cspDirectives(policy string) map[string][]string {
	out := make(map[string][]string)
	for _, part := range strings.Split(policy, ";") {
		fields := strings.Fields(part)
		if len(fields) > 0 {
			out[fields[0]] = fields[1:]
		}
	}
	return out
}

func TestSecurityHeaders_CSPAllowsDashboardAssets(t *testing.T) {
	w := httptest.NewRecorder()
	chain(common.NewSilentLogger(), 1024, okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	csp := cspDirectives(w.Header().Get("Content-Security-Policy"))
	if !slices.Contains(csp["default-src"], "'self'") {
		t.Errorf("expected default-src 'self', got %v", csp["default-src"])
	}
	// Chart.js comes from jsDelivr and the page state is an inline script.
	for _, src := range []string{"'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net"} {
		if !slices.Contains(csp["script-src"], src) {
			t.Errorf("expected script-src to allow %s, got %v", src, csp["script-src"])
		}
	}
	if !slices.Contains(csp["img-src"], "data:") {
		t.Errorf("expected img-src to allow data: for chart exports, got %v", csp["img-src"])
	}
	if _, ok := csp["connect-src"]; ok {
		t.Errorf("expected API calls to fall back to default-src, got connect-src %v", csp["connect-src"])
	}

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("expected %s=%q, got %q", header, want, got)
		}
	}
}

// --- CORS ---

func TestCORS_AllowsMCPHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	chain(common.NewSilentLogger(), 1024, okHandler()).ServeHTTP(w, httptest.NewRequest("POST", "/mcp", nil))

	allowed := w.Header().Get("Access-Control-Allow-Headers")
	for _, h := range []string{"Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version"} {
		if !strings.Contains(allowed, h) {
			t.Errorf("expected %s in Access-Control-Allow-Headers, got %q", h, allowed)
		}
	}
	if methods := w.Header().Get("Access-Control-Allow-Methods"); methods != "GET, POST, OPTIONS" {
		t.Errorf("expected GET, POST, OPTIONS, got %q", methods)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	handler := chain(common.NewSilentLogger(), 1024, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/mcp", nil)
	req.Header.Set("Access-Control-Request-Headers", "mcp-session-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected preflight 200, got %d", w.Code)
	}
	if called {
		t.Error("expected preflight not to reach the MCP handler")
	}
}

// --- Correlation IDs ---

func TestCorrelationID_Precedence(t *testing.T) {
	handler := chain(common.NewSilentLogger(), 1024, okHandler())

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"request id wins", map[string]string{"X-Request-ID": "req-1", "X-Correlation-ID": "corr-1"}, "req-1"},
		{"correlation id used", map[string]string{"X-Correlation-ID": "corr-2"}, "corr-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/dashboard", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if got := w.Header().Get("X-Correlation-ID"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCorrelationID_GeneratedIsUUID(t *testing.T) {
	w := httptest.NewRecorder()
	chain(common.NewSilentLogger(), 1024, okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/api/dashboard", nil))

	if _, err := uuid.Parse(w.Header().Get("X-Correlation-ID")); err != nil {
		t.Errorf("expected generated correlation id to be a UUID: %v", err)
	}
}

// --- Recovery and request logging ---

func TestRecovery_PanicBecomes500AndIsLogged(t *testing.T) {
	var buf lockedBuffer
	handler := chain(common.NewLoggerWithOutput("debug", &buf), 1024, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("summary exploded")
	}))

	req := httptest.NewRequest("POST", "/api/tables/summary/sort", nil)
	req.Header.Set("X-Request-ID", "req-panic")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if w.Header().Get("X-Correlation-ID") != "req-panic" {
		t.Error("expected correlation header on recovered response")
	}

	time.Sleep(100 * time.Millisecond)
	out := buf.String()
	if !strings.Contains(out, "panic recovered") || !strings.Contains(out, "summary exploded") {
		t.Errorf("expected panic log, got %q", out)
	}
	if !strings.Contains(out, "status=500") {
		t.Errorf("expected request log with status 500, got %q", out)
	}
}

func TestLoggingMiddleware_RecordsStatusAndBytes(t *testing.T) {
	var buf lockedBuffer
	handler := chain(common.NewLoggerWithOutput("debug", &buf), 1024, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		w.Write([]byte("nope!"))
	}))

	req := httptest.NewRequest("POST", "/api/upload", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	time.Sleep(100 * time.Millisecond)
	out := buf.String()
	for _, want := range []string{"HTTP request", "correlation_id=req-42", "status=415", "bytes=5", "path=/api/upload"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in request log, got %q", want, out)
		}
	}
}

// --- Rate limiting ---

func TestRateLimitMiddleware_RejectsBurstOverflow(t *testing.T) {
	s := &Server{logger: common.NewSilentLogger()}
	limiter := newUploadLimiter(2)

	calls := 0
	handler := s.rateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/upload", nil))
		codes[i] = w.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected burst of 2 to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request to be limited, got %d", codes[2])
	}
	if calls != 2 {
		t.Errorf("expected next handler called twice, got %d", calls)
	}
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	s := &Server{logger: common.NewSilentLogger()}

	if newUploadLimiter(0) != nil {
		t.Fatal("expected zero rate to disable the limiter")
	}

	handler := s.rateLimitMiddleware(nil)(okHandler())
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/upload", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

// --- Streaming ---

func TestResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.Flush()

	if !rec.Flushed {
		t.Error("expected Flush to reach the underlying writer")
	}
}
