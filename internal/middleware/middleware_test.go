package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	if rw.statusCode != http.StatusOK || rw.wroteHeader {
		t.Fatalf("new writer = %+v", rw)
	}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Errorf("status = %d (recorded %d), want first WriteHeader to win", rw.statusCode, rec.Code)
	}

	for _, chunk := range []string{"hello ", "world"} {
		if _, err := rw.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}
	if rw.bytesWritten != 11 {
		t.Errorf("bytesWritten = %d, want 11", rw.bytesWritten)
	}
}

func TestResponseWriterImplicitHeader(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	rw.Write([]byte("x"))
	if !rw.wroteHeader || rw.statusCode != http.StatusOK {
		t.Errorf("after Write: wroteHeader=%v status=%d", rw.wroteHeader, rw.statusCode)
	}
}

func TestDefaultLoggingConfig(t *testing.T) {
	c := DefaultLoggingConfig()
	if len(c.SkipPaths) != 0 || !c.LogHealthChecks || !c.LogReads {
		t.Errorf("DefaultLoggingConfig() = %+v, want everything logged", c)
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLoggerFiltering(t *testing.T) {
	noReads := LoggingConfig{LogHealthChecks: true}
	tests := []struct {
		name   string
		method string
		path   string
		config LoggingConfig
		logged bool
	}{
		{"regular request", http.MethodGet, "/api/viewports/abc", DefaultLoggingConfig(), true},
		{"skipped prefix", http.MethodGet, "/metrics", LoggingConfig{SkipPaths: []string{"/metrics"}, LogReads: true}, false},
		{"health check logged", http.MethodGet, "/health", noReads, true},
		{"health check skipped", http.MethodGet, "/livez", LoggingConfig{LogReads: true}, false},
		{"read skipped", http.MethodGet, "/api/viewports/abc", noReads, false},
		{"head skipped", http.MethodHead, "/api/viewports/abc", noReads, false},
		{"write logged", http.MethodPut, "/api/viewports/abc/sort", noReads, true},
		{"delete logged", http.MethodDelete, "/api/videos/3", noReads, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			h := Logger(tt.config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("ok"))
			}))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, http.NoBody))

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			if got := strings.Contains(buf.String(), tt.path); got != tt.logged {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLoggerLineFormat(t *testing.T) {
	buf := captureLog(t)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"x"}`))
	})

	req := httptest.NewRequest(http.MethodPut, "/api/viewports/abc/search?x=1", http.NoBody)
	req.Header.Set("User-Agent", "viewctl test")
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	Logger(DefaultLoggingConfig())(handler).ServeHTTP(httptest.NewRecorder(), req)

	fields := strings.Fields(strings.TrimSpace(buf.String()))
	if len(fields) < 11 {
		t.Fatalf("unexpected log line %q", buf.String())
	}
	if fields[2] != "10.0.0.1" {
		t.Errorf("c-ip = %q, want 10.0.0.1", fields[2])
	}
	if fields[3] != "PUT" || fields[4] != "/api/viewports/abc/search" || fields[5] != "x=1" {
		t.Errorf("request fields = %v", fields[3:6])
	}
	if fields[6] != "400" || fields[7] != "13" {
		t.Errorf("status/bytes = %v", fields[6:8])
	}
	if fields[9] != "application/json" {
		t.Errorf("content type = %q", fields[9])
	}
	if !strings.Contains(buf.String(), `"viewctl test"`) {
		t.Errorf("user agent not quoted: %q", buf.String())
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", "line break"},
		{"null\x00byte", "nullbyte"},
		{"\x1b[31mred", "[31mred"},
		{"tab\tkept", "tab\tkept"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultMetricsConfig(t *testing.T) {
	config := DefaultMetricsConfig()

	want := map[string]bool{"/metrics": true, "/health": true}
	for _, p := range config.SkipPaths {
		delete(want, p)
	}
	if len(want) != 0 {
		t.Errorf("SkipPaths %v missing %v", config.SkipPaths, want)
	}
}

func TestMetricsPassesThrough(t *testing.T) {
	tests := []struct {
		path   string
		status int
	}{
		{"/metrics", http.StatusOK},
		{"/health", http.StatusServiceUnavailable},
		{"/api/viewports", http.StatusCreated},
		{"/api/viewports/abc", http.StatusNotFound},
		{"/", http.StatusInternalServerError},
	}
	mw := Metrics(DefaultMetricsConfig())
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			called := false
			h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(tt.status)
			}))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))
			if !called || w.Code != tt.status {
				t.Errorf("called=%v code=%d, want handler status %d", called, w.Code, tt.status)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/api/viewports/7f3c":       "/api/viewports/{id}",
		"/api/viewports/7f3c/sort":  "/api/viewports/{id}/sort",
		"/api/videos/42":            "/api/videos/{id}",
		"/api/viewports":            "/api/viewports",
		"/api/viewports/7f3c/a/b/c": "/api/viewports/{id}/a",
		"/health":                   "/health",
		"/":                         "/",
	}
	for path, want := range tests {
		if got := normalizePath(path); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestRoutePathUsesTemplate(t *testing.T) {
	var got string
	router := mux.NewRouter()
	router.HandleFunc("/api/viewports/{id}/{param}", func(w http.ResponseWriter, r *http.Request) {
		got = routePath(r)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPut)
	router.Use(Metrics(DefaultMetricsConfig()))

	req := httptest.NewRequest(http.MethodPut, "/api/viewports/123e4567/sort", http.NoBody)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/api/viewports/{id}/{param}" {
		t.Errorf("routePath() = %q, want route template", got)
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := Logger(LoggingConfig{LogReads: false})(handler)
	req := httptest.NewRequest(http.MethodGet, "/api/viewports/abc", http.NoBody)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wrapped.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func BenchmarkNormalizePath(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = normalizePath("/api/viewports/123e4567-e89b-12d3-a456-426614174000/search")
	}
}
