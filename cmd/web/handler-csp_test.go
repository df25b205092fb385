package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newCSPTestApp(logBuffer *bytes.Buffer) *application {
	return &application{ //nolint:exhaustruct // this is a test
		logger: slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{ //nolint:exhaustruct // test only
			Level: slog.LevelDebug,
		})),
	}
}

func Test_application_cspViolation(t *testing.T) {
	tests := []struct {
		name         string
		body         io.Reader
		contentType  string
		wantStatus   int
		wantInLogged []string
	}{
		{
			name: "full report",
			body: strings.NewReader(`{"csp-report": {"document-uri": "https://example.com/workout", ` +
				`"violated-directive": "script-src", "effective-directive": "script-src", ` +
				`"blocked-uri": "https://evil.com/script.js", "line-number": 42, "column-number": 10}}`),
			contentType:  "application/csp-report",
			wantStatus:   http.StatusNoContent,
			wantInLogged: []string{"CSP violation", "script-src", "https://evil.com/script.js", "line_number=42"},
		},
		{
			name:         "json content type",
			body:         strings.NewReader(`{"csp-report": {"violated-directive": "media-src"}}`),
			contentType:  "application/json",
			wantStatus:   http.StatusNoContent,
			wantInLogged: []string{"CSP violation", "media-src"},
		},
		{
			name:         "unexpected content type is processed",
			body:         strings.NewReader(`{"csp-report": {"violated-directive": "img-src"}}`),
			contentType:  "text/plain",
			wantStatus:   http.StatusNoContent,
			wantInLogged: []string{"unexpected CSP report content type", "text/plain", "img-src"},
		},
		{
			name:         "invalid json",
			body:         strings.NewReader(`{"csp-report": `),
			contentType:  "application/csp-report",
			wantStatus:   http.StatusBadRequest,
			wantInLogged: []string{"parse CSP report"},
		},
		{
			name:         "oversized report is truncated",
			body:         strings.NewReader(`{"csp-report": {"script-sample": "` + strings.Repeat("a", 70000) + `"}}`),
			contentType:  "application/csp-report",
			wantStatus:   http.StatusBadRequest,
			wantInLogged: []string{"parse CSP report"},
		},
		{
			name:         "read error",
			body:         &errorReader{},
			contentType:  "application/csp-report",
			wantStatus:   http.StatusBadRequest,
			wantInLogged: []string{"read CSP report"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuffer bytes.Buffer
			app := newCSPTestApp(&logBuffer)

			req := httptest.NewRequest(http.MethodPost, "/api/csp", tt.body)
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			app.cspViolation(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusNoContent && w.Body.Len() != 0 {
				t.Errorf("Expected empty response body, got: %s", w.Body.String())
			}
			logOutput := logBuffer.String()
			for _, want := range tt.wantInLogged {
				if !strings.Contains(logOutput, want) {
					t.Errorf("Expected log to contain %q, but log output was: %s", want, logOutput)
				}
			}
		})
	}
}

// errorReader always fails.
type errorReader struct{}

func (e *errorReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
