package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/myrjola/petrarun/internal/errors"
)

// maxCSPReportSize is plenty for a single violation report.
const maxCSPReportSize = 64 * 1024

type cspReport struct {
	Body struct {
		DocumentURI        string `json:"document-uri"`
		Referrer           string `json:"referrer"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		Disposition        string `json:"disposition"`
		BlockedURI         string `json:"blocked-uri"`
		LineNumber         int    `json:"line-number"`
		ColumnNumber       int    `json:"column-number"`
		SourceFile         string `json:"source-file"`
		ScriptSample       string `json:"script-sample"`
	} `json:"csp-report"`
}

// cspViolation logs the violation reports browsers send to the report-uri of the Content-Security-Policy.
func (app *application) cspViolation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch contentType := r.Header.Get("Content-Type"); contentType {
	case "", "application/csp-report", "application/json":
	default:
		app.logger.LogAttrs(ctx, slog.LevelWarn, "unexpected CSP report content type",
			slog.String("content_type", contentType))
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCSPReportSize))
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "read CSP report", errors.SlogError(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var report cspReport
	if err = json.Unmarshal(body, &report); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "parse CSP report",
			errors.SlogError(err), slog.String("body", string(body)))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	v := report.Body
	app.logger.LogAttrs(ctx, slog.LevelWarn, "CSP violation",
		slog.String("document_uri", v.DocumentURI),
		slog.String("violated_directive", v.ViolatedDirective),
		slog.String("effective_directive", v.EffectiveDirective),
		slog.String("blocked_uri", v.BlockedURI),
		slog.String("source_file", v.SourceFile),
		slog.Int("line_number", v.LineNumber),
		slog.Int("column_number", v.ColumnNumber),
		slog.String("script_sample", v.ScriptSample),
		slog.String("disposition", v.Disposition),
		slog.String("referrer", v.Referrer),
		slog.String("user_agent", r.UserAgent()))

	w.WriteHeader(http.StatusNoContent)
}
