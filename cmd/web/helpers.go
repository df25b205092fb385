package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/myrjola/petrarun/internal/errors"
	"github.com/myrjola/petrarun/internal/workout"
)

// maxJSONBodySize limits request bodies of the JSON API.
const maxJSONBodySize = 1 << 20

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	if strings.HasPrefix(r.URL.Path, "/api/") {
		app.writeJSON(w, r, http.StatusInternalServerError,
			errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}
	app.render(w, r, http.StatusInternalServerError, "error", newBaseTemplateData(r))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// parseIntParam parses the path parameter name. On failure it responds with 404 and returns false.
func parseIntParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return value, true
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps domain errors to HTTP status codes. Unknown errors are server errors.
func statusForError(err error) int {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workout.ErrInvalidPlan), errors.Is(err, workout.ErrInvalidRating):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workout.ErrRejected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// apiError responds with a JSON error. The details of server errors are only logged.
func (app *application) apiError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
		message = http.StatusText(status)
	} else {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "client error",
			slog.Int("status_code", status), slog.String("reason", message))
	}
	app.writeJSON(w, r, status, errorResponse{Error: message})
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to marshal response", errors.SlogError(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// readJSON decodes the request body into dst. Unknown fields are rejected.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode json: trailing data after object")
	}
	return nil
}
