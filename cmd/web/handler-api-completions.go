package main

import (
	"net/http"
	"strconv"
)

const (
	defaultCompletionLimit = 20
	maxCompletionLimit     = 100
)

// completionsAPIGET lists the most recent completions. The limit query parameter defaults to 20.
func (app *application) completionsAPIGET(w http.ResponseWriter, r *http.Request) {
	limit := defaultCompletionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxCompletionLimit)
	}
	completions, err := app.workoutService.ListCompletions(r.Context(), limit)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, completions)
}

func (app *application) completionAPIGET(w http.ResponseWriter, r *http.Request) {
	c, err := app.workoutService.GetCompletion(r.Context(), r.PathValue("id"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) completionRatingAPIPOST(w http.ResponseWriter, r *http.Request) {
	rating, ok := parseIntParam(w, r, "rating")
	if !ok {
		return
	}
	if err := app.workoutService.RateCompletion(r.Context(), r.PathValue("id"), rating); err != nil {
		app.apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
