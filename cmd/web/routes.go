package main

import (
	"fmt"
	"net/http"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		api = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(shared(next)))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.loadWorkoutSession(shared(next)))))
		}
	)

	mux.Handle("GET /api/healthy", api(http.HandlerFunc(app.healthy)))
	mux.Handle("POST /api/csp", api(http.HandlerFunc(app.cspViolation)))

	mux.Handle("GET /api/plans", api(http.HandlerFunc(app.plansAPIGET)))
	mux.Handle("POST /api/plans", api(http.HandlerFunc(app.plansAPIPOST)))
	mux.Handle("GET /api/plans/{id}", api(http.HandlerFunc(app.planAPIGET)))

	mux.Handle("POST /api/sessions", api(http.HandlerFunc(app.sessionsAPIPOST)))
	mux.Handle("GET /api/sessions/{id}", api(http.HandlerFunc(app.sessionAPIGET)))
	mux.Handle("DELETE /api/sessions/{id}", api(http.HandlerFunc(app.sessionAPIDELETE)))
	mux.Handle("POST /api/sessions/{id}/{command}", api(http.HandlerFunc(app.sessionCommandAPIPOST)))
	mux.Handle("GET /api/sessions/{id}/completion", api(http.HandlerFunc(app.sessionCompletionAPIGET)))

	mux.Handle("GET /api/completions", api(http.HandlerFunc(app.completionsAPIGET)))
	mux.Handle("GET /api/completions/{id}", api(http.HandlerFunc(app.completionAPIGET)))
	mux.Handle("POST /api/completions/{id}/rating/{rating}", api(http.HandlerFunc(app.completionRatingAPIPOST)))

	mux.Handle("POST /plans/{id}/start", session(http.HandlerFunc(app.planStartPOST)))
	mux.Handle("GET /workout", session(http.HandlerFunc(app.workoutGET)))
	mux.Handle("POST /workout/end", session(http.HandlerFunc(app.workoutEndPOST)))
	mux.Handle("POST /workout/{command}", session(http.HandlerFunc(app.workoutCommandPOST)))
	mux.Handle("GET /completions/{id}", session(http.HandlerFunc(app.completionGET)))
	mux.Handle("POST /completions/{id}/rating", session(http.HandlerFunc(app.completionRatingPOST)))

	mux.Handle("POST /language", session(http.HandlerFunc(app.setLanguagePOST)))

	// Home route (most specific)
	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))

	// File server with custom 404 handling
	fileServerHandler, err := app.fileServerHandler()
	if err != nil {
		return nil, fmt.Errorf("fileServerHandler: %w", err)
	}
	mux.Handle("/", fileServerHandler)

	return mux, nil
}
