package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// fileServerHandler serves ui/static. Missing files render the not found page.
func (app *application) fileServerHandler() (http.Handler, error) {
	fileRoot, err := uiDir("", "static")
	if err != nil {
		return nil, fmt.Errorf("file server root: %w", err)
	}
	fileServer := http.FileServer(http.Dir(fileRoot))

	withSession := func(next http.Handler) http.Handler {
		return noCache(app.sessionManager.LoadAndSave(app.loadWorkoutSession(next)))
	}
	notFound := withSession(http.HandlerFunc(app.notFound))

	return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
		commonContext(app.timeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cleanPath := filepath.Clean(r.URL.Path)
			if strings.Contains(cleanPath, "..") {
				notFound.ServeHTTP(w, r)
				return
			}
			stat, statErr := os.Stat(filepath.Join(fileRoot, cleanPath))
			if statErr != nil || stat.IsDir() {
				notFound.ServeHTTP(w, r)
				return
			}
			cacheForever(fileServer).ServeHTTP(w, r)
		}))))))), nil
}
