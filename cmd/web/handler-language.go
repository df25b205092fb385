package main

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/myrjola/petrarun/internal/i18n"
)

const (
	languageCookie       = "language"
	languageCookieMaxAge = 365 * 24 * time.Hour
)

// isRelativePath checks if a path is a relative path without scheme or host and doesn't allow ambiguous slashes.
func isRelativePath(path string) bool {
	if strings.Contains(path, "://") || strings.HasPrefix(path, "//") {
		return false
	}
	if strings.HasPrefix(path, "/") {
		if len(path) == 1 || (path[1] != '/' && path[1] != '\\') {
			return true
		}
	}
	return false
}

// returnPath picks where to go after a form post. The form's return_to field wins over a same-host Referer.
func returnPath(r *http.Request) string {
	if to := r.PostFormValue("return_to"); isRelativePath(to) {
		return to
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && isRelativePath(ref.Path) {
		return ref.Path
	}
	return "/"
}

// setLanguagePOST stores the language picked by the user in a cookie.
func (app *application) setLanguagePOST(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Language(r.PostFormValue("language"))
	if !i18n.IsSupported(lang) {
		http.Error(w, "Invalid language", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct // defaults.
		Name:     languageCookie,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   int(languageCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	redirect(w, r, returnPath(r))
}
