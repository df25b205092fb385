package contexthelpers

import (
	"context"

	"github.com/myrjola/petrarun/internal/i18n"
)

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSPNonce(ctx context.Context) string {
	cspNonce, ok := ctx.Value(CspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return cspNonce
}

// Language returns the language of the request, defaulting to i18n.DefaultLanguage.
func Language(ctx context.Context) i18n.Language {
	language, ok := ctx.Value(LanguageContextKey).(i18n.Language)
	if !ok {
		return i18n.DefaultLanguage
	}
	return language
}

// WorkoutSessionID returns the id of the workout session the browser is following, or "" when there is none.
func WorkoutSessionID(ctx context.Context) string {
	id, ok := ctx.Value(WorkoutSessionIDContextKey).(string)
	if !ok {
		return ""
	}
	return id
}
