package contexthelpers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/myrjola/petrarun/internal/contexthelpers"
	"github.com/myrjola/petrarun/internal/i18n"
)

func TestContextHelpers(t *testing.T) {
	r := httptest.NewRequest("GET", "/workout", nil)
	ctx := r.Context()
	if got := contexthelpers.Language(ctx); got != i18n.DefaultLanguage {
		t.Errorf("Language() = %q on an empty context, want %q", got, i18n.DefaultLanguage)
	}
	if got := contexthelpers.WorkoutSessionID(ctx); got != "" {
		t.Errorf("WorkoutSessionID() = %q on an empty context", got)
	}

	r = contexthelpers.SetCurrentPath(r, "/workout")
	r = contexthelpers.SetCSPNonce(r, "nonce")
	r = contexthelpers.SetLanguage(r, i18n.Finnish)
	r = contexthelpers.SetWorkoutSessionID(r, "abc")
	ctx = r.Context()

	if got := contexthelpers.CurrentPath(ctx); got != "/workout" {
		t.Errorf("CurrentPath() = %q", got)
	}
	if got := contexthelpers.CSPNonce(ctx); got != "nonce" {
		t.Errorf("CSPNonce() = %q", got)
	}
	if got := contexthelpers.Language(ctx); got != i18n.Finnish {
		t.Errorf("Language() = %q", got)
	}
	if got := contexthelpers.WorkoutSessionID(ctx); got != "abc" {
		t.Errorf("WorkoutSessionID() = %q", got)
	}
}
