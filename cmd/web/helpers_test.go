package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/myrjola/petrarun/internal/workout"
)

func Test_statusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("get plan 7: %w", workout.ErrNotFound), want: http.StatusNotFound},
		{err: fmt.Errorf("%w: not paused", workout.ErrRejected), want: http.StatusConflict},
		{err: fmt.Errorf("%w: plan has no exercises", workout.ErrInvalidPlan), want: http.StatusUnprocessableEntity},
		{err: workout.ErrInvalidRating, want: http.StatusUnprocessableEntity},
		{err: fmt.Errorf("disk I/O error"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func Test_formatSeconds(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 0, want: "0:00"},
		{seconds: 59, want: "0:59"},
		{seconds: 75, want: "1:15"},
		{seconds: 3600, want: "1:00:00"},
		{seconds: 3725, want: "1:02:05"},
		{seconds: -3, want: "0:00"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.seconds); got != tt.want {
			t.Errorf("formatSeconds(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func Test_isRelativePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/", want: true},
		{path: "/workout", want: true},
		{path: "//evil.com", want: false},
		{path: "/\\evil.com", want: false},
		{path: "https://evil.com/", want: false},
		{path: "workout", want: false},
		{path: "", want: false},
	}
	for _, tt := range tests {
		if got := isRelativePath(tt.path); got != tt.want {
			t.Errorf("isRelativePath(%q) = %t, want %t", tt.path, got, tt.want)
		}
	}
}

func Test_workoutActions(t *testing.T) {
	reps := &workout.ExerciseSpec{Name: "Squat", Kind: workout.KindRepBased} //nolint:exhaustruct // test only
	timed := &workout.ExerciseSpec{Name: "Plank", Kind: workout.KindTimeBased} //nolint:exhaustruct // test only

	commands := func(s workout.Snapshot) []string {
		var out []string
		for _, a := range workoutActions(s) {
			out = append(out, a.Command)
		}
		return out
	}
	snapshot := func(phase workout.Phase, ex *workout.ExerciseSpec) workout.Snapshot {
		var s workout.Snapshot
		s.State.Phase = phase
		s.Exercise = ex
		return s
	}

	tests := []struct {
		name string
		s    workout.Snapshot
		want string
	}{
		{name: "not started", s: snapshot(workout.PhaseNotStarted, reps), want: "[start]"},
		{name: "rep exercise", s: snapshot(workout.PhaseExerciseActive, reps),
			want: "[rep set skip-set pause complete]"},
		{name: "timed exercise", s: snapshot(workout.PhaseExerciseActive, timed), want: "[skip-set pause complete]"},
		{name: "set rest", s: snapshot(workout.PhaseSetRest, reps), want: "[skip-rest pause complete]"},
		{name: "paused", s: snapshot(workout.PhasePaused, reps), want: "[resume complete]"},
		{name: "completed", s: snapshot(workout.PhaseCompleted, nil), want: "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmt.Sprint(commands(tt.s)); got != tt.want {
				t.Errorf("workoutActions = %s, want %s", got, tt.want)
			}
		})
	}
}

func Test_uiDir(t *testing.T) {
	configured := t.TempDir()
	got, err := uiDir(configured, "templates")
	if err != nil || got != configured {
		t.Errorf("uiDir(configured) = %q, %v; want %q", got, err, configured)
	}

	// Tests run in cmd/web, so the module root is found by walking up.
	got, err = uiDir("", "static")
	if err != nil {
		t.Fatalf("uiDir(static): %v", err)
	}
	if _, err = os.Stat(filepath.Join(got, "main.css")); err != nil {
		t.Errorf("uiDir(static) = %q without main.css: %v", got, err)
	}

	if _, err = uiDir(filepath.Join(configured, "missing"), "templates"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("uiDir(missing) = %v, want os.ErrNotExist", err)
	}
}
