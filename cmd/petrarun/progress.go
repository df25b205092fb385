package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/myrjola/petrarun/internal/workout"
)

// progressPrinter writes snapshots as they arrive. Snapshots from ticks and commands may race, so older
// versions are dropped.
type progressPrinter struct {
	mu          sync.Mutex
	w           io.Writer
	printed     bool
	lastVersion uint64
	lastMessage string
}

func (p *progressPrinter) print(s workout.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed && s.Version <= p.lastVersion {
		return
	}
	p.write(s)
}

// status prints s even when it is not newer than the last one.
func (p *progressPrinter) status(s workout.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.write(s)
}

func (p *progressPrinter) write(s workout.Snapshot) {
	p.printed = true
	p.lastVersion = max(p.lastVersion, s.Version)
	_, _ = fmt.Fprintln(p.w, formatSnapshot(s))
	if s.Message != "" && s.Message != p.lastMessage {
		_, _ = fmt.Fprintf(p.w, "  %s\n", s.Message)
	}
	p.lastMessage = s.Message
}

func (p *progressPrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *progressPrinter) summary(data workout.CompletionData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if data.IsFullyCompleted {
		_, _ = fmt.Fprintln(p.w, "Workout complete: every exercise done.")
	} else {
		_, _ = fmt.Fprintln(p.w, "Workout finished early.")
	}
	_, _ = fmt.Fprintf(p.w, "Active time %s, %d kcal\n",
		formatDuration(data.TotalDurationSeconds), data.TotalCaloriesBurned)
	for i, r := range data.CompletedExercises {
		line := fmt.Sprintf("  %d. %s", i+1, r.Spec.Name)
		if r.Spec.Kind == workout.KindRepBased {
			reps := make([]string, len(r.RepsPerSet))
			for j, n := range r.RepsPerSet {
				reps[j] = fmt.Sprint(n)
			}
			line += fmt.Sprintf(" | %d sets (%s)", r.SetsCompleted, strings.Join(reps, ", "))
		}
		_, _ = fmt.Fprintf(p.w, "%s | %s | %d kcal\n", line, formatDuration(r.DurationSeconds), r.CaloriesBurned)
	}
}

func formatSnapshot(s workout.Snapshot) string {
	pct := int(s.OverallProgress*100 + 0.5) //nolint:mnd // percentage.
	if s.State.Phase == workout.PhaseCompleted {
		return fmt.Sprintf("[%3d%%] completed", pct)
	}
	if s.State.Phase == workout.PhaseNotStarted {
		name := ""
		if s.Exercise != nil {
			name = s.Exercise.Name
		}
		return fmt.Sprintf("[%3d%%] ready: %s", pct, name)
	}
	var parts []string
	if s.Exercise != nil {
		parts = append(parts, s.Exercise.Name)
	}
	if s.CurrentSetProgress != "" {
		parts = append(parts, s.CurrentSetProgress)
	}
	parts = append(parts, s.CurrentRepProgress)
	if s.State.IsPaused {
		parts = append(parts, "paused")
	}
	return fmt.Sprintf("[%3d%%] %s", pct, strings.Join(parts, " | "))
}

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5) //nolint:mnd // rounding.
	return fmt.Sprintf("%d:%02d", total/60, total%60) //nolint:mnd // seconds per minute.
}
