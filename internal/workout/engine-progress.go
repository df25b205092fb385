package workout

import (
	"fmt"
	"time"
)

// Snapshot is an immutable view of the engine taken after a transition.
type Snapshot struct {
	// Version increases with every applied transition. Subscribers may use it to drop out-of-order deliveries.
	Version  uint64 `json:"version"`
	State    State  `json:"state"`
	PlanID   int    `json:"plan_id"`
	PlanName string `json:"plan_name"`
	// ResumePhase is the phase Resume returns to while paused.
	ResumePhase    Phase `json:"resume_phase,omitempty"`
	TotalExercises int   `json:"total_exercises"`
	// Exercise is the exercise in progress, or the upcoming one before start and during an exercise rest.
	Exercise            *ExerciseSpec `json:"exercise,omitempty"`
	OverallProgress     float64       `json:"overall_progress"`
	CurrentSetProgress  string        `json:"current_set_progress"`
	CurrentRepProgress  string        `json:"current_rep_progress"`
	IsExerciseCompleted bool          `json:"is_exercise_completed"`
	HasNextExercise     bool          `json:"has_next_exercise"`
	Message             string        `json:"message"`
	CompletedExercises  int           `json:"completed_exercises"`
	CaloriesBurned      int           `json:"calories_burned"`
	ActiveSeconds       float64       `json:"active_seconds"`
}

// Snapshot returns the current view of the engine.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every transition. fn runs on the goroutine that caused the
// transition, outside the engine lock, and must not block. The returned function unsubscribes.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscribers, id)
	}
}

// PartialCompletionData summarises the session as it stands. Before completion IsFullyCompleted is false and
// only finished exercises are listed.
func (e *Engine) PartialCompletionData() CompletionData {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.completion != nil {
		return e.completion.clone()
	}
	now := e.clock.Now()
	start := e.startTime
	if start.IsZero() {
		start = now
	}
	return BuildCompletionData(e.state, len(e.plan.Exercises), e.records, start, now, e.activeLocked(now))
}

// Completion returns the final record once the session has completed.
func (e *Engine) Completion() (CompletionData, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.completion == nil {
		return CompletionData{}, false //nolint:exhaustruct // no completion yet.
	}
	return e.completion.clone(), true
}

// Plan returns the loaded plan.
func (e *Engine) Plan() Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	exercises := make([]ExerciseSpec, len(e.plan.Exercises))
	for i, ex := range e.plan.Exercises {
		exercises[i] = ex.clone()
	}
	return Plan{ID: e.plan.ID, Name: e.plan.Name, Exercises: exercises}
}

func (e *Engine) snapshotLocked() Snapshot {
	now := e.clock.Now()
	s := Snapshot{
		Version:             e.version,
		State:               e.state,
		PlanID:              e.plan.ID,
		PlanName:            e.plan.Name,
		ResumePhase:         e.resumePhase,
		TotalExercises:      len(e.plan.Exercises),
		Exercise:            nil,
		OverallProgress:     e.progressLocked(),
		CurrentSetProgress:  "",
		CurrentRepProgress:  "",
		IsExerciseCompleted: e.state.Phase == PhaseExerciseRest || e.state.Phase == PhaseCompleted,
		HasNextExercise:     e.state.Phase != PhaseCompleted && e.state.ExerciseIndex+1 < len(e.plan.Exercises),
		Message:             e.message,
		CompletedExercises:  len(e.records),
		CaloriesBurned:      0,
		ActiveSeconds:       e.activeLocked(now).Seconds(),
	}
	for _, r := range e.records {
		s.CaloriesBurned += r.CaloriesBurned
	}
	if e.state.Phase == PhaseCompleted || e.state.ExerciseIndex >= len(e.plan.Exercises) {
		return s
	}
	ex := e.plan.Exercises[e.state.ExerciseIndex].clone()
	s.Exercise = &ex
	phase := e.state.Phase
	if phase == PhasePaused {
		phase = e.resumePhase
	}
	if ex.Kind == KindRepBased {
		s.CurrentSetProgress = fmt.Sprintf("Set %d of %d", e.state.CurrentSet, ex.Sets)
	}
	switch {
	case phase.resting():
		s.CurrentRepProgress = "Rest " + formatSeconds(e.state.RestRemainingSeconds)
	case ex.Kind == KindRepBased:
		s.CurrentRepProgress = fmt.Sprintf("%d / %d reps", e.state.RepsCompletedInSet, ex.RepsPerSet)
	default:
		s.CurrentRepProgress = formatSeconds(e.state.TimeRemainingSeconds) + " left"
	}
	return s
}

// progressLocked weighs every exercise equally regardless of its granularity.
func (e *Engine) progressLocked() float64 {
	total := len(e.plan.Exercises)
	if total == 0 || e.state.Phase == PhaseNotStarted {
		return 0
	}
	if e.state.ExerciseIndex >= total {
		return 1
	}
	return clamp01((float64(e.state.ExerciseIndex) + e.exerciseFractionLocked()) / float64(total))
}

func (e *Engine) exerciseFractionLocked() float64 {
	ex := e.plan.Exercises[e.state.ExerciseIndex]
	switch ex.Kind {
	case KindTimeBased:
		if ex.DurationSeconds == 0 {
			return 0
		}
		return clamp01(float64(ex.DurationSeconds-e.state.TimeRemainingSeconds) / float64(ex.DurationSeconds))
	case KindRepBased:
		sets := float64(ex.Sets)
		return clamp01(float64(e.state.CurrentSet-1)/sets + float64(e.state.RepsCompletedInSet)/float64(ex.RepsPerSet)/sets)
	}
	return 0
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// formatSeconds renders seconds as m:ss.
func formatSeconds(seconds int) string {
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), seconds%60) //nolint:mnd // seconds per minute.
}
