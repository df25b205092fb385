package workout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/myrjola/petrarun/internal/clock"
)

// EngineConfig holds the collaborators of an Engine. Zero values fall back to the real clock, a discarding
// logger, and no-op collaborators.
type EngineConfig struct {
	Clock        clock.Clock
	Logger       *slog.Logger
	TickInterval time.Duration
	Prefetcher   Prefetcher
	Sink         CompletionSink
	Motivation   Motivation
}

// Engine drives a single workout session through its plan.
//
// Ticks and commands are applied one at a time under a mutex. Collaborators and subscribers are called after
// the mutex is released.
type Engine struct {
	clock        clock.Clock
	logger       *slog.Logger
	tickInterval time.Duration
	prefetcher   Prefetcher
	sink         CompletionSink
	motivation   Motivation

	mu          sync.Mutex
	plan        Plan
	planErr     error
	state       State
	resumePhase Phase
	records     []CompletedExerciseRecord
	setReps     []int
	message     string
	version     uint64
	closed      bool
	completion  *CompletionData

	startTime time.Time
	// activeBefore is the active session time accumulated up to runningSince.
	activeBefore time.Duration
	// runningSince is zero while the session is not running.
	runningSince time.Time
	// exerciseStartActive is the active session time at which the current exercise started.
	exerciseStartActive time.Duration

	ticker    clock.Ticker
	tickerGen uint64

	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewEngine creates an engine without a plan. Call Initialize before Start.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		tickInterval: cfg.TickInterval,
		prefetcher:   cfg.Prefetcher,
		sink:         cfg.Sink,
		motivation:   cfg.Motivation,
		mu:           sync.Mutex{},
		plan:         Plan{ID: 0, Name: "", Exercises: nil},
		planErr:      fmt.Errorf("%w: not initialized", ErrInvalidPlan),
		state:        State{Phase: PhaseNotStarted}, //nolint:exhaustruct // zero counters.
		subscribers:  make(map[int]func(Snapshot)),
	}
	if e.clock == nil {
		e.clock = clock.NewReal()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.tickInterval <= 0 {
		e.tickInterval = time.Second
	}
	if e.prefetcher == nil {
		e.prefetcher = noopPrefetcher{}
	}
	if e.sink == nil {
		e.sink = noopSink{}
	}
	if e.motivation == nil {
		e.motivation = noMotivation
	}
	return e
}

// effects are collected under the lock and dispatched after it is released.
type effects struct {
	snapshot    Snapshot
	subscribers []func(Snapshot)
	prefetch    []string
	completion  *CompletionData
}

func rejected(reason string) error {
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}

// apply runs transition under the lock. A nil error commits the transition and notifies subscribers.
func (e *Engine) apply(command string, transition func(now time.Time, fx *effects) error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return rejected("engine closed")
	}
	fx := &effects{} //nolint:exhaustruct // filled by the transition.
	phase := e.state.Phase
	if err := transition(e.clock.Now(), fx); err != nil {
		e.mu.Unlock()
		e.logger.LogAttrs(context.Background(), slog.LevelDebug, "command rejected",
			slog.String("command", command), slog.String("phase", string(phase)), slog.Any("reason", err))
		return err
	}
	if phase != PhaseCompleted && e.state.Phase == PhaseCompleted {
		data := e.completion.clone()
		fx.completion = &data
	}
	e.commitLocked(fx)
	e.mu.Unlock()

	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "command applied",
		slog.String("command", command),
		slog.String("from", string(phase)),
		slog.String("to", string(fx.snapshot.State.Phase)),
		slog.Uint64("version", fx.snapshot.Version))
	e.dispatch(fx)
	return nil
}

func (e *Engine) commitLocked(fx *effects) {
	e.version++
	fx.snapshot = e.snapshotLocked()
	fx.subscribers = make([]func(Snapshot), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		fx.subscribers = append(fx.subscribers, fn)
	}
}

func (e *Engine) dispatch(fx *effects) {
	if fx.prefetch != nil {
		e.prefetcher.Prefetch(fx.prefetch)
	}
	for _, fn := range fx.subscribers {
		fn(fx.snapshot)
	}
	if fx.completion != nil {
		e.sink.Deliver(*fx.completion)
	}
}

// Initialize loads plan and resets the session. It is allowed before Start and after completion.
//
// An invalid plan is accepted but leaves the engine inert: Start is rejected until a valid plan is loaded.
func (e *Engine) Initialize(plan Plan) error {
	return e.apply("initialize", func(_ time.Time, fx *effects) error {
		if e.state.Phase != PhaseNotStarted && e.state.Phase != PhaseCompleted {
			return rejected("session in progress")
		}
		exercises := make([]ExerciseSpec, len(plan.Exercises))
		for i, ex := range plan.Exercises {
			exercises[i] = ex.clone()
		}
		e.plan = Plan{ID: plan.ID, Name: plan.Name, Exercises: exercises}
		e.planErr = e.plan.Validate()
		e.stopTickerLocked()
		e.state = State{Phase: PhaseNotStarted} //nolint:exhaustruct // zero counters.
		e.resumePhase = ""
		e.records = nil
		e.setReps = nil
		e.message = ""
		e.completion = nil
		e.startTime = time.Time{}
		e.activeBefore = 0
		e.runningSince = time.Time{}
		e.exerciseStartActive = 0
		if len(exercises) > 0 {
			e.resetCountersLocked()
		}
		fx.prefetch = e.plan.ExerciseNames()
		return nil
	})
}

// Start begins the session with the first exercise.
func (e *Engine) Start() error {
	return e.apply("start", func(now time.Time, _ *effects) error {
		if e.state.Phase != PhaseNotStarted {
			return rejected("already started")
		}
		if e.planErr != nil {
			return fmt.Errorf("%w: %w", ErrRejected, e.planErr)
		}
		e.startTime = now
		e.runningSince = now
		e.beginExerciseLocked(now)
		return nil
	})
}

// Pause freezes the session. No tick is observed after Pause returns.
func (e *Engine) Pause() error {
	return e.apply("pause", func(now time.Time, _ *effects) error {
		if e.state.Phase == PhasePaused {
			return rejected("already paused")
		}
		if !e.state.Phase.running() {
			return rejected("not running")
		}
		e.stopTickerLocked()
		e.activeBefore = e.activeLocked(now)
		e.runningSince = time.Time{}
		e.resumePhase = e.state.Phase
		e.state.Phase = PhasePaused
		e.state.IsPaused = true
		return nil
	})
}

// Resume continues a paused session from the frozen counters.
func (e *Engine) Resume() error {
	return e.apply("resume", func(now time.Time, _ *effects) error {
		if e.state.Phase != PhasePaused {
			return rejected("not paused")
		}
		e.state.Phase = e.resumePhase
		e.state.IsPaused = false
		e.resumePhase = ""
		e.runningSince = now
		e.syncTickerLocked()
		return nil
	})
}

// IncrementRep counts one repetition of a rep-based exercise. Reaching the target completes the set.
func (e *Engine) IncrementRep() error {
	return e.apply("increment_rep", func(now time.Time, _ *effects) error {
		ex, err := e.activeRepExerciseLocked()
		if err != nil {
			return err
		}
		e.state.RepsCompletedInSet++
		if e.state.RepsCompletedInSet >= ex.RepsPerSet {
			e.completeSetLocked(now)
		}
		return nil
	})
}

// CompleteSet closes the current set of a rep-based exercise with the reps done so far.
func (e *Engine) CompleteSet() error {
	return e.apply("complete_set", func(now time.Time, _ *effects) error {
		if _, err := e.activeRepExerciseLocked(); err != nil {
			return err
		}
		e.completeSetLocked(now)
		return nil
	})
}

// SkipCurrentSet abandons the current set without recording it. Skipping the last set, or any part of a
// time-based exercise, completes the exercise.
func (e *Engine) SkipCurrentSet() error {
	return e.apply("skip_set", func(now time.Time, _ *effects) error {
		if e.state.Phase != PhaseExerciseActive {
			return rejected("no active exercise")
		}
		ex := e.plan.Exercises[e.state.ExerciseIndex]
		if ex.Kind == KindRepBased && e.state.CurrentSet < ex.Sets {
			e.state.CurrentSet++
			e.state.RepsCompletedInSet = 0
			return nil
		}
		e.completeExerciseLocked(now)
		return nil
	})
}

// SkipRest ends the current rest immediately.
func (e *Engine) SkipRest() error {
	return e.apply("skip_rest", func(now time.Time, _ *effects) error {
		if !e.state.Phase.resting() {
			return rejected("not resting")
		}
		e.endRestLocked(now)
		return nil
	})
}

// CompleteWorkout finishes the session early. Exercises that were not finished are left out of the record.
func (e *Engine) CompleteWorkout() error {
	return e.apply("complete_workout", func(now time.Time, _ *effects) error {
		if e.state.Phase == PhaseNotStarted {
			return rejected("not started")
		}
		if e.state.Phase == PhaseCompleted {
			return rejected("already completed")
		}
		e.finishLocked(now)
		return nil
	})
}

// Close abandons the session. All timers are cancelled and no completion is delivered.
// Subsequent commands are rejected. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopTickerLocked()
	e.subscribers = make(map[int]func(Snapshot))
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "engine closed",
		slog.String("phase", string(e.state.Phase)))
}

// handleTick applies one clock tick. Ticks from a stopped ticker are ignored.
func (e *Engine) handleTick(gen uint64) {
	_ = e.apply("tick", func(now time.Time, _ *effects) error {
		if gen != e.tickerGen || e.ticker == nil {
			return rejected("stale tick")
		}
		switch e.state.Phase {
		case PhaseExerciseActive:
			if e.plan.Exercises[e.state.ExerciseIndex].Kind != KindTimeBased {
				return rejected("rep-based exercise")
			}
			if e.state.TimeRemainingSeconds > 0 {
				e.state.TimeRemainingSeconds--
			}
			if e.state.TimeRemainingSeconds == 0 {
				e.completeExerciseLocked(now)
			}
		case PhaseSetRest, PhaseExerciseRest:
			if e.state.RestRemainingSeconds > 0 {
				e.state.RestRemainingSeconds--
			}
			if e.state.RestRemainingSeconds == 0 {
				e.endRestLocked(now)
			}
		case PhaseNotStarted, PhasePaused, PhaseCompleted:
			return rejected("not running")
		}
		return nil
	})
}

func (e *Engine) activeRepExerciseLocked() (ExerciseSpec, error) {
	if e.state.Phase != PhaseExerciseActive {
		return ExerciseSpec{}, rejected("no active exercise")
	}
	ex := e.plan.Exercises[e.state.ExerciseIndex]
	if ex.Kind != KindRepBased {
		return ExerciseSpec{}, rejected("exercise is time-based")
	}
	return ex, nil
}

// activeLocked returns the session time with pauses excluded.
func (e *Engine) activeLocked(now time.Time) time.Duration {
	if e.runningSince.IsZero() {
		return e.activeBefore
	}
	return e.activeBefore + now.Sub(e.runningSince)
}

func (e *Engine) resetCountersLocked() {
	ex := e.plan.Exercises[e.state.ExerciseIndex]
	e.state.CurrentSet = 1
	e.state.RepsCompletedInSet = 0
	e.state.TimeRemainingSeconds = 0
	if ex.Kind == KindTimeBased {
		e.state.TimeRemainingSeconds = ex.DurationSeconds
	}
	e.state.RestRemainingSeconds = 0
	e.setReps = nil
}

func (e *Engine) beginExerciseLocked(now time.Time) {
	e.resetCountersLocked()
	ex := e.plan.Exercises[e.state.ExerciseIndex]
	e.state.Phase = PhaseExerciseActive
	e.exerciseStartActive = e.activeLocked(now)
	e.message = e.motivation(ex.Category)
	e.syncTickerLocked()
}

func (e *Engine) completeSetLocked(now time.Time) {
	ex := e.plan.Exercises[e.state.ExerciseIndex]
	e.setReps = append(e.setReps, e.state.RepsCompletedInSet)
	if e.state.CurrentSet >= ex.Sets {
		e.completeExerciseLocked(now)
		return
	}
	e.state.CurrentSet++
	e.state.RepsCompletedInSet = 0
	e.message = e.motivation(ex.Category)
	if rest := ex.SetRest(); rest > 0 {
		e.enterRestLocked(PhaseSetRest, rest)
	}
}

func (e *Engine) completeExerciseLocked(now time.Time) {
	ex := e.plan.Exercises[e.state.ExerciseIndex]
	elapsed := e.activeLocked(now) - e.exerciseStartActive
	record := CompletedExerciseRecord{
		Spec:            ex,
		SetsCompleted:   1,
		RepsPerSet:      nil,
		DurationSeconds: elapsed.Seconds(),
		CaloriesBurned:  int(math.Round(ex.CaloriesPerMinute() * elapsed.Minutes())),
	}
	if ex.Kind == KindRepBased {
		record.SetsCompleted = len(e.setReps)
		record.RepsPerSet = e.setReps
	}
	e.records = append(e.records, record)
	e.setReps = nil

	if e.state.ExerciseIndex+1 >= len(e.plan.Exercises) {
		e.state.ExerciseIndex = len(e.plan.Exercises)
		e.finishLocked(now)
		return
	}
	e.state.ExerciseIndex++
	e.resetCountersLocked()
	if rest := ex.Rest(); rest > 0 {
		e.enterRestLocked(PhaseExerciseRest, rest)
		return
	}
	e.beginExerciseLocked(now)
}

func (e *Engine) enterRestLocked(phase Phase, seconds int) {
	e.state.Phase = phase
	e.state.RestRemainingSeconds = seconds
	e.syncTickerLocked()
}

func (e *Engine) endRestLocked(now time.Time) {
	phase := e.state.Phase
	e.state.RestRemainingSeconds = 0
	if phase == PhaseExerciseRest {
		e.beginExerciseLocked(now)
		return
	}
	e.state.Phase = PhaseExerciseActive
	e.syncTickerLocked()
}

func (e *Engine) finishLocked(now time.Time) {
	e.stopTickerLocked()
	e.activeBefore = e.activeLocked(now)
	e.runningSince = time.Time{}
	e.state.Phase = PhaseCompleted
	e.state.IsPaused = false
	e.state.RestRemainingSeconds = 0
	e.resumePhase = ""
	e.message = ""
	data := BuildCompletionData(e.state, len(e.plan.Exercises), e.records, e.startTime, now, e.activeBefore)
	e.completion = &data
}

// syncTickerLocked starts a fresh ticker when the current phase counts down and stops it otherwise.
// Every phase entry gets a full first interval.
func (e *Engine) syncTickerLocked() {
	e.stopTickerLocked()
	needsTicker := e.state.Phase.resting() ||
		(e.state.Phase == PhaseExerciseActive && e.plan.Exercises[e.state.ExerciseIndex].Kind == KindTimeBased)
	if !needsTicker {
		return
	}
	gen := e.tickerGen
	e.ticker = e.clock.Every(e.tickInterval, func() { e.handleTick(gen) })
}

func (e *Engine) stopTickerLocked() {
	e.tickerGen++
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}
