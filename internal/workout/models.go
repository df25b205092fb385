package workout

import (
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/petrarun/internal/ptr"
)

var (
	// ErrNotFound is returned when a plan, session, or completion does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRejected is returned when a command is not valid in the engine's current phase.
	// The engine state is left untouched.
	ErrRejected = errors.New("command rejected")
	// ErrInvalidPlan is returned when a plan cannot be executed.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrInvalidRating is returned when a completion rating is outside 1-5.
	ErrInvalidRating = errors.New("invalid rating")
)

const (
	// DefaultRestSeconds is the rest inserted after an exercise when the plan does not say otherwise.
	DefaultRestSeconds = 60
	// DefaultSetRestSeconds is the rest inserted between sets of a rep-based exercise.
	DefaultSetRestSeconds = 30

	MinRating = 1
	MaxRating = 5
)

// Kind tells whether an exercise is measured by a countdown or by repetitions.
type Kind string

const (
	KindTimeBased Kind = "time_based"
	KindRepBased  Kind = "rep_based"
)

// Category classifies an exercise and determines its calorie burn rate.
type Category string

const (
	CategoryStrength    Category = "strength"
	CategoryCardio      Category = "cardio"
	CategoryFlexibility Category = "flexibility"
	CategoryBalance     Category = "balance"
	CategoryPlyometric  Category = "plyometric"
	CategoryEndurance   Category = "endurance"
	CategoryWarmup      Category = "warmup"
	CategoryCooldown    Category = "cooldown"
)

//nolint:gochecknoglobals,mnd // lookup table of kcal per minute.
var caloriesPerMinute = map[Category]float64{
	CategoryStrength:    8.0,
	CategoryCardio:      12.0,
	CategoryFlexibility: 3.0,
	CategoryBalance:     4.0,
	CategoryPlyometric:  15.0,
	CategoryEndurance:   10.0,
	CategoryWarmup:      5.0,
	CategoryCooldown:    4.0,
}

// Categories lists all categories in display order.
func Categories() []Category {
	return []Category{
		CategoryStrength,
		CategoryCardio,
		CategoryFlexibility,
		CategoryBalance,
		CategoryPlyometric,
		CategoryEndurance,
		CategoryWarmup,
		CategoryCooldown,
	}
}

// CaloriesPerMinute returns the burn rate of the category in kcal/min. Unknown categories burn nothing.
func (c Category) CaloriesPerMinute() float64 {
	return caloriesPerMinute[c]
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := caloriesPerMinute[c]
	return ok
}

// ExerciseSpec describes one exercise of a plan.
type ExerciseSpec struct {
	Name     string   `json:"name"     yaml:"name"`
	Kind     Kind     `json:"kind"     yaml:"kind"`
	Category Category `json:"category" yaml:"category"`
	// DurationSeconds is the countdown of a time-based exercise.
	DurationSeconds int `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	// Sets and RepsPerSet apply to rep-based exercises.
	Sets       int `json:"sets,omitempty"         yaml:"sets,omitempty"`
	RepsPerSet int `json:"reps_per_set,omitempty" yaml:"reps_per_set,omitempty"`
	// RestSeconds is the rest inserted after this exercise. Nil means DefaultRestSeconds.
	RestSeconds *int `json:"rest_seconds,omitempty" yaml:"rest_seconds,omitempty"`
	// SetRestSeconds is the rest between sets. Nil means DefaultSetRestSeconds.
	SetRestSeconds      *int   `json:"set_rest_seconds,omitempty"     yaml:"set_rest_seconds,omitempty"`
	DescriptionMarkdown string `json:"description_markdown,omitempty" yaml:"description_markdown,omitempty"`
	VideoURL            string `json:"video_url,omitempty"            yaml:"video_url,omitempty"`
}

// Rest returns the rest after the exercise in seconds.
func (e ExerciseSpec) Rest() int {
	return ptr.ValueOr(e.RestSeconds, DefaultRestSeconds)
}

// SetRest returns the rest between sets in seconds.
func (e ExerciseSpec) SetRest() int {
	return ptr.ValueOr(e.SetRestSeconds, DefaultSetRestSeconds)
}

// TotalSets returns the number of sets. A time-based exercise counts as one set.
func (e ExerciseSpec) TotalSets() int {
	if e.Kind == KindRepBased {
		return e.Sets
	}
	return 1
}

func (e ExerciseSpec) CaloriesPerMinute() float64 {
	return e.Category.CaloriesPerMinute()
}

func (e ExerciseSpec) clone() ExerciseSpec {
	c := e
	if e.RestSeconds != nil {
		c.RestSeconds = ptr.Ref(*e.RestSeconds)
	}
	if e.SetRestSeconds != nil {
		c.SetRestSeconds = ptr.Ref(*e.SetRestSeconds)
	}
	return c
}

func (e ExerciseSpec) validate() error {
	var errs []error
	if e.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !e.Category.Valid() {
		errs = append(errs, fmt.Errorf("unknown category %q", e.Category))
	}
	switch e.Kind {
	case KindTimeBased:
		if e.DurationSeconds < 0 {
			errs = append(errs, errors.New("duration must not be negative"))
		}
	case KindRepBased:
		if e.Sets < 1 {
			errs = append(errs, errors.New("sets must be at least 1"))
		}
		if e.RepsPerSet < 1 {
			errs = append(errs, errors.New("reps per set must be at least 1"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", e.Kind))
	}
	if e.RestSeconds != nil && *e.RestSeconds < 0 {
		errs = append(errs, errors.New("rest must not be negative"))
	}
	if e.SetRestSeconds != nil && *e.SetRestSeconds < 0 {
		errs = append(errs, errors.New("set rest must not be negative"))
	}
	return errors.Join(errs...)
}

// Plan is an ordered sequence of exercises executed in one workout session.
type Plan struct {
	ID        int            `json:"id"        yaml:"-"`
	Name      string         `json:"name"      yaml:"name"`
	Exercises []ExerciseSpec `json:"exercises" yaml:"exercises"`
}

// Validate reports every problem with the plan. The returned error wraps ErrInvalidPlan.
func (p Plan) Validate() error {
	if len(p.Exercises) == 0 {
		return fmt.Errorf("%w: plan has no exercises", ErrInvalidPlan)
	}
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("plan name is required"))
	}
	for i, ex := range p.Exercises {
		if err := ex.validate(); err != nil {
			errs = append(errs, fmt.Errorf("exercise %d %q: %w", i+1, ex.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return nil
}

// ExerciseNames returns the names of the exercises in plan order.
func (p Plan) ExerciseNames() []string {
	names := make([]string, len(p.Exercises))
	for i, ex := range p.Exercises {
		names[i] = ex.Name
	}
	return names
}

// CompletedExerciseRecord summarises one finished exercise. Records are never modified after creation.
type CompletedExerciseRecord struct {
	Spec          ExerciseSpec `json:"spec"`
	SetsCompleted int          `json:"sets_completed"`
	// RepsPerSet holds the reps of each recorded set. Empty for time-based exercises.
	RepsPerSet []int `json:"reps_per_set"`
	// DurationSeconds is the elapsed time spent on the exercise, excluding pauses.
	DurationSeconds float64 `json:"duration_seconds"`
	CaloriesBurned  int     `json:"calories_burned"`
}

func (r CompletedExerciseRecord) clone() CompletedExerciseRecord {
	c := r
	c.Spec = r.Spec.clone()
	if r.RepsPerSet != nil {
		c.RepsPerSet = make([]int, len(r.RepsPerSet))
		copy(c.RepsPerSet, r.RepsPerSet)
	}
	return c
}

// CompletionData is the persistable summary of a finished or abandoned workout session.
type CompletionData struct {
	StartTime            time.Time                 `json:"start_time"`
	EndTime              time.Time                 `json:"end_time"`
	TotalDurationSeconds float64                   `json:"total_duration_seconds"`
	TotalCaloriesBurned  int                       `json:"total_calories_burned"`
	CompletedExercises   []CompletedExerciseRecord `json:"completed_exercises"`
	IsFullyCompleted     bool                      `json:"is_fully_completed"`
	UserRating           *int                      `json:"user_rating,omitempty"`
}

// Completion is a stored CompletionData together with the session and plan it came from.
type Completion struct {
	ID       string `json:"id"`
	PlanID   int    `json:"plan_id"`
	PlanName string `json:"plan_name"`
	CompletionData
}

func (c CompletionData) clone() CompletionData {
	out := c
	out.CompletedExercises = make([]CompletedExerciseRecord, len(c.CompletedExercises))
	for i, r := range c.CompletedExercises {
		out.CompletedExercises[i] = r.clone()
	}
	if c.UserRating != nil {
		out.UserRating = ptr.Ref(*c.UserRating)
	}
	return out
}
