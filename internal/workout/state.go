package workout

// Phase is the position of the engine in the workout state machine.
type Phase string

const (
	PhaseNotStarted     Phase = "not_started"
	PhaseExerciseActive Phase = "exercise_active"
	PhaseSetRest        Phase = "set_rest"
	PhaseExerciseRest   Phase = "exercise_rest"
	PhasePaused         Phase = "paused"
	PhaseCompleted      Phase = "completed"
)

// resting reports whether p counts down a rest interval.
func (p Phase) resting() bool {
	return p == PhaseSetRest || p == PhaseExerciseRest
}

// running reports whether the session is started, not paused and not finished.
func (p Phase) running() bool {
	return p == PhaseExerciseActive || p.resting()
}

// State is the engine's position within the plan.
//
// ExerciseIndex stays below the plan length except in PhaseCompleted after the last exercise.
// During PhaseExerciseRest the index already points at the upcoming exercise, whose counters are fresh.
type State struct {
	ExerciseIndex        int   `json:"exercise_index"`
	CurrentSet           int   `json:"current_set"`
	RepsCompletedInSet   int   `json:"reps_completed_in_set"`
	TimeRemainingSeconds int   `json:"time_remaining_seconds"`
	RestRemainingSeconds int   `json:"rest_remaining_seconds"`
	Phase                Phase `json:"phase"`
	IsPaused             bool  `json:"is_paused"`
}
