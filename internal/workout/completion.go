package workout

import "time"

// BuildCompletionData summarises a session. It is used for both the final record and partial snapshots.
//
// The session is fully completed only when the engine reached PhaseCompleted with a record for every exercise of
// the plan. Reaching the last exercise is not enough: finishing early during it leaves that exercise unrecorded,
// so the session counts as partial. activeDuration is the session time with pauses excluded. Records are copied.
func BuildCompletionData(
	state State,
	planLength int,
	records []CompletedExerciseRecord,
	startTime time.Time,
	now time.Time,
	activeDuration time.Duration,
) CompletionData {
	completed := make([]CompletedExerciseRecord, len(records))
	calories := 0
	for i, r := range records {
		completed[i] = r.clone()
		calories += r.CaloriesBurned
	}
	return CompletionData{
		StartTime:            startTime,
		EndTime:              now,
		TotalDurationSeconds: activeDuration.Seconds(),
		TotalCaloriesBurned:  calories,
		CompletedExercises:   completed,
		IsFullyCompleted:     state.Phase == PhaseCompleted && planLength > 0 && len(records) == planLength,
		UserRating:           nil,
	}
}
