package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/petrarun/internal/contexthelpers"
	"github.com/myrjola/petrarun/internal/errors"
	"github.com/myrjola/petrarun/internal/workout"
)

type workoutTemplateData struct {
	BaseTemplateData
	Snapshot workout.Snapshot
	// Next is the exercise after the current one, if any.
	Next *workout.ExerciseSpec
	// Actions are the commands valid in the current phase, in display order.
	Actions []workoutAction
	// Paused and Resting are derived from the phase for the templates.
	Paused  bool
	Resting bool
}

type workoutAction struct {
	Command string
	Label   string
	Primary bool
}

// workoutActions lists the commands the engine accepts in the snapshot's phase.
func workoutActions(s workout.Snapshot) []workoutAction {
	var actions []workoutAction
	switch s.State.Phase {
	case workout.PhaseNotStarted:
		actions = append(actions, workoutAction{Command: "start", Label: "workout.start", Primary: true})
	case workout.PhaseExerciseActive:
		if s.Exercise != nil && s.Exercise.Kind == workout.KindRepBased {
			actions = append(actions,
				workoutAction{Command: "rep", Label: "workout.rep", Primary: true},
				workoutAction{Command: "set", Label: "workout.set", Primary: false})
		}
		actions = append(actions,
			workoutAction{Command: "skip-set", Label: "workout.skip_set", Primary: false},
			workoutAction{Command: "pause", Label: "workout.pause", Primary: false})
	case workout.PhaseSetRest, workout.PhaseExerciseRest:
		actions = append(actions,
			workoutAction{Command: "skip-rest", Label: "workout.skip_rest", Primary: true},
			workoutAction{Command: "pause", Label: "workout.pause", Primary: false})
	case workout.PhasePaused:
		actions = append(actions, workoutAction{Command: "resume", Label: "workout.resume", Primary: true})
	case workout.PhaseCompleted:
		return nil
	}
	if s.State.Phase != workout.PhaseNotStarted {
		actions = append(actions, workoutAction{Command: "complete", Label: "workout.complete", Primary: false})
	}
	return actions
}

// currentWorkout resolves the workout session the browser follows. A stale id is removed from the browser session.
func (app *application) currentWorkout(r *http.Request) (*workout.Session, bool) {
	id := contexthelpers.WorkoutSessionID(r.Context())
	if id == "" {
		return nil, false
	}
	sess, err := app.workoutService.Session(id)
	if err != nil {
		app.sessionManager.Remove(r.Context(), workoutSessionKey)
		return nil, false
	}
	return sess, true
}

// planStartPOST creates a workout session for the plan and makes the browser follow it.
// A workout the browser followed before is abandoned unless it completed.
func (app *application) planStartPOST(w http.ResponseWriter, r *http.Request) {
	planID, ok := parseIntParam(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	sess, err := app.workoutService.StartSession(ctx, planID)
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if previous, following := app.currentWorkout(r); following &&
		previous.Engine.Snapshot().State.Phase != workout.PhaseCompleted {
		if err = app.workoutService.EndSession(ctx, previous.ID); err != nil && !errors.Is(err, workout.ErrNotFound) {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to abandon previous workout", errors.SlogError(err))
		}
	}

	if err = app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(ctx, workoutSessionKey, sess.ID)

	redirect(w, r, "/workout")
}

func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	sess, ok := app.currentWorkout(r)
	if !ok {
		redirect(w, r, "/")
		return
	}

	snapshot := sess.Engine.Snapshot()
	if snapshot.State.Phase == workout.PhaseCompleted {
		redirect(w, r, "/completions/"+sess.ID)
		return
	}

	var next *workout.ExerciseSpec
	if plan := sess.Engine.Plan(); snapshot.HasNextExercise {
		next = &plan.Exercises[snapshot.State.ExerciseIndex+1]
	}
	phase := snapshot.State.Phase
	if phase == workout.PhasePaused {
		phase = snapshot.ResumePhase
	}

	data := workoutTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Snapshot:         snapshot,
		Next:             next,
		Actions:          workoutActions(snapshot),
		Paused:           snapshot.State.IsPaused,
		Resting:          phase == workout.PhaseSetRest || phase == workout.PhaseExerciseRest,
	}
	app.render(w, r, http.StatusOK, "workout", data)
}

// workoutCommandPOST applies a command to the followed workout. Commands that are not valid in the current phase,
// for example a double-submitted form, leave the workout unchanged.
func (app *application) workoutCommandPOST(w http.ResponseWriter, r *http.Request) {
	command, ok := sessionCommands[r.PathValue("command")]
	if !ok {
		app.notFound(w, r)
		return
	}
	sess, following := app.currentWorkout(r)
	if !following {
		redirect(w, r, "/")
		return
	}

	err := command(sess.Engine)
	if err != nil && !errors.Is(err, workout.ErrRejected) {
		app.serverError(w, r, err)
		return
	}
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "workout command rejected",
			slog.String("command", r.PathValue("command")), errors.SlogError(err))
	}

	redirect(w, r, "/workout")
}

// workoutEndPOST abandons the followed workout.
func (app *application) workoutEndPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sess, following := app.currentWorkout(r); following {
		if err := app.workoutService.EndSession(ctx, sess.ID); err != nil && !errors.Is(err, workout.ErrNotFound) {
			app.serverError(w, r, err)
			return
		}
	}
	app.sessionManager.Remove(ctx, workoutSessionKey)
	redirect(w, r, "/")
}
