package main

import (
	"net/http"

	"github.com/myrjola/petrarun/internal/workout"
)

// sessionCommands maps the command path segment to the engine operation it triggers.
//
//nolint:gochecknoglobals // lookup table.
var sessionCommands = map[string]func(*workout.Engine) error{
	"start":     (*workout.Engine).Start,
	"pause":     (*workout.Engine).Pause,
	"resume":    (*workout.Engine).Resume,
	"rep":       (*workout.Engine).IncrementRep,
	"set":       (*workout.Engine).CompleteSet,
	"skip-set":  (*workout.Engine).SkipCurrentSet,
	"skip-rest": (*workout.Engine).SkipRest,
	"complete":  (*workout.Engine).CompleteWorkout,
}

type sessionResponse struct {
	ID string `json:"id"`
	workout.Snapshot
}

// sessionRequest starts a session either from a stored plan or from a plan given inline.
type sessionRequest struct {
	PlanID int           `json:"plan_id"`
	Plan   *workout.Plan `json:"plan,omitempty"`
}

func newSessionResponse(sess *workout.Session) sessionResponse {
	return sessionResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot()}
}

func (app *application) sessionsAPIPOST(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := readJSON(w, r, &req); err != nil {
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var (
		sess *workout.Session
		err  error
	)
	switch {
	case req.Plan != nil:
		plan := *req.Plan
		plan.ID = 0
		sess, err = app.workoutService.StartSessionWithPlan(r.Context(), plan)
	case req.PlanID > 0:
		sess, err = app.workoutService.StartSession(r.Context(), req.PlanID)
	default:
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "plan_id or plan is required"})
		return
	}
	if err != nil {
		app.apiError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	app.writeJSON(w, r, http.StatusCreated, newSessionResponse(sess))
}

func (app *application) sessionAPIGET(w http.ResponseWriter, r *http.Request) {
	sess, err := app.workoutService.Session(r.PathValue("id"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newSessionResponse(sess))
}

// sessionAPIDELETE abandons the session. A completed session's record is kept.
func (app *application) sessionAPIDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.workoutService.EndSession(r.Context(), r.PathValue("id")); err != nil {
		app.apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionCommandAPIPOST applies a command and responds with the snapshot after it.
func (app *application) sessionCommandAPIPOST(w http.ResponseWriter, r *http.Request) {
	command, ok := sessionCommands[r.PathValue("command")]
	if !ok {
		app.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "unknown command"})
		return
	}
	sess, err := app.workoutService.Session(r.PathValue("id"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	if err = command(sess.Engine); err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newSessionResponse(sess))
}

// sessionCompletionAPIGET responds with the completion summary so far, or the final one once completed.
func (app *application) sessionCompletionAPIGET(w http.ResponseWriter, r *http.Request) {
	sess, err := app.workoutService.Session(r.PathValue("id"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sess.Engine.PartialCompletionData())
}
