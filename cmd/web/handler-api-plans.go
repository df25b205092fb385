package main

import (
	"net/http"
	"strconv"

	"github.com/myrjola/petrarun/internal/workout"
)

func (app *application) plansAPIGET(w http.ResponseWriter, r *http.Request) {
	plans, err := app.workoutService.ListPlans(r.Context())
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, plans)
}

func (app *application) planAPIGET(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntParam(w, r, "id")
	if !ok {
		return
	}
	plan, err := app.workoutService.GetPlan(r.Context(), id)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

// plansAPIPOST stores a new plan. The id in the body is ignored.
func (app *application) plansAPIPOST(w http.ResponseWriter, r *http.Request) {
	var plan workout.Plan
	if err := readJSON(w, r, &plan); err != nil {
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	plan.ID = 0
	created, err := app.workoutService.CreatePlan(r.Context(), plan)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/plans/"+strconv.Itoa(created.ID))
	app.writeJSON(w, r, http.StatusCreated, created)
}
