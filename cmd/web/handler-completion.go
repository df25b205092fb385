package main

import (
	"net/http"
	"strconv"

	"github.com/myrjola/petrarun/internal/errors"
	"github.com/myrjola/petrarun/internal/workout"
)

type completionTemplateData struct {
	BaseTemplateData
	Completion completionView
	Exercises  []workout.CompletedExerciseRecord
	// Ratings are the values offered by the rating form.
	Ratings []int
}

func (app *application) completionGET(w http.ResponseWriter, r *http.Request) {
	c, err := app.workoutService.GetCompletion(r.Context(), r.PathValue("id"))
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	ratings := make([]int, 0, workout.MaxRating)
	for i := workout.MinRating; i <= workout.MaxRating; i++ {
		ratings = append(ratings, i)
	}
	data := completionTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Completion:       toCompletionView(c),
		Exercises:        c.CompletedExercises,
		Ratings:          ratings,
	}
	app.render(w, r, http.StatusOK, "completion", data)
}

func (app *application) completionRatingPOST(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rating, err := strconv.Atoi(r.PostFormValue("rating"))
	if err != nil {
		http.Error(w, "Invalid rating", http.StatusBadRequest)
		return
	}
	err = app.workoutService.RateCompletion(r.Context(), id, rating)
	switch {
	case errors.Is(err, workout.ErrNotFound):
		app.notFound(w, r)
		return
	case errors.Is(err, workout.ErrInvalidRating):
		http.Error(w, "Invalid rating", http.StatusUnprocessableEntity)
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}
	redirect(w, r, "/completions/"+id)
}
