package main

import (
	"net/http"
	"time"

	"github.com/myrjola/petrarun/internal/workout"
)

const (
	maxRatingStars    = workout.MaxRating
	recentCompletions = 5
)

type homeTemplateData struct {
	BaseTemplateData
	Plans  []planView
	Recent []completionView
	// HasActiveWorkout is set when the browser follows a workout that is not completed yet.
	HasActiveWorkout bool
}

type planView struct {
	ID            int
	Name          string
	ExerciseCount int
	// EstimatedSeconds counts the time-based exercises and the rests between exercises.
	EstimatedSeconds int
}

type completionView struct {
	ID              string
	PlanName        string
	EndTime         time.Time
	DurationSeconds int
	Calories        int
	FullyCompleted  bool
	// RatingStars represents filled and empty stars for display. Nil when not rated.
	RatingStars []bool
}

func toPlanViews(plans []workout.Plan) []planView {
	views := make([]planView, len(plans))
	for i, p := range plans {
		estimate := 0
		for j, ex := range p.Exercises {
			if ex.Kind == workout.KindTimeBased {
				estimate += ex.DurationSeconds
			}
			if j < len(p.Exercises)-1 {
				estimate += ex.Rest()
			}
		}
		views[i] = planView{
			ID:               p.ID,
			Name:             p.Name,
			ExerciseCount:    len(p.Exercises),
			EstimatedSeconds: estimate,
		}
	}
	return views
}

func ratingStars(rating *int) []bool {
	if rating == nil {
		return nil
	}
	stars := make([]bool, maxRatingStars)
	for i := range maxRatingStars {
		stars[i] = i < *rating
	}
	return stars
}

func toCompletionView(c workout.Completion) completionView {
	return completionView{
		ID:              c.ID,
		PlanName:        c.PlanName,
		EndTime:         c.EndTime,
		DurationSeconds: int(c.TotalDurationSeconds),
		Calories:        c.TotalCaloriesBurned,
		FullyCompleted:  c.IsFullyCompleted,
		RatingStars:     ratingStars(c.UserRating),
	}
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := app.workoutService.ListPlans(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	completions, err := app.workoutService.ListCompletions(ctx, recentCompletions)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Plans:            toPlanViews(plans),
		Recent:           make([]completionView, len(completions)),
		HasActiveWorkout: false,
	}
	for i, c := range completions {
		data.Recent[i] = toCompletionView(c)
	}
	if data.WorkoutSessionID != "" {
		if sess, sessErr := app.workoutService.Session(data.WorkoutSessionID); sessErr == nil {
			data.HasActiveWorkout = sess.Engine.Snapshot().State.Phase != workout.PhaseCompleted
		}
	}

	app.render(w, r, http.StatusOK, "home", data)
}
