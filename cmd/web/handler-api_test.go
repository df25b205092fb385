package main

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/myrjola/petrarun/internal/e2etest"
	"github.com/myrjola/petrarun/internal/ptr"
	"github.com/myrjola/petrarun/internal/testhelpers"
	"github.com/myrjola/petrarun/internal/workout"
)

func Test_application_api(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	do := func(t *testing.T, method, path string, in, out any, wantStatus int) {
		t.Helper()
		status, doErr := client.DoJSON(ctx, method, path, in, out)
		if doErr != nil {
			t.Fatalf("%s %s: %v", method, path, doErr)
		}
		if status != wantStatus {
			t.Fatalf("%s %s: expected status %d, got %d", method, path, wantStatus, status)
		}
	}

	plan := workout.Plan{
		ID:   0,
		Name: "Desk break",
		Exercises: []workout.ExerciseSpec{
			{ //nolint:exhaustruct // defaults
				Name: "Wall sit", Kind: workout.KindTimeBased, Category: workout.CategoryEndurance,
				DurationSeconds: 30, RestSeconds: ptr.Ref(0),
			},
			{ //nolint:exhaustruct // defaults
				Name: "Push-up", Kind: workout.KindRepBased, Category: workout.CategoryStrength,
				Sets: 1, RepsPerSet: 2,
			},
		},
	}

	t.Run("Plans", func(t *testing.T) {
		var plans []workout.Plan
		do(t, http.MethodGet, "/api/plans", nil, &plans, http.StatusOK)
		if len(plans) != 3 {
			t.Fatalf("Expected 3 fixture plans, got %d", len(plans))
		}

		var created workout.Plan
		do(t, http.MethodPost, "/api/plans", plan, &created, http.StatusCreated)
		if created.ID == 0 {
			t.Fatal("Expected the created plan to get an id")
		}

		var fetched workout.Plan
		do(t, http.MethodGet, "/api/plans/"+strconv.Itoa(created.ID), nil, &fetched, http.StatusOK)
		if diff := cmp.Diff(created, fetched, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Plan mismatch (-created +fetched):\n%s", diff)
		}

		do(t, http.MethodGet, "/api/plans/999", nil, nil, http.StatusNotFound)
		do(t, http.MethodPost, "/api/plans", workout.Plan{ID: 0, Name: "Empty", Exercises: nil}, nil,
			http.StatusUnprocessableEntity)
		do(t, http.MethodPost, "/api/plans", map[string]any{"name": "x", "unknown": true}, nil,
			http.StatusBadRequest)
	})

	t.Run("Session lifecycle", func(t *testing.T) {
		var sess sessionResponse
		do(t, http.MethodPost, "/api/sessions", sessionRequest{PlanID: 0, Plan: &plan}, &sess, http.StatusCreated)
		if sess.ID == "" {
			t.Fatal("Expected a session id")
		}
		if sess.State.Phase != workout.PhaseNotStarted || sess.TotalExercises != 2 {
			t.Errorf("Unexpected initial snapshot: %+v", sess.Snapshot)
		}
		base := "/api/sessions/" + sess.ID

		do(t, http.MethodPost, base+"/rep", nil, nil, http.StatusConflict)
		do(t, http.MethodPost, base+"/dance", nil, nil, http.StatusNotFound)

		do(t, http.MethodPost, base+"/start", nil, &sess, http.StatusOK)
		if sess.State.TimeRemainingSeconds != 30 || sess.Exercise == nil || sess.Exercise.Name != "Wall sit" {
			t.Errorf("Unexpected snapshot after start: %+v", sess.Snapshot)
		}
		do(t, http.MethodPost, base+"/pause", nil, &sess, http.StatusOK)
		if !sess.State.IsPaused {
			t.Error("Expected the session to be paused")
		}
		do(t, http.MethodPost, base+"/pause", nil, nil, http.StatusConflict)
		do(t, http.MethodPost, base+"/resume", nil, nil, http.StatusOK)

		// Zero rest goes straight to the next exercise.
		do(t, http.MethodPost, base+"/skip-set", nil, &sess, http.StatusOK)
		if sess.State.Phase != workout.PhaseExerciseActive || sess.Exercise.Name != "Push-up" {
			t.Errorf("Expected Push-up to be active, got %+v", sess.Snapshot)
		}

		var partial workout.CompletionData
		do(t, http.MethodGet, base+"/completion", nil, &partial, http.StatusOK)
		if partial.IsFullyCompleted || len(partial.CompletedExercises) != 1 {
			t.Errorf("Unexpected partial completion: %+v", partial)
		}

		do(t, http.MethodPost, base+"/rep", nil, nil, http.StatusOK)
		do(t, http.MethodPost, base+"/rep", nil, &sess, http.StatusOK)
		if sess.State.Phase != workout.PhaseCompleted || sess.OverallProgress != 1 {
			t.Errorf("Expected a completed session, got %+v", sess.Snapshot)
		}

		var completion workout.Completion
		do(t, http.MethodGet, "/api/completions/"+sess.ID, nil, &completion, http.StatusOK)
		if !completion.IsFullyCompleted || completion.PlanName != "Desk break" || completion.PlanID != 0 {
			t.Errorf("Unexpected completion: %+v", completion)
		}
		if diff := cmp.Diff([]int{2}, completion.CompletedExercises[1].RepsPerSet); diff != "" {
			t.Errorf("Reps mismatch (-want +got):\n%s", diff)
		}

		do(t, http.MethodPost, "/api/completions/"+sess.ID+"/rating/6", nil, nil, http.StatusUnprocessableEntity)
		do(t, http.MethodPost, "/api/completions/"+sess.ID+"/rating/5", nil, nil, http.StatusNoContent)
		do(t, http.MethodPost, "/api/completions/missing/rating/5", nil, nil, http.StatusNotFound)

		var completions []workout.Completion
		do(t, http.MethodGet, "/api/completions?limit=10", nil, &completions, http.StatusOK)
		if len(completions) != 1 || completions[0].UserRating == nil || *completions[0].UserRating != 5 {
			t.Errorf("Expected one rated completion, got %+v", completions)
		}
		do(t, http.MethodGet, "/api/completions?limit=zero", nil, nil, http.StatusBadRequest)
	})

	t.Run("Abandon a session", func(t *testing.T) {
		var sess sessionResponse
		do(t, http.MethodPost, "/api/sessions", sessionRequest{PlanID: 1, Plan: nil}, &sess, http.StatusCreated)
		do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/start", nil, nil, http.StatusOK)
		do(t, http.MethodDelete, "/api/sessions/"+sess.ID, nil, nil, http.StatusNoContent)
		do(t, http.MethodGet, "/api/sessions/"+sess.ID, nil, nil, http.StatusNotFound)
		do(t, http.MethodDelete, "/api/sessions/"+sess.ID, nil, nil, http.StatusNotFound)
		do(t, http.MethodGet, "/api/completions/"+sess.ID, nil, nil, http.StatusNotFound)
	})

	t.Run("Invalid session requests", func(t *testing.T) {
		do(t, http.MethodPost, "/api/sessions", sessionRequest{PlanID: 0, Plan: nil}, nil, http.StatusBadRequest)
		do(t, http.MethodPost, "/api/sessions", sessionRequest{PlanID: 404, Plan: nil}, nil, http.StatusNotFound)
		do(t, http.MethodPost, "/api/sessions",
			sessionRequest{PlanID: 0, Plan: &workout.Plan{ID: 0, Name: "Empty", Exercises: nil}}, nil,
			http.StatusUnprocessableEntity)
	})
}
