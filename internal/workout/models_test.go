package workout_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/petrarun/internal/ptr"
	"github.com/myrjola/petrarun/internal/workout"
)

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    workout.Plan
		wantErr string
	}{
		{
			name:    "valid",
			plan:    plan(timed("Run", 30, 10), reps("Squat", 3, 10, 30, 60)),
			wantErr: "",
		},
		{
			name:    "empty",
			plan:    plan(),
			wantErr: "plan has no exercises",
		},
		{
			name:    "missing name",
			plan:    workout.Plan{ID: 0, Name: "", Exercises: []workout.ExerciseSpec{timed("Run", 30, 0)}},
			wantErr: "plan name is required",
		},
		{
			name:    "zero sets",
			plan:    plan(reps("Squat", 0, 10, 30, 60)),
			wantErr: "sets must be at least 1",
		},
		{
			name:    "zero reps",
			plan:    plan(reps("Squat", 3, 0, 30, 60)),
			wantErr: "reps per set must be at least 1",
		},
		{
			name:    "negative rest",
			plan:    plan(timed("Run", 30, -1)),
			wantErr: "rest must not be negative",
		},
		{
			name: "unknown category",
			plan: plan(workout.ExerciseSpec{ //nolint:exhaustruct // only the invalid field matters.
				Name:            "Yoga",
				Kind:            workout.KindTimeBased,
				Category:        "zen",
				DurationSeconds: 60,
			}),
			wantErr: `unknown category "zen"`,
		},
		{
			name: "unknown kind",
			plan: plan(workout.ExerciseSpec{ //nolint:exhaustruct // only the invalid field matters.
				Name:     "Yoga",
				Kind:     "vibes",
				Category: workout.CategoryFlexibility,
			}),
			wantErr: `unknown kind "vibes"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, workout.ErrInvalidPlan) {
				t.Fatalf("Validate() = %v, want ErrInvalidPlan", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExerciseSpec_Defaults(t *testing.T) {
	ex := workout.ExerciseSpec{Name: "Row", Kind: workout.KindRepBased, Sets: 4} //nolint:exhaustruct // defaults.
	if ex.Rest() != workout.DefaultRestSeconds {
		t.Errorf("Rest() = %d, want %d", ex.Rest(), workout.DefaultRestSeconds)
	}
	if ex.SetRest() != workout.DefaultSetRestSeconds {
		t.Errorf("SetRest() = %d, want %d", ex.SetRest(), workout.DefaultSetRestSeconds)
	}
	ex.RestSeconds = ptr.Ref(0)
	if ex.Rest() != 0 {
		t.Errorf("Rest() = %d, want explicit 0", ex.Rest())
	}
	if ex.TotalSets() != 4 {
		t.Errorf("TotalSets() = %d, want 4", ex.TotalSets())
	}
}

func TestCategory_CaloriesPerMinute(t *testing.T) {
	want := map[workout.Category]float64{
		workout.CategoryStrength:    8,
		workout.CategoryCardio:      12,
		workout.CategoryFlexibility: 3,
		workout.CategoryBalance:     4,
		workout.CategoryPlyometric:  15,
		workout.CategoryEndurance:   10,
		workout.CategoryWarmup:      5,
		workout.CategoryCooldown:    4,
	}
	got := make(map[workout.Category]float64)
	for _, c := range workout.Categories() {
		got[c] = c.CaloriesPerMinute()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("burn rates mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCompletionData(t *testing.T) {
	records := []workout.CompletedExerciseRecord{
		{Spec: timed("Run", 30, 0), SetsCompleted: 1, RepsPerSet: nil, DurationSeconds: 30, CaloriesBurned: 6},
		{Spec: reps("Squat", 2, 5, 0, 0), SetsCompleted: 2, RepsPerSet: []int{5, 4}, DurationSeconds: 45, CaloriesBurned: 6},
	}
	start := epoch
	now := epoch.Add(2 * time.Minute)

	t.Run("final", func(t *testing.T) {
		state := workout.State{ExerciseIndex: 2, Phase: workout.PhaseCompleted} //nolint:exhaustruct // counters unused.
		got := workout.BuildCompletionData(state, 2, records, start, now, 90*time.Second)
		want := workout.CompletionData{
			StartTime:            start,
			EndTime:              now,
			TotalDurationSeconds: 90,
			TotalCaloriesBurned:  12,
			CompletedExercises:   records,
			IsFullyCompleted:     true,
			UserRating:           nil,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		got.CompletedExercises[1].RepsPerSet[0] = 99
		if records[1].RepsPerSet[0] != 5 {
			t.Error("BuildCompletionData shares RepsPerSet with its input")
		}
	})

	t.Run("partial", func(t *testing.T) {
		state := workout.State{ExerciseIndex: 1, Phase: workout.PhaseExerciseActive} //nolint:exhaustruct // counters unused.
		got := workout.BuildCompletionData(state, 3, records[:1], start, now, time.Minute)
		if got.IsFullyCompleted {
			t.Error("IsFullyCompleted = true for a running session")
		}
		if len(got.CompletedExercises) != 1 || got.TotalCaloriesBurned != 6 {
			t.Errorf("got %d exercises and %d kcal", len(got.CompletedExercises), got.TotalCaloriesBurned)
		}
	})

	t.Run("completed early", func(t *testing.T) {
		state := workout.State{ExerciseIndex: 1, Phase: workout.PhaseCompleted} //nolint:exhaustruct // counters unused.
		if got := workout.BuildCompletionData(state, 3, records, start, now, time.Minute); got.IsFullyCompleted {
			t.Error("IsFullyCompleted = true with exercises left")
		}
	})
}

func TestParsePlanYAML(t *testing.T) {
	const doc = `
name: Morning circuit
exercises:
  - name: Jumping jacks
    kind: time_based
    category: warmup
    duration_seconds: 60
    rest_seconds: 15
  - name: Goblet squat
    kind: rep_based
    category: strength
    sets: 3
    reps_per_set: 12
    set_rest_seconds: 45
    description_markdown: |
      Keep your **chest up**.
`
	got, err := workout.ParsePlanYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParsePlanYAML: %v", err)
	}
	want := workout.Plan{
		ID:   0,
		Name: "Morning circuit",
		Exercises: []workout.ExerciseSpec{
			{
				Name:                "Jumping jacks",
				Kind:                workout.KindTimeBased,
				Category:            workout.CategoryWarmup,
				DurationSeconds:     60,
				Sets:                0,
				RepsPerSet:          0,
				RestSeconds:         ptr.Ref(15),
				SetRestSeconds:      nil,
				DescriptionMarkdown: "",
				VideoURL:            "",
			},
			{
				Name:                "Goblet squat",
				Kind:                workout.KindRepBased,
				Category:            workout.CategoryStrength,
				DurationSeconds:     0,
				Sets:                3,
				RepsPerSet:          12,
				RestSeconds:         nil,
				SetRestSeconds:      ptr.Ref(45),
				DescriptionMarkdown: "Keep your **chest up**.\n",
				VideoURL:            "",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	if err = got.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if _, err = workout.ParsePlanYAML(strings.NewReader("name: x\nexcercises: []\n")); err == nil {
		t.Error("expected unknown field to be rejected")
	}
}
