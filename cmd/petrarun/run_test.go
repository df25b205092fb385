package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/petrarun/internal/clock"
	"github.com/myrjola/petrarun/internal/testhelpers"
	"github.com/myrjola/petrarun/internal/workout"
)

// execute runs the command line args with stdin and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(clock.NewManual(time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)))
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(testhelpers.NewWriter(t))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "valid plan", path: "testdata/plan.yaml", want: `"Lunch break" with 2 exercises`, wantErr: nil},
		{name: "invalid plan", path: "testdata/invalid.yaml", want: "", wantErr: workout.ErrInvalidPlan},
		{name: "unknown field", path: "testdata/unknown-field.yaml", want: "", wantErr: nil},
		{name: "missing file", path: "testdata/missing.yaml", want: "", wantErr: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", "validate", tt.path)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("Expected an error, got output %q", out)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected error to wrap %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected output to contain %q, got %q", tt.want, out)
			}
		})
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  []string
	}{
		{
			name:  "complete every exercise",
			stdin: "start\nskip\nn\nr\nr\nr\nr\n",
			args:  nil,
			want: []string{
				"Lunch break: 2 exercises",
				"[  0%] Plank | 0:30 left",
				"Rest 0:10",
				"Squat | Set 1 of 2 | 1 / 2 reps",
				"Squat | Set 2 of 2 | 0 / 2 reps",
				"[100%] completed",
				"Workout complete: every exercise done.",
				"2. Squat | 2 sets (2, 2)",
			},
		},
		{
			name:  "rejected and unknown commands",
			stdin: "rep\njump\nstart\npause\nstatus\nresume\ndone\n",
			args:  nil,
			want: []string{
				"Not now: command rejected",
				`Unknown command "jump"`,
				"Plank | 0:30 left | paused",
				"Workout finished early.",
			},
		},
		{
			name:  "quit abandons",
			stdin: "start\nq\nskip\n",
			args:  nil,
			want:  []string{"Workout abandoned."},
		},
		{
			name:  "end of input abandons",
			stdin: "start\n",
			args:  nil,
			want:  []string{"Workout abandoned."},
		},
		{
			name:  "store completion",
			stdin: "start\ndone\n",
			args:  []string{"--sqlite", ":memory:"},
			want:  []string{"Workout finished early.", "Stored completion "},
		},
		{
			name:  "finnish help",
			stdin: "help\nq\n",
			args:  []string{"--language", "fi"},
			want:  []string{"skip-rest, n", "Workout abandoned."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "testdata/plan.yaml"}, tt.args...)
			out, err := execute(t, tt.stdin, args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestRun_UnsupportedLanguage(t *testing.T) {
	if _, err := execute(t, "", "run", "testdata/plan.yaml", "--language", "sv"); err == nil {
		t.Fatal("Expected an error for an unsupported language")
	}
}
