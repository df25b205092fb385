package errors_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/petrarun/internal/errors"
	"github.com/myrjola/petrarun/internal/testhelpers"
)

func TestAnnotatedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "sentinel",
			err:  errors.NewSentinel("command rejected"),
			want: "command rejected",
		},
		{
			name: "annotated error",
			err:  errors.Wrap(errors.NewSentinel("command rejected"), "skip rest", slog.String("phase", "paused")),
			want: "skip rest: command rejected",
		},
		{
			name: "nested annotated error",
			err: errors.Wrap(
				errors.Wrap(errors.NewSentinel("not found"), "get plan"),
				"start session",
			),
			want: "start session: get plan: not found",
		},
		{
			name: "new",
			err:  errors.New("plan is empty"),
			want: "plan is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := errors.Wrap(nil, "context"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestIsAndUnwrap(t *testing.T) {
	rootErr := errors.NewSentinel("root error")
	wrappedErr := errors.Wrap(rootErr, "context")

	if !errors.Is(wrappedErr, rootErr) {
		t.Errorf("Is() = false, want true for wrapped error")
	}
	if errors.Is(wrappedErr, errors.NewSentinel("root error")) {
		t.Errorf("Is() = true, want false for a different sentinel with the same text")
	}
	if unwrapped := errors.Unwrap(wrappedErr); unwrapped != rootErr { //nolint:errorlint // identity check.
		t.Errorf("Unwrap() = %v, want %v", unwrapped, rootErr)
	}
}

type phaseError struct {
	phase string
}

func (e *phaseError) Error() string {
	return "bad phase " + e.phase
}

func TestAs(t *testing.T) {
	rootErr := &phaseError{phase: "completed"}
	wrappedErr := errors.Wrap(rootErr, "pause")

	var target *phaseError
	if !errors.As(wrappedErr, &target) {
		t.Fatal("As() = false, want true")
	}
	if target != rootErr {
		t.Errorf("As() target = %v, want %v", target, rootErr)
	}
}

func TestSlogError(t *testing.T) {
	_, file, line, _ := runtime.Caller(0)
	err := errors.Wrap(errors.NewSentinel("root cause"), "context", slog.String("key", "value"), slog.Duration("duration", time.Second)) //nolint:lll // call site line is asserted.
	var buf bytes.Buffer
	l := testhelpers.NewLogger(&buf)
	l.Info("test", errors.SlogError(err))
	logLine := buf.String()
	expectedContent := []string{
		"error.message=\"context: root cause\"",
		"error.annotations.key=value",
		"error.annotations.duration=1s",
		fmt.Sprintf("%s:%d", file, line+1),
	}
	for _, content := range expectedContent {
		if !strings.Contains(logLine, content) {
			t.Errorf("expected log line %s to contain %s", logLine, content)
		}
	}
	if strings.Contains(logLine, "annotatederror.go") {
		t.Fatal("expected annotatederror.go NOT to be in log line")
	}

	// None of these may panic.
	errors.SlogError(errors.Join(nil, nil, errors.NewSentinel("sentinel"), errors.New("test")))
	errors.SlogError(nil)
	errors.SlogError(fmt.Errorf("test: %w", errors.NewSentinel("sentinel")))
	errors.SlogError(errors.Wrap(errors.Join(nil, nil), "wrap error"))
}

func TestDecoratePanic(t *testing.T) {
	var panicLine int
	defer func() {
		err := errors.DecoratePanic(recover())
		if err == nil {
			t.Fatal("expected error")
		}
		if got, want := err.Error(), "panic: boom"; got != want {
			t.Errorf("err.Error(): got %q, want %q", got, want)
		}
		attr := errors.SlogError(err)
		if want := fmt.Sprintf("annotatederror_test.go:%d", panicLine); !strings.Contains(attr.String(), want) {
			t.Errorf("attr.String(): expected %q to contain %q", attr.String(), want)
		}
	}()
	_, _, line, _ := runtime.Caller(0)
	panicLine = line + 1
	panic("boom")
}

func TestDecoratePanicNil(t *testing.T) {
	if err := errors.DecoratePanic(nil); err != nil {
		t.Errorf("DecoratePanic(nil) = %v, want nil", err)
	}
}
