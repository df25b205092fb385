package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/petrarun/internal/logging"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(), slog.String("trace_id", "abc"))
	ctx = logging.WithAttrs(ctx, slog.String("session_id", "s1"))
	logger.LogAttrs(ctx, slog.LevelInfo, "tick")

	line := buf.String()
	for _, want := range []string{"trace_id=abc", "session_id=s1", "msg=tick"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q does not contain %q", line, want)
		}
	}
}

func TestWithAttrsDoesNotLeakBetweenBranches(t *testing.T) {
	base := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	left := logging.WithAttrs(base, slog.String("b", "2"))
	right := logging.WithAttrs(base, slog.String("c", "3"))

	if got := len(logging.Attrs(left)); got != 2 {
		t.Errorf("left attrs = %d, want 2", got)
	}
	if got := logging.Attrs(right); len(got) != 2 || got[1].Key != "c" {
		t.Errorf("right attrs = %v, want [a c]", got)
	}
}
