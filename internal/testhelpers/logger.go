package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/petrarun/internal/logging"
)

// NewLogger creates a debug-level text logger writing to logSink, typically [NewWriter].
func NewLogger(logSink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))
}
