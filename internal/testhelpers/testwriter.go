package testhelpers

import (
	"io"
	"strings"
	"testing"
)

// Writer forwards writes to t.Log so that logs only show up for failing tests.
type Writer struct {
	t        testing.TB
	testDone chan struct{}
}

// NewWriter creates a Writer bound to t. Writing after the test has finished panics, which surfaces goroutines
// such as engine tickers or servers that outlive their test.
func NewWriter(t testing.TB) io.Writer {
	w := &Writer{
		t:        t,
		testDone: make(chan struct{}),
	}
	t.Cleanup(func() {
		close(w.testDone)
	})
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	select {
	case <-w.testDone:
		panic("testwriter: write after test completion, did a ticker or server outlive the test?")
	default:
		if output := strings.TrimSuffix(string(p), "\n"); output != "" {
			w.t.Log(output)
		}
		return len(p), nil
	}
}
