// Package errors wraps the standard library errors with call-site and [slog.Attr] annotations so that a single
// log line carries the context collected while the error bubbled up.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	file  string
	line  int
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// callerSkip skips annotate and the exported constructor so the recorded site is the constructor's caller.
const callerSkip = 2

func annotate(err error, msg string, attrs []slog.Attr) *annotatedError {
	e := &annotatedError{msg: msg, err: err, attrs: attrs, file: "", line: 0}
	if _, file, line, ok := runtime.Caller(callerSkip); ok {
		e.file = file
		e.line = line
	}
	return e
}

// New creates an error annotated with the call site and attrs.
func New(msg string, attrs ...slog.Attr) error {
	return annotate(nil, msg, attrs)
}

// NewSentinel creates an error meant to be declared as a package-level variable and compared with [Is].
//
// Sentinels carry no call site because the declaration site says nothing about where the error happened.
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // this is the sentinel constructor.
}

// Wrap prefixes err with msg and records the call site and attrs. Wrap returns nil if err is nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return annotate(err, msg, attrs)
}

// DecoratePanic turns a recovered panic value into an error pointing at the line that panicked.
// It returns nil when excp is nil.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var cause error
	if err, ok := excp.(error); ok {
		cause = err
	} else {
		cause = stderrors.New(fmt.Sprint(excp)) //nolint:err113 // dynamic panic payload.
	}
	e := &annotatedError{msg: "panic", err: cause, attrs: nil, file: "", line: 0}
	e.file, e.line = panicSite()
	return e
}

// panicSite finds the first frame after runtime.gopanic, i.e. the function that called panic.
func panicSite() (string, int) {
	pcs := make([]uintptr, 32) //nolint:mnd // deep enough for any recover handler.
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	sawPanic := false
	for {
		frame, more := frames.Next()
		if sawPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.File, frame.Line
		}
		if frame.Function == "runtime.gopanic" {
			sawPanic = true
		}
		if !more {
			return "", 0
		}
	}
}

// SlogError returns a structured "error" attribute with the message, the merged annotations of the whole chain,
// and the innermost annotated call site.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("<nil>")}
	}
	var (
		annotations []any
		source      string
	)
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		ae, ok := e.(*annotatedError) //nolint:errorlint // walking the chain one link at a time.
		if !ok {
			continue
		}
		for _, attr := range ae.attrs {
			annotations = append(annotations, attr)
		}
		if ae.file != "" {
			source = fmt.Sprintf("%s:%d", ae.file, ae.line)
		}
	}
	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

// Is reports whether any error in err's tree matches target. See [stderrors.Is].
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target. See [stderrors.As].
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. See [stderrors.Unwrap].
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error that wraps the given errors. See [stderrors.Join].
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
