package workout

// Prefetcher warms up exercise assets. Prefetch must return immediately; failures stay inside the implementation.
type Prefetcher interface {
	Prefetch(exerciseNames []string)
}

// CompletionSink receives the completion record of a finished session. Deliver must not block.
type CompletionSink interface {
	Deliver(data CompletionData)
}

// Motivation returns a short encouraging line for an exercise category. It must be cheap and side-effect free.
type Motivation func(category Category) string

type noopPrefetcher struct{}

func (noopPrefetcher) Prefetch([]string) {}

type noopSink struct{}

func (noopSink) Deliver(CompletionData) {}

func noMotivation(Category) string { return "" }

// SinkFunc adapts a function to CompletionSink.
type SinkFunc func(data CompletionData)

func (f SinkFunc) Deliver(data CompletionData) {
	f(data)
}
