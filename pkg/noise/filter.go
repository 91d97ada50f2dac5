package noise

import (
	"io"
	"time"
)

// Filter is an io.Writer that sits between the process logger and its real
// sink. Messages classified as connectivity noise are dropped outright;
// messages that repeat past the throttle threshold are suppressed until
// their window resets. Everything else passes through byte-for-byte.
//
// Install it by handing it to the logger as its output writer.
type Filter struct {
	sink       io.Writer
	classifier *Classifier
	throttle   *Throttle
	onSuppress func(pattern string)
}

func NewFilter(sink io.Writer, max int, window time.Duration) *Filter {
	return &Filter{
		sink:       sink,
		classifier: NewClassifier(),
		throttle:   NewThrottle(max, window),
	}
}

// OnSuppress registers a callback invoked once per suppressed message,
// keyed by normalized pattern. Used to feed the suppression metric.
func (f *Filter) OnSuppress(fn func(pattern string)) *Filter {
	f.onSuppress = fn
	return f
}

// Classifier exposes the filter's classifier so other sinks can consult
// the same pattern sets before emitting.
func (f *Filter) Classifier() *Classifier {
	return f.classifier
}

// Throttle exposes the filter's throttle, mainly for Stats reporting.
func (f *Filter) Throttle() *Throttle {
	return f.throttle
}

func (f *Filter) Write(p []byte) (int, error) {
	msg := string(p)

	// Known connectivity noise never reaches the sink.
	if f.classifier.Filtered(msg) {
		if f.onSuppress != nil {
			f.onSuppress(f.classifier.Normalize(msg))
		}
		return len(p), nil
	}

	// Anything else is rate-limited per identical pattern so a repeating
	// fault cannot flood the sink, while its first occurrences still land.
	if f.throttle.ShouldThrottle(f.classifier.Normalize(msg)) {
		if f.onSuppress != nil {
			f.onSuppress(f.classifier.Normalize(msg))
		}
		return len(p), nil
	}

	return f.sink.Write(p)
}
