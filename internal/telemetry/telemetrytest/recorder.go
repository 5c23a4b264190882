// Package telemetrytest provides test doubles for observing telemetry
// activity: recorded spans plus counted flush and shutdown calls.
package telemetrytest

import (
	"context"
	"errors"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ErrFlush is returned by a Recorder configured to fail flushes.
var ErrFlush = errors.New("flush failed")

// Recorder is a span processor that records spans like
// tracetest.SpanRecorder and additionally counts ForceFlush and Shutdown
// calls, so tests can assert the exactly-one-flush-per-invocation
// contract.
type Recorder struct {
	*tracetest.SpanRecorder

	mu        sync.Mutex
	flushes   int
	shutdowns int
	failFlush bool
}

var _ sdktrace.SpanProcessor = (*Recorder)(nil)

// NewRecorder creates a recording span processor.
func NewRecorder() *Recorder {
	return &Recorder{SpanRecorder: tracetest.NewSpanRecorder()}
}

// FailFlushes makes subsequent ForceFlush calls return ErrFlush while
// still counting them.
func (r *Recorder) FailFlushes() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFlush = true
}

// ForceFlush counts the flush and delegates to the embedded recorder.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	r.mu.Lock()
	r.flushes++
	fail := r.failFlush
	r.mu.Unlock()

	if err := r.SpanRecorder.ForceFlush(ctx); err != nil {
		return err
	}
	if fail {
		return ErrFlush
	}
	return nil
}

// Shutdown counts the shutdown and delegates to the embedded recorder.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.shutdowns++
	r.mu.Unlock()

	return r.SpanRecorder.Shutdown(ctx)
}

// Flushes returns the number of ForceFlush calls observed.
func (r *Recorder) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// Shutdowns returns the number of Shutdown calls observed.
func (r *Recorder) Shutdowns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shutdowns
}
