package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer flushes and stops a logging pipeline on shutdown.
type Closer interface {
	Close()
}

// nopCloser is the Closer for the synchronous pipeline.
type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler decouples log emission from I/O. Records are pushed onto a
// bounded queue and written by background workers; when the queue is full
// the record is dropped instead of blocking the caller.
type AsyncHandler struct {
	inner slog.Handler
	core  *asyncCore
}

// asyncCore is the queue and worker state shared by a handler and all of its
// WithAttrs/WithGroup derivatives.
type asyncCore struct {
	queue   chan queued
	workers sync.WaitGroup
	dropped atomic.Int64
}

// queued pairs a record with the handler it was emitted through, so derived
// handlers keep their attributes even though the queue is shared.
type queued struct {
	handler slog.Handler
	record  slog.Record
}

// NewAsyncHandler creates an AsyncHandler with the given queue capacity and
// worker count.
func NewAsyncHandler(inner slog.Handler, queueSize, workers int) *AsyncHandler {
	core := &asyncCore{queue: make(chan queued, queueSize)}
	for range workers {
		core.workers.Add(1)
		go func() {
			defer core.workers.Done()
			for q := range core.queue {
				_ = q.handler.Handle(context.Background(), q.record)
			}
		}()
	}
	return &AsyncHandler{inner: inner, core: core}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it when the queue is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.core.queue <- queued{handler: h.inner, record: rec}:
	default:
		h.core.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a derived handler sharing the same queue and workers.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), core: h.core}
}

// WithGroup returns a derived handler sharing the same queue and workers.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), core: h.core}
}

// DroppedCount returns how many records were discarded on a full queue.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.core.dropped.Load()
}

// Close drains the queue and stops the workers. Only the root handler may
// close; derived handlers share its lifecycle.
func (h *AsyncHandler) Close() {
	close(h.core.queue)
	h.core.workers.Wait()
}
