// Package logbuf keeps a bounded in-memory window of recent log
// entries so the API can expose them without a log aggregator.
package logbuf

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is one captured log record.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   slog.Level     `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Buffer is a fixed-capacity circular buffer of entries.
type Buffer struct {
	mu    sync.Mutex
	ring  []Entry
	head  int // next write position
	count int
}

// New creates a buffer holding up to capacity entries.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{ring: make([]Entry, capacity)}
}

// Write appends an entry, evicting the oldest when full.
func (b *Buffer) Write(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ring[b.head] = e
	b.head = (b.head + 1) % len(b.ring)
	if b.count < len(b.ring) {
		b.count++
	}
}

// Query returns up to limit of the most recent entries at or above
// minLevel and after since, oldest first. limit <= 0 means no limit.
func (b *Buffer) Query(since time.Time, minLevel slog.Level, limit int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Entry
	start := b.head - b.count
	for i := 0; i < b.count; i++ {
		e := b.ring[(start+i+len(b.ring))%len(b.ring)]
		if e.Level < minLevel {
			continue
		}
		if !since.IsZero() && !e.Time.After(since) {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// CaptureHandler is an slog.Handler that records every entry into a
// Buffer and forwards to an inner handler, which keeps its own level
// filter.
type CaptureHandler struct {
	inner  slog.Handler
	buf    *Buffer
	prefix string
	bound  []slog.Attr
}

// NewCaptureHandler wraps inner so records also land in buf.
func NewCaptureHandler(inner slog.Handler, buf *Buffer) *CaptureHandler {
	return &CaptureHandler{inner: inner, buf: buf}
}

// Enabled always reports true so the buffer sees every level.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *CaptureHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.bound)+r.NumAttrs())
	for _, a := range h.bound {
		attrs[a.Key] = attrValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = attrValue(a.Value)
		return true
	})
	if len(attrs) == 0 {
		attrs = nil
	}

	h.buf.Write(Entry{Time: r.Time, Level: r.Level, Message: r.Message, Attrs: attrs})

	if h.inner.Enabled(ctx, r.Level) {
		return h.inner.Handle(ctx, r)
	}
	return nil
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Bind under the group prefix in effect right now; later groups
	// must not rewrite earlier attrs.
	bound := make([]slog.Attr, 0, len(h.bound)+len(attrs))
	bound = append(bound, h.bound...)
	for _, a := range attrs {
		bound = append(bound, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &CaptureHandler{
		inner:  h.inner.WithAttrs(attrs),
		buf:    h.buf,
		prefix: h.prefix,
		bound:  bound,
	}
}

func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	return &CaptureHandler{
		inner:  h.inner.WithGroup(name),
		buf:    h.buf,
		prefix: h.prefix + name + ".",
		bound:  h.bound,
	}
}

// attrValue flattens slog values for JSON. Errors become strings so
// they don't serialize to {}.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	raw := v.Any()
	if err, ok := raw.(error); ok {
		return err.Error()
	}
	return raw
}
