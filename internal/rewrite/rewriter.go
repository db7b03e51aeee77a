package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/storyline-io/storyline/internal/provider"
	"github.com/storyline-io/storyline/pkg/story"
)

// Source values recorded per rewritten ticket.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Outcome is the audit record for one rewritten ticket.
type Outcome struct {
	Key            string
	OriginalTitle  string
	RewrittenTitle string
	Source         string
	Criteria       int
}

// Recorder persists rewrite outcomes. Recording is best-effort: a
// recorder failure never fails the batch.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Rewriter orchestrates ticket rewriting against a model provider.
type Rewriter struct {
	provider provider.Provider
	logger   *slog.Logger
	recorder Recorder
}

// RewriterOption configures a Rewriter.
type RewriterOption func(*Rewriter)

// WithRecorder attaches an audit recorder.
func WithRecorder(r Recorder) RewriterOption {
	return func(rw *Rewriter) { rw.recorder = r }
}

// NewRewriter creates a Rewriter. logger may be nil.
func NewRewriter(p provider.Provider, logger *slog.Logger, opts ...RewriterOption) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	rw := &Rewriter{provider: p, logger: logger}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// RewriteBatch rewrites each ticket independently, in input order. A
// model failure on one ticket falls back to heuristic generation and
// never blocks the others. An error is returned only when the whole
// batch produces nothing.
func (rw *Rewriter) RewriteBatch(ctx context.Context, tickets []story.Ticket) ([]story.RewrittenTicket, error) {
	batchID := uuid.NewString()
	logger := rw.logger.With("batch", batchID)

	var rewritten []story.RewrittenTicket
	for _, t := range tickets {
		rewritten = append(rewritten, rw.rewriteOne(ctx, logger, t))
	}

	if len(rewritten) == 0 {
		return nil, fmt.Errorf("rewrite: batch %s produced no user stories", batchID)
	}
	return rewritten, nil
}

func (rw *Rewriter) rewriteOne(ctx context.Context, logger *slog.Logger, t story.Ticket) story.RewrittenTicket {
	prompt := BuildPrompt(t.Summary, t.Description)

	source := SourceModel
	var parsed Parsed

	text, err := rw.provider.Generate(ctx, prompt)
	switch {
	case err != nil:
		logger.Warn("model call failed, using fallback", "ticket", t.Key, "error", err)
		parsed = Fallback(t.Summary, t.Description)
		source = SourceFallback
	case strings.TrimSpace(text) == "":
		logger.Warn("empty model response, using fallback", "ticket", t.Key)
		parsed = Fallback(t.Summary, t.Description)
		source = SourceFallback
	default:
		logger.Debug("model response received", "ticket", t.Key, "preview", preview(text, 100))
		parsed = ParseResponse(text)
	}

	rt := story.RewrittenTicket{
		Key:                  t.Key,
		OriginalTitle:        t.Summary,
		RewrittenTitle:       parsed.UserStory,
		RewrittenDescription: parsed.UserStory + "\n\n" + parsed.TechnicalContext,
		AcceptanceCriteria:   NumberCriteria(parsed.AcceptanceCriteria),
		TechnicalContext:     parsed.TechnicalContext,
	}

	if rw.recorder != nil {
		out := Outcome{
			Key:            rt.Key,
			OriginalTitle:  rt.OriginalTitle,
			RewrittenTitle: rt.RewrittenTitle,
			Source:         source,
			Criteria:       len(rt.AcceptanceCriteria),
		}
		if err := rw.recorder.Record(ctx, out); err != nil {
			logger.Warn("failed to record rewrite outcome", "ticket", t.Key, "error", err)
		}
	}

	return rt
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
