package jira

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storyline-io/storyline/pkg/story"
)

// IssueUpdater is the slice of the client the syncer needs.
type IssueUpdater interface {
	UpdateIssue(ctx context.Context, key, summary string, doc Document) error
}

// Syncer pushes rewritten tickets back to the tracker, one update per
// ticket, collecting per-ticket outcomes instead of aborting.
type Syncer struct {
	updater IssueUpdater
	logger  *slog.Logger
}

// NewSyncer creates a Syncer. logger may be nil.
func NewSyncer(updater IssueUpdater, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{updater: updater, logger: logger}
}

// UpdateAll updates every ticket independently. Success means at
// least one update went through; failures are reported per ticket.
func (s *Syncer) UpdateAll(ctx context.Context, tickets []story.RewrittenTicket) story.UpdateResult {
	result := story.UpdateResult{
		UpdatedTickets: []string{},
		FailedTickets:  []story.FailedTicket{},
	}

	for _, t := range tickets {
		doc := buildTicketDocument(t)
		if err := s.updater.UpdateIssue(ctx, t.Key, t.RewrittenTitle, doc); err != nil {
			s.logger.Error("failed to update ticket", "ticket", t.Key, "error", err)
			result.FailedTickets = append(result.FailedTickets, story.FailedTicket{
				Key:   t.Key,
				Error: err.Error(),
			})
			continue
		}
		s.logger.Info("ticket updated", "ticket", t.Key)
		result.UpdatedTickets = append(result.UpdatedTickets, t.Key)
	}

	result.Success = len(result.UpdatedTickets) > 0
	return result
}

// buildTicketDocument renders a rewritten ticket as an ADF document:
// one paragraph per non-empty description paragraph, an "Acceptance
// Criteria" heading, then the criteria as a bulleted list. Criteria
// strings go in verbatim, numbers included, even though the bullet
// markers visually double them in the Jira UI.
func buildTicketDocument(t story.RewrittenTicket) Document {
	var nodes []Node
	for _, para := range strings.Split(t.RewrittenDescription, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		nodes = append(nodes, Paragraph(para))
	}

	nodes = append(nodes, Heading(2, "Acceptance Criteria"))
	nodes = append(nodes, BulletList(t.AcceptanceCriteria...))

	return NewDocument(nodes...)
}
