// Package story defines the domain types shared between the rewrite
// core, the Jira client, and the REST API.
package story

// Project identifies a Jira project.
type Project struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	ProjectTypeKey string `json:"projectTypeKey"`
}

// Ticket is a read-only view of a Jira issue: just enough to feed the
// rewriter. Description is the plain-text extract of the issue's rich
// description field and may be empty.
type Ticket struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
}

// RewrittenTicket is the output of one rewrite: a user story with
// numbered acceptance criteria. Immutable once produced.
type RewrittenTicket struct {
	Key                  string   `json:"key"`
	OriginalTitle        string   `json:"original_title"`
	RewrittenTitle       string   `json:"rewritten_title"`
	RewrittenDescription string   `json:"rewritten_description"`
	AcceptanceCriteria   []string `json:"acceptance_criteria"`
	TechnicalContext     string   `json:"technical_context"`
}

// FailedTicket records a per-ticket update failure.
type FailedTicket struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// UpdateResult reports the outcome of pushing a batch of rewritten
// tickets back to the tracker. Success means at least one ticket was
// updated; per-ticket failures are data, not errors.
type UpdateResult struct {
	Success        bool           `json:"success"`
	UpdatedTickets []string       `json:"updated_tickets"`
	FailedTickets  []FailedTicket `json:"failed_tickets"`
}
