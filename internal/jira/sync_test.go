package jira

import (
	"context"
	"fmt"
	"testing"

	"github.com/storyline-io/storyline/pkg/story"
)

// fakeUpdater records update calls and fails for configured keys.
type fakeUpdater struct {
	updated []string
	docs    map[string]Document
	failFor map[string]bool
}

func (f *fakeUpdater) UpdateIssue(_ context.Context, key, _ string, doc Document) error {
	if f.failFor[key] {
		return fmt.Errorf("jira: update issue %s: api error (status 403)", key)
	}
	if f.docs == nil {
		f.docs = make(map[string]Document)
	}
	f.updated = append(f.updated, key)
	f.docs[key] = doc
	return nil
}

func sampleTicket(key string) story.RewrittenTicket {
	return story.RewrittenTicket{
		Key:                  key,
		OriginalTitle:        "Checkout is slow",
		RewrittenTitle:       "As a shopper, I want fast checkout",
		RewrittenDescription: "As a shopper, I want fast checkout\n\nThe checkout service has performance issues.",
		AcceptanceCriteria:   []string{"1. Loads in under 2 seconds", "2. No visual stutter", "3. Works on all browsers"},
		TechnicalContext:     "The checkout service has performance issues.",
	}
}

func TestUpdateAll_DocumentStructure(t *testing.T) {
	f := &fakeUpdater{}
	s := NewSyncer(f, nil)

	result := s.UpdateAll(context.Background(), []story.RewrittenTicket{sampleTicket("ENG-1")})
	if !result.Success {
		t.Fatal("expected success")
	}

	doc := f.docs["ENG-1"]
	// 2 description paragraphs + heading + bullet list
	if len(doc.Content) != 4 {
		t.Fatalf("got %d blocks, want 4", len(doc.Content))
	}
	if doc.Content[0].Type != "paragraph" || doc.Content[1].Type != "paragraph" {
		t.Errorf("blocks 0-1 = %s, %s", doc.Content[0].Type, doc.Content[1].Type)
	}
	heading := doc.Content[2]
	if heading.Type != "heading" || heading.Attrs["level"] != 2 {
		t.Errorf("heading block = %+v", heading)
	}
	if heading.Content[0].Text != "Acceptance Criteria" {
		t.Errorf("heading text = %q", heading.Content[0].Text)
	}
	list := doc.Content[3]
	if list.Type != "bulletList" || len(list.Content) != 3 {
		t.Errorf("list block = %+v", list)
	}
	// Criteria land in the list verbatim, numbering included.
	first := list.Content[0].Content[0].Content[0].Text
	if first != "1. Loads in under 2 seconds" {
		t.Errorf("first item = %q", first)
	}
}

func TestUpdateAll_PartialFailure(t *testing.T) {
	f := &fakeUpdater{failFor: map[string]bool{"ENG-2": true}}
	s := NewSyncer(f, nil)

	result := s.UpdateAll(context.Background(), []story.RewrittenTicket{
		sampleTicket("ENG-1"), sampleTicket("ENG-2"), sampleTicket("ENG-3"),
	})

	if !result.Success {
		t.Error("one success should make the batch a success")
	}
	if len(result.UpdatedTickets) != 2 {
		t.Errorf("updated = %v", result.UpdatedTickets)
	}
	if len(result.FailedTickets) != 1 || result.FailedTickets[0].Key != "ENG-2" {
		t.Errorf("failed = %+v", result.FailedTickets)
	}
	if result.FailedTickets[0].Error == "" {
		t.Error("failure should carry the error message")
	}
	// Failure on ENG-2 must not stop ENG-3.
	if f.updated[1] != "ENG-3" {
		t.Errorf("updated order = %v", f.updated)
	}
}

func TestUpdateAll_AllFail(t *testing.T) {
	f := &fakeUpdater{failFor: map[string]bool{"ENG-1": true}}
	s := NewSyncer(f, nil)

	result := s.UpdateAll(context.Background(), []story.RewrittenTicket{sampleTicket("ENG-1")})
	if result.Success {
		t.Error("no updates should mean no success")
	}
	if len(result.UpdatedTickets) != 0 {
		t.Errorf("updated = %v", result.UpdatedTickets)
	}
}

func TestUpdateAll_Empty(t *testing.T) {
	s := NewSyncer(&fakeUpdater{}, nil)
	result := s.UpdateAll(context.Background(), nil)
	if result.Success {
		t.Error("empty batch is not a success")
	}
	if result.UpdatedTickets == nil || result.FailedTickets == nil {
		t.Error("result lists should be empty, not nil")
	}
}
