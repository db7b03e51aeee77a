package rewrite

import (
	"reflect"
	"strings"
	"testing"
)

func TestFallback_PerformanceKeywordInSummary(t *testing.T) {
	got := Fallback("Checkout page is very slow", "")

	if !strings.Contains(got.TechnicalContext, "performance issues") {
		t.Errorf("technical context = %q", got.TechnicalContext)
	}
	if !strings.Contains(got.UserStory, "respond quickly") {
		t.Errorf("user story = %q", got.UserStory)
	}
	if len(got.AcceptanceCriteria) != 4 {
		t.Fatalf("got %d criteria", len(got.AcceptanceCriteria))
	}
	if got.AcceptanceCriteria[0] != "Page should load in under 2 seconds on standard connection speeds" {
		t.Errorf("criteria[0] = %q", got.AcceptanceCriteria[0])
	}
	if !strings.Contains(got.AcceptanceCriteria[1], "100ms") {
		t.Errorf("criteria[1] = %q", got.AcceptanceCriteria[1])
	}
	if !strings.Contains(got.AcceptanceCriteria[2], "60fps") {
		t.Errorf("criteria[2] = %q", got.AcceptanceCriteria[2])
	}
}

func TestFallback_PerformanceKeywordInDescription(t *testing.T) {
	got := Fallback("Checkout broken", "There is a TIMEOUT during payment")
	if !strings.Contains(got.TechnicalContext, "performance issues") {
		t.Error("keyword in description should select the performance branch")
	}
}

func TestFallback_Generic(t *testing.T) {
	got := Fallback("Add dark mode", "Users asked for it")

	want := []string{
		"The functionality should work as expected in all supported browsers",
		"The implementation should meet all business requirements",
		"The solution should be thoroughly tested with automated tests",
		"The solution should maintain or improve current performance metrics",
	}
	if !reflect.DeepEqual(got.AcceptanceCriteria, want) {
		t.Errorf("criteria = %v", got.AcceptanceCriteria)
	}
	if got.UserStory != "As a user, I want to add dark mode so that I can achieve my goals efficiently." {
		t.Errorf("user story = %q", got.UserStory)
	}
	if strings.Contains(got.TechnicalContext, "performance issues") {
		t.Errorf("generic branch leaked performance wording: %q", got.TechnicalContext)
	}
}

func TestFallback_SummaryLowered(t *testing.T) {
	got := Fallback("LOADING Spinner Stuck", "")
	if !strings.Contains(got.UserStory, "loading spinner stuck") {
		t.Errorf("summary should be lower-cased in the template: %q", got.UserStory)
	}
}
