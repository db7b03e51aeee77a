package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// Section markers the model is instructed to emit. Matching is
// case-sensitive substring detection: a response using a different
// header casing falls through into the previous section's
// accumulation, which is long-standing behavior that downstream
// consumers depend on.
const (
	markerUserStory        = "USER STORY:"
	markerCriteria         = "ACCEPTANCE CRITERIA:"
	markerTechnicalContext = "TECHNICAL CONTEXT:"
)

// Defaults used when the model output is missing a section entirely.
const (
	defaultUserStory        = "As a user, I want this issue resolved so that I can work efficiently."
	defaultCriterion        = "The functionality should work as expected."
	defaultTechnicalContext = "This ticket addresses a technical issue that impacts user experience."
)

// numberedLine matches a leading "<digits>." criteria line.
var numberedLine = regexp.MustCompile(`^\d+\.`)

// numberPrefix strips "<digits>." plus trailing whitespace from the
// front of a criterion.
var numberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// Parsed is the structured form of a model response. Transient: it
// only exists between the model call and RewrittenTicket assembly.
type Parsed struct {
	UserStory          string
	AcceptanceCriteria []string
	TechnicalContext   string
}

// ParseResponse extracts the three sections from free-form model
// output. It never fails: sections that cannot be located are filled
// with defaults, so the result is always fully populated.
func ParseResponse(text string) Parsed {
	var (
		userStory        string
		criteria         []string
		technicalContext string
	)

	// Cursor over the section the current block belongs to.
	section := ""
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		switch {
		case strings.Contains(block, markerUserStory):
			section = "user_story"
			userStory = strings.TrimSpace(strings.ReplaceAll(block, markerUserStory, ""))
		case strings.Contains(block, markerCriteria):
			section = "acceptance_criteria"
			rest := strings.TrimSpace(strings.ReplaceAll(block, markerCriteria, ""))
			criteria = append(criteria, numberedLines(rest)...)
		case strings.Contains(block, markerTechnicalContext):
			section = "technical_context"
			technicalContext = strings.TrimSpace(strings.ReplaceAll(block, markerTechnicalContext, ""))
		case section == "user_story":
			userStory += " " + block
		case section == "acceptance_criteria":
			criteria = append(criteria, numberedLines(block)...)
		case section == "technical_context":
			technicalContext += " " + block
		}
	}

	if len(criteria) == 0 {
		criteria = []string{"1. " + defaultCriterion}
	}

	// Strip the number prefixes; drop anything that was only a number.
	formatted := make([]string, 0, len(criteria))
	for _, c := range criteria {
		if s := numberPrefix.ReplaceAllString(c, ""); s != "" {
			formatted = append(formatted, s)
		}
	}
	if len(formatted) == 0 {
		formatted = []string{defaultCriterion}
	}

	if userStory == "" {
		userStory = defaultUserStory
	}
	if technicalContext == "" {
		technicalContext = defaultTechnicalContext
	}

	return Parsed{
		UserStory:          userStory,
		AcceptanceCriteria: formatted,
		TechnicalContext:   technicalContext,
	}
}

// numberedLines returns the lines of block that start with a
// "<digits>." prefix, verbatim.
func numberedLines(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if numberedLine.MatchString(line) {
			out = append(out, line)
		}
	}
	return out
}

// NumberCriteria renumbers criteria 1..N, stripping any pre-existing
// numeric prefix first so re-running it is idempotent.
func NumberCriteria(criteria []string) []string {
	out := make([]string, len(criteria))
	for i, c := range criteria {
		out[i] = fmt.Sprintf("%d. %s", i+1, numberPrefix.ReplaceAllString(c, ""))
	}
	return out
}
