package rewrite

import (
	"fmt"
	"strings"
)

// performanceKeywords classify a ticket as a performance issue when
// any of them appears in the lower-cased summary or description.
var performanceKeywords = []string{"slow", "lag", "performance", "speed", "loading", "timeout"}

// Fallback generates a structured response from keyword heuristics.
// Used whenever the model call fails or returns no usable text; it
// always succeeds.
func Fallback(summary, description string) Parsed {
	lowerSummary := strings.ToLower(summary)
	lowerDescription := strings.ToLower(description)

	isPerformance := false
	for _, kw := range performanceKeywords {
		if strings.Contains(lowerSummary, kw) || strings.Contains(lowerDescription, kw) {
			isPerformance = true
			break
		}
	}

	if isPerformance {
		return Parsed{
			UserStory: fmt.Sprintf("As a user, I want the %s to respond quickly so that I can complete my tasks efficiently without frustration.", lowerSummary),
			AcceptanceCriteria: []string{
				"Page should load in under 2 seconds on standard connection speeds",
				"UI interactions (clicks, scrolls, inputs) should respond within 100ms",
				"All animations should run at 60fps without visual stuttering",
				"Performance should be consistent across supported browsers and devices",
			},
			TechnicalContext: fmt.Sprintf("The %s is experiencing performance issues that negatively impact user experience. This could be due to inefficient code, excessive network requests, unoptimized assets, or server-side bottlenecks. Fixing this will improve user satisfaction and potentially increase conversion rates.", lowerSummary),
		}
	}

	return Parsed{
		UserStory: fmt.Sprintf("As a user, I want to %s so that I can achieve my goals efficiently.", lowerSummary),
		AcceptanceCriteria: []string{
			"The functionality should work as expected in all supported browsers",
			"The implementation should meet all business requirements",
			"The solution should be thoroughly tested with automated tests",
			"The solution should maintain or improve current performance metrics",
		},
		TechnicalContext: "This ticket addresses a technical issue that impacts user experience and business goals. Proper implementation will ensure system reliability and user satisfaction.",
	}
}
