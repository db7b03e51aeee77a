// Package rewrite turns raw tracker tickets into structured user
// stories with acceptance criteria, using a generative model when it
// cooperates and keyword heuristics when it does not.
package rewrite

import "fmt"

const promptTemplate = `You are an expert in agile development and writing proper user stories. Your task is to rewrite the following Jira ticket as a well-structured user story with acceptance criteria. Focus on translating technical issues into user-centric problems and solutions.

Ticket Title: %s

Ticket Description:
%s

Analysis Instructions:
1. For performance issues (like slow loading, lagging, timeouts):
   - Identify the specific user impact (frustration, abandoned transactions, etc.)
   - Specify measurable performance targets (e.g., "page should load in under 2 seconds")
   - Include technical root causes when possible (e.g., "inefficient database queries")

2. For bug reports:
   - Clearly describe the expected vs. actual behavior
   - Specify the conditions under which the bug occurs
   - Include steps to reproduce when available

3. For feature requests:
   - Focus on the business value and user benefit
   - Be specific about the success criteria

Follow this exact format for your response:

USER STORY:
As a [specific user role], I want [specific goal related to the issue] so that [clear business benefit].

ACCEPTANCE CRITERIA:
1. [Specific measurable criterion with clear performance targets]
2. [Another specific measurable criterion]
3. [Additional criterion addressing edge cases or related functionality]
... (add more as needed)

TECHNICAL CONTEXT:
[Brief explanation of the technical issue, potential root causes, and why it matters to users and the business]`

// BuildPrompt renders the model prompt for one ticket. Missing fields
// are substituted so the template never embeds an empty slot.
func BuildPrompt(summary, description string) string {
	if summary == "" {
		summary = "No Title"
	}
	if description == "" {
		description = "No Description"
	}
	return fmt.Sprintf(promptTemplate, summary, description)
}
