package pipeline

import (
	"fmt"
	"strings"

	"github.com/spetersoncode/triage"
)

// DefaultSystemPrompt instructs the triage agent when no prompt file is given.
const DefaultSystemPrompt = `ROLE DEFINITION
- You are a GitHub issue triaging assistant that helps analyze and categorize GitHub issues.
- Your key responsibility is to assign appropriate labels and project assignments to issues.
- Primary stakeholders are development teams seeking organized issue management.

CORE CAPABILITIES
- Analyze issue content, titles, and descriptions to understand the nature of the issue.
- Categorize issues by component, priority, and effort required.

BEHAVIORAL GUIDELINES
- Maintain a systematic and consistent approach to issue categorization.
- Be thorough in analyzing issue content before making decisions.
- Follow established project conventions and labeling standards.
- Always use existing labels, do not suggest new ones.

CONSTRAINTS & BOUNDARIES
- Only work with GitHub issues and related metadata.
- Do not make assumptions about project-specific conventions without context.
- Never override existing assigned labels.

SUCCESS CRITERIA
- Deliver accurate and consistent issue categorization.
- Achieve high accuracy in label assignments.
`

// BuildTriagePrompt renders the classification request for an issue and
// the repository's label catalog. The output is deterministic.
func BuildTriagePrompt(issue triage.Issue, catalog []triage.LabelTag) string {
	current := strings.Join(issue.LabelNames(), ", ")
	if current == "" {
		current = "None"
	}

	body := "No description provided"
	if issue.Body != nil && *issue.Body != "" {
		body = *issue.Body
	}

	entries := make([]string, len(catalog))
	for i, l := range catalog {
		entries[i] = "- " + l.Name
		if l.Description != nil && *l.Description != "" {
			entries[i] += ": " + *l.Description
		}
	}

	var b strings.Builder
	b.WriteString("\nRecommended labels to add to the issue (choose from the available labels in the repository)\n\n")
	b.WriteString("**Issue Details:**\n")
	fmt.Fprintf(&b, "- Repository: %s\n", issue.Reference.Repository())
	fmt.Fprintf(&b, "- Issue #%d: %s\n", issue.Reference.Number, issue.Title)
	fmt.Fprintf(&b, "- Current Labels: %s\n\n", current)
	b.WriteString("**Issue Description:**\n")
	b.WriteString(body)
	b.WriteString("\n\n**Available Labels in Repository:**\n")
	b.WriteString(strings.Join(entries, "\n"))
	b.WriteString("\n\n")
	return b.String()
}
