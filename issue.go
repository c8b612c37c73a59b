package triage

import (
	"fmt"
	"strconv"
	"strings"
)

// IssueReference identifies an issue in a repository.
type IssueReference struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Number int    `json:"number"`
}

// Validate checks that the reference names a real issue.
func (r IssueReference) Validate() error {
	switch {
	case strings.TrimSpace(r.Owner) == "":
		return &ReferenceError{Field: "owner", Reason: "must not be empty"}
	case strings.TrimSpace(r.Repo) == "":
		return &ReferenceError{Field: "repo", Reason: "must not be empty"}
	case r.Number < 1:
		return &ReferenceError{Field: "number", Reason: fmt.Sprintf("must be positive, got %d", r.Number)}
	}
	return nil
}

// Repository returns "owner/repo".
func (r IssueReference) Repository() string {
	return r.Owner + "/" + r.Repo
}

// String returns "owner/repo#N".
func (r IssueReference) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParseIssueReference parses "owner/repo#N".
func ParseIssueReference(s string) (IssueReference, error) {
	repo, num, ok := strings.Cut(strings.TrimSpace(s), "#")
	if !ok {
		return IssueReference{}, fmt.Errorf("triage: invalid issue reference %q: want owner/repo#number", s)
	}
	owner, name, err := ParseRepository(repo)
	if err != nil {
		return IssueReference{}, err
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return IssueReference{}, fmt.Errorf("triage: invalid issue number %q: %w", num, err)
	}
	ref := IssueReference{Owner: owner, Repo: name, Number: n}
	return ref, ref.Validate()
}

// ParseRepository splits "owner/repo".
func ParseRepository(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("triage: invalid repository %q: want owner/repo", s)
	}
	return owner, repo, nil
}

// LabelTag is a label as it exists in the tracker.
type LabelTag struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Issue is the tracker's view of an issue.
type Issue struct {
	Reference IssueReference `json:"reference"`
	Title     string         `json:"title"`
	Body      *string        `json:"body,omitempty"`
	Labels    []LabelTag     `json:"labels"`
}

// Validate checks the issue reference and title.
func (i Issue) Validate() error {
	if err := i.Reference.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Title) == "" {
		return &ReferenceError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// LabelNames returns the names of the issue's current labels.
func (i Issue) LabelNames() []string {
	return LabelNames(i.Labels)
}

// LabelAssignment is a recommended label with the model's justification.
type LabelAssignment struct {
	Name   string `json:"name" desc:"The name of the label to add; must be one of the available labels"`
	Reason string `json:"reason" desc:"Why this label applies to the issue"`
}

// LabelNames returns the names of labels in order.
func LabelNames(labels []LabelTag) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

// AssignmentNames returns the names of assignments in order.
func AssignmentNames(assignments []LabelAssignment) []string {
	names := make([]string, len(assignments))
	for i, a := range assignments {
		names[i] = a.Name
	}
	return names
}

// Ptr returns a pointer to s; handy for optional fields.
func Ptr(s string) *string { return &s }
