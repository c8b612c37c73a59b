package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/llm"
)

// Step identities.
const (
	StepFetchIssue    = "fetch-issue"
	StepGetLabels     = "get-repository-labels"
	StepTriage        = "triage"
	StepAddLabels     = "add-labels"
	StepPreviewLabels = "preview-labels"
)

// Workflow identities.
const (
	WorkflowID        = "issue-triager-workflow"
	PreviewWorkflowID = "issue-triager-preview"
)

// Generator produces structured model output; *agent.Agent implements it.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message, schema llm.ResponseSchema, out any) (*llm.Response, error)
}

// Input starts a triage run.
type Input struct {
	IssueReference triage.IssueReference `json:"issueReference"`
}

// Validate checks the issue reference.
func (in Input) Validate() error { return in.IssueReference.Validate() }

// String returns "owner/repo#number".
func (in Input) String() string { return in.IssueReference.String() }

// Output is the final result of a triage run.
type Output struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Labels  []triage.LabelAssignment `json:"labels"`
}

// IssueResult is the output of the fetch-issue step.
type IssueResult struct {
	Issue triage.Issue `json:"issue"`
}

// Validate checks the fetched issue.
func (r IssueResult) Validate() error { return r.Issue.Validate() }

// RepositoryInput is the input of the label catalog step.
type RepositoryInput struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// Validate checks that owner and repo are set.
func (r RepositoryInput) Validate() error {
	if strings.TrimSpace(r.Owner) == "" || strings.TrimSpace(r.Repo) == "" {
		return fmt.Errorf("owner and repo are required, got %q/%q", r.Owner, r.Repo)
	}
	return nil
}

// LabelsResult is the output of the label catalog step.
type LabelsResult struct {
	Labels     []triage.LabelTag `json:"labels"`
	TotalCount int               `json:"totalCount"`
}

// ClassifyInput is the input of the triage step.
type ClassifyInput struct {
	Issue  triage.Issue      `json:"issue"`
	Labels []triage.LabelTag `json:"labels"`
}

// Validate checks the issue.
func (in ClassifyInput) Validate() error { return in.Issue.Validate() }

// ClassifyOutput is the output of the triage step.
type ClassifyOutput struct {
	Labels []triage.LabelAssignment `json:"labels" desc:"Labels to add to the issue, each with a reason"`

	// Usage is the token usage of the model call; zero when it was skipped.
	Usage llm.Usage `json:"-"`
}

// Validate checks that every assignment is named and justified.
func (out ClassifyOutput) Validate() error {
	for i, l := range out.Labels {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("label %d has no name", i)
		}
		if strings.TrimSpace(l.Reason) == "" {
			return fmt.Errorf("label %q has no reason", l.Name)
		}
	}
	return nil
}

// ApplyInput is the input of the add-labels and preview-labels steps.
type ApplyInput struct {
	IssueReference triage.IssueReference    `json:"issueReference"`
	Labels         []triage.LabelAssignment `json:"labels"`
}

// Validate checks the issue reference.
func (in ApplyInput) Validate() error { return in.IssueReference.Validate() }

// ApplyResult is the output of the add-labels and preview-labels steps.
type ApplyResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Applied []triage.LabelTag `json:"applied,omitempty"`
}

// UnknownLabelError reports assignments naming labels outside the catalog.
type UnknownLabelError struct {
	Names []string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("labels not in repository catalog: %s", strings.Join(e.Names, ", "))
}
