package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/llm"
	"github.com/spetersoncode/triage/tracker"
	"github.com/spetersoncode/triage/workflow"
)

// NewFetchIssueStep fetches the issue named by the run input.
func NewFetchIssueStep(t tracker.Client) workflow.Step {
	return workflow.NewStep(StepFetchIssue,
		func(ctx context.Context, in Input, meta workflow.RunMetadata) (IssueResult, error) {
			issue, err := t.GetIssue(ctx, in.IssueReference)
			if err != nil {
				return IssueResult{}, fmt.Errorf("failed to fetch issue %s: %w", in.IssueReference, err)
			}
			return IssueResult{Issue: issue}, nil
		},
		workflow.WithDescription("Get a GitHub issue with its current labels"),
	)
}

// NewGetLabelsStep lists the repository's full label catalog.
func NewGetLabelsStep(t tracker.Client) workflow.Step {
	return workflow.NewStep(StepGetLabels,
		func(ctx context.Context, in RepositoryInput, meta workflow.RunMetadata) (LabelsResult, error) {
			labels, err := t.ListLabels(ctx, in.Owner, in.Repo)
			if err != nil {
				return LabelsResult{}, fmt.Errorf("failed to fetch labels from %s/%s: %w", in.Owner, in.Repo, err)
			}
			meta.Logger.Debug("fetched label catalog", "count", len(labels))
			return LabelsResult{Labels: labels, TotalCount: len(labels)}, nil
		},
		workflow.WithDescription("Get all available labels from a GitHub repository"),
	)
}

// NewClassifyStep asks the agent which catalog labels apply to the issue.
// It does not retry; malformed output or a label outside the catalog fails
// the step.
func NewClassifyStep(g Generator) workflow.Step {
	return workflow.NewStep(StepTriage,
		func(ctx context.Context, in ClassifyInput, meta workflow.RunMetadata) (ClassifyOutput, error) {
			if len(in.Labels) == 0 {
				meta.Logger.Info("repository has no labels, nothing to classify")
				return ClassifyOutput{Labels: []triage.LabelAssignment{}}, nil
			}

			prompt := BuildTriagePrompt(in.Issue, in.Labels)
			schema := llm.SchemaFrom[ClassifyOutput]().
				Enum("labels.name", triage.LabelNames(in.Labels)...).
				Response("triage_labels", "Labels recommended for the issue")

			var out ClassifyOutput
			resp, err := g.Generate(ctx, []llm.Message{llm.NewUserMessage(prompt)}, schema, &out)
			if err != nil {
				return ClassifyOutput{}, err
			}
			if resp != nil {
				out.Usage = resp.Usage
			}
			if out.Labels == nil {
				out.Labels = []triage.LabelAssignment{}
			}

			if unknown := unknownLabels(out.Labels, in.Labels); len(unknown) > 0 {
				return ClassifyOutput{}, &workflow.ValidationError{
					StepID:   StepTriage,
					Boundary: workflow.BoundaryOutput,
					Err:      &UnknownLabelError{Names: unknown},
				}
			}
			return out, nil
		},
		workflow.WithDescription("Recommend labels for an issue from the repository catalog"),
	)
}

func unknownLabels(assignments []triage.LabelAssignment, catalog []triage.LabelTag) []string {
	known := make(map[string]bool, len(catalog))
	for _, l := range catalog {
		known[l.Name] = true
	}
	var unknown []string
	for _, a := range assignments {
		if !known[a.Name] {
			unknown = append(unknown, a.Name)
		}
	}
	return unknown
}

// NewAddLabelsStep applies the recommended labels to the issue.
//
// Unlike every other step, a tracker failure here does not fail the run:
// it is reported as Success=false with the error in Message, so the
// recommendations still reach the caller.
func NewAddLabelsStep(t tracker.Client) workflow.Step {
	return workflow.NewStep(StepAddLabels,
		func(ctx context.Context, in ApplyInput, meta workflow.RunMetadata) (ApplyResult, error) {
			names := triage.AssignmentNames(in.Labels)
			if len(names) == 0 {
				return ApplyResult{
					Success: true,
					Message: fmt.Sprintf("No labels recommended for %s", in.IssueReference),
				}, nil
			}

			applied, err := t.AddLabels(ctx, in.IssueReference, names)
			if err != nil {
				meta.Logger.Error("error adding labels", "issue", in.IssueReference.String(), "error", err)
				return ApplyResult{
					Success: false,
					Message: fmt.Sprintf("Failed to add labels to %s: %v", in.IssueReference, err),
				}, nil
			}
			return ApplyResult{
				Success: true,
				Message: fmt.Sprintf("Added %d label(s) to %s: %s", len(names), in.IssueReference, strings.Join(names, ", ")),
				Applied: applied,
			}, nil
		},
		workflow.WithDescription("Add labels to a GitHub issue"),
	)
}

// NewPreviewLabelsStep stands in for add-labels when labels must not be
// written. It always succeeds.
func NewPreviewLabelsStep() workflow.Step {
	return workflow.NewStep(StepPreviewLabels,
		func(ctx context.Context, in ApplyInput, meta workflow.RunMetadata) (ApplyResult, error) {
			names := triage.AssignmentNames(in.Labels)
			if len(names) == 0 {
				return ApplyResult{Success: true, Message: fmt.Sprintf("No labels recommended for %s; no labels were applied", in.IssueReference)}, nil
			}
			return ApplyResult{
				Success: true,
				Message: fmt.Sprintf("Recommended %d label(s) for %s: %s; no labels were applied", len(names), in.IssueReference, strings.Join(names, ", ")),
			}, nil
		},
		workflow.WithDescription("Report recommended labels without applying them"),
	)
}
