// Package pipeline assembles the issue triage workflow:
//
//	fetch-issue -> get-repository-labels -> triage -> add-labels
//
// with mappings between the steps that thread the issue reference, the
// fetched issue, the label catalog and the recommendations through the run.
// The preview variant swaps add-labels for preview-labels and never writes
// to the tracker.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/tracker"
	"github.com/spetersoncode/triage/workflow"
)

// Deps are the collaborators of the triage workflow.
type Deps struct {
	Tracker tracker.Client
	Agent   Generator
	// Apply writes the recommended labels back to the tracker. When false
	// the preview-labels step replaces add-labels.
	Apply bool
}

// New builds and commits the triage workflow.
func New(deps Deps) (*workflow.Workflow, error) {
	if deps.Tracker == nil {
		return nil, errors.New("pipeline: tracker is required")
	}
	if deps.Agent == nil {
		return nil, errors.New("pipeline: agent is required")
	}

	id := WorkflowID
	apply := NewAddLabelsStep(deps.Tracker)
	if !deps.Apply {
		id = PreviewWorkflowID
		apply = NewPreviewLabelsStep()
	}
	applyID := apply.ID()

	return workflow.NewBuilder(id, workflow.WithWorkflowDescription("A workflow that triages issues")).
		Then(NewFetchIssueStep(deps.Tracker)).
		Map(workflow.NewMapping(func(rc *workflow.RunContext) (RepositoryInput, error) {
			in, err := workflow.InitData[Input](rc)
			if err != nil {
				return RepositoryInput{}, err
			}
			return RepositoryInput{Owner: in.IssueReference.Owner, Repo: in.IssueReference.Repo}, nil
		})).
		Then(NewGetLabelsStep(deps.Tracker)).
		Map(workflow.NewMapping(func(rc *workflow.RunContext) (ClassifyInput, error) {
			issue, err := workflow.StepResult[IssueResult](rc, StepFetchIssue)
			if err != nil {
				return ClassifyInput{}, err
			}
			labels, err := workflow.StepResult[LabelsResult](rc, StepGetLabels)
			if err != nil {
				return ClassifyInput{}, err
			}
			return ClassifyInput{Issue: issue.Issue, Labels: labels.Labels}, nil
		}, StepFetchIssue, StepGetLabels)).
		Then(NewClassifyStep(deps.Agent)).
		Map(workflow.NewMapping(func(rc *workflow.RunContext) (ApplyInput, error) {
			in, err := workflow.InitData[Input](rc)
			if err != nil {
				return ApplyInput{}, err
			}
			classified, err := workflow.StepResult[ClassifyOutput](rc, StepTriage)
			if err != nil {
				return ApplyInput{}, err
			}
			return ApplyInput{IssueReference: in.IssueReference, Labels: classified.Labels}, nil
		}, StepTriage)).
		Then(apply).
		Map(workflow.NewMapping(func(rc *workflow.RunContext) (Output, error) {
			classified, err := workflow.StepResult[ClassifyOutput](rc, StepTriage)
			if err != nil {
				return Output{}, err
			}
			applied, err := workflow.StepResult[ApplyResult](rc, applyID)
			if err != nil {
				return Output{}, err
			}
			return Output{Success: applied.Success, Message: applied.Message, Labels: classified.Labels}, nil
		}, StepTriage, applyID)).
		Commit()
}

// Triage runs wf for one issue and returns its typed output alongside the
// raw run result. A suspended run is reported as
// workflow.ErrUnexpectedSuspension.
func Triage(ctx context.Context, wf *workflow.Workflow, ref triage.IssueReference, opts ...workflow.RunOption) (Output, *workflow.Result, error) {
	res := wf.CreateRun(opts...).Start(ctx, Input{IssueReference: ref})
	out, err := workflow.Output[Output](res)
	if err != nil {
		return Output{}, res, fmt.Errorf("triage %s: %w", ref, err)
	}
	return out, res, nil
}
