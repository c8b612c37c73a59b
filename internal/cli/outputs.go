package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/pipeline"
)

// writeGitHubOutputs appends the labels, issue-number and repository outputs
// to the GitHub Actions output file.
func writeGitHubOutputs(path string, ref triage.IssueReference, out pipeline.Output) error {
	labels := out.Labels
	if labels == nil {
		labels = []triage.LabelAssignment{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("encoding labels output: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	writeOutput(&b, "labels", string(data))
	writeOutput(&b, "issue-number", strconv.Itoa(ref.Number))
	writeOutput(&b, "repository", ref.Repository())
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing GITHUB_OUTPUT: %w", err)
	}
	return nil
}

// writeOutput uses the heredoc form for values spanning lines.
func writeOutput(b *strings.Builder, name, value string) {
	if !strings.ContainsAny(value, "\r\n") {
		fmt.Fprintf(b, "%s=%s\n", name, value)
		return
	}
	delim := "ghadelimiter_" + uuid.NewString()
	fmt.Fprintf(b, "%s<<%s\n%s\n%s\n", name, delim, value, delim)
}

// eventIssueNumber reads issue.number (or pull_request.number) from a
// GitHub Actions event payload.
func eventIssueNumber(path string) (int, error) {
	if path == "" {
		return 0, errors.New("no issue number given and GITHUB_EVENT_PATH is not set")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading event payload: %w", err)
	}
	var event struct {
		Issue *struct {
			Number int `json:"number"`
		} `json:"issue"`
		PullRequest *struct {
			Number int `json:"number"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return 0, fmt.Errorf("decoding event payload: %w", err)
	}
	switch {
	case event.Issue != nil && event.Issue.Number > 0:
		return event.Issue.Number, nil
	case event.PullRequest != nil && event.PullRequest.Number > 0:
		return event.PullRequest.Number, nil
	}
	return 0, errors.New("event payload has no issue number")
}
