// Package render prints triage outcomes and run history as styled text,
// JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/spetersoncode/triage/pipeline"
	"github.com/spetersoncode/triage/store"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (must be text, json, or yaml)", s)
	}
}

// Outcome is the result of triaging one issue.
type Outcome struct {
	Issue    string           `json:"issue" yaml:"issue"`
	RunID    string           `json:"runId" yaml:"runId"`
	Status   string           `json:"status" yaml:"status"`
	Output   *pipeline.Output `json:"output,omitempty" yaml:"output,omitempty"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration    `json:"durationMs" yaml:"-"`
	CostUSD  float64          `json:"costUsd,omitempty" yaml:"costUsd,omitempty"`
}

// MarshalJSON reports Duration in milliseconds.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	return json.Marshal(struct {
		alias
		Duration int64 `json:"durationMs"`
	}{alias(o), o.Duration.Milliseconds()})
}

type styles struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	heading lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#DFE6E9")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#00B894")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("#D63031")),
		label:   r.NewStyle().Foreground(lipgloss.Color("#74B9FF")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#636E72")),
		heading: r.NewStyle().Bold(true).Underline(true),
	}
}

func (s styles) status(status string) string {
	switch status {
	case "success":
		return s.ok.Render(status)
	case "failed", "suspended":
		return s.failed.Render(status)
	default:
		return s.muted.Render(status)
	}
}

// Outcomes writes triage outcomes in the requested format.
func Outcomes(w io.Writer, format Format, outcomes []Outcome) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, outcomes)
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(outcomes)
	}

	s := newStyles(w)
	var b strings.Builder
	for i, o := range outcomes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", s.title.Render(o.Issue), s.status(o.Status), s.muted.Render(o.Duration.Round(time.Millisecond).String()))
		if o.Error != "" {
			fmt.Fprintf(&b, "  %s\n", s.failed.Render(o.Error))
		}
		if o.Output == nil {
			continue
		}
		if o.Output.Message != "" {
			fmt.Fprintf(&b, "  %s\n", o.Output.Message)
		}
		for _, l := range o.Output.Labels {
			fmt.Fprintf(&b, "  • %s  %s\n", s.label.Render(l.Name), s.muted.Render(l.Reason))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// History writes stored run records in the requested format.
func History(w io.Writer, format Format, records []store.RunRecord) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(records)
	}

	s := newStyles(w)
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, s.muted.Render("no runs recorded"))
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.heading.Render("Recent runs"))
	for _, r := range records {
		fmt.Fprintf(&b, "%-36s  %-24s  %s  %s  %s\n",
			r.ID,
			r.Subject,
			s.status(r.Status),
			r.StartedAt.Local().Format(time.DateTime),
			s.muted.Render(fmt.Sprintf("%s $%.4f", r.Duration().Round(time.Millisecond), r.CostUSD)),
		)
		if r.Error != "" {
			fmt.Fprintf(&b, "  %s\n", s.failed.Render(r.Error))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
