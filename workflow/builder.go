package workflow

import "fmt"

// EntryKind discriminates workflow entries.
type EntryKind int

const (
	EntryStep EntryKind = iota
	EntryMapping
)

func (k EntryKind) String() string {
	switch k {
	case EntryStep:
		return "step"
	case EntryMapping:
		return "mapping"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one element of a workflow: exactly one of Step or Mapping is set,
// according to Kind.
type Entry struct {
	Kind    EntryKind
	Step    Step
	Mapping Mapping
}

// Label names the entry for logs.
func (e Entry) Label() string {
	if e.Kind == EntryStep {
		return string(e.Step.ID())
	}
	return "map"
}

// Builder assembles a workflow. It is append-only and cannot be reused
// after Commit.
type Builder struct {
	id          string
	description string
	entries     []Entry
	committed   bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWorkflowDescription sets the workflow description.
func WithWorkflowDescription(d string) BuilderOption {
	return func(b *Builder) {
		b.description = d
	}
}

// NewBuilder starts a workflow with the given ID.
func NewBuilder(id string, opts ...BuilderOption) *Builder {
	if id == "" {
		panic("workflow: workflow id must not be empty")
	}
	b := &Builder{id: id}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Then appends a step.
func (b *Builder) Then(step Step) *Builder {
	if step == nil {
		panic("workflow: nil step")
	}
	b.entries = append(b.entries, Entry{Kind: EntryStep, Step: step})
	return b
}

// Map appends a mapping.
func (b *Builder) Map(m Mapping) *Builder {
	if m == nil {
		panic("workflow: nil mapping")
	}
	b.entries = append(b.entries, Entry{Kind: EntryMapping, Mapping: m})
	return b
}

// Commit freezes the entries into an immutable Workflow. It checks that
// every mapping's required steps are provided by earlier step entries.
func (b *Builder) Commit() (*Workflow, error) {
	if b.committed {
		return nil, ErrBuilderCommitted
	}
	if len(b.entries) == 0 {
		return nil, ErrEmptyWorkflow
	}

	seen := make(map[StepID]bool)
	positions := make(map[StepID][]int)
	for i, e := range b.entries {
		switch e.Kind {
		case EntryStep:
			seen[e.Step.ID()] = true
			positions[e.Step.ID()] = append(positions[e.Step.ID()], i)
		case EntryMapping:
			var missing []StepID
			for _, id := range e.Mapping.Requires() {
				if !seen[id] {
					missing = append(missing, id)
				}
			}
			if len(missing) > 0 {
				return nil, &DependencyError{Position: i, Missing: missing}
			}
		}
	}

	b.committed = true
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	return &Workflow{
		id:          b.id,
		description: b.description,
		entries:     entries,
		positions:   positions,
	}, nil
}

// MustCommit is like Commit but panics on error.
func (b *Builder) MustCommit() *Workflow {
	wf, err := b.Commit()
	if err != nil {
		panic(err)
	}
	return wf
}

// Workflow is a committed, immutable entry sequence. It is safe for
// concurrent use by multiple runs.
type Workflow struct {
	id          string
	description string
	entries     []Entry
	positions   map[StepID][]int
}

// ID returns the workflow identifier.
func (w *Workflow) ID() string { return w.id }

// Description returns the workflow description.
func (w *Workflow) Description() string { return w.description }

// Len returns the number of entries.
func (w *Workflow) Len() int { return len(w.entries) }

// Entries returns a copy of the entry list.
func (w *Workflow) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Steps returns the steps in order, skipping mappings.
func (w *Workflow) Steps() []Step {
	var out []Step
	for _, e := range w.entries {
		if e.Kind == EntryStep {
			out = append(out, e.Step)
		}
	}
	return out
}

// Positions returns the entry indexes at which step id occurs.
func (w *Workflow) Positions(id StepID) []int {
	p := w.positions[id]
	out := make([]int, len(p))
	copy(out, p)
	return out
}
