// Package tracker defines the issue tracker collaborator used by the triage
// pipeline, plus the pagination rule shared by implementations.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/spetersoncode/triage"
)

// DefaultPerPage is the page size requested from trackers.
const DefaultPerPage = 100

// ErrNotFound is returned when an issue or repository does not exist.
var ErrNotFound = errors.New("tracker: not found")

// Client reads issues and labels from a tracker and applies labels.
type Client interface {
	GetIssue(ctx context.Context, ref triage.IssueReference) (triage.Issue, error)
	// ListLabels returns the repository's complete label catalog in tracker order.
	ListLabels(ctx context.Context, owner, repo string) ([]triage.LabelTag, error)
	// AddLabels adds names to the issue and returns its resulting labels.
	AddLabels(ctx context.Context, ref triage.IssueReference, names []string) ([]triage.LabelTag, error)
}

// PageFunc fetches one page, numbered from 1.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, error)

// Paginate collects pages until one comes back short. A page is requested
// after every page that held exactly perPage entries; an empty page ends the
// sequence and contributes nothing.
func Paginate[T any](ctx context.Context, perPage int, fetch PageFunc[T]) ([]T, error) {
	if perPage < 1 {
		return nil, fmt.Errorf("tracker: perPage must be positive, got %d", perPage)
	}

	var all []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := fetch(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("tracker: page %d: %w", page, err)
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		if len(items) != perPage {
			break
		}
	}
	return all, nil
}
