package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedStub serves pages of the given sizes and counts requests.
type pagedStub struct {
	sizes    []int
	requests int
}

func (s *pagedStub) fetch(ctx context.Context, page int) ([]string, error) {
	s.requests++
	if page > len(s.sizes) {
		return nil, nil
	}
	items := make([]string, s.sizes[page-1])
	for i := range items {
		items[i] = fmt.Sprintf("p%d-%d", page, i)
	}
	return items, nil
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		sizes    []int
		total    int
		requests int
	}{
		{"short last page", []int{100, 100, 37}, 237, 3},
		{"empty last page", []int{100, 100, 0}, 200, 3},
		{"single short page", []int{5}, 5, 1},
		{"empty catalog", []int{0}, 0, 1},
		{"full page then nothing", []int{100}, 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &pagedStub{sizes: tt.sizes}
			items, err := Paginate(context.Background(), 100, stub.fetch)
			require.NoError(t, err)
			assert.Len(t, items, tt.total)
			assert.Equal(t, tt.requests, stub.requests)
		})
	}
}

func TestPaginate_PreservesOrder(t *testing.T) {
	stub := &pagedStub{sizes: []int{2, 1}}
	items, err := Paginate(context.Background(), 2, stub.fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1-0", "p1-1", "p2-0"}, items)
}

func TestPaginate_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Paginate(context.Background(), 10, func(ctx context.Context, page int) ([]int, error) {
		if page == 2 {
			return nil, boom
		}
		return make([]int, 10), nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "page 2")
}

func TestPaginate_InvalidPerPage(t *testing.T) {
	_, err := Paginate(context.Background(), 0, (&pagedStub{}).fetch)
	assert.Error(t, err)
}

func TestPaginate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &pagedStub{sizes: []int{1}}
	_, err := Paginate(ctx, 1, stub.fetch)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stub.requests)
}
