package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spetersoncode/triage/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, subject, status string, started time.Time) RunRecord {
	return RunRecord{
		ID:         id,
		WorkflowID: "issue-triager-workflow",
		Subject:    subject,
		Status:     status,
		Output:     []byte(`{"success":true}`),
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}

func TestStore_SaveGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2025, 10, 1, 12, 0, 0, 123, time.UTC)

	rec := record("run-1", "acme/widgets#42", "success", started)
	rec.Model = "gpt-5-nano"
	rec.InputTokens = 1200
	rec.OutputTokens = 80
	rec.CostUSD = 0.00015
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets#42", got.Subject)
	assert.Equal(t, "gpt-5-nano", got.Model)
	assert.Equal(t, 1200, got.InputTokens)
	assert.InDelta(t, 0.00015, got.CostUSD, 1e-9)
	assert.JSONEq(t, `{"success":true}`, string(got.Output))
	assert.Nil(t, got.Input)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
}

func TestStore_GetMissing(t *testing.T) {
	_, err := openTestStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := record("run-1", "acme/widgets#1", "running", time.Now())
	require.NoError(t, s.Save(ctx, rec))

	rec.Status = "failed"
	rec.Error = "boom"
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "boom", got.Error)
}

func TestStore_SaveRequiresID(t *testing.T) {
	assert.Error(t, openTestStore(t).Save(context.Background(), RunRecord{}))
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		status := "success"
		if i%2 == 1 {
			status = "failed"
		}
		subject := fmt.Sprintf("acme/widgets#%d", i%2)
		require.NoError(t, s.Save(ctx, record(fmt.Sprintf("run-%d", i), subject, status, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "run-4", all[0].ID, "most recent first")

	limited, err := s.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	failed, err := s.List(ctx, ListOptions{Status: "failed"})
	require.NoError(t, err)
	assert.Len(t, failed, 2)

	one, err := s.List(ctx, ListOptions{Subject: "acme/widgets#0", Status: "success"})
	require.NoError(t, err)
	assert.Len(t, one, 3)
}

func TestFromResult(t *testing.T) {
	started := time.Now()
	res := &workflow.Result{
		RunID:      "r1",
		WorkflowID: "wf",
		Status:     workflow.StatusFailed,
		Err:        errors.New("boom"),
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}

	rec, err := FromResult(res, "acme/widgets#42", map[string]int{"issueNumber": 42})
	require.NoError(t, err)
	assert.Equal(t, "failed", rec.Status)
	assert.Equal(t, "boom", rec.Error)
	assert.JSONEq(t, `{"issueNumber":42}`, string(rec.Input))
	assert.Nil(t, rec.Output)

	_, err = FromResult(res, "x", func() {})
	assert.Error(t, err)
}

type subject string

func (s subject) String() string { return "issue " + string(s) }

func TestRecorder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	wf := workflow.NewBuilder("echo").
		Then(workflow.NewStep("upper", func(ctx context.Context, in subject, meta workflow.RunMetadata) (string, error) {
			return string(in) + "!", nil
		})).
		MustCommit()

	rec := NewRecorder(s, nil, func(run *workflow.Run, r *RunRecord) {
		r.Model = "gpt-5-nano"
		r.CostUSD = 0.5
	})
	res := wf.CreateRun(workflow.WithRunID("run-42"), workflow.WithObserver(rec)).Start(ctx, subject("42"))
	require.Equal(t, workflow.StatusSuccess, res.Status)

	got, err := s.Get(ctx, "run-42")
	require.NoError(t, err)
	assert.Equal(t, "echo", got.WorkflowID)
	assert.Equal(t, "issue 42", got.Subject)
	assert.Equal(t, "success", got.Status)
	assert.JSONEq(t, `"42!"`, string(got.Output))
	assert.Equal(t, "gpt-5-nano", got.Model)
	assert.InDelta(t, 0.5, got.CostUSD, 1e-9)
}
