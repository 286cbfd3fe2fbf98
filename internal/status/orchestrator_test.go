package status_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/status"
)

// fakeCollector is a minimal Collector for orchestrator tests.
type fakeCollector struct {
	name    string
	sleep   time.Duration
	panics  bool
	value   any
	err     error
	called  *bool
}

func (f fakeCollector) Name() string { return f.name }

func (f fakeCollector) IsAvailable(ctx context.Context, worktreePath string) bool { return true }

func (f fakeCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	if f.called != nil {
		*f.called = true
	}
	if f.panics {
		panic("boom")
	}
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
		}
	}
	return f.value, f.err
}

func TestOrchestrator_SlowCollectorDoesNotBlockOthers(t *testing.T) {
	fastDone := false
	o := &status.Orchestrator{
		Timeout: 30 * time.Millisecond,
		Collectors: []status.Collector{
			fakeCollector{name: "slow", sleep: 2 * time.Second},
			fakeCollector{name: "fast", value: status.PlanResult{Title: "t"}, called: &fastDone},
		},
	}

	start := time.Now()
	result := o.Run(context.Background(), "/wt", "/repo", status.WorktreeInfo{Path: "/wt"}, nil)
	elapsed := time.Since(start)

	require.True(t, fastDone)
	require.NotNil(t, result.Plan)
	require.Equal(t, "t", result.Plan.Title)
	require.Less(t, elapsed, time.Second, "slow collector's timeout must bound total time, not its own sleep")
}

func TestOrchestrator_PanicYieldsNoResultNotCrash(t *testing.T) {
	o := &status.Orchestrator{
		Timeout: time.Second,
		Collectors: []status.Collector{
			fakeCollector{name: "panicky", panics: true},
			fakeCollector{name: "ok", value: status.PlanResult{Title: "fine"}},
		},
	}

	result := o.Run(context.Background(), "/wt", "/repo", status.WorktreeInfo{Path: "/wt"}, nil)
	require.NotNil(t, result.Plan)
	require.Equal(t, "fine", result.Plan.Title)
}

func TestOrchestrator_UnavailableCollectorSkipped(t *testing.T) {
	called := false
	o := &status.Orchestrator{
		Timeout: time.Second,
		Collectors: []status.Collector{
			unavailableCollector{fakeCollector{name: "unavail", called: &called}},
		},
	}

	result := o.Run(context.Background(), "/wt", "/repo", status.WorktreeInfo{Path: "/wt"}, nil)
	require.False(t, called)
	require.Nil(t, result.Plan)
}

type unavailableCollector struct {
	fakeCollector
}

func (unavailableCollector) IsAvailable(ctx context.Context, worktreePath string) bool { return false }
