package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"workstack.dev/workstack/internal/model"
)

// Orchestrator runs a fixed set of collectors concurrently, isolating
// timeouts and panics so a single misbehaving collector never fails the
// whole command (spec §4.F "Orchestration").
type Orchestrator struct {
	Collectors []Collector
	Timeout    time.Duration
}

// NewOrchestrator builds an Orchestrator with DefaultCollectorTimeout.
func NewOrchestrator(collectors ...Collector) *Orchestrator {
	return &Orchestrator{Collectors: collectors, Timeout: DefaultCollectorTimeout}
}

type collectorOutcome struct {
	value any
	ok    bool
}

// Run executes every available collector concurrently and merges the
// results by runtime type into a WorktreeStatus. wt and related are filled
// in by the orchestrator itself, not by any collector (spec §4.F).
func (o *Orchestrator) Run(ctx context.Context, worktreePath, repoRoot string, wt WorktreeInfo, related []model.WorktreeRef) WorktreeStatus {
	result := WorktreeStatus{Worktree: wt, RelatedWorktrees: related}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultCollectorTimeout
	}

	var wg sync.WaitGroup
	outcomes := make(chan collectorOutcome, len(o.Collectors))

	for _, c := range o.Collectors {
		c := c
		if !c.IsAvailable(ctx, worktreePath) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- runOne(ctx, c, worktreePath, repoRoot, timeout)
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		if !outcome.ok {
			continue
		}
		mergeInto(&result, outcome.value)
	}
	return result
}

// runOne executes a single collector, recovering from panics and enforcing
// timeout as "no result from this collector" (spec §4.F).
func runOne(ctx context.Context, c Collector, worktreePath, repoRoot string, timeout time.Duration) collectorOutcome {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan struct{})
	var value any
	var collectErr error

	go func() {
		defer func() {
			if r := recover(); r != nil {
				collectErr = fmt.Errorf("collector %s panicked: %v", c.Name(), r)
			}
			close(done)
		}()
		value, collectErr = c.Collect(cctx, worktreePath, repoRoot)
	}()

	select {
	case <-done:
		if collectErr != nil {
			return collectorOutcome{}
		}
		return collectorOutcome{value: value, ok: true}
	case <-cctx.Done():
		return collectorOutcome{}
	}
}

func mergeInto(status *WorktreeStatus, value any) {
	switch v := value.(type) {
	case GitStatusResult:
		status.Git = &v
	case *GitStatusResult:
		status.Git = v
	case model.PullRequest:
		status.PR = &v
		status.ReadyToMerge = v.ReadyToMerge()
	case *model.PullRequest:
		status.PR = v
		if v != nil {
			status.ReadyToMerge = v.ReadyToMerge()
		}
	case StackPositionResult:
		status.StackPos = &v
	case *StackPositionResult:
		status.StackPos = v
	case PlanResult:
		status.Plan = &v
	case *PlanResult:
		status.Plan = v
	}
}
