// Package status implements the status aggregation pipeline (spec §4.F):
// a fixed set of independently-timed, side-effect-free collectors merged
// into one WorktreeStatus record.
package status

import (
	"context"
	"time"

	"workstack.dev/workstack/internal/model"
)

// GitStatusResult is the git status collector's output.
type GitStatusResult struct {
	Branch    string
	Staged    []string
	Modified  []string
	Untracked []string
	Ahead     int
	Behind    int
	Commits   []CommitLine
}

// CommitLine is one entry of a git status collector's recent-commits list.
type CommitLine struct {
	ShortSHA     string
	Message      string
	Author       string
	RelativeDate string
}

// StackPositionResult is the stack position collector's output.
type StackPositionResult struct {
	Parent   string
	Children []string
	IsTrunk  bool
}

// PlanResult is the plan collector's output, read from `.PLAN.md`.
type PlanResult struct {
	Title   string
	Summary string
}

// WorktreeInfo is always populated by the orchestrator itself, not a
// collector.
type WorktreeInfo struct {
	Path   string
	Name   string
	IsRoot bool
}

// WorktreeStatus is the merged record the pipeline produces for one
// worktree.
type WorktreeStatus struct {
	Worktree         WorktreeInfo
	RelatedWorktrees []model.WorktreeRef

	Git          *GitStatusResult
	PR           *model.PullRequest
	ReadyToMerge bool
	StackPos     *StackPositionResult
	Plan         *PlanResult
}

// Collector is one independently-timed unit of the status pipeline (spec
// §4.F "Collector interface"). Implementations MUST be side-effect-free and
// safe to run concurrently with any other collector.
type Collector interface {
	Name() string
	IsAvailable(ctx context.Context, worktreePath string) bool
	Collect(ctx context.Context, worktreePath, repoRoot string) (any, error)
}

// DefaultCollectorTimeout is the per-collector budget unless overridden.
const DefaultCollectorTimeout = 3 * time.Second
