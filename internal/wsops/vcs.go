// Package wsops is the operations layer (spec §4.A): git, the PR host, the
// stacked-diff tool, global config persistence and shell detection are
// reached through the five interfaces declared here, each with a real
// implementation and a dry-run decorator. Other filesystem work (.env and
// plan files, rebase scratch directories, resolved conflict files,
// activation scripts, shell rc files) and user-supplied commands
// (post_create, `rebase test`) are done directly by the packages that need
// them, outside these interfaces and their dry-run decorators.
package wsops

import (
	"context"
	"time"

	"workstack.dev/workstack/internal/git"
	"workstack.dev/workstack/internal/model"
)

// AddWorktreeOptions selects how VcsOps.AddWorktree picks the checked-out
// ref: exactly one of ExistingBranch, NewBranch, or Detach should be set.
type AddWorktreeOptions struct {
	ExistingBranch string // checkout this existing branch
	NewBranch      string // create this new branch
	Ref            string // base ref for NewBranch, or the ref to check out
	Detach         bool   // detached HEAD at Ref
}

// RebaseStartResult is returned by VcsOps.RebaseStart/RebaseContinue.
type RebaseStartResult struct {
	Conflicted     bool
	ConflictFiles  []string
	Done           bool
}

// VcsOps abstracts every version-control interaction (spec §4.A). The real
// implementation shells out to the git binary; NewDryRunVcsOps wraps any
// VcsOps and suppresses mutation.
type VcsOps interface {
	// Reads
	ListWorktrees(ctx context.Context) ([]model.WorktreeRef, error)
	CurrentBranch(ctx context.Context, dir string) (string, error) // "" for detached HEAD
	DefaultBranch(ctx context.Context, repoRoot string) (string, error)
	CommonDir(ctx context.Context, path string) (string, error)
	BranchCheckedOutAt(ctx context.Context, branch string) (path string, ok bool, err error)
	HasStagedChanges(ctx context.Context, dir string) (bool, error)
	IsWorktreeClean(ctx context.Context, dir string) (bool, error)
	MergeBase(ctx context.Context, dir, rev1, rev2 string) (string, error)
	CommitRange(ctx context.Context, dir, base, head string) ([]model.CommitDescriptor, error)
	ConflictedFiles(ctx context.Context, dir string) ([]string, error)
	BranchExists(ctx context.Context, repoRoot, branch string) (bool, error)
	Log(ctx context.Context, dir, branch string, n int) ([]git.LogEntry, error)
	AheadBehind(ctx context.Context, dir, branch string) (ahead, behind int, hasUpstream bool, err error)
	// FileStatuses reports the working tree's staged, modified-but-unstaged,
	// and untracked files, parsed from `git status --porcelain`.
	FileStatuses(ctx context.Context, dir string) (staged, modified, untracked []string, err error)

	// Writes
	AddWorktree(ctx context.Context, path string, opts AddWorktreeOptions) error
	MoveWorktree(ctx context.Context, oldPath, newPath string) error
	RemoveWorktree(ctx context.Context, path string, force bool) error
	CheckoutBranch(ctx context.Context, dir, branch string) error
	DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error
	PruneWorktrees(ctx context.Context, repoRoot string) error
	StageFile(ctx context.Context, dir, path string) error

	// HeadCommit returns the commit id dir's HEAD currently points at,
	// detached or not.
	HeadCommit(ctx context.Context, dir string) (string, error)
	// FastForwardBranch updates branch, checked out at dir, to ref via a
	// fast-forward-only merge. Used by the rebase orchestrator's apply step
	// to replay a scratch rebase's result onto the live worktree.
	FastForwardBranch(ctx context.Context, dir, branch, ref string) error

	// Rebase driver. upstream is the point rebased commits are taken from
	// (exclusive); RebaseStart operates on dir's current HEAD.
	RebaseStart(ctx context.Context, dir, upstream, onto string) (RebaseStartResult, error)
	RebaseContinue(ctx context.Context, dir string) (RebaseStartResult, error)
	RebaseAbort(ctx context.Context, dir string) error
}

// GitTimeout has the same value as git.DefaultTimeout, the bound the git
// runner behind the real VcsOps applies to each invocation without its own
// deadline; the runner reads git.DefaultTimeout, not this constant.
const GitTimeout = 5 * time.Minute
