package wsops

import (
	"context"
	"fmt"

	"workstack.dev/workstack/internal/git"
	"workstack.dev/workstack/internal/model"
)

// dryRunPrinter is how a dry-run decorator reports the mutation it refused
// to perform. Tests substitute a buffer; the CLI wires stdout.
type dryRunPrinter func(format string, args ...any)

func defaultPrinter(format string, args ...any) {
	fmt.Printf("[DRY RUN] "+format+"\n", args...)
}

// --- VcsOps -----------------------------------------------------------

// dryRunVcsOps wraps a VcsOps, delegating every read and reporting every
// write instead of performing it. Dry-run is a decorator chosen once at
// context construction (spec §4.A) - core logic never branches on a
// dry_run flag.
type dryRunVcsOps struct {
	inner VcsOps
	print dryRunPrinter
}

// NewDryRunVcsOps wraps inner so that mutating calls are printed, not run.
func NewDryRunVcsOps(inner VcsOps) VcsOps {
	return &dryRunVcsOps{inner: inner, print: defaultPrinter}
}

func (d *dryRunVcsOps) ListWorktrees(ctx context.Context) ([]model.WorktreeRef, error) {
	return d.inner.ListWorktrees(ctx)
}
func (d *dryRunVcsOps) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return d.inner.CurrentBranch(ctx, dir)
}
func (d *dryRunVcsOps) DefaultBranch(ctx context.Context, repoRoot string) (string, error) {
	return d.inner.DefaultBranch(ctx, repoRoot)
}
func (d *dryRunVcsOps) CommonDir(ctx context.Context, path string) (string, error) {
	return d.inner.CommonDir(ctx, path)
}
func (d *dryRunVcsOps) BranchCheckedOutAt(ctx context.Context, branch string) (string, bool, error) {
	return d.inner.BranchCheckedOutAt(ctx, branch)
}
func (d *dryRunVcsOps) HasStagedChanges(ctx context.Context, dir string) (bool, error) {
	return d.inner.HasStagedChanges(ctx, dir)
}
func (d *dryRunVcsOps) IsWorktreeClean(ctx context.Context, dir string) (bool, error) {
	return d.inner.IsWorktreeClean(ctx, dir)
}
func (d *dryRunVcsOps) MergeBase(ctx context.Context, dir, rev1, rev2 string) (string, error) {
	return d.inner.MergeBase(ctx, dir, rev1, rev2)
}
func (d *dryRunVcsOps) CommitRange(ctx context.Context, dir, base, head string) ([]model.CommitDescriptor, error) {
	return d.inner.CommitRange(ctx, dir, base, head)
}
func (d *dryRunVcsOps) ConflictedFiles(ctx context.Context, dir string) ([]string, error) {
	return d.inner.ConflictedFiles(ctx, dir)
}
func (d *dryRunVcsOps) BranchExists(ctx context.Context, repoRoot, branch string) (bool, error) {
	return d.inner.BranchExists(ctx, repoRoot, branch)
}
func (d *dryRunVcsOps) Log(ctx context.Context, dir, branch string, n int) ([]git.LogEntry, error) {
	return d.inner.Log(ctx, dir, branch, n)
}
func (d *dryRunVcsOps) AheadBehind(ctx context.Context, dir, branch string) (int, int, bool, error) {
	return d.inner.AheadBehind(ctx, dir, branch)
}
func (d *dryRunVcsOps) FileStatuses(ctx context.Context, dir string) (staged, modified, untracked []string, err error) {
	return d.inner.FileStatuses(ctx, dir)
}

func (d *dryRunVcsOps) AddWorktree(ctx context.Context, path string, opts AddWorktreeOptions) error {
	switch {
	case opts.NewBranch != "":
		d.print("Would create worktree at %s on new branch %s (from %s)", path, opts.NewBranch, opts.Ref)
	case opts.Detach:
		d.print("Would create worktree at %s detached at %s", path, opts.Ref)
	default:
		d.print("Would create worktree at %s checking out %s", path, opts.ExistingBranch)
	}
	return nil
}
func (d *dryRunVcsOps) MoveWorktree(ctx context.Context, oldPath, newPath string) error {
	d.print("Would move worktree %s -> %s", oldPath, newPath)
	return nil
}
func (d *dryRunVcsOps) RemoveWorktree(ctx context.Context, path string, force bool) error {
	d.print("Would remove worktree %s (force=%v)", path, force)
	return nil
}
func (d *dryRunVcsOps) CheckoutBranch(ctx context.Context, dir, branch string) error {
	d.print("Would check out branch %s in %s", branch, dir)
	return nil
}
func (d *dryRunVcsOps) StageFile(ctx context.Context, dir, path string) error {
	d.print("Would stage %s in %s", path, dir)
	return nil
}
func (d *dryRunVcsOps) HeadCommit(ctx context.Context, dir string) (string, error) {
	return d.inner.HeadCommit(ctx, dir)
}
func (d *dryRunVcsOps) FastForwardBranch(ctx context.Context, dir, branch, ref string) error {
	d.print("Would fast-forward %s in %s to %s", branch, dir, ref)
	return nil
}
func (d *dryRunVcsOps) DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error {
	d.print("Would delete branch %s (force=%v)", branch, force)
	return nil
}
func (d *dryRunVcsOps) PruneWorktrees(ctx context.Context, repoRoot string) error {
	d.print("Would prune stale worktree administrative files under %s", repoRoot)
	return nil
}
func (d *dryRunVcsOps) RebaseStart(ctx context.Context, dir, upstream, onto string) (RebaseStartResult, error) {
	d.print("Would start rebase onto %s (upstream %s) in %s", onto, upstream, dir)
	return RebaseStartResult{Done: true}, nil
}
func (d *dryRunVcsOps) RebaseContinue(ctx context.Context, dir string) (RebaseStartResult, error) {
	d.print("Would continue rebase in %s", dir)
	return RebaseStartResult{Done: true}, nil
}
func (d *dryRunVcsOps) RebaseAbort(ctx context.Context, dir string) error {
	d.print("Would abort rebase in %s", dir)
	return nil
}

// --- PrHostOps ----------------------------------------------------------

// dryRunPrHostOps wraps a PrHostOps. Every PrHostOps method today is a
// read, so this decorator exists for interface symmetry and as the place
// any future mutating PR-host call (e.g. auto-merge) must be intercepted.
type dryRunPrHostOps struct {
	inner PrHostOps
}

// NewDryRunPrHostOps wraps inner.
func NewDryRunPrHostOps(inner PrHostOps) PrHostOps {
	return &dryRunPrHostOps{inner: inner}
}

func (d *dryRunPrHostOps) GetPRForBranch(ctx context.Context, owner, repo, branch string) (*model.PullRequest, error) {
	return d.inner.GetPRForBranch(ctx, owner, repo, branch)
}

// --- StackedDiffOps -----------------------------------------------------

type dryRunStackedDiffOps struct {
	inner StackedDiffOps
	print dryRunPrinter
}

// NewDryRunStackedDiffOps wraps inner, suppressing Sync and DeleteBranch.
func NewDryRunStackedDiffOps(inner StackedDiffOps) StackedDiffOps {
	return &dryRunStackedDiffOps{inner: inner, print: defaultPrinter}
}

func (d *dryRunStackedDiffOps) PRURL(owner, repo string, number int) string {
	return d.inner.PRURL(owner, repo, number)
}
func (d *dryRunStackedDiffOps) Sync(ctx context.Context, repoRoot string, force bool) error {
	d.print("Would run stacked-diff sync in %s (force=%v)", repoRoot, force)
	return nil
}
func (d *dryRunStackedDiffOps) CachedPRInfo(ctx context.Context, repoRoot, branch string) (*ExtendedPRInfo, error) {
	return d.inner.CachedPRInfo(ctx, repoRoot, branch)
}
func (d *dryRunStackedDiffOps) DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error {
	d.print("Would ask the stacked-diff tool to delete %s (force=%v)", branch, force)
	return nil
}

// --- GlobalConfigOps ------------------------------------------------------

type dryRunGlobalConfigOps struct {
	inner GlobalConfigOps
	print dryRunPrinter
}

// NewDryRunGlobalConfigOps wraps inner, suppressing Set.
func NewDryRunGlobalConfigOps(inner GlobalConfigOps) GlobalConfigOps {
	return &dryRunGlobalConfigOps{inner: inner, print: defaultPrinter}
}

func (d *dryRunGlobalConfigOps) Exists() bool { return d.inner.Exists() }
func (d *dryRunGlobalConfigOps) Path() string { return d.inner.Path() }
func (d *dryRunGlobalConfigOps) WorkstacksRoot() (string, error) {
	return d.inner.WorkstacksRoot()
}
func (d *dryRunGlobalConfigOps) UseGraphite() (bool, error)         { return d.inner.UseGraphite() }
func (d *dryRunGlobalConfigOps) ShowPRInfo() (bool, error)          { return d.inner.ShowPRInfo() }
func (d *dryRunGlobalConfigOps) ShowPRChecks() (bool, error)        { return d.inner.ShowPRChecks() }
func (d *dryRunGlobalConfigOps) ShellSetupComplete() (bool, error)  { return d.inner.ShellSetupComplete() }
func (d *dryRunGlobalConfigOps) RebaseDefaults() (model.RebaseDefaults, error) {
	return d.inner.RebaseDefaults()
}
func (d *dryRunGlobalConfigOps) Set(updates GlobalConfigUpdate) error {
	d.print("Would update global config at %s", d.inner.Path())
	return nil
}

// --- ShellOps -------------------------------------------------------------

// dryRunShellOps wraps a ShellOps. Detect and LookPath are reads; there is
// nothing here to suppress, but the decorator is kept for symmetry with the
// other four interfaces and as the hook point for any future mutating shell
// action (e.g. writing an activation snippet into the user's rc file).
type dryRunShellOps struct {
	inner ShellOps
}

// NewDryRunShellOps wraps inner.
func NewDryRunShellOps(inner ShellOps) ShellOps {
	return &dryRunShellOps{inner: inner}
}

func (d *dryRunShellOps) Detect() (ShellInfo, error) {
	return d.inner.Detect()
}
func (d *dryRunShellOps) LookPath(binary string) (string, bool) {
	return d.inner.LookPath(binary)
}
