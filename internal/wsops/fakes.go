package wsops

import (
	"context"
	"fmt"
	"sort"

	"workstack.dev/workstack/internal/git"
	"workstack.dev/workstack/internal/model"
)

// FakeVcsOps is an in-memory VcsOps for tests, grounded on the same
// "no setup methods beyond the constructor, everything is exported state"
// shape as the original implementation's FakeGitOps: tests populate the
// exported maps/slices directly rather than calling builder methods.
type FakeVcsOps struct {
	Worktrees       map[string][]model.WorktreeRef // repoRoot -> worktrees
	CurrentBranches map[string]string               // dir -> branch ("" = detached)
	DefaultBranches map[string]string                // repoRoot -> branch
	CommonDirs      map[string]string                // path -> common dir
	CleanWorktrees  map[string]bool                  // dir -> clean
	StagedChanges   map[string]bool                  // dir -> has staged changes
	MergeBases      map[[2]string]string             // (rev1,rev2) -> sha
	CommitRanges    map[[2]string][]model.CommitDescriptor
	Conflicted      map[string][]string        // dir -> conflicted files
	BranchesExist   map[string]bool            // branch -> exists
	Logs            map[string][]git.LogEntry  // branch -> log
	LogsByDir       map[string][]git.LogEntry  // dir -> log, checked before Logs
	AheadBehindVals map[string][3]int          // branch -> [ahead, behind, hasUpstream(0/1)]
	FileStatusVals  map[string]FakeFileStatus   // dir -> staged/modified/untracked

	DeletedBranches []string
	RemovedPaths    []string
	StagedFiles     []string          // "dir:path" entries, in call order
	HeadCommits     map[string]string // dir -> HEAD commit id

	// ContinueConflicted, when set for a dir, is what RebaseContinue reports
	// instead of consulting Conflicted - lets tests model a rebase that
	// clears its current commit's conflict only to hit one in the next.
	ContinueConflicted map[string][]string
}

// FakeFileStatus is the fixture type for FakeVcsOps.FileStatusVals.
type FakeFileStatus struct {
	Staged, Modified, Untracked []string
}

// NewFakeVcsOps returns an empty FakeVcsOps ready to be populated.
func NewFakeVcsOps() *FakeVcsOps {
	return &FakeVcsOps{
		Worktrees:       map[string][]model.WorktreeRef{},
		CurrentBranches: map[string]string{},
		DefaultBranches: map[string]string{},
		CommonDirs:      map[string]string{},
		CleanWorktrees:  map[string]bool{},
		StagedChanges:   map[string]bool{},
		MergeBases:      map[[2]string]string{},
		CommitRanges:    map[[2]string][]model.CommitDescriptor{},
		Conflicted:      map[string][]string{},
		BranchesExist:   map[string]bool{},
		Logs:            map[string][]git.LogEntry{},
		LogsByDir:       map[string][]git.LogEntry{},
		AheadBehindVals: map[string][3]int{},
		HeadCommits:     map[string]string{},
		FileStatusVals:  map[string]FakeFileStatus{},
	}
}

func (f *FakeVcsOps) ListWorktrees(ctx context.Context) ([]model.WorktreeRef, error) {
	var all []model.WorktreeRef
	for _, wts := range f.Worktrees {
		all = append(all, wts...)
	}
	return all, nil
}

func (f *FakeVcsOps) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return f.CurrentBranches[dir], nil
}

func (f *FakeVcsOps) DefaultBranch(ctx context.Context, repoRoot string) (string, error) {
	if b, ok := f.DefaultBranches[repoRoot]; ok {
		return b, nil
	}
	return "", fmt.Errorf("no default branch configured for %s", repoRoot)
}

func (f *FakeVcsOps) CommonDir(ctx context.Context, path string) (string, error) {
	return f.CommonDirs[path], nil
}

func (f *FakeVcsOps) BranchCheckedOutAt(ctx context.Context, branch string) (string, bool, error) {
	for _, wts := range f.Worktrees {
		for _, wt := range wts {
			if wt.Branch == branch {
				return wt.Path, true, nil
			}
		}
	}
	return "", false, nil
}

func (f *FakeVcsOps) HasStagedChanges(ctx context.Context, dir string) (bool, error) {
	return f.StagedChanges[dir], nil
}

func (f *FakeVcsOps) IsWorktreeClean(ctx context.Context, dir string) (bool, error) {
	return f.CleanWorktrees[dir], nil
}

func (f *FakeVcsOps) MergeBase(ctx context.Context, dir, rev1, rev2 string) (string, error) {
	return f.MergeBases[[2]string{rev1, rev2}], nil
}

func (f *FakeVcsOps) CommitRange(ctx context.Context, dir, base, head string) ([]model.CommitDescriptor, error) {
	return f.CommitRanges[[2]string{base, head}], nil
}

func (f *FakeVcsOps) ConflictedFiles(ctx context.Context, dir string) ([]string, error) {
	files := append([]string(nil), f.Conflicted[dir]...)
	sort.Strings(files)
	return files, nil
}

func (f *FakeVcsOps) BranchExists(ctx context.Context, repoRoot, branch string) (bool, error) {
	return f.BranchesExist[branch], nil
}

func (f *FakeVcsOps) Log(ctx context.Context, dir, branch string, n int) ([]git.LogEntry, error) {
	entries, ok := f.LogsByDir[dir]
	if !ok {
		entries = f.Logs[branch]
	}
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

func (f *FakeVcsOps) AheadBehind(ctx context.Context, dir, branch string) (int, int, bool, error) {
	v, ok := f.AheadBehindVals[branch]
	if !ok {
		return 0, 0, false, nil
	}
	return v[0], v[1], v[2] != 0, nil
}

func (f *FakeVcsOps) FileStatuses(ctx context.Context, dir string) (staged, modified, untracked []string, err error) {
	v := f.FileStatusVals[dir]
	return v.Staged, v.Modified, v.Untracked, nil
}

func (f *FakeVcsOps) AddWorktree(ctx context.Context, path string, opts AddWorktreeOptions) error {
	branch := opts.ExistingBranch
	if opts.NewBranch != "" {
		branch = opts.NewBranch
	}
	for root := range f.Worktrees {
		f.Worktrees[root] = append(f.Worktrees[root], model.WorktreeRef{Path: path, Branch: branch})
		return nil
	}
	f.Worktrees["default"] = append(f.Worktrees["default"], model.WorktreeRef{Path: path, Branch: branch})
	return nil
}

func (f *FakeVcsOps) MoveWorktree(ctx context.Context, oldPath, newPath string) error {
	for root, wts := range f.Worktrees {
		for i, wt := range wts {
			if wt.Path == oldPath {
				f.Worktrees[root][i].Path = newPath
			}
		}
	}
	return nil
}

func (f *FakeVcsOps) RemoveWorktree(ctx context.Context, path string, force bool) error {
	f.RemovedPaths = append(f.RemovedPaths, path)
	for root, wts := range f.Worktrees {
		var kept []model.WorktreeRef
		for _, wt := range wts {
			if wt.Path != path {
				kept = append(kept, wt)
			}
		}
		f.Worktrees[root] = kept
	}
	return nil
}

func (f *FakeVcsOps) CheckoutBranch(ctx context.Context, dir, branch string) error {
	f.CurrentBranches[dir] = branch
	return nil
}

func (f *FakeVcsOps) StageFile(ctx context.Context, dir, path string) error {
	f.StagedFiles = append(f.StagedFiles, dir+":"+path)
	return nil
}

func (f *FakeVcsOps) HeadCommit(ctx context.Context, dir string) (string, error) {
	return f.HeadCommits[dir], nil
}

func (f *FakeVcsOps) FastForwardBranch(ctx context.Context, dir, branch, ref string) error {
	f.CurrentBranches[dir] = branch
	return nil
}

func (f *FakeVcsOps) DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error {
	f.DeletedBranches = append(f.DeletedBranches, branch)
	return nil
}

func (f *FakeVcsOps) PruneWorktrees(ctx context.Context, repoRoot string) error {
	return nil
}

func (f *FakeVcsOps) RebaseStart(ctx context.Context, dir, branch, onto string) (RebaseStartResult, error) {
	if files := f.Conflicted[dir]; len(files) > 0 {
		return RebaseStartResult{Conflicted: true, ConflictFiles: files}, nil
	}
	return RebaseStartResult{Done: true}, nil
}

func (f *FakeVcsOps) RebaseContinue(ctx context.Context, dir string) (RebaseStartResult, error) {
	if files, ok := f.ContinueConflicted[dir]; ok {
		if len(files) > 0 {
			return RebaseStartResult{Conflicted: true, ConflictFiles: files}, nil
		}
		return RebaseStartResult{Done: true}, nil
	}
	if files := f.Conflicted[dir]; len(files) > 0 {
		return RebaseStartResult{Conflicted: true, ConflictFiles: files}, nil
	}
	return RebaseStartResult{Done: true}, nil
}

func (f *FakeVcsOps) RebaseAbort(ctx context.Context, dir string) error {
	delete(f.Conflicted, dir)
	return nil
}

// FakePrHostOps is an in-memory PrHostOps for tests.
type FakePrHostOps struct {
	PRs map[string]*model.PullRequest // "owner/repo#branch" -> PR
}

// NewFakePrHostOps returns an empty FakePrHostOps.
func NewFakePrHostOps() *FakePrHostOps {
	return &FakePrHostOps{PRs: map[string]*model.PullRequest{}}
}

func prKey(owner, repo, branch string) string {
	return owner + "/" + repo + "#" + branch
}

func (f *FakePrHostOps) GetPRForBranch(ctx context.Context, owner, repo, branch string) (*model.PullRequest, error) {
	return f.PRs[prKey(owner, repo, branch)], nil
}

// SetPR registers pr as the result for branch.
func (f *FakePrHostOps) SetPR(owner, repo, branch string, pr *model.PullRequest) {
	f.PRs[prKey(owner, repo, branch)] = pr
}

// FakeStackedDiffOps is an in-memory StackedDiffOps for tests.
type FakeStackedDiffOps struct {
	Cached        map[string]*ExtendedPRInfo // branch -> cached PR info
	SyncCalls     int
	DeletedBranch []string
	SyncErr       error
}

// NewFakeStackedDiffOps returns an empty FakeStackedDiffOps.
func NewFakeStackedDiffOps() *FakeStackedDiffOps {
	return &FakeStackedDiffOps{Cached: map[string]*ExtendedPRInfo{}}
}

func (f *FakeStackedDiffOps) PRURL(owner, repo string, number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number)
}

func (f *FakeStackedDiffOps) Sync(ctx context.Context, repoRoot string, force bool) error {
	f.SyncCalls++
	return f.SyncErr
}

func (f *FakeStackedDiffOps) CachedPRInfo(ctx context.Context, repoRoot, branch string) (*ExtendedPRInfo, error) {
	return f.Cached[branch], nil
}

func (f *FakeStackedDiffOps) DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error {
	f.DeletedBranch = append(f.DeletedBranch, branch)
	return nil
}

// FakeGlobalConfigOps is an in-memory GlobalConfigOps for tests.
type FakeGlobalConfigOps struct {
	Configured bool
	Cfg        model.GlobalConfig
}

// NewFakeGlobalConfigOps returns a FakeGlobalConfigOps seeded with cfg,
// already considered "configured" (Exists() == true).
func NewFakeGlobalConfigOps(cfg model.GlobalConfig) *FakeGlobalConfigOps {
	return &FakeGlobalConfigOps{Configured: true, Cfg: cfg}
}

func (f *FakeGlobalConfigOps) Exists() bool { return f.Configured }
func (f *FakeGlobalConfigOps) Path() string { return "/fake/config.toml" }

func (f *FakeGlobalConfigOps) WorkstacksRoot() (string, error) {
	if f.Cfg.WorkstacksRoot == "" {
		return "", notConfigured("workstacks_root")
	}
	return f.Cfg.WorkstacksRoot, nil
}

func (f *FakeGlobalConfigOps) UseGraphite() (bool, error)        { return f.Cfg.UseGraphite, nil }
func (f *FakeGlobalConfigOps) ShowPRInfo() (bool, error)         { return f.Cfg.ShowPRInfo, nil }
func (f *FakeGlobalConfigOps) ShowPRChecks() (bool, error)       { return f.Cfg.ShowPRChecks, nil }
func (f *FakeGlobalConfigOps) ShellSetupComplete() (bool, error) { return f.Cfg.ShellSetupComplete, nil }
func (f *FakeGlobalConfigOps) RebaseDefaults() (model.RebaseDefaults, error) {
	return f.Cfg.Rebase, nil
}

func (f *FakeGlobalConfigOps) Set(updates GlobalConfigUpdate) error {
	f.Configured = true
	if updates.WorkstacksRoot != nil {
		f.Cfg.WorkstacksRoot = *updates.WorkstacksRoot
	}
	if updates.UseGraphite != nil {
		f.Cfg.UseGraphite = *updates.UseGraphite
	}
	if updates.ShowPRInfo != nil {
		f.Cfg.ShowPRInfo = *updates.ShowPRInfo
	}
	if updates.ShowPRChecks != nil {
		f.Cfg.ShowPRChecks = *updates.ShowPRChecks
	}
	if updates.ShellSetupComplete != nil {
		f.Cfg.ShellSetupComplete = *updates.ShellSetupComplete
	}
	if updates.Rebase != nil {
		f.Cfg.Rebase = *updates.Rebase
	}
	return nil
}

// FakeShellOps is an in-memory ShellOps for tests.
type FakeShellOps struct {
	Info  ShellInfo
	Paths map[string]string // binary -> resolved path
}

// NewFakeShellOps returns a FakeShellOps reporting info and resolving paths.
func NewFakeShellOps(info ShellInfo, paths map[string]string) *FakeShellOps {
	if paths == nil {
		paths = map[string]string{}
	}
	return &FakeShellOps{Info: info, Paths: paths}
}

func (f *FakeShellOps) Detect() (ShellInfo, error) { return f.Info, nil }

func (f *FakeShellOps) LookPath(binary string) (string, bool) {
	p, ok := f.Paths[binary]
	return p, ok
}
