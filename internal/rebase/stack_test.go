package rebase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/git"
	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/rebase"
	"workstack.dev/workstack/internal/wsops"
)

func newOrchestrator(t *testing.T) (*rebase.Orchestrator, *wsops.FakeVcsOps) {
	t.Helper()
	repoRoot := t.TempDir()
	vcs := wsops.NewFakeVcsOps()
	vcs.DefaultBranches[repoRoot] = "main"
	return &rebase.Orchestrator{
		Vcs:           vcs,
		RepoRoot:      repoRoot,
		StackLocation: ".rebase-stack",
	}, vcs
}

func TestPreview_CleanRebaseIsResolved(t *testing.T) {
	o, vcs := newOrchestrator(t)
	vcs.MergeBases[[2]string{"feature", "main"}] = "abc123"
	vcs.CommitRanges[[2]string{"abc123", "feature"}] = []model.CommitDescriptor{
		{SHA: "c1", Message: "first"},
	}

	stack, err := o.Preview(context.Background(), "feature", "main", false)
	require.NoError(t, err)
	assert.Equal(t, model.RebaseResolved, stack.Status)
	assert.Equal(t, "abc123", stack.MergeBase)
	assert.Len(t, stack.CommitsToRebase, 1)
	assert.DirExists(t, stack.WorkingCopyPath)
}

func TestPreview_ConflictedRebaseReportsConflicted(t *testing.T) {
	o, vcs := newOrchestrator(t)
	vcs.MergeBases[[2]string{"feature", "main"}] = "abc123"
	dir := filepath.Join(o.RepoRoot, ".rebase-stack", "feature")
	vcs.Conflicted[dir] = []string{"a.txt"}

	stack, err := o.Preview(context.Background(), "feature", "main", false)
	require.NoError(t, err)
	assert.Equal(t, model.RebaseConflicted, stack.Status)
}

func TestPreview_ExistingStackWithoutForceFails(t *testing.T) {
	o, _ := newOrchestrator(t)
	dir := filepath.Join(o.RepoRoot, ".rebase-stack", "feature")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	_, err := o.Preview(context.Background(), "feature", "main", false)
	assert.Error(t, err)
}

func TestPreview_ForceDiscardsExistingStack(t *testing.T) {
	o, vcs := newOrchestrator(t)
	dir := filepath.Join(o.RepoRoot, ".rebase-stack", "feature")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("x"), 0o644))
	vcs.MergeBases[[2]string{"feature", "main"}] = "abc123"

	stack, err := o.Preview(context.Background(), "feature", "main", true)
	require.NoError(t, err)
	assert.Equal(t, model.RebaseResolved, stack.Status)
	assert.NoFileExists(t, filepath.Join(dir, "stale.txt"))
}

func TestResolve_NonConflictedStackIsNoOp(t *testing.T) {
	o, _ := newOrchestrator(t)
	stack := &model.RebaseStack{Status: model.RebaseResolved}
	result, err := o.Resolve(context.Background(), stack, "a.txt", rebase.Ours)
	require.NoError(t, err)
	assert.True(t, result.Resolved)
}

func TestResolve_LastFileClearsConflictTransitionsToResolved(t *testing.T) {
	o, vcs := newOrchestrator(t)
	dir := t.TempDir()
	conflictBody := "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(conflictBody), 0o644))
	vcs.Conflicted[dir] = nil // resolved after this file

	stack := &model.RebaseStack{Status: model.RebaseConflicted, WorkingCopyPath: dir}
	result, err := o.Resolve(context.Background(), stack, "a.txt", rebase.Ours)
	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, model.RebaseResolved, stack.Status)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ours\n", string(data))
}

func TestResolve_StagesFileBeforeContinuing(t *testing.T) {
	o, vcs := newOrchestrator(t)
	dir := t.TempDir()
	conflictBody := "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(conflictBody), 0o644))
	vcs.Conflicted[dir] = nil

	stack := &model.RebaseStack{Status: model.RebaseConflicted, WorkingCopyPath: dir}
	_, err := o.Resolve(context.Background(), stack, "a.txt", rebase.Ours)
	require.NoError(t, err)
	assert.Contains(t, vcs.StagedFiles, dir+":a.txt")
}

func TestResolve_ContinueSurfacesNextCommitConflict(t *testing.T) {
	o, vcs := newOrchestrator(t)
	dir := t.TempDir()
	conflictBody := "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(conflictBody), 0o644))
	// a.txt is the only file in the current commit's conflict; once staged,
	// continuing the rebase moves on to the next commit, which conflicts on
	// a different file.
	vcs.Conflicted[dir] = nil
	vcs.ContinueConflicted = map[string][]string{dir: {"b.txt"}}

	stack := &model.RebaseStack{Status: model.RebaseConflicted, WorkingCopyPath: dir}
	result, err := o.Resolve(context.Background(), stack, "a.txt", rebase.Ours)
	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Equal(t, []string{"b.txt"}, result.RemainingFiles)
	assert.Equal(t, model.RebaseConflicted, stack.Status)
}

func TestResolve_RemainingConflictsStaysConflicted(t *testing.T) {
	o, vcs := newOrchestrator(t)
	dir := t.TempDir()
	conflictBody := "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(conflictBody), 0o644))
	vcs.Conflicted[dir] = []string{"b.txt"}

	stack := &model.RebaseStack{Status: model.RebaseConflicted, WorkingCopyPath: dir}
	result, err := o.Resolve(context.Background(), stack, "a.txt", rebase.Theirs)
	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Equal(t, []string{"b.txt"}, result.RemainingFiles)
	assert.Equal(t, model.RebaseConflicted, stack.Status)
}

func TestApply_RefusesWhenNotResolved(t *testing.T) {
	o, _ := newOrchestrator(t)
	stack := &model.RebaseStack{Status: model.RebaseConflicted}
	err := o.Apply(context.Background(), stack, t.TempDir(), false, false)
	assert.Error(t, err)
}

func TestApply_RefusesDirtyLiveWorktreeWithoutForce(t *testing.T) {
	o, vcs := newOrchestrator(t)
	live := t.TempDir()
	vcs.CleanWorktrees[live] = false

	stack := &model.RebaseStack{Status: model.RebaseResolved, SourceBranch: "feature"}
	err := o.Apply(context.Background(), stack, live, false, false)
	assert.Error(t, err)
}

func TestApply_RefusesDivergedUpstreamWithoutForce(t *testing.T) {
	o, vcs := newOrchestrator(t)
	live := t.TempDir()
	vcs.CleanWorktrees[live] = true
	vcs.AheadBehindVals["feature"] = [3]int{0, 2, 1}

	stack := &model.RebaseStack{Status: model.RebaseResolved, SourceBranch: "feature"}
	err := o.Apply(context.Background(), stack, live, false, false)
	assert.Error(t, err)
}

func TestApply_ForceSkipsPreflightChecks(t *testing.T) {
	o, vcs := newOrchestrator(t)
	live := t.TempDir()
	vcs.CleanWorktrees[live] = false
	scratch := t.TempDir()
	vcs.HeadCommits[scratch] = "deadbeef"

	stack := &model.RebaseStack{Status: model.RebaseResolved, SourceBranch: "feature", WorkingCopyPath: scratch}
	err := o.Apply(context.Background(), stack, live, true, false)
	require.NoError(t, err)
	assert.Equal(t, model.RebaseApplied, stack.Status)
	assert.Equal(t, "feature", vcs.CurrentBranches[live])
	assert.NoDirExists(t, scratch)
}

func TestPreview_ScratchWorktreeIsDetachedNotBranchCheckout(t *testing.T) {
	o, vcs := newOrchestrator(t)
	vcs.MergeBases[[2]string{"feature", "main"}] = "abc123"
	vcs.CommitRanges[[2]string{"abc123", "feature"}] = []model.CommitDescriptor{{SHA: "c1", Message: "first"}}
	// feature is already checked out live; the scratch copy must not try to
	// also check out feature, which git would refuse.
	vcs.Worktrees["default"] = []model.WorktreeRef{{Path: "/live/feature", Branch: "feature"}}

	stack, err := o.Preview(context.Background(), "feature", "main", false)
	require.NoError(t, err)

	for _, wt := range vcs.Worktrees["default"] {
		if wt.Path == stack.WorkingCopyPath {
			assert.Empty(t, wt.Branch, "scratch worktree should be detached, not checked out on feature")
		}
	}
}

func TestApply_PreserveStackKeepsScratchDir(t *testing.T) {
	o, vcs := newOrchestrator(t)
	live := t.TempDir()
	vcs.CleanWorktrees[live] = true
	scratch := t.TempDir()

	stack := &model.RebaseStack{Status: model.RebaseResolved, SourceBranch: "feature", WorkingCopyPath: scratch}
	err := o.Apply(context.Background(), stack, live, false, true)
	require.NoError(t, err)
	assert.DirExists(t, scratch)
}

func TestAbort_RemovesScratchDirAndTransitions(t *testing.T) {
	o, vcs := newOrchestrator(t)
	scratch := t.TempDir()
	vcs.Conflicted[scratch] = []string{"a.txt"}

	stack := &model.RebaseStack{Status: model.RebaseConflicted, WorkingCopyPath: scratch}
	err := o.Abort(context.Background(), stack)
	require.NoError(t, err)
	assert.Equal(t, model.RebaseAborted, stack.Status)
	assert.NoDirExists(t, scratch)
	assert.Empty(t, vcs.Conflicted[scratch])
}

func TestStatus_EnumeratesScratchDirsOnDisk(t *testing.T) {
	o, vcs := newOrchestrator(t)
	root := filepath.Join(o.RepoRoot, ".rebase-stack")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "feature-a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "feature-b"), 0o755))
	vcs.Conflicted[filepath.Join(root, "feature-b")] = []string{"x.txt"}

	stacks, err := o.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, stacks, 2)

	byBranch := map[string]model.RebaseStatus{}
	for _, s := range stacks {
		byBranch[s.SourceBranch] = s.Status
	}
	assert.Equal(t, model.RebaseResolved, byBranch["feature-a"])
	assert.Equal(t, model.RebaseConflicted, byBranch["feature-b"])
}

func TestStatus_NoStackLocationReturnsEmpty(t *testing.T) {
	o, _ := newOrchestrator(t)
	stacks, err := o.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stacks)
}

func TestCompare_ReportsCommitsOnlyOnEachSide(t *testing.T) {
	o, vcs := newOrchestrator(t)
	live, scratch := t.TempDir(), t.TempDir()

	vcs.LogsByDir[live] = []git.LogEntry{{ShortSHA: "c1", Message: "shared"}, {ShortSHA: "c2", Message: "only live"}}
	vcs.LogsByDir[scratch] = []git.LogEntry{{ShortSHA: "c1", Message: "shared"}, {ShortSHA: "c3", Message: "only scratch"}}

	lines, err := o.Compare(context.Background(), live, scratch, "feature")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	var onlyLive, onlyScratch int
	for _, l := range lines {
		switch l.OnlyIn {
		case "live":
			onlyLive++
			assert.Equal(t, "c2", l.SHA)
		case "scratch":
			onlyScratch++
			assert.Equal(t, "c3", l.SHA)
		}
	}
	assert.Equal(t, 1, onlyLive)
	assert.Equal(t, 1, onlyScratch)
}

func TestCompare_IdenticalHistoriesReportNothing(t *testing.T) {
	o, vcs := newOrchestrator(t)
	live, scratch := t.TempDir(), t.TempDir()
	log := []git.LogEntry{{ShortSHA: "c1", Message: "shared"}}
	vcs.LogsByDir[live] = log
	vcs.LogsByDir[scratch] = log

	lines, err := o.Compare(context.Background(), live, scratch, "feature")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFormatCompareLine(t *testing.T) {
	line := rebase.CompareLine{SHA: "abc", Message: "fix bug", OnlyIn: "live"}
	assert.Equal(t, "abc fix bug (live only)", rebase.FormatCompareLine(line))
}
