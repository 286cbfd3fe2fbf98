package worktree_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wsops"
	"workstack.dev/workstack/internal/worktree"
	"workstack.dev/workstack/internal/wserrors"
)

func newManager(t *testing.T, workstacksRoot, repoRoot, repoName string) (*worktree.Manager, *wsops.FakeVcsOps, *wsops.FakeGlobalConfigOps) {
	t.Helper()
	vcs := wsops.NewFakeVcsOps()
	vcs.DefaultBranches[repoRoot] = "main"
	gcfg := wsops.NewFakeGlobalConfigOps(model.GlobalConfig{WorkstacksRoot: workstacksRoot})
	return &worktree.Manager{
		Vcs:          vcs,
		StackedDiff:  wsops.NewFakeStackedDiffOps(),
		GlobalConfig: gcfg,
		PrHost:       wsops.NewFakePrHostOps(),
		RepoRoot:     repoRoot,
		RepoName:     repoName,
	}, vcs, gcfg
}

// mkdirDest creates a managed worktree directory on disk, standing in for one
// that "git worktree add" made earlier; FakeVcsOps only tracks in-memory
// state and never creates directories.
func mkdirDest(t *testing.T, workstacksRoot, repoName, name string) string {
	t.Helper()
	dest := filepath.Join(workstacksRoot, repoName, name)
	require.NoError(t, os.MkdirAll(dest, 0o755))
	return dest
}

// dirCreatingVcsOps additionally creates the directory that "git worktree
// add" would, so Create can write the .env file into it.
type dirCreatingVcsOps struct{ *wsops.FakeVcsOps }

func (d dirCreatingVcsOps) AddWorktree(ctx context.Context, path string, opts wsops.AddWorktreeOptions) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	return d.FakeVcsOps.AddWorktree(ctx, path, opts)
}

func TestCreate_RendersEnvFile(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	mgr.Vcs = dirCreatingVcsOps{vcs}
	dest := filepath.Join(workstacksRoot, "repo", "feature-x")

	ref, err := mgr.Create(context.Background(), worktree.CreateOptions{Name: "feature-x"})
	require.NoError(t, err)
	require.Equal(t, dest, ref.Path)
	require.Equal(t, "feature-x", ref.Branch)

	env, err := worktree.ReadEnvFile(filepath.Join(dest, worktree.EnvFileName))
	require.NoError(t, err)
	require.Equal(t, "feature-x", env["WORKTREE_NAME"])
	require.Equal(t, dest, env["WORKTREE_PATH"])
	require.Equal(t, repoRoot, env["REPO_ROOT"])
}

func TestCreate_RejectsReservedBranchName(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, _, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	_, err := mgr.Create(context.Background(), worktree.CreateOptions{Name: "x", Branch: "main"})
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Validation, cat)
}

func TestCreate_RejectsExistingDestination(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, _, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	mkdirDest(t, workstacksRoot, "repo", "taken")

	_, err := mgr.Create(context.Background(), worktree.CreateOptions{Name: "taken"})
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Conflict, cat)
}

func TestCreate_FromCurrentBranchOnDefaultBranchFails(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	vcs.CurrentBranches[repoRoot] = "main"

	_, err := mgr.Create(context.Background(), worktree.CreateOptions{Name: "x", FromCurrentBranch: true})
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Precondition, cat)
}

func TestCreate_FromBranchAlreadyCheckedOutFails(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	vcs.BranchesExist["other"] = true
	vcs.Worktrees["repo"] = []model.WorktreeRef{{Path: "/somewhere/other", Branch: "other"}}

	_, err := mgr.Create(context.Background(), worktree.CreateOptions{Name: "x", FromBranch: "other"})
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Conflict, cat)
}

func TestCreate_KeepPlanWithoutPlanIsUsageError(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, _, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	_, err := mgr.Create(context.Background(), worktree.CreateOptions{Name: "x", KeepPlan: true})
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Usage, cat)
}

// diskMovingVcsOps additionally performs the real directory rename that
// `git worktree move` would, since FakeVcsOps only tracks in-memory state.
type diskMovingVcsOps struct {
	*wsops.FakeVcsOps
}

func (d diskMovingVcsOps) MoveWorktree(ctx context.Context, oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}
	return d.FakeVcsOps.MoveWorktree(ctx, oldPath, newPath)
}

func TestRename_RegeneratesEnv(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	mgr.Vcs = diskMovingVcsOps{vcs}
	oldPath := mkdirDest(t, workstacksRoot, "repo", "old-name")
	require.NoError(t, worktree.WriteEnvFile(filepath.Join(oldPath, worktree.EnvFileName), map[string]string{
		"WORKTREE_NAME": "old-name",
		"WORKTREE_PATH": oldPath,
		"REPO_ROOT":     repoRoot,
	}))

	err := mgr.Rename(context.Background(), "old-name", "new-name")
	require.NoError(t, err)

	newPath := filepath.Join(workstacksRoot, "repo", "new-name")
	got, err := worktree.ReadEnvFile(filepath.Join(newPath, worktree.EnvFileName))
	require.NoError(t, err)
	require.Equal(t, "new-name", got["WORKTREE_NAME"])
	require.Equal(t, newPath, got["WORKTREE_PATH"])
}

func TestRename_RejectsMissingSource(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, _, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	err := mgr.Rename(context.Background(), "does-not-exist", "new-name")
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.NotFound, cat)
}

func TestRemove_ReservedNameRejected(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, _, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	err := mgr.Remove(context.Background(), "root", true, false, nil)
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Validation, cat)
}

func TestRemove_WithoutForceRespectsDecline(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	err := mgr.Remove(context.Background(), "foo", false, false, func() bool { return false })
	require.NoError(t, err)
	require.Empty(t, vcs.RemovedPaths)
}

func TestRemove_ForceRemovesAndDeletesStack(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, gcfg := newManager(t, workstacksRoot, repoRoot, "repo")
	gcfg.Cfg.UseGraphite = true
	sd := mgr.StackedDiff.(*wsops.FakeStackedDiffOps)

	// Worktree name and checked-out branch deliberately differ (as
	// `create --branch` allows) so this test catches a `-s` delete that
	// mistakenly targets the worktree name instead of its real branch.
	path := filepath.Join(workstacksRoot, "repo", "test-stack")
	vcs.CurrentBranches[path] = "feature-2"

	err := mgr.Remove(context.Background(), "test-stack", true, true, nil)
	require.NoError(t, err)
	require.Len(t, vcs.RemovedPaths, 1)
	require.Contains(t, vcs.DeletedBranches, "feature-2")
	require.NotContains(t, vcs.DeletedBranches, "test-stack")
	require.Contains(t, sd.DeletedBranch, "feature-2")
}
