package worktree_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/worktree"
	"workstack.dev/workstack/internal/wserrors"
)

func TestMoveOrSwap_RejectsSameSourceAndTarget(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, _, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	err := mgr.MoveOrSwap(context.Background(), repoRoot, worktree.MoveTarget{IsRoot: true}, false, nil)
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Usage, cat)
}

func TestMoveOrSwap_RejectsDetachedSource(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	source := mkdirDest(t, workstacksRoot, "repo", "source-wt")
	vcs.CurrentBranches[source] = ""

	err := mgr.MoveOrSwap(context.Background(), source, worktree.MoveTarget{IsRoot: true}, false, nil)
	require.Error(t, err)
	cat, ok := wserrors.CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, wserrors.Precondition, cat)
}

func TestMoveOrSwap_MovesWhenTargetAbsent(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	mgr.Vcs = diskMovingVcsOps{vcs}
	source := mkdirDest(t, workstacksRoot, "repo", "source-wt")
	vcs.CurrentBranches[source] = "feature"

	target := worktree.MoveTarget{WorktreeName: "dest-wt"}
	err := mgr.MoveOrSwap(context.Background(), source, target, false, nil)
	require.NoError(t, err)

	destPath := filepath.Join(workstacksRoot, "repo", "dest-wt")
	_, err = os.Stat(destPath)
	require.NoError(t, err)

	env, err := worktree.ReadEnvFile(filepath.Join(destPath, worktree.EnvFileName))
	require.NoError(t, err)
	require.Equal(t, "dest-wt", env["WORKTREE_NAME"])
	require.Equal(t, destPath, env["WORKTREE_PATH"])
}

func TestMoveOrSwap_SwapsWhenTargetHasBranchCheckedOut(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	mgr.Vcs = diskMovingVcsOps{vcs}
	source := mkdirDest(t, workstacksRoot, "repo", "source-wt")
	dest := mkdirDest(t, workstacksRoot, "repo", "dest-wt")
	vcs.CurrentBranches[source] = "feature-a"
	vcs.CurrentBranches[dest] = "feature-b"

	err := mgr.MoveOrSwap(context.Background(), source, worktree.MoveTarget{WorktreeName: "dest-wt"}, true, nil)
	require.NoError(t, err)

	sourceEnv, err := worktree.ReadEnvFile(filepath.Join(source, worktree.EnvFileName))
	require.NoError(t, err)
	require.Equal(t, source, sourceEnv["WORKTREE_PATH"])

	destEnv, err := worktree.ReadEnvFile(filepath.Join(dest, worktree.EnvFileName))
	require.NoError(t, err)
	require.Equal(t, dest, destEnv["WORKTREE_PATH"])
}

func TestMoveOrSwap_SwapWithoutForceRespectsDecline(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")
	source := mkdirDest(t, workstacksRoot, "repo", "source-wt")
	dest := mkdirDest(t, workstacksRoot, "repo", "dest-wt")
	vcs.CurrentBranches[source] = "feature-a"
	vcs.CurrentBranches[dest] = "feature-b"

	err := mgr.MoveOrSwap(context.Background(), source, worktree.MoveTarget{WorktreeName: "dest-wt"}, false, func() bool { return false })
	require.NoError(t, err)
	require.Empty(t, vcs.DeletedBranches)
}
