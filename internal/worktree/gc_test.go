package worktree_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wsops"
	"workstack.dev/workstack/internal/worktree"
)

func TestGC_ListsMergedAndClosedOnly(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	merged := mkdirDest(t, workstacksRoot, "repo", "done-feature")
	open := mkdirDest(t, workstacksRoot, "repo", "active-feature")
	vcs.Worktrees["repo"] = []model.WorktreeRef{
		{Path: repoRoot, Branch: "main"},
		{Path: merged, Branch: "done-feature"},
		{Path: open, Branch: "active-feature"},
	}

	prHost := mgr.PrHost.(*wsops.FakePrHostOps)
	prHost.SetPR("acme", "repo", "done-feature", &model.PullRequest{State: model.PRMerged, Number: 7})
	prHost.SetPR("acme", "repo", "active-feature", &model.PullRequest{State: model.PROpen, Number: 8})

	candidates, err := mgr.GC(context.Background(), "acme", "repo")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "done-feature", candidates[0].Name)
	require.Equal(t, "workstack rm done-feature -s", candidates[0].RemoveCommand)
}

func TestGC_ExcludesRootAndDetachedAndMissingPR(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	detached := mkdirDest(t, workstacksRoot, "repo", "detached-one")
	noPR := mkdirDest(t, workstacksRoot, "repo", "no-pr-yet")
	vcs.Worktrees["repo"] = []model.WorktreeRef{
		{Path: repoRoot, Branch: "main"},
		{Path: detached, Branch: ""},
		{Path: noPR, Branch: "no-pr-yet"},
	}

	candidates, err := mgr.GC(context.Background(), "acme", "repo")
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestGC_ExcludesWorktreesOutsideManagedRoot(t *testing.T) {
	workstacksRoot := t.TempDir()
	repoRoot := t.TempDir()
	mgr, vcs, _ := newManager(t, workstacksRoot, repoRoot, "repo")

	elsewhere := filepath.Join(t.TempDir(), "elsewhere")
	vcs.Worktrees["repo"] = []model.WorktreeRef{
		{Path: elsewhere, Branch: "stray"},
	}
	prHost := mgr.PrHost.(*wsops.FakePrHostOps)
	prHost.SetPR("acme", "repo", "stray", &model.PullRequest{State: model.PRMerged})

	candidates, err := mgr.GC(context.Background(), "acme", "repo")
	require.NoError(t, err)
	require.Empty(t, candidates)
}
