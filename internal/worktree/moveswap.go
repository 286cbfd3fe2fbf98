package worktree

import (
	"context"
	"path/filepath"

	"workstack.dev/workstack/internal/config"
	"workstack.dev/workstack/internal/wserrors"
)

// MoveTarget names where a move/swap's target specifier resolves to.
type MoveTarget struct {
	WorktreeName string // ignored when IsRoot is set
	IsRoot       bool
}

// resolveWorktreePath maps a worktree name (or root) to its filesystem path.
func (m *Manager) resolveWorktreePath(target MoveTarget) string {
	if target.IsRoot {
		return m.RepoRoot
	}
	return filepath.Join(m.basePath(), m.RepoName, target.WorktreeName)
}

// MoveOrSwap implements the `move` command's algorithm (spec §4.D
// "Move/swap"). sourcePath is the resolved filesystem path of the source
// worktree; target names the destination.
func (m *Manager) MoveOrSwap(ctx context.Context, sourcePath string, target MoveTarget, force bool, confirm func() bool) error {
	destPath := m.resolveWorktreePath(target)
	if sourcePath == destPath {
		return wserrors.New(wserrors.Usage, "source and target resolve to the same worktree")
	}

	sourceBranch, err := m.Vcs.CurrentBranch(ctx, sourcePath)
	if err != nil {
		return err
	}
	if sourceBranch == "" {
		return wserrors.New(wserrors.Precondition, "source worktree is in detached HEAD")
	}

	destBranch, err := m.Vcs.CurrentBranch(ctx, destPath)
	destExists := err == nil

	if destExists && destBranch != "" {
		// Swap: exchange the two worktree directories through a temporary
		// path, so neither move lands on a path that is still occupied.
		if !force {
			if confirm == nil || !confirm() {
				return nil
			}
		}
		return m.swap(ctx, sourcePath, sourceBranch, destPath, destBranch)
	}

	// Move: relocate the source worktree's branch to destPath.
	if err := m.Vcs.MoveWorktree(ctx, sourcePath, destPath); err != nil {
		return err
	}
	repoCfg, err := config.Load(m.RepoRoot)
	if err != nil {
		return err
	}
	env := RenderEnv(repoCfg, destPath, filepath.Base(destPath), m.RepoRoot)
	if err := WriteEnvFile(envPath(destPath), env); err != nil {
		return wserrors.Wrap(wserrors.External, err, "failed to rewrite .env after move")
	}
	return nil
}

func (m *Manager) swap(ctx context.Context, sourcePath, sourceBranch, destPath, destBranch string) error {
	const tmpSuffix = ".workstack-swap-tmp"
	tmpPath := destPath + tmpSuffix

	if err := m.Vcs.MoveWorktree(ctx, destPath, tmpPath); err != nil {
		return err
	}
	if err := m.Vcs.MoveWorktree(ctx, sourcePath, destPath); err != nil {
		return err
	}
	if err := m.Vcs.MoveWorktree(ctx, tmpPath, sourcePath); err != nil {
		return err
	}

	for _, p := range []struct {
		path, name string
	}{
		{destPath, filepath.Base(destPath)},
		{sourcePath, filepath.Base(sourcePath)},
	} {
		repoCfg, err := config.Load(m.RepoRoot)
		if err != nil {
			return err
		}
		env := RenderEnv(repoCfg, p.path, p.name, m.RepoRoot)
		if err := WriteEnvFile(envPath(p.path), env); err != nil {
			return wserrors.Wrap(wserrors.External, err, "failed to rewrite .env after swap")
		}
	}
	return nil
}
