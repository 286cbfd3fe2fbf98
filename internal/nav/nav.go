// Package nav implements the navigation engine (spec §4.E): up, down,
// switch, jump, and the activation-script mechanism a child process uses to
// change the caller's working directory.
package nav

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
	"workstack.dev/workstack/internal/wsops"
)

// Engine bundles what navigation needs: the branch graph, the repo root, and
// VcsOps, through which it lists worktrees on each call and performs the rare
// checkout (jump, case 2).
type Engine struct {
	Vcs      wsops.VcsOps
	Graph    *model.BranchGraph
	RepoRoot string
}

// worktreeByBranch finds the non-detached worktree with branch checked out.
func worktreeByBranch(worktrees []model.WorktreeRef, branch string) (model.WorktreeRef, bool) {
	for _, wt := range worktrees {
		if !wt.IsDetached() && wt.Branch == branch {
			return wt, true
		}
	}
	return model.WorktreeRef{}, false
}

// Up implements `up` / `switch --up`.
func (e *Engine) Up(ctx context.Context, currentBranch string) (model.WorktreeRef, error) {
	children := e.Graph.Children(currentBranch)
	if len(children) == 0 {
		return model.WorktreeRef{}, wserrors.New(wserrors.Precondition, "already at top of stack")
	}
	child := children[0]

	worktrees, err := e.Vcs.ListWorktrees(ctx)
	if err != nil {
		return model.WorktreeRef{}, err
	}
	if wt, ok := worktreeByBranch(worktrees, child); ok {
		return wt, nil
	}
	return model.WorktreeRef{}, wserrors.New(wserrors.NotFound, "branch %q has no worktree", child).
		WithRemedy("run `create %s`", child)
}

// Down implements `down` / `switch --down`.
func (e *Engine) Down(ctx context.Context, currentBranch string) (model.WorktreeRef, error) {
	if e.Graph.IsTrunk(currentBranch) {
		return model.WorktreeRef{}, wserrors.New(wserrors.Precondition, "already at bottom of stack")
	}
	parent, ok := e.Graph.Parent(currentBranch)
	if !ok {
		return model.WorktreeRef{}, wserrors.New(wserrors.Precondition, "already at bottom of stack")
	}

	worktrees, err := e.Vcs.ListWorktrees(ctx)
	if err != nil {
		return model.WorktreeRef{}, err
	}
	if wt, ok := worktreeByBranch(worktrees, parent); ok {
		return wt, nil
	}
	return model.WorktreeRef{}, wserrors.New(wserrors.NotFound, "branch %q has no worktree", parent).
		WithRemedy("run `create %s`", parent)
}

// Jump implements `jump BRANCH`.
func (e *Engine) Jump(ctx context.Context, branch string) (model.WorktreeRef, error) {
	worktrees, err := e.Vcs.ListWorktrees(ctx)
	if err != nil {
		return model.WorktreeRef{}, err
	}

	// Case 1: exactly one worktree has branch directly checked out.
	if wt, ok := worktreeByBranch(worktrees, branch); ok {
		return wt, nil
	}

	// Case 2/3: how many worktrees' stacks contain branch?
	var containing []model.WorktreeRef
	for _, wt := range worktrees {
		if wt.IsDetached() {
			continue
		}
		for _, b := range e.Graph.StackOf(wt.Branch) {
			if b == branch {
				containing = append(containing, wt)
				break
			}
		}
	}

	switch len(containing) {
	case 0:
		return model.WorktreeRef{}, wserrors.New(wserrors.NotFound,
			"%q not found in any worktree stack", branch).
			WithRemedy("try `create --from-branch %s`", branch)
	case 1:
		wt := containing[0]
		if err := e.Vcs.CheckoutBranch(ctx, wt.Path, branch); err != nil {
			return model.WorktreeRef{}, err
		}
		wt.Branch = branch
		return wt, nil
	default:
		return model.WorktreeRef{}, wserrors.New(wserrors.Conflict,
			"%q exists in multiple worktrees", branch).
			WithRemedy("use `switch` to pick one explicitly")
	}
}

// ActivationScriptDir is where activation scripts are written before the
// shell wrapper sources and deletes them.
func ActivationScriptDir() string {
	if dir := os.Getenv("TMPDIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// WriteActivationScript writes a one-line `cd '<path>'` script to a fresh
// temp file and returns its path (spec §4.E "Activation script").
func WriteActivationScript(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", wserrors.Wrap(wserrors.External, err, "failed to resolve absolute path")
	}

	f, err := os.CreateTemp(ActivationScriptDir(), "workstack-activate-*.sh")
	if err != nil {
		return "", wserrors.Wrap(wserrors.External, err, "failed to create activation script")
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "cd '%s'\n", abs); err != nil {
		return "", wserrors.Wrap(wserrors.External, err, "failed to write activation script")
	}
	return f.Name(), nil
}
