// Package rebase implements the rebase orchestrator state machine (spec
// §4.G): preview, resolve, test, apply, abort, compare, status, operating
// on a scratch working copy under the repository's rebase-stack location.
package rebase

import (
	"context"
	"os"
	"path/filepath"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
	"workstack.dev/workstack/internal/wsops"
)

// Orchestrator drives one or more RebaseStacks for a repository.
type Orchestrator struct {
	Vcs           wsops.VcsOps
	RepoRoot      string
	StackLocation string // relative to RepoRoot, e.g. ".rebase-stack"
}

func (o *Orchestrator) stackDir(sourceBranch string) string {
	return filepath.Join(o.RepoRoot, o.StackLocation, sourceBranch)
}

// Preview implements `rebase preview` (spec §4.G "preview"). force discards
// any existing stack for sourceBranch first; without force, preview over an
// existing stack leaves it untouched and returns a Conflict error.
func (o *Orchestrator) Preview(ctx context.Context, sourceBranch, targetBranch string, force bool) (model.RebaseStack, error) {
	dir := o.stackDir(sourceBranch)

	if _, err := os.Stat(dir); err == nil {
		if !force {
			return model.RebaseStack{}, wserrors.New(wserrors.Conflict,
				"a rebase stack already exists for %s", sourceBranch).
				WithRemedy("pass --force to discard it and start over")
		}
		if err := os.RemoveAll(dir); err != nil {
			return model.RebaseStack{}, wserrors.Wrap(wserrors.External, err, "failed to discard existing rebase stack")
		}
	}

	mergeBase, err := o.Vcs.MergeBase(ctx, o.RepoRoot, sourceBranch, targetBranch)
	if err != nil {
		return model.RebaseStack{}, err
	}
	commits, err := o.Vcs.CommitRange(ctx, o.RepoRoot, mergeBase, sourceBranch)
	if err != nil {
		return model.RebaseStack{}, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.RebaseStack{}, wserrors.Wrap(wserrors.External, err, "failed to create rebase scratch directory")
	}
	// sourceBranch is checked out live; the scratch copy must be detached at
	// the same commit rather than checking out sourceBranch itself, since a
	// branch can only be checked out in one worktree at a time.
	if err := o.Vcs.AddWorktree(ctx, dir, wsops.AddWorktreeOptions{Detach: true, Ref: sourceBranch}); err != nil {
		return model.RebaseStack{}, err
	}

	result, err := o.Vcs.RebaseStart(ctx, dir, mergeBase, targetBranch)
	if err != nil {
		return model.RebaseStack{}, err
	}

	stack := model.RebaseStack{
		SourceBranch:    sourceBranch,
		TargetBranch:    targetBranch,
		MergeBase:       mergeBase,
		CommitsToRebase: commits,
		WorkingCopyPath: dir,
	}
	if result.Conflicted {
		stack.Status = model.RebaseConflicted
	} else {
		stack.Status = model.RebaseResolved
	}
	return stack, nil
}

// ResolveResult is returned by Resolve.
type ResolveResult struct {
	Resolved       bool
	RemainingFiles []string
}

// Resolve implements `rebase resolve FILE --strategy=ours|theirs` (spec
// §4.G "resolve"). If the stack isn't conflicted, it's a no-op success.
func (o *Orchestrator) Resolve(ctx context.Context, stack *model.RebaseStack, file string, strategy Strategy) (ResolveResult, error) {
	if stack.Status != model.RebaseConflicted {
		return ResolveResult{Resolved: true}, nil
	}

	fullPath := filepath.Join(stack.WorkingCopyPath, file)
	fileResolved, err := ResolveFile(fullPath, strategy)
	if err != nil {
		return ResolveResult{}, err
	}
	if !fileResolved {
		return ResolveResult{Resolved: false}, wserrors.New(wserrors.Conflict,
			"%s still contains conflict markers after applying %s", file, strategy)
	}
	if err := o.Vcs.StageFile(ctx, stack.WorkingCopyPath, file); err != nil {
		return ResolveResult{}, err
	}

	remaining, err := o.Vcs.ConflictedFiles(ctx, stack.WorkingCopyPath)
	if err != nil {
		return ResolveResult{}, err
	}
	if len(remaining) > 0 {
		return ResolveResult{Resolved: false, RemainingFiles: remaining}, nil
	}

	// Every file in the current commit's conflict is staged; continuing the
	// rebase may surface conflicts in the next commit in CommitsToRebase.
	result, err := o.Vcs.RebaseContinue(ctx, stack.WorkingCopyPath)
	if err != nil {
		return ResolveResult{}, err
	}
	if result.Conflicted {
		return ResolveResult{Resolved: false, RemainingFiles: result.ConflictFiles}, nil
	}
	stack.Status = model.RebaseResolved
	return ResolveResult{Resolved: true}, nil
}

// Apply implements `rebase apply` (spec §4.G "apply" and "Failure
// semantics"). Unless force, it refuses to run when the live source
// worktree is dirty, mid-operation, or diverged from its upstream.
func (o *Orchestrator) Apply(ctx context.Context, stack *model.RebaseStack, liveWorktreePath string, force, preserveStack bool) error {
	if stack.Status != model.RebaseResolved {
		return wserrors.New(wserrors.Precondition, "rebase stack for %s is not ready to apply (status=%s)", stack.SourceBranch, stack.Status)
	}

	if !force {
		clean, err := o.Vcs.IsWorktreeClean(ctx, liveWorktreePath)
		if err != nil {
			return err
		}
		if !clean {
			return wserrors.New(wserrors.Precondition, "live worktree has uncommitted changes").
				WithRemedy("commit or stash them, or pass --force")
		}
		_, behind, hasUpstream, err := o.Vcs.AheadBehind(ctx, liveWorktreePath, stack.SourceBranch)
		if err != nil {
			return err
		}
		if hasUpstream && behind > 0 {
			return wserrors.New(wserrors.Precondition, "%s has diverged from its upstream", stack.SourceBranch).
				WithRemedy("pull or pass --force")
		}
	}

	scratchTip, err := o.Vcs.HeadCommit(ctx, stack.WorkingCopyPath)
	if err != nil {
		return err
	}
	if err := o.Vcs.FastForwardBranch(ctx, liveWorktreePath, stack.SourceBranch, scratchTip); err != nil {
		return err
	}

	if !preserveStack {
		if err := os.RemoveAll(stack.WorkingCopyPath); err != nil {
			return wserrors.Wrap(wserrors.External, err, "failed to remove rebase scratch directory")
		}
	}

	stack.Status = model.RebaseApplied
	return nil
}

// Abort implements `rebase abort` (spec §4.G "abort"): remove the scratch
// working directory and metadata, transitioning to "no stack".
func (o *Orchestrator) Abort(ctx context.Context, stack *model.RebaseStack) error {
	if err := o.Vcs.RebaseAbort(ctx, stack.WorkingCopyPath); err != nil {
		return err
	}
	if err := os.RemoveAll(stack.WorkingCopyPath); err != nil {
		return wserrors.Wrap(wserrors.External, err, "failed to remove rebase scratch directory")
	}
	stack.Status = model.RebaseAborted
	return nil
}

// Status implements `rebase status`: enumerate existing stacks under
// StackLocation and report each one's phase, inferred from what's on disk
// (a conflicted stack still has files under ConflictedFiles).
func (o *Orchestrator) Status(ctx context.Context) ([]model.RebaseStack, error) {
	root := filepath.Join(o.RepoRoot, o.StackLocation)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, wserrors.Wrap(wserrors.External, err, "failed to list rebase stacks")
	}

	var stacks []model.RebaseStack
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		status := model.RebaseResolved
		if conflicted, _ := o.Vcs.ConflictedFiles(ctx, dir); len(conflicted) > 0 {
			status = model.RebaseConflicted
		}
		stacks = append(stacks, model.RebaseStack{
			SourceBranch:    e.Name(),
			WorkingCopyPath: dir,
			Status:          status,
		})
	}
	return stacks, nil
}
