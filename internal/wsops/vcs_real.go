package wsops

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"workstack.dev/workstack/internal/git"
	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
)

// realVcsOps implements VcsOps by shelling out to the git binary.
type realVcsOps struct{}

// NewRealVcsOps returns the real, side-effecting VcsOps implementation.
func NewRealVcsOps() VcsOps {
	return &realVcsOps{}
}

func runner(dir string) *git.CommandRunner {
	return git.NewCommandRunner(dir)
}

func (v *realVcsOps) ListWorktrees(ctx context.Context) ([]model.WorktreeRef, error) {
	lines, err := runner("").RunLines(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	var refs []model.WorktreeRef
	var cur *model.WorktreeRef
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "worktree "):
			if cur != nil {
				refs = append(refs, *cur)
			}
			cur = &model.WorktreeRef{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch "):
			if cur != nil {
				ref := strings.TrimPrefix(line, "branch ")
				cur.Branch = strings.TrimPrefix(ref, "refs/heads/")
			}
		case line == "detached":
			if cur != nil {
				cur.Branch = ""
			}
		}
	}
	if cur != nil {
		refs = append(refs, *cur)
	}
	return refs, nil
}

func (v *realVcsOps) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := runner(dir).Run(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		// Nonzero exit from symbolic-ref means detached HEAD, not a real failure.
		return "", nil
	}
	return out, nil
}

func (v *realVcsOps) DefaultBranch(ctx context.Context, repoRoot string) (string, error) {
	r := runner(repoRoot)
	if out, err := r.Run(ctx, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		return strings.TrimPrefix(out, "refs/remotes/origin/"), nil
	}
	for _, candidate := range []string{"main", "master"} {
		if ok, _ := v.BranchExists(ctx, repoRoot, candidate); ok {
			return candidate, nil
		}
	}
	return "", wserrors.New(wserrors.NotFound, "could not detect the default branch")
}

func (v *realVcsOps) CommonDir(ctx context.Context, path string) (string, error) {
	out, err := runner(path).Run(ctx, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(out) {
		return out, nil
	}
	return filepath.Join(path, out), nil
}

func (v *realVcsOps) BranchCheckedOutAt(ctx context.Context, branch string) (string, bool, error) {
	refs, err := v.ListWorktrees(ctx)
	if err != nil {
		return "", false, err
	}
	for _, ref := range refs {
		if ref.Branch == branch {
			return ref.Path, true, nil
		}
	}
	return "", false, nil
}

func (v *realVcsOps) HasStagedChanges(ctx context.Context, dir string) (bool, error) {
	out, err := runner(dir).Run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (v *realVcsOps) IsWorktreeClean(ctx context.Context, dir string) (bool, error) {
	out, err := runner(dir).Run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

func (v *realVcsOps) MergeBase(ctx context.Context, dir, rev1, rev2 string) (string, error) {
	return runner(dir).Run(ctx, "merge-base", rev1, rev2)
}

func (v *realVcsOps) CommitRange(ctx context.Context, dir, base, head string) ([]model.CommitDescriptor, error) {
	lines, err := runner(dir).RunLines(ctx, "log", "--reverse", "--format=%H%x1f%s", base+".."+head)
	if err != nil {
		return nil, err
	}
	var out []model.CommitDescriptor
	for _, line := range lines {
		parts := strings.SplitN(line, "\x1f", 2)
		if len(parts) != 2 {
			continue
		}
		out = append(out, model.CommitDescriptor{SHA: parts[0], Message: parts[1]})
	}
	return out, nil
}

func (v *realVcsOps) ConflictedFiles(ctx context.Context, dir string) ([]string, error) {
	return runner(dir).RunLines(ctx, "diff", "--name-only", "--diff-filter=U")
}

func (v *realVcsOps) BranchExists(ctx context.Context, repoRoot, branch string) (bool, error) {
	_, err := runner(repoRoot).Run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil, nil
}

func (v *realVcsOps) Log(ctx context.Context, dir, branch string, n int) ([]git.LogEntry, error) {
	args := []string{"log"}
	if n > 0 {
		args = append(args, "-n", strconv.Itoa(n))
	}
	args = append(args, "--format=%h%x1f%s%x1f%an%x1f%ar", branch)

	lines, err := runner(dir).RunLines(ctx, args...)
	if err != nil {
		return nil, err
	}
	var out []git.LogEntry
	for _, line := range lines {
		parts := strings.SplitN(line, "\x1f", 4)
		if len(parts) != 4 {
			continue
		}
		out = append(out, git.LogEntry{ShortSHA: parts[0], Message: parts[1], Author: parts[2], RelativeDate: parts[3]})
	}
	return out, nil
}

func (v *realVcsOps) AheadBehind(ctx context.Context, dir, branch string) (int, int, bool, error) {
	upstream, err := runner(dir).Run(ctx, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil || upstream == "" {
		return 0, 0, false, nil
	}
	out, err := runner(dir).Run(ctx, "rev-list", "--left-right", "--count", branch+"..."+upstream)
	if err != nil {
		return 0, 0, true, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, true, nil
	}
	ahead, _ := strconv.Atoi(fields[0])
	behind, _ := strconv.Atoi(fields[1])
	return ahead, behind, true, nil
}

func (v *realVcsOps) FileStatuses(ctx context.Context, dir string) (staged, modified, untracked []string, err error) {
	lines, err := runner(dir).RunLines(ctx, "status", "--porcelain")
	if err != nil {
		return nil, nil, nil, err
	}
	for _, line := range lines {
		if len(line) < 4 {
			continue
		}
		indexStatus, worktreeStatus, path := line[0], line[1], line[3:]
		switch {
		case indexStatus == '?' && worktreeStatus == '?':
			untracked = append(untracked, path)
		default:
			if indexStatus != ' ' {
				staged = append(staged, path)
			}
			if worktreeStatus != ' ' {
				modified = append(modified, path)
			}
		}
	}
	return staged, modified, untracked, nil
}

func (v *realVcsOps) AddWorktree(ctx context.Context, path string, opts AddWorktreeOptions) error {
	args := []string{"worktree", "add"}
	switch {
	case opts.NewBranch != "":
		args = append(args, "-b", opts.NewBranch, path)
		if opts.Ref != "" {
			args = append(args, opts.Ref)
		}
	case opts.Detach:
		args = append(args, "--detach", path)
		if opts.Ref != "" {
			args = append(args, opts.Ref)
		}
	default:
		args = append(args, path, opts.ExistingBranch)
	}
	_, err := runner("").Run(ctx, args...)
	return err
}

func (v *realVcsOps) MoveWorktree(ctx context.Context, oldPath, newPath string) error {
	_, err := runner("").Run(ctx, "worktree", "move", oldPath, newPath)
	return err
}

func (v *realVcsOps) RemoveWorktree(ctx context.Context, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := runner("").Run(ctx, args...)
	return err
}

func (v *realVcsOps) CheckoutBranch(ctx context.Context, dir, branch string) error {
	_, err := runner(dir).Run(ctx, "checkout", branch)
	return err
}

func (v *realVcsOps) StageFile(ctx context.Context, dir, path string) error {
	_, err := runner(dir).Run(ctx, "add", "--", path)
	return err
}

func (v *realVcsOps) HeadCommit(ctx context.Context, dir string) (string, error) {
	return runner(dir).Run(ctx, "rev-parse", "HEAD")
}

func (v *realVcsOps) FastForwardBranch(ctx context.Context, dir, branch, ref string) error {
	_, err := runner(dir).Run(ctx, "merge", "--ff-only", ref)
	return err
}

func (v *realVcsOps) DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := runner(repoRoot).Run(ctx, "branch", flag, branch)
	return err
}

func (v *realVcsOps) PruneWorktrees(ctx context.Context, repoRoot string) error {
	_, err := runner(repoRoot).Run(ctx, "worktree", "prune")
	return err
}

func (v *realVcsOps) RebaseStart(ctx context.Context, dir, upstream, onto string) (RebaseStartResult, error) {
	_, err := runner(dir).Run(ctx, "rebase", "--onto", onto, upstream)
	return v.rebaseResult(ctx, dir, err)
}

func (v *realVcsOps) RebaseContinue(ctx context.Context, dir string) (RebaseStartResult, error) {
	_, err := runner(dir).Run(ctx, "rebase", "--continue")
	return v.rebaseResult(ctx, dir, err)
}

func (v *realVcsOps) RebaseAbort(ctx context.Context, dir string) error {
	_, err := runner(dir).Run(ctx, "rebase", "--abort")
	return err
}

func (v *realVcsOps) rebaseResult(ctx context.Context, dir string, rebaseErr error) (RebaseStartResult, error) {
	if rebaseErr == nil {
		return RebaseStartResult{Done: true}, nil
	}
	files, _ := v.ConflictedFiles(ctx, dir)
	if len(files) > 0 {
		return RebaseStartResult{Conflicted: true, ConflictFiles: files}, nil
	}
	return RebaseStartResult{}, rebaseErr
}
