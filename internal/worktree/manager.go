// Package worktree implements the worktree lifecycle manager (spec §4.D):
// create, rename, move/swap, remove, and garbage-collect, plus `.env`
// generation and plan-file placement.
package worktree

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"workstack.dev/workstack/internal/config"
	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/validate"
	"workstack.dev/workstack/internal/wserrors"
	"workstack.dev/workstack/internal/wsops"
)

// Manager bundles the operations interfaces the lifecycle algorithms need.
// It takes the place of a bare WorkstackContext when only worktree-lifecycle
// concerns are in play.
type Manager struct {
	Vcs          wsops.VcsOps
	StackedDiff  wsops.StackedDiffOps
	GlobalConfig wsops.GlobalConfigOps
	PrHost       wsops.PrHostOps

	RepoRoot string
	RepoName string
}

// basePath resolves the managed-worktree base directory: the configured
// workstacks_root if set, else the repo root itself (spec invariant 2).
// Create, Rename, and Remove all resolve the same managed worktree's path
// this way so none of them drifts from the others.
func (m *Manager) basePath() string {
	if root, err := m.GlobalConfig.WorkstacksRoot(); err == nil && root != "" {
		return root
	}
	return m.RepoRoot
}

// CreateOptions mirrors the `create` command's flags.
type CreateOptions struct {
	Name              string
	Branch            string
	PlanPath          string
	KeepPlan          bool
	FromCurrentBranch bool
	FromBranch        string
	NoPost            bool
}

var planStemRe = regexp.MustCompile(`(?i)^[-_ ]*plan[-_ ]+|[-_ ]+plan[-_ ]*$`)

// deriveNameFromPlan turns a plan file's stem into a worktree name
// candidate by stripping a leading or trailing "plan" word (spec §4.D
// step 1).
func deriveNameFromPlan(planPath string) string {
	stem := strings.TrimSuffix(filepath.Base(planPath), filepath.Ext(planPath))
	return planStemRe.ReplaceAllString(stem, "")
}

// Create implements the `create` command's algorithm.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (model.WorktreeRef, error) {
	if opts.KeepPlan && opts.PlanPath == "" {
		return model.WorktreeRef{}, wserrors.New(wserrors.Usage, "--keep-plan requires --plan")
	}
	if opts.FromCurrentBranch && opts.FromBranch != "" {
		return model.WorktreeRef{}, wserrors.New(wserrors.Usage, "--from-current-branch and --from-branch are mutually exclusive")
	}

	// Step 1: worktree name.
	rawName := opts.Name
	if opts.PlanPath != "" {
		rawName = deriveNameFromPlan(opts.PlanPath)
	}
	name := validate.SanitizeWorktreeName(rawName)
	if err := validate.ValidateWorktreeName(name); err != nil {
		return model.WorktreeRef{}, err
	}

	// Step 2: branch name.
	branch := opts.Branch
	if branch == "" {
		branch = validate.SanitizeBranchName(name)
	}
	if model.ReservedNames[strings.ToLower(branch)] {
		return model.WorktreeRef{}, wserrors.New(wserrors.Validation, "%q is a reserved branch name", branch)
	}

	// Step 3: source ref.
	addOpts := wsops.AddWorktreeOptions{NewBranch: branch}
	defaultBranch, err := m.Vcs.DefaultBranch(ctx, m.RepoRoot)
	if err != nil {
		return model.WorktreeRef{}, err
	}

	switch {
	case opts.FromCurrentBranch:
		cur, err := m.Vcs.CurrentBranch(ctx, m.RepoRoot)
		if err != nil {
			return model.WorktreeRef{}, err
		}
		if cur == defaultBranch {
			return model.WorktreeRef{}, wserrors.New(wserrors.Precondition,
				"current branch is the default branch").
				WithRemedy("use plain `create` or specify --from-branch")
		}
		addOpts.Ref = cur
	case opts.FromBranch != "":
		exists, err := m.Vcs.BranchExists(ctx, m.RepoRoot, opts.FromBranch)
		if err != nil {
			return model.WorktreeRef{}, err
		}
		if !exists {
			return model.WorktreeRef{}, wserrors.New(wserrors.NotFound, "branch %q does not exist", opts.FromBranch)
		}
		if path, ok, err := m.Vcs.BranchCheckedOutAt(ctx, opts.FromBranch); err != nil {
			return model.WorktreeRef{}, err
		} else if ok {
			return model.WorktreeRef{}, wserrors.New(wserrors.Conflict,
				"branch %q is already checked out at %s", opts.FromBranch, path)
		}
		addOpts.Ref = opts.FromBranch
	default:
		addOpts.Ref = defaultBranch
	}

	// Step 4: destination path.
	dest := filepath.Join(m.basePath(), m.RepoName, name)
	if _, err := os.Stat(dest); err == nil {
		return model.WorktreeRef{}, wserrors.New(wserrors.Conflict, "worktree path %s already exists", dest)
	}

	// Step 5: staged-changes guard for adopted branches under the stacked-diff tool.
	if opts.FromBranch != "" {
		useGraphite, _ := m.GlobalConfig.UseGraphite()
		if useGraphite {
			staged, err := m.Vcs.HasStagedChanges(ctx, m.RepoRoot)
			if err != nil {
				return model.WorktreeRef{}, err
			}
			if staged {
				return model.WorktreeRef{}, wserrors.New(wserrors.Precondition,
					"caller repo has staged changes").
					WithRemedy("commit or stash staged changes before adopting an existing branch into a stack")
			}
		}
	}

	// Step 6: create + prune.
	if err := m.Vcs.AddWorktree(ctx, dest, addOpts); err != nil {
		return model.WorktreeRef{}, err
	}
	if err := m.Vcs.PruneWorktrees(ctx, m.RepoRoot); err != nil {
		return model.WorktreeRef{}, err
	}

	// Step 7: render .env.
	repoCfg, err := config.Load(m.RepoRoot)
	if err != nil {
		return model.WorktreeRef{}, err
	}
	env := RenderEnv(repoCfg, dest, name, m.RepoRoot)
	if err := WriteEnvFile(envPath(dest), env); err != nil {
		return model.WorktreeRef{}, wserrors.Wrap(wserrors.External, err, "failed to write .env")
	}

	// Step 8: plan file.
	if opts.PlanPath != "" {
		if err := placePlanFile(opts.PlanPath, dest, opts.KeepPlan); err != nil {
			return model.WorktreeRef{}, err
		}
	}

	// Step 9: post-create commands.
	if !opts.NoPost && len(repoCfg.PostCreate.Commands) > 0 {
		runPostCreate(repoCfg.PostCreate, dest, env)
	}

	return model.WorktreeRef{Path: dest, Branch: branch}, nil
}

// PlanFileName is where a plan document lands inside a created worktree.
const PlanFileName = ".PLAN.md"

func placePlanFile(src, destWorktree string, keep bool) error {
	dst := filepath.Join(destWorktree, PlanFileName)
	data, err := os.ReadFile(src)
	if err != nil {
		return wserrors.Wrap(wserrors.External, err, "failed to read plan file %s", src)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return wserrors.Wrap(wserrors.External, err, "failed to write plan file to %s", dst)
	}
	if !keep {
		if err := os.Remove(src); err != nil {
			return wserrors.Wrap(wserrors.External, err, "failed to remove source plan file %s", src)
		}
	}
	return nil
}

// runPostCreate executes the repo's post_create commands, surfacing failures
// without unwinding the already-created worktree (spec §4.D step 9).
func runPostCreate(pc model.PostCreateConfig, cwd string, env map[string]string) {
	shell := pc.Shell
	if shell == "" {
		shell = "sh"
	}
	for _, c := range pc.Commands {
		cmd := exec.Command(shell, "-c", c)
		cmd.Dir = cwd
		cmd.Stderr = os.Stderr
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "post_create command failed: %s: %v\n", c, err)
		}
	}
}

// Rename implements the `rename` command's algorithm.
func (m *Manager) Rename(ctx context.Context, oldName, newName string) error {
	newName = validate.SanitizeWorktreeName(newName)
	if err := validate.ValidateWorktreeName(newName); err != nil {
		return err
	}

	oldPath := filepath.Join(m.basePath(), m.RepoName, oldName)
	if _, err := os.Stat(oldPath); err != nil {
		return wserrors.New(wserrors.NotFound, "worktree %q does not exist", oldName)
	}
	newPath := filepath.Join(m.basePath(), m.RepoName, newName)
	if _, err := os.Stat(newPath); err == nil {
		return wserrors.New(wserrors.Conflict, "worktree %q already exists", newName)
	}

	if err := m.Vcs.MoveWorktree(ctx, oldPath, newPath); err != nil {
		return err
	}

	repoCfg, err := config.Load(m.RepoRoot)
	if err != nil {
		return err
	}
	env := RenderEnv(repoCfg, newPath, newName, m.RepoRoot)
	return WriteEnvFile(envPath(newPath), env)
}

// Remove implements the `rm` command's algorithm. confirm is called only
// when force is false; a false return leaves the worktree untouched.
func (m *Manager) Remove(ctx context.Context, name string, force, deleteStack bool, confirm func() bool) error {
	if strings.ContainsAny(name, "/\\") || name == ".." || model.ReservedNames[strings.ToLower(name)] {
		return wserrors.New(wserrors.Validation, "%q is not a removable worktree name", name)
	}

	path := filepath.Join(m.basePath(), m.RepoName, name)
	if !force {
		if confirm == nil || !confirm() {
			return nil
		}
	}

	// Resolve the worktree's actual checked-out branch before removing it:
	// --branch lets a worktree's name and branch differ, and once the
	// worktree is gone there's no path left to ask "what branch was here".
	branch, err := m.Vcs.CurrentBranch(ctx, path)
	if err != nil {
		return err
	}

	if err := m.Vcs.RemoveWorktree(ctx, path, force); err != nil {
		return err
	}

	if deleteStack && branch != "" {
		if err := m.Vcs.DeleteBranch(ctx, m.RepoRoot, branch, force); err != nil {
			return err
		}
		if m.StackedDiff != nil {
			useGraphite, _ := m.GlobalConfig.UseGraphite()
			if useGraphite {
				if err := m.StackedDiff.DeleteBranch(ctx, m.RepoRoot, branch, force); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
