package cli

import (
	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/rebase"
	"workstack.dev/workstack/internal/wserrors"
)

func orchestratorFor(rc *RuntimeContext) *rebase.Orchestrator {
	location := model.DefaultRebaseStackLocation
	if defaults, err := rc.GlobalConfig.RebaseDefaults(); err == nil && defaults.StackLocation != "" {
		location = defaults.StackLocation
	}
	return &rebase.Orchestrator{Vcs: rc.Vcs, RepoRoot: rc.RepoRoot, StackLocation: location}
}

// liveWorktreePathForBranch finds the filesystem path of the non-detached
// worktree with branch checked out, used by `rebase apply`/`rebase compare`
// to locate the live source worktree.
func liveWorktreePathForBranch(rc *RuntimeContext, cmd *cobra.Command, branch string) (string, error) {
	worktrees, err := rc.Vcs.ListWorktrees(cmd.Context())
	if err != nil {
		return "", err
	}
	for _, wt := range worktrees {
		if !wt.IsDetached() && wt.Branch == branch {
			return wt.Path, nil
		}
	}
	return "", wserrors.New(wserrors.NotFound, "branch %q has no live worktree", branch)
}

func findStack(o *rebase.Orchestrator, cmd *cobra.Command, sourceBranch string) (*model.RebaseStack, error) {
	stacks, err := o.Status(cmd.Context())
	if err != nil {
		return nil, err
	}
	for i := range stacks {
		if stacks[i].SourceBranch == sourceBranch {
			return &stacks[i], nil
		}
	}
	return nil, wserrors.New(wserrors.NotFound, "no rebase stack for %q", sourceBranch).
		WithRemedy("run `rebase preview %s <target>` first", sourceBranch)
}

func newRebaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebase",
		Short: "Drive a scratch-worktree rebase: preview, resolve, test, apply, abort, compare, status",
	}
	cmd.AddCommand(newRebasePreviewCmd())
	cmd.AddCommand(newRebaseResolveCmd())
	cmd.AddCommand(newRebaseTestCmd())
	cmd.AddCommand(newRebaseApplyCmd())
	cmd.AddCommand(newRebaseAbortCmd())
	cmd.AddCommand(newRebaseCompareCmd())
	cmd.AddCommand(newRebaseStatusCmd())
	return cmd
}

func newRebasePreviewCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "preview SOURCE TARGET",
		Short: "Start a scratch rebase of SOURCE onto TARGET",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			stack, err := orchestratorFor(rc).Preview(cmd.Context(), args[0], args[1], force)
			if err != nil {
				return err
			}
			splog.Info("rebase stack for %s onto %s: %s (%s)", stack.SourceBranch, stack.TargetBranch, stack.WorkingCopyPath, stack.Status)
			if stack.Status == model.RebaseConflicted {
				files, _ := rc.Vcs.ConflictedFiles(cmd.Context(), stack.WorkingCopyPath)
				for _, f := range files {
					splog.Info("  conflict: %s", f)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "discard an existing stack for SOURCE and start over")
	return cmd
}

func newRebaseResolveCmd() *cobra.Command {
	var strategy, file string
	cmd := &cobra.Command{
		Use:   "resolve SOURCE",
		Short: "Resolve conflicted files with --strategy=ours|theirs, one file or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			var strat rebase.Strategy
			switch strategy {
			case "ours":
				strat = rebase.Ours
			case "theirs":
				strat = rebase.Theirs
			default:
				return wserrors.New(wserrors.Usage, "--strategy must be \"ours\" or \"theirs\"")
			}

			o := orchestratorFor(rc)
			stack, err := findStack(o, cmd, args[0])
			if err != nil {
				return err
			}

			files := []string{file}
			if file == "" {
				files, err = rc.Vcs.ConflictedFiles(cmd.Context(), stack.WorkingCopyPath)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					splog.Info("no conflicts")
					return nil
				}
			}

			var result rebase.ResolveResult
			for _, f := range files {
				result, err = o.Resolve(cmd.Context(), stack, f, strat)
				if err != nil {
					return err
				}
			}
			if result.Resolved {
				splog.Info("resolved, no conflicts remaining")
			} else {
				splog.Info("%d file(s) still conflicted", len(result.RemainingFiles))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "", "ours or theirs")
	cmd.Flags().StringVar(&file, "file", "", "resolve only this file (default: every conflicted file)")
	return cmd
}

func newRebaseTestCmd() *cobra.Command {
	var command string
	cmd := &cobra.Command{
		Use:   "test SOURCE",
		Short: "Run the stack's test command (or an explicit one) inside the scratch working copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			o := orchestratorFor(rc)
			stack, err := findStack(o, cmd, args[0])
			if err != nil {
				return err
			}
			result, err := rebase.Test(cmd.Context(), stack.WorkingCopyPath, command)
			if err != nil {
				return err
			}
			splog.Page(result.Output)
			if !result.Passed {
				return wserrors.New(wserrors.External, "%s failed", result.Command)
			}
			splog.Info("%s passed", result.Command)
			return nil
		},
	}
	cmd.Flags().StringVar(&command, "command", "", "explicit test command (default: auto-detect)")
	return cmd
}

func newRebaseApplyCmd() *cobra.Command {
	var force, preserveStack bool
	cmd := &cobra.Command{
		Use:   "apply SOURCE",
		Short: "Fast-forward the live branch to the scratch's rebased tip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			o := orchestratorFor(rc)
			stack, err := findStack(o, cmd, args[0])
			if err != nil {
				return err
			}
			liveWorktreePath, err := liveWorktreePathForBranch(rc, cmd, args[0])
			if err != nil {
				return err
			}
			preserve := preserveStack
			if !cmd.Flags().Changed("preserve-stack") {
				if defaults, err := rc.GlobalConfig.RebaseDefaults(); err == nil {
					preserve = defaults.PreserveStacks
				}
			}
			if err := o.Apply(cmd.Context(), stack, liveWorktreePath, force, preserve); err != nil {
				return err
			}
			splog.Info("applied rebase of %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "apply even over a dirty or diverged live worktree")
	cmd.Flags().BoolVar(&preserveStack, "preserve-stack", false, "keep the scratch working copy after applying (default: [rebase].preserve_stacks)")
	return cmd
}

func newRebaseAbortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abort SOURCE",
		Short: "Discard a rebase stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			o := orchestratorFor(rc)
			stack, err := findStack(o, cmd, args[0])
			if err != nil {
				return err
			}
			if err := o.Abort(cmd.Context(), stack); err != nil {
				return err
			}
			splog.Info("aborted rebase stack for %s", args[0])
			return nil
		},
	}
	return cmd
}

func newRebaseCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare SOURCE",
		Short: "Diff the live source branch against its scratch rebased tip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			o := orchestratorFor(rc)
			stack, err := findStack(o, cmd, args[0])
			if err != nil {
				return err
			}
			liveWorktreePath, err := liveWorktreePathForBranch(rc, cmd, args[0])
			if err != nil {
				return err
			}
			lines, err := o.Compare(cmd.Context(), liveWorktreePath, stack.WorkingCopyPath, args[0])
			if err != nil {
				return err
			}
			for _, l := range lines {
				splog.Line(rebase.FormatCompareLine(l))
			}
			return nil
		},
	}
	return cmd
}

func newRebaseStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List in-progress rebase stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			stacks, err := orchestratorFor(rc).Status(cmd.Context())
			if err != nil {
				return err
			}
			if len(stacks) == 0 {
				splog.Info("no in-progress rebase stacks")
				return nil
			}
			for _, s := range stacks {
				splog.Info("%s: %s (%s)", s.SourceBranch, s.Status, s.WorkingCopyPath)
			}
			return nil
		},
	}
	return cmd
}
