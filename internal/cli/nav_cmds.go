package cli

import (
	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/nav"
	"workstack.dev/workstack/internal/wserrors"
)

func engineFor(rc *RuntimeContext, graph *model.BranchGraph) *nav.Engine {
	return &nav.Engine{Vcs: rc.Vcs, Graph: graph, RepoRoot: rc.RepoRoot}
}

// activate writes the activation script for wt; under --script it prints
// the script's path for the shell wrapper to source, otherwise it prints a
// human-readable line describing the move (spec §4.E "Activation script").
func activate(wt model.WorktreeRef, script bool) error {
	path, err := nav.WriteActivationScript(wt.Path)
	if err != nil {
		return err
	}
	if script {
		splog.Line(path)
		return nil
	}
	splog.Info("switched to %s (%s)", wt.Path, wt.Branch)
	return nil
}

func newUpCmd() *cobra.Command {
	var script bool
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Move to the child worktree one level up the stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			graph, err := LoadGraph(cmd.Context(), rc)
			if err != nil {
				return err
			}
			branch, err := rc.Vcs.CurrentBranch(cmd.Context(), rc.RepoRoot)
			if err != nil {
				return err
			}
			wt, err := engineFor(rc, graph).Up(cmd.Context(), branch)
			if err != nil {
				return err
			}
			return activate(wt, script)
		},
	}
	cmd.Flags().BoolVar(&script, "script", false, "print the activation script path instead of a human-readable message")
	return cmd
}

func newDownCmd() *cobra.Command {
	var script bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Move to the parent worktree one level down the stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			graph, err := LoadGraph(cmd.Context(), rc)
			if err != nil {
				return err
			}
			branch, err := rc.Vcs.CurrentBranch(cmd.Context(), rc.RepoRoot)
			if err != nil {
				return err
			}
			wt, err := engineFor(rc, graph).Down(cmd.Context(), branch)
			if err != nil {
				return err
			}
			return activate(wt, script)
		},
	}
	cmd.Flags().BoolVar(&script, "script", false, "print the activation script path instead of a human-readable message")
	return cmd
}

func newJumpCmd() *cobra.Command {
	var script bool
	cmd := &cobra.Command{
		Use:   "jump BRANCH",
		Short: "Jump directly to the worktree holding (or whose stack contains) a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			graph, err := LoadGraph(cmd.Context(), rc)
			if err != nil {
				return err
			}
			wt, err := engineFor(rc, graph).Jump(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return activate(wt, script)
		},
	}
	cmd.Flags().BoolVar(&script, "script", false, "print the activation script path instead of a human-readable message")
	return cmd
}

func newSwitchCmd() *cobra.Command {
	var up, down, script bool

	cmd := &cobra.Command{
		Use:   "switch [BRANCH]",
		Short: "Switch worktrees: by branch name, or --up/--down the stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			if up && down {
				return wserrors.New(wserrors.Usage, "--up and --down are mutually exclusive")
			}
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			graph, err := LoadGraph(cmd.Context(), rc)
			if err != nil {
				return err
			}
			engine := engineFor(rc, graph)

			switch {
			case up:
				branch, err := rc.Vcs.CurrentBranch(cmd.Context(), rc.RepoRoot)
				if err != nil {
					return err
				}
				wt, err := engine.Up(cmd.Context(), branch)
				if err != nil {
					return err
				}
				return activate(wt, script)
			case down:
				branch, err := rc.Vcs.CurrentBranch(cmd.Context(), rc.RepoRoot)
				if err != nil {
					return err
				}
				wt, err := engine.Down(cmd.Context(), branch)
				if err != nil {
					return err
				}
				return activate(wt, script)
			case len(args) == 1:
				wt, err := engine.Jump(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return activate(wt, script)
			default:
				return wserrors.New(wserrors.Usage, "switch requires a branch name or --up/--down")
			}
		},
	}
	cmd.Flags().BoolVar(&up, "up", false, "move up the stack")
	cmd.Flags().BoolVar(&down, "down", false, "move down the stack")
	cmd.Flags().BoolVar(&script, "script", false, "print the activation script path instead of a human-readable message")
	return cmd
}
