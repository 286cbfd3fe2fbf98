package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/wserrors"
	"workstack.dev/workstack/internal/worktree"
)

func managerFor(rc *RuntimeContext) *worktree.Manager {
	return &worktree.Manager{
		Vcs:          rc.Vcs,
		StackedDiff:  rc.StackedDiff,
		GlobalConfig: rc.GlobalConfig,
		PrHost:       rc.PrHost,
		RepoRoot:     rc.RepoRoot,
		RepoName:     rc.RepoName,
	}
}

func confirmPrompt(prompt string) func() bool {
	return func() bool {
		splog.Prompt("%s [y/N] ", prompt)
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		line = strings.ToLower(strings.TrimSpace(line))
		return line == "y" || line == "yes"
	}
}

func newCreateCmd() *cobra.Command {
	var (
		branch            string
		plan              string
		keepPlan          bool
		fromCurrentBranch bool
		fromBranch        string
		noPost            bool
	)

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new worktree",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			wt, err := managerFor(rc).Create(cmd.Context(), worktree.CreateOptions{
				Name:              name,
				Branch:            branch,
				PlanPath:          plan,
				KeepPlan:          keepPlan,
				FromCurrentBranch: fromCurrentBranch,
				FromBranch:        fromBranch,
				NoPost:            noPost,
			})
			if err != nil {
				return err
			}
			splog.Info("created worktree %s (branch %s)", wt.Path, wt.Branch)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch name override")
	cmd.Flags().StringVar(&plan, "plan", "", "path to a local plan markdown document")
	cmd.Flags().BoolVar(&keepPlan, "keep-plan", false, "copy the plan file instead of moving it")
	cmd.Flags().BoolVar(&fromCurrentBranch, "from-current-branch", false, "branch from the currently checked-out branch")
	cmd.Flags().StringVar(&fromBranch, "from-branch", "", "branch from an existing branch")
	cmd.Flags().BoolVar(&noPost, "no-post", false, "skip post_create commands")

	return cmd
}

func newRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename OLD_NAME NEW_NAME",
		Short: "Rename a worktree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			return managerFor(rc).Rename(cmd.Context(), args[0], args[1])
		},
	}
	return cmd
}

func newRmCmd() *cobra.Command {
	var force, deleteStack bool

	cmd := &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Remove a worktree",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			var confirm func() bool
			if !force {
				confirm = confirmPrompt(fmt.Sprintf("remove worktree %q?", args[0]))
			}
			return managerFor(rc).Remove(cmd.Context(), args[0], force, deleteStack, confirm)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	cmd.Flags().BoolVarP(&deleteStack, "delete-stack", "s", false, "also delete the branch and known child-stack branches")
	return cmd
}

func newMoveCmd() *cobra.Command {
	var (
		current      bool
		sourceBranch string
		sourceWT     string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "move TARGET",
		Short: "Move or swap a worktree's branch onto another location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}

			selected := 0
			for _, set := range []bool{current, sourceBranch != "", sourceWT != ""} {
				if set {
					selected++
				}
			}
			if selected > 1 {
				return wserrors.New(wserrors.Usage, "--current, --branch, and --worktree are mutually exclusive")
			}

			var sourcePath string
			switch {
			case sourceWT != "":
				sourcePath = rc.WorktreePath(sourceWT)
			case sourceBranch != "":
				sourcePath, err = liveWorktreePathForBranch(rc, cmd, sourceBranch)
				if err != nil {
					return err
				}
			default:
				sourcePath, err = os.Getwd()
				if err != nil {
					return wserrors.Wrap(wserrors.External, err, "failed to resolve working directory")
				}
			}

			target := worktree.MoveTarget{WorktreeName: args[0]}
			if args[0] == "root" {
				target = worktree.MoveTarget{IsRoot: true}
			}

			var confirm func() bool
			if !force {
				confirm = confirmPrompt("this will swap branches between worktrees, continue?")
			}
			return managerFor(rc).MoveOrSwap(cmd.Context(), sourcePath, target, force, confirm)
		},
	}
	cmd.Flags().BoolVar(&current, "current", false, "move the current worktree (default)")
	cmd.Flags().StringVar(&sourceBranch, "branch", "", "move the worktree holding this branch")
	cmd.Flags().StringVar(&sourceWT, "worktree", "", "move this worktree by name")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}

func newGCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "List worktrees whose PR is merged or closed",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			candidates, err := managerFor(rc).GC(cmd.Context(), rc.Owner, rc.Repo)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				splog.Info("nothing to clean up")
				return nil
			}
			for _, c := range candidates {
				splog.Info("%s (%s, PR #%d %s): %s", c.Name, c.Branch, c.PR.Number, c.PR.State, c.RemoveCommand)
			}
			return nil
		},
	}
	return cmd
}

func newSyncCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the stacked-diff tool's view of the branch graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			return rc.StackedDiff.Sync(cmd.Context(), rc.RepoRoot, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "force sync even over a dirty state")
	return cmd
}
