package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/display"
	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/nav"
	"workstack.dev/workstack/internal/status"
	"workstack.dev/workstack/internal/wserrors"
)

// worktreeNamesByBranch maps every non-detached worktree's branch to its
// directory name, for annotating tree/list output.
func worktreeNamesByBranch(worktrees []model.WorktreeRef) map[string]string {
	out := make(map[string]string, len(worktrees))
	for _, wt := range worktrees {
		if wt.IsDetached() {
			continue
		}
		out[wt.Branch] = filepath.Base(wt.Path)
	}
	return out
}

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the worktree forest filtered to branches with a live worktree",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			graph, err := LoadGraph(cmd.Context(), rc)
			if err != nil {
				return err
			}
			worktrees, err := rc.Vcs.ListWorktrees(cmd.Context())
			if err != nil {
				return err
			}
			currentBranch, _ := rc.Vcs.CurrentBranch(cmd.Context(), rc.RepoRoot)

			roots := nav.BuildTree(graph, worktreeNamesByBranch(worktrees), currentBranch)
			for _, line := range display.RenderTree(roots) {
				splog.Line(line)
			}
			return nil
		},
	}
	return cmd
}

func newListCmd() *cobra.Command {
	var stacks, showPRInfo bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed worktrees",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			worktrees, err := rc.Vcs.ListWorktrees(cmd.Context())
			if err != nil {
				return err
			}

			if !stacks {
				for _, wt := range worktrees {
					name := filepath.Base(wt.Path)
					if wt.IsRoot(rc.RepoRoot) {
						name += " (root)"
					}
					branch := wt.Branch
					if wt.IsDetached() {
						branch = "(detached)"
					}
					splog.Info("%s\t%s\t%s", name, branch, wt.Path)
				}
				return nil
			}

			graph, err := LoadGraph(cmd.Context(), rc)
			if err != nil {
				return err
			}

			showInfo, _ := rc.GlobalConfig.ShowPRInfo()
			showChecks, _ := rc.GlobalConfig.ShowPRChecks()
			if cmd.Flags().Changed("pr-info") {
				showInfo = showPRInfo
			}

			prs := map[string]*model.PullRequest{}
			wtByBranch := worktreeNamesByBranch(worktrees)

			for _, wt := range worktrees {
				if wt.IsDetached() {
					continue
				}
				isRoot := wt.IsRoot(rc.RepoRoot)
				ancestors := graph.AncestorsOf(wt.Branch)

				var liveDescendants []string
				for _, d := range graph.DescendantsOf(wt.Branch) {
					if _, ok := wtByBranch[d]; ok {
						liveDescendants = append(liveDescendants, d)
					}
				}

				branches := display.BuildStackSlice(isRoot, ancestors, wt.Branch, liveDescendants)

				if showInfo {
					for _, b := range branches {
						if _, ok := prs[b]; ok {
							continue
						}
						pr, _ := rc.PrHost.GetPRForBranch(cmd.Context(), rc.Owner, rc.Repo, b)
						prs[b] = pr
					}
				}

				name := filepath.Base(wt.Path)
				splog.Line(display.RenderStackSliceHeader(name, isRoot))
				for _, line := range display.Indent(display.RenderStackSlice(branches, wt.Branch, prs, showInfo, showChecks), 1) {
					splog.Line(line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&stacks, "stacks", "s", false, "render each worktree's stack slice instead of a flat list")
	cmd.Flags().BoolVar(&showPRInfo, "pr-info", false, "show PR badges (overrides the global config default)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var showPRInfo bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show aggregated status for the current worktree",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}

			useGraphite, _ := rc.GlobalConfig.UseGraphite()
			var graph *model.BranchGraph
			if useGraphite {
				graph, _ = LoadGraph(cmd.Context(), rc)
			}

			showInfo, _ := rc.GlobalConfig.ShowPRInfo()
			if cmd.Flags().Changed("pr-info") {
				showInfo = showPRInfo
			}

			orch := status.NewOrchestrator(
				&status.GitStatusCollector{Vcs: rc.Vcs, LogCount: 5},
				&status.PRCollector{Vcs: rc.Vcs, StackedDiff: rc.StackedDiff, PrHost: rc.PrHost, ShowPRInfo: showInfo, Owner: rc.Owner, Repo: rc.Repo},
				&status.StackPositionCollector{Vcs: rc.Vcs, Graph: graph, UseGraphite: useGraphite},
				&status.PlanCollector{},
			)

			cwd, err := os.Getwd()
			if err != nil {
				return wserrors.Wrap(wserrors.External, err, "failed to resolve working directory")
			}
			worktrees, err := rc.Vcs.ListWorktrees(cmd.Context())
			if err != nil {
				return err
			}

			info := status.WorktreeInfo{
				Path:   cwd,
				Name:   filepath.Base(cwd),
				IsRoot: cwd == rc.RepoRoot,
			}

			result := orch.Run(cmd.Context(), cwd, rc.RepoRoot, info, worktrees)
			for _, line := range display.RenderStatus(result) {
				splog.Line(line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPRInfo, "pr-info", false, "show PR badges (overrides the global config default)")
	return cmd
}
