package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/wserrors"
)

// branchEntry is one row of `graphite branches --format json`.
type branchEntry struct {
	Name     string   `json:"name"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children"`
	Trunk    bool     `json:"trunk"`
}

func newGraphiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphite",
		Short: "Passthroughs to the stacked-diff tool's branch graph and sync",
	}
	cmd.AddCommand(newGraphiteBranchesCmd())
	cmd.AddCommand(newGraphiteSyncCmd())
	return cmd
}

func newGraphiteBranchesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Print the cached branch graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			graph, err := LoadGraph(cmd.Context(), rc)
			if err != nil {
				return err
			}

			var entries []branchEntry
			for _, name := range graph.Branches() {
				parent, _ := graph.Parent(name)
				entries = append(entries, branchEntry{
					Name:     name,
					Parent:   parent,
					Children: graph.Children(name),
					Trunk:    graph.IsTrunk(name),
				})
			}

			switch format {
			case "", "text":
				for _, e := range entries {
					marker := ""
					if e.Trunk {
						marker = " (trunk)"
					}
					splog.Info("%s%s parent=%s children=%v", e.Name, marker, e.Parent, e.Children)
				}
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			default:
				return wserrors.New(wserrors.Usage, "--format must be \"text\" or \"json\"")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "text or json")
	return cmd
}

func newGraphiteSyncCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the stacked-diff tool's sync operation",
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
