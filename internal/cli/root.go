package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command (spec §6's CLI surface).
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "workstack",
		Short:   "Manage git worktrees, stacked branches, and their pull requests",
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("dry-run", false, "print what would happen without doing it")
	rootCmd.PersistentFlags().String("config", "", "path to the global config file (default: the platform user-config location)")

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newGCCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newDownCmd())
	rootCmd.AddCommand(newSwitchCmd())
	rootCmd.AddCommand(newJumpCmd())
	rootCmd.AddCommand(newRebaseCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGraphiteCmd())

	return rootCmd
}
