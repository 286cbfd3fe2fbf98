package cli

import (
	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/wsops"
	"workstack.dev/workstack/internal/wserrors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the global config",
	}
	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	return cmd
}

func newConfigListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every global config value",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			gc := rc.GlobalConfig

			splog.Info("path: %s", gc.Path())
			printField := func(name string, value any, err error) {
				if err != nil {
					splog.Info("%s: (not configured)", name)
					return
				}
				splog.Info("%s: %v", name, value)
			}

			root, rootErr := gc.WorkstacksRoot()
			printField("workstacks_root", root, rootErr)
			graphite, graphiteErr := gc.UseGraphite()
			printField("use_graphite", graphite, graphiteErr)
			prInfo, prInfoErr := gc.ShowPRInfo()
			printField("show_pr_info", prInfo, prInfoErr)
			prChecks, prChecksErr := gc.ShowPRChecks()
			printField("show_pr_checks", prChecks, prChecksErr)
			shellDone, shellErr := gc.ShellSetupComplete()
			printField("shell_setup_complete", shellDone, shellErr)
			return nil
		},
	}
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print one global config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}
			gc := rc.GlobalConfig

			switch args[0] {
			case "workstacks_root":
				v, err := gc.WorkstacksRoot()
				return printOrErr(v, err)
			case "use_graphite":
				v, err := gc.UseGraphite()
				return printOrErr(v, err)
			case "show_pr_info":
				v, err := gc.ShowPRInfo()
				return printOrErr(v, err)
			case "show_pr_checks":
				v, err := gc.ShowPRChecks()
				return printOrErr(v, err)
			case "shell_setup_complete":
				v, err := gc.ShellSetupComplete()
				return printOrErr(v, err)
			default:
				return wserrors.New(wserrors.Usage, "unknown config key %q", args[0])
			}
		},
	}
	return cmd
}

func printOrErr[T any](v T, err error) error {
	if err != nil {
		return err
	}
	splog.Info("%v", v)
	return nil
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one global config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			update := wsops.GlobalConfigUpdate{}

			switch key {
			case "workstacks_root":
				update.WorkstacksRoot = &value
			case "use_graphite":
				b, err := parseBool(value)
				if err != nil {
					return err
				}
				update.UseGraphite = &b
			case "show_pr_info":
				b, err := parseBool(value)
				if err != nil {
					return err
				}
				update.ShowPRInfo = &b
			case "show_pr_checks":
				b, err := parseBool(value)
				if err != nil {
					return err
				}
				update.ShowPRChecks = &b
			case "shell_setup_complete":
				b, err := parseBool(value)
				if err != nil {
					return err
				}
				update.ShellSetupComplete = &b
			default:
				return wserrors.New(wserrors.Usage, "unknown config key %q", key)
			}

			return rc.GlobalConfig.Set(update)
		},
	}
	return cmd
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, wserrors.New(wserrors.Usage, "expected a boolean, got %q", s)
	}
}
