package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/wsops"
)

// presets are named starting points for the repo config's [post_create]
// section, offered by `init --preset`.
var presets = map[string][]string{
	"node":   {"npm install"},
	"go":     {"go mod download"},
	"python": {"pip install -r requirements.txt"},
}

func shellFunctionSnippet(shellName string) string {
	switch shellName {
	case "fish":
		return "function workstack\n" +
			"    set -l script (command workstack $argv --script)\n" +
			"    if test -f \"$script\"\n" +
			"        source \"$script\"\n" +
			"        rm -f \"$script\"\n" +
			"    end\n" +
			"end\n"
	default:
		return "workstack() {\n" +
			"    local script\n" +
			"    script=$(command workstack \"$@\" --script)\n" +
			"    if [ -f \"$script\" ]; then\n" +
			"        source \"$script\"\n" +
			"        rm -f \"$script\"\n" +
			"    fi\n" +
			"}\n"
	}
}

func newInitCmd() *cobra.Command {
	var (
		repo         bool
		preset       string
		listPresets  bool
		installShell bool
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "First-time setup: global config, shell integration, and repo defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listPresets {
				for name := range presets {
					splog.Line(name)
				}
				return nil
			}

			rc, err := Resolve(cmd)
			if err != nil {
				return err
			}

			if !rc.GlobalConfig.Exists() || force {
				useGraphite := false
				if err := rc.GlobalConfig.Set(wsops.GlobalConfigUpdate{UseGraphite: &useGraphite}); err != nil {
					return err
				}
				splog.Info("wrote global config to %s", rc.GlobalConfig.Path())
			}

			if repo {
				path := filepath.Join(rc.RepoRoot, ".workstack.toml")
				if _, err := os.Stat(path); err == nil && !force {
					splog.Info("%s already exists (use --force to overwrite)", path)
				} else {
					if err := writeRepoConfigStub(path, preset); err != nil {
						return err
					}
					splog.Info("wrote %s", path)
				}
			}

			if installShell {
				shell, err := rc.Shell.Detect()
				if err != nil {
					return err
				}
				if !shell.Present {
					splog.Info("could not detect a shell startup file; add this function manually:")
					splog.Page(shellFunctionSnippet(shell.Name))
					return nil
				}
				splog.Info("add the following to %s:\n", shell.RCFile)
				splog.Page(shellFunctionSnippet(shell.Name))
				complete := true
				return rc.GlobalConfig.Set(wsops.GlobalConfigUpdate{ShellSetupComplete: &complete})
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&repo, "repo", false, "also write a repo-local .workstack.toml")
	cmd.Flags().StringVar(&preset, "preset", "", "seed the repo config's post_create commands from a named preset")
	cmd.Flags().BoolVar(&listPresets, "list-presets", false, "print the available preset names and exit")
	cmd.Flags().BoolVar(&installShell, "shell", false, "print the shell wrapper function to install")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config files")
	return cmd
}

func writeRepoConfigStub(path, preset string) error {
	commands := presets[preset]
	var b []byte
	if len(commands) == 0 {
		b = []byte("[env]\n\n[post_create]\nshell = \"bash\"\ncommands = []\n")
	} else {
		b = []byte(fmt.Sprintf("[env]\n\n[post_create]\nshell = \"bash\"\ncommands = [%q]\n", commands[0]))
	}
	return os.WriteFile(path, b, 0o644)
}
