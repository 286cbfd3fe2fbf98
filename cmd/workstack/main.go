package main

import (
	"errors"
	"os"

	"workstack.dev/workstack/internal/cli"
	"workstack.dev/workstack/internal/wserrors"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		var wsErr *wserrors.Error
		if errors.As(err, &wsErr) && wsErr.Category == wserrors.External && wsErr.ExitCode != 0 {
			os.Exit(wsErr.ExitCode)
		}
		os.Exit(1)
	}
}
