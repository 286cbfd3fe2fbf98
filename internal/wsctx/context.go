// Package wsctx bundles one instance of every operations interface plus the
// dry_run flag into a single immutable record every core function takes as
// its first parameter (spec §4.H).
package wsctx

import (
	"context"

	"workstack.dev/workstack/internal/wsops"
)

// Context is the immutable bundle described in spec §4.H.
type Context struct {
	Vcs          wsops.VcsOps
	PrHost       wsops.PrHostOps
	StackedDiff  wsops.StackedDiffOps
	GlobalConfig wsops.GlobalConfigOps
	Shell        wsops.ShellOps
	DryRun       bool
}

// Options configures CreateContext's real-implementation wiring.
type Options struct {
	GlobalConfigPath  string
	StackedDiffBinary string
	PrHostToken       string
	DryRun            bool
}

// CreateContext builds real implementations of each interface and, if
// dry_run, wraps each in its dry-run decorator before bundling (spec §4.H
// "create_context(dry_run)"). Dry-run is selected once, here — no component
// above this layer ever branches on the flag itself.
func CreateContext(ctx context.Context, opts Options) Context {
	vcs := wsops.NewRealVcsOps()
	prHost := wsops.NewRealPrHostOps(ctx, opts.PrHostToken)
	stackedDiff := wsops.NewRealStackedDiffOps(opts.StackedDiffBinary)
	globalConfig := wsops.NewRealGlobalConfigOps(opts.GlobalConfigPath)
	shell := wsops.NewRealShellOps()

	if opts.DryRun {
		vcs = wsops.NewDryRunVcsOps(vcs)
		prHost = wsops.NewDryRunPrHostOps(prHost)
		stackedDiff = wsops.NewDryRunStackedDiffOps(stackedDiff)
		globalConfig = wsops.NewDryRunGlobalConfigOps(globalConfig)
		shell = wsops.NewDryRunShellOps(shell)
	}

	return Context{
		Vcs:          vcs,
		PrHost:       prHost,
		StackedDiff:  stackedDiff,
		GlobalConfig: globalConfig,
		Shell:        shell,
		DryRun:       opts.DryRun,
	}
}
