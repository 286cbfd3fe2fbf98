package wsops

import "context"

// ExtendedPRInfo is whatever extra PR metadata the stacked-diff tool caches
// locally (e.g. Graphite-style PR comment bodies), read-only.
type ExtendedPRInfo struct {
	Number int
	Title  string
	URL    string
}

// StackedDiffOps abstracts the external stacked-diff CLI (spec §4.A): it
// constructs PR URLs, drives a "sync" operation, and exposes whatever PR
// info it has already cached so other collectors can avoid a slow network
// round trip.
type StackedDiffOps interface {
	// PRURL constructs the canonical PR URL of the stacked-diff host.
	PRURL(owner, repo string, number int) string

	// Sync runs the stacked-diff tool's sync operation at repoRoot.
	Sync(ctx context.Context, repoRoot string, force bool) error

	// CachedPRInfo returns whatever the stacked-diff tool has already
	// cached locally for branch, or (nil, nil) if nothing is cached.
	CachedPRInfo(ctx context.Context, repoRoot, branch string) (*ExtendedPRInfo, error)

	// DeleteBranch asks the stacked-diff tool to delete branch and any
	// child-stack branches it knows about.
	DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error
}
