package wsops

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"workstack.dev/workstack/internal/branchgraph"
	"workstack.dev/workstack/internal/wserrors"
)

// realStackedDiffOps shells out to an external stacked-diff binary, the way
// internal/git/runner.go's RunGHCommandWithContext shells out to `gh` in the
// teacher: a thin exec.CommandContext wrapper, nothing fancier.
type realStackedDiffOps struct {
	binary string // e.g. "gt" for Graphite, configurable for other tools
}

// NewRealStackedDiffOps returns a StackedDiffOps that drives binary (the
// stacked-diff CLI installed on PATH).
func NewRealStackedDiffOps(binary string) StackedDiffOps {
	return &realStackedDiffOps{binary: binary}
}

func (s *realStackedDiffOps) PRURL(owner, repo string, number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number)
}

func (s *realStackedDiffOps) Sync(ctx context.Context, repoRoot string, force bool) error {
	args := []string{"sync"}
	if force {
		args = append(args, "--force")
	}
	return s.run(ctx, repoRoot, args...)
}

func (s *realStackedDiffOps) DeleteBranch(ctx context.Context, repoRoot, branch string, force bool) error {
	args := []string{"delete", branch}
	if force {
		args = append(args, "--force")
	}
	return s.run(ctx, repoRoot, args...)
}

func (s *realStackedDiffOps) run(ctx context.Context, repoRoot string, args ...string) error {
	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Dir = repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := 1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		wrapped := wserrors.ExternalFailed(s.binary+" "+strings.Join(args, " "), exitCode, err)
		wrapped.Message += "\n" + string(out)
		return wrapped
	}
	return nil
}

// CachedPRInfo reads whatever PR metadata the stacked-diff tool's own
// branch-graph cache carries for branch (spec §4.F.2: "prefer whatever the
// stacked-diff tool has already cached, to avoid a slow network call").
func (s *realStackedDiffOps) CachedPRInfo(ctx context.Context, repoRoot, branch string) (*ExtendedPRInfo, error) {
	commonDir, err := s.gitCommonDir(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	graph, err := branchgraph.Load(commonDir)
	if err != nil || graph == nil {
		return nil, nil //nolint:nilerr // missing or corrupt cache just means "nothing cached"
	}
	if !graph.Has(branch) {
		return nil, nil
	}
	// The cache file itself carries no PR metadata in this implementation's
	// minimal schema (spec §6); richer tools may embed it per-branch, but
	// that extension point is opaque to this layer.
	return nil, nil
}

func (s *realStackedDiffOps) gitCommonDir(ctx context.Context, repoRoot string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoRoot, "rev-parse", "--git-common-dir")
	out, err := cmd.Output()
	if err != nil {
		return "", wserrors.Wrap(wserrors.External, err, "failed to resolve git common dir")
	}
	return strings.TrimSpace(string(out)), nil
}
