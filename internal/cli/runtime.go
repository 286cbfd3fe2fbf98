// Package cli wires the cobra command surface to the core packages (spec
// §6's External Interfaces).
package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"workstack.dev/workstack/internal/branchgraph"
	"workstack.dev/workstack/internal/git"
	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/output"
	"workstack.dev/workstack/internal/wsctx"
	"workstack.dev/workstack/internal/wserrors"
)

// splog is the shared terminal writer every subcommand uses instead of
// calling fmt.Print* directly.
var splog = output.NewSplog()

// RuntimeContext bundles everything a command needs beyond the raw
// wsctx.Context: the resolved repo root, its name, and the owner/repo pair
// used for PR-host calls.
type RuntimeContext struct {
	wsctx.Context
	RepoRoot string
	RepoName string
	Owner    string
	Repo     string
}

// Resolve builds a RuntimeContext for the current working directory,
// reading the global --dry-run and --config flags from cmd and the PR host
// token from the GITHUB_TOKEN environment variable.
func Resolve(cmd *cobra.Command) (*RuntimeContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, wserrors.Wrap(wserrors.External, err, "failed to resolve working directory")
	}
	repoRoot, err := git.RepoRoot(cwd)
	if err != nil {
		return nil, wserrors.Wrap(wserrors.Usage, err, "not inside a git repository")
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	configPath, err := configPathFlag(cmd)
	if err != nil {
		return nil, err
	}

	wctx := wsctx.CreateContext(cmd.Context(), wsctx.Options{
		GlobalConfigPath:  configPath,
		StackedDiffBinary: "gt",
		PrHostToken:       os.Getenv("GITHUB_TOKEN"),
		DryRun:            dryRun,
	})

	owner, repo := ownerRepoFromRemote(repoRoot)

	return &RuntimeContext{
		Context:  wctx,
		RepoRoot: repoRoot,
		RepoName: filepath.Base(repoRoot),
		Owner:    owner,
		Repo:     repo,
	}, nil
}

func configPathFlag(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return defaultGlobalConfigPath()
}

// WorktreePath resolves the filesystem path of the managed worktree named
// name, honoring workstacks_root the same way worktree.Manager does (spec
// invariant 2), so command handlers that need a worktree's path before
// calling into the manager stay consistent with it.
func (rc *RuntimeContext) WorktreePath(name string) string {
	root := rc.RepoRoot
	if configured, err := rc.GlobalConfig.WorkstacksRoot(); err == nil && configured != "" {
		root = configured
	}
	return filepath.Join(root, rc.RepoName, name)
}

// LoadGraph loads the cached branch graph for repoRoot, converting a
// missing cache into a precondition failure with remediation guidance.
func LoadGraph(ctx context.Context, rc *RuntimeContext) (*model.BranchGraph, error) {
	commonDir, err := rc.Vcs.CommonDir(ctx, rc.RepoRoot)
	if err != nil {
		return nil, err
	}
	return branchgraph.RequireLoad(commonDir)
}

// ownerRepoFromRemote is a best-effort parse of .git/config: it returns the
// owner and repo of the first remote `url =` line that parses as a GitHub
// URL, whichever remote that is, or two empty strings.
func ownerRepoFromRemote(repoRoot string) (string, string) {
	data, err := os.ReadFile(filepath.Join(repoRoot, ".git", "config"))
	if err != nil {
		return "", ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "url =") {
			continue
		}
		url := strings.TrimSpace(strings.TrimPrefix(line, "url ="))
		if owner, repo, ok := parseGitHubURL(url); ok {
			return owner, repo
		}
	}
	return "", ""
}

func parseGitHubURL(url string) (owner, repo string, ok bool) {
	url = strings.TrimSuffix(url, ".git")
	switch {
	case strings.HasPrefix(url, "git@github.com:"):
		url = strings.TrimPrefix(url, "git@github.com:")
	case strings.Contains(url, "github.com/"):
		idx := strings.Index(url, "github.com/")
		url = url[idx+len("github.com/"):]
	default:
		return "", "", false
	}
	parts := strings.SplitN(url, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
