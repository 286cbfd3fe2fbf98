package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"workstack.dev/workstack/internal/model"
)

// GCCandidate is a managed worktree whose branch's PR is merged or closed,
// offered for manual removal (spec §4.D "Garbage-collect" never deletes
// automatically).
type GCCandidate struct {
	Name          string
	Path          string
	Branch        string
	PR            *model.PullRequest
	RemoveCommand string
}

// GC enumerates managed worktrees under workstacks_root/repo_name/ (root and
// detached worktrees excluded) and reports those whose PR is merged or
// closed.
func (m *Manager) GC(ctx context.Context, owner, repo string) ([]GCCandidate, error) {
	worktrees, err := m.Vcs.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}

	managedRoot := filepath.Join(m.basePath(), m.RepoName)

	var candidates []GCCandidate
	for _, wt := range worktrees {
		if wt.IsRoot(m.RepoRoot) || wt.IsDetached() {
			continue
		}
		if !strings.HasPrefix(wt.Path, managedRoot+string(filepath.Separator)) {
			continue
		}
		if _, err := os.Stat(wt.Path); err != nil {
			continue
		}

		pr, err := m.PrHost.GetPRForBranch(ctx, owner, repo, wt.Branch)
		if err != nil || pr == nil {
			continue
		}
		if pr.State != model.PRMerged && pr.State != model.PRClosed {
			continue
		}

		name := filepath.Base(wt.Path)
		candidates = append(candidates, GCCandidate{
			Name:          name,
			Path:          wt.Path,
			Branch:        wt.Branch,
			PR:            pr,
			RemoveCommand: fmt.Sprintf("workstack rm %s -s", name),
		})
	}
	return candidates, nil
}
