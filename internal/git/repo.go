package git

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// RepoRoot returns the root directory of the git repository containing dir,
// using go-git's worktree discovery (mirrors the teacher's own go-git-based
// root detection) rather than shelling out to `git rev-parse`.
func RepoRoot(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to resolve worktree root: %w", err)
	}
	return wt.Filesystem.Root(), nil
}
