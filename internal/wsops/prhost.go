package wsops

import (
	"context"

	"workstack.dev/workstack/internal/model"
)

// PrHostOps abstracts the code-hosting PR service (spec §4.A). The real
// implementation talks to the GitHub REST API via go-github; tests use an
// in-memory fake.
type PrHostOps interface {
	// GetPRForBranch returns the pull request associated with branch, or
	// (nil, nil) if none exists.
	GetPRForBranch(ctx context.Context, owner, repo, branch string) (*model.PullRequest, error)
}
