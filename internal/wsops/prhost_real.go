package wsops

import (
	"context"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
)

// realPrHostOps implements PrHostOps against the real GitHub API, the same
// way the teacher's internal/github package does: a go-github client
// authenticated with a personal token via golang.org/x/oauth2, rather than
// shelling out to a `gh` subprocess (spec §4.A leaves the transport
// unspecified for PrHostOps).
type realPrHostOps struct {
	client *github.Client
}

// NewRealPrHostOps builds a PrHostOps backed by go-github, authenticated
// with token (the CLI passes the GITHUB_TOKEN environment variable).
func NewRealPrHostOps(ctx context.Context, token string) PrHostOps {
	var client *github.Client
	if token == "" {
		client = github.NewClient(nil)
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(ctx, ts))
	}
	return &realPrHostOps{client: client}
}

func (p *realPrHostOps) GetPRForBranch(ctx context.Context, owner, repo, branch string) (*model.PullRequest, error) {
	prs, _, err := p.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		Head:  owner + ":" + branch,
		State: "all",
	})
	if err != nil {
		return nil, wserrors.Wrap(wserrors.External, err, "failed to list pull requests for %s", branch)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	pr := prs[0]

	checks := model.ChecksUnknown
	if status, _, err := p.client.Repositories.GetCombinedStatus(ctx, owner, repo, pr.GetHead().GetSHA(), nil); err == nil {
		switch status.GetState() {
		case "success":
			checks = model.ChecksPassing
		case "failure", "error":
			checks = model.ChecksFailing
		}
	}

	return &model.PullRequest{
		Number:        pr.GetNumber(),
		State:         prState(pr),
		URL:           pr.GetHTMLURL(),
		IsDraft:       pr.GetDraft(),
		ChecksPassing: checks,
		Owner:         owner,
		Repo:          repo,
	}, nil
}

func prState(pr *github.PullRequest) model.PRState {
	if pr.GetMerged() {
		return model.PRMerged
	}
	switch pr.GetState() {
	case "closed":
		return model.PRClosed
	default:
		return model.PROpen
	}
}
