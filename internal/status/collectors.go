package status

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wsops"
)

// GitStatusCollector reports the current branch, staged/modified/untracked
// files, ahead/behind counts, and recent commits (spec §4.F, collector 1).
type GitStatusCollector struct {
	Vcs      wsops.VcsOps
	LogCount int
}

func (c *GitStatusCollector) Name() string { return "git_status" }

func (c *GitStatusCollector) IsAvailable(ctx context.Context, worktreePath string) bool {
	_, err := os.Stat(worktreePath)
	return err == nil
}

func (c *GitStatusCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	branch, err := c.Vcs.CurrentBranch(ctx, worktreePath)
	if err != nil || branch == "" {
		return nil, err
	}

	n := c.LogCount
	if n <= 0 {
		n = 5
	}

	ahead, behind, _, err := c.Vcs.AheadBehind(ctx, worktreePath, branch)
	if err != nil {
		ahead, behind = 0, 0
	}

	staged, modified, untracked, _ := c.Vcs.FileStatuses(ctx, worktreePath)

	entries, _ := c.Vcs.Log(ctx, worktreePath, branch, n)
	commits := make([]CommitLine, 0, len(entries))
	for _, e := range entries {
		commits = append(commits, CommitLine{
			ShortSHA:     e.ShortSHA,
			Message:      e.Message,
			Author:       e.Author,
			RelativeDate: e.RelativeDate,
		})
	}

	return GitStatusResult{
		Branch:    branch,
		Staged:    staged,
		Modified:  modified,
		Untracked: untracked,
		Ahead:     ahead,
		Behind:    behind,
		Commits:   commits,
	}, nil
}

// PRCollector reports PR state for the current branch, preferring the
// stacked-diff tool's local cache over a network call (spec §4.F,
// collector 2).
type PRCollector struct {
	Vcs         wsops.VcsOps
	StackedDiff wsops.StackedDiffOps
	PrHost      wsops.PrHostOps
	ShowPRInfo  bool
	Owner, Repo string
}

func (c *PRCollector) Name() string { return "pr" }

func (c *PRCollector) IsAvailable(ctx context.Context, worktreePath string) bool {
	if !c.ShowPRInfo {
		return false
	}
	_, err := os.Stat(worktreePath)
	return err == nil
}

func (c *PRCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	branch, err := c.Vcs.CurrentBranch(ctx, worktreePath)
	if err != nil || branch == "" {
		return nil, err
	}

	if c.StackedDiff != nil {
		if cached, _ := c.StackedDiff.CachedPRInfo(ctx, repoRoot, branch); cached != nil {
			return model.PullRequest{
				Number: cached.Number,
				State:  model.PROpen,
				URL:    cached.URL,
				Owner:  c.Owner,
				Repo:   c.Repo,
			}, nil
		}
	}

	pr, err := c.PrHost.GetPRForBranch(ctx, c.Owner, c.Repo, branch)
	if err != nil || pr == nil {
		return nil, err
	}
	return *pr, nil
}

// StackPositionCollector reports (parent, children, is_trunk) for the
// current branch from the cached branch graph (spec §4.F, collector 3).
type StackPositionCollector struct {
	Vcs         wsops.VcsOps
	Graph       *model.BranchGraph
	UseGraphite bool
}

func (c *StackPositionCollector) Name() string { return "stack_position" }

func (c *StackPositionCollector) IsAvailable(ctx context.Context, worktreePath string) bool {
	return c.UseGraphite && c.Graph != nil
}

func (c *StackPositionCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	branch, err := c.Vcs.CurrentBranch(ctx, worktreePath)
	if err != nil || branch == "" {
		return nil, err
	}
	parent, _ := c.Graph.Parent(branch)
	return StackPositionResult{
		Parent:   parent,
		Children: c.Graph.Children(branch),
		IsTrunk:  c.Graph.IsTrunk(branch),
	}, nil
}

// PlanCollector reads `<worktree>/.PLAN.md` when present (spec §4.F,
// collector 4).
type PlanCollector struct{}

const planFileName = ".PLAN.md"
const planSummaryMaxLen = 100

func (c *PlanCollector) Name() string { return "plan" }

func (c *PlanCollector) IsAvailable(ctx context.Context, worktreePath string) bool {
	_, err := os.Stat(filepath.Join(worktreePath, planFileName))
	return err == nil
}

func (c *PlanCollector) Collect(ctx context.Context, worktreePath, repoRoot string) (any, error) {
	f, err := os.Open(filepath.Join(worktreePath, planFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var title string
	var summaryLines []string
	inFrontMatter := false

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() && lineNo < 5 {
		line := scanner.Text()
		lineNo++

		if lineNo == 1 && strings.TrimSpace(line) == "---" {
			inFrontMatter = true
			continue
		}
		if inFrontMatter {
			if strings.TrimSpace(line) == "---" {
				inFrontMatter = false
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if title == "" && strings.HasPrefix(trimmed, "#") {
			title = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			continue
		}
		summaryLines = append(summaryLines, trimmed)
	}

	summary := strings.Join(summaryLines, " ")
	if len(summary) > planSummaryMaxLen {
		summary = summary[:planSummaryMaxLen] + "..."
	}

	return PlanResult{Title: title, Summary: summary}, nil
}
