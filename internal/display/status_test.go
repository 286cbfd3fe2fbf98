package display_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"workstack.dev/workstack/internal/display"
	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/status"
)

func TestRenderStatus_GitSectionWithCommits(t *testing.T) {
	s := status.WorktreeStatus{
		Worktree: status.WorktreeInfo{Name: "feature-wt"},
		Git: &status.GitStatusResult{
			Branch: "feature", Ahead: 1, Behind: 0,
			Modified: []string{"a.go"},
			Commits:  []status.CommitLine{{ShortSHA: "abc", Message: "fix", Author: "me", RelativeDate: "2h"}},
		},
	}
	lines := display.RenderStatus(s)
	assert.Equal(t, "feature-wt", lines[0])
	assert.Contains(t, lines[1], "feature (+1/-0)")
	assert.Contains(t, lines[2], "modified: 1 file(s)")
	assert.Contains(t, lines[3], "abc fix (me, 2h)")
}

func TestRenderStatus_RootSuffixAndNoGitResult(t *testing.T) {
	s := status.WorktreeStatus{
		Worktree: status.WorktreeInfo{Name: "main-wt", IsRoot: true},
	}
	lines := display.RenderStatus(s)
	assert.Equal(t, "main-wt (root)", lines[0])
	assert.Equal(t, "  branch: (no result)", lines[1])
}

func TestRenderStatus_PRAndPlanSections(t *testing.T) {
	s := status.WorktreeStatus{
		Worktree:     status.WorktreeInfo{Name: "wt"},
		PR:           &model.PullRequest{Number: 9, State: model.PROpen},
		ReadyToMerge: true,
		Plan:         &status.PlanResult{Title: "Ship it", Summary: "details"},
	}
	lines := display.RenderStatus(s)
	joined := lines[2]
	assert.Contains(t, joined, "#9")
	assert.Contains(t, joined, "ready to merge")
	assert.Contains(t, lines[3], "Ship it — details")
}
