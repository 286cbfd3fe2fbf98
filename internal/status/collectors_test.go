package status_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/git"
	"workstack.dev/workstack/internal/status"
	"workstack.dev/workstack/internal/wsops"
)

func TestGitStatusCollector_ReportsBranchAndCommits(t *testing.T) {
	dir := t.TempDir()
	vcs := wsops.NewFakeVcsOps()
	vcs.CurrentBranches[dir] = "feature"
	vcs.AheadBehindVals["feature"] = [3]int{2, 1, 1}
	vcs.Logs["feature"] = []git.LogEntry{{ShortSHA: "c1", Message: "first", Author: "a", RelativeDate: "1 day ago"}}
	vcs.FileStatusVals[dir] = wsops.FakeFileStatus{
		Staged:    []string{"staged.go"},
		Modified:  []string{"modified.go"},
		Untracked: []string{"new.go"},
	}

	c := &status.GitStatusCollector{Vcs: vcs, LogCount: 5}
	require.True(t, c.IsAvailable(context.Background(), dir))

	result, err := c.Collect(context.Background(), dir, dir)
	require.NoError(t, err)
	r := result.(status.GitStatusResult)
	assert.Equal(t, "feature", r.Branch)
	assert.Equal(t, 2, r.Ahead)
	assert.Equal(t, 1, r.Behind)
	assert.Len(t, r.Commits, 1)
	assert.Equal(t, []string{"staged.go"}, r.Staged)
	assert.Equal(t, []string{"modified.go"}, r.Modified)
	assert.Equal(t, []string{"new.go"}, r.Untracked)
}

func TestGitStatusCollector_DetachedHeadYieldsNoResult(t *testing.T) {
	dir := t.TempDir()
	vcs := wsops.NewFakeVcsOps()
	vcs.CurrentBranches[dir] = ""

	c := &status.GitStatusCollector{Vcs: vcs}
	result, err := c.Collect(context.Background(), dir, dir)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestPlanCollector_UnavailableWithoutPlanFile(t *testing.T) {
	dir := t.TempDir()
	c := &status.PlanCollector{}
	assert.False(t, c.IsAvailable(context.Background(), dir))
}

func TestPlanCollector_ParsesTitleAndSummarySkippingFrontMatter(t *testing.T) {
	dir := t.TempDir()
	content := "---\nowner: me\n---\n# Ship the thing\nFirst line of detail.\nSecond line of detail.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".PLAN.md"), []byte(content), 0o644))

	c := &status.PlanCollector{}
	require.True(t, c.IsAvailable(context.Background(), dir))

	result, err := c.Collect(context.Background(), dir, dir)
	require.NoError(t, err)
	r := result.(status.PlanResult)
	assert.Equal(t, "Ship the thing", r.Title)
	assert.Contains(t, r.Summary, "First line of detail.")
}

func TestPlanCollector_TruncatesLongSummary(t *testing.T) {
	dir := t.TempDir()
	long := ""
	for i := 0; i < 30; i++ {
		long += "word "
	}
	content := "# Title\n" + long + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".PLAN.md"), []byte(content), 0o644))

	c := &status.PlanCollector{}
	result, err := c.Collect(context.Background(), dir, dir)
	require.NoError(t, err)
	r := result.(status.PlanResult)
	assert.LessOrEqual(t, len(r.Summary), 103)
	assert.Contains(t, r.Summary, "...")
}
