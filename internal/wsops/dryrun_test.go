package wsops

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/model"
)

// captureLines is a dryRunPrinter that records formatted messages instead of
// printing them, for assertions.
func captureLines(into *[]string) dryRunPrinter {
	return func(format string, args ...any) {
		*into = append(*into, fmt.Sprintf(format, args...))
	}
}

func TestDryRunVcsOps_SuppressesMutationAndReportsIt(t *testing.T) {
	fake := NewFakeVcsOps()
	fake.Worktrees["repo"] = []model.WorktreeRef{{Path: "/wt/foo", Branch: "foo"}}

	var lines []string
	d := &dryRunVcsOps{inner: fake, print: captureLines(&lines)}

	err := d.RemoveWorktree(context.Background(), "/wt/foo", true)
	require.NoError(t, err)
	require.Empty(t, fake.RemovedPaths, "dry-run must not call through to the real removal")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "Would remove worktree /wt/foo")

	err = d.DeleteBranch(context.Background(), "/repo", "foo", true)
	require.NoError(t, err)
	require.Empty(t, fake.DeletedBranches)
}

func TestDryRunVcsOps_ReadsPassThrough(t *testing.T) {
	fake := NewFakeVcsOps()
	fake.DefaultBranches["/repo"] = "main"
	d := NewDryRunVcsOps(fake)

	b, err := d.DefaultBranch(context.Background(), "/repo")
	require.NoError(t, err)
	require.Equal(t, "main", b)
}

func TestDryRunGlobalConfigOps_SuppressesSet(t *testing.T) {
	fake := NewFakeGlobalConfigOps(model.GlobalConfig{WorkstacksRoot: "/ws"})
	var lines []string
	d := &dryRunGlobalConfigOps{inner: fake, print: captureLines(&lines)}

	newRoot := "/elsewhere"
	err := d.Set(GlobalConfigUpdate{WorkstacksRoot: &newRoot})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	got, err := d.WorkstacksRoot()
	require.NoError(t, err)
	require.Equal(t, "/ws", got, "fake's underlying state must be unchanged by a dry-run Set")
}

func TestDryRunStackedDiffOps_SuppressesSyncAndDeleteBranch(t *testing.T) {
	fake := NewFakeStackedDiffOps()
	var lines []string
	d := &dryRunStackedDiffOps{inner: fake, print: captureLines(&lines)}

	require.NoError(t, d.Sync(context.Background(), "/repo", true))
	require.NoError(t, d.DeleteBranch(context.Background(), "/repo", "foo", true))
	require.Equal(t, 0, fake.SyncCalls)
	require.Empty(t, fake.DeletedBranch)
	require.Len(t, lines, 2)
}
