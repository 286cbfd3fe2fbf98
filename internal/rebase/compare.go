package rebase

import (
	"context"
	"fmt"
)

// CompareLine is one line of a `rebase compare` diff summary.
type CompareLine struct {
	SHA     string
	Message string
	OnlyIn  string // "live" or "scratch"
}

// Compare implements `rebase compare` (spec §4.G "compare"): a diff summary
// between the live source branch and the scratch's rebased tip, expressed
// as the commits each side has that the other doesn't.
func (o *Orchestrator) Compare(ctx context.Context, liveWorktreePath, scratchPath, sourceBranch string) ([]CompareLine, error) {
	liveCommits, err := o.Vcs.Log(ctx, liveWorktreePath, sourceBranch, 0)
	if err != nil {
		return nil, err
	}
	// The scratch worktree checks out a detached copy of sourceBranch
	// (stack.go's Preview), so sourceBranch as a ref name still resolves to
	// the live branch tip no matter which worktree directory runs the log -
	// HEAD is what actually points at the scratch's rebased commits.
	scratchCommits, err := o.Vcs.Log(ctx, scratchPath, "HEAD", 0)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, c := range scratchCommits {
		seen[c.ShortSHA] = true
	}

	var lines []CompareLine
	for _, c := range liveCommits {
		if !seen[c.ShortSHA] {
			lines = append(lines, CompareLine{SHA: c.ShortSHA, Message: c.Message, OnlyIn: "live"})
		}
	}

	seenLive := map[string]bool{}
	for _, c := range liveCommits {
		seenLive[c.ShortSHA] = true
	}
	for _, c := range scratchCommits {
		if !seenLive[c.ShortSHA] {
			lines = append(lines, CompareLine{SHA: c.ShortSHA, Message: c.Message, OnlyIn: "scratch"})
		}
	}

	return lines, nil
}

// FormatCompareLine renders one CompareLine as a human-readable summary row.
func FormatCompareLine(l CompareLine) string {
	return fmt.Sprintf("%s %s (%s only)", l.SHA, l.Message, l.OnlyIn)
}
