package display

import (
	"fmt"
	"strings"

	"workstack.dev/workstack/internal/model"
)

// StackSliceEntry is one rendered line of a `list --stacks` stack slice.
type StackSliceEntry struct {
	Branch    string
	IsCurrent bool
	PR        *model.PullRequest
}

// BuildStackSlice assembles the ordered branch list for one worktree's
// stack slice (spec §4.E "list --stacks"). ancestors is nearest-first
// (model.BranchGraph.AncestorsOf order); descendantsWithWorktree is the
// subset of descendants that have their own live worktree.
func BuildStackSlice(isRoot bool, ancestors []string, currentBranch string, descendantsWithWorktree []string) []string {
	var out []string
	for i := len(ancestors) - 1; i >= 0; i-- {
		out = append(out, ancestors[i])
	}
	out = append(out, currentBranch)
	if !isRoot {
		out = append(out, descendantsWithWorktree...)
	}
	return out
}

// RenderStackSlice renders branches as a single indented line per branch,
// highlighting the current one with a filled circle (others hollow), and
// appending a PR badge when prs carries an entry and showPRInfo is true.
func RenderStackSlice(branches []string, currentBranch string, prs map[string]*model.PullRequest, showPRInfo, showChecks bool) []string {
	var lines []string
	for _, b := range branches {
		glyph := "○"
		if b == currentBranch {
			glyph = "●"
		}
		line := fmt.Sprintf("%s %s", glyph, b)
		if showPRInfo {
			if pr, ok := prs[b]; ok && pr != nil {
				line += " " + renderPRBadge(pr, showChecks)
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func renderPRBadge(pr *model.PullRequest, showChecks bool) string {
	emoji := prStateEmoji(pr.State)
	badge := fmt.Sprintf("%s #%d", emoji, pr.Number)
	if pr.IsDraft {
		badge += " (draft)"
	}
	if showChecks {
		switch pr.ChecksPassing {
		case model.ChecksPassing:
			badge += " ✓"
		case model.ChecksFailing:
			badge += " ✗"
		}
	}
	return badge
}

func prStateEmoji(s model.PRState) string {
	switch s {
	case model.PRMerged:
		return "🟣"
	case model.PRClosed:
		return "🔴"
	default:
		return "🟢"
	}
}

// RenderStackSliceHeader renders the worktree-name header line preceding a
// stack slice in `list --stacks` output.
func RenderStackSliceHeader(worktreeName string, isRoot bool) string {
	if isRoot {
		return fmt.Sprintf("%s (root)", worktreeName)
	}
	return worktreeName
}

// Indent prefixes every line with n two-space indents, used to nest a
// stack slice under its header.
func Indent(lines []string, n int) []string {
	prefix := strings.Repeat("  ", n)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = prefix + l
	}
	return out
}
