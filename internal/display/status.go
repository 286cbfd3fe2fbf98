package display

import (
	"fmt"

	"workstack.dev/workstack/internal/status"
)

// RenderStatus renders a WorktreeStatus as plain text (spec §4.F/§4.I).
func RenderStatus(s status.WorktreeStatus) []string {
	var lines []string
	name := s.Worktree.Name
	if s.Worktree.IsRoot {
		name += " (root)"
	}
	lines = append(lines, name)

	if s.Git != nil {
		lines = append(lines, fmt.Sprintf("  branch: %s (+%d/-%d)", s.Git.Branch, s.Git.Ahead, s.Git.Behind))
		if len(s.Git.Modified) > 0 {
			lines = append(lines, fmt.Sprintf("  modified: %d file(s)", len(s.Git.Modified)))
		}
		for _, c := range s.Git.Commits {
			lines = append(lines, fmt.Sprintf("    %s %s (%s, %s)", c.ShortSHA, c.Message, c.Author, c.RelativeDate))
		}
	} else {
		lines = append(lines, "  branch: (no result)")
	}

	if s.PR != nil {
		badge := renderPRBadge(s.PR, true)
		ready := ""
		if s.ReadyToMerge {
			ready = " ready to merge"
		}
		lines = append(lines, fmt.Sprintf("  pr: %s%s", badge, ready))
	}

	if s.StackPos != nil {
		parent := s.StackPos.Parent
		if parent == "" {
			parent = "(none)"
		}
		lines = append(lines, fmt.Sprintf("  stack: parent=%s children=%v trunk=%v", parent, s.StackPos.Children, s.StackPos.IsTrunk))
	}

	if s.Plan != nil && s.Plan.Title != "" {
		lines = append(lines, fmt.Sprintf("  plan: %s — %s", s.Plan.Title, s.Plan.Summary))
	}

	if len(s.RelatedWorktrees) > 0 {
		lines = append(lines, fmt.Sprintf("  related worktrees: %d", len(s.RelatedWorktrees)))
	}

	return lines
}
