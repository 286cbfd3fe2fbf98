// Package display holds the pure data-to-string renderers (spec §4.I):
// the worktree tree, the `list --stacks` stack slices, and status text.
// Every function here is side-effect-free. The output carries no color
// codes; PR badges always include a state emoji, and there is no plain
// variant without it.
package display

import (
	"fmt"
	"strings"

	"workstack.dev/workstack/internal/nav"
)

// RenderTree renders roots with box-drawing connectors (`├─`, `└─`, `│  `),
// annotating each node with `[@worktree_name]` and marking the current one.
func RenderTree(roots []*nav.TreeNode) []string {
	var lines []string
	for i, root := range roots {
		lines = append(lines, renderTreeNode(root, "", i == len(roots)-1)...)
	}
	return lines
}

func renderTreeNode(n *nav.TreeNode, prefix string, last bool) []string {
	connector := "├─ "
	childPrefix := prefix + "│  "
	if last {
		connector = "└─ "
		childPrefix = prefix + "   "
	}

	label := n.Branch
	if n.WorktreeName != "" {
		label = fmt.Sprintf("%s [@%s]", n.Branch, n.WorktreeName)
	}
	if n.IsCurrent {
		label = "* " + label
	}

	lines := []string{prefix + connector + label}
	if prefix == "" {
		// Root line carries no connector.
		lines = []string{label}
	}

	for i, child := range n.Children {
		lines = append(lines, renderTreeNode(child, childPrefix, i == len(n.Children)-1)...)
	}
	return lines
}

// JoinLines is a small convenience for callers that just want one string.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
