package nav

import (
	"sort"

	"workstack.dev/workstack/internal/model"
)

// TreeNode is one entry in the filtered worktree forest rendered by `tree`.
type TreeNode struct {
	Branch       string
	WorktreeName string
	IsCurrent    bool
	Children     []*TreeNode
}

// BuildTree filters graph down to branches with a live worktree and returns
// the roots of the resulting forest, rooted at trunk branches (spec §4.E
// "tree"). worktreeName maps branch -> worktree name for branches that have
// one. Only branches with a live worktree become nodes: a worktree-less
// branch is skipped and its live-worktree descendants are attached directly
// to its nearest live-worktree ancestor, so the tree never shows a
// placeholder for a branch that isn't checked out anywhere.
func BuildTree(graph *model.BranchGraph, worktreeName map[string]string, currentBranch string) []*TreeNode {
	hasWorktree := func(b string) bool {
		_, ok := worktreeName[b]
		return ok
	}

	// liveChildrenOf walks past worktree-less branches to collect the next
	// branches down each path that do have a live worktree.
	var liveChildrenOf func(branch string) []string
	liveChildrenOf = func(branch string) []string {
		var out []string
		for _, child := range graph.Children(branch) {
			if hasWorktree(child) {
				out = append(out, child)
				continue
			}
			out = append(out, liveChildrenOf(child)...)
		}
		return out
	}

	var build func(branch string) *TreeNode
	build = func(branch string) *TreeNode {
		node := &TreeNode{
			Branch:       branch,
			WorktreeName: worktreeName[branch],
			IsCurrent:    branch == currentBranch,
		}
		for _, child := range liveChildrenOf(branch) {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	var trunkRoots []string
	for _, b := range graph.Branches() {
		if graph.IsTrunk(b) && hasWorktree(b) {
			trunkRoots = append(trunkRoots, b)
		}
	}
	sort.Strings(trunkRoots)

	roots := make([]*TreeNode, 0, len(trunkRoots))
	for _, b := range trunkRoots {
		roots = append(roots, build(b))
	}
	return roots
}
