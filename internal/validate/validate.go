// Package validate holds the pure name validators and sanitizers used by
// the worktree lifecycle manager and the process-wide context (spec §4.B).
package validate

import (
	"regexp"
	"strings"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
)

// ValidateWorktreeName enforces spec invariant 3: non-empty, no path
// separator, not in the reserved set, no parent-directory traversal.
func ValidateWorktreeName(name string) error {
	if name == "" {
		return wserrors.New(wserrors.Validation, "worktree name must not be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return wserrors.New(wserrors.Validation, "worktree name %q must not contain a path separator", name)
	}
	if name == ".." {
		return wserrors.New(wserrors.Validation, "worktree name %q is not allowed", name)
	}
	if model.ReservedNames[strings.ToLower(name)] {
		return wserrors.New(wserrors.Validation, "%q is a reserved worktree name", name)
	}
	return nil
}

var nonAlphaNumRe = regexp.MustCompile(`[^a-z0-9]+`)
var runsOfDashRe = regexp.MustCompile(`-+`)

// SanitizeWorktreeName normalizes a user-supplied label into a directory-safe
// worktree name: lower-case, non-alphanumeric runs collapse to a single `-`,
// leading/trailing `-` trimmed. Idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func SanitizeWorktreeName(s string) string {
	s = strings.ToLower(s)
	s = nonAlphaNumRe.ReplaceAllString(s, "-")
	s = runsOfDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// branchDisallowedRe matches runs of characters outside the set kept as-is
// in a branch name (letters, digits, and a few separators git itself
// allows: '-', '_', '/', '.').
var branchDisallowedRe = regexp.MustCompile(`[^-_/.a-zA-Z0-9]+`)
var branchRunsRe = regexp.MustCompile(`-+`)
var branchTrailingRe = regexp.MustCompile(`[/.]*$`)

// SanitizeBranchName normalizes a user-supplied label into a valid git
// branch name. Branch naming rules differ from worktree naming rules (git
// permits slashes and dots that a directory name should not carry), so this
// is a distinct function rather than a thin wrapper over SanitizeWorktreeName.
func SanitizeBranchName(s string) string {
	s = branchTrailingRe.ReplaceAllString(s, "")
	s = branchDisallowedRe.ReplaceAllString(s, "-")
	s = branchRunsRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	const maxBranchNameBytes = 234
	if len(s) > maxBranchNameBytes {
		s = strings.TrimSuffix(s[:maxBranchNameBytes], "-")
	}
	return s
}
