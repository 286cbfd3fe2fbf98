package rebase

import (
	"os"
	"strings"

	"workstack.dev/workstack/internal/wserrors"
)

// Strategy picks which side of a conflict marker region to keep.
type Strategy string

const (
	Ours   Strategy = "ours"
	Theirs Strategy = "theirs"
)

type conflictState int

const (
	stateNormal conflictState = iota
	stateOurs
	stateTheirs
)

// Resolve rewrites content line by line, keeping only the chosen side of
// every `<<<<<<< … ======= … >>>>>>>` region and discarding the marker
// lines and the other side entirely (spec §4.G "resolve"). A line-based
// scan, not a regex across the whole string, so an empty ours/theirs
// section contributes no stray blank line.
func Resolve(content string, strategy Strategy) (string, error) {
	if strategy != Ours && strategy != Theirs {
		return "", wserrors.New(wserrors.Usage, "unknown conflict resolution strategy %q", strategy)
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	state := stateNormal

	for _, line := range lines {
		switch state {
		case stateNormal:
			if strings.HasPrefix(line, "<<<<<<<") {
				state = stateOurs
				continue
			}
			out = append(out, line)
		case stateOurs:
			if line == "=======" {
				state = stateTheirs
				continue
			}
			if strategy == Ours {
				out = append(out, line)
			}
		case stateTheirs:
			if strings.HasPrefix(line, ">>>>>>>") {
				state = stateNormal
				continue
			}
			if strategy == Theirs {
				out = append(out, line)
			}
		}
	}

	return strings.Join(out, "\n"), nil
}

// ResolveOurs is Resolve(content, Ours) without the error return, for
// callers that already know the strategy is valid.
func ResolveOurs(content string) string {
	out, _ := Resolve(content, Ours)
	return out
}

// ResolveTheirs is Resolve(content, Theirs) without the error return.
func ResolveTheirs(content string) string {
	out, _ := Resolve(content, Theirs)
	return out
}

// HasConflictMarkers reports whether content still carries an unresolved
// conflict marker.
func HasConflictMarkers(content string) bool {
	return strings.Contains(content, "<<<<<<<") ||
		strings.Contains(content, "=======") ||
		strings.Contains(content, ">>>>>>>")
}

// ResolveFile reads path, applies strategy, writes the result back, and
// reports whether the file is now marker-free (spec §4.G "resolve": "After
// applying a strategy to a file, re-scan to confirm no conflict markers
// remain").
func ResolveFile(path string, strategy Strategy) (resolved bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, wserrors.Wrap(wserrors.External, err, "failed to read %s", path)
	}

	out, err := Resolve(string(data), strategy)
	if err != nil {
		return false, err
	}

	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return false, wserrors.Wrap(wserrors.External, err, "failed to write %s", path)
	}

	return !HasConflictMarkers(out), nil
}
