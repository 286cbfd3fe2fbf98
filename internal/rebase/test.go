package rebase

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"workstack.dev/workstack/internal/wserrors"
)

// TestResult is the outcome of `rebase test`.
type TestResult struct {
	Command string
	Passed  bool
	Output  string
}

// DetectTestCommand walks the auto-detection table in order of first match:
// pytest markers, package.json, go.mod, Cargo.toml, a Makefile with a
// `test:` target. Returns ("", false) if nothing matches.
func DetectTestCommand(dir string) (string, bool) {
	if fileExists(filepath.Join(dir, "pytest.ini")) || pyprojectHasPytest(dir) {
		return "pytest", true
	}
	if fileExists(filepath.Join(dir, "package.json")) {
		return "npm test", true
	}
	if fileExists(filepath.Join(dir, "go.mod")) {
		return "go test ./...", true
	}
	if fileExists(filepath.Join(dir, "Cargo.toml")) {
		return "cargo test", true
	}
	if makefileHasTestTarget(dir) {
		return "make test", true
	}
	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func pyprojectHasPytest(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "[tool.pytest.ini_options]")
}

func makefileHasTestTarget(dir string) bool {
	f, err := os.Open(filepath.Join(dir, "Makefile"))
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "test:") {
			return true
		}
	}
	return false
}

// Test implements `rebase test` (spec §4.G "test"): run an arbitrary
// command inside the scratch working directory, or auto-detect one.
func Test(ctx context.Context, workingCopyPath, command string) (TestResult, error) {
	if command == "" {
		detected, ok := DetectTestCommand(workingCopyPath)
		if !ok {
			return TestResult{}, wserrors.New(wserrors.Precondition, "no test command detected")
		}
		command = detected
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workingCopyPath
	cmd.Env = os.Environ()

	out, err := cmd.CombinedOutput()
	return TestResult{
		Command: command,
		Passed:  err == nil,
		Output:  string(out),
	}, nil
}
