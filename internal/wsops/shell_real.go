package wsops

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type realShellOps struct{}

// NewRealShellOps returns a ShellOps that inspects the actual host
// environment, the way the teacher's internal/cli package sniffs $SHELL to
// decide which completion script to print.
func NewRealShellOps() ShellOps {
	return &realShellOps{}
}

func (realShellOps) Detect() (ShellInfo, error) {
	shellPath := os.Getenv("SHELL")
	name := filepath.Base(shellPath)
	if name == "" || name == "." {
		name = "bash"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ShellInfo{Name: name}, nil
	}

	rcFile := ""
	switch {
	case strings.Contains(name, "zsh"):
		rcFile = filepath.Join(home, ".zshrc")
	case strings.Contains(name, "fish"):
		rcFile = filepath.Join(home, ".config", "fish", "config.fish")
	default:
		name = "bash"
		rcFile = filepath.Join(home, ".bashrc")
	}

	_, statErr := os.Stat(rcFile)
	return ShellInfo{Name: name, RCFile: rcFile, Present: statErr == nil}, nil
}

func (realShellOps) LookPath(binary string) (string, bool) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", false
	}
	return path, true
}
