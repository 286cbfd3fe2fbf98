package worktree

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"workstack.dev/workstack/internal/model"
)

// EnvFileName is the name of the rendered environment file placed at the
// root of every created worktree.
const EnvFileName = ".env"

// RenderEnv expands the repo config's `[env]` table placeholders and
// prepends the three well-known variables (spec §4.D "`.env` rendering").
func RenderEnv(cfg model.RepoConfig, worktreePath, worktreeName, repoRoot string) map[string]string {
	replacer := strings.NewReplacer(
		"{worktree_path}", worktreePath,
		"{repo_root}", repoRoot,
		"{name}", worktreeName,
	)

	out := map[string]string{
		"WORKTREE_PATH": worktreePath,
		"WORKTREE_NAME": worktreeName,
		"REPO_ROOT":     repoRoot,
	}
	for k, v := range cfg.Env {
		out[k] = replacer.Replace(v)
	}
	return out
}

// WriteEnvFile renders env as a shell-quoted KEY="VALUE" file: the
// well-known WORKTREE_PATH, WORKTREE_NAME and REPO_ROOT lines first, in that
// order, then the remaining keys sorted.
func WriteEnvFile(path string, env map[string]string) error {
	wellKnown := []string{"WORKTREE_PATH", "WORKTREE_NAME", "REPO_ROOT"}
	keys := make([]string, 0, len(env))
	for _, k := range wellKnown {
		if _, ok := env[k]; ok {
			keys = append(keys, k)
		}
	}
	rest := make([]string, 0, len(env))
	for k := range env {
		if k != "WORKTREE_PATH" && k != "WORKTREE_NAME" && k != "REPO_ROOT" {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%q\n", k, env[k])
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// ReadEnvFile parses a previously written .env file back into a map, undoing
// WriteEnvFile's quoting. Lines without an '=' are skipped.
func ReadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := line[:idx]
		raw := line[idx+1:]
		val, err := strconv.Unquote(raw)
		if err != nil {
			val = strings.Trim(raw, `"`)
		}
		out[key] = val
	}
	return out, scanner.Err()
}

func envPath(worktreePath string) string {
	return filepath.Join(worktreePath, EnvFileName)
}
