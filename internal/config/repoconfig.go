// Package config loads the per-repository configuration scope (spec §6):
// the `[env]` table and `[post_create]` settings stored in a TOML file at
// the repository root.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
)

// FileName is the repo config's conventional filename, analogous to the
// teacher's own per-repo manifest file.
const FileName = ".workstack.toml"

type tomlRepoConfig struct {
	Env        map[string]string `toml:"env"`
	PostCreate struct {
		Shell    string   `toml:"shell"`
		Commands []string `toml:"commands"`
	} `toml:"post_create"`
}

// Load reads the repo config at repoRoot/FileName. A missing file is not an
// error: it yields a zero-value RepoConfig, since every field is optional.
func Load(repoRoot string) (model.RepoConfig, error) {
	path := filepath.Join(repoRoot, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RepoConfig{}, nil
		}
		return model.RepoConfig{}, wserrors.Wrap(wserrors.External, err, "failed to read repo config at %s", path)
	}

	var raw tomlRepoConfig
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return model.RepoConfig{}, wserrors.Wrap(wserrors.Corruption, err, "repo config at %s is malformed", path)
	}

	return model.RepoConfig{
		Env: raw.Env,
		PostCreate: model.PostCreateConfig{
			Shell:    raw.PostCreate.Shell,
			Commands: raw.PostCreate.Commands,
		},
	}, nil
}

// Path returns the conventional repo config path for repoRoot.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, FileName)
}
