package wsops

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
)

// tomlGlobalConfig mirrors spec §6's global config file shape.
type tomlGlobalConfig struct {
	WorkstacksRoot     string            `toml:"workstacks_root"`
	UseGraphite        bool              `toml:"use_graphite"`
	ShowPRInfo         bool              `toml:"show_pr_info"`
	ShowPRChecks       bool              `toml:"show_pr_checks"`
	ShellSetupComplete bool              `toml:"shell_setup_complete"`
	Rebase             tomlRebaseSection `toml:"rebase"`
}

type tomlRebaseSection struct {
	UseStacks      bool   `toml:"use_stacks"`
	AutoTest       bool   `toml:"auto_test"`
	PreserveStacks bool   `toml:"preserve_stacks"`
	ConflictTool   string `toml:"conflict_tool"`
	StackLocation  string `toml:"stack_location"`
}

// realGlobalConfigOps persists the global config as TOML at path. The
// teacher persists its own (simpler, unscoped) config as JSON; spec §6
// mandates TOML for this format, and BurntSushi/toml is the TOML codec the
// retrieval pack's own worktree-manager examples (raphi011-wt, d-kuro-gwq,
// sQVe-grove) reach for.
type realGlobalConfigOps struct {
	path string
	mu   sync.Mutex
}

// NewRealGlobalConfigOps returns a GlobalConfigOps backed by the TOML file at path.
func NewRealGlobalConfigOps(path string) GlobalConfigOps {
	return &realGlobalConfigOps{path: path}
}

// DefaultGlobalConfigPath returns the conventional per-user config path.
func DefaultGlobalConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workstack", "config.toml"), nil
}

func (c *realGlobalConfigOps) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}

func (c *realGlobalConfigOps) Path() string {
	return c.path
}

func (c *realGlobalConfigOps) load() (*tomlGlobalConfig, error) {
	cfg := &tomlGlobalConfig{}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, wserrors.Wrap(wserrors.External, err, "failed to read global config at %s", c.path)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, wserrors.Wrap(wserrors.Corruption, err, "global config at %s is malformed", c.path)
	}
	return cfg, nil
}

func (c *realGlobalConfigOps) save(cfg *tomlGlobalConfig) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return wserrors.Wrap(wserrors.External, err, "failed to create config directory")
	}
	f, err := os.Create(c.path)
	if err != nil {
		return wserrors.Wrap(wserrors.External, err, "failed to write global config at %s", c.path)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func notConfigured(field string) error {
	return wserrors.New(wserrors.Precondition, "%s is not configured", field).
		WithRemedy("run `workstack config set %s <value>`", field)
}

func (c *realGlobalConfigOps) WorkstacksRoot() (string, error) {
	cfg, err := c.load()
	if err != nil {
		return "", err
	}
	if cfg.WorkstacksRoot == "" {
		return "", notConfigured("workstacks_root")
	}
	return cfg.WorkstacksRoot, nil
}

func (c *realGlobalConfigOps) UseGraphite() (bool, error) {
	cfg, err := c.load()
	if err != nil {
		return false, err
	}
	return cfg.UseGraphite, nil
}

func (c *realGlobalConfigOps) ShowPRInfo() (bool, error) {
	cfg, err := c.load()
	if err != nil {
		return false, err
	}
	return cfg.ShowPRInfo, nil
}

func (c *realGlobalConfigOps) ShowPRChecks() (bool, error) {
	cfg, err := c.load()
	if err != nil {
		return false, err
	}
	return cfg.ShowPRChecks, nil
}

func (c *realGlobalConfigOps) ShellSetupComplete() (bool, error) {
	cfg, err := c.load()
	if err != nil {
		return false, err
	}
	return cfg.ShellSetupComplete, nil
}

func (c *realGlobalConfigOps) RebaseDefaults() (model.RebaseDefaults, error) {
	cfg, err := c.load()
	if err != nil {
		return model.RebaseDefaults{}, err
	}
	loc := cfg.Rebase.StackLocation
	if loc == "" {
		loc = model.DefaultRebaseStackLocation
	}
	return model.RebaseDefaults{
		UseStacks:      cfg.Rebase.UseStacks,
		AutoTest:       cfg.Rebase.AutoTest,
		PreserveStacks: cfg.Rebase.PreserveStacks,
		ConflictTool:   cfg.Rebase.ConflictTool,
		StackLocation:  loc,
	}, nil
}

func (c *realGlobalConfigOps) Set(updates GlobalConfigUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, err := c.load()
	if err != nil {
		return err
	}
	if updates.WorkstacksRoot != nil {
		cfg.WorkstacksRoot = *updates.WorkstacksRoot
	}
	if updates.UseGraphite != nil {
		cfg.UseGraphite = *updates.UseGraphite
	}
	if updates.ShowPRInfo != nil {
		cfg.ShowPRInfo = *updates.ShowPRInfo
	}
	if updates.ShowPRChecks != nil {
		cfg.ShowPRChecks = *updates.ShowPRChecks
	}
	if updates.ShellSetupComplete != nil {
		cfg.ShellSetupComplete = *updates.ShellSetupComplete
	}
	if updates.Rebase != nil {
		cfg.Rebase = tomlRebaseSection{
			UseStacks:      updates.Rebase.UseStacks,
			AutoTest:       updates.Rebase.AutoTest,
			PreserveStacks: updates.Rebase.PreserveStacks,
			ConflictTool:   updates.Rebase.ConflictTool,
			StackLocation:  updates.Rebase.StackLocation,
		}
	}
	return c.save(cfg)
}
