package wsops

import "workstack.dev/workstack/internal/model"

// GlobalConfigOps abstracts the user-wide config file (spec §4.A). Getters
// for settings that must be configured fail with a "not configured"
// wserrors.Precondition error; setters create the file on first write.
type GlobalConfigOps interface {
	Exists() bool
	Path() string

	WorkstacksRoot() (string, error)
	UseGraphite() (bool, error)
	ShowPRInfo() (bool, error)
	ShowPRChecks() (bool, error)
	ShellSetupComplete() (bool, error)
	RebaseDefaults() (model.RebaseDefaults, error)

	// Set atomically updates any subset of fields named in updates and
	// persists the result, creating the file if absent.
	Set(updates GlobalConfigUpdate) error
}

// GlobalConfigUpdate names the subset of GlobalConfig fields a `config set`
// invocation wants to change. Nil fields are left untouched.
type GlobalConfigUpdate struct {
	WorkstacksRoot     *string
	UseGraphite        *bool
	ShowPRInfo         *bool
	ShowPRChecks       *bool
	ShellSetupComplete *bool
	Rebase             *model.RebaseDefaults
}
