package cli

import "workstack.dev/workstack/internal/wsops"

func defaultGlobalConfigPath() (string, error) {
	return wsops.DefaultGlobalConfigPath()
}
