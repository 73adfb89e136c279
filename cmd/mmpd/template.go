package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed mmpd.yml
var configTemplate string

// writeTemplate emits the starter config at path, creating parent
// directories. It refuses to overwrite an existing file.
func writeTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("writing config template failed: %w", err)
	}
	return nil
}

// defaultConfigPath resolves the platform config location:
// $XDG_CONFIG_HOME/mmpd/mmpd.yml, falling back to ~/.config.
func defaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "mmpd.yml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mmpd", "mmpd.yml")
}
