// Package paths resolves where gridfields keeps its configuration and its
// field store.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user platform directories.
const appName = "gridfields"

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Working-directory defaults.
const (
	DefaultConfigDirName = ".gridfields"
	DefaultDataDirName   = ".gridfields-db"
)

// Environment overrides.
const (
	EnvConfigDir = "GRIDFIELDS_CONFIG_DIR"
	EnvDataDir   = "GRIDFIELDS_DATA_DIR"
)

// platform holds the lookups that tests replace.
var platform = struct {
	goos          string
	getenv        func(string) string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	goos:          runtime.GOOS,
	getenv:        os.Getenv,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// xdgDir returns $xdgVar/gridfields, or ~/fallback/gridfields when unset.
func xdgDir(xdgVar string, fallback ...string) (string, error) {
	if xdg := platform.getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// DefaultConfigDir returns the per-user configuration directory.
//
//	Linux:   $XDG_CONFIG_HOME/gridfields (fallback ~/.config/gridfields)
//	macOS:   ~/Library/Application Support/gridfields
//	Windows: %APPDATA%/gridfields
func DefaultConfigDir() (string, error) {
	if platform.goos == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platform.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the per-user data directory.
//
//	Linux:   $XDG_DATA_HOME/gridfields (fallback ~/.local/share/gridfields)
//	macOS, Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	if platform.goos == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	return DefaultConfigDir()
}

// ResolveConfigDir picks the configuration directory: flag, then
// GRIDFIELDS_CONFIG_DIR, then DefaultConfigDir. Results are absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := platform.getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then the config file
// value, then GRIDFIELDS_DATA_DIR, then ./.gridfields-db. Results are
// absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, candidate := range []string{flag, configValue, platform.getenv(EnvDataDir)} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	cwd, err := platform.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the configuration file path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
