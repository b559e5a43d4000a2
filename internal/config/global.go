package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/publist/config.yml.
type GlobalConfig struct {
	LibraryPath string `yaml:"library_path,omitempty"` // Default publication repository
	Mailto      string `yaml:"mailto,omitempty"`       // Contact address for CrossRef's polite pool
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "publist"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// GlobalConfigEnv overrides the config file location entirely.
	GlobalConfigEnv = "PUBLIST_CONFIG"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// PUBLIST_CONFIG wins outright; otherwise XDG_CONFIG_HOME is
// respected, defaulting to ~/.config/publist/config.yml.
func GlobalConfigPath() string {
	if override := os.Getenv(GlobalConfigEnv); override != "" {
		return override
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.LibraryPath != "" {
		cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetLibraryPath returns the configured library path from global config.
func GetLibraryPath() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.LibraryPath
}

// GetMailto returns the CrossRef contact address from global config.
func GetMailto() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.Mailto
}

// ErrLibraryPathNotConfigured is returned when library_path is not set in config.
var ErrLibraryPathNotConfigured = errors.New("library_path not configured")

// ErrLibraryPathNotExist is returned when the configured library_path doesn't exist.
var ErrLibraryPathNotExist = errors.New("library_path does not exist")

// ValidateLibraryPath returns the library path from global config after validation.
// Returns error if not configured or if the path doesn't exist.
// This is the testable version - use MustGetLibraryPath for CLI commands.
func ValidateLibraryPath() (string, error) {
	path := GetLibraryPath()
	if path == "" {
		return "", ErrLibraryPathNotConfigured
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrLibraryPathNotExist, path)
	}
	return path, nil
}

// MustGetLibraryPath returns the library path from global config.
// Prints helpful message and exits if not configured or path doesn't exist.
// For testable code, use ValidateLibraryPath instead.
func MustGetLibraryPath() string {
	path, err := ValidateLibraryPath()
	if err != nil {
		if errors.Is(err, ErrLibraryPathNotConfigured) {
			fmt.Fprintln(os.Stderr, HelpfulConfigMessage())
		} else {
			fmt.Fprintf(os.Stderr, "Configured library_path does not exist: %s\n\n%s\n",
				GetLibraryPath(), HelpfulConfigMessage())
		}
		os.Exit(2)
	}
	return path
}

// HelpfulConfigMessage returns a helpful message when library_path is not configured.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No publist repository found.

Tip: Create %s to set a default library:
  mkdir -p %s
  echo 'library_path: /path/to/your/publications' > %s

See https://github.com/matsen/publist`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
