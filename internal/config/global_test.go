package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeGlobalConfig writes a YAML config file and points PUBLIST_CONFIG
// at it for the rest of the test.
func writeGlobalConfig(t *testing.T, yml string) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv(GlobalConfigEnv, path)
	return path
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv(GlobalConfigEnv, "")

	// Custom XDG_CONFIG_HOME
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/publist/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "publist", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	// PUBLIST_CONFIG wins outright
	t.Setenv(GlobalConfigEnv, "/elsewhere/publist.yml")
	if got := GlobalConfigPath(); got != "/elsewhere/publist.yml" {
		t.Errorf("GlobalConfigPath() = %q, want the override", got)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	t.Setenv(GlobalConfigEnv, filepath.Join(t.TempDir(), "missing.yml"))

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.LibraryPath != "" || cfg.Mailto != "" {
		t.Errorf("want empty config, got %+v", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	writeGlobalConfig(t, "library_path: ~/pubs\nmailto: pubs@example.org\n")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	// Tilde expansion
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "pubs"); cfg.LibraryPath != want {
		t.Errorf("LibraryPath = %q, want %q", cfg.LibraryPath, want)
	}
	if cfg.Mailto != "pubs@example.org" {
		t.Errorf("Mailto = %q, want pubs@example.org", cfg.Mailto)
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	writeGlobalConfig(t, "\tlibrary_path: tabs are not yaml\n")

	_, err := LoadGlobalConfig()
	if err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestLoadGlobalConfig_Cache(t *testing.T) {
	path := writeGlobalConfig(t, "mailto: first@example.org\n")

	cfg1, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg1.Mailto != "first@example.org" {
		t.Errorf("first load: Mailto = %q", cfg1.Mailto)
	}

	if err := os.WriteFile(path, []byte("mailto: second@example.org\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Second load returns the cached value
	cfg2, _ := LoadGlobalConfig()
	if cfg2.Mailto != "first@example.org" {
		t.Errorf("cached load: Mailto = %q, want first@example.org", cfg2.Mailto)
	}

	ResetGlobalConfigCache()

	cfg3, _ := LoadGlobalConfig()
	if cfg3.Mailto != "second@example.org" {
		t.Errorf("after reset: Mailto = %q, want second@example.org", cfg3.Mailto)
	}
}

func TestGetMailto(t *testing.T) {
	writeGlobalConfig(t, "mailto: pubs@example.org\n")

	if got := GetMailto(); got != "pubs@example.org" {
		t.Errorf("GetMailto() = %q, want pubs@example.org", got)
	}
}

func TestValidateLibraryPath(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		writeGlobalConfig(t, "")

		_, err := ValidateLibraryPath()
		if err != ErrLibraryPathNotConfigured {
			t.Errorf("error = %v, want ErrLibraryPathNotConfigured", err)
		}
	})

	t.Run("path missing", func(t *testing.T) {
		writeGlobalConfig(t, "library_path: /nonexistent/pubs/xyz\n")

		_, err := ValidateLibraryPath()
		if err == nil || !strings.Contains(err.Error(), "/nonexistent/pubs/xyz") {
			t.Errorf("error = %v, should name the missing path", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		dir := t.TempDir()
		writeGlobalConfig(t, "library_path: "+dir+"\n")

		got, err := ValidateLibraryPath()
		if err != nil {
			t.Fatalf("ValidateLibraryPath() error = %v", err)
		}
		if got != dir {
			t.Errorf("ValidateLibraryPath() = %q, want %q", got, dir)
		}
	})
}

func TestHelpfulConfigMessage(t *testing.T) {
	t.Setenv(GlobalConfigEnv, "/elsewhere/publist.yml")

	msg := HelpfulConfigMessage()
	if !strings.Contains(msg, "/elsewhere/publist.yml") {
		t.Errorf("HelpfulConfigMessage() should mention the config path, got %q", msg)
	}
	if !strings.Contains(msg, "library_path") {
		t.Errorf("HelpfulConfigMessage() should mention library_path, got %q", msg)
	}
}
