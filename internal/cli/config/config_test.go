package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfigFile_SearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}

	cfg := &Config{Environments: []Environment{{Alias: "production", APIURL: "https://api.wheelx.app/api/v1"}}}
	if err := Save(filepath.Join(root, ConfigFileName), cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	originalDir, _ := os.Getwd()
	os.Chdir(nested)
	defer os.Chdir(originalDir)

	loaded, err := LoadFromCurrentDir()
	if err != nil {
		t.Fatalf("expected config to be found, got: %v", err)
	}
	if len(loaded.Environments) != 1 || loaded.Environments[0].Alias != "production" {
		t.Errorf("unexpected environments: %+v", loaded.Environments)
	}
}

func TestFindConfigFile_NotFound(t *testing.T) {
	originalDir, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(originalDir)

	if _, err := FindConfigFile(); err == nil {
		t.Error("expected an error when no wheelx.json exists")
	}
}

func TestAddEnvironment(t *testing.T) {
	cfg := &Config{}

	first, added := cfg.AddEnvironment("https://api.wheelx.app/api/v1/")
	if !added || first.Alias != "production" {
		t.Errorf("expected first environment to be 'production', got %+v (added=%v)", first, added)
	}
	if first.APIURL != "https://api.wheelx.app/api/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", first.APIURL)
	}

	second, added := cfg.AddEnvironment("https://staging.wheelx.app/api/v1")
	if !added || second.Alias != "env-2" {
		t.Errorf("expected second environment to be 'env-2', got %+v", second)
	}

	if _, added := cfg.AddEnvironment("https://api.wheelx.app/api/v1"); added {
		t.Error("expected duplicate URL to be ignored")
	}

	env, err := cfg.GetEnvironmentByURLOrAlias("env-2")
	if err != nil || env.APIURL != "https://staging.wheelx.app/api/v1" {
		t.Errorf("lookup by alias failed: %+v, %v", env, err)
	}
	env, err = cfg.GetEnvironmentByURLOrAlias("https://api.wheelx.app/api/v1/")
	if err != nil || env.Alias != "production" {
		t.Errorf("lookup by URL failed: %+v, %v", env, err)
	}
	if _, err := cfg.GetEnvironmentByAlias("missing"); err == nil {
		t.Error("expected error for unknown alias")
	}
}

func TestFallbackEnvironment(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	if got := FallbackEnvironment().APIURL; got != "http://localhost:3001/api/v1" {
		t.Errorf("expected local default, got %s", got)
	}

	t.Setenv(EnvAPIURL, "https://api.example.com/v1")
	if got := FallbackEnvironment().APIURL; got != "https://api.example.com/v1" {
		t.Errorf("expected env override, got %s", got)
	}
}

func TestValidateAPIURL(t *testing.T) {
	for _, good := range []string{"http://localhost:3001/api/v1", "https://api.wheelx.app"} {
		if err := ValidateAPIURL(good); err != nil {
			t.Errorf("expected %s to be valid: %v", good, err)
		}
	}
	for _, bad := range []string{"api.wheelx.app", "ftp://x", "https://", "::"} {
		if err := ValidateAPIURL(bad); err == nil {
			t.Errorf("expected %s to be rejected", bad)
		}
	}
}
