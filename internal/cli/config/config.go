package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/wheelx-dev/wheelx/internal/api"
)

const ConfigFileName = "wheelx.json"

// EnvAPIURL overrides the API URL when no project config exists.
const EnvAPIURL = "WHEELX_API_URL"

// Environment is one WheelX API deployment the CLI can talk to
type Environment struct {
	Alias  string `json:"alias"`
	APIURL string `json:"api_url"`
}

// Config represents the CLI configuration file
type Config struct {
	Environments []Environment `json:"environments"`
}

// FallbackEnvironment is used when no wheelx.json is found: WHEELX_API_URL
// when set, the local development API otherwise.
func FallbackEnvironment() Environment {
	apiURL := os.Getenv(EnvAPIURL)
	if apiURL == "" {
		apiURL = api.DefaultBaseURL
	}
	return Environment{Alias: "default", APIURL: apiURL}
}

// ValidateAPIURL checks that raw is an absolute http(s) URL.
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API URL %q: missing host", raw)
	}
	return nil
}

// FindConfigFile searches for wheelx.json in current directory and parent directories
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// Search upwards until we find wheelx.json or reach root
	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, currentDir)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AddEnvironment appends apiURL under a generated alias. It reports false
// when the URL is already configured.
func (c *Config) AddEnvironment(apiURL string) (Environment, bool) {
	apiURL = strings.TrimRight(apiURL, "/")
	for _, env := range c.Environments {
		if env.APIURL == apiURL {
			return env, false
		}
	}

	alias := "production"
	if len(c.Environments) > 0 {
		alias = fmt.Sprintf("env-%d", len(c.Environments)+1)
	}

	env := Environment{Alias: alias, APIURL: apiURL}
	c.Environments = append(c.Environments, env)
	return env, true
}

// GetEnvironmentByAlias returns an environment by its alias
func (c *Config) GetEnvironmentByAlias(alias string) (*Environment, error) {
	for i := range c.Environments {
		if c.Environments[i].Alias == alias {
			return &c.Environments[i], nil
		}
	}
	return nil, fmt.Errorf("environment with alias '%s' not found", alias)
}

// GetEnvironmentByURLOrAlias finds an environment by API URL or alias
func (c *Config) GetEnvironmentByURLOrAlias(urlOrAlias string) (*Environment, error) {
	trimmed := strings.TrimRight(urlOrAlias, "/")
	for i := range c.Environments {
		if c.Environments[i].APIURL == trimmed {
			return &c.Environments[i], nil
		}
	}
	return c.GetEnvironmentByAlias(urlOrAlias)
}
