package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wheelx-dev/wheelx/internal/api"
)

// Config holds all configuration for the back-office gateway
type Config struct {
	// API is the upstream WheelX REST API
	API APIConfig `mapstructure:"api"`

	HTTP HTTPConfig `mapstructure:"http"`

	// SMTP delivers the partner contact form
	SMTP SMTPConfig `mapstructure:"smtp"`

	Logging LoggingConfig `mapstructure:"log"`
}

// APIConfig holds the upstream API location
type APIConfig struct {
	URL string `mapstructure:"url"`
}

// HTTPConfig holds the listener and cookie settings
type HTTPConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	SecureCookies  bool     `mapstructure:"secure_cookies"`
}

// SMTPConfig holds the mail relay used for partner inquiries
type SMTPConfig struct {
	Server   string   `mapstructure:"server"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	To       []string `mapstructure:"to"`
}

// Enabled reports whether partner inquiries can be delivered.
func (c SMTPConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

// envAliases are the legacy variable names still honoured next to WHEELX_*.
var envAliases = map[string][]string{
	"api.url":       {"NEXT_PUBLIC_API_URL"},
	"smtp.server":   {"SMTP_SERVER"},
	"smtp.port":     {"SMTP_PORT"},
	"smtp.username": {"SMTP_USERNAME"},
	"smtp.password": {"SMTP_PASSWORD"},
	"log.level":     {"LOG_LEVEL"},
	"log.format":    {"LOG_FORMAT"},
}

// Load loads configuration from .env files and environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("api.url", api.DefaultBaseURL)
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("http.secure_cookies", false)
	v.SetDefault("smtp.server", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.to", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix("wheelx")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, aliases := range envAliases {
		names := append([]string{"WHEELX_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// comma separated lists arrive as a single element from the environment
	cfg.HTTP.AllowedOrigins = splitList(cfg.HTTP.AllowedOrigins)
	cfg.SMTP.To = splitList(cfg.SMTP.To)
	cfg.API.URL = strings.TrimRight(cfg.API.URL, "/")

	return &cfg, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
