package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Backend connection
	BackendURL string `yaml:"backend_url"`

	// Extensions the file picker and upload command accept
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration with precedence defaults < config file < env vars.
// The config file lives at ~/.config/docchat/config.yaml unless DOCCHAT_CONFIG
// points elsewhere; a missing file is not an error.
func Load() (Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads configuration using the given config file path.
func LoadFrom(path string) (Config, error) {
	cfg := Config{
		BackendURL:        "http://localhost:5000",
		AllowedExtensions: []string{".pdf", ".txt", ".docx", ".doc"},
		LogFile:           "/tmp/docchat.log",
		LogLevel:          "INFO",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.BackendURL = getEnv("DOCCHAT_BACKEND_URL", cfg.BackendURL)
	cfg.LogFile = getEnv("DOCCHAT_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("DOCCHAT_LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

// Level parses the configured log level, defaulting to info.
func (c Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

// AllowsExtension reports whether the configured extension list accepts ext.
func (c Config) AllowsExtension(ext string) bool {
	for _, allowed := range c.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func configPath() string {
	if p := os.Getenv("DOCCHAT_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
