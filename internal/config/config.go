package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"taskboard/internal/util"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config is the runtime configuration of the board service.
type Config struct {
	Addr           string `yaml:"addr" validate:"required"`
	StaticDir      string `yaml:"static_dir"`
	Storage        string `yaml:"storage" validate:"oneof=sqlite badger memory"`
	DBPath         string `yaml:"db_path" validate:"required_if=Storage sqlite"`
	BadgerDir      string `yaml:"badger_dir" validate:"required_if=Storage badger"`
	Locale         string `yaml:"locale" validate:"required,bcp47_language_tag"`
	DefaultSort    string `yaml:"default_sort" validate:"oneof=dateAdded dateAddedDesc dueDate dueDateDesc priority alphabetical"`
	LogLevel       string `yaml:"log_level" validate:"oneof=debug info warn error"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Default returns the built-in configuration used before any overrides.
func Default() Config {
	return Config{
		Addr:           ":8080",
		StaticDir:      "web/dist",
		Storage:        BackendSQLite,
		DBPath:         "data/taskboard.db",
		BadgerDir:      "data/badger",
		Locale:         "en",
		DefaultSort:    "dateAdded",
		LogLevel:       "info",
		MetricsEnabled: true,
	}
}

// Load layers defaults, the optional YAML file at path and TASKBOARD_*
// environment variables, then validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from TASKBOARD_* variables when they are set.
func (c *Config) applyEnv() {
	c.Addr = util.EnvOrDefault("TASKBOARD_ADDR", c.Addr)
	c.StaticDir = util.EnvOrDefault("TASKBOARD_STATIC_DIR", c.StaticDir)
	c.Storage = util.EnvOrDefault("TASKBOARD_STORAGE", c.Storage)
	c.DBPath = util.EnvOrDefault("TASKBOARD_DB_PATH", c.DBPath)
	c.BadgerDir = util.EnvOrDefault("TASKBOARD_BADGER_DIR", c.BadgerDir)
	c.Locale = util.EnvOrDefault("TASKBOARD_LOCALE", c.Locale)
	c.DefaultSort = util.EnvOrDefault("TASKBOARD_DEFAULT_SORT", c.DefaultSort)
	c.LogLevel = util.EnvOrDefault("TASKBOARD_LOG_LEVEL", c.LogLevel)
	c.MetricsEnabled = util.EnvBoolOrDefault("TASKBOARD_METRICS", c.MetricsEnabled)
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("config validation: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("config validation: %w", err)
}

// SlogLevel maps LogLevel onto slog.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
