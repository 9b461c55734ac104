package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "rental.yaml"

// Load returns a Config loaded from yamlPath using the hierarchy
// defaults < YAML < ENV. The YAML file is optional; an empty path skips it.
func Load(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if yamlPath != "" {
		if err := loadYAML(&cfg, yamlPath); err != nil {
			return nil, fmt.Errorf("config yaml: %w", err)
		}
	}

	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty, parseable env values override the current config.
func loadEnv(cfg *Config) {
	setInt(&cfg.Server.Port, "RENTAL_PORT")
	setList(&cfg.Server.CORSOrigins, "RENTAL_CORS_ORIGINS")
	setDuration(&cfg.Server.ShutdownTimeout, "RENTAL_SHUTDOWN_TIMEOUT")
	setString(&cfg.Database.Path, "RENTAL_DB_PATH")
	setString(&cfg.Contracts.Dir, "RENTAL_CONTRACTS_DIR")
	setInt64(&cfg.Contracts.MaxUploadBytes, "RENTAL_MAX_UPLOAD_BYTES")
	setString(&cfg.Log.Level, "RENTAL_LOG_LEVEL")
	setString(&cfg.Log.Format, "RENTAL_LOG_FORMAT")
	setString(&cfg.Log.Output, "RENTAL_LOG_OUTPUT")
	setString(&cfg.Agency.Name, "RENTAL_AGENCY_NAME")
	setString(&cfg.Agency.Phone, "RENTAL_AGENCY_PHONE")
	setDuration(&cfg.Cache.TTL, "RENTAL_CACHE_TTL")
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Contracts.Dir == "" {
		return errors.New("contracts.dir is required")
	}
	if c.Contracts.MaxUploadBytes < 1 {
		return errors.New("contracts.max_upload_bytes must be >= 1")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Agency.Name == "" {
		return errors.New("agency.name is required")
	}
	if c.Cache.MaxCostBytes < 1 {
		return errors.New("cache.max_cost_bytes must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// setList splits a comma-separated value, dropping empty items.
func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		*dst = items
	}
}
