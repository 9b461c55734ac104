// Package config provides hierarchical configuration loading.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"time"

	"github.com/soprimec/rental-engine/logger"
	"github.com/soprimec/rental-engine/rental"
)

// Config holds all runtime configuration for the rental service.
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Contracts Contracts `yaml:"contracts"`
	Log       Log       `yaml:"log"`
	Agency    Agency    `yaml:"agency"`
	Cache     Cache     `yaml:"cache"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Database holds the SQLite location. ":memory:" keeps everything in RAM.
type Database struct {
	Path string `yaml:"path"`
}

// Contracts holds contract document storage settings.
type Contracts struct {
	Dir            string `yaml:"dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Log mirrors logger.Config.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Agency details appear in reminder messages.
type Agency struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

// Cache sizes the projection cache.
type Cache struct {
	MaxCostBytes int64         `yaml:"max_cost_bytes"`
	TTL          time.Duration `yaml:"ttl"`
}

// Defaults returns a Config with sensible development defaults.
func Defaults() Config {
	tmpl := rental.DefaultReminderTemplate()
	return Config{
		Server: Server{
			Port:            3000,
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database:  Database{Path: "rental.db"},
		Contracts: Contracts{Dir: "uploads", MaxUploadBytes: 20 << 20},
		Log:       Log{Level: "info", Format: "console", Output: "stdout"},
		Agency:    Agency{Name: tmpl.AgencyName, Phone: tmpl.AgencyPhone},
		Cache:     Cache{MaxCostBytes: 8 << 20, TTL: 5 * time.Minute},
	}
}

// LoggerConfig converts the log section for logger.New.
func (c Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	lc.Output = c.Log.Output
	return lc
}

// ReminderTemplate returns the agency details used in reminder messages.
func (c Config) ReminderTemplate() rental.ReminderTemplate {
	return rental.ReminderTemplate{AgencyName: c.Agency.Name, AgencyPhone: c.Agency.Phone}
}
