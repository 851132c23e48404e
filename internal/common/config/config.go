package config

import (
	"time"
)

type (
	// AppConfig represents the top-level configuration of the identity core.
	AppConfig struct {
		Server     ServerConfig     `yaml:"server"`
		Database   DatabaseConfig   `yaml:"database"`
		Logger     LoggerConfig     `yaml:"logger"`
		JWT        JWTConfig        `yaml:"jwt"`
		Token      TokenConfig      `yaml:"token"`
		SuperAdmin SuperAdminConfig `yaml:"super_admin"`
	}

	// ServerConfig represents the HTTP server configuration
	ServerConfig struct {
		Port int `yaml:"port"`
	}

	// JWTConfig represents the access token signing configuration
	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// TokenConfig represents the refresh token configuration
	TokenConfig struct {
		RefreshDuration time.Duration `yaml:"refresh_duration"` // lifetime of a refresh token
		SweepInterval   time.Duration `yaml:"sweep_interval"`   // how often expired rows are purged
	}

	// SuperAdminConfig represents the bootstrap super admin account.
	// The account is created on first start if it does not exist.
	SuperAdminConfig struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
	}
)

// SetDefaults fills in defaults for durations that were omitted or invalid.
func (c *AppConfig) SetDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 5310
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 15 * time.Minute
	}
	if c.Token.RefreshDuration <= 0 {
		c.Token.RefreshDuration = 30 * 24 * time.Hour
	}
	if c.Token.SweepInterval <= 0 {
		c.Token.SweepInterval = time.Hour
	}
}
