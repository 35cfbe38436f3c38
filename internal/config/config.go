// Package config provides application configuration loaded from environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/spf13/viper"
)

// DevSessionSecret is only accepted when App.Dev is set.
const DevSessionSecret = "devsessionsecret"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	App       AppConfig       `mapstructure:"app"`
	Session   SessionConfig   `mapstructure:"session"`
	Access    AccessConfig    `mapstructure:"access"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `mapstructure:"dev"`
	Migrations bool `mapstructure:"migrations"`
	Metrics    bool `mapstructure:"metrics"`
}

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Secure bool          `mapstructure:"secure"`
}

// AccessConfig controls route gating and the session watcher.
type AccessConfig struct {
	FailurePolicy    string        `mapstructure:"failure_policy"`
	ProfileCacheTTL  time.Duration `mapstructure:"profile_cache_ttl"`
	ProfileCacheSize int           `mapstructure:"profile_cache_size"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
}

// BootstrapConfig describes the superadmin created by the seed step.
type BootstrapConfig struct {
	SuperadminEmail    string `mapstructure:"superadmin_email"`
	SuperadminPassword string `mapstructure:"superadmin_password"`
	SuperadminName     string `mapstructure:"superadmin_name"`
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.IsSQLite() {
		if d.URL != "" {
			return d.URL
		}
		return "cms.db"
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// IsSQLite reports whether the sqlite driver is selected.
func (d DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, "sqlite")
}

// Policy returns the parsed access failure policy.
func (a AccessConfig) Policy() access.FailurePolicy {
	p, _ := access.ParseFailurePolicy(a.FailurePolicy)
	return p
}

var envBindings = map[string]string{
	"server.port":                   "PORT",
	"server.read_timeout":           "SERVER_READ_TIMEOUT",
	"server.write_timeout":          "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":           "SERVER_IDLE_TIMEOUT",
	"database.driver":               "DB_DRIVER",
	"database.dsn":                  "DATABASE_DSN",
	"database.host":                 "DB_HOST",
	"database.port":                 "DB_PORT",
	"database.user":                 "DB_USER",
	"database.password":             "DB_PASSWORD",
	"database.name":                 "DB_NAME",
	"database.sslmode":              "DB_SSLMODE",
	"app.dev":                       "DEV",
	"app.migrations":                "MIGRATIONS",
	"app.metrics":                   "METRICS_ENABLED",
	"session.secret":                "SESSION_SECRET",
	"session.ttl":                   "SESSION_TTL",
	"session.secure":                "SESSION_SECURE",
	"access.failure_policy":         "ACCESS_FAILURE_POLICY",
	"access.profile_cache_ttl":      "PROFILE_CACHE_TTL",
	"access.profile_cache_size":     "PROFILE_CACHE_SIZE",
	"access.poll_interval":          "SESSION_POLL_INTERVAL",
	"bootstrap.superadmin_email":    "SUPERADMIN_EMAIL",
	"bootstrap.superadmin_password": "SUPERADMIN_PASSWORD",
	"bootstrap.superadmin_name":     "SUPERADMIN_NAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cms")
	v.SetDefault("database.password", "cms123")
	v.SetDefault("database.name", "cms")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("app.dev", true)
	v.SetDefault("app.migrations", false)
	v.SetDefault("app.metrics", true)

	v.SetDefault("session.secret", DevSessionSecret)
	v.SetDefault("session.ttl", 14*24*time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("access.failure_policy", string(access.FailOpen))
	v.SetDefault("access.profile_cache_ttl", 30*time.Second)
	v.SetDefault("access.profile_cache_size", 1024)
	v.SetDefault("access.poll_interval", 30*time.Second)

	v.SetDefault("bootstrap.superadmin_email", "")
	v.SetDefault("bootstrap.superadmin_password", "")
	v.SetDefault("bootstrap.superadmin_name", "Super Admin")
}

// Load reads configuration from the environment and, when path is not
// empty, from that file. Environment variables win over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error
	if _, err := access.ParseFailurePolicy(c.Access.FailurePolicy); err != nil {
		errs = append(errs, err)
	}
	if c.Access.PollInterval <= 0 {
		errs = append(errs, errors.New("access.poll_interval must be positive"))
	}
	if c.Access.ProfileCacheTTL < 0 {
		errs = append(errs, errors.New("access.profile_cache_ttl must not be negative"))
	}
	if c.Access.ProfileCacheSize < 0 {
		errs = append(errs, errors.New("access.profile_cache_size must not be negative"))
	}
	if c.Session.Secret == "" || (!c.App.Dev && c.Session.Secret == DevSessionSecret) {
		errs = append(errs, errors.New("SESSION_SECRET must be set outside dev mode"))
	}
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}
