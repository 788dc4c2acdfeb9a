package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dcrodman/termcred/internal/core/encryption"
)

// Config contains all of the configuration options available to the termcred
// server and tools.
type Config struct {
	// Full path to file to which logs will be written. Blank will write to stdout.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	Terminal struct {
		// Hex-encoded 8 byte terminal key used by the CLI when --key isn't given.
		Key string `mapstructure:"key"`
		// Clock convention shared with the backend when deriving transmit keys.
		// Options: utc, local
		Clock string `mapstructure:"clock"`
	} `mapstructure:"terminal"`

	Auth struct {
		// Largest accepted difference between a request's clientTime and the server clock.
		MaxClockSkew time.Duration `mapstructure:"max_clock_skew"`
		// How long terminal keys read from the database are kept in memory. Deleting
		// or disabling a terminal takes up to this long to reach a running server.
		// 0 disables the cache.
		KeyCacheTTL time.Duration `mapstructure:"key_cache_ttl"`
	} `mapstructure:"auth"`

	Web struct {
		// HTTP port for the verification API.
		HTTPPort int `mapstructure:"http_port"`
	} `mapstructure:"web"`

	Database struct {
		// Options: sqlite, postgres
		Engine string `mapstructure:"engine"`
		// SQLite database file, relative to the config directory.
		Filename string `mapstructure:"filename"`
		// Connection settings for Postgres.
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Name     string `mapstructure:"name"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		SSLMode  string `mapstructure:"sslmode"`
		// Enable query logging.
		Debug bool `mapstructure:"debug"`
	} `mapstructure:"database"`

	Metrics struct {
		// InfluxDB server login outcomes are written to. Blank disables metrics.
		InfluxURL   string `mapstructure:"influx_url"`
		InfluxToken string `mapstructure:"influx_token"`
		Org         string `mapstructure:"org"`
		Bucket      string `mapstructure:"bucket"`
		BatchSize   uint   `mapstructure:"batch_size"`
	} `mapstructure:"metrics"`

	Debugging struct {
		// Serve pprof on localhost while the API is running.
		Enabled   bool `mapstructure:"enabled"`
		PprofPort int  `mapstructure:"pprof_port"`
	} `mapstructure:"debugging"`

	configDir string
}

const envVarPrefix = "TERMCRED"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_file_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("terminal.key", "")
	v.SetDefault("terminal.clock", "utc")
	v.SetDefault("auth.max_clock_skew", "5m")
	v.SetDefault("auth.key_cache_ttl", "10m")
	v.SetDefault("web.http_port", 8080)
	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.filename", "termcred.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "termcred")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.debug", false)
	v.SetDefault("metrics.influx_url", "")
	v.SetDefault("metrics.influx_token", "")
	v.SetDefault("metrics.org", "termcred")
	v.SetDefault("metrics.bucket", "logins")
	v.SetDefault("metrics.batch_size", 20)
	v.SetDefault("debugging.enabled", false)
	v.SetDefault("debugging.pprof_port", 4000)
}

// DefaultConfig returns a Config populated only with default values.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	config := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(config)
	return config
}

// LoadConfig reads config.yaml from configPath on top of the defaults. A missing
// file is not an error; every option can also be set through the environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, database.host can be set using: <envVarPrefix>_DATABASE_HOST
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	config := &Config{configDir: configPath}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config object: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the options that can't be caught by decoding alone.
func (c *Config) Validate() error {
	if _, err := c.ClockLocation(); err != nil {
		return err
	}
	switch strings.ToLower(c.Database.Engine) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database engine: %q", c.Database.Engine)
	}
	if c.Auth.MaxClockSkew < 0 {
		return fmt.Errorf("auth.max_clock_skew must not be negative")
	}
	if c.Auth.KeyCacheTTL < 0 {
		return fmt.Errorf("auth.key_cache_ttl must not be negative")
	}
	if c.Terminal.Key != "" {
		if _, err := c.TerminalKey(); err != nil {
			return err
		}
	}
	return nil
}

// ClockLocation returns the location clientTime values are expressed in.
func (c *Config) ClockLocation() (*time.Location, error) {
	switch strings.ToLower(c.Terminal.Clock) {
	case "", "utc":
		return time.UTC, nil
	case "local":
		return time.Local, nil
	default:
		return nil, fmt.Errorf("invalid terminal.clock %q (expected utc or local)", c.Terminal.Clock)
	}
}

// TerminalKey parses the configured default terminal key.
func (c *Config) TerminalKey() (encryption.TerminalKey, error) {
	key, err := encryption.ParseTerminalKey(c.Terminal.Key)
	if err != nil {
		return key, fmt.Errorf("invalid terminal.key: %w", err)
	}
	return key, nil
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a database URL generated from the provided config values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}

// QualifiedPath returns path relative to the config directory unless it's absolute.
func (c *Config) QualifiedPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.configDir, path)
}
