package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is the prefix for environment variable overrides (e.g. TMDBX_API_KEY).
const EnvPrefix = "TMDBX"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Session  SessionConfig  `toml:"session"`
}

// TMDBConfig contains TMDB API settings.
type TMDBConfig struct {
	APIURL         string  `toml:"api_url"`
	APIKey         string  `toml:"api_key"`
	AccessToken    string  `toml:"access_token"`
	ImageBaseURL   string  `toml:"image_base_url"`
	Language       string  `toml:"language"`
	RateLimit      float64 `toml:"rate_limit"`
	Burst          int     `toml:"burst"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Timeout returns the HTTP client timeout, zero meaning none.
func (c TMDBConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local approval callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [http.Server].
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionConfig controls session restoration retries.
type SessionConfig struct {
	RestoreAttempts      int `toml:"restore_attempts"`
	RestoreBaseBackoffMS int `toml:"restore_base_backoff_ms"`
	RestoreMaxIntervalMS int `toml:"restore_max_interval_ms"`
}

// envOverrides lists the settings that can be overridden from the environment.
type envOverrides struct {
	BaseURL     string  `split_words:"true"`
	APIKey      string  `split_words:"true"`
	AccessToken string  `split_words:"true"`
	Language    string
	RateLimit   float64 `split_words:"true"`
	DBPath      string  `split_words:"true"`
	ServerHost  string  `split_words:"true"`
	ServerPort  int     `split_words:"true"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values with any TMDBX_* environment variables that are set
// (TMDBX_BASE_URL, TMDBX_API_KEY, TMDBX_ACCESS_TOKEN, TMDBX_LANGUAGE, TMDBX_RATE_LIMIT, TMDBX_DB_PATH, TMDBX_SERVER_HOST, TMDBX_SERVER_PORT).
func ApplyEnv(c *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if env.BaseURL != "" {
		c.TMDB.APIURL = env.BaseURL
	}
	if env.APIKey != "" {
		c.TMDB.APIKey = env.APIKey
	}
	if env.AccessToken != "" {
		c.TMDB.AccessToken = env.AccessToken
	}
	if env.Language != "" {
		c.TMDB.Language = env.Language
	}
	if env.RateLimit > 0 {
		c.TMDB.RateLimit = env.RateLimit
	}
	if env.DBPath != "" {
		c.Database.Path = env.DBPath
	}
	if env.ServerHost != "" {
		c.Server.Host = env.ServerHost
	}
	if env.ServerPort > 0 {
		c.Server.Port = env.ServerPort
	}
	return nil
}

// Validate checks that the settings needed to reach the API are present.
func (c *Config) Validate() error {
	if c.TMDB.APIURL == "" {
		return fmt.Errorf("%w: tmdb.api_url is empty", ErrInvalidConfig)
	}
	if c.TMDB.APIKey == "" && c.TMDB.AccessToken == "" {
		return fmt.Errorf("%w: set tmdb.api_key or %s_API_KEY", ErrMissingCredentials, EnvPrefix)
	}
	return nil
}
