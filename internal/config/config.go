package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/divvy/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Dashboard   DashboardConfig      `toml:"dashboard"`
	Cache       CacheConfig          `toml:"cache"`
	MCP         MCPConfig            `toml:"mcp"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// DashboardConfig contains dataset and table settings.
type DashboardConfig struct {
	PageSize           int      `toml:"page_size"`
	SummaryPageSize    int      `toml:"summary_page_size"`
	SampleURL          string   `toml:"sample_url"`
	FetchTimeout       Duration `toml:"fetch_timeout"`
	MaxUploadMB        int      `toml:"max_upload_mb"`
	UploadRatePerMin   int      `toml:"upload_rate_per_minute"`
	LoadDefaultOnStart bool     `toml:"load_default_on_start"`
}

// CacheConfig contains default dataset cache settings.
type CacheConfig struct {
	TTL        Duration `toml:"ttl"`
	MaxEntries int      `toml:"max_entries"`
}

// MCPConfig controls the MCP endpoint.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// Duration is a time.Duration read from TOML as a string such as "15m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Dashboard.MaxUploadMB) << 20
}

// IsDevMode reports whether the environment is "dev".
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("failed to load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// applyEnvOverrides applies DIVVY_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DIVVY_ENVIRONMENT"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("DIVVY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("DIVVY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if url, ok := os.LookupEnv("DIVVY_SAMPLE_URL"); ok {
		config.Dashboard.SampleURL = url
	}
	if v := os.Getenv("DIVVY_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Dashboard.PageSize = n
		}
	}
	if v := os.Getenv("DIVVY_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Dashboard.MaxUploadMB = n
		}
	}
	if v := os.Getenv("DIVVY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Cache.TTL = Duration{d}
		}
	}
	if v := os.Getenv("DIVVY_MCP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.MCP.Enabled = b
		}
	}
	if level := os.Getenv("DIVVY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("DIVVY_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
