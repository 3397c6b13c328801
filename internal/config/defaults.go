package config

import (
	"time"

	"github.com/bobmcallan/divvy/internal/common"
)

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4251,
			Host: "localhost",
		},
		Dashboard: DashboardConfig{
			PageSize:           10,
			SummaryPageSize:    10,
			SampleURL:          "",
			FetchTimeout:       Duration{10 * time.Second},
			MaxUploadMB:        5,
			UploadRatePerMin:   30,
			LoadDefaultOnStart: true,
		},
		Cache: CacheConfig{
			TTL:        Duration{15 * time.Minute},
			MaxEntries: 8,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
	}
}
