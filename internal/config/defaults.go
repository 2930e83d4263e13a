package config

import (
	"time"

	"github.com/hyperjump/windguide/internal/catalog"
	"github.com/hyperjump/windguide/internal/models"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimit.RPS > 0 && cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = int(cfg.Server.RateLimit.RPS*2) + 1
	}
	if cfg.Catalog.Hints == nil {
		cfg.Catalog.Hints = catalog.DefaultHints()
	}
	if cfg.Search.MaxResults <= 0 || cfg.Search.MaxResults > models.MaxSearchLimit {
		cfg.Search.MaxResults = models.MaxSearchLimit
	}
	if cfg.Search.SuggestFuzziness <= 0 || cfg.Search.SuggestFuzziness > 2 {
		cfg.Search.SuggestFuzziness = 2
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/windguide/windguide.db"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 1024
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = "localhost:6379"
	}
}
