package config

import (
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
	redisclient "github.com/vietddude/goodnews/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server        ServerConfig              `yaml:"server"`
	Logging       LoggingConfig             `yaml:"logging"`
	Sources       []domain.SourceDescriptor `yaml:"sources"`
	BackupSources []domain.SourceDescriptor `yaml:"backup_sources"`
	Transport     TransportConfig           `yaml:"transport"`
	Aggregator    AggregatorConfig          `yaml:"aggregator"`
	Classifier    ClassifierConfig          `yaml:"classifier"`
	Cache         CacheConfig               `yaml:"cache"`
	Redis         redisclient.Config        `yaml:"redis"`
	Database      DatabaseConfig            `yaml:"database"`
	Collection    CollectionConfig          `yaml:"collection"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // link advertised in the RSS channel
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// TransportConfig controls the three fetch strategies.
type TransportConfig struct {
	DirectTimeout time.Duration `yaml:"direct_timeout"`
	RelayTimeout  time.Duration `yaml:"relay_timeout"`
	ProxyTimeout  time.Duration `yaml:"proxy_timeout"` // per proxy candidate
	RelayEndpoint string        `yaml:"relay_endpoint"`
	Proxies       []string      `yaml:"proxies"` // {url} or {escaped} placeholders
	UserAgent     string        `yaml:"user_agent"`
}

type AggregatorConfig struct {
	MaxConcurrency int `yaml:"max_concurrency"` // 0 = one goroutine per source
}

// ClassifierConfig overrides the built-in keyword sets. Empty fields keep defaults.
type ClassifierConfig struct {
	Positive        []string         `yaml:"positive"`
	Negative        []string         `yaml:"negative"`
	Categories      []CategoryConfig `yaml:"categories"`
	DefaultCategory string           `yaml:"default_category"`
	Threshold       int              `yaml:"threshold"`
}

type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CacheConfig selects the resolver cache backend.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory, redis
	TTL     time.Duration `yaml:"ttl"`
}

// DatabaseConfig selects the repository backend.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres, pgx, sqlite, memory
	URL      string `yaml:"url"`
	Path     string `yaml:"path"` // sqlite only
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CollectionConfig drives scheduled collection and pruning.
type CollectionConfig struct {
	Schedule        string        `yaml:"schedule"` // cron expression, "off" disables
	Timezone        string        `yaml:"timezone"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetentionPeriod time.Duration `yaml:"retention_period"` // 0 = infinite
}
