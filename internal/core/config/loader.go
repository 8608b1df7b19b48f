package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Category == "" {
			cfg.Sources[i].Category = "국제"
		}
	}

	t := &cfg.Transport
	if t.DirectTimeout == 0 {
		t.DirectTimeout = 2 * time.Second
	}
	if t.RelayTimeout == 0 {
		t.RelayTimeout = 1500 * time.Millisecond
	}
	if t.ProxyTimeout == 0 {
		t.ProxyTimeout = 1500 * time.Millisecond
	}
	if t.RelayEndpoint == "" {
		t.RelayEndpoint = DefaultRelayEndpoint
	}
	if len(t.Proxies) == 0 {
		t.Proxies = DefaultProxies()
	}
	if t.UserAgent == "" {
		t.UserAgent = DefaultUserAgent
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}

	db := &cfg.Database
	if db.Driver == "" {
		switch {
		case db.URL != "":
			db.Driver = "postgres"
		case db.Path != "":
			db.Driver = "sqlite"
		default:
			db.Driver = "memory"
		}
	}
	if db.Driver == "sqlite" && db.Path == "" {
		db.Path = filepath.Join(xdg.DataHome, "goodnews", "goodnews.db")
	}

	if cfg.Collection.Schedule == "" {
		cfg.Collection.Schedule = DefaultSchedule
	}
	if cfg.Collection.Timezone == "" {
		cfg.Collection.Timezone = "UTC"
	}
	if cfg.Collection.RetryAttempts == 0 {
		cfg.Collection.RetryAttempts = 3
	}
}
