package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the decision engine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Store    StoreConfig    `yaml:"store"`
	Producer ProducerConfig `yaml:"producer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// EngineConfig holds gating thresholds and rate-limit settings. These are
// static for the engine's lifetime.
type EngineConfig struct {
	ConfidenceThreshold       float64  `yaml:"confidenceThreshold"`
	MaxAutoDeploymentsPerHour int      `yaml:"maxAutoDeploymentsPerHour"`
	BusinessHoursOnly         bool     `yaml:"businessHoursOnly"`
	CriticalServices          []string `yaml:"criticalServices"`
}

// StoreConfig controls SQLite persistence of finalized decisions.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ProducerConfig configures the optional poll loop against the analysis
// producer. A zero PollInterval disables polling.
type ProducerConfig struct {
	BaseURL      string        `yaml:"baseURL"`
	AnalysisPath string        `yaml:"analysisPath"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DECISION_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Engine: EngineConfig{
			ConfidenceThreshold:       0.8,
			MaxAutoDeploymentsPerHour: 5,
			BusinessHoursOnly:         false,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "decisions.db",
		},
		Producer: ProducerConfig{
			AnalysisPath: "/api/v1/analysis/pending",
			Timeout:      5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DECISION_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("DECISION_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("DECISION_ENGINE_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.ConfidenceThreshold = f
		}
	}
	if v := os.Getenv("DECISION_ENGINE_MAX_AUTO_PER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxAutoDeploymentsPerHour = n
		}
	}
	if v := os.Getenv("DECISION_ENGINE_BUSINESS_HOURS_ONLY"); v != "" {
		cfg.Engine.BusinessHoursOnly = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("DECISION_ENGINE_CRITICAL_SERVICES"); v != "" {
		services := strings.Split(v, ",")
		cfg.Engine.CriticalServices = cfg.Engine.CriticalServices[:0]
		for _, svc := range services {
			if svc = strings.TrimSpace(svc); svc != "" {
				cfg.Engine.CriticalServices = append(cfg.Engine.CriticalServices, svc)
			}
		}
	}
	if v := os.Getenv("DECISION_ENGINE_STORE_ENABLED"); v != "" {
		cfg.Store.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("DECISION_ENGINE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("DECISION_ENGINE_PRODUCER_BASE_URL"); v != "" {
		cfg.Producer.BaseURL = v
	}
	if v := os.Getenv("DECISION_ENGINE_PRODUCER_ANALYSIS_PATH"); v != "" {
		cfg.Producer.AnalysisPath = v
	}
	if v := os.Getenv("DECISION_ENGINE_PRODUCER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Producer.Timeout = d
		}
	}
	if v := os.Getenv("DECISION_ENGINE_PRODUCER_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Producer.PollInterval = d
		}
	}
	if v := os.Getenv("DECISION_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DECISION_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}
