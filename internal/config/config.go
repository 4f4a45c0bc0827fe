package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"-"`
	WriteTimeout      time.Duration `yaml:"-"`
	IdleTimeout       time.Duration `yaml:"-"`
	ShutdownTimeout   time.Duration `yaml:"-"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	AllowedOriginsCSV string        `yaml:"allowed_origins"`
}

// AnalyzerConfig tunes the analysis pipeline.
type AnalyzerConfig struct {
	// ParseWorkers caps concurrent sheet parsing per upload.
	ParseWorkers int `yaml:"parse_workers"`
	// BridgeWindowMinutes bounds cross-chain bridge matching.
	BridgeWindowMinutes int `yaml:"bridge_window_minutes"`
}

// BridgeWindow returns the bridge matching window as a duration.
func (c AnalyzerConfig) BridgeWindow() time.Duration {
	return time.Duration(c.BridgeWindowMinutes) * time.Minute
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // text|json
	IncludeCaller bool   `yaml:"include_caller"`
}

const (
	defaultHost                = "0.0.0.0"
	defaultPort                = 8080
	defaultReadTimeout         = 10 * time.Second
	defaultWriteTimeout        = 30 * time.Second
	defaultIdleTimeout         = 60 * time.Second
	defaultShutdownTimeout     = 10 * time.Second
	defaultMaxUploadBytes      = 32 << 20
	defaultParseWorkers        = 4
	defaultBridgeWindowMinutes = 180
	defaultLoggingLevel        = "info"
	defaultLoggingFormat       = "text"
)

// Load reads configuration in two layers: an optional YAML file named by
// CONFIG_FILE, then environment variables on top. Env always wins.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxUploadBytes:  defaultMaxUploadBytes,
		},
		Analyzer: AnalyzerConfig{
			ParseWorkers:        defaultParseWorkers,
			BridgeWindowMinutes: defaultBridgeWindowMinutes,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)

	port, err := parsePort("SERVER_PORT", cfg.HTTP.Port)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = port

	for _, entry := range []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
	} {
		if v := os.Getenv(entry.key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", entry.key, err)
			}
			*entry.target = d
		}
	}

	if v := os.Getenv("SERVER_MAX_UPLOAD_BYTES"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SERVER_MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.HTTP.MaxUploadBytes = size
	}
	cfg.HTTP.AllowedOriginsCSV = valueOrDefault("SERVER_ALLOWED_ORIGINS", cfg.HTTP.AllowedOriginsCSV)

	cfg.Analyzer.ParseWorkers = parseIntWithDefault("ANALYZER_PARSE_WORKERS", cfg.Analyzer.ParseWorkers)
	cfg.Analyzer.BridgeWindowMinutes = parseIntWithDefault("ANALYZER_BRIDGE_WINDOW_MINUTES", cfg.Analyzer.BridgeWindowMinutes)
	if cfg.Analyzer.ParseWorkers < 1 {
		return fmt.Errorf("parse workers must be positive, got %d", cfg.Analyzer.ParseWorkers)
	}
	if cfg.Analyzer.BridgeWindowMinutes < 1 {
		return fmt.Errorf("bridge window must be positive, got %d minutes", cfg.Analyzer.BridgeWindowMinutes)
	}

	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
