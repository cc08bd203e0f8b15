package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"streamta/internal/indicator"
	"streamta/internal/logger"
)

// Config holds the indicator engine configuration.
type Config struct {
	LogLevel         string `yaml:"log_level"`
	MetricsNamespace string `yaml:"metrics_namespace"`

	// Result channel capacity for Engine.Run
	ResultBuffer int `yaml:"result_buffer"`
	// Symbols keeping indicator state; 0 means the engine default
	MaxSymbols   int `yaml:"max_symbols"`

	Indicators []indicator.IndicatorConfig `yaml:"indicators"`
}

// DefaultIndicators is used when no indicators are configured.
func DefaultIndicators() []indicator.IndicatorConfig {
	return []indicator.IndicatorConfig{
		{Type: "SMA", Period: 9},
		{Type: "SMA", Period: 20},
		{Type: "EMA", Period: 9},
		{Type: "EMA", Period: 21},
		{Type: "RSI", Period: 14},
		{Type: "MACD", Periods: []int{12, 26, 9}},
		{Type: "BOLL", Period: 20, DOF: 1},
		{Type: "ATR", Period: 14},
		{Type: "OBV"},
		{Type: "STOCH", Period: 14},
	}
}

// Load reads configuration from environment variables with sensible defaults.
//
//	LOG_LEVEL          debug|info|warn|error (default info)
//	METRICS_NAMESPACE  Prometheus namespace (default "streamta")
//	RESULT_BUFFER      result channel capacity (default 1024)
//	MAX_SYMBOLS        symbols keeping indicator state (default 0, engine default)
//	INDICATORS         "TYPE:P1/P2,..." e.g. "SMA:20,MACD:12/26/9,OBV"
func Load() *Config {
	buf := getEnvInt("RESULT_BUFFER", 1024)
	if buf <= 0 {
		slog.Warn("RESULT_BUFFER must be positive, using default", "component", "config", "value", buf)
		buf = 1024
	}
	maxSymbols := getEnvInt("MAX_SYMBOLS", 0)
	if maxSymbols < 0 {
		slog.Warn("MAX_SYMBOLS must not be negative, using default", "component", "config", "value", maxSymbols)
		maxSymbols = 0
	}
	return &Config{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "streamta"),
		ResultBuffer:     buf,
		MaxSymbols:       maxSymbols,
		Indicators:       ParseIndicatorSpecs(getEnv("INDICATORS", "")),
	}
}

// Parse decodes a YAML document. Unset fields take the same defaults as Load.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = "streamta"
	}
	if c.ResultBuffer == 0 {
		c.ResultBuffer = 1024
	}
	if len(c.Indicators) == 0 {
		c.Indicators = DefaultIndicators()
	}
	return &c, nil
}

// Validate checks the configuration before any engine is built.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ResultBuffer <= 0 {
		return fmt.Errorf("config: result_buffer must be positive, got %d", c.ResultBuffer)
	}
	if c.MaxSymbols < 0 {
		return fmt.Errorf("config: max_symbols must not be negative, got %d", c.MaxSymbols)
	}
	if len(c.Indicators) == 0 {
		return errors.New("config: no indicators configured")
	}
	if err := indicator.ValidateConfigs(c.Indicators); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the parsed log level, info when unparseable.
func (c *Config) Level() slog.Level {
	lvl, _ := logger.ParseLevel(c.LogLevel)
	return lvl
}

// ParseIndicatorSpecs parses "TYPE:P1/P2,..." into []IndicatorConfig.
// Periods are separated by "/" (MACD:12/26/9); OBV takes none.
// Invalid entries are skipped. Returns defaults if nothing valid is found.
func ParseIndicatorSpecs(s string) []indicator.IndicatorConfig {
	if strings.TrimSpace(s) == "" {
		return DefaultIndicators()
	}

	var configs []indicator.IndicatorConfig
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cfg, err := parseSpec(part)
		if err != nil {
			slog.Warn("skipping invalid indicator spec", "component", "config", "spec", part, "error", err)
			continue
		}
		configs = append(configs, cfg)
	}
	if len(configs) == 0 {
		slog.Warn("no valid indicators parsed, using defaults", "component", "config")
		return DefaultIndicators()
	}
	slog.Debug("loaded indicator specs", "component", "config", "count", len(configs))
	return configs
}

func parseSpec(part string) (indicator.IndicatorConfig, error) {
	typ, rest, hasPeriods := strings.Cut(part, ":")
	typ = strings.ToUpper(strings.TrimSpace(typ))

	var periods []int
	if hasPeriods {
		for _, p := range strings.Split(rest, "/") {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n <= 0 {
				return indicator.IndicatorConfig{}, fmt.Errorf("bad period %q", p)
			}
			periods = append(periods, n)
		}
	}

	cfg := indicator.IndicatorConfig{Type: typ}
	switch {
	case typ == "MACD":
		cfg.Periods = periods
	case len(periods) == 1:
		cfg.Period = periods[0]
	case len(periods) > 1:
		return cfg, fmt.Errorf("%s takes one period, got %d", typ, len(periods))
	}
	if typ == "BOLL" {
		cfg.DOF = 1
	}
	if _, err := indicator.New(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// getEnvInt returns fallback, with a warning, when key is set but not an integer.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("invalid integer env value, using default", "component", "config", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
