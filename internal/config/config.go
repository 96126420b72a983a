package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"gocit/domain/core"
	"gocit/internal/errors"
)

// Significance selects how a statistic is turned into a p-value
type Significance string

const (
	SignificanceAnalytic   Significance = "analytic"
	SignificanceShuffle    Significance = "shuffle_test"
	SignificanceFixedThres Significance = "fixed_thres"
)

// Confidence selects how a statistic is turned into an interval
type Confidence string

const (
	ConfidenceNone      Confidence = "none"
	ConfidenceAnalytic  Confidence = "analytic"
	ConfidenceBootstrap Confidence = "bootstrap"
)

// TestConfig holds the settings of one conditional independence test object
type TestConfig struct {
	Significance   Significance `yaml:"significance"`
	FixedThres     float64      `yaml:"fixed_thres"`
	SigSamples     int          `yaml:"sig_samples"`
	SigBlockLength int          `yaml:"sig_blocklength"` // 0 = estimate from autocorrelation

	Confidence      Confidence `yaml:"confidence"`
	ConfLev         float64    `yaml:"conf_lev"`
	ConfSamples     int        `yaml:"conf_samples"`
	ConfBlockLength int        `yaml:"conf_blocklength"` // 0 = estimate from autocorrelation

	UseMask  bool   `yaml:"use_mask"`
	MaskType string `yaml:"mask_type"` // any combination of x, y, z

	RecycleResiduals  bool `yaml:"recycle_residuals"`
	ResidualCacheSize int  `yaml:"residual_cache_size"`

	Workers  int    `yaml:"workers"`
	Seed     int64  `yaml:"seed"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is overridden
func Default() TestConfig {
	return TestConfig{
		Significance:      SignificanceAnalytic,
		FixedThres:        0.1,
		SigSamples:        100,
		Confidence:        ConfidenceNone,
		ConfLev:           0.9,
		ConfSamples:       100,
		MaskType:          "xyz",
		ResidualCacheSize: 4096,
		Workers:           1,
		Seed:              42,
		LogLevel:          "INFO",
	}
}

// Load reads configuration from defaults, an optional .env file and CIT_* environment variables
func Load() (*TestConfig, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	cfg := Default()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

func applyEnv(cfg *TestConfig) {
	cfg.Significance = Significance(getEnvOrDefault("CIT_SIGNIFICANCE", string(cfg.Significance)))
	cfg.FixedThres = getEnvFloatOrDefault("CIT_FIXED_THRES", cfg.FixedThres)
	cfg.SigSamples = getEnvIntOrDefault("CIT_SIG_SAMPLES", cfg.SigSamples)
	cfg.SigBlockLength = getEnvIntOrDefault("CIT_SIG_BLOCKLENGTH", cfg.SigBlockLength)

	cfg.Confidence = Confidence(getEnvOrDefault("CIT_CONFIDENCE", string(cfg.Confidence)))
	cfg.ConfLev = getEnvFloatOrDefault("CIT_CONF_LEV", cfg.ConfLev)
	cfg.ConfSamples = getEnvIntOrDefault("CIT_CONF_SAMPLES", cfg.ConfSamples)
	cfg.ConfBlockLength = getEnvIntOrDefault("CIT_CONF_BLOCKLENGTH", cfg.ConfBlockLength)

	cfg.UseMask = getEnvBoolOrDefault("CIT_USE_MASK", cfg.UseMask)
	cfg.MaskType = getEnvOrDefault("CIT_MASK_TYPE", cfg.MaskType)

	cfg.RecycleResiduals = getEnvBoolOrDefault("CIT_RECYCLE_RESIDUALS", cfg.RecycleResiduals)
	cfg.ResidualCacheSize = getEnvIntOrDefault("CIT_RESIDUAL_CACHE_SIZE", cfg.ResidualCacheSize)

	cfg.Workers = getEnvIntOrDefault("CIT_WORKERS", cfg.Workers)
	cfg.Seed = int64(getEnvIntOrDefault("CIT_SEED", int(cfg.Seed)))
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
}

// Validate checks strategy names, sample counts and the mask type.
// Confidence settings are checked by ValidateConfidence when an interval is requested.
func (c *TestConfig) Validate() error {
	switch c.Significance {
	case SignificanceAnalytic, SignificanceShuffle, SignificanceFixedThres:
	default:
		return errors.InvalidConfig("significance %q not known", c.Significance)
	}
	switch c.Confidence {
	case ConfidenceNone, ConfidenceAnalytic, ConfidenceBootstrap:
	case "":
		c.Confidence = ConfidenceNone
	default:
		return errors.InvalidConfig("%s confidence estimation not implemented", c.Confidence)
	}
	if c.Significance == SignificanceShuffle && c.SigSamples <= 0 {
		return errors.InvalidConfig("sig_samples = %d, must be positive", c.SigSamples)
	}
	if c.SigBlockLength < 0 || c.ConfBlockLength < 0 {
		return errors.InvalidConfig("block lengths must be non-negative")
	}
	if c.UseMask {
		if _, err := core.ParseMaskType(c.MaskType); err != nil {
			return err
		}
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// ValidateConfidence checks conf_lev and, for bootstrap, the resample count.
// It is a no-op when confidence estimation is disabled.
func (c *TestConfig) ValidateConfidence() error {
	if c.Confidence == ConfidenceNone || c.Confidence == "" {
		return nil
	}
	if c.ConfLev < 0.5 || c.ConfLev >= 1 {
		return errors.InvalidConfig("conf_lev = %.2f, but must be between 0.5 and 1", c.ConfLev)
	}
	if c.Confidence == ConfidenceBootstrap {
		if tail := float64(c.ConfSamples) * (1 - c.ConfLev) / 2; tail < 1 {
			return errors.InvalidConfig("conf_samples*(1-conf_lev)/2 is %.2f, must be >> 1", tail)
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
