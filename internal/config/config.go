package config

import (
	"os"
	"strconv"

	"gometa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Synthesis SynthesisConfig `validate:"required"`
	Dedupe    DedupeConfig    `validate:"required"`
}

// SynthesisConfig holds pooling pipeline settings
type SynthesisConfig struct {
	// MaxConcurrent bounds how many analyses a batch runs in parallel
	MaxConcurrent int64
	// MinStudies is the smallest poolable study count a request may carry
	MinStudies int
	// StoreArtifacts controls whether per-analysis artifacts are written
	// to the ledger (the batch manifest is always written)
	StoreArtifacts bool
	// CodeVersion is stamped into every fingerprint for replay audits
	CodeVersion string
}

// DedupeConfig holds reference screening settings
type DedupeConfig struct {
	FuzzyThreshold float64
	YearTolerance  int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Synthesis: loadSynthesisConfig(),
		Dedupe:    loadDedupeConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		MaxConcurrent:  int64(getEnvIntOrDefault("SYNTHESIS_MAX_CONCURRENT", 4)),
		MinStudies:     getEnvIntOrDefault("SYNTHESIS_MIN_STUDIES", 1),
		StoreArtifacts: getEnvBoolOrDefault("SYNTHESIS_STORE_ARTIFACTS", true),
		CodeVersion:    getEnvOrDefault("CODE_VERSION", "v0.1.0"),
	}
}

func loadDedupeConfig() DedupeConfig {
	return DedupeConfig{
		FuzzyThreshold: getEnvFloatOrDefault("DEDUPE_FUZZY_THRESHOLD", 0.90),
		YearTolerance:  getEnvIntOrDefault("DEDUPE_YEAR_TOLERANCE", 1),
	}
}

func validateConfig(config *Config) error {
	if config.Synthesis.MaxConcurrent < 1 {
		return errors.ConfigInvalid("SYNTHESIS_MAX_CONCURRENT must be at least 1")
	}
	if config.Synthesis.MinStudies < 1 {
		return errors.ConfigInvalid("SYNTHESIS_MIN_STUDIES must be at least 1")
	}
	if config.Synthesis.CodeVersion == "" {
		return errors.ConfigInvalid("CODE_VERSION cannot be empty")
	}
	if config.Dedupe.FuzzyThreshold <= 0 || config.Dedupe.FuzzyThreshold > 1 {
		return errors.ConfigInvalid("DEDUPE_FUZZY_THRESHOLD must be in (0, 1]")
	}
	if config.Dedupe.YearTolerance < 0 {
		return errors.ConfigInvalid("DEDUPE_YEAR_TOLERANCE cannot be negative")
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
