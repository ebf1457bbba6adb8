// Package core contains the business logic for Luna: configuration, word
// counting, the guided-prompt session state machine, the journaling
// orchestrator, and the weekly review flow.
package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ebetancourt/luna/pkg/models"
	"github.com/spf13/viper"
)

// ConfigurationManager defines the interface for loading and validating the
// process-wide configuration from .lunaconfig and LUNA_* env overrides.
type ConfigurationManager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for reading
// the YAML configuration file.
type viperConfigManager struct {
	// basePath is the directory where .lunaconfig resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads the
// configuration file relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig(basePath string) *models.Config {
	return &models.Config{
		JournalDir:   filepath.Join(basePath, "journal"),
		DatabasePath: filepath.Join(basePath, "luna.sqlite3"),
		EventLogPath: filepath.Join(basePath, ".luna_events.jsonl"),
		Journaling: models.JournalingConfig{
			WordCountThreshold:   150,
			SummaryRatio:         0.2,
			SummarizationEnabled: true,
			SummaryMinWords:      20,
			MaxSummaryAttempts:   3,
		},
		Model: models.ModelConfig{
			Name:           "gpt-5-mini",
			TimeoutSeconds: 60,
		},
		Server: models.ServerConfig{
			ListenAddr: "127.0.0.1:8080",
		},
	}
}

// Load reads .lunaconfig from the base path using Viper. Missing file means
// defaults; LUNA_* environment variables override file values. The returned
// config has already passed Validate.
func (cm *viperConfigManager) Load() (*models.Config, error) {
	cfg := DefaultConfig(cm.basePath)

	v := viper.New()
	v.SetConfigName(".lunaconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("LUNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("journal_dir", cfg.JournalDir)
	v.SetDefault("database_path", cfg.DatabasePath)
	v.SetDefault("event_log_path", cfg.EventLogPath)
	v.SetDefault("journaling.word_count_threshold", cfg.Journaling.WordCountThreshold)
	v.SetDefault("journaling.summary_ratio", cfg.Journaling.SummaryRatio)
	v.SetDefault("journaling.summarization_enabled", cfg.Journaling.SummarizationEnabled)
	v.SetDefault("journaling.summary_min_words", cfg.Journaling.SummaryMinWords)
	v.SetDefault("journaling.max_summary_attempts", cfg.Journaling.MaxSummaryAttempts)
	v.SetDefault("model.name", cfg.Model.Name)
	v.SetDefault("model.timeout_seconds", cfg.Model.TimeoutSeconds)
	v.SetDefault("server.listen_addr", cfg.Server.ListenAddr)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .lunaconfig: %w", err)
		}
		// No config file found; env overrides still apply below.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding .lunaconfig: %w", err)
	}

	if err := cm.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range values and returns a
// single error listing every offending key. Validation failures are fatal at
// startup, never at request time.
func (cm *viperConfigManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	j := cfg.Journaling
	if j.WordCountThreshold < 10 || j.WordCountThreshold > 1000 {
		errs = append(errs, fmt.Sprintf(
			"journaling.word_count_threshold %d is invalid, must be between 10 and 1000",
			j.WordCountThreshold,
		))
	}
	if j.SummaryRatio <= 0 || j.SummaryRatio > 1.0 {
		errs = append(errs, fmt.Sprintf(
			"journaling.summary_ratio %g is invalid, must be greater than 0 and at most 1.0",
			j.SummaryRatio,
		))
	}
	if j.SummaryMinWords < 5 || j.SummaryMinWords > 100 {
		errs = append(errs, fmt.Sprintf(
			"journaling.summary_min_words %d is invalid, must be between 5 and 100",
			j.SummaryMinWords,
		))
	}
	if j.MaxSummaryAttempts < 1 || j.MaxSummaryAttempts > 10 {
		errs = append(errs, fmt.Sprintf(
			"journaling.max_summary_attempts %d is invalid, must be between 1 and 10",
			j.MaxSummaryAttempts,
		))
	}

	if cfg.JournalDir == "" {
		errs = append(errs, "journal_dir must not be empty")
	}
	if cfg.Model.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Sprintf(
			"model.timeout_seconds %d is invalid, must be positive",
			cfg.Model.TimeoutSeconds,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
