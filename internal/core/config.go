package core

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/lane/internal/storage"
	"github.com/valter-silva-au/lane/pkg/models"
)

// ConfigurationManager loads engine configuration from .lane/config.yaml,
// falling back to defaults when the file is absent.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
}

// viperConfigManager implements ConfigurationManager using Viper.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with the engine defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		WorkDir:         "work",
		DefaultWorkType: models.TypeFullstack,
		TagPrefix:       "item",
		Remote:          "origin",
		PushTags:        true,
		GitTimeout:      30 * time.Second,
		AdvisoryLock:    true,
	}
}

// LoadConfig reads .lane/config.yaml via Viper. A missing file returns the
// defaults; LANE_* environment variables override file values.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(cm.basePath, storage.EngineDir))
	v.SetEnvPrefix("LANE")
	v.AutomaticEnv()

	v.SetDefault("work_dir", cfg.WorkDir)
	v.SetDefault("default_work_type", string(cfg.DefaultWorkType))
	v.SetDefault("tag_prefix", cfg.TagPrefix)
	v.SetDefault("remote", cfg.Remote)
	v.SetDefault("push_tags", cfg.PushTags)
	v.SetDefault("git_timeout", cfg.GitTimeout)
	v.SetDefault("advisory_lock", cfg.AdvisoryLock)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.DefaultWorkType.Valid() {
		return nil, fmt.Errorf("config: unknown default_work_type %q", cfg.DefaultWorkType)
	}
	return cfg, nil
}
