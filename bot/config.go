package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sotlfg/lfgbot/bot/listing"
	coreconfig "github.com/sotlfg/lfgbot/core/config"
	coredatabase "github.com/sotlfg/lfgbot/core/database"
)

// ChannelsConfig names the two operational channel destinations.
type ChannelsConfig struct {
	Listings   int64 `yaml:"listings" envconfig:"LISTINGS_CHANNEL_ID"`
	Moderation int64 `yaml:"moderation" envconfig:"MODERATION_CHANNEL_ID"`
}

// ModerationConfig seeds the process-wide moderation policy.
type ModerationConfig struct {
	// Default is the policy mode at startup: "manual" or "auto".
	Default string `yaml:"default" envconfig:"MODERATION_DEFAULT"`
}

// ExpiryConfig controls the expired-listing sweep.
type ExpiryConfig struct {
	// Schedule is a cron spec; empty disables the sweep.
	Schedule string `yaml:"schedule" envconfig:"EXPIRY_SCHEDULE"`
}

// Config is the application configuration: the reusable core plus LFG-specific settings.
type Config struct {
	Core       coreconfig.Config   `yaml:",inline"`
	Database   coredatabase.Config `yaml:"database"`
	Channels   ChannelsConfig      `yaml:"channels"`
	AdminIDs   []int64             `yaml:"admin_ids" envconfig:"ADMIN_IDS"`
	Moderation ModerationConfig    `yaml:"moderation"`
	Expiry     ExpiryConfig        `yaml:"expiry"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Core
}

// LoadConfig reads the application config from YAML with env overrides.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if cfg.Channels.Listings == 0 {
		return fmt.Errorf("channels.listings is required")
	}
	if cfg.Channels.Moderation == 0 {
		return fmt.Errorf("channels.moderation is required")
	}
	switch cfg.Moderation.Default {
	case "":
		cfg.Moderation.Default = listing.ModerationManual
	case listing.ModerationManual, listing.ModerationAuto:
	default:
		return fmt.Errorf("invalid moderation.default %q; allowed: manual, auto", cfg.Moderation.Default)
	}
	if cfg.Expiry.Schedule == "" {
		cfg.Expiry.Schedule = "@hourly"
	}
	return nil
}
