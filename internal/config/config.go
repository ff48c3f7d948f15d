// Package config loads the daemon configuration: built-in defaults, then
// the YAML file, then WATERME_ environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/go-homedir"
)

const envPrefix = "WATERME_"

type Config struct {
	Debug  bool         `koanf:"debug"`
	Daemon DaemonConfig `koanf:"daemon"`
	API    APIConfig    `koanf:"api"`
	Notify NotifyConfig `koanf:"notify"`
}

type DaemonConfig struct {
	QuietPeriod      time.Duration `koanf:"quiet_period"`
	RunTimeout       time.Duration `koanf:"run_timeout"`
	DeliveryInterval time.Duration `koanf:"delivery_interval"`
	DayCheckInterval time.Duration `koanf:"day_check_interval"`
	Watch            bool          `koanf:"watch"` // follow writes made by other processes
}

type APIConfig struct {
	Enabled bool   `koanf:"enabled"`
	Listen  string `koanf:"listen"`
	IconDir string `koanf:"icon_dir"`
}

type NotifyConfig struct {
	Tray     TrayConfig     `koanf:"tray"`
	Telegram TelegramConfig `koanf:"telegram"`
	FCM      FCMConfig      `koanf:"fcm"`
}

type TrayConfig struct {
	Enabled bool `koanf:"enabled"`
}

type TelegramConfig struct {
	Enabled  bool   `koanf:"enabled"`
	ChatID   string `koanf:"chat_id"`
	BotToken string `koanf:"bot_token"`
}

type FCMConfig struct {
	Enabled         bool     `koanf:"enabled"`
	CredentialsFile string   `koanf:"credentials_file"`
	Tokens          []string `koanf:"tokens"`
}

// Load reads the configuration. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		path, err := homedir.Expand(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// WATERME_API__LISTEN -> api.listen
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.API.IconDir != "" {
		dir, err := homedir.Expand(cfg.API.IconDir)
		if err != nil {
			return nil, fmt.Errorf("failed to expand icon dir: %w", err)
		}
		cfg.API.IconDir = dir
	}
	if cfg.Notify.FCM.CredentialsFile != "" {
		f, err := homedir.Expand(cfg.Notify.FCM.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to expand credentials file: %w", err)
		}
		cfg.Notify.FCM.CredentialsFile = f
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Daemon.QuietPeriod <= 0 {
		return fmt.Errorf("daemon.quiet_period must be positive")
	}
	if c.Daemon.RunTimeout <= 0 {
		return fmt.Errorf("daemon.run_timeout must be positive")
	}
	if c.Daemon.DeliveryInterval <= 0 {
		return fmt.Errorf("daemon.delivery_interval must be positive")
	}
	if c.Daemon.DayCheckInterval <= 0 {
		return fmt.Errorf("daemon.day_check_interval must be positive")
	}
	if c.API.Enabled && c.API.Listen == "" {
		return fmt.Errorf("api.listen is required when the api is enabled")
	}
	if c.Notify.Telegram.Enabled && c.Notify.Telegram.ChatID == "" {
		return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
	}
	if c.Notify.FCM.Enabled && len(c.Notify.FCM.Tokens) == 0 {
		return fmt.Errorf("notify.fcm.tokens must list at least one device when fcm is enabled")
	}
	return nil
}
