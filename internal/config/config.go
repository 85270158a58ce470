// Package config loads defender configuration: built-in defaults, then an
// optional YAML file, then DEFENDER_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	StatePath string          `koanf:"state_path"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Defense   DefenseConfig   `koanf:"defense"`
	Voice     VoiceConfig     `koanf:"voice"`
	Tone      ToneConfig      `koanf:"tone"`
	Discord   DiscordConfig   `koanf:"discord"`
	History   HistoryConfig   `koanf:"history"`
}

type SchedulerConfig struct {
	CheckIntervalSeconds   int   `koanf:"check_interval_seconds"`
	DefaultIntervalMinutes int   `koanf:"default_interval_minutes"`
	DefaultSnoozeMinutes   []int `koanf:"default_snooze_minutes"`
}

type DefenseConfig struct {
	PollIntervalMinutes int    `koanf:"poll_interval_minutes"`
	Character           string `koanf:"character"`
	Tone                string `koanf:"tone"`
}

type VoiceConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Character string `koanf:"character"`
}

type ToneConfig struct {
	Enabled bool    `koanf:"enabled"`
	ID      string  `koanf:"id"`
	Volume  float64 `koanf:"volume"`
}

type DiscordConfig struct {
	Token     string `koanf:"token"`
	ChannelID string `koanf:"channel_id"`
}

type HistoryConfig struct {
	ArchiveEnabled bool   `koanf:"archive_enabled"`
	ArchiveFile    string `koanf:"archive_file"`
}

// Load builds the configuration. configPath may be empty; a missing file
// is not an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("DEFENDER_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DEFENDER_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// The Discord credentials follow the conventional un-prefixed names
	// when present.
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		k.Set("discord.token", token)
	}
	if ch := os.Getenv("DISCORD_CHANNEL_ID"); ch != "" {
		k.Set("discord.channel_id", ch)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded configuration for unusable values.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.Scheduler.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("scheduler.check_interval_seconds must be positive")
	}
	if c.Defense.PollIntervalMinutes <= 0 {
		return fmt.Errorf("defense.poll_interval_minutes must be positive")
	}
	for _, m := range c.Scheduler.DefaultSnoozeMinutes {
		if m <= 0 {
			return fmt.Errorf("scheduler.default_snooze_minutes entries must be positive")
		}
	}
	return nil
}

// ArchivePath resolves the archive DB location under the state dir.
func (c *Config) ArchivePath() string {
	if c.History.ArchiveFile == "" {
		return ""
	}
	if filepath.IsAbs(c.History.ArchiveFile) {
		return c.History.ArchiveFile
	}
	return filepath.Join(c.StatePath, c.History.ArchiveFile)
}

// MessagePoolPath is where the custom character's message pool lives.
func (c *Config) MessagePoolPath() string {
	return filepath.Join(c.StatePath, "custom_messages.yaml")
}
