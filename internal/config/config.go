// Package config loads runtime settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// StorageConfig is the part of the configuration the offline tools need.
type StorageConfig struct {
	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
}

type Config struct {
	StorageConfig
	DiscordToken      string        `env:"DISCORD_TOKEN,required"`
	DeveloperID       string        `env:"DEVELOPER_ID"`
	GuildBlacklist    []string      `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	MenuTimeout       time.Duration `env:"MENU_TIMEOUT" envDefault:"120s"`
	FlowTimeout       time.Duration `env:"FLOW_TIMEOUT" envDefault:"600s"`
	ReadyTimeout      time.Duration `env:"READY_TIMEOUT" envDefault:"30s"`
	EmbedColor        Color         `env:"EMBED_COLOR" envDefault:"0xb01e66"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile           string        `env:"LOG_FILE"`
	StatusAddr        string        `env:"STATUS_ADDR"`
	CommandCacheDir   string        `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`
}

// Color is an RGB embed colour accepting decimal, 0x-prefixed or #-prefixed
// hex notation.
type Color int

func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.HasPrefix(s, "#") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", string(text), err)
	}
	if v < 0 || v > 0xffffff {
		return fmt.Errorf("color %q out of range", string(text))
	}
	*c = Color(v)
	return nil
}

// Load reads .env (if any) and parses the process environment.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return Parse(env.Options{})
}

// LoadStorage is Load for tools that never connect to Discord, so
// DISCORD_TOKEN may be unset.
func LoadStorage() (*StorageConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return ParseStorage(env.Options{})
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		log.Info().Msg("no .env file found, falling back to system environment variables")
	}
	return nil
}

// Parse decodes the configuration using opts, which lets callers supply an
// explicit environment map.
func Parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.GuildBlacklist = compact(cfg.GuildBlacklist)
	return &cfg, nil
}

func ParseStorage(opts env.Options) (*StorageConfig, error) {
	cfg, err := env.ParseAsWithOptions[StorageConfig](opts)
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Blacklisted reports whether guildID is listed in DISCORD_GUILD_BLACKLIST.
func (c *Config) Blacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
