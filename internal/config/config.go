package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath overrides the config path given on the command line.
const EnvPath = "TILECRAFT_CONFIG"

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Save    SaveConfig    `toml:"save"`
	Audit   AuditConfig   `toml:"audit"`
}

type ServerConfig struct {
	Addr          string `toml:"addr"`
	WorldID       string `toml:"world_id"`
	Seed          int64  `toml:"seed"`
	PlacementSeed int64  `toml:"placement_seed"` // 0 = derive from the clock at boot
	DataDir       string `toml:"data_dir"`
	TuningPath    string `toml:"tuning_path"`
	InboxSize     int    `toml:"inbox_size"`
	OutboxSize    int    `toml:"outbox_size"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type SaveConfig struct {
	Backend         string        `toml:"backend"` // sqlite | postgres | memory | remote
	SQLitePath      string        `toml:"sqlite_path"`
	DSN             string        `toml:"dsn"`
	MaxConns        int32         `toml:"max_conns"`
	MinConns        int32         `toml:"min_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	RemoteURL       string        `toml:"remote_url"`
	Timeout         time.Duration `toml:"timeout"`
}

type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // relative to data_dir unless absolute
}

// Load parses the toml file at path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if env := strings.TrimSpace(os.Getenv(EnvPath)); env != "" {
		path = env
	}
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Save.Backend {
	case "sqlite", "postgres", "memory", "remote":
	default:
		return fmt.Errorf("save.backend: unknown backend %q", c.Save.Backend)
	}
	if c.Save.Backend == "postgres" && c.Save.DSN == "" {
		return fmt.Errorf("save.dsn is required for the postgres backend")
	}
	if c.Save.Backend == "remote" && c.Save.RemoteURL == "" {
		return fmt.Errorf("save.remote_url is required for the remote backend")
	}
	if c.Save.Timeout <= 0 {
		return fmt.Errorf("save.timeout must be positive")
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			WorldID:    "world_1",
			Seed:       1337,
			DataDir:    "./data",
			TuningPath: "./configs/tuning.yaml",
			InboxSize:  1024,
			OutboxSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Save: SaveConfig{
			Backend:         "sqlite",
			SQLitePath:      "saves.sqlite",
			MaxConns:        8,
			MinConns:        1,
			ConnMaxLifetime: 30 * time.Minute,
			Timeout:         5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled: true,
			Dir:     "audit",
		},
	}
}
