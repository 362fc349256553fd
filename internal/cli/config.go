package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stickycols/pkg/cache"
	"github.com/matzehuels/stickycols/pkg/scene"
	"github.com/matzehuels/stickycols/pkg/server"
)

// Config is the user configuration file. Every key is optional:
//
//	from_top = 16
//	col_selector = "[data-scols-col]"
//	cache_ttl = "24h"
//	cache_prefix = "staging:"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = "127.0.0.1:8080"
//	timeout = "30s"
//	max_body_bytes = 1048576
//
// from_top and col_selector apply to scenes that do not set them.
// cache_prefix scopes trace keys so environments can share one Redis.
type Config struct {
	FromTop     float64           `toml:"from_top"`
	ColSelector string            `toml:"col_selector"`
	CacheTTL    string            `toml:"cache_ttl"`
	CachePrefix string            `toml:"cache_prefix"`
	Redis       cache.RedisConfig `toml:"redis"`
	Server      ServerConfig      `toml:"server"`
}

// ServerConfig holds the serve command defaults.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	Timeout      string `toml:"timeout"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// LoadConfig reads the config file at path. A missing file yields the zero
// Config unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if _, err := cfg.TTL(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if _, err := cfg.ServeConfig(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// TTL returns the trace cache lifetime, or zero when unset.
func (c Config) TTL() (time.Duration, error) {
	return parseDuration("cache_ttl", c.CacheTTL)
}

// SceneOptions returns the option defaults for loaded scenes.
func (c Config) SceneOptions() scene.Options {
	return scene.Options{FromTop: c.FromTop, ColSelector: c.ColSelector}
}

// ServeConfig converts the [server] table. Unset values are left for
// server.New to default.
func (c Config) ServeConfig() (server.Config, error) {
	timeout, err := parseDuration("server.timeout", c.Server.Timeout)
	if err != nil {
		return server.Config{}, err
	}
	return server.Config{
		Addr:         c.Server.Addr,
		Timeout:      timeout,
		MaxBodyBytes: c.Server.MaxBodyBytes,
	}, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}
