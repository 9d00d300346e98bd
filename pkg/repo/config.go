package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"

	"github.com/odvcencio/strata/pkg/object"
)

const configFileName = "config.toml"

// Config stores repository-local settings.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
}

// CoreConfig tunes the object store and default branch.
type CoreConfig struct {
	DefaultBranch    string `toml:"default_branch"`
	CompressionLevel int    `toml:"compression_level"`
	CacheSize        int    `toml:"cache_size"`
}

// UserConfig identifies the author of new commits.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// DefaultConfig returns the settings written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch:    "main",
			CompressionLevel: object.DefaultCompressionLevel,
			CacheSize:        object.DefaultCacheSize,
		},
	}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.StrataDir, configFileName)
}

// WriteConfig atomically persists cfg and makes it the session's
// active configuration.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := writeConfigFile(r.configPath(), cfg); err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

func loadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.Core.DefaultBranch == "" {
		cfg.Core.DefaultBranch = "main"
	}
	return cfg, nil
}

func writeConfigFile(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
