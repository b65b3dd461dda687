// Package config loads user preferences for geneatree from a TOML file.
//
// The file is optional. When present it lives at
// $XDG_CONFIG_HOME/geneatree/config.toml (or ~/.config/geneatree/config.toml)
// unless a path is given explicitly:
//
//	[settings]
//	page_size = "A3"
//	orientation = "landscape"
//	sibling_spacing = 260
//
//	[layout]
//	start_x = 0
//	start_y = 0
//
//	[server]
//	addr = "127.0.0.1:8080"
//
//	[export]
//	cache = true
//
// Keys that are absent keep their defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree"
)

const (
	appName  = "geneatree"
	fileName = "config.toml"

	// DefaultAddr is the listen address of "geneatree serve".
	DefaultAddr = "127.0.0.1:8080"
)

// Config holds every configurable value.
type Config struct {
	Settings tree.TreeSettings `toml:"settings"`
	Layout   Layout            `toml:"layout"`
	Server   Server            `toml:"server"`
	Export   Export            `toml:"export"`
}

// Layout is the anchor of the first generation row.
type Layout struct {
	StartX float64 `toml:"start_x"`
	StartY float64 `toml:"start_y"`
}

type Server struct {
	Addr string `toml:"addr"`
}

type Export struct {
	// Cache enables the rendered-SVG cache.
	Cache bool `toml:"cache"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Settings: tree.DefaultSettings(),
		Server:   Server{Addr: DefaultAddr},
		Export:   Export{Cache: true},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config at path, or at [Path] when path is empty.
// A missing file yields [Default]. Page size and orientation are normalized.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return Default(), errors.Wrap(errors.ErrCodeInvalidInput, err, "can't load config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}

	cfg.Settings.PageSize = tree.NormalizePageSize(cfg.Settings.PageSize)
	cfg.Settings.Orientation = tree.NormalizeOrientation(cfg.Settings.Orientation)
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	return cfg, nil
}

// NewProject returns an empty project carrying the configured settings.
func (c Config) NewProject() *tree.TreeProject {
	p := tree.New()
	p.Settings = c.Settings
	return p
}
