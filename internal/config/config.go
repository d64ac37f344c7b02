// Package config loads settings from padroute.yaml, PADROUTE_* environment
// variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Haptics struct {
	Buttons     bool `mapstructure:"buttons"`
	Thumbsticks bool `mapstructure:"thumbsticks"`
}

type Feedback struct {
	ReleaseDebounce time.Duration `mapstructure:"release_debounce"`
	ReleaseDelay    time.Duration `mapstructure:"release_delay"`
}

type Remap struct {
	Settle time.Duration `mapstructure:"settle"`
}

type Window struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type Config struct {
	Listen   string   `mapstructure:"listen"`
	Skin     string   `mapstructure:"skin"`
	GameType string   `mapstructure:"game_type"`
	StoreDir string   `mapstructure:"store_dir"`
	Sync     bool     `mapstructure:"sync"`
	Haptics  Haptics  `mapstructure:"haptics"`
	Feedback Feedback `mapstructure:"feedback"`
	Remap    Remap    `mapstructure:"remap"`
	Window   Window   `mapstructure:"window"`
	Tray     bool     `mapstructure:"tray"`
	Debug    bool     `mapstructure:"debug"`
	Deadzone float64  `mapstructure:"deadzone"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

func defaultStoreDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "padroute", "mappings")
	}
	return "mappings"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("skin", "")
	v.SetDefault("game_type", "gba")
	v.SetDefault("store_dir", defaultStoreDir())
	v.SetDefault("sync", false)
	v.SetDefault("haptics.buttons", true)
	v.SetDefault("haptics.thumbsticks", true)
	v.SetDefault("feedback.release_debounce", 60*time.Millisecond)
	v.SetDefault("feedback.release_delay", 100*time.Millisecond)
	v.SetDefault("remap.settle", 100*time.Millisecond)
	v.SetDefault("window.width", 480)
	v.SetDefault("window.height", 800)
	v.SetDefault("tray", true)
	v.SetDefault("debug", false)
	v.SetDefault("deadzone", 0.05)
}

// Flags declares the command-line flags. Flag names use the config keys
// with dots and underscores turned into dashes.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("padroute", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (default: padroute.yaml in the working or user config dir)")
	fs.StringP("listen", "l", ":8080", "viewer and remote listen address")
	fs.StringP("skin", "s", "", "skin file (default: built-in skin)")
	fs.StringP("game-type", "g", "gba", "game type of the loaded game")
	fs.String("store-dir", defaultStoreDir(), "directory for saved mappings")
	fs.Bool("sync", false, "keep deleted mappings as tombstones for sync")
	fs.Bool("haptics-buttons", true, "pulse on button presses")
	fs.Bool("haptics-thumbsticks", true, "pulse on thumbstick direction changes")
	fs.Duration("feedback-release-debounce", 60*time.Millisecond, "releases sooner than this after a press are deferred")
	fs.Duration("feedback-release-delay", 100*time.Millisecond, "how long a short release is deferred")
	fs.Duration("remap-settle", 100*time.Millisecond, "input lock after a remap capture")
	fs.Int("window-width", 480, "window width")
	fs.Int("window-height", 800, "window height")
	fs.Bool("tray", true, "show the system tray icon")
	fs.BoolP("debug", "d", false, "log input event traces")
	fs.Float64("deadzone", 0.05, "analog stick and trigger deadzone")
	return fs
}

var flagKeys = map[string]string{
	"listen":                    "listen",
	"skin":                      "skin",
	"game-type":                 "game_type",
	"store-dir":                 "store_dir",
	"sync":                      "sync",
	"haptics-buttons":           "haptics.buttons",
	"haptics-thumbsticks":       "haptics.thumbsticks",
	"feedback-release-debounce": "feedback.release_debounce",
	"feedback-release-delay":    "feedback.release_delay",
	"remap-settle":              "remap.settle",
	"window-width":              "window.width",
	"window-height":             "window.height",
	"tray":                      "tray",
	"debug":                     "debug",
	"deadzone":                  "deadzone",
}

// Load parses args and merges every source into a Config.
func Load(args []string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PADROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	if file, _ := fs.GetString("config"); file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("padroute")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "padroute"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.GameType == "":
		return errors.New("game_type must be set")
	case c.Deadzone < 0 || c.Deadzone >= 1:
		return fmt.Errorf("deadzone %v out of range [0,1)", c.Deadzone)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Feedback.ReleaseDebounce < 0 || c.Feedback.ReleaseDelay < 0 || c.Remap.Settle < 0:
		return errors.New("durations must not be negative")
	}
	return nil
}
