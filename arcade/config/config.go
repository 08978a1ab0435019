// Package config loads host settings from a file and the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ARCADE_CONTROLLER1_TYPE.
const EnvPrefix = "ARCADE"

// Controller holds the settings of the first controller port.
type Controller struct {
	Type                string `mapstructure:"type"`
	TouchscreenView     string `mapstructure:"touchscreencontrollerview"`
	AutoHideTouchscreen bool   `mapstructure:"autohidetouchscreencontroller"`
	HapticFeedback      bool   `mapstructure:"hapticfeedback"`
	Vibration           bool   `mapstructure:"vibration"`
}

type Main struct {
	PauseOnMenu bool   `mapstructure:"pauseonmenu"`
	Orientation string `mapstructure:"emulationscreenorientation"`
}

type Settings struct {
	Controller1 Controller `mapstructure:"controller1"`
	Main        Main       `mapstructure:"main"`
}

var defaults = map[string]any{
	"controller1.type":                          "AnalogController",
	"controller1.touchscreencontrollerview":     "digital",
	"controller1.autohidetouchscreencontroller": true,
	"controller1.hapticfeedback":                false,
	"controller1.vibration":                     false,
	"main.pauseonmenu":                          false,
	"main.emulationscreenorientation":           "unspecified",
}

// Loader reads Settings through viper.
type Loader struct {
	mu sync.Mutex
	v  *viper.Viper
}

// Load reads the settings file at path, if any, layered over the defaults
// and under the environment.
func Load(path string) (*Loader, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		slog.Info("Loaded config", "path", v.ConfigFileUsed())
	}
	return &Loader{v: v}, nil
}

// Settings decodes the current settings.
func (l *Loader) Settings() (Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding config: %w", err)
	}
	return s, nil
}

// Set overrides a single key for the life of the loader.
func (l *Loader) Set(key string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.v.Set(key, value)
}

// Watch calls fn with fresh settings whenever the config file changes. fn
// runs on viper's watcher goroutine. Without a config file Watch does nothing.
func (l *Loader) Watch(fn func(Settings)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		s, err := l.Settings()
		if err != nil {
			slog.Warn("Ignoring config change", "file", e.Name, "error", err)
			return
		}
		slog.Info("Config changed", "file", e.Name)
		fn(s)
	})
	l.v.WatchConfig()
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	l, _ := Load("")
	s, _ := l.Settings()
	return s
}
