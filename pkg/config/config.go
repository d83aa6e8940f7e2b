// Package config loads the glox TOML configuration file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/naoina/toml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds every user-tunable setting. The CLI starts from Defaults,
// overlays the config file, then applies explicit flags.
type Config struct {
	Prompt             string
	ContinuationPrompt string
	HistoryFile        string `toml:",omitempty"` // relative paths resolve against the home directory
	Color              string
	Echo               bool // REPL prints the value of bare expression statements
	ParseCacheSize     int
	MaxCallDepth       int
	Timeout            Duration // zero means no limit
	LogLevel           string
}

// Defaults contains the default settings.
var Defaults = Config{
	Prompt:             "> ",
	ContinuationPrompt: "... ",
	HistoryFile:        ".glox_history",
	Color:              ColorAuto,
	Echo:               true,
	ParseCacheSize:     128,
	MaxCallDepth:       1024,
	LogLevel:           "warn",
}

// Duration is a time.Duration that reads and writes as a string like "1m30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load overlays the TOML file onto cfg and validates the result.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Decode(bufio.NewReader(f), cfg); err != nil {
		// Add file name to errors that have a line number.
		if _, ok := err.(*toml.LineError); ok {
			err = errors.New(file + ", " + err.Error())
		}
		return err
	}
	return nil
}

// Decode overlays TOML read from r onto cfg and validates the result.
func Decode(r io.Reader, cfg *Config) error {
	if err := tomlSettings.NewDecoder(r).Decode(cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Marshal renders cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid Color %q (want %q, %q, or %q)", c.Color, ColorAuto, ColorAlways, ColorNever)
	}
	if _, err := log15.LvlFromString(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LogLevel %q: %v", c.LogLevel, err)
	}
	if c.ParseCacheSize < 0 {
		return fmt.Errorf("invalid ParseCacheSize %d", c.ParseCacheSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid Timeout %s", c.Timeout.Std())
	}
	return nil
}

// Level returns the parsed LogLevel, falling back to warn.
func (c *Config) Level() log15.Lvl {
	lvl, err := log15.LvlFromString(c.LogLevel)
	if err != nil {
		return log15.LvlWarn
	}
	return lvl
}

// HistoryPath resolves HistoryFile. It returns "" when history is disabled.
func (c *Config) HistoryPath() string {
	if c.HistoryFile == "" || filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.HistoryFile
	}
	return filepath.Join(home, c.HistoryFile)
}
