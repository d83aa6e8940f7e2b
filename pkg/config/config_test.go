package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults
	require.NoError(t, cfg.Validate())
	assert.Equal(t, log15.LvlWarn, cfg.Level())
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	cfg := Defaults
	src := `
Prompt = "lox> "
Echo = false
Timeout = "1m30s"
LogLevel = "debug"
`
	require.NoError(t, Decode(strings.NewReader(src), &cfg))
	assert.Equal(t, "lox> ", cfg.Prompt)
	assert.False(t, cfg.Echo)
	assert.Equal(t, 90*time.Second, cfg.Timeout.Std())
	assert.Equal(t, log15.LvlDebug, cfg.Level())

	// untouched keys keep their defaults
	assert.Equal(t, Defaults.ContinuationPrompt, cfg.ContinuationPrompt)
	assert.Equal(t, Defaults.MaxCallDepth, cfg.MaxCallDepth)
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	cfg := Defaults
	err := Decode(strings.NewReader(`Colour = "never"`), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Colour")
}

func TestDecodeValidates(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`Color = "sometimes"`, "invalid Color"},
		{`LogLevel = "loud"`, "invalid LogLevel"},
		{`ParseCacheSize = -1`, "invalid ParseCacheSize"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			cfg := Defaults
			err := Decode(strings.NewReader(tt.src), &cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeBadDuration(t *testing.T) {
	cfg := Defaults
	require.Error(t, Decode(strings.NewReader(`Timeout = "soon"`), &cfg))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "glox.toml")
	require.NoError(t, os.WriteFile(file, []byte("MaxCallDepth = 64\nColor = \"never\"\n"), 0o644))

	cfg := Defaults
	require.NoError(t, Load(file, &cfg))
	assert.Equal(t, 64, cfg.MaxCallDepth)
	assert.Equal(t, ColorNever, cfg.Color)
}

func TestLoadMissingFile(t *testing.T) {
	cfg := Defaults
	err := Load(filepath.Join(t.TempDir(), "absent.toml"), &cfg)
	assert.True(t, os.IsNotExist(err))
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Defaults
	cfg.Timeout = Duration(5 * time.Second)
	out, err := Marshal(&cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "ParseCacheSize = 128")

	var back Config
	require.NoError(t, Decode(strings.NewReader(string(out)), &back))
	assert.Equal(t, cfg, back)
}

func TestHistoryPath(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, "", cfg.HistoryPath())

	cfg.HistoryFile = filepath.Join(t.TempDir(), "hist")
	assert.Equal(t, cfg.HistoryFile, cfg.HistoryPath())

	cfg.HistoryFile = ".hist"
	if home, err := os.UserHomeDir(); err == nil {
		assert.Equal(t, filepath.Join(home, ".hist"), cfg.HistoryPath())
	}
}
