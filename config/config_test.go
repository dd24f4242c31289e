package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"currency": "USD",
		"duration_menu": [1, 2],
		"consume_slots": false,
		"favourite_fields": [{"id": "4", "alias": "tenis"}]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, []int{1, 2}, cfg.DurationMenu)
	assert.False(t, cfg.ConsumeSlots)
	assert.Equal(t, "home", cfg.SearchPolicy)
	require.Len(t, cfg.FavouriteFields, 1)
	assert.Equal(t, "tenis", cfg.FavouriteFields[0].Alias)
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := writeConfig(t, `{"currency": "USD", "search_policy": "home"}`)
	t.Setenv("CANCHA_CURRENCY", "EUR")
	t.Setenv("CANCHA_SEARCH_POLICY", "explore")
	t.Setenv("CANCHA_DURATION_MENU", "2,4")
	t.Setenv("CANCHA_CONSUME_SLOTS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "explore", cfg.SearchPolicy)
	assert.Equal(t, []int{2, 4}, cfg.DurationMenu)
	assert.False(t, cfg.ConsumeSlots)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeConfig(t, `{"duration_menu": [0]}`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"log_level": "loud"}`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"timezone": "Mars/Olympus"}`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{not json`))
	assert.Error(t, err)

	_, err = Load(t.TempDir())
	assert.Error(t, err)
}

func TestLevel(t *testing.T) {
	level, err := Config{LogLevel: "debug"}.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = Config{}.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
