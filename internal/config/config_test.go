package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[touch]
motion_threshold = 12

[devices]
paths = ["/dev/input/event5"]
grab = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Touch.MotionThreshold)
	assert.Equal(t, []string{"/dev/input/event5"}, cfg.Devices.Paths)
	assert.True(t, cfg.Devices.Grab)
	// 指定していない項目はデフォルトのまま
	assert.Equal(t, 8080, cfg.API.Port)
	assert.True(t, cfg.Log.StatusChanges)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[touch\nmotion_threshold = "), 0644))
	cfg, err := LoadConfig(broken)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	negative := filepath.Join(dir, "negative.toml")
	require.NoError(t, os.WriteFile(negative, []byte("[touch]\nmotion_threshold = -1\n"), 0644))
	cfg, err = LoadConfig(negative)
	assert.ErrorContains(t, err, "motion_threshold")
	assert.Equal(t, 5, cfg.Touch.MotionThreshold)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Touch.MotionThreshold = 42
	cfg.API.Port = 9090
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.API.Port = 70000
	cfg.Touch.MotionThreshold = -3
	err := cfg.Validate()
	assert.ErrorContains(t, err, "port")
	assert.ErrorContains(t, err, "motion_threshold")
}
