package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preview.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	result := loadConfigFromPath(filepath.Join(t.TempDir(), "missing.toml"))

	assert.Equal(t, "Default", result.Status)
	assert.False(t, result.HasError)
	assert.Empty(t, result.Warnings)

	config := result.Config
	assert.Equal(t, defaultWidth, config.WindowWidth)
	assert.Equal(t, defaultHeight, config.WindowHeight)
	assert.Equal(t, SortNatural, config.SortMethod)
	assert.Equal(t, DefaultLimits(), config.Limits())
	assert.Equal(t, DefaultGestureSettings(), config.GestureSettings())
	assert.Equal(t, modifierCtrl, config.ZoomModifier)
	assert.Equal(t, GetDefaultKeybindings(), config.Keybindings)
	assert.True(t, config.WatchDocument)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		toml   string
		status string
		check  func(t *testing.T, c Config)
	}{
		{
			name: "valid config",
			toml: `
window_width = 1200
window_height = 900
min_zoom = 0.25
max_zoom = 4.0
default_zoom = 1.5
zoom_step = 0.25
keep_zoom_on_load = true
scroll_step = 60
zoom_modifier = "Alt"
`,
			status: "OK",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 1200, c.WindowWidth)
				assert.Equal(t, 900, c.WindowHeight)
				assert.Equal(t, Limits{
					MinZoom: 0.25, MaxZoom: 4.0, DefaultZoom: 1.5, ZoomStep: 0.25,
					ScrollStep: 60, KeepZoomOnLoad: true,
				}, c.Limits())
				assert.Equal(t, modifierAlt, c.ZoomModifier)
			},
		},
		{
			name:   "window too small",
			toml:   "window_width = 200\nwindow_height = 100\n",
			status: "OK",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, defaultWidth, c.WindowWidth)
				assert.Equal(t, defaultHeight, c.WindowHeight)
			},
		},
		{
			name:   "inverted zoom range",
			toml:   "min_zoom = 2.0\nmax_zoom = 1.0\n",
			status: "Warning",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 0.5, c.MinZoom)
				assert.Equal(t, 3.0, c.MaxZoom)
			},
		},
		{
			name:   "default zoom outside range",
			toml:   "min_zoom = 2.0\nmax_zoom = 4.0\ndefault_zoom = 5.0\n",
			status: "OK",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 2.0, c.DefaultZoom)
			},
		},
		{
			name:   "bad gesture settings",
			toml:   "pinch_threshold = 1.5\npinch_zoom_factor = 0.9\n",
			status: "OK",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, DefaultGestureSettings(), c.GestureSettings())
			},
		},
		{
			name:   "unknown zoom modifier",
			toml:   `zoom_modifier = "hyper"`,
			status: "Warning",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, modifierCtrl, c.ZoomModifier)
			},
		},
		{
			name:   "cache and preload clamped",
			toml:   "cache_size = 500\npreload_count = 0\n",
			status: "OK",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 64, c.CacheSize)
				assert.Equal(t, defaultPreloadCount, c.PreloadCount)
			},
		},
		{
			name:   "partial keybindings keep defaults",
			toml:   "[keybindings]\nnext = [\"KeyL\"]\n",
			status: "OK",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, []string{"KeyL"}, c.Keybindings["next"])
				assert.Equal(t, GetDefaultKeybindings()["previous"], c.Keybindings["previous"])
			},
		},
		{
			name:   "conflicting keybindings fall back",
			toml:   "[keybindings]\nnext = [\"KeyP\"]\n",
			status: "Warning",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, GetDefaultKeybindings(), c.Keybindings)
			},
		},
		{
			name:   "wheel mouse binding rejected",
			toml:   "[mousebindings]\nnext = [\"WheelDown\"]\n",
			status: "Warning",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, GetDefaultMousebindings(), c.Mousebindings)
			},
		},
		{
			name:   "mouse settings",
			toml:   "[mouse]\nwheel_sensitivity = 0\ndouble_click_time = 10\nwheel_inverted = true\n",
			status: "OK",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 1.0, c.Mouse.WheelSensitivity)
				assert.Equal(t, 300, c.Mouse.DoubleClickTime)
				assert.True(t, c.Mouse.WheelInverted)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := loadConfigFromPath(writeConfig(t, tt.toml))
			assert.False(t, result.HasError)
			assert.Equal(t, tt.status, result.Status, "warnings: %v", result.Warnings)
			tt.check(t, result.Config)
		})
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	result := loadConfigFromPath(writeConfig(t, "window_width = = 3"))

	assert.True(t, result.HasError)
	assert.Equal(t, "Error", result.Status)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, defaultConfig().WindowWidth, result.Config.WindowWidth)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.toml")

	config := defaultConfig()
	config.WindowWidth = 1300
	config.SortMethod = SortEntryOrder
	config.MaxZoom = 5.0
	require.NoError(t, saveConfigToPath(config, path))

	result := loadConfigFromPath(path)
	assert.Equal(t, "OK", result.Status)
	assert.Equal(t, 1300, result.Config.WindowWidth)
	assert.Equal(t, SortEntryOrder, result.Config.SortMethod)
	assert.Equal(t, 5.0, result.Config.MaxZoom)
}

func TestSaveConfigRejectsInvalidSize(t *testing.T) {
	config := defaultConfig()
	config.WindowWidth = 10
	assert.Error(t, saveConfigToPath(config, filepath.Join(t.TempDir(), "preview.toml")))
}
