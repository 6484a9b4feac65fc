package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Window size constants
const (
	defaultWidth  = 1000
	defaultHeight = 800
	minWidth      = 400
	minHeight     = 300
)

const (
	defaultCacheSize    = 16
	defaultPreloadCount = 2
	defaultFontSize     = 20.0
)

// Modifier names accepted for zoom_modifier
const (
	modifierCtrl  = "ctrl"
	modifierAlt   = "alt"
	modifierShift = "shift"
	modifierMeta  = "meta"
)

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	WindowWidth    int        `toml:"window_width"`
	WindowHeight   int        `toml:"window_height"`
	Fullscreen     bool       `toml:"fullscreen"`
	HelpFontSize   float64    `toml:"help_font_size"`
	SortMethod     SortMethod `toml:"sort_method"`
	CacheSize      int        `toml:"cache_size"`
	PreloadEnabled bool       `toml:"preload_enabled"`
	PreloadCount   int        `toml:"preload_count"`
	WatchDocument  bool       `toml:"watch_document"`

	// Zoom and scroll limits for the session
	MinZoom        float64 `toml:"min_zoom"`
	MaxZoom        float64 `toml:"max_zoom"`
	DefaultZoom    float64 `toml:"default_zoom"`
	ZoomStep       float64 `toml:"zoom_step"`
	KeepZoomOnLoad bool    `toml:"keep_zoom_on_load"`
	ScrollStep     int     `toml:"scroll_step"`

	// Gestures
	PinchThreshold  float64 `toml:"pinch_threshold"`
	PinchZoomFactor float64 `toml:"pinch_zoom_factor"`
	ZoomModifier    string  `toml:"zoom_modifier"` // held with the wheel for precise zoom

	Mouse         MouseSettings       `toml:"mouse"`
	Keybindings   map[string][]string `toml:"keybindings"`
	Mousebindings map[string][]string `toml:"mousebindings"`
}

// Limits converts the zoom/scroll part of the config for NavigationState.
func (c Config) Limits() Limits {
	return Limits{
		MinZoom:        c.MinZoom,
		MaxZoom:        c.MaxZoom,
		DefaultZoom:    c.DefaultZoom,
		ZoomStep:       c.ZoomStep,
		ScrollStep:     c.ScrollStep,
		KeepZoomOnLoad: c.KeepZoomOnLoad,
	}
}

func (c Config) GestureSettings() GestureSettings {
	return GestureSettings{
		PinchThreshold:  c.PinchThreshold,
		PinchZoomFactor: c.PinchZoomFactor,
	}
}

func defaultConfig() Config {
	limits := DefaultLimits()
	gestures := DefaultGestureSettings()
	return Config{
		WindowWidth:     defaultWidth,
		WindowHeight:    defaultHeight,
		HelpFontSize:    defaultFontSize,
		SortMethod:      SortNatural,
		CacheSize:       defaultCacheSize,
		PreloadEnabled:  true,
		PreloadCount:    defaultPreloadCount,
		WatchDocument:   true,
		MinZoom:         limits.MinZoom,
		MaxZoom:         limits.MaxZoom,
		DefaultZoom:     limits.DefaultZoom,
		ZoomStep:        limits.ZoomStep,
		ScrollStep:      limits.ScrollStep,
		PinchThreshold:  gestures.PinchThreshold,
		PinchZoomFactor: gestures.PinchZoomFactor,
		ZoomModifier:    modifierCtrl,
		Mouse:           GetDefaultMouseSettings(),
		Keybindings:     GetDefaultKeybindings(),
		Mousebindings:   GetDefaultMousebindings(),
	}
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "preview.toml"
	}
	return filepath.Join(homeDir, ".preview.toml")
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	config := defaultConfig()
	result := ConfigLoadResult{
		Config:   config,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: Cannot read config file %s, using defaults: %v", configPath, err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("Cannot read config file: %v", err))
		}
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		return result
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		log.Printf("Warning: Invalid config file %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		return result
	}

	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Printf("Warning: %s", msg)
		result.Warnings = append(result.Warnings, msg)
		result.Status = "Warning"
	}

	defaults := defaultConfig()

	if config.WindowWidth < minWidth {
		config.WindowWidth = defaults.WindowWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaults.WindowHeight
	}

	// Help font size (minimum 12px for readability)
	if config.HelpFontSize < 12.0 {
		config.HelpFontSize = defaults.HelpFontSize
	}

	if !config.SortMethod.Valid() {
		config.SortMethod = SortNatural
	}

	// Cache size (minimum 1, maximum 64)
	if config.CacheSize < 1 {
		config.CacheSize = defaultCacheSize
	} else if config.CacheSize > 64 {
		config.CacheSize = 64
	}

	// Preload count (minimum 1, maximum 16)
	if config.PreloadCount < 1 {
		config.PreloadCount = defaultPreloadCount
	} else if config.PreloadCount > 16 {
		config.PreloadCount = 16
	}

	if config.MinZoom <= 0 || config.MaxZoom <= config.MinZoom {
		warn("invalid zoom range [%g, %g], using [%g, %g]",
			config.MinZoom, config.MaxZoom, defaults.MinZoom, defaults.MaxZoom)
		config.MinZoom = defaults.MinZoom
		config.MaxZoom = defaults.MaxZoom
	}
	if config.DefaultZoom < config.MinZoom || config.DefaultZoom > config.MaxZoom {
		config.DefaultZoom = defaults.DefaultZoom
		if config.DefaultZoom < config.MinZoom || config.DefaultZoom > config.MaxZoom {
			config.DefaultZoom = config.MinZoom
		}
	}
	if config.ZoomStep <= 0 || config.ZoomStep > config.MaxZoom-config.MinZoom {
		config.ZoomStep = defaults.ZoomStep
	}
	if config.ScrollStep < 1 {
		config.ScrollStep = defaults.ScrollStep
	}

	if config.PinchThreshold <= 0 || config.PinchThreshold >= 1 {
		config.PinchThreshold = defaults.PinchThreshold
	}
	if config.PinchZoomFactor <= 1 {
		config.PinchZoomFactor = defaults.PinchZoomFactor
	}

	config.ZoomModifier = strings.ToLower(config.ZoomModifier)
	switch config.ZoomModifier {
	case modifierCtrl, modifierAlt, modifierShift, modifierMeta:
	default:
		warn("unknown zoom_modifier %q, using %q", config.ZoomModifier, modifierCtrl)
		config.ZoomModifier = modifierCtrl
	}

	config.Mouse = validateMouseSettings(config.Mouse)

	// Fill in missing bindings with defaults, then validate as a whole
	config.Keybindings = mergeBindings(config.Keybindings, GetDefaultKeybindings())
	if err := validateKeybindings(config.Keybindings); err != nil {
		warn("Keybinding errors: %v", err)
		config.Keybindings = GetDefaultKeybindings()
	}
	config.Mousebindings = mergeBindings(config.Mousebindings, GetDefaultMousebindings())
	if err := validateMousebindings(config.Mousebindings); err != nil {
		warn("Mouse binding errors: %v", err)
		config.Mousebindings = GetDefaultMousebindings()
	}

	result.Config = config
	return result
}

func mergeBindings(bindings, defaults map[string][]string) map[string][]string {
	if bindings == nil {
		return defaults
	}
	for action, keys := range defaults {
		if _, exists := bindings[action]; !exists {
			bindings[action] = keys
		}
	}
	return bindings
}

func validateMouseSettings(s MouseSettings) MouseSettings {
	defaults := GetDefaultMouseSettings()
	if s.WheelSensitivity <= 0 {
		s.WheelSensitivity = defaults.WheelSensitivity
	}
	if s.DoubleClickTime < 50 || s.DoubleClickTime > 2000 {
		s.DoubleClickTime = defaults.DoubleClickTime
	}
	if s.DragThreshold < 0 {
		s.DragThreshold = defaults.DragThreshold
	}
	return s
}

func saveConfigToPath(config Config, configPath string) error {
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		return fmt.Errorf("not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("save config to %s: %w", configPath, err)
	}
	return nil
}
