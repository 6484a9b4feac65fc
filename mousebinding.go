package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// MouseSettings contains mouse-specific configuration
type MouseSettings struct {
	WheelSensitivity float64 `toml:"wheel_sensitivity"`
	WheelInverted    bool    `toml:"wheel_inverted"`
	DoubleClickTime  int     `toml:"double_click_time"` // milliseconds
	EnableMouse      bool    `toml:"enable_mouse"`
	EnableDragScroll bool    `toml:"enable_drag_scroll"` // drag vertically to scroll the page
	DragThreshold    int     `toml:"drag_threshold"`     // pixels
}

// GetDefaultMouseSettings returns the default mouse settings
func GetDefaultMouseSettings() MouseSettings {
	return MouseSettings{
		WheelSensitivity: 1.0,
		DoubleClickTime:  300,
		EnableMouse:      true,
		EnableDragScroll: true,
		DragThreshold:    5,
	}
}

// DoubleClickTracker tracks double-click state
type DoubleClickTracker struct {
	lastClickTime   time.Time
	lastClickButton ebiten.MouseButton
	clickCount      int
}

// MouseCombination represents a mouse button with optional modifiers
type MouseCombination struct {
	Name          string
	Button        ebiten.MouseButton
	IsDoubleClick bool
	Shift         bool
	Ctrl          bool
	Alt           bool
}

func (c MouseCombination) String() string {
	name := c.Name
	if c.IsDoubleClick {
		name = "Double" + name
	}
	return modifierPrefix(c.Shift, c.Ctrl, c.Alt) + name
}

// MousebindingManager matches parsed mouse bindings against the button state
type MousebindingManager struct {
	mousebindings      map[string][]string
	parsed             map[string][]MouseCombination
	settings           MouseSettings
	doubleClickTracker DoubleClickTracker
}

// NewMousebindingManager creates a new MousebindingManager
func NewMousebindingManager(mousebindings map[string][]string, settings MouseSettings) *MousebindingManager {
	mm := &MousebindingManager{
		settings: settings,
		doubleClickTracker: DoubleClickTracker{
			lastClickTime: time.Now(),
		},
	}
	mm.UpdateMousebindings(mousebindings)
	return mm
}

// mouseMapping maps binding names to Ebiten mouse buttons
var mouseMapping = map[string]ebiten.MouseButton{
	"LeftClick":   ebiten.MouseButtonLeft,
	"RightClick":  ebiten.MouseButtonRight,
	"MiddleClick": ebiten.MouseButtonMiddle,
	"Back":        ebiten.MouseButton3, // side button
	"Forward":     ebiten.MouseButton4, // side button
}

// parseMouseString parses a mouse string like "Shift+LeftClick" or
// "DoubleLeftClick". Wheel names are rejected.
func parseMouseString(mouseStr string) (MouseCombination, error) {
	parts := strings.Split(mouseStr, "+")
	actionName := parts[len(parts)-1]

	if strings.HasPrefix(actionName, "Wheel") {
		return MouseCombination{}, fmt.Errorf("%q: the wheel is not bindable", mouseStr)
	}

	combination := MouseCombination{Name: actionName}
	if base, ok := strings.CutPrefix(actionName, "Double"); ok {
		combination.IsDoubleClick = true
		combination.Name = base
	}
	button, exists := mouseMapping[combination.Name]
	if !exists {
		return MouseCombination{}, fmt.Errorf("unknown mouse button %q", mouseStr)
	}
	combination.Button = button

	shift, ctrl, alt, err := parseModifiers(parts[:len(parts)-1])
	if err != nil {
		return MouseCombination{}, fmt.Errorf("mouse binding %q: %w", mouseStr, err)
	}
	combination.Shift, combination.Ctrl, combination.Alt = shift, ctrl, alt

	return combination, nil
}

// isMouseActionTriggered checks if a mouse combination was triggered this frame
func (mm *MousebindingManager) isMouseActionTriggered(combination MouseCombination) bool {
	if !mm.settings.EnableMouse {
		return false
	}
	if !modifiersMatch(combination.Shift, combination.Ctrl, combination.Alt) {
		return false
	}

	if combination.IsDoubleClick {
		return mm.checkDoubleClick(combination.Button)
	}
	return inpututil.IsMouseButtonJustPressed(combination.Button)
}

// checkDoubleClick reports whether a press of button completes a double click
func (mm *MousebindingManager) checkDoubleClick(button ebiten.MouseButton) bool {
	if !inpututil.IsMouseButtonJustPressed(button) {
		return false
	}
	window := time.Duration(mm.settings.DoubleClickTime) * time.Millisecond
	return mm.doubleClickTracker.press(button, time.Now(), window)
}

// press records a press and reports whether it is the second one of the
// same button within window. A completed double click starts a new count.
func (t *DoubleClickTracker) press(button ebiten.MouseButton, now time.Time, window time.Duration) bool {
	defer func() { t.lastClickTime = now }()

	if t.clickCount == 0 || t.lastClickButton != button || now.Sub(t.lastClickTime) > window {
		t.clickCount = 1
		t.lastClickButton = button
		return false
	}
	t.clickCount = 0
	return true
}

// CheckAction checks if any mouse binding for the given action is triggered
func (mm *MousebindingManager) CheckAction(action string) bool {
	for _, combination := range mm.parsed[action] {
		if mm.isMouseActionTriggered(combination) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action using the InputActions interface
func (mm *MousebindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if !mm.CheckAction(action) {
		return false
	}

	return globalActionExecutor.ExecuteAction(action, inputActions, inputState)
}

// GetMousebindings returns the current mouse bindings map (for display purposes)
func (mm *MousebindingManager) GetMousebindings() map[string][]string {
	return mm.mousebindings
}

// UpdateMousebindings replaces and reparses the mouse bindings
func (mm *MousebindingManager) UpdateMousebindings(mousebindings map[string][]string) {
	mm.mousebindings = mousebindings
	mm.parsed = make(map[string][]MouseCombination, len(mousebindings))
	for action, buttons := range mousebindings {
		for _, mouseStr := range buttons {
			combination, err := parseMouseString(mouseStr)
			if err != nil {
				log.Printf("Warning: Ignoring mouse binding for %s: %v", action, err)
				continue
			}
			mm.parsed[action] = append(mm.parsed[action], combination)
		}
	}
}

// GetSettings returns the current mouse settings
func (mm *MousebindingManager) GetSettings() MouseSettings {
	return mm.settings
}
