package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions with default keybindings, mouse bindings, and descriptions.
// The wheel is not bindable; it always goes through the gesture translator.
var actionDefinitions = []ActionDefinition{
	{"exit", []string{"Escape", "KeyQ"}, []string{}, "Quit application"},
	{"help", []string{"Shift+Slash"}, []string{"Alt+RightClick"}, "Show/hide help"},
	{"info", []string{"KeyI"}, []string{}, "Show/hide page and zoom info"},
	{"next", []string{"Space", "KeyN", "PageDown", "ArrowRight"}, []string{"Forward"}, "Next page"},
	{"previous", []string{"Backspace", "KeyP", "PageUp", "ArrowLeft"}, []string{"Back"}, "Previous page"},
	{"jump_first", []string{"Home", "Shift+Comma"}, []string{}, "Jump to first page"},
	{"jump_last", []string{"End", "Shift+Period"}, []string{}, "Jump to last page"},
	{"page_input", []string{"KeyG"}, []string{"Ctrl+LeftClick"}, "Go to page (enter page number)"},
	{"zoom_in", []string{"Equal", "Shift+Equal"}, []string{}, "Zoom in one step"},
	{"zoom_out", []string{"Minus"}, []string{}, "Zoom out one step"},
	{"zoom_reset", []string{"Key0"}, []string{"MiddleClick"}, "Reset to default zoom"},
	{"scroll_up", []string{"ArrowUp", "KeyK"}, []string{}, "Scroll up (previous page at top)"},
	{"scroll_down", []string{"ArrowDown", "KeyJ"}, []string{}, "Scroll down (next page at bottom)"},
	{"fullscreen", []string{"Enter", "KeyF"}, []string{"DoubleLeftClick"}, "Toggle fullscreen"},
	{"reload", []string{"KeyR"}, []string{}, "Reload the document"},
	{"cycle_sort", []string{"Shift+KeyS"}, []string{"Alt+MiddleClick"}, "Cycle sort method (Natural/Simple/Entry)"},
}

// ActionExecutor provides centralized action execution logic shared by
// KeybindingManager and MousebindingManager
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction executes the given action using the InputActions interface
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "jump_first":
		inputActions.JumpToPage(1)
	case "jump_last":
		totalPages := inputActions.GetTotalPagesCount()
		if totalPages > 0 {
			inputActions.JumpToPage(totalPages)
		}
	case "page_input":
		if !inputState.IsInPageInputMode() {
			inputActions.EnterPageInputMode()
		}
	case "zoom_in":
		inputActions.ZoomIn()
	case "zoom_out":
		inputActions.ZoomOut()
	case "zoom_reset":
		inputActions.ZoomReset()
	case "scroll_up":
		inputActions.ScrollUp()
	case "scroll_down":
		inputActions.ScrollDown()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "reload":
		inputActions.Reload()
	case "cycle_sort":
		inputActions.CycleSortMethod()
	default:
		return false
	}

	return true
}

// globalActionExecutor is the global instance of ActionExecutor used throughout the application
var globalActionExecutor = NewActionExecutor()

// actionNames returns action names in table order.
func actionNames() []string {
	names := make([]string, 0, len(actionDefinitions))
	for _, action := range actionDefinitions {
		names = append(names, action.Name)
	}
	return names
}

func isKnownAction(name string) bool {
	return slices.Contains(actionNames(), name)
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = slices.Clone(action.Keys)
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = slices.Clone(action.MouseActions)
	}
	return mousebindings
}

// validateBindings checks action names, parses every binding with parse, and
// reports bindings shared by two actions. parse returns a canonical form.
func validateBindings(bindings map[string][]string, parse func(string) (string, error)) error {
	var errs []error
	owner := make(map[string]string)

	// Sorted for stable error messages
	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}
	slices.Sort(actions)

	for _, action := range actions {
		if !isKnownAction(action) {
			errs = append(errs, fmt.Errorf("unknown action %q", action))
			continue
		}
		for _, binding := range bindings[action] {
			canonical, err := parse(binding)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", action, err))
				continue
			}
			if prev, exists := owner[canonical]; exists && prev != action {
				errs = append(errs, fmt.Errorf("%q is bound to both %s and %s", binding, prev, action))
				continue
			}
			owner[canonical] = action
		}
	}
	return errors.Join(errs...)
}

func validateKeybindings(keybindings map[string][]string) error {
	return validateBindings(keybindings, func(s string) (string, error) {
		combo, err := parseKeyString(s)
		if err != nil {
			return "", err
		}
		return combo.String(), nil
	})
}

func validateMousebindings(mousebindings map[string][]string) error {
	return validateBindings(mousebindings, func(s string) (string, error) {
		combo, err := parseMouseString(s)
		if err != nil {
			return "", err
		}
		return combo.String(), nil
	})
}

// parseModifiers fills the modifier flags from the leading parts of a
// "Shift+Ctrl+X" style binding.
func parseModifiers(parts []string) (shift, ctrl, alt bool, err error) {
	for _, part := range parts {
		switch strings.ToLower(part) {
		case "shift":
			shift = true
		case "ctrl":
			ctrl = true
		case "alt":
			alt = true
		default:
			return false, false, false, fmt.Errorf("unknown modifier %q", part)
		}
	}
	return shift, ctrl, alt, nil
}

func modifierPrefix(shift, ctrl, alt bool) string {
	var b strings.Builder
	if ctrl {
		b.WriteString("Ctrl+")
	}
	if alt {
		b.WriteString("Alt+")
	}
	if shift {
		b.WriteString("Shift+")
	}
	return b.String()
}
