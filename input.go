package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// dragState tracks a left-button drag used for scrolling
type dragState struct {
	pressed  bool
	dragging bool
	startY   int
	lastY    int
}

// InputHandler handles keyboard, mouse, wheel and touch input
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
	zoomModifier        ebiten.Key

	touchIDs    []ebiten.TouchID
	touchActive bool
	drag        dragState
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState InputState, keybindingManager *KeybindingManager, mousebindingManager *MousebindingManager, zoomModifier string) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   keybindingManager,
		mousebindingManager: mousebindingManager,
		zoomModifier:        modifierKey(zoomModifier),
	}
}

// modifierKey maps a zoom_modifier config value to a key
func modifierKey(name string) ebiten.Key {
	switch name {
	case modifierAlt:
		return ebiten.KeyAlt
	case modifierShift:
		return ebiten.KeyShift
	case modifierMeta:
		return ebiten.KeyMeta
	default:
		return ebiten.KeyControl
	}
}

// HandleInput processes all input for the current frame
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	// Page input mode captures the keyboard
	if h.inputState.IsInPageInputMode() {
		return h.handlePageInputMode()
	}

	inputProcessed := false

	for _, action := range actionNames() {
		if h.keybindingManager.ExecuteAction(action, h.inputActions, h.inputState) {
			inputProcessed = true
			continue
		}
		if h.mousebindingManager.ExecuteAction(action, h.inputActions, h.inputState) {
			inputProcessed = true
		}
	}

	inputProcessed = h.handleWheel() || inputProcessed
	inputProcessed = h.handleTouch() || inputProcessed
	inputProcessed = h.handleDragScroll() || inputProcessed

	return inputProcessed
}

func (h *InputHandler) handlePageInputMode() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		// Cancel page input
		h.inputActions.ExitPageInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		// Confirm page input; the mode stays open on an invalid number
		h.inputActions.ProcessPageInput()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		currentBuffer := h.inputState.GetPageInputBuffer()
		if len(currentBuffer) > 0 {
			h.inputActions.UpdatePageInputBuffer(currentBuffer[:len(currentBuffer)-1])
		}
		return true
	}

	// Handle digit input (both regular and numpad)
	var digit string
	if digit = h.checkDigitKeys(ebiten.Key0, ebiten.Key9, '0'); digit == "" {
		digit = h.checkDigitKeys(ebiten.KeyNumpad0, ebiten.KeyNumpad9, '0')
	}
	if digit != "" {
		h.inputActions.UpdatePageInputBuffer(h.inputState.GetPageInputBuffer() + digit)
		return true
	}

	return false
}

func (h *InputHandler) checkDigitKeys(startKey, endKey ebiten.Key, baseChar rune) string {
	for key := startKey; key <= endKey; key++ {
		if inpututil.IsKeyJustPressed(key) {
			return string(baseChar + rune(key-startKey))
		}
	}
	return ""
}

// handleWheel forwards vertical wheel movement to the gesture translator
func (h *InputHandler) handleWheel() bool {
	settings := h.mousebindingManager.GetSettings()
	if !settings.EnableMouse {
		return false
	}

	_, dy := ebiten.Wheel()
	if dy == 0 {
		return false
	}
	if settings.WheelInverted {
		dy = -dy
	}
	dy *= settings.WheelSensitivity

	h.inputActions.ApplyWheel(WheelEvent{
		DeltaY:      dy,
		PreciseZoom: ebiten.IsKeyPressed(h.zoomModifier),
	})
	return true
}

// handleTouch builds a TouchEvent from the active touches. An event is sent
// every frame while touches are down, and once more when they all lift.
func (h *InputHandler) handleTouch() bool {
	h.touchIDs = ebiten.AppendTouchIDs(h.touchIDs[:0])

	if len(h.touchIDs) == 0 {
		if !h.touchActive {
			return false
		}
		h.touchActive = false
		h.inputActions.ApplyTouch(TouchEvent{Phase: TouchEnd})
		return true
	}

	points := make([]TouchPoint, 0, len(h.touchIDs))
	for _, id := range h.touchIDs {
		x, y := ebiten.TouchPosition(id)
		points = append(points, TouchPoint{X: float64(x), Y: float64(y)})
	}

	phase := TouchUpdate
	if !h.touchActive || len(inpututil.AppendJustPressedTouchIDs(nil)) > 0 {
		phase = TouchBegin
	}
	h.touchActive = true

	h.inputActions.ApplyTouch(TouchEvent{Phase: phase, Points: points})
	return true
}

// handleDragScroll scrolls the page while the left button is dragged
// vertically past the drag threshold
func (h *InputHandler) handleDragScroll() bool {
	settings := h.mousebindingManager.GetSettings()
	if !settings.EnableMouse || !settings.EnableDragScroll {
		return false
	}

	_, y := ebiten.CursorPosition()

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		h.drag = dragState{pressed: true, startY: y, lastY: y}
		return false
	case !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		h.drag = dragState{}
		return false
	case !h.drag.pressed:
		return false
	}

	if !h.drag.dragging {
		if abs(y-h.drag.startY) < settings.DragThreshold {
			return false
		}
		h.drag.dragging = true
	}

	delta := h.drag.lastY - y
	h.drag.lastY = y
	if delta == 0 {
		return false
	}
	h.inputActions.ScrollByDelta(delta)
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
