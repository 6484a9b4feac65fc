package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const overlayMessageDuration = 2 * time.Second

// RenderState is what the renderer may read from the viewer
type RenderState interface {
	GetNavigation() Snapshot
	GetCurrentPage() *ebiten.Image // rasterized at the current zoom, nil if none
	GetSortMethod() SortMethod

	IsShowingHelp() bool
	IsShowingInfo() bool
	IsInPageInputMode() bool
	GetPageInputBuffer() string
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time

	// Help overlay
	GetFontSize() float64
	GetZoomModifier() string
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// RenderStateSnapshot is the part of the render state that decides whether
// a frame must be redrawn. Help, info and page input changes always come
// from handled input, which forces a redraw anyway.
type RenderStateSnapshot struct {
	Navigation         Snapshot
	OverlayMessage     string
	OverlayMessageTime time.Time
	WindowWidth        int
	WindowHeight       int
}

func NewRenderStateSnapshot(state RenderState, windowWidth, windowHeight int) *RenderStateSnapshot {
	return &RenderStateSnapshot{
		Navigation:         state.GetNavigation(),
		OverlayMessage:     state.GetOverlayMessage(),
		OverlayMessageTime: state.GetOverlayMessageTime(),
		WindowWidth:        windowWidth,
		WindowHeight:       windowHeight,
	}
}

func (s *RenderStateSnapshot) overlayVisible() bool {
	return s.OverlayMessage != "" && time.Since(s.OverlayMessageTime) < overlayMessageDuration
}

// Equals reports whether both snapshots draw the same frame. Overlay times
// only matter while a message is visible, so an expiring message still
// triggers one last redraw.
func (s *RenderStateSnapshot) Equals(other *RenderStateSnapshot) bool {
	if other == nil {
		return false
	}
	if s.Navigation != other.Navigation ||
		s.WindowWidth != other.WindowWidth || s.WindowHeight != other.WindowHeight ||
		s.OverlayMessage != other.OverlayMessage {
		return false
	}

	visible := s.overlayVisible()
	if visible != other.overlayVisible() {
		return false
	}
	return !visible || s.OverlayMessageTime.Equal(other.OverlayMessageTime)
}

// InputActions is what bound actions and pointer input may do to the viewer
type InputActions interface {
	Exit()
	Reload()
	ToggleHelp()
	ToggleInfo()
	ToggleFullscreen()

	EnterPageInputMode()
	ExitPageInputMode()
	ProcessPageInput()
	UpdatePageInputBuffer(buffer string)

	CycleSortMethod()

	NavigateNext()
	NavigatePrevious()
	JumpToPage(page int)

	ZoomIn()
	ZoomOut()
	ZoomReset()
	ScrollUp()
	ScrollDown()
	ScrollByDelta(delta int)

	// ApplyWheel and ApplyTouch hand raw pointer input to the gesture
	// translator
	ApplyWheel(ev WheelEvent)
	ApplyTouch(ev TouchEvent)

	ShowOverlayMessage(message string)
	GetTotalPagesCount() int
}

// InputState is the input state the input handler needs back
type InputState interface {
	IsInPageInputMode() bool
	GetPageInputBuffer() string
}
