package main

import (
	"fmt"
	"math"
)

// CommandKind enumerates the discrete commands produced from raw input.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdNextPage
	CmdPrevPage
	CmdZoomIn  // additive step
	CmdZoomOut // additive step
	CmdZoomByFactor
	CmdScrollBy
	CmdScrollUp
	CmdScrollDown
)

func (k CommandKind) String() string {
	switch k {
	case CmdNextPage:
		return "NextPage"
	case CmdPrevPage:
		return "PrevPage"
	case CmdZoomIn:
		return "ZoomIn"
	case CmdZoomOut:
		return "ZoomOut"
	case CmdZoomByFactor:
		return "ZoomByFactor"
	case CmdScrollBy:
		return "ScrollBy"
	case CmdScrollUp:
		return "ScrollUp"
	case CmdScrollDown:
		return "ScrollDown"
	default:
		return "None"
	}
}

// Command is one unit of work for the Controller. Factor is set for
// CmdZoomByFactor, Delta for CmdScrollBy.
type Command struct {
	Kind   CommandKind
	Factor float64
	Delta  int
}

func (c Command) String() string {
	switch c.Kind {
	case CmdZoomByFactor:
		return fmt.Sprintf("ZoomByFactor(%.4g)", c.Factor)
	case CmdScrollBy:
		return fmt.Sprintf("ScrollBy(%d)", c.Delta)
	default:
		return c.Kind.String()
	}
}

// TouchPhase is where a touch event sits in its sequence.
type TouchPhase int

const (
	TouchBegin TouchPhase = iota
	TouchUpdate
	TouchEnd
)

// TouchPoint is an active contact position in window coordinates.
type TouchPoint struct {
	X, Y float64
}

// TouchEvent carries all currently active points.
type TouchEvent struct {
	Phase  TouchPhase
	Points []TouchPoint
}

// WheelEvent is one frame of wheel movement. DeltaY > 0 means away from the
// user (up). PreciseZoom is true while the zoom modifier is held.
type WheelEvent struct {
	DeltaY      float64
	PreciseZoom bool
}

// GestureSettings configures pinch debouncing.
type GestureSettings struct {
	PinchThreshold  float64 // minimum pinch scale change before a command is emitted
	PinchZoomFactor float64 // factor emitted per pinch step, > 1
}

func DefaultGestureSettings() GestureSettings {
	return GestureSettings{
		PinchThreshold:  0.05,
		PinchZoomFactor: 1.1,
	}
}

// pinchTracking exists only while a two-point touch sequence is active.
type pinchTracking struct {
	initialDistance float64
	lastPinchScale  float64
}

// GestureTranslator turns touch and wheel input into Commands.
// A nil pinch means Idle.
type GestureTranslator struct {
	settings GestureSettings
	pinch    *pinchTracking
}

func NewGestureTranslator(settings GestureSettings) *GestureTranslator {
	return &GestureTranslator{settings: settings}
}

// Tracking reports whether a pinch sequence is in progress.
func (g *GestureTranslator) Tracking() bool {
	return g.pinch != nil
}

// HandleTouch feeds one touch event through the pinch state machine. The
// second return value is false when nothing is emitted.
func (g *GestureTranslator) HandleTouch(ev TouchEvent) (Command, bool) {
	if ev.Phase == TouchEnd || len(ev.Points) < 2 {
		g.pinch = nil
		return Command{}, false
	}
	if len(ev.Points) != 2 {
		return Command{}, false
	}

	distance := pointDistance(ev.Points[0], ev.Points[1])
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return Command{}, false
	}

	if g.pinch == nil {
		if distance <= 0 {
			return Command{}, false
		}
		g.pinch = &pinchTracking{initialDistance: distance, lastPinchScale: 1.0}
		return Command{}, false
	}

	scale := distance / g.pinch.initialDistance
	delta := scale - g.pinch.lastPinchScale
	if math.Abs(delta) <= g.settings.PinchThreshold {
		return Command{}, false
	}
	g.pinch.lastPinchScale = scale

	factor := g.settings.PinchZoomFactor
	if delta < 0 {
		factor = 1 / factor
	}
	return Command{Kind: CmdZoomByFactor, Factor: factor}, true
}

// TranslateWheel maps a wheel event to a zoom or scroll command.
func (g *GestureTranslator) TranslateWheel(ev WheelEvent) (Command, bool) {
	switch {
	case ev.DeltaY > 0 && ev.PreciseZoom:
		return Command{Kind: CmdZoomIn}, true
	case ev.DeltaY < 0 && ev.PreciseZoom:
		return Command{Kind: CmdZoomOut}, true
	case ev.DeltaY > 0:
		return Command{Kind: CmdScrollUp}, true
	case ev.DeltaY < 0:
		return Command{Kind: CmdScrollDown}, true
	}
	return Command{}, false
}

func pointDistance(a, b TouchPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
