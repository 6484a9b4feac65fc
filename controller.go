package main

import "errors"

// Viewport reports how far the given page can scroll at the given zoom.
// Only the display knows page and window heights.
type Viewport interface {
	MaxScroll(page int, zoom float64) int
}

// ViewportFunc adapts a plain function to Viewport.
type ViewportFunc func(page int, zoom float64) int

func (f ViewportFunc) MaxScroll(page int, zoom float64) int { return f(page, zoom) }

// Controller is the command sink: it owns the session and the gesture
// translator and applies Commands to the session.
type Controller struct {
	nav      *NavigationState
	gestures *GestureTranslator
	viewport Viewport
}

func NewController(limits Limits, gestures GestureSettings, viewport Viewport) *Controller {
	return &Controller{
		nav:      NewNavigationState(limits),
		gestures: NewGestureTranslator(gestures),
		viewport: viewport,
	}
}

// Navigation exposes the session for operations that are not commands
// (load, go to page, reset).
func (c *Controller) Navigation() *NavigationState {
	return c.nav
}

func (c *Controller) Snapshot() Snapshot {
	return c.nav.Snapshot()
}

// HandleTouch translates and executes a touch event. It reports whether a
// command ran.
func (c *Controller) HandleTouch(ev TouchEvent) (bool, error) {
	cmd, ok := c.gestures.HandleTouch(ev)
	if !ok {
		return false, nil
	}
	return true, c.Execute(cmd)
}

func (c *Controller) HandleWheel(ev WheelEvent) (bool, error) {
	cmd, ok := c.gestures.TranslateWheel(ev)
	if !ok {
		return false, nil
	}
	return true, c.Execute(cmd)
}

// Execute applies cmd to the session.
func (c *Controller) Execute(cmd Command) error {
	limits := c.nav.Limits()

	switch cmd.Kind {
	case CmdNextPage:
		return c.nav.NextPage()
	case CmdPrevPage:
		return c.nav.PrevPage()
	case CmdZoomIn:
		c.nav.ZoomInAdd(limits.ZoomStep)
		c.nav.ClampScroll(c.maxScroll())
	case CmdZoomOut:
		c.nav.ZoomOutSub(limits.ZoomStep)
		c.nav.ClampScroll(c.maxScroll())
	case CmdZoomByFactor:
		if cmd.Factor < 1 && cmd.Factor > 0 {
			c.nav.ZoomOutDiv(1 / cmd.Factor)
		} else {
			c.nav.ZoomInMul(cmd.Factor)
		}
		c.nav.ClampScroll(c.maxScroll())
	case CmdScrollBy:
		return c.nav.ScrollBy(cmd.Delta, c.maxScroll())
	case CmdScrollUp:
		return c.scrollUp(limits.ScrollStep)
	case CmdScrollDown:
		return c.scrollDown(limits.ScrollStep)
	}
	return nil
}

// ResetZoom restores the default zoom and keeps the scroll offset valid.
func (c *Controller) ResetZoom() {
	c.nav.ResetZoom()
	c.nav.ClampScroll(c.maxScroll())
}

// RestoreView puts back a zoom and scroll offset saved before the document
// was reopened. The offset is clamped to the page at the restored zoom.
func (c *Controller) RestoreView(zoom float64, scrollOffset int) {
	c.nav.SetZoom(zoom)
	c.nav.ScrollTo(scrollOffset, c.maxScroll())
}

// ClampScroll re-fits the scroll offset, e.g. after a window resize.
func (c *Controller) ClampScroll() {
	c.nav.ClampScroll(c.maxScroll())
}

// scrollUp moves up one step, or to the bottom of the previous page when
// already at the top.
func (c *Controller) scrollUp(step int) error {
	snap := c.nav.Snapshot()
	if !snap.IsOpen {
		return ErrNoDocument
	}
	if snap.ScrollOffset > 0 {
		return c.nav.ScrollBy(-step, c.maxScroll())
	}
	if err := c.nav.PrevPage(); err != nil {
		return err
	}
	bottom := c.maxScroll()
	return c.nav.ScrollTo(bottom, bottom)
}

// scrollDown moves down one step, or to the top of the next page when
// already at the bottom.
func (c *Controller) scrollDown(step int) error {
	snap := c.nav.Snapshot()
	if !snap.IsOpen {
		return ErrNoDocument
	}
	bottom := c.maxScroll()
	if snap.ScrollOffset < bottom {
		return c.nav.ScrollBy(step, bottom)
	}
	return c.nav.NextPage()
}

func (c *Controller) maxScroll() int {
	if c.viewport == nil {
		return 0
	}
	snap := c.nav.Snapshot()
	if !snap.IsOpen {
		return 0
	}
	return max(0, c.viewport.MaxScroll(snap.CurrentPage, snap.Zoom))
}

// IsNotice reports whether err is informational (a boundary hit) rather than
// a failure.
func IsNotice(err error) bool {
	return errors.Is(err, ErrAtBoundary)
}
