package main

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds reported by NavigationState. Match them with errors.Is.
var (
	ErrDecode     = errors.New("could not load document")
	ErrNoDocument = errors.New("no document loaded")
	ErrOutOfRange = errors.New("page out of range")
	ErrAtBoundary = errors.New("already at document boundary")
)

// DecodeError describes a document that failed to open.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Could not load document: %v", e.Err)
	}
	return "Could not load document: " + e.Reason
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// PageRangeError is returned for an explicit page number outside [1, PageCount].
type PageRangeError struct {
	Page      int
	PageCount int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("Page number must be between 1 and %d.", e.PageCount)
}

func (e *PageRangeError) Unwrap() error { return ErrOutOfRange }

// BoundaryError is returned by next/previous on the last/first page.
// It is a notice, not a failure.
type BoundaryError struct {
	Last bool
}

func (e *BoundaryError) Error() string {
	if e.Last {
		return "You are already on the last page."
	}
	return "You are already on the first page."
}

func (e *BoundaryError) Unwrap() error { return ErrAtBoundary }

// Limits bounds the session. The zero value is not usable; start from
// DefaultLimits.
type Limits struct {
	MinZoom        float64
	MaxZoom        float64
	DefaultZoom    float64
	ZoomStep       float64
	ScrollStep     int
	KeepZoomOnLoad bool
}

// DefaultLimits returns the stock zoom range [0.5, 3.0], a 0.1 zoom step and
// a 100px scroll step.
func DefaultLimits() Limits {
	return Limits{
		MinZoom:     0.5,
		MaxZoom:     3.0,
		DefaultZoom: 1.0,
		ZoomStep:    0.1,
		ScrollStep:  100,
	}
}

// Snapshot is a value copy of the session for display.
type Snapshot struct {
	IsOpen       bool
	PageCount    int
	CurrentPage  int
	Zoom         float64
	ScrollOffset int
}

// NavigationState is the single owner of page, zoom and scroll state.
// It is not safe for concurrent use; the event loop serializes access.
type NavigationState struct {
	limits Limits

	isOpen       bool
	pageCount    int
	currentPage  int
	zoom         float64
	scrollOffset int
}

// NewNavigationState returns a session in the no-document state.
func NewNavigationState(limits Limits) *NavigationState {
	n := &NavigationState{limits: limits}
	n.Reset()
	return n
}

// Limits returns the limits the session was built with.
func (n *NavigationState) Limits() Limits {
	return n.limits
}

// Load records the result of an external open call. A non-nil openErr or a
// page count below 1 resets the session and returns a *DecodeError.
func (n *NavigationState) Load(pageCount int, openErr error) error {
	if openErr != nil {
		n.Reset()
		return &DecodeError{Err: openErr}
	}
	if pageCount < 1 {
		n.Reset()
		return &DecodeError{Reason: fmt.Sprintf("document has no pages (%d)", pageCount)}
	}

	n.isOpen = true
	n.pageCount = pageCount
	n.currentPage = 1
	n.scrollOffset = 0
	if !n.limits.KeepZoomOnLoad {
		n.zoom = n.limits.DefaultZoom
	}
	return nil
}

// Reset returns to the no-document state.
func (n *NavigationState) Reset() {
	n.isOpen = false
	n.pageCount = 0
	n.currentPage = 0
	n.zoom = n.limits.DefaultZoom
	n.scrollOffset = 0
}

func (n *NavigationState) GoToPage(page int) error {
	if !n.isOpen {
		return ErrNoDocument
	}
	if page < 1 || page > n.pageCount {
		return &PageRangeError{Page: page, PageCount: n.pageCount}
	}
	n.currentPage = page
	n.scrollOffset = 0
	return nil
}

func (n *NavigationState) NextPage() error {
	if !n.isOpen {
		return ErrNoDocument
	}
	if n.currentPage >= n.pageCount {
		return &BoundaryError{Last: true}
	}
	return n.GoToPage(n.currentPage + 1)
}

func (n *NavigationState) PrevPage() error {
	if !n.isOpen {
		return ErrNoDocument
	}
	if n.currentPage <= 1 {
		return &BoundaryError{Last: false}
	}
	return n.GoToPage(n.currentPage - 1)
}

// ZoomInAdd adds step to the zoom, clamped. Zoom operations never fail.
func (n *NavigationState) ZoomInAdd(step float64) {
	n.zoom = n.clampZoom(n.zoom + step)
}

func (n *NavigationState) ZoomOutSub(step float64) {
	n.zoom = n.clampZoom(n.zoom - step)
}

// ZoomInMul multiplies the zoom by factor, clamped. A non-positive factor
// leaves the zoom untouched.
func (n *NavigationState) ZoomInMul(factor float64) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	n.zoom = n.clampZoom(n.zoom * factor)
}

func (n *NavigationState) ZoomOutDiv(factor float64) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	n.zoom = n.clampZoom(n.zoom / factor)
}

// ResetZoom restores the default zoom.
func (n *NavigationState) ResetZoom() {
	n.zoom = n.clampZoom(n.limits.DefaultZoom)
}

// SetZoom sets the zoom, clamped. NaN is ignored.
func (n *NavigationState) SetZoom(zoom float64) {
	if math.IsNaN(zoom) {
		return
	}
	n.zoom = n.clampZoom(zoom)
}

// ScrollTo moves the scroll offset to offset, clamped to [0, maxOffset].
func (n *NavigationState) ScrollTo(offset, maxOffset int) error {
	if !n.isOpen {
		return ErrNoDocument
	}
	n.scrollOffset = clampInt(offset, 0, maxOffset)
	return nil
}

func (n *NavigationState) ScrollBy(delta, maxOffset int) error {
	return n.ScrollTo(n.scrollOffset+delta, maxOffset)
}

// ClampScroll pulls the offset back inside [0, maxOffset] after the page
// shrank.
func (n *NavigationState) ClampScroll(maxOffset int) {
	n.scrollOffset = clampInt(n.scrollOffset, 0, maxOffset)
}

func (n *NavigationState) Snapshot() Snapshot {
	return Snapshot{
		IsOpen:       n.isOpen,
		PageCount:    n.pageCount,
		CurrentPage:  n.currentPage,
		Zoom:         n.zoom,
		ScrollOffset: n.scrollOffset,
	}
}

func (n *NavigationState) clampZoom(z float64) float64 {
	return math.Max(n.limits.MinZoom, math.Min(n.limits.MaxZoom, z))
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
