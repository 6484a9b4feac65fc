package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestController opens a document of pageCount pages whose pages all
// scroll by maxScroll pixels.
func newTestController(t *testing.T, pageCount, maxScroll int) *Controller {
	t.Helper()
	c := NewController(DefaultLimits(), DefaultGestureSettings(), ViewportFunc(func(page int, zoom float64) int {
		return maxScroll
	}))
	require.NoError(t, c.Navigation().Load(pageCount, nil))
	return c
}

func TestControllerWheelScrollsWithinPage(t *testing.T) {
	c := newTestController(t, 3, 250)

	handled, err := c.HandleWheel(WheelEvent{DeltaY: -1})
	require.True(t, handled)
	require.NoError(t, err)
	assert.Equal(t, 100, c.Snapshot().ScrollOffset)

	c.HandleWheel(WheelEvent{DeltaY: -1})
	c.HandleWheel(WheelEvent{DeltaY: -1})
	assert.Equal(t, 250, c.Snapshot().ScrollOffset, "scroll stops at the bottom")
	assert.Equal(t, 1, c.Snapshot().CurrentPage)
}

func TestControllerWheelDownAtBottomTurnsPage(t *testing.T) {
	c := newTestController(t, 3, 250)
	require.NoError(t, c.Navigation().ScrollTo(250, 250))

	_, err := c.HandleWheel(WheelEvent{DeltaY: -1})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Snapshot().CurrentPage)
	assert.Equal(t, 0, c.Snapshot().ScrollOffset)
}

func TestControllerWheelUpAtTopTurnsBack(t *testing.T) {
	c := newTestController(t, 3, 250)
	require.NoError(t, c.Navigation().GoToPage(2))

	_, err := c.HandleWheel(WheelEvent{DeltaY: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Snapshot().CurrentPage)
	assert.Equal(t, 250, c.Snapshot().ScrollOffset, "lands at the bottom of the previous page")
}

func TestControllerBoundaries(t *testing.T) {
	t.Run("wheel up on first page", func(t *testing.T) {
		c := newTestController(t, 3, 0)
		before := c.Snapshot()

		_, err := c.HandleWheel(WheelEvent{DeltaY: 1})
		require.ErrorIs(t, err, ErrAtBoundary)
		assert.True(t, IsNotice(err))
		assert.Equal(t, before, c.Snapshot())
	})

	t.Run("wheel down on last page", func(t *testing.T) {
		c := newTestController(t, 2, 0)
		require.NoError(t, c.Navigation().GoToPage(2))

		_, err := c.HandleWheel(WheelEvent{DeltaY: -1})
		require.ErrorIs(t, err, ErrAtBoundary)
		assert.Equal(t, 2, c.Snapshot().CurrentPage)
	})

	t.Run("next page on last page", func(t *testing.T) {
		c := newTestController(t, 1, 0)
		err := c.Execute(Command{Kind: CmdNextPage})
		assert.ErrorIs(t, err, ErrAtBoundary)
	})
}

func TestControllerWithoutDocument(t *testing.T) {
	c := NewController(DefaultLimits(), DefaultGestureSettings(), nil)

	_, err := c.HandleWheel(WheelEvent{DeltaY: -1})
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.False(t, IsNotice(err))

	assert.ErrorIs(t, c.Execute(Command{Kind: CmdNextPage}), ErrNoDocument)
	assert.ErrorIs(t, c.Execute(Command{Kind: CmdScrollBy, Delta: 10}), ErrNoDocument)
}

func TestControllerWheelZoom(t *testing.T) {
	c := newTestController(t, 1, 0)

	_, err := c.HandleWheel(WheelEvent{DeltaY: 1, PreciseZoom: true})
	require.NoError(t, err)
	assert.InDelta(t, 1.1, c.Snapshot().Zoom, 1e-9)

	c.HandleWheel(WheelEvent{DeltaY: -1, PreciseZoom: true})
	c.HandleWheel(WheelEvent{DeltaY: -1, PreciseZoom: true})
	assert.InDelta(t, 0.9, c.Snapshot().Zoom, 1e-9)
}

func TestControllerPinchZoom(t *testing.T) {
	c := newTestController(t, 1, 0)

	handled, err := c.HandleTouch(TouchEvent{Phase: TouchBegin, Points: twoPoints(100)})
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = c.HandleTouch(TouchEvent{Phase: TouchUpdate, Points: twoPoints(112)})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.InDelta(t, 1.1, c.Snapshot().Zoom, 1e-9)

	handled, _ = c.HandleTouch(TouchEvent{Phase: TouchEnd})
	assert.False(t, handled)
	assert.InDelta(t, 1.1, c.Snapshot().Zoom, 1e-9)
}

func TestControllerZoomClampsScroll(t *testing.T) {
	// The page grows and shrinks with the zoom
	c := NewController(DefaultLimits(), DefaultGestureSettings(), ViewportFunc(func(page int, zoom float64) int {
		return int(1000*zoom) - 800
	}))
	require.NoError(t, c.Navigation().Load(1, nil))

	require.NoError(t, c.Execute(Command{Kind: CmdZoomByFactor, Factor: 2}))
	require.NoError(t, c.Navigation().ScrollTo(1200, 1200))
	assert.Equal(t, 1200, c.Snapshot().ScrollOffset)

	c.ResetZoom()
	assert.Equal(t, 1.0, c.Snapshot().Zoom)
	assert.Equal(t, 200, c.Snapshot().ScrollOffset)

	require.NoError(t, c.Execute(Command{Kind: CmdZoomOut}))
	assert.Equal(t, 100, c.Snapshot().ScrollOffset)
}

func TestControllerScrollBy(t *testing.T) {
	c := newTestController(t, 2, 300)

	require.NoError(t, c.Execute(Command{Kind: CmdScrollBy, Delta: 120}))
	assert.Equal(t, 120, c.Snapshot().ScrollOffset)

	require.NoError(t, c.Execute(Command{Kind: CmdScrollBy, Delta: 1000}))
	assert.Equal(t, 300, c.Snapshot().ScrollOffset)
	assert.Equal(t, 1, c.Snapshot().CurrentPage, "drag scrolling never turns the page")
}

func TestControllerZoomByFactor(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		factor float64
		want   float64
	}{
		{"grow", 1.0, 1.25, 1.25},
		{"shrink divides by the inverse", 2.0, 0.5, 1.0},
		{"shrink clamps at min", 0.6, 0.5, 0.5},
		{"grow clamps at max", 2.5, 2, 3.0},
		{"unit factor", 1.5, 1, 1.5},
		{"non-positive factor ignored", 1.5, 0, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, 1, 0)
			c.Navigation().SetZoom(tt.start)

			require.NoError(t, c.Execute(Command{Kind: CmdZoomByFactor, Factor: tt.factor}))
			assert.InDelta(t, tt.want, c.Snapshot().Zoom, 1e-9)
		})
	}
}

func TestControllerRestoreView(t *testing.T) {
	c := NewController(DefaultLimits(), DefaultGestureSettings(), ViewportFunc(func(page int, zoom float64) int {
		return int(1000*zoom) - 800
	}))
	require.NoError(t, c.Navigation().Load(2, nil))

	c.RestoreView(2.0, 700)
	assert.Equal(t, 2.0, c.Snapshot().Zoom)
	assert.Equal(t, 700, c.Snapshot().ScrollOffset)

	// the offset is clamped to the page at the restored zoom
	c.RestoreView(1.0, 700)
	assert.Equal(t, 200, c.Snapshot().ScrollOffset)
}
