package main

import (
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocument records which pages were rendered. With started and release
// set, RenderPage announces itself and blocks until release is closed.
type fakeDocument struct {
	pages   int
	started chan int
	release chan struct{}

	mu       sync.Mutex
	rendered []int
}

func (d *fakeDocument) Path() string              { return "fake.cbz" }
func (d *fakeDocument) Title() string             { return "fake" }
func (d *fakeDocument) PageCount() int            { return d.pages }
func (d *fakeDocument) PageName(index int) string { return fmt.Sprintf("%d.png", index+1) }
func (d *fakeDocument) Close() error              { return nil }

func (d *fakeDocument) RenderPage(index int, zoom float64) (image.Image, error) {
	d.mu.Lock()
	d.rendered = append(d.rendered, index)
	d.mu.Unlock()
	if d.started != nil {
		d.started <- index
	}
	if d.release != nil {
		<-d.release
	}
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func (d *fakeDocument) renders() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.rendered...)
}

// newTestPageCache caches nil images so no graphics context is needed.
func newTestPageCache(t *testing.T, cacheSize, preloadCount int, enabled bool) *PageCache {
	t.Helper()
	pc := NewPageCache(cacheSize, preloadCount, enabled)
	pc.newImage = func(image.Image) *ebiten.Image { return nil }
	t.Cleanup(pc.Stop)
	return pc
}

func TestPreloadPages(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		direction  NavigationDirection
		pageCount  int
		maxPreload int
		want       []int
	}{
		{"forward", 3, NavigationForward, 10, 2, []int{4, 5}},
		{"forward near end", 9, NavigationForward, 10, 2, []int{10}},
		{"forward on last page", 10, NavigationForward, 10, 2, nil},
		{"backward", 5, NavigationBackward, 10, 2, []int{4, 3}},
		{"backward near start", 2, NavigationBackward, 10, 3, []int{1}},
		{"jump", 5, NavigationJump, 10, 4, []int{6, 7, 4, 3}},
		{"jump preloads at least one each way", 5, NavigationJump, 10, 1, []int{6, 4}},
		{"jump on single page", 1, NavigationJump, 1, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preloadPages(tt.page, tt.direction, tt.pageCount, tt.maxPreload))
		})
	}
}

func TestPageCacheKey(t *testing.T) {
	assert.Equal(t, "3@1.000", pageCacheKey(3, 1.0))
	assert.NotEqual(t, pageCacheKey(3, 1.0), pageCacheKey(3, 1.1))
	assert.NotEqual(t, pageCacheKey(3, 1.0), pageCacheKey(4, 1.0))
}

func TestPageCacheRendersOnMiss(t *testing.T) {
	pc := newTestPageCache(t, 8, 2, false)
	assert.Nil(t, pc.Page(1, 1.0), "no document")

	doc := &fakeDocument{pages: 3}
	pc.SetDocument(doc)

	pc.Page(1, 1.0)
	pc.Page(1, 1.0)
	pc.Page(2, 1.5)
	pc.Page(0, 1.0)
	pc.Page(4, 1.0)
	assert.Equal(t, []int{0, 1}, doc.renders())
	assert.Equal(t, 2, pc.Len())

	other := &fakeDocument{pages: 1}
	pc.SetDocument(other)
	assert.Equal(t, 0, pc.Len())
	pc.Page(1, 1.0)
	assert.Equal(t, []int{0}, other.renders())
}

func TestPageCachePreload(t *testing.T) {
	t.Run("forward neighbors", func(t *testing.T) {
		pc := newTestPageCache(t, 8, 2, true)
		doc := &fakeDocument{pages: 5}
		pc.SetDocument(doc)

		pc.Preload(1, 1.0, NavigationForward)
		require.Eventually(t, func() bool { return pc.Stats().LoadedCount == 2 }, time.Second, 5*time.Millisecond)

		assert.ElementsMatch(t, []int{1, 2}, doc.renders())
		assert.Equal(t, NavigationForward, pc.Stats().LastDirection)

		// preloaded pages are cache hits
		pc.Page(2, 1.0)
		pc.Page(3, 1.0)
		assert.Len(t, doc.renders(), 2)
	})

	t.Run("disabled", func(t *testing.T) {
		pc := newTestPageCache(t, 8, 2, false)
		doc := &fakeDocument{pages: 5}
		pc.SetDocument(doc)

		pc.Preload(1, 1.0, NavigationForward)
		assert.Never(t, func() bool { return len(doc.renders()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	})
}

func TestPageCacheDropsPreloadOfReplacedDocument(t *testing.T) {
	pc := newTestPageCache(t, 8, 1, true)
	old := &fakeDocument{pages: 3, started: make(chan int, 1), release: make(chan struct{})}
	pc.SetDocument(old)

	pc.Preload(1, 1.0, NavigationForward)
	select {
	case index := <-old.started:
		require.Equal(t, 1, index)
	case <-time.After(time.Second):
		t.Fatal("preload did not start")
	}

	// swap while the old document is still rendering page 2
	next := &fakeDocument{pages: 3}
	pc.SetDocument(next)
	close(old.release)

	require.Eventually(t, func() bool { return pc.Stats().LoadedCount == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, pc.Len())

	pc.Page(2, 1.0)
	assert.Equal(t, []int{1}, next.renders())
}
