package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// NavigationDirection hints which neighbors to preload.
type NavigationDirection int

const (
	NavigationForward NavigationDirection = iota
	NavigationBackward
	NavigationJump
)

// PreloadStats counts preload work for the info display.
type PreloadStats struct {
	LoadedCount   int
	FailedCount   int
	LastDirection NavigationDirection
}

type preloadRequest struct {
	page      int // 1-based
	zoom      float64
	direction NavigationDirection
}

// PageCache holds rendered pages for the open document, keyed by page and
// zoom, and preloads neighbors on a background worker.
type PageCache struct {
	cache *lru.Cache[string, *ebiten.Image]

	// mu also covers swapping the document together with the purge, so a
	// preload finishing during a swap cannot cache a page of the old one.
	mu  sync.RWMutex
	doc Document

	newImage func(image.Image) *ebiten.Image

	requests   chan preloadRequest
	ctx        context.Context
	cancel     context.CancelFunc
	stats      PreloadStats
	maxPreload int
	enabled    bool
}

func newPageLRU(size int) *lru.Cache[string, *ebiten.Image] {
	onEvict := func(_ string, img *ebiten.Image) {
		if img != nil {
			img.Deallocate()
		}
	}
	cache, err := lru.NewWithEvict[string, *ebiten.Image](size, onEvict)
	if err != nil {
		log.Printf("Error: Failed to create LRU cache of size %d: %v", size, err)
		cache, _ = lru.NewWithEvict[string, *ebiten.Image](defaultCacheSize, onEvict)
	}
	return cache
}

// NewPageCache starts the preload worker. Call Stop when done.
func NewPageCache(cacheSize, preloadCount int, preloadEnabled bool) *PageCache {
	ctx, cancel := context.WithCancel(context.Background())
	pc := &PageCache{
		cache:      newPageLRU(cacheSize),
		requests:   make(chan preloadRequest, 16),
		ctx:        ctx,
		cancel:     cancel,
		newImage:   ebiten.NewImageFromImage,
		maxPreload: preloadCount,
		enabled:    preloadEnabled,
	}
	go pc.worker()
	return pc
}

func pageCacheKey(page int, zoom float64) string {
	return fmt.Sprintf("%d@%.3f", page, zoom)
}

// SetDocument swaps the document and drops every cached page.
func (pc *PageCache) SetDocument(doc Document) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.doc = doc
	pc.cache.Purge()
}

func (pc *PageCache) document() Document {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.doc
}

// Page returns the rendered page (1-based), rendering on a miss. A page
// that fails to render is replaced by an error placeholder.
func (pc *PageCache) Page(page int, zoom float64) *ebiten.Image {
	doc := pc.document()
	if doc == nil || page < 1 || page > doc.PageCount() {
		return nil
	}

	key := pageCacheKey(page, zoom)
	if img, ok := pc.cache.Get(key); ok {
		debugLog("Cache HIT: %s (cache: %d items)", key, pc.cache.Len())
		return img
	}

	img := pc.render(doc, page, zoom)
	pc.cache.Add(key, img)
	debugLog("Cache MISS: %s, rendered and cached (cache: %d items)", key, pc.cache.Len())
	return img
}

func (pc *PageCache) render(doc Document, page int, zoom float64) *ebiten.Image {
	raster, err := doc.RenderPage(page-1, zoom)
	if err != nil {
		log.Printf("Error: Failed to render page %d/%d of %s: %v", page, doc.PageCount(), doc.Path(), err)
		return CreateErrorImage(400, 300, doc.PageName(page-1), err.Error())
	}
	return pc.newImage(raster)
}

// Preload queues neighbors of page for background rendering. Pending
// requests are dropped in favor of the newest one.
func (pc *PageCache) Preload(page int, zoom float64, direction NavigationDirection) {
	if !pc.IsEnabled() {
		return
	}

drain:
	for {
		select {
		case <-pc.requests:
		default:
			break drain
		}
	}

	select {
	case pc.requests <- preloadRequest{page: page, zoom: zoom, direction: direction}:
	default:
		debugLog("Preload request channel full, skipping preload request")
	}
}

func (pc *PageCache) worker() {
	for {
		select {
		case <-pc.ctx.Done():
			return
		case req := <-pc.requests:
			pc.process(req)
		}
	}
}

func (pc *PageCache) process(req preloadRequest) {
	doc := pc.document()
	if doc == nil {
		return
	}

	pc.mu.Lock()
	pc.stats.LastDirection = req.direction
	pc.mu.Unlock()

	for _, page := range preloadPages(req.page, req.direction, doc.PageCount(), pc.maxPreload) {
		select {
		case <-pc.ctx.Done():
			return
		default:
		}

		key := pageCacheKey(page, req.zoom)
		if pc.cache.Contains(key) {
			continue
		}
		raster, err := doc.RenderPage(page-1, req.zoom)
		if err != nil {
			debugLog("Preload failed for page %d: %v", page, err)
			pc.mu.Lock()
			pc.stats.FailedCount++
			pc.mu.Unlock()
			continue
		}
		if !pc.store(doc, key, raster) {
			debugLog("Preload of page %d discarded, document changed", page)
			return
		}
	}
}

// store caches a preloaded page unless doc has been replaced meanwhile.
func (pc *PageCache) store(doc Document, key string, raster image.Image) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.stats.LoadedCount++
	if pc.doc != doc {
		return false
	}
	pc.cache.Add(key, pc.newImage(raster))
	return true
}

// preloadPages lists the 1-based pages to render after landing on page.
func preloadPages(page int, direction NavigationDirection, pageCount, maxPreload int) []int {
	var pages []int
	add := func(p int) {
		if p >= 1 && p <= pageCount {
			pages = append(pages, p)
		}
	}

	switch direction {
	case NavigationForward:
		for i := 1; i <= maxPreload; i++ {
			add(page + i)
		}
	case NavigationBackward:
		for i := 1; i <= maxPreload; i++ {
			add(page - i)
		}
	case NavigationJump:
		half := max(1, maxPreload/2)
		for i := 1; i <= half; i++ {
			add(page + i)
		}
		for i := 1; i <= half; i++ {
			add(page - i)
		}
	}
	return pages
}

func (pc *PageCache) IsEnabled() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.enabled
}

func (pc *PageCache) Stats() PreloadStats {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.stats
}

func (pc *PageCache) Len() int {
	return pc.cache.Len()
}

// Stop ends the preload worker.
func (pc *PageCache) Stop() {
	pc.cancel()
}
