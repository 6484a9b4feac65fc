package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Document is an opened, paginated source. Page indexes are 0-based here;
// the 1-based translation happens in the caller.
type Document interface {
	Path() string
	Title() string
	PageCount() int
	PageName(index int) string
	// RenderPage rasterizes one page at the given zoom.
	RenderPage(index int, zoom float64) (image.Image, error)
	Close() error
}

// startPager is implemented by documents that want to open somewhere other
// than the first page, e.g. a single image opened among its siblings.
type startPager interface {
	StartPage() int
}

func isPDFExt(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// OpenDocument picks a document source by path: PDF file, image file,
// archive of images, or directory of images.
func OpenDocument(path string, sortMethod SortMethod) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	switch {
	case info.IsDir():
		return openImageDirectory(path, sortMethod)
	case isPDFExt(path):
		return openPDFDocument(path)
	case isArchiveExt(path):
		return openImageArchive(path, sortMethod)
	case isSupportedExt(path):
		return openImageSiblings(path, sortMethod)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// pageCountOf adapts an open result to NavigationState.Load.
func pageCountOf(doc Document, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return doc.PageCount(), nil
}

// scalePage resizes src by zoom. A zoom of 1 returns src unchanged.
func scalePage(src image.Image, zoom float64) image.Image {
	if zoom == 1 {
		return src
	}
	b := src.Bounds()
	w := max(1, int(float64(b.Dx())*zoom+0.5))
	h := max(1, int(float64(b.Dy())*zoom+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
