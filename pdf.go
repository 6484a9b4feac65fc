package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

const (
	pointsToPixels = 96.0 / 72.0
	letterWidthPt  = 612.0
	letterHeightPt = 792.0
)

var (
	pageBackground = color.RGBA{255, 255, 255, 255}
	pageBorder     = color.RGBA{200, 200, 200, 255}
	pageLabel      = color.RGBA{120, 120, 120, 255}
)

// pdfDocument renders PDF pages with the content stream reader. Pages whose
// content cannot be read render as blank sheets of the right size.
type pdfDocument struct {
	path      string
	title     string
	pageCount int

	mu    sync.Mutex // guards r and pages
	r     *pdf.Reader
	pages map[int]pdfPage
}

type pdfPage struct {
	dict pdf.Dict
	box  pdf.Rectangle
}

func openPDFDocument(path string) (*pdfDocument, error) {
	r, err := pdf.Open(path, nil)
	if err != nil {
		return nil, err
	}

	n, err := pagetree.NumPages(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("reading page tree of %s: %w", path, err)
	}

	doc := &pdfDocument{
		path:      path,
		title:     filepath.Base(path),
		r:         r,
		pageCount: n,
		pages:     make(map[int]pdfPage),
	}
	if info := r.GetMeta().Info; info != nil {
		if title := strings.TrimSpace(string(info.Title)); title != "" {
			doc.title = title
		}
	}
	return doc, nil
}

func (d *pdfDocument) Path() string   { return d.path }
func (d *pdfDocument) Title() string  { return d.title }
func (d *pdfDocument) PageCount() int { return d.pageCount }

func (d *pdfDocument) PageName(index int) string {
	return fmt.Sprintf("Page %d", index+1)
}

func (d *pdfDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Close()
}

// page returns the page dictionary and its crop box, falling back to the
// media box and then to US letter. The caller holds d.mu.
func (d *pdfDocument) page(index int) (pdfPage, error) {
	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	dict, err := pagetree.GetPage(d.r, index)
	if err != nil {
		return pdfPage{}, err
	}
	box := dict["CropBox"]
	if box == nil {
		box = dict["MediaBox"]
	}
	rect, err := pdf.GetRectangle(d.r, box)
	if err != nil {
		return pdfPage{}, err
	}

	p := pdfPage{dict: dict, box: pdf.Rectangle{URx: letterWidthPt, URy: letterHeightPt}}
	if rect != nil && rect.URx-rect.LLx > 0 && rect.URy-rect.LLy > 0 {
		p.box = *rect
	}
	d.pages[index] = p
	return p, nil
}

func (d *pdfDocument) RenderPage(index int, zoom float64) (image.Image, error) {
	if index < 0 || index >= d.pageCount {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(index)
	if err != nil {
		return nil, fmt.Errorf("reading page %d: %w", index+1, err)
	}

	img := blankSheet(p.box, zoom)
	if err := rasterizePage(d.r, p.dict, p.box, zoom, img); err != nil {
		log.Printf("Warning: rendering page %d of %s: %v", index+1, d.path, err)
		img = blankSheet(p.box, zoom)
		drawFrame(img, pageBorder, 2)
		fd := &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{pageLabel},
			Face: basicfont.Face7x13,
			Dot:  fixed.P(12, 24),
		}
		fd.DrawString(fmt.Sprintf("%s - page %d of %d", d.title, index+1, d.pageCount))
	}
	return img, nil
}

func blankSheet(box pdf.Rectangle, zoom float64) *image.RGBA {
	w := max(1, int((box.URx-box.LLx)*pointsToPixels*zoom))
	h := max(1, int((box.URy-box.LLy)*pointsToPixels*zoom))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{pageBackground}, image.Point{}, draw.Src)
	return img
}

func drawFrame(img *image.RGBA, c color.Color, width int) {
	b := img.Bounds()
	src := &image.Uniform{c}
	for _, r := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+width),
		image.Rect(b.Min.X, b.Max.Y-width, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Max.Y),
		image.Rect(b.Max.X-width, b.Min.Y, b.Max.X, b.Max.Y),
	} {
		draw.Draw(img, r.Intersect(b), src, image.Point{}, draw.Src)
	}
}
