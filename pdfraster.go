package main

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/reader"
)

// curveSteps is how many line segments a Bézier curve becomes when stroked.
const curveSteps = 12

type segmentKind uint8

const (
	segMove segmentKind = iota
	segLine
	segCubic
	segClose
)

// pathSegment holds device coordinates. Cubic segments use all three points,
// the others only the last one.
type pathSegment struct {
	kind segmentKind
	pts  [3][2]float64
}

type paintColors struct {
	fill, stroke color.Color
}

// pageRasterizer paints the path operators of a page content stream onto an
// RGBA image. Glyph outlines need the font loader, so each glyph is drawn as
// a translucent bar in the fill color.
type pageRasterizer struct {
	img    *image.RGBA
	raster *vector.Rasterizer
	device graphics.Matrix // default user space to image pixels
	rd     *reader.Reader

	path    []pathSegment
	current [2]float64
	start   [2]float64

	colors paintColors
	saved  []paintColors
}

// deviceMatrix maps PDF default user space inside box to pixel coordinates
// with the origin at the top left.
func deviceMatrix(box pdf.Rectangle, zoom float64) graphics.Matrix {
	s := pointsToPixels * zoom
	return graphics.Matrix{s, 0, 0, -s, -box.LLx * s, box.URy * s}
}

// rasterizePage draws the content stream of page onto img. img must already
// hold the page background.
func rasterizePage(r pdf.Getter, page pdf.Dict, box pdf.Rectangle, zoom float64, img *image.RGBA) (err error) {
	// the content reader panics on some malformed font dictionaries
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("content stream: %v", p)
		}
	}()

	b := img.Bounds()
	pr := &pageRasterizer{
		img:    img,
		raster: vector.NewRasterizer(b.Dx(), b.Dy()),
		device: deviceMatrix(box, zoom),
		rd:     reader.New(r, nil),
		colors: paintColors{fill: color.Black, stroke: color.Black},
	}
	pr.rd.UnknownOp = pr.pathOp
	pr.rd.EveryOp = pr.colorOp
	pr.rd.Text = pr.glyph
	return pr.rd.ParsePage(page, graphics.IdentityMatrix)
}

func (pr *pageRasterizer) toDevice(x, y float64) [2]float64 {
	dx, dy := pr.rd.CTM.Mul(pr.device).Apply(x, y)
	return [2]float64{dx, dy}
}

func numbers(args []pdf.Object) ([]float64, bool) {
	out := make([]float64, len(args))
	for i, a := range args {
		switch a := a.(type) {
		case pdf.Integer:
			out[i] = float64(a)
		case pdf.Real:
			out[i] = float64(a)
		default:
			return nil, false
		}
	}
	return out, true
}

func (pr *pageRasterizer) moveTo(p [2]float64) {
	pr.path = append(pr.path, pathSegment{kind: segMove, pts: [3][2]float64{2: p}})
	pr.current, pr.start = p, p
}

func (pr *pageRasterizer) lineTo(p [2]float64) {
	pr.path = append(pr.path, pathSegment{kind: segLine, pts: [3][2]float64{2: p}})
	pr.current = p
}

func (pr *pageRasterizer) cubeTo(c1, c2, p [2]float64) {
	pr.path = append(pr.path, pathSegment{kind: segCubic, pts: [3][2]float64{c1, c2, p}})
	pr.current = p
}

func (pr *pageRasterizer) closePath() {
	if len(pr.path) == 0 {
		return
	}
	pr.path = append(pr.path, pathSegment{kind: segClose, pts: [3][2]float64{2: pr.start}})
	pr.current = pr.start
}

// pathOp handles the path construction and painting operators, which the
// content reader leaves to the caller.
func (pr *pageRasterizer) pathOp(op string, args []pdf.Object) error {
	v, ok := numbers(args)
	if !ok {
		return nil
	}

	switch {
	case op == "m" && len(v) == 2:
		pr.moveTo(pr.toDevice(v[0], v[1]))
	case op == "l" && len(v) == 2:
		pr.lineTo(pr.toDevice(v[0], v[1]))
	case op == "c" && len(v) == 6:
		pr.cubeTo(pr.toDevice(v[0], v[1]), pr.toDevice(v[2], v[3]), pr.toDevice(v[4], v[5]))
	case op == "v" && len(v) == 4:
		pr.cubeTo(pr.current, pr.toDevice(v[0], v[1]), pr.toDevice(v[2], v[3]))
	case op == "y" && len(v) == 4:
		end := pr.toDevice(v[2], v[3])
		pr.cubeTo(pr.toDevice(v[0], v[1]), end, end)
	case op == "re" && len(v) == 4:
		x, y, w, h := v[0], v[1], v[2], v[3]
		pr.moveTo(pr.toDevice(x, y))
		pr.lineTo(pr.toDevice(x+w, y))
		pr.lineTo(pr.toDevice(x+w, y+h))
		pr.lineTo(pr.toDevice(x, y+h))
		pr.closePath()
	case op == "h":
		pr.closePath()

	// even-odd variants fill with the nonzero rule
	case op == "f" || op == "F" || op == "f*":
		pr.fill()
		pr.path = pr.path[:0]
	case op == "S":
		pr.stroke()
		pr.path = pr.path[:0]
	case op == "s":
		pr.closePath()
		pr.stroke()
		pr.path = pr.path[:0]
	case op == "B" || op == "B*":
		pr.fill()
		pr.stroke()
		pr.path = pr.path[:0]
	case op == "b" || op == "b*":
		pr.closePath()
		pr.fill()
		pr.stroke()
		pr.path = pr.path[:0]
	case op == "n":
		pr.path = pr.path[:0]
	}
	return nil
}

// colorOp tracks device colors. The reader keeps its own colors but does not
// expose their components.
func (pr *pageRasterizer) colorOp(op string, args []pdf.Object) error {
	switch op {
	case "q":
		pr.saved = append(pr.saved, pr.colors)
		return nil
	case "Q":
		if n := len(pr.saved); n > 0 {
			pr.colors = pr.saved[n-1]
			pr.saved = pr.saved[:n-1]
		}
		return nil
	}

	v, ok := numbers(args)
	if !ok {
		return nil
	}
	switch op {
	case "g", "rg", "k", "sc", "scn":
		if c, ok := deviceColor(v); ok {
			pr.colors.fill = c
		}
	case "G", "RG", "K", "SC", "SCN":
		if c, ok := deviceColor(v); ok {
			pr.colors.stroke = c
		}
	}
	return nil
}

// deviceColor picks the color space from the number of components.
func deviceColor(v []float64) (color.Color, bool) {
	c8 := func(x float64) uint8 {
		return uint8(math.Round(max(0, min(1, x)) * 255))
	}
	switch len(v) {
	case 1:
		return color.Gray{Y: c8(v[0])}, true
	case 3:
		return color.RGBA{c8(v[0]), c8(v[1]), c8(v[2]), 255}, true
	case 4:
		return color.CMYK{C: c8(v[0]), M: c8(v[1]), Y: c8(v[2]), K: c8(v[3])}, true
	}
	return nil, false
}

func (pr *pageRasterizer) paint(c color.Color) {
	pr.raster.Draw(pr.img, pr.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (pr *pageRasterizer) fill() {
	if len(pr.path) == 0 {
		return
	}
	b := pr.img.Bounds()
	pr.raster.Reset(b.Dx(), b.Dy())
	for _, seg := range pr.path {
		p := seg.pts[2]
		switch seg.kind {
		case segMove:
			pr.raster.MoveTo(float32(p[0]), float32(p[1]))
		case segLine:
			pr.raster.LineTo(float32(p[0]), float32(p[1]))
		case segCubic:
			c1, c2 := seg.pts[0], seg.pts[1]
			pr.raster.CubeTo(float32(c1[0]), float32(c1[1]), float32(c2[0]), float32(c2[1]), float32(p[0]), float32(p[1]))
		case segClose:
			pr.raster.ClosePath()
		}
	}
	pr.paint(pr.colors.fill)
}

// stroke draws each flattened segment as a quad of the current line width.
// Joins and caps are not drawn.
func (pr *pageRasterizer) stroke() {
	if len(pr.path) == 0 {
		return
	}
	m := pr.rd.CTM.Mul(pr.device)
	scale := math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
	half := max(0.5, pr.rd.LineWidth*scale/2)

	b := pr.img.Bounds()
	pr.raster.Reset(b.Dx(), b.Dy())
	var cur [2]float64
	for _, seg := range pr.path {
		switch seg.kind {
		case segMove:
			cur = seg.pts[2]
		case segLine, segClose:
			pr.quad(cur, seg.pts[2], half)
			cur = seg.pts[2]
		case segCubic:
			prev := cur
			for i := 1; i <= curveSteps; i++ {
				next := cubicPoint(cur, seg.pts[0], seg.pts[1], seg.pts[2], float64(i)/curveSteps)
				pr.quad(prev, next, half)
				prev = next
			}
			cur = seg.pts[2]
		}
	}
	pr.paint(pr.colors.stroke)
}

func (pr *pageRasterizer) quad(a, b [2]float64, half float64) {
	vx, vy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(vx, vy)
	if l == 0 {
		return
	}
	nx, ny := -vy/l*half, vx/l*half
	pr.raster.MoveTo(float32(a[0]+nx), float32(a[1]+ny))
	pr.raster.LineTo(float32(b[0]+nx), float32(b[1]+ny))
	pr.raster.LineTo(float32(b[0]-nx), float32(b[1]-ny))
	pr.raster.LineTo(float32(a[0]-nx), float32(a[1]-ny))
	pr.raster.ClosePath()
}

func cubicPoint(p0, p1, p2, p3 [2]float64, t float64) [2]float64 {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return [2]float64{
		a*p0[0] + b*p1[0] + c*p2[0] + d*p3[0],
		a*p0[1] + b*p1[1] + c*p2[1] + d*p3[1],
	}
}

// glyph is called with the text matrix at the glyph origin.
func (pr *pageRasterizer) glyph(text string) error {
	if text == "" || text == " " {
		return nil
	}
	size := pr.rd.TextFontSize
	hscale := pr.rd.TextHorizontalScaling
	if hscale == 0 {
		hscale = 1
	}
	w, h := 0.5*size*hscale, 0.5*size
	rise := pr.rd.TextRise

	m := pr.rd.TextMatrix.Mul(pr.rd.CTM).Mul(pr.device)
	corner := func(x, y float64) (float32, float32) {
		dx, dy := m.Apply(x, y)
		return float32(dx), float32(dy)
	}

	b := pr.img.Bounds()
	pr.raster.Reset(b.Dx(), b.Dy())
	pr.raster.MoveTo(corner(0, rise))
	pr.raster.LineTo(corner(w, rise))
	pr.raster.LineTo(corner(w, rise+h))
	pr.raster.LineTo(corner(0, rise+h))
	pr.raster.ClosePath()

	r, g, bl, _ := pr.colors.fill.RGBA()
	pr.paint(color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), 96})
	return nil
}
