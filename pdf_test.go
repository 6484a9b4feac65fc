package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/pdf"
)

// writeTestPDF writes a one page PDF with a 100x100pt media box and the
// given content stream.
func writeTestPDF(t *testing.T, path, content string) {
	t.Helper()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 100 100] /Resources << >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestPDFRenderPaintsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.pdf")
	writeTestPDF(t, path, "1 0 0 rg 10 10 30 30 re f\n"+
		"0 0 1 RG 4 w 60 80 m 90 80 l S\n"+
		"q 0 1 0 rg Q 50 50 10 10 re f\n"+
		"q 1 0 0 1 50 0 cm 0 0 10 10 re f Q\n")

	doc, err := OpenDocument(path, SortNatural)
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 1, doc.PageCount())
	assert.Equal(t, "shapes.pdf", doc.Title())

	// 0.75 maps one point to one pixel
	img, err := doc.RenderPage(0, 0.75)
	require.NoError(t, err)
	require.Equal(t, image.Pt(100, 100), img.Bounds().Size())
	rgba, ok := img.(*image.RGBA)
	require.True(t, ok)

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"filled rectangle", 25, 75, color.RGBA{255, 0, 0, 255}},
		{"stroked line", 75, 20, color.RGBA{0, 0, 255, 255}},
		{"fill color restored by Q", 55, 45, color.RGBA{255, 0, 0, 255}},
		{"translated by cm", 55, 95, color.RGBA{255, 0, 0, 255}},
		{"untouched background", 5, 5, color.RGBA{255, 255, 255, 255}},
		{"outside the translated square", 5, 95, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rgba.RGBAAt(tt.x, tt.y))
		})
	}
}

func TestPDFRenderScalesWithZoom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zoom.pdf")
	writeTestPDF(t, path, "0 g 0 0 50 50 re f\n")

	doc, err := OpenDocument(path, SortNatural)
	require.NoError(t, err)
	defer doc.Close()

	img, err := doc.RenderPage(0, 1.5)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 200), img.Bounds().Size())

	// the lower left quarter is black, the upper right stays white
	rgba := img.(*image.RGBA)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgba.RGBAAt(50, 150))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba.RGBAAt(150, 50))

	_, err = doc.RenderPage(1, 1.0)
	assert.Error(t, err)
}

func TestDeviceMatrix(t *testing.T) {
	box := pdf.Rectangle{LLx: 10, LLy: 20, URx: 110, URy: 220}
	m := deviceMatrix(box, 0.75)

	x, y := m.Apply(10, 220)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	x, y = m.Apply(110, 20)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 200, y, 1e-9)
}

func TestDeviceColor(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   color.Color
		ok     bool
	}{
		{"gray", []float64{0.5}, color.Gray{Y: 128}, true},
		{"rgb", []float64{1, 0, 0}, color.RGBA{255, 0, 0, 255}, true},
		{"cmyk", []float64{0, 0, 0, 1}, color.CMYK{K: 255}, true},
		{"clamped", []float64{2, -1, 0.5}, color.RGBA{255, 0, 128, 255}, true},
		{"pattern operands", []float64{0.1, 0.2}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := deviceColor(tt.values)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestCubicPointEndpoints(t *testing.T) {
	p0, p1, p2, p3 := [2]float64{0, 0}, [2]float64{0, 10}, [2]float64{10, 10}, [2]float64{10, 0}
	assert.Equal(t, p0, cubicPoint(p0, p1, p2, p3, 0))
	assert.Equal(t, p3, cubicPoint(p0, p1, p2, p3, 1))
	mid := cubicPoint(p0, p1, p2, p3, 0.5)
	assert.InDelta(t, 5, mid[0], 1e-9)
	assert.InDelta(t, 7.5, mid[1], 1e-9)
}
