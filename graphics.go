package main

import (
	"bytes"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	errorBackground = color.RGBA{120, 30, 30, 255}
	errorForeground = color.RGBA{255, 255, 255, 255}
)

// Global font source shared by the renderer and error placeholders
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// drawBorder strokes a border of the given thickness inside img
func drawBorder(img *ebiten.Image, thickness float64, c color.RGBA) {
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	DrawFilledRect(img, 0, 0, w, thickness, c)
	DrawFilledRect(img, 0, h-thickness, w, thickness, c)
	DrawFilledRect(img, 0, 0, thickness, h, c)
	DrawFilledRect(img, w-thickness, 0, thickness, h, c)
}

// truncateText shortens s to at most maxChars runes, ending in "..."
func truncateText(s string, maxChars int) string {
	runes := []rune(s)
	if maxChars < 4 || len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-3]) + "..."
}

// CreateErrorImage creates a placeholder for a page that failed to render
func CreateErrorImage(width, height int, pageName, errorMsg string) *ebiten.Image {
	if width <= 0 || height <= 0 {
		width, height = 400, 300
	}

	errorImg := ebiten.NewImage(width, height)
	errorImg.Fill(errorBackground)
	drawBorder(errorImg, 3, errorForeground)

	// Without a font the placeholder is just the frame
	if globalFontSource == nil {
		return errorImg
	}

	errorFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   20.0,
	}

	// Rough estimate: 10px per character
	maxChars := (width - 20) / 10
	DrawText(errorImg, "ERROR", errorFont, 10, 30, errorForeground)
	DrawText(errorImg, truncateText("Page: "+pageName, maxChars), errorFont, 10, 60, errorForeground)
	DrawText(errorImg, truncateText("Reason: "+errorMsg, maxChars), errorFont, 10, 90, errorForeground)

	return errorImg
}
