package nib

import (
	"image"
	"math"
)

// Viewport maps pointer positions in a widget onto a square canvas.
//
// The canvas is shown in the largest square that fits the widget, centered.
// Positions outside that square do not map.
type Viewport struct {
	// ViewWidth and ViewHeight are the widget size in window pixels.
	ViewWidth, ViewHeight int

	// CanvasWidth and CanvasHeight are the surface size in canvas pixels.
	CanvasWidth, CanvasHeight int
}

// Rect returns the square the canvas occupies in window coordinates.
func (v Viewport) Rect() image.Rectangle {
	side := min(v.ViewWidth, v.ViewHeight)
	if side <= 0 {
		return image.Rectangle{}
	}
	x := (v.ViewWidth - side) / 2
	y := (v.ViewHeight - side) / 2
	return image.Rect(x, y, x+side, y+side)
}

// Map converts a window position to canvas coordinates. It reports false
// when the position lies outside the viewport square or is NaN.
func (v Viewport) Map(p Point) (Point, bool) {
	r := v.Rect()
	if r.Empty() || math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return Point{}, false
	}
	if p.X < float64(r.Min.X) || p.X >= float64(r.Max.X) ||
		p.Y < float64(r.Min.Y) || p.Y >= float64(r.Max.Y) {
		return Point{}, false
	}
	side := float64(r.Dx())
	return Point{
		X: (p.X - float64(r.Min.X)) * float64(v.CanvasWidth) / side,
		Y: (p.Y - float64(r.Min.Y)) * float64(v.CanvasHeight) / side,
	}, true
}
