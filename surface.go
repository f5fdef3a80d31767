package nib

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Surface is a fixed-size raster of premultiplied RGBA pixels.
//
// A Surface returned by Canvas methods is owned by the canvas: read it, encode
// it, or Clone it, but do not modify it, and do not retain it across the next
// canvas transition.
type Surface struct {
	img *image.RGBA
}

// NewSurface creates a transparent surface with the given dimensions.
// Returns nil for non-positive dimensions.
func NewSurface(width, height int) *Surface {
	if width <= 0 || height <= 0 {
		return nil
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the width of the surface.
func (s *Surface) Width() int {
	return s.img.Rect.Dx()
}

// Height returns the height of the surface.
func (s *Surface) Height() int {
	return s.img.Rect.Dy()
}

// RGBA returns the underlying premultiplied image.
func (s *Surface) RGBA() *image.RGBA {
	return s.img
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c RGBA) {
	p := c.premul8()
	pix := s.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = p.R, p.G, p.B, p.A
	// Double the filled prefix until the buffer is covered.
	for n := 4; n < len(pix); n *= 2 {
		copy(pix[n:], pix[:n])
	}
}

// Clone creates a deep copy of the surface.
func (s *Surface) Clone() *Surface {
	img := image.NewRGBA(s.img.Rect)
	copy(img.Pix, s.img.Pix)
	return &Surface{img: img}
}

// copyFrom overwrites s with the pixels of o. Both must have the same size.
func (s *Surface) copyFrom(o *Surface) {
	copy(s.img.Pix, o.img.Pix)
}

// Equal reports whether two surfaces have the same size and pixels.
func (s *Surface) Equal(o *Surface) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.img.Rect == o.img.Rect && bytes.Equal(s.img.Pix, o.img.Pix)
}

// EncodePNG writes the surface to w in PNG format.
func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// SavePNG saves the surface to a PNG file.
func (s *Surface) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := s.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// At implements the image.Image interface.
func (s *Surface) At(x, y int) color.Color {
	return s.img.At(x, y)
}

// Bounds implements the image.Image interface.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Rect
}

// ColorModel implements the image.Image interface.
func (s *Surface) ColorModel() color.Model {
	return color.RGBAModel
}
