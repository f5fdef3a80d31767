package nib

import (
	"image"

	"github.com/gogpu/nib/internal/blend"
)

// Tip is the shape stamped along a stroke.
// This is a sealed interface - only types in this package implement it.
//
// Supported tips:
//   - Circle: a filled, antialiased disc
//   - Square: a filled axis-aligned square
//   - *AlphaTip: a coverage mask decoded from a brush file
type Tip interface {
	// tipMarker is an unexported method that seals this interface.
	tipMarker()

	// Name identifies the tip in a Library listing.
	Name() string
}

// Procedural tip names, reserved in every Library.
const (
	CircleName = "circle"
	SquareName = "square"
)

// Circle is the procedural round tip.
type Circle struct{}

func (Circle) tipMarker() {}

// Name implements Tip.
func (Circle) Name() string { return CircleName }

// Square is the procedural square tip.
type Square struct{}

func (Square) tipMarker() {}

// Name implements Tip.
func (Square) Name() string { return SquareName }

// AlphaTip is a single-channel coverage mask for one brush nib.
// Values range from 0 (no paint) to 255 (full coverage).
//
// An AlphaTip is immutable once created and may be shared by any number of
// strokes.
type AlphaTip struct {
	name string
	mask *image.Alpha
}

// NewAlphaTip creates a tip from a coverage mask. The mask is copied, so the
// caller may reuse it. Returns nil for an empty mask.
func NewAlphaTip(name string, mask *image.Alpha) *AlphaTip {
	if mask == nil || mask.Rect.Empty() {
		return nil
	}
	b := mask.Rect
	m := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		copy(m.Pix[y*m.Stride:(y+1)*m.Stride], mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return &AlphaTip{name: name, mask: m}
}

func (*AlphaTip) tipMarker() {}

// Name implements Tip.
func (t *AlphaTip) Name() string { return t.name }

// Width returns the tip width in pixels.
func (t *AlphaTip) Width() int { return t.mask.Rect.Dx() }

// Height returns the tip height in pixels.
func (t *AlphaTip) Height() int { return t.mask.Rect.Dy() }

// Bounds returns the tip dimensions as an image.Rectangle at the origin.
func (t *AlphaTip) Bounds() image.Rectangle { return t.mask.Rect }

// alphaAt returns the coverage at (x, y), or 0 outside the tip.
func (t *AlphaTip) alphaAt(x, y int) uint8 {
	return t.mask.AlphaAt(x, y).A
}

// Tint returns a premultiplied copy of the tip painted in c.
//
// Every pixel gets the RGB of c and the tip's coverage as alpha, the result
// of compositing an opaque fill of c with the mask under destination-in.
// The alpha of c is ignored.
func (t *AlphaTip) Tint(c RGBA) *image.RGBA {
	fill := c.Opaque().premul8()
	dst := image.NewRGBA(t.mask.Rect)
	for i, a := range t.mask.Pix {
		o := i * 4
		dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3] =
			blend.DestinationIn(a, fill.R, fill.G, fill.B, fill.A)
	}
	return dst
}
