package nib

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/nib/internal/cache"
)

const (
	// stampScale converts a brush diameter into the stamp box side in pixels.
	stampScale = 5

	// spacingRatio is the stamp spacing as a fraction of the diameter.
	spacingRatio = 0.1

	// kappa places cubic control points for a quarter ellipse.
	kappa = 0.5522847498
)

// Stroke stamps one tip along a path onto a Layer.
//
// The tip, size and color are fixed when the stroke starts: the stamp image
// is rendered once and then composited at every stamp position.
type Stroke struct {
	layer   *Layer
	stamp   *image.RGBA
	side    int
	spacing float64
	stamps  int
}

// newStroke creates a stroke stamping a prerendered stamp image, whose side
// must be stampSide(diameter). The stamp is only read.
func newStroke(layer *Layer, stamp *image.RGBA, diameter float64) *Stroke {
	return &Stroke{
		layer:   layer,
		stamp:   stamp,
		side:    stamp.Rect.Dx(),
		spacing: stampSpacing(diameter),
	}
}

// stampKey identifies a rendered stamp image.
type stampKey struct {
	tip   Tip
	side  int
	color color.RGBA
}

// stampCache keeps recently rendered stamps so that consecutive strokes with
// the same brush skip rasterizing the tip.
type stampCache = cache.Cache[stampKey, *image.RGBA]

// stampFor returns the stamp for tip at diameter in c from sc, rendering it
// on a miss.
func stampFor(sc *stampCache, tip Tip, diameter float64, c RGBA) *image.RGBA {
	c = c.Opaque()
	side := stampSide(diameter)
	key := stampKey{tip: tip, side: side, color: c.premul8()}
	return sc.GetOrCreate(key, func() *image.RGBA {
		return renderStamp(tip, side, c)
	})
}

// Stamps returns the number of stamps drawn so far.
func (s *Stroke) Stamps() int {
	return s.stamps
}

// Segment stamps the tip from one point to another, both ends included.
// A zero-length segment draws a single dot. It returns the number of stamps
// drawn.
func (s *Stroke) Segment(from, to Point) int {
	n := stampCount(from.Distance(to), s.spacing)
	for i := 0; i <= n; i++ {
		s.stampAt(from.Lerp(to, float64(i)/float64(n)))
	}
	s.stamps += n + 1
	return n + 1
}

// stampAt composites the stamp image centered on p. For even sides the
// center pixel is the upper left of the middle four, so the box extends one
// pixel further right and down.
func (s *Stroke) stampAt(p Point) {
	cx := int(math.Floor(p.X))
	cy := int(math.Floor(p.Y))
	half := (s.side - 1) / 2
	origin := image.Pt(cx-half, cy-half)
	box := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(s.side, s.side))}
	draw.Draw(s.layer.img, box, s.stamp, image.Point{}, draw.Over)
}

// stampSide returns the stamp box side for a diameter, at least one pixel.
func stampSide(diameter float64) int {
	return max(1, int(diameter*stampScale))
}

// stampSpacing returns the distance between consecutive stamps.
func stampSpacing(diameter float64) float64 {
	return math.Max(1, diameter*spacingRatio)
}

// stampCount returns the number of intervals a segment of the given length
// is divided into.
func stampCount(distance, spacing float64) int {
	return max(1, int(math.Round(distance/spacing)))
}

// renderStamp renders one premultiplied stamp of side x side pixels.
func renderStamp(tip Tip, side int, c RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	src := image.NewUniform(c.premul8())

	switch t := tip.(type) {
	case Square:
		draw.Draw(dst, dst.Rect, src, image.Point{}, draw.Src)
	case *AlphaTip:
		xdraw.BiLinear.Scale(dst, dst.Rect, t.Tint(c), t.Bounds(), draw.Src, nil)
	default:
		z := vector.NewRasterizer(side, side)
		ellipse(z, float32(side)/2, float32(side)/2, float32(side)/2, float32(side)/2)
		z.Draw(dst, dst.Rect, src, image.Point{})
	}
	return dst
}

// ellipse adds a closed ellipse centered on (cx, cy) to the rasterizer path.
func ellipse(z *vector.Rasterizer, cx, cy, rx, ry float32) {
	kx, ky := rx*kappa, ry*kappa
	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()
}
