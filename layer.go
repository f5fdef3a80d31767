package nib

import (
	"image"

	"github.com/gogpu/nib/internal/blend"
	"github.com/gogpu/nib/internal/bufpool"
)

// Layer is the transient drawing target of one stroke.
//
// Stamps are composited onto the layer, never directly onto the canvas, so
// that overlapping stamps of the same stroke build up coverage without
// darkening. The finished layer is merged onto the canvas once, at a single
// stroke-level opacity.
type Layer struct {
	img  *image.RGBA
	pool *bufpool.Pool
}

// newLayer takes a cleared buffer of the given size from pool.
func newLayer(width, height int, pool *bufpool.Pool) *Layer {
	return &Layer{img: pool.Get(width, height), pool: pool}
}

// RGBA returns the premultiplied layer pixels.
func (l *Layer) RGBA() *image.RGBA {
	return l.img
}

// compositeOnto merges the layer onto dst in one source-over pass, with
// every layer pixel scaled by opacity.
func (l *Layer) compositeOnto(dst *Surface, opacity float64) {
	blend.CompositeOver(dst.img.Pix, l.img.Pix, blend.OpacityByte(opacity))
}

// release returns the layer buffer to its pool. The layer must not be used
// afterwards.
func (l *Layer) release() {
	l.pool.Put(l.img)
	l.img = nil
}
