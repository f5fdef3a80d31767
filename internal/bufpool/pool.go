// Package bufpool provides reuse of RGBA raster buffers.
//
// Stroke layers are canvas-sized and live for one stroke; a released layer
// is handed to the next stroke on the same canvas.
package bufpool

import (
	"image"
	"sync"
)

// Pool is a thread-safe pool for reusing *image.RGBA buffers.
//
// Pool groups buffers by their dimensions, allowing efficient reuse of
// identically-sized buffers.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*image.RGBA
	maxSize int // max buffers per bucket
}

// poolKey identifies a bucket of identically sized buffers.
type poolKey struct {
	width  int
	height int
}

// New creates a new buffer pool with the given maximum buffers per bucket.
// A maxPerBucket of 0 means unlimited.
func New(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*image.RGBA),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a buffer from the pool or creates a new one.
// The returned buffer has origin (0, 0), the requested size, and every
// pixel transparent. Returns nil for non-positive dimensions.
func (p *Pool) Get(width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		return buf
	}
	p.mu.Unlock()

	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Put returns a buffer to the pool for reuse.
// The buffer is cleared before being stored.
// If buf is nil, not at the origin, or its bucket is full, the buffer is discarded.
func (p *Pool) Put(buf *image.RGBA) {
	if buf == nil || buf.Rect.Min != (image.Point{}) {
		return
	}

	clear(buf.Pix)

	key := poolKey{width: buf.Rect.Dx(), height: buf.Rect.Dy()}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of pooled buffers of the given size.
func (p *Pool) Len(width, height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[poolKey{width: width, height: height}])
}
