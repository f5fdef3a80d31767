package nib

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/gogpu/nib/internal/bufpool"
	"github.com/gogpu/nib/internal/cache"
)

// stampCacheSize is the number of rendered stamps a canvas keeps.
const stampCacheSize = 8

// Common errors.
var (
	// ErrInvalidDimensions is returned for a non-positive canvas size.
	ErrInvalidDimensions = errors.New("nib: invalid dimensions")

	// ErrInvalidColor is returned when a color string cannot be parsed.
	ErrInvalidColor = errors.New("nib: invalid color")

	// ErrUnknownTip is returned when a tip name is not in the library.
	ErrUnknownTip = errors.New("nib: unknown tip")
)

// State is the stroke state of a Canvas.
type State int

const (
	// Idle means no stroke is in progress.
	Idle State = iota

	// StrokeActive means a stroke has begun and not yet ended.
	StrokeActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case StrokeActive:
		return "StrokeActive"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Canvas is a persistent raster surface with stroke input and bounded
// undo/redo history.
//
// Every transition returns the surface and whether anything changed. A false
// result means the call was a no-op: a pointer outside the viewport, a call
// in the wrong state, or exhausted history.
//
// The returned surface is the live canvas surface and changes with later
// transitions; use Snapshot for a stable copy.
//
// Canvas is safe for concurrent use. Each transition holds the canvas lock
// for its whole duration.
type Canvas struct {
	mu sync.Mutex

	surface    *Surface
	history    *History
	pool       *bufpool.Pool
	stamps     *stampCache
	viewport   Viewport
	background RGBA
	library    *Library

	// Brush settings, read when a stroke begins (opacity: when it ends).
	tip      Tip
	diameter float64
	color    RGBA
	opacity  float64

	state  State
	layer  *Layer
	stroke *Stroke
	last   Point
}

// NewCanvas creates a canvas of the given size filled with the background
// color.
func NewCanvas(width, height int, opts ...CanvasOption) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.viewWidth == 0 && o.viewHeight == 0 {
		o.viewWidth, o.viewHeight = width, height
	}
	if o.tip == nil {
		o.tip = Circle{}
	}

	s := NewSurface(width, height)
	s.Fill(o.background)

	return &Canvas{
		surface: s,
		history: NewHistory(s, o.historyLimit),
		pool:    bufpool.New(1),
		stamps:  cache.New[stampKey, *image.RGBA](stampCacheSize),
		viewport: Viewport{
			ViewWidth:    o.viewWidth,
			ViewHeight:   o.viewHeight,
			CanvasWidth:  width,
			CanvasHeight: height,
		},
		background: o.background,
		library:    o.library,
		tip:        o.tip,
		diameter:   clampDiameter(o.diameter),
		color:      o.color.Opaque(),
		opacity:    clamp01(o.opacity),
	}, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.surface.Width() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.surface.Height() }

// State returns the current stroke state.
func (c *Canvas) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BeginStroke starts a stroke at the window position p and stamps a single
// dot there. It is a no-op when a stroke is already active or p is outside
// the viewport.
func (c *Canvas) BeginStroke(p Point) (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return c.surface, false
	}
	q, ok := c.viewport.Map(p)
	if !ok {
		return c.surface, false
	}

	c.layer = newLayer(c.surface.Width(), c.surface.Height(), c.pool)
	c.stroke = newStroke(c.layer, stampFor(c.stamps, c.tip, c.diameter, c.color), c.diameter)
	c.stroke.Segment(q, q)
	c.last = q
	c.state = StrokeActive
	return c.surface, true
}

// ExtendStroke stamps the active stroke from its last position to the window
// position p. Positions outside the viewport are ignored.
func (c *Canvas) ExtendStroke(p Point) (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StrokeActive {
		return c.surface, false
	}
	q, ok := c.viewport.Map(p)
	if !ok {
		return c.surface, false
	}

	c.stroke.Segment(c.last, q)
	c.last = q
	return c.surface, true
}

// EndStroke merges the active stroke onto the surface at the current
// opacity and records the result in the history.
func (c *Canvas) EndStroke() (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StrokeActive {
		return c.surface, false
	}

	c.layer.compositeOnto(c.surface, c.opacity)
	c.history.Commit(c.surface)
	Logger().Debug("nib: stroke committed",
		"tip", c.tip.Name(), "stamps", c.stroke.Stamps(), "undo", c.history.UndoLen())

	c.layer.release()
	c.layer = nil
	c.stroke = nil
	c.state = Idle
	return c.surface, true
}

// Clear resets the surface to the background color and records the blank
// surface in the history. It is a no-op while a stroke is active.
func (c *Canvas) Clear() (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return c.surface, false
	}
	c.surface.Fill(c.background)
	c.history.Commit(c.surface)
	return c.surface, true
}

// Undo restores the previous snapshot. It is a no-op while a stroke is
// active or when only the initial snapshot remains.
func (c *Canvas) Undo() (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return c.surface, false
	}
	s, ok := c.history.Undo()
	if !ok {
		return c.surface, false
	}
	c.surface.copyFrom(s)
	return c.surface, true
}

// Redo reapplies the most recently undone snapshot. It is a no-op while a
// stroke is active or when there is nothing to redo.
func (c *Canvas) Redo() (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return c.surface, false
	}
	s, ok := c.history.Redo()
	if !ok {
		return c.surface, false
	}
	c.surface.copyFrom(s)
	return c.surface, true
}

// Snapshot returns a copy of the surface.
func (c *Canvas) Snapshot() *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.Clone()
}

// Preview returns a copy of the surface with the active stroke, if any,
// merged on top at the current opacity. The canvas is not modified.
func (c *Canvas) Preview() *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.surface.Clone()
	if c.state == StrokeActive {
		c.layer.compositeOnto(s, c.opacity)
	}
	return s
}

// UndoLen returns the number of snapshots on the undo stack.
func (c *Canvas) UndoLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.UndoLen()
}

// RedoLen returns the number of snapshots on the redo stack.
func (c *Canvas) RedoLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.RedoLen()
}

// Tip returns the tip used by the next stroke.
func (c *Canvas) Tip() Tip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tip
}

// SetTip sets the tip used by the next stroke. A nil tip selects Circle.
func (c *Canvas) SetTip(t Tip) {
	if t == nil {
		t = Circle{}
	}
	c.mu.Lock()
	c.tip = t
	c.mu.Unlock()
}

// SelectTip sets the tip used by the next stroke by name. Procedural names
// are always accepted; other names are looked up in the canvas library.
func (c *Canvas) SelectTip(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.library.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTip, name)
	}
	c.tip = t
	return nil
}

// Diameter returns the brush diameter.
func (c *Canvas) Diameter() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diameter
}

// SetDiameter sets the brush diameter for the next stroke, clamped to
// [MinDiameter, MaxDiameter].
func (c *Canvas) SetDiameter(d float64) {
	c.mu.Lock()
	c.diameter = clampDiameter(d)
	c.mu.Unlock()
}

// Color returns the brush color.
func (c *Canvas) Color() RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// SetColor sets the brush color for the next stroke. The alpha is forced to
// 1; use SetOpacity for translucent strokes.
func (c *Canvas) SetColor(col RGBA) {
	c.mu.Lock()
	c.color = col.Opaque()
	c.mu.Unlock()
}

// Opacity returns the stroke opacity.
func (c *Canvas) Opacity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opacity
}

// SetOpacity sets the opacity used when a stroke is merged, clamped to
// [0, 1]. It applies to the active stroke as well.
func (c *Canvas) SetOpacity(opacity float64) {
	c.mu.Lock()
	c.opacity = clamp01(opacity)
	c.mu.Unlock()
}

// SetOpacity8 sets the stroke opacity from a 0..255 slider value.
func (c *Canvas) SetOpacity8(v uint8) {
	c.SetOpacity(float64(v) / 255)
}

// Viewport returns the current viewport.
func (c *Canvas) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// SetViewSize sets the size of the widget showing the canvas.
func (c *Canvas) SetViewSize(width, height int) {
	c.mu.Lock()
	c.viewport.ViewWidth = width
	c.viewport.ViewHeight = height
	c.mu.Unlock()
}

// EncodePNG writes the surface as PNG. The active stroke is not included.
func (c *Canvas) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.EncodePNG(w)
}

// SavePNG writes the surface to a PNG file. The active stroke is not
// included.
func (c *Canvas) SavePNG(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.SavePNG(path)
}

func clampDiameter(d float64) float64 {
	if math.IsNaN(d) {
		return DefaultDiameter
	}
	return math.Min(MaxDiameter, math.Max(MinDiameter, d))
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 1
	}
	return math.Min(1, math.Max(0, x))
}
