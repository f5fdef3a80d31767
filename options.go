package nib

// CanvasOption configures a Canvas during creation.
// Use functional options to customize Canvas behavior.
//
// Example:
//
//	// Default white canvas with a black 10px round brush
//	c, err := nib.NewCanvas(800, 800)
//
//	// Custom library, tip and history depth
//	c, err := nib.NewCanvas(800, 800,
//	    nib.WithLibrary(lib),
//	    nib.WithTip(tip),
//	    nib.WithHistoryLimit(50))
type CanvasOption func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	historyLimit int
	background   RGBA
	opacity      float64
	diameter     float64
	color        RGBA
	tip          Tip
	library      *Library
	viewWidth    int
	viewHeight   int
}

// Brush defaults applied when no option overrides them.
const (
	DefaultDiameter = 10
	MinDiameter     = 1
	MaxDiameter     = 100
)

// defaultOptions returns the default canvas options.
func defaultOptions() canvasOptions {
	return canvasOptions{
		historyLimit: DefaultHistoryLimit,
		background:   White,
		opacity:      1,
		diameter:     DefaultDiameter,
		color:        Black,
		tip:          Circle{},
		viewWidth:    0, // Defaults to the canvas width
		viewHeight:   0, // Defaults to the canvas height
	}
}

// WithHistoryLimit sets the maximum number of undo snapshots, including the
// initial blank surface. Values below 1 are raised to 1.
func WithHistoryLimit(n int) CanvasOption {
	return func(o *canvasOptions) {
		o.historyLimit = n
	}
}

// WithBackground sets the color of a blank or cleared surface.
func WithBackground(c RGBA) CanvasOption {
	return func(o *canvasOptions) {
		o.background = c
	}
}

// WithOpacity sets the stroke opacity, clamped to [0, 1].
func WithOpacity(opacity float64) CanvasOption {
	return func(o *canvasOptions) {
		o.opacity = opacity
	}
}

// WithDiameter sets the brush diameter, clamped to [MinDiameter, MaxDiameter].
func WithDiameter(d float64) CanvasOption {
	return func(o *canvasOptions) {
		o.diameter = d
	}
}

// WithColor sets the brush color. Its alpha is ignored.
func WithColor(c RGBA) CanvasOption {
	return func(o *canvasOptions) {
		o.color = c
	}
}

// WithTip sets the initial brush tip. A nil tip selects Circle.
func WithTip(t Tip) CanvasOption {
	return func(o *canvasOptions) {
		o.tip = t
	}
}

// WithLibrary sets the library that SelectTip resolves names against.
// Procedural tips are always available, with or without a library.
func WithLibrary(lib *Library) CanvasOption {
	return func(o *canvasOptions) {
		o.library = lib
	}
}

// WithViewSize sets the size of the widget showing the canvas. Pointer
// positions passed to the stroke methods are in this coordinate space.
//
// Example:
//
//	// 400x400 canvas shown in a 1024x768 window
//	c, _ := nib.NewCanvas(400, 400, nib.WithViewSize(1024, 768))
//	c.BeginStroke(nib.Pt(512, 384)) // canvas centre
func WithViewSize(width, height int) CanvasOption {
	return func(o *canvasOptions) {
		o.viewWidth = width
		o.viewHeight = height
	}
}
