package script

import (
	"fmt"

	"github.com/gogpu/nib"
)

// Result counts what a replay did.
type Result struct {
	// Strokes is the number of strokes committed.
	Strokes int

	// Ignored counts pointer events and history steps that were no-ops,
	// such as points outside the viewport or an undo with nothing left.
	Ignored int
}

// Options returns the canvas options the script describes. lib may be nil.
func (s *Script) Options(lib *nib.Library) ([]nib.CanvasOption, error) {
	opts := []nib.CanvasOption{
		nib.WithHistoryLimit(s.HistoryLimit),
		nib.WithLibrary(lib),
	}
	if s.Background != "" {
		bg, err := nib.ParseColor(s.Background)
		if err != nil {
			return nil, err
		}
		opts = append(opts, nib.WithBackground(bg))
	}
	if s.View != nil {
		opts = append(opts, nib.WithViewSize(s.View.Width, s.View.Height))
	}
	return opts, nil
}

// NewCanvas creates the canvas the script describes, with the session brush
// selected.
func (s *Script) NewCanvas(lib *nib.Library) (*nib.Canvas, error) {
	opts, err := s.Options(lib)
	if err != nil {
		return nil, err
	}
	c, err := nib.NewCanvas(s.Width, s.Height, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Brush.Apply(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply sets the brush fields that are present on c.
func (b *Brush) Apply(c *nib.Canvas) error {
	if b.Tip != "" {
		if err := c.SelectTip(b.Tip); err != nil {
			return err
		}
	}
	if b.Diameter != nil {
		c.SetDiameter(*b.Diameter)
	}
	if b.Color != "" {
		col, err := nib.ParseColor(b.Color)
		if err != nil {
			return err
		}
		c.SetColor(col)
	}
	if b.Opacity != nil {
		c.SetOpacity(*b.Opacity)
	}
	return nil
}

// brushState is a saved copy of the canvas brush settings.
type brushState struct {
	tip      nib.Tip
	diameter float64
	color    nib.RGBA
	opacity  float64
}

func saveBrush(c *nib.Canvas) brushState {
	return brushState{
		tip:      c.Tip(),
		diameter: c.Diameter(),
		color:    c.Color(),
		opacity:  c.Opacity(),
	}
}

func (b brushState) restore(c *nib.Canvas) {
	c.SetTip(b.tip)
	c.SetDiameter(b.diameter)
	c.SetColor(b.color)
	c.SetOpacity(b.opacity)
}

// Replay applies the script actions to c in order. It stops at the first
// action that cannot be applied, such as a stroke naming an unknown tip.
func (s *Script) Replay(c *nib.Canvas) (Result, error) {
	var res Result
	log := nib.Logger()

	for i, a := range s.Actions {
		switch a.Op {
		case OpStroke:
			committed, ignored, err := stroke(c, a)
			if err != nil {
				return res, fmt.Errorf("script: action %d: %w", i+1, err)
			}
			if committed {
				res.Strokes++
			}
			res.Ignored += ignored
		case OpClear:
			c.Clear()
		case OpUndo:
			res.Ignored += repeat(a.Repeat, c.Undo)
		case OpRedo:
			res.Ignored += repeat(a.Repeat, c.Redo)
		}
		log.Debug("script: action applied", "n", i+1, "op", a.Op,
			"undo", c.UndoLen(), "redo", c.RedoLen())
	}
	return res, nil
}

// stroke plays one stroke action, with its brush override in effect for
// this stroke only. It reports whether a stroke was committed and how many
// points were ignored.
func stroke(c *nib.Canvas, a Action) (committed bool, ignored int, err error) {
	if a.Brush != nil {
		saved := saveBrush(c)
		defer saved.restore(c)
		if err := a.Brush.Apply(c); err != nil {
			return false, 0, err
		}
	}

	active := false
	for _, p := range a.Points {
		pt := nib.Pt(p[0], p[1])
		var ok bool
		if active {
			_, ok = c.ExtendStroke(pt)
		} else {
			_, ok = c.BeginStroke(pt)
			active = ok
		}
		if !ok {
			ignored++
		}
	}
	if active {
		c.EndStroke()
	}
	return active, ignored, nil
}

// repeat calls fn n times and returns how many calls were no-ops.
func repeat(n int, fn func() (*nib.Surface, bool)) int {
	ignored := 0
	for range n {
		if _, ok := fn(); !ok {
			ignored++
		}
	}
	return ignored
}
