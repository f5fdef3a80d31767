// Package script reads painting session scripts.
//
// A script is a YAML document describing a canvas, an optional brush
// directory, default brush settings and a list of actions replayed against
// a nib.Canvas:
//
//	width: 400
//	height: 400
//	brushes: ./brushes
//	background: white
//	brush:
//	  tip: circle
//	  diameter: 8
//	  color: "#202020"
//	actions:
//	  - op: stroke
//	    points: [[20, 20], [380, 380]]
//	  - op: stroke
//	    brush: {tip: square, color: crimson, opacity: 0.5}
//	    points: [[20, 380], [380, 20]]
//	  - op: undo
//	  - op: redo
//	  - op: clear
package script

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/gogpu/nib"
)

// ErrInvalid is returned for scripts that parse but cannot be replayed.
var ErrInvalid = errors.New("script: invalid")

// Canvas defaults for scripts that leave the size out.
const (
	DefaultWidth  = 512
	DefaultHeight = 512
)

// Action operations.
const (
	OpStroke = "stroke"
	OpClear  = "clear"
	OpUndo   = "undo"
	OpRedo   = "redo"
)

// Script is a parsed session script.
type Script struct {
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	Brushes      string   `yaml:"brushes"`
	HistoryLimit int      `yaml:"historyLimit"`
	Background   string   `yaml:"background"`
	View         *View    `yaml:"view"`
	Brush        Brush    `yaml:"brush"`
	Actions      []Action `yaml:"actions"`
}

// View is the size of the widget the stroke points are given in. Without
// it, points are canvas coordinates.
type View struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Brush holds brush settings. Unset fields keep the current value.
type Brush struct {
	Tip      string   `yaml:"tip"`
	Diameter *float64 `yaml:"diameter"`
	Color    string   `yaml:"color"`
	Opacity  *float64 `yaml:"opacity"`
}

// Action is one step of a session.
type Action struct {
	Op string `yaml:"op"`

	// Points are the pointer positions of a stroke: press at the first,
	// move through the rest, release at the last.
	Points [][]float64 `yaml:"points"`

	// Brush overrides the session brush for this stroke only.
	Brush *Brush `yaml:"brush"`

	// Repeat is the number of times an undo or redo is applied.
	Repeat int `yaml:"repeat"`
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a script, fills in defaults and validates it. Unknown keys
// are rejected.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.HistoryLimit == 0 {
		s.HistoryLimit = nib.DefaultHistoryLimit
	}
	for i := range s.Actions {
		if s.Actions[i].Repeat == 0 {
			s.Actions[i].Repeat = 1
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks everything that can be checked without a brush library.
func (s *Script) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, s.Width, s.Height)
	}
	if s.HistoryLimit < 0 {
		return fmt.Errorf("%w: historyLimit %d", ErrInvalid, s.HistoryLimit)
	}
	if s.View != nil && (s.View.Width <= 0 || s.View.Height <= 0) {
		return fmt.Errorf("%w: view size %dx%d", ErrInvalid, s.View.Width, s.View.Height)
	}
	if s.Background != "" {
		if _, err := nib.ParseColor(s.Background); err != nil {
			return fmt.Errorf("%w: background: %w", ErrInvalid, err)
		}
	}
	if err := s.Brush.validate(); err != nil {
		return fmt.Errorf("%w: brush: %w", ErrInvalid, err)
	}
	for i, a := range s.Actions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("%w: action %d: %w", ErrInvalid, i+1, err)
		}
	}
	return nil
}

func (b *Brush) validate() error {
	if b.Diameter != nil && *b.Diameter <= 0 {
		return fmt.Errorf("diameter %v must be positive", *b.Diameter)
	}
	if b.Opacity != nil && (*b.Opacity < 0 || *b.Opacity > 1) {
		return fmt.Errorf("opacity %v outside [0, 1]", *b.Opacity)
	}
	if b.Color != "" {
		if _, err := nib.ParseColor(b.Color); err != nil {
			return err
		}
	}
	return nil
}

func (a *Action) validate() error {
	switch a.Op {
	case OpStroke:
		if len(a.Points) == 0 {
			return errors.New("stroke without points")
		}
		for j, p := range a.Points {
			if len(p) != 2 {
				return fmt.Errorf("point %d has %d coordinates, want 2", j+1, len(p))
			}
		}
		if a.Brush != nil {
			return a.Brush.validate()
		}
	case OpClear:
	case OpUndo, OpRedo:
		if a.Repeat < 0 {
			return fmt.Errorf("repeat %d is negative", a.Repeat)
		}
	default:
		return fmt.Errorf("unknown op %q", a.Op)
	}
	if a.Op != OpStroke && (a.Points != nil || a.Brush != nil) {
		return fmt.Errorf("%s takes no points or brush", a.Op)
	}
	return nil
}
