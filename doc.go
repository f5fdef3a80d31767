// Package nib is the core of a raster painting tool: brush tips, stroke
// stamping and a canvas with bounded undo history.
//
// # Overview
//
// Brush tips come from Photoshop brush containers (see package abr) or are
// procedural (Circle, Square). A Library maps names to tips and is usually
// built once at startup from a directory of .abr files.
//
// A Canvas owns a surface and accepts pointer input as a small state
// machine:
//
//	Idle --BeginStroke--> StrokeActive --ExtendStroke--> StrokeActive
//	StrokeActive --EndStroke--> Idle
//	Idle --Clear/Undo/Redo--> Idle
//
// # Quick Start
//
//	lib, err := nib.LoadLibrary(ctx, "brushes")
//	if err != nil {
//	    return err
//	}
//	c, err := nib.NewCanvas(800, 800, nib.WithLibrary(lib))
//	if err != nil {
//	    return err
//	}
//	_ = c.SelectTip("circle")
//	c.SetColor(nib.Hex("#3366cc"))
//
//	c.BeginStroke(nib.Pt(100, 100))
//	c.ExtendStroke(nib.Pt(300, 240))
//	c.EndStroke()
//
//	c.SavePNG("out.png")
//
// # Strokes
//
// A stroke stamps its tip at a spacing of one tenth of the brush diameter
// onto a private layer. The layer is merged onto the surface once, when the
// stroke ends, at the canvas opacity. Overlapping stamps of one stroke
// therefore never darken each other.
//
// # History
//
// Every committed stroke and every clear pushes a full surface snapshot.
// The undo stack is bounded (DefaultHistoryLimit) and always holds at least
// the initial surface.
//
// # Logging
//
// nib logs through log/slog and is silent by default. See SetLogger.
package nib
