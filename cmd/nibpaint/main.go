// Command nibpaint replays a painting session script and saves the result
// as PNG.
//
// Usage:
//
//	nibpaint -script session.yaml -o out.png [-brushes dir] [-v]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/nib"
	"github.com/gogpu/nib/internal/script"
)

func main() {
	var (
		scriptPath = flag.String("script", "", "session script (YAML)")
		output     = flag.String("o", "out.png", "output file")
		brushes    = flag.String("brushes", "", "brush directory, overrides the script")
		verbose    = flag.Bool("v", false, "log progress to stderr")
	)
	flag.Parse()

	if *scriptPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		nib.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := run(ctx, *scriptPath, *brushes, *output)
	if err != nil {
		log.Fatalf("nibpaint: %v", err)
	}
	log.Printf("Saved %s (%d strokes, %d ignored events)\n", *output, res.Strokes, res.Ignored)
}

// run loads the script and its brushes, replays it and writes the PNG.
// A non-empty brushDir replaces the script's brush directory.
func run(ctx context.Context, scriptPath, brushDir, output string) (script.Result, error) {
	s, err := script.Load(scriptPath)
	if err != nil {
		return script.Result{}, err
	}
	if brushDir == "" {
		brushDir = s.Brushes
	}

	lib, err := loadBrushes(ctx, brushDir)
	if err != nil {
		return script.Result{}, err
	}

	c, err := s.NewCanvas(lib)
	if err != nil {
		return script.Result{}, err
	}
	res, err := s.Replay(c)
	if err != nil {
		return res, err
	}
	if err := c.SavePNG(output); err != nil {
		return res, fmt.Errorf("save: %w", err)
	}
	return res, nil
}

// loadBrushes loads the brush directory, creating it when missing so that
// users have a place to drop brush files. An empty dir means no library.
func loadBrushes(ctx context.Context, dir string) (*nib.Library, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("brush directory: %w", err)
	}
	return nib.LoadLibraryAsync(ctx, dir).Wait(ctx)
}
