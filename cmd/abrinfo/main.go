// Command abrinfo prints the structure of Photoshop brush files and can
// export their tips as PNG images.
//
// Usage:
//
//	abrinfo [-export dir] [-v] file.abr...
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/nib/abr"
)

func main() {
	var (
		export  = flag.String("export", "", "directory to write tip PNGs into")
		verbose = flag.Bool("v", false, "log per-sample decisions to stderr")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.DiscardHandler)
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := inspect(os.Stdout, path, *export, logger); err != nil {
			log.Printf("abrinfo: %s: %v", path, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// inspect prints the header, blocks and tips of one file and exports the
// tips when exportDir is set. Decoding problems are reported in the listing;
// only I/O failures are returned.
func inspect(w io.Writer, path, exportDir string, logger *slog.Logger) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %d bytes\n", path, len(data))
	major, minor, err := abr.Header(data)
	if err != nil {
		fmt.Fprintf(w, "  header: %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "  version %d.%d\n", major, minor)

	blocks, err := abr.Blocks(data)
	for _, b := range blocks {
		fmt.Fprintf(w, "  block %-4s offset %d length %d\n", b.Key, b.Start, b.Len())
	}
	if err != nil {
		fmt.Fprintf(w, "  blocks: %v\n", err)
	}

	tips, err := abr.Decode(data, abr.WithLogger(logger))
	for i, t := range tips {
		fmt.Fprintf(w, "  tip %d: %dx%d\n", i+1, t.Rect.Dx(), t.Rect.Dy())
	}
	if err != nil {
		fmt.Fprintf(w, "  decode: %v\n", err)
	}

	if exportDir == "" || len(tips) == 0 {
		return nil
	}
	if err := os.MkdirAll(exportDir, 0o750); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, t := range tips {
		out := filepath.Join(exportDir, fmt.Sprintf("%s_%d.png", base, i+1))
		if err := savePNG(out, t); err != nil {
			return err
		}
		fmt.Fprintf(w, "  wrote %s\n", out)
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is built from user-provided names
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
