package nib

import (
	"context"
	"errors"
	"fmt"
	"image"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/nib/abr"
	"github.com/gogpu/nib/internal/parallel"
)

// Library errors.
var (
	// ErrReservedName is returned when adding a tip under a procedural name.
	ErrReservedName = errors.New("nib: reserved tip name")

	// ErrEmptyTip is returned when adding a tip with an empty mask.
	ErrEmptyTip = errors.New("nib: empty tip")
)

// brushExt is the file extension LoadLibrary picks up, compared
// case-insensitively.
const brushExt = ".abr"

// Library maps brush names to tips, in listing order.
//
// Names are stored in Unicode normalization form C, so names that differ only
// in composition refer to the same tip. The procedural names CircleName and
// SquareName are reserved and always resolve through Lookup.
//
// The zero value is an empty library ready to use. A Library is not safe for
// concurrent mutation. It is built once, then only read, typically by several
// canvases.
type Library struct {
	names []string
	tips  map[string]*AlphaTip
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{tips: make(map[string]*AlphaTip)}
}

// Add stores mask under name and returns the new tip. Adding an existing name
// replaces its tip but keeps its listing position.
func (l *Library) Add(name string, mask *image.Alpha) (*AlphaTip, error) {
	name = norm.NFC.String(name)
	if isProcedural(name) {
		return nil, fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	tip := NewAlphaTip(name, mask)
	if tip == nil {
		return nil, fmt.Errorf("%w: %q", ErrEmptyTip, name)
	}
	if l.tips == nil {
		l.tips = make(map[string]*AlphaTip)
	}
	if _, ok := l.tips[name]; !ok {
		l.names = append(l.names, name)
	}
	l.tips[name] = tip
	return tip, nil
}

// Tip returns the decoded tip stored under name.
func (l *Library) Tip(name string) (*AlphaTip, bool) {
	if l == nil {
		return nil, false
	}
	t, ok := l.tips[norm.NFC.String(name)]
	return t, ok
}

// Lookup resolves a tip name, procedural names included. A nil library
// resolves only the procedural names.
func (l *Library) Lookup(name string) (Tip, bool) {
	switch name {
	case CircleName:
		return Circle{}, true
	case SquareName:
		return Square{}, true
	}
	t, ok := l.Tip(name)
	if !ok {
		return nil, false
	}
	return t, true
}

// Names returns the decoded tip names in listing order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.names...)
}

// Len returns the number of decoded tips.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// All returns an iterator over the decoded tips in listing order.
func (l *Library) All() iter.Seq2[string, *AlphaTip] {
	return func(yield func(string, *AlphaTip) bool) {
		if l == nil {
			return
		}
		for _, name := range l.names {
			if !yield(name, l.tips[name]) {
				return
			}
		}
	}
}

func isProcedural(name string) bool {
	return name == CircleName || name == SquareName
}

// tipNames returns the library names for count tips decoded from one file:
// the bare base name for a single tip, otherwise base_1, base_2 and so on.
func tipNames(base string, count int) []string {
	if count == 1 {
		return []string{base}
	}
	names := make([]string, count)
	for i := range names {
		names[i] = base + "_" + strconv.Itoa(i+1)
	}
	return names
}

// brushFiles lists the brush containers in dir, sorted by file name.
func brushFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), brushExt) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// decoded is the outcome of reading one container file.
type decoded struct {
	tips []*image.Alpha
	err  error
}

// LoadLibrary decodes every brush container in dir into a new library.
//
// Files are decoded concurrently and added in file name order. A file that
// cannot be read, or that is damaged part way, contributes whatever tips it
// yielded and is reported at warn level; it never fails the load. The
// returned error is non-nil only when dir cannot be listed or ctx is
// cancelled.
func LoadLibrary(ctx context.Context, dir string) (*Library, error) {
	files, err := brushFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("nib: load library: %w", err)
	}

	log := Logger()
	results := make([]decoded, len(files))
	work := make([]func(), len(files))
	for i, path := range files {
		work[i] = func() {
			tips, err := abr.ReadFile(path, abr.WithLogger(log))
			results[i] = decoded{tips: tips, err: err}
		}
	}

	pool := parallel.NewWorkerPool(0)
	err = pool.ExecuteAll(ctx, work)
	pool.Close()
	if err != nil {
		return nil, fmt.Errorf("nib: load library: %w", err)
	}

	lib := NewLibrary()
	for i, path := range files {
		r := results[i]
		if r.err != nil {
			log.Warn("nib: brush file partially read", "file", path, "tips", len(r.tips), "err", r.err)
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for j, name := range tipNames(base, len(r.tips)) {
			if _, err := lib.Add(name, r.tips[j]); err != nil {
				log.Warn("nib: brush tip skipped", "file", path, "err", err)
			}
		}
	}

	log.Info("nib: brush library loaded", "dir", dir, "files", len(files), "tips", lib.Len())
	return lib, nil
}

// LibraryLoader loads a library in the background. Wait is the readiness
// gate: the library must not be used before Wait returns it.
type LibraryLoader struct {
	done chan struct{}
	lib  *Library
	err  error
}

// LoadLibraryAsync starts LoadLibrary on a new goroutine.
func LoadLibraryAsync(ctx context.Context, dir string) *LibraryLoader {
	l := &LibraryLoader{done: make(chan struct{})}
	go func() {
		defer close(l.done)
		l.lib, l.err = LoadLibrary(ctx, dir)
	}()
	return l
}

// Wait blocks until loading finishes or ctx is done. Giving up on ctx does
// not stop the load; a later Wait can still collect the result.
func (l *LibraryLoader) Wait(ctx context.Context) (*Library, error) {
	select {
	case <-l.done:
		return l.lib, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready reports whether loading has finished.
func (l *LibraryLoader) Ready() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
