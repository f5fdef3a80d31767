package nib

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/nib/internal/abrtest"
)

// solidMask returns a fully opaque w x h mask.
func solidMask(w, h int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range m.Pix {
		m.Pix[i] = 255
	}
	return m
}

// captureLogs routes nib logging into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestLibraryAdd(t *testing.T) {
	lib := NewLibrary()
	tip, err := lib.Add("blot", solidMask(2, 3))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if tip.Name() != "blot" || tip.Width() != 2 || tip.Height() != 3 {
		t.Errorf("Add() tip = %q %dx%d, want blot 2x3", tip.Name(), tip.Width(), tip.Height())
	}

	got, ok := lib.Tip("blot")
	if !ok || got != tip {
		t.Errorf("Tip(blot) = %v, %v; want the added tip", got, ok)
	}
	if _, ok := lib.Tip("other"); ok {
		t.Error("Tip(other) found a tip")
	}
	if lib.Len() != 1 {
		t.Errorf("Len() = %d, want 1", lib.Len())
	}
}

func TestLibraryZeroValue(t *testing.T) {
	var lib Library
	if _, ok := lib.Tip("blot"); ok {
		t.Error("Tip(blot) on an empty library found a tip")
	}
	if _, err := lib.Add("blot", solidMask(1, 1)); err != nil {
		t.Fatalf("Add() on zero value error = %v", err)
	}
	if _, ok := lib.Lookup("blot"); !ok || lib.Len() != 1 {
		t.Errorf("Lookup(blot) = %v, Len() = %d; want found, 1", ok, lib.Len())
	}
}

func TestLibraryAddRejects(t *testing.T) {
	lib := NewLibrary()

	for _, name := range []string{CircleName, SquareName} {
		if _, err := lib.Add(name, solidMask(1, 1)); !errors.Is(err, ErrReservedName) {
			t.Errorf("Add(%q) error = %v, want ErrReservedName", name, err)
		}
	}
	if _, err := lib.Add("empty", image.NewAlpha(image.Rectangle{})); !errors.Is(err, ErrEmptyTip) {
		t.Errorf("Add(empty) error = %v, want ErrEmptyTip", err)
	}
	if _, err := lib.Add("nil", nil); !errors.Is(err, ErrEmptyTip) {
		t.Errorf("Add(nil) error = %v, want ErrEmptyTip", err)
	}
	if lib.Len() != 0 {
		t.Errorf("Len() = %d, want 0", lib.Len())
	}
}

func TestLibraryDuplicateKeepsPosition(t *testing.T) {
	lib := NewLibrary()
	lib.Add("a", abrtest.Mask(1))
	lib.Add("b", abrtest.Mask(2))
	lib.Add("a", abrtest.Mask(3))

	if got, want := lib.Names(), []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	tip, _ := lib.Tip("a")
	if got := tip.alphaAt(1, 1); got != 3 {
		t.Errorf("replaced tip marker = %d, want 3", got)
	}
}

func TestLibraryNamesAreNormalized(t *testing.T) {
	lib := NewLibrary()
	// "e" followed by a combining acute accent.
	lib.Add("cafe\u0301", solidMask(1, 1))

	if _, ok := lib.Tip("caf\u00e9"); !ok {
		t.Error("precomposed name did not find the decomposed entry")
	}
	if got := lib.Names()[0]; got != "caf\u00e9" {
		t.Errorf("Names()[0] = %q, want NFC form", got)
	}
}

func TestLibraryLookup(t *testing.T) {
	lib := NewLibrary()
	lib.Add("blot", solidMask(1, 1))

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{CircleName, CircleName, true},
		{SquareName, SquareName, true},
		{"blot", "blot", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		got, ok := lib.Lookup(tt.name)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if ok && got.Name() != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.name, got.Name(), tt.want)
		}
	}
}

func TestLibraryNil(t *testing.T) {
	var lib *Library
	if _, ok := lib.Lookup(CircleName); !ok {
		t.Error("nil library did not resolve circle")
	}
	if _, ok := lib.Lookup("blot"); ok {
		t.Error("nil library resolved a custom name")
	}
	if lib.Len() != 0 || lib.Names() != nil {
		t.Error("nil library is not empty")
	}
	for range lib.All() {
		t.Error("nil library yielded a tip")
	}
}

func TestLibraryAll(t *testing.T) {
	lib := NewLibrary()
	for _, name := range []string{"c", "a", "b"} {
		lib.Add(name, solidMask(1, 1))
	}

	var names []string
	for name, tip := range lib.All() {
		if tip.Name() != name {
			t.Errorf("All() yielded %q with tip %q", name, tip.Name())
		}
		names = append(names, name)
	}
	if want := []string{"c", "a", "b"}; !slices.Equal(names, want) {
		t.Errorf("All() order = %v, want %v", names, want)
	}

	n := 0
	for range lib.All() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("All() ignored break: %d iterations", n)
	}
}

func TestTipNames(t *testing.T) {
	tests := []struct {
		base  string
		count int
		want  []string
	}{
		{"round", 1, []string{"round"}},
		{"set", 3, []string{"set_1", "set_2", "set_3"}},
		{"empty", 0, []string{}},
	}
	for _, tt := range tests {
		if got := tipNames(tt.base, tt.count); !slices.Equal(got, tt.want) {
			t.Errorf("tipNames(%q, %d) = %v, want %v", tt.base, tt.count, got, tt.want)
		}
	}
}

func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	abrtest.WriteFile(t, dir, "b_round.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(10)))
	abrtest.WriteFile(t, dir, "a_set.ABR", abrtest.File(2, abrtest.Raw, abrtest.Mask(20), abrtest.Mask(21)))
	abrtest.WriteFile(t, dir, "v1.abr", abrtest.File(1, abrtest.Raw, abrtest.Mask(30)))
	abrtest.WriteFile(t, dir, "c_packed.abr", abrtest.File(2, abrtest.PackBits, abrtest.Mask(60)))
	abrtest.WriteFile(t, dir, "notes.txt", abrtest.File(2, abrtest.Raw, abrtest.Mask(40)))
	if err := os.Mkdir(filepath.Join(dir, "folder.abr"), 0o700); err != nil {
		t.Fatal(err)
	}

	lib, err := LoadLibrary(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}

	want := []string{"a_set_1", "a_set_2", "b_round", "c_packed", "v1"}
	if got := lib.Names(); !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for name, marker := range map[string]uint8{"a_set_1": 20, "a_set_2": 21, "b_round": 10, "c_packed": 60, "v1": 30} {
		tip, _ := lib.Tip(name)
		if got := tip.alphaAt(1, 1); got != marker {
			t.Errorf("%s marker = %d, want %d", name, got, marker)
		}
	}
}

func TestLoadLibraryLaterDuplicateReplaces(t *testing.T) {
	dir := t.TempDir()
	abrtest.WriteFile(t, dir, "x.ABR", abrtest.File(2, abrtest.Raw, abrtest.Mask(1)))
	abrtest.WriteFile(t, dir, "x.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(2)))
	abrtest.WriteFile(t, dir, "y.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(3)))

	lib, err := LoadLibrary(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}
	if got, want := lib.Names(), []string{"x", "y"}; !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	tip, _ := lib.Tip("x")
	if got := tip.alphaAt(1, 1); got != 2 {
		t.Errorf("x marker = %d, want 2 (from the later file)", got)
	}
}

func TestLoadLibraryDamagedFiles(t *testing.T) {
	logs := captureLogs(t)
	dir := t.TempDir()

	full := abrtest.File(2, abrtest.Raw, abrtest.Mask(50), abrtest.Mask(51))
	abrtest.WriteFile(t, dir, "cut.abr", full[:len(full)-5])
	abrtest.WriteFile(t, dir, "garbage.abr", []byte("definitely not a brush file"))
	abrtest.WriteFile(t, dir, "future.abr", abrtest.File(3, abrtest.Raw, abrtest.Mask(52)))
	abrtest.WriteFile(t, dir, "tiny.abr", []byte{0, 6})
	abrtest.WriteFile(t, dir, "circle.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(53)))
	abrtest.WriteFile(t, dir, "good.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(54)))

	lib, err := LoadLibrary(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}

	// The cut file keeps the tip decoded before the damage.
	if got, want := lib.Names(), []string{"cut", "good"}; !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	tip, _ := lib.Tip("cut")
	if got := tip.alphaAt(1, 1); got != 50 {
		t.Errorf("cut marker = %d, want 50", got)
	}

	out := logs.String()
	for _, file := range []string{"cut.abr", "future.abr", "tiny.abr", "circle.abr"} {
		if !strings.Contains(out, file) {
			t.Errorf("no warning logged for %s", file)
		}
	}
	if !strings.Contains(out, "brush library loaded") {
		t.Error("load summary not logged")
	}
}

func TestLoadLibraryMissingDir(t *testing.T) {
	_, err := LoadLibrary(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadLibrary() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadLibraryEmptyDir(t *testing.T) {
	lib, err := LoadLibrary(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}
	if lib.Len() != 0 {
		t.Errorf("Len() = %d, want 0", lib.Len())
	}
}

func TestLoadLibraryCancelled(t *testing.T) {
	dir := t.TempDir()
	abrtest.WriteFile(t, dir, "a.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadLibrary(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadLibrary() error = %v, want context.Canceled", err)
	}
}

func TestLoadLibraryAsync(t *testing.T) {
	dir := t.TempDir()
	abrtest.WriteFile(t, dir, "a.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(1)))
	abrtest.WriteFile(t, dir, "b.abr", abrtest.File(2, abrtest.Raw, abrtest.Mask(2)))

	loader := LoadLibraryAsync(context.Background(), dir)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	lib, err := loader.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !loader.Ready() {
		t.Error("Ready() = false after Wait() returned")
	}
	if got, want := lib.Names(), []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	// The gate stays open.
	again, err := loader.Wait(context.Background())
	if err != nil || again != lib {
		t.Errorf("second Wait() = %p, %v; want the same library", again, err)
	}
}

func TestLibraryLoaderWaitCancelled(t *testing.T) {
	// A loader that never finishes.
	loader := &LibraryLoader{done: make(chan struct{})}
	if loader.Ready() {
		t.Fatal("Ready() = true before loading finished")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
