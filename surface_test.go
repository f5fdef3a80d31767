package nib

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestNewSurface(t *testing.T) {
	s := NewSurface(30, 20)
	if s == nil {
		t.Fatal("NewSurface returned nil")
	}
	if s.Width() != 30 || s.Height() != 20 {
		t.Errorf("size = %dx%d, want 30x20", s.Width(), s.Height())
	}
	if got := s.RGBA().RGBAAt(5, 5); got != (color.RGBA{}) {
		t.Errorf("new surface pixel = %v, want transparent", got)
	}

	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if NewSurface(size[0], size[1]) != nil {
			t.Errorf("NewSurface(%d, %d) != nil", size[0], size[1])
		}
	}
}

func TestSurfaceFill(t *testing.T) {
	// Odd pixel count exercises the final partial copy.
	s := NewSurface(7, 3)
	s.Fill(RGB(1, 0, 0))

	want := color.RGBA{255, 0, 0, 255}
	for y := range 3 {
		for x := range 7 {
			if got := s.RGBA().RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSurfaceCloneIsIndependent(t *testing.T) {
	s := NewSurface(4, 4)
	s.Fill(White)
	c := s.Clone()
	if !s.Equal(c) {
		t.Fatal("clone differs from original")
	}

	c.Fill(Black)
	if s.Equal(c) {
		t.Error("modifying the clone changed the original")
	}
	if got := s.RGBA().RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("original pixel = %v, want white", got)
	}
}

func TestSurfaceEqual(t *testing.T) {
	a := NewSurface(2, 2)
	b := NewSurface(2, 2)
	c := NewSurface(2, 3)

	if !a.Equal(b) {
		t.Error("equal blank surfaces reported different")
	}
	if a.Equal(c) {
		t.Error("surfaces of different size reported equal")
	}
	if a.Equal(nil) {
		t.Error("surface equal to nil")
	}
	var n *Surface
	if !n.Equal(nil) {
		t.Error("nil surface not equal to nil")
	}
}

func TestSurfaceEncodePNG(t *testing.T) {
	s := NewSurface(3, 2)
	s.Fill(Hex("#336699"))

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds() != s.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", img.Bounds(), s.Bounds())
	}
	got := color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA)
	if got != (color.NRGBA{0x33, 0x66, 0x99, 0xFF}) {
		t.Errorf("decoded pixel = %v, want #336699", got)
	}
}

func TestSurfaceSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	s := NewSurface(2, 2)
	if err := s.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	bad := filepath.Join(t.TempDir(), "missing", "out.png")
	if err := s.SavePNG(bad); err == nil {
		t.Error("SavePNG() into a missing directory succeeded")
	}
}
