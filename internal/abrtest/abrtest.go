// Package abrtest builds brush container files for tests.
package abrtest

import (
	"encoding/binary"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/nib/internal/packbits"
)

// Compression selects how sample pixels are stored.
type Compression byte

const (
	Raw      Compression = 0
	PackBits Compression = 1
)

// File returns a version 6 container of the given minor version with one
// "samp" block holding a sample per mask.
func File(minor uint16, c Compression, masks ...*image.Alpha) []byte {
	skip := 301
	if minor == 1 {
		skip = 47
	}

	var samp []byte
	for _, m := range masks {
		item := make([]byte, skip)
		item = appendSample(item, m, c)

		samp = binary.BigEndian.AppendUint32(samp, uint32(len(item)))
		samp = append(samp, item...)
		for len(samp)%4 != 0 {
			samp = append(samp, 0)
		}
	}

	doc := binary.BigEndian.AppendUint16(nil, 6)
	doc = binary.BigEndian.AppendUint16(doc, minor)
	doc = append(doc, "8BIMsamp"...)
	doc = binary.BigEndian.AppendUint32(doc, uint32(len(samp)))
	return append(doc, samp...)
}

func appendSample(b []byte, m *image.Alpha, c Compression) []byte {
	r := m.Rect
	b = binary.BigEndian.AppendUint32(b, uint32(r.Min.Y))
	b = binary.BigEndian.AppendUint32(b, uint32(r.Min.X))
	b = binary.BigEndian.AppendUint32(b, uint32(r.Max.Y))
	b = binary.BigEndian.AppendUint32(b, uint32(r.Max.X))
	b = binary.BigEndian.AppendUint16(b, 8)
	b = append(b, byte(c))

	w := r.Dx()
	rows := make([][]byte, r.Dy())
	for y := range rows {
		rows[y] = m.Pix[m.PixOffset(r.Min.X, r.Min.Y+y):][:w]
	}

	if c == Raw {
		for _, row := range rows {
			b = append(b, row...)
		}
		return b
	}

	enc := make([][]byte, len(rows))
	for y, row := range rows {
		enc[y] = packbits.Encode(row)
		b = binary.BigEndian.AppendUint16(b, uint16(len(enc[y])))
	}
	for _, e := range enc {
		b = append(b, e...)
	}
	return b
}

// Mask returns a 4x4 mask with clear corners, marker at (1,1) and full
// coverage at (2,2).
func Mask(marker uint8) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, 4, 4))
	m.Pix[1*m.Stride+1] = marker
	m.Pix[2*m.Stride+2] = 255
	return m
}

// WriteFile writes data to name inside dir.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
