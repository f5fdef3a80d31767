package abr

import (
	"fmt"
	"image"

	"github.com/gogpu/nib/internal/packbits"
)

// Compression flags stored after the bounding box.
const (
	compressionRaw      = 0
	compressionPackBits = 1
)

// sampleHeaderSize is the bounding box (4 x u32), bit depth (u16) and
// compression flag (u8) that precede the pixel payload.
const sampleHeaderSize = 16 + 2 + 1

// sampleHeader describes one brush sample.
type sampleHeader struct {
	top, left, bottom, right uint32
	depth                    uint16
	compression              byte
}

// size returns the sample dimensions, and false when they are outside the
// accepted range (0, maxDimension).
func (h sampleHeader) size() (width, height int, ok bool) {
	w := int64(h.right) - int64(h.left)
	ht := int64(h.bottom) - int64(h.top)
	if w <= 0 || w >= maxDimension || ht <= 0 || ht >= maxDimension {
		return 0, 0, false
	}
	return int(w), int(ht), true
}

// decodeItem decodes the sample whose header starts at data[p], with the item
// ending at data[end]. It returns a nil tip for items that are skipped and an
// error when the header itself cannot be read.
//
// The header is the bounding box, a u16 bit depth, then the compression flag
// at offset 18. The depth is read but not interpreted; a layout with the flag
// directly after the bounding box is not recognized.
func decodeItem(data []byte, p, end int) (*image.Alpha, error) {
	if p+sampleHeaderSize > len(data) {
		return nil, fmt.Errorf("%w: sample header at %d", ErrTruncated, p)
	}
	if p+sampleHeaderSize > end {
		return nil, nil
	}
	h := sampleHeader{
		top:         be.Uint32(data[p : p+4]),
		left:        be.Uint32(data[p+4 : p+8]),
		bottom:      be.Uint32(data[p+8 : p+12]),
		right:       be.Uint32(data[p+12 : p+16]),
		depth:       be.Uint16(data[p+16 : p+18]),
		compression: data[p+18],
	}

	w, ht, ok := h.size()
	if !ok {
		return nil, nil
	}

	payload := data[p+sampleHeaderSize : end]

	var gray *image.Gray
	switch h.compression {
	case compressionRaw:
		if len(payload) < w*ht {
			return nil, fmt.Errorf("%w: raw sample %dx%d has %d bytes", ErrTruncated, w, ht, len(payload))
		}
		gray = image.NewGray(image.Rect(0, 0, w, ht))
		copy(gray.Pix, payload[:w*ht])
	case compressionPackBits:
		gray = decodePackBits(payload, w, ht)
	}
	if gray == nil {
		return nil, nil
	}
	return toAlpha(gray), nil
}

// decodePackBits decodes a row-length table followed by PackBits rows.
//
// A row whose declared length overruns the payload is decoded from the bytes
// available, and the next row still starts at the declared offset. It returns
// nil when the payload cannot hold the row-length table.
func decodePackBits(payload []byte, width, height int) *image.Gray {
	table := 2 * height
	if len(payload) < table {
		return nil
	}

	gray := image.NewGray(image.Rect(0, 0, width, height))
	offset := table
	for y := range height {
		n := int(be.Uint16(payload[2*y : 2*y+2]))
		if n == 0 {
			continue
		}
		rowEnd := offset + n
		if offset < len(payload) {
			row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
			packbits.DecodeRow(row, payload[offset:min(rowEnd, len(payload))])
		}
		offset = rowEnd
	}
	return gray
}

// toAlpha converts a grayscale sample into a tip mask.
//
// Containers store tips either as coverage (ink is bright) or as a printed
// image (ink is dark). The four corners are assumed to be background: when
// their mean is above 127 the sample is inverted.
func toAlpha(g *image.Gray) *image.Alpha {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()

	corners := int(g.GrayAt(b.Min.X, b.Min.Y).Y) +
		int(g.GrayAt(b.Max.X-1, b.Min.Y).Y) +
		int(g.GrayAt(b.Min.X, b.Max.Y-1).Y) +
		int(g.GrayAt(b.Max.X-1, b.Max.Y-1).Y)
	invert := corners > 4*127

	a := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := range h {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		dst := a.Pix[y*a.Stride : y*a.Stride+w]
		for x, v := range src {
			if invert {
				v = 255 - v
			}
			dst[x] = v
		}
	}
	return a
}
