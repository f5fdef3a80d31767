// Package abr extracts brush tips from Photoshop brush (ABR) containers.
//
// Only the chunked layout is supported: a 4-byte version header followed by
// "8BIM" resource blocks, one of which ("samp") holds the sampled brush tips.
// Each tip is returned as an *image.Alpha whose alpha channel is the brush
// coverage; colour is applied later, when the tip is stamped.
//
// Decoding is tolerant. Brush files found in the wild are frequently truncated
// or carry garbage, so malformed items are skipped, and a document that cannot
// be walked to the end yields the tips found before the damage together with
// a non-nil error.
package abr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
)

// Common errors for container decoding.
var (
	// ErrTruncated is returned when a read runs past the end of the document.
	ErrTruncated = errors.New("abr: truncated document")

	// ErrUnsupportedVersion is returned for minor versions other than 1 and 2.
	ErrUnsupportedVersion = errors.New("abr: unsupported version")

	// ErrMalformed is returned when the document structure cannot be walked.
	ErrMalformed = errors.New("abr: malformed document")
)

const (
	// blockMarker introduces every resource block.
	blockMarker = "8BIM"

	// sampleKey identifies the block holding the brush samples.
	sampleKey = "samp"

	// blockHeaderSize is marker + key + length.
	blockHeaderSize = 12

	// maxDimension bounds tip width and height (exclusive).
	maxDimension = 5000
)

var be = binary.BigEndian

// Block is a resource block located in a document.
// The payload occupies data[Start:End].
type Block struct {
	Key   string
	Start int
	End   int
}

// Len returns the payload length of the block.
func (b Block) Len() int {
	return b.End - b.Start
}

// Option configures decoding.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for per-item diagnostics.
// A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Header returns the major and minor version stored in the first four bytes.
func Header(data []byte) (major, minor uint16, err error) {
	if len(data) < 4 {
		return 0, 0, ErrTruncated
	}
	return be.Uint16(data[0:2]), be.Uint16(data[2:4]), nil
}

// headerSkip returns the number of item header bytes preceding the bounding box.
func headerSkip(minor uint16) (int, bool) {
	switch minor {
	case 1:
		return 47, true
	case 2:
		return 301, true
	default:
		return 0, false
	}
}

// Blocks walks the resource blocks of a document.
//
// The walk scans forward from offset 4 for the block marker, so stray bytes
// between blocks are tolerated. A block whose declared length runs past the
// end of the document is clamped and ends the walk with ErrTruncated.
func Blocks(data []byte) ([]Block, error) {
	if len(data) < 4 {
		return nil, ErrTruncated
	}

	var blocks []Block
	cursor := 4
	for cursor < len(data)-blockHeaderSize {
		if string(data[cursor:cursor+4]) != blockMarker {
			cursor++
			continue
		}
		key := string(data[cursor+4 : cursor+8])
		length := int64(be.Uint32(data[cursor+8 : cursor+12]))
		start := cursor + blockHeaderSize
		end := int64(start) + length

		if end > int64(len(data)) {
			blocks = append(blocks, Block{Key: key, Start: start, End: len(data)})
			return blocks, fmt.Errorf("%w: block %q declares %d bytes, %d available",
				ErrTruncated, key, length, len(data)-start)
		}
		blocks = append(blocks, Block{Key: key, Start: start, End: int(end)})
		cursor = int(end)
	}
	return blocks, nil
}

// ReadFile reads the container at path and decodes its brush tips.
// See Decode for the error contract.
func ReadFile(path string, opts ...Option) ([]*image.Alpha, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	return Decode(data, opts...)
}

// Decode extracts every brush tip from an in-memory container.
//
// Items with invalid geometry or an unknown compression flag are skipped
// silently. When the document cannot be walked to the end, Decode returns the
// tips collected so far and an error wrapping ErrTruncated, ErrMalformed or
// ErrUnsupportedVersion. Decode never panics.
func Decode(data []byte, opts ...Option) (tips []*image.Alpha, err error) {
	o := buildOptions(opts)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	_, minor, err := Header(data)
	if err != nil {
		return nil, err
	}
	skip, ok := headerSkip(minor)
	if !ok {
		return nil, fmt.Errorf("%w: minor version %d", ErrUnsupportedVersion, minor)
	}

	blocks, walkErr := Blocks(data)
	for _, b := range blocks {
		if b.Key != sampleKey {
			o.logger.Debug("abr: skipping block", "key", b.Key, "len", b.Len())
			continue
		}
		var sampErr error
		tips, sampErr = decodeSamples(data[b.Start:b.End], skip, tips, o.logger)
		if sampErr != nil {
			return tips, sampErr
		}
	}
	return tips, walkErr
}

// decodeSamples walks the items of a "samp" block, appending decoded tips.
//
// Item lengths are compared as unsigned values against the bytes left in the
// block, so an oversized length ends the walk on every platform.
func decodeSamples(block []byte, skip int, tips []*image.Alpha, log *slog.Logger) ([]*image.Alpha, error) {
	cursor := 0
	for cursor+4 <= len(block) {
		itemLen := be.Uint32(block[cursor : cursor+4])
		cursor += 4

		itemEnd := len(block)
		overrun := uint64(itemLen) > uint64(len(block)-cursor)
		if !overrun {
			itemEnd = cursor + int(itemLen)
		}

		if uint64(skip) < uint64(itemLen) {
			tip, err := decodeItem(block, cursor+skip, itemEnd)
			switch {
			case err != nil:
				return tips, err
			case tip != nil:
				tips = append(tips, tip)
			default:
				log.Debug("abr: skipping sample", "offset", cursor-4, "len", itemLen)
			}
		}

		if overrun {
			break
		}
		cursor = itemEnd
		if pad := int(itemLen % 4); pad != 0 {
			cursor += 4 - pad
		}
	}
	return tips, nil
}
