// Package packbits implements the PackBits run-length scheme used for
// compressed brush sample rows.
//
// A stream is a sequence of runs, each introduced by a control byte n:
//
//	n < 128   literal run: the next n+1 bytes are copied verbatim
//	n > 128   repeat run: the next byte is repeated 257-n times
//	n == 128  no-op, nothing is written
//
// The decoder is strictly bounds-checked. Brush files in the wild are often
// truncated or garbled, so every run is clamped to both the remaining row width
// and the remaining input instead of failing.
package packbits

const (
	// maxRun is the longest literal or repeat run a single control byte can describe.
	maxRun = 128

	// noop is the control byte that carries no data.
	noop = 128
)

// DecodeRow decompresses one row from src into dst. The row width is len(dst).
//
// Decoding stops when src is exhausted or dst is full. Runs that would write
// past the end of dst are truncated, and runs whose payload extends past the
// end of src are truncated to the bytes available.
//
// It returns the number of source bytes consumed and the number of samples
// written. Samples of dst beyond ndst are left untouched.
func DecodeRow(dst, src []byte) (nsrc, ndst int) {
	width := len(dst)
	for nsrc < len(src) && ndst < width {
		n := int(src[nsrc])
		nsrc++

		switch {
		case n < noop:
			count := n + 1
			avail := min(count, width-ndst, len(src)-nsrc)
			copy(dst[ndst:ndst+avail], src[nsrc:nsrc+avail])
			ndst += avail
			// The remainder of a literal run clipped by the row width is
			// still part of this row's input.
			nsrc = min(nsrc+count, len(src))

		case n > noop:
			if nsrc >= len(src) {
				return nsrc, ndst
			}
			v := src[nsrc]
			nsrc++
			count := min(257-n, width-ndst)
			fill := dst[ndst : ndst+count]
			for i := range fill {
				fill[i] = v
			}
			ndst += count
		}
	}
	return nsrc, ndst
}

// Encode compresses row into a PackBits stream that DecodeRow reproduces
// exactly when given a destination of len(row) bytes.
//
// Runs of three or more equal bytes become repeat runs; everything else is
// grouped into literal runs of at most 128 bytes.
func Encode(row []byte) []byte {
	out := make([]byte, 0, len(row)+len(row)/maxRun+1)

	i := 0
	for i < len(row) {
		run := repeatLen(row[i:])
		if run >= 3 {
			out = append(out, byte(257-run), row[i])
			i += run
			continue
		}

		start := i
		for i < len(row) && i-start < maxRun {
			if repeatLen(row[i:]) >= 3 {
				break
			}
			i++
		}
		out = append(out, byte(i-start-1))
		out = append(out, row[start:i]...)
	}
	return out
}

// repeatLen reports how many times b[0] repeats at the start of b, capped at maxRun.
func repeatLen(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := 1
	for n < len(b) && n < maxRun && b[n] == b[0] {
		n++
	}
	return n
}
