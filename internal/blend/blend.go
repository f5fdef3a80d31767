// Package blend implements the Porter-Duff operators the stroke compositor
// needs, on premultiplied 8-bit RGBA.
//
// All functions work with premultiplied alpha values in the range 0-255, the
// same layout as image.RGBA.Pix.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// MulDiv255 multiplies two byte values and divides by 255 with rounding.
// Formula: (a * b + 127) / 255
func MulDiv255(a, b byte) byte {
	return byte((uint16(a)*uint16(b) + 127) / 255)
}

// addClamp adds two byte values with clamping to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// SourceOver composites source over destination.
// Formula: S + D * (1 - Sa)
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return addClamp(sr, MulDiv255(dr, invSa)),
		addClamp(sg, MulDiv255(dg, invSa)),
		addClamp(sb, MulDiv255(db, invSa)),
		addClamp(sa, MulDiv255(da, invSa))
}

// DestinationIn keeps the destination where the source is opaque.
// Formula: D * Sa
func DestinationIn(sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return MulDiv255(dr, sa), MulDiv255(dg, sa), MulDiv255(db, sa), MulDiv255(da, sa)
}

// OpacityByte converts an opacity in [0, 1] to a byte, clamping out-of-range input.
func OpacityByte(opacity float64) byte {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return byte(opacity*255 + 0.5)
}

// CompositeOver composites the premultiplied pixels in src over dst in place,
// scaling every source pixel by opacity first. dst and src must hold the same
// number of bytes, a multiple of four.
func CompositeOver(dst, src []byte, opacity byte) {
	if opacity == 0 {
		return
	}
	n := min(len(dst), len(src)) &^ 3
	for i := 0; i < n; i += 4 {
		sr, sg, sb, sa := src[i], src[i+1], src[i+2], src[i+3]
		if opacity < 255 {
			sr, sg, sb, sa = MulDiv255(sr, opacity), MulDiv255(sg, opacity),
				MulDiv255(sb, opacity), MulDiv255(sa, opacity)
		}
		if sa == 0 && sr == 0 && sg == 0 && sb == 0 {
			continue
		}
		dst[i], dst[i+1], dst[i+2], dst[i+3] = SourceOver(sr, sg, sb, sa,
			dst[i], dst[i+1], dst[i+2], dst[i+3])
	}
}
