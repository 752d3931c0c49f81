package clipdib

import "math/bits"

// ColorMasks locate the red, green, blue and alpha samples inside a 32-bit
// pixel word. A zero mask means the channel is absent.
type ColorMasks struct {
	R uint32 `yaml:"r"`
	G uint32 `yaml:"g"`
	B uint32 `yaml:"b"`
	A uint32 `yaml:"a"`
}

// DefaultMasks returns the BGRA byte layout assumed when a header carries no
// masks of its own.
func DefaultMasks() ColorMasks {
	return ColorMasks{R: 0x00ff0000, G: 0x0000ff00, B: 0x000000ff, A: 0xff000000}
}

// isBGRA reports whether pixels can be copied byte for byte.
func (m ColorMasks) isBGRA() bool {
	d := DefaultMasks()
	return m.R == d.R && m.G == d.G && m.B == d.B && (m.A == d.A || m.A == 0)
}

// resolveMasks returns the channel masks for h and the length of the
// bit-field table that follows a BITMAPINFOHEADER, if any.
func resolveMasks(b blob, h *Header) (m ColorMasks, tableLen int) {
	m = DefaultMasks()
	if h.Size >= v4InfoHeaderLen {
		// Each mask is taken individually if the buffer reaches it.
		if v, ok := b.u32(offRedMask); ok {
			m.R = v
		}
		if v, ok := b.u32(offGreenMask); ok {
			m.G = v
		}
		if v, ok := b.u32(offBlueMask); ok {
			m.B = v
		}
		if v, ok := b.u32(offAlphaMask); ok {
			m.A = v
		}
		return m, 0
	}
	if h.Compression == CompressionBitFields && (h.BitDepth == 16 || h.BitDepth == 32) {
		// Three masks follow the header. There is no alpha slot, so alpha
		// keeps the default.
		r, okR := b.u32(infoHeaderLen)
		g, okG := b.u32(infoHeaderLen + 4)
		bl, okB := b.u32(infoHeaderLen + 8)
		if okR && okG && okB {
			m.R, m.G, m.B = r, g, bl
		}
		return m, 12
	}
	return m, 0
}

// Normalize scales an n-bit sample to 8 bits, rounding half up. Samples
// wider than n bits are truncated to their low n bits first.
func Normalize(raw uint32, n uint) uint8 {
	switch {
	case n == 0:
		return 0
	case n == 8:
		return uint8(raw)
	}
	maxv := uint64(1)<<n - 1
	r := uint64(raw) & maxv
	return uint8((r*255 + maxv/2) / maxv)
}

// Expand extracts the sample selected by mask from the pixel word v and
// scales it to 8 bits. Only the lowest contiguous run of mask bits is used.
// A zero mask yields 0; callers decide what an absent channel means.
func Expand(v, mask uint32) uint8 {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.TrailingZeros32(^(mask >> shift))
	return Normalize((v&mask)>>shift, uint(width))
}
