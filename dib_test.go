package clipdib

import "encoding/binary"

// testDIB describes a synthetic DIB for tests.
type testDIB struct {
	headerSize  uint32
	width       int32
	height      int32
	bitDepth    uint16
	compression Compression
	imageSize   uint32
	colorsUsed  uint32
	// masks go into the V4/V5 header, or into the table after a 40-byte
	// header (R, G and B only).
	masks *ColorMasks
	// csType and profile are written for V5 headers. The profile is placed
	// right after the header, before the pixels.
	csType  uint32
	profile []byte
	pixels  []byte
}

func (d testDIB) bytes() []byte {
	size := d.headerSize
	if size == 0 {
		size = infoHeaderLen
	}
	hdrLen := size
	if hdrLen != infoHeaderLen && hdrLen != v4InfoHeaderLen && hdrLen != v5InfoHeaderLen {
		hdrLen = infoHeaderLen
	}
	b := make([]byte, hdrLen)
	le := binary.LittleEndian
	le.PutUint32(b[offHeaderSize:], size)
	le.PutUint32(b[offWidth:], uint32(d.width))
	le.PutUint32(b[offHeight:], uint32(d.height))
	le.PutUint16(b[offPlanes:], 1)
	le.PutUint16(b[offBitDepth:], d.bitDepth)
	le.PutUint32(b[offCompression:], uint32(d.compression))
	le.PutUint32(b[offImageSize:], d.imageSize)
	le.PutUint32(b[offColorsUsed:], d.colorsUsed)

	if d.masks != nil {
		if hdrLen >= v4InfoHeaderLen {
			le.PutUint32(b[offRedMask:], d.masks.R)
			le.PutUint32(b[offGreenMask:], d.masks.G)
			le.PutUint32(b[offBlueMask:], d.masks.B)
			le.PutUint32(b[offAlphaMask:], d.masks.A)
		} else {
			b = le.AppendUint32(b, d.masks.R)
			b = le.AppendUint32(b, d.masks.G)
			b = le.AppendUint32(b, d.masks.B)
		}
	}
	if hdrLen == v5InfoHeaderLen {
		le.PutUint32(b[offCSType:], d.csType)
		if len(d.profile) > 0 {
			le.PutUint32(b[offProfileData:], uint32(len(b)))
			le.PutUint32(b[offProfileSize:], uint32(len(d.profile)))
			b = append(b, d.profile...)
		}
	}
	return append(b, d.pixels...)
}

// bgra32 builds 32-bit rows from BGRA quadruples; 32-bit rows need no padding.
func bgra32(px ...[4]byte) []byte {
	out := make([]byte, 0, 4*len(px))
	for _, p := range px {
		out = append(out, p[:]...)
	}
	return out
}
