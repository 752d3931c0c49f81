// Package clipdib decodes device-independent bitmaps (DIBs) as found in a
// clipboard buffer into top-down, non-premultiplied 32-bit BGRA pixels.
//
// A DIB is a BITMAPINFOHEADER (40 bytes), BITMAPV4HEADER (108 bytes) or
// BITMAPV5HEADER (124 bytes), optionally followed by a bit-field mask table,
// a palette and an ICC profile block, and then the pixel data. Unlike a .bmp
// file there is no 14-byte file header and hence no explicit pixel offset, so
// the offset must be derived from the header itself.
package clipdib

import (
	"encoding/binary"
	"strconv"
)

// We only recognize those DIBs with one of the following headers:
// - BITMAPINFOHEADER (40 bytes)
// - BITMAPV4HEADER (108 bytes)
// - BITMAPV5HEADER (124 bytes)
// Any other declared size is read as a BITMAPINFOHEADER.
const (
	fileHeaderLen   = 14
	infoHeaderLen   = 40
	v4InfoHeaderLen = 108
	v5InfoHeaderLen = 124
)

// Field offsets relative to the start of the DIB.
const (
	offHeaderSize  = 0
	offWidth       = 4
	offHeight      = 8
	offPlanes      = 12
	offBitDepth    = 14
	offCompression = 16
	offImageSize   = 20
	offColorsUsed  = 32
	offRedMask     = 40
	offGreenMask   = 44
	offBlueMask    = 48
	offAlphaMask   = 52
	offCSType      = 56
	offProfileData = 112
	offProfileSize = 116
)

// Compression is the biCompression field of a DIB header.
type Compression uint32

const (
	CompressionNone      Compression = 0 // BI_RGB
	CompressionRLE8      Compression = 1 // BI_RLE8, recognized but rejected
	CompressionRLE4      Compression = 2 // BI_RLE4, recognized but rejected
	CompressionBitFields Compression = 3 // BI_BITFIELDS
	CompressionJPEG      Compression = 4 // BI_JPEG
	CompressionPNG       Compression = 5 // BI_PNG
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionRLE8:
		return "rle8"
	case CompressionRLE4:
		return "rle4"
	case CompressionBitFields:
		return "bitfields"
	case CompressionJPEG:
		return "jpeg"
	case CompressionPNG:
		return "png"
	}
	return "compression(" + strconv.FormatUint(uint64(c), 10) + ")"
}

// blob is an untrusted DIB buffer. All multi-byte reads are little-endian and
// bounds checked.
type blob []byte

func (b blob) u16(off int) (uint16, bool) {
	if off < 0 || off > len(b)-2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b[off:]), true
}

func (b blob) u32(off int) (uint32, bool) {
	if off < 0 || off > len(b)-4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[off:]), true
}

// Header holds the fields of a DIB header that affect decoding.
type Header struct {
	// Size is the validated header length: 40, 108 or 124.
	Size uint32
	// DeclaredSize is the raw biSize field, before validation.
	DeclaredSize uint32
	Width        int32
	// Height is positive for bottom-up rows and negative for top-down rows.
	Height      int32
	Planes      uint16
	BitDepth    uint16
	Compression Compression
	// ImageSize is biSizeImage. Zero means the size follows from the geometry.
	ImageSize  uint32
	ColorsUsed uint32
}

// BottomUp reports whether the first stored row is the bottom of the image.
func (h *Header) BottomUp() bool { return h.Height > 0 }

// Rows returns the number of pixel rows.
func (h *Header) Rows() int {
	if h.Height < 0 {
		return -int(h.Height)
	}
	return int(h.Height)
}

// Variant names the header layout.
func (h *Header) Variant() string {
	switch h.Size {
	case v4InfoHeaderLen:
		return "BITMAPV4HEADER"
	case v5InfoHeaderLen:
		return "BITMAPV5HEADER"
	}
	return "BITMAPINFOHEADER"
}

// ParseHeader reads the DIB header at the start of dib. An unrecognized
// biSize is clamped to the BITMAPINFOHEADER size rather than rejected.
func ParseHeader(dib []byte) (Header, error) {
	return parseHeader(blob(dib))
}

func parseHeader(b blob) (h Header, err error) {
	if len(b) < infoHeaderLen {
		return Header{}, FormatError("header too short")
	}
	// All fields below lie inside the first 40 bytes, which were just checked.
	h.DeclaredSize, _ = b.u32(offHeaderSize)
	switch h.DeclaredSize {
	case infoHeaderLen, v4InfoHeaderLen, v5InfoHeaderLen:
		h.Size = h.DeclaredSize
	default:
		h.Size = infoHeaderLen
	}
	w, _ := b.u32(offWidth)
	ht, _ := b.u32(offHeight)
	h.Width, h.Height = int32(w), int32(ht)
	h.Planes, _ = b.u16(offPlanes)
	h.BitDepth, _ = b.u16(offBitDepth)
	c, _ := b.u32(offCompression)
	h.Compression = Compression(c)
	h.ImageSize, _ = b.u32(offImageSize)
	h.ColorsUsed, _ = b.u32(offColorsUsed)
	return h, nil
}
