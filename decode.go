package clipdib

import (
	"encoding/binary"
	"image"
)

// DefaultMaxPixels bounds width*height when Options.MaxPixels is zero.
const DefaultMaxPixels = 1 << 28

// PixelBuffer is a decoded image: top-down rows of non-premultiplied pixels
// in B, G, R, A byte order.
type PixelBuffer struct {
	Width  int
	Height int
	// Stride is the distance in bytes between vertically adjacent pixels.
	// It is always Width*4.
	Stride int
	Pix    []byte
}

func newPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{Width: w, Height: h, Stride: w * 4, Pix: make([]byte, w*4*h)}
}

// Release drops the pixel storage. Releasing twice is a no-op.
func (p *PixelBuffer) Release() {
	if p == nil {
		return
	}
	p.Pix = nil
	p.Width, p.Height, p.Stride = 0, 0, 0
}

// Image returns a copy of p as an RGBA-ordered image.
func (p *PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for i := 0; i+3 < len(p.Pix) && i+3 < len(img.Pix); i += 4 {
		img.Pix[i+0] = p.Pix[i+2]
		img.Pix[i+1] = p.Pix[i+1]
		img.Pix[i+2] = p.Pix[i+0]
		img.Pix[i+3] = p.Pix[i+3]
	}
	return img
}

// AlphaPolicy decides what happens to a 32-bit image whose alpha samples are
// all zero.
type AlphaPolicy int

const (
	// AlphaInfer treats an all-zero alpha channel as unused and makes the
	// image opaque, provided some color sample is non-zero. Many producers
	// write 32-bit pixels with an unused fourth byte. This is a heuristic,
	// not part of the DIB format, and it misreads an intentionally fully
	// transparent image that has color.
	AlphaInfer AlphaPolicy = iota
	// AlphaKeep leaves the decoded alpha samples untouched.
	AlphaKeep
)

func (a AlphaPolicy) String() string {
	if a == AlphaKeep {
		return "keep"
	}
	return "infer"
}

// Options control decoding. The zero value is ready to use.
type Options struct {
	// Codec decodes embedded JPEG and PNG payloads. Nil means an
	// ImageCodec with the same MaxPixels.
	Codec Codec
	Alpha AlphaPolicy
	// MaxPixels bounds width*height. Zero means DefaultMaxPixels.
	MaxPixels int
}

func (o *Options) maxPixels() int {
	if o == nil || o.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return o.MaxPixels
}

func (o *Options) codec() Codec {
	if o != nil && o.Codec != nil {
		return o.Codec
	}
	return &ImageCodec{MaxPixels: o.maxPixels()}
}

func (o *Options) alpha() AlphaPolicy {
	if o == nil {
		return AlphaInfer
	}
	return o.Alpha
}

// Decode decodes a DIB (a DIB header followed by its pixel data, without a
// file header). On error no buffer is returned.
func Decode(dib []byte, opts *Options) (*PixelBuffer, error) {
	b := blob(dib)
	h, err := parseHeader(b)
	if err != nil {
		return nil, err
	}
	masks, tableLen := resolveMasks(b, &h)
	off, err := pixelOffset(b, &h, tableLen)
	if err != nil {
		return nil, err
	}

	switch h.Compression {
	case CompressionJPEG, CompressionPNG:
		return opts.codec().DecodeBGRA(h.Compression, payload(b, &h, off))
	case CompressionNone, CompressionBitFields:
		return decodeUncompressed(b, &h, masks, off, opts)
	case CompressionRLE8, CompressionRLE4:
		return nil, UnsupportedError("run-length compression")
	}
	return nil, UnsupportedError(h.Compression.String())
}

// payload returns the embedded compressed stream starting at off. A
// biSizeImage that does not fit the buffer is ignored in favor of the rest of
// the buffer.
func payload(b blob, h *Header, off int) []byte {
	if n := uint64(h.ImageSize); n > 0 && uint64(off)+n <= uint64(len(b)) {
		return b[off : off+int(n)]
	}
	return b[off:]
}

// channelStats records, while pixels are decoded, whether any color and any
// alpha sample was non-zero.
type channelStats struct {
	anyColor bool
	anyAlpha bool
}

func (s *channelStats) add(px []byte) {
	if px[0]|px[1]|px[2] != 0 {
		s.anyColor = true
	}
	if px[3] != 0 {
		s.anyAlpha = true
	}
}

// applyAlphaPolicy makes pix opaque if policy is AlphaInfer and the image
// has color but no alpha at all.
func applyAlphaPolicy(pix []byte, s channelStats, policy AlphaPolicy) {
	if policy != AlphaInfer || s.anyAlpha || !s.anyColor {
		return
	}
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xff
	}
}

func decodeUncompressed(b blob, h *Header, masks ColorMasks, off int, opts *Options) (*PixelBuffer, error) {
	w, rows := int(h.Width), h.Rows()
	if w <= 0 || rows <= 0 {
		return nil, FormatError("non-positive dimensions")
	}
	if h.BitDepth != 24 && h.BitDepth != 32 {
		return nil, UnsupportedError("bit depth")
	}
	if uint64(w)*uint64(rows) > uint64(opts.maxPixels()) {
		return nil, ErrTooLarge
	}

	// Source rows are padded to a multiple of 4 bytes.
	stride := (uint64(w)*uint64(h.BitDepth) + 31) / 32 * 4
	extent := stride * uint64(rows)
	if n := uint64(h.ImageSize); n > extent {
		extent = n
	}
	if uint64(off)+extent > uint64(len(b)) {
		return nil, FormatError("pixel data beyond end of buffer")
	}

	dst := newPixelBuffer(w, rows)
	src := b[off:]
	srcRow := func(y int) []byte {
		if h.BottomUp() {
			y = rows - 1 - y
		}
		start := uint64(y) * stride
		return src[start : start+stride]
	}

	if h.BitDepth == 24 {
		for y := 0; y < rows; y++ {
			s, d := srcRow(y), dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				d[4*x+0] = s[3*x+0]
				d[4*x+1] = s[3*x+1]
				d[4*x+2] = s[3*x+2]
				d[4*x+3] = 0xff
			}
		}
		return dst, nil
	}

	var stats channelStats
	if masks.isBGRA() {
		for y := 0; y < rows; y++ {
			d := dst.Pix[y*dst.Stride : (y+1)*dst.Stride]
			copy(d, srcRow(y))
			for x := 0; x < len(d); x += 4 {
				if masks.A == 0 {
					d[x+3] = 0xff
				}
				stats.add(d[x : x+4])
			}
		}
	} else {
		for y := 0; y < rows; y++ {
			s, d := srcRow(y), dst.Pix[y*dst.Stride:]
			for x := 0; x < w; x++ {
				v := binary.LittleEndian.Uint32(s[4*x:])
				px := d[4*x : 4*x+4]
				px[0] = Expand(v, masks.B)
				px[1] = Expand(v, masks.G)
				px[2] = Expand(v, masks.R)
				if masks.A == 0 {
					px[3] = 0xff
				} else {
					px[3] = Expand(v, masks.A)
				}
				stats.add(px)
			}
		}
	}
	applyAlphaPolicy(dst.Pix, stats, opts.alpha())
	return dst, nil
}
