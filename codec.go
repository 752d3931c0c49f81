package clipdib

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Codec decodes a complete compressed image stream into BGRA pixels.
type Codec interface {
	// DecodeBGRA decodes payload. mode is the compression the DIB header
	// declared for it, or CompressionNone if the caller has no hint.
	DecodeBGRA(mode Compression, payload []byte) (*PixelBuffer, error)
}

// A format holds an image format's name, magic header and how to decode it.
type format struct {
	name, magic  string
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var formats []format

const (
	leHeader = "II\x2A\x00" // Header for little-endian TIFF files.
	beHeader = "MM\x00\x2A" // Header for big-endian TIFF files.
)

// RegisterFormat registers an image format for use by ImageCodec. Name is
// the name of the format, like "jpeg" or "png". Magic is the magic prefix
// that identifies the format's encoding. The magic string can contain "?"
// wildcards that each match any one byte.
func RegisterFormat(name, magic string, decode func(io.Reader) (image.Image, error), decodeConfig func(io.Reader) (image.Config, error)) {
	formats = append(formats, format{name, magic, decode, decodeConfig})
}

func init() {
	RegisterFormat("png", "\x89PNG\r\n\x1a\n", png.Decode, png.DecodeConfig)
	RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	RegisterFormat("bmp", "BM????\x00\x00\x00\x00", bmp.Decode, bmp.DecodeConfig)
	RegisterFormat("tiff", leHeader, tiff.Decode, tiff.DecodeConfig)
	RegisterFormat("tiff", beHeader, tiff.Decode, tiff.DecodeConfig)
	RegisterFormat("webp", "RIFF????WEBPVP8", webp.Decode, webp.DecodeConfig)
}

// match reports whether magic matches b. Magic may contain "?" wildcards.
func match(magic string, b []byte) bool {
	if len(magic) > len(b) {
		return false
	}
	for i, c := range b[:len(magic)] {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

// sniff determines the format of b, falling back to the format named by
// mode when no magic prefix matches.
func sniff(mode Compression, b []byte) (format, bool) {
	for _, f := range formats {
		if match(f.magic, b) {
			return f, true
		}
	}
	var name string
	switch mode {
	case CompressionJPEG:
		name = "jpeg"
	case CompressionPNG:
		name = "png"
	default:
		return format{}, false
	}
	for _, f := range formats {
		if f.name == name {
			return f, true
		}
	}
	return format{}, false
}

// Sniff returns the name of the registered format whose magic prefix
// matches b, or "" if there is none.
func Sniff(b []byte) string {
	if f, ok := sniff(CompressionNone, b); ok {
		return f.name
	}
	return ""
}

// ImageCodec is a Codec backed by the Go image decoders registered with
// RegisterFormat.
type ImageCodec struct {
	// MaxPixels bounds width*height as reported by the stream header,
	// checked before the stream is decoded. Zero means DefaultMaxPixels.
	MaxPixels int
}

// DecodeBGRA implements Codec.
func (c *ImageCodec) DecodeBGRA(mode Compression, payload []byte) (*PixelBuffer, error) {
	f, ok := sniff(mode, payload)
	if !ok {
		return nil, FormatError("unknown embedded image format")
	}
	cfg, err := f.decodeConfig(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	limit := c.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, FormatError("non-positive dimensions")
	}
	if uint64(cfg.Width)*uint64(cfg.Height) > uint64(limit) {
		return nil, ErrTooLarge
	}
	img, err := f.decode(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}

// FromImage converts img to a BGRA pixel buffer.
func FromImage(img image.Image) (*PixelBuffer, error) {
	r := img.Bounds()
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, FormatError("non-positive dimensions")
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*r.Dx() {
		nrgba = image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, r.Min, draw.Src)
	}
	dst := newPixelBuffer(r.Dx(), r.Dy())
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i+0] = nrgba.Pix[i+2]
		dst.Pix[i+1] = nrgba.Pix[i+1]
		dst.Pix[i+2] = nrgba.Pix[i+0]
		dst.Pix[i+3] = nrgba.Pix[i+3]
	}
	return dst, nil
}

// StripFileHeader returns the DIB inside a .bmp file, dropping its 14-byte
// BITMAPFILEHEADER.
func StripFileHeader(file []byte) ([]byte, error) {
	if len(file) < fileHeaderLen+infoHeaderLen || string(file[:2]) != "BM" {
		return nil, FormatError("not a BMP file")
	}
	return file[fileHeaderLen:], nil
}
