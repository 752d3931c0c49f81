package clipboard

import (
	"bytes"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/fumiama/clipdib"
	"github.com/fumiama/clipdib/internal/log"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// File serves a file as clipboard content. A .bmp file or a raw DIB dump is
// offered as DIB data; any image file the codec understands is offered as
// the realized bitmap. Zstandard-compressed files are decompressed first.
type File struct {
	Path  string
	Codec clipdib.Codec
	// MaxSize bounds the decompressed size. Zero means no bound.
	MaxSize uint64
}

// Open implements clipdib.Source.
func (f *File) Open() (clipdib.Clipboard, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, zstdMagic) {
		data, err = decompress(data, f.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	log.Debug("clipboard: serving %s (%d bytes)", f.Path, len(data))
	return &memory{data: data, codec: f.Codec}, nil
}

func decompress(data []byte, limit uint64) ([]byte, error) {
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true)}
	if limit > 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(limit))
	}
	dec, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Memory returns a source holding a fixed buffer, in the same way as File.
func Memory(data []byte, codec clipdib.Codec) clipdib.Source {
	return clipdib.SourceFunc(func() (clipdib.Clipboard, error) {
		return &memory{data: data, codec: codec}, nil
	})
}

type memory struct {
	data  []byte
	codec clipdib.Codec
}

func (m *memory) Data(f clipdib.Format) ([]byte, error) {
	if m.data == nil {
		return nil, errClosed
	}
	return asDIB(f, m.data)
}

// asDIB returns data as a DIB in format f, dropping the file header of a
// .bmp file. FormatDIBV5 is only served from a BITMAPV5HEADER.
func asDIB(f clipdib.Format, data []byte) ([]byte, error) {
	dib := data
	if name := clipdib.Sniff(dib); name == "bmp" {
		var err error
		if dib, err = clipdib.StripFileHeader(dib); err != nil {
			return nil, err
		}
	} else if name != "" {
		return nil, fmt.Errorf("%s data is not a DIB", name)
	}
	if f == clipdib.FormatDIBV5 {
		h, err := clipdib.ParseHeader(dib)
		if err != nil {
			return nil, err
		}
		if h.DeclaredSize != 124 {
			return nil, fmt.Errorf("no %v data: header size %d", f, h.DeclaredSize)
		}
	}
	return dib, nil
}

func (m *memory) Bitmap(opts *clipdib.Options) (*clipdib.PixelBuffer, error) {
	if m.data == nil {
		return nil, errClosed
	}
	return codecFor(m.codec, opts).DecodeBGRA(clipdib.CompressionNone, m.data)
}

func (m *memory) Close() error {
	m.data = nil
	return nil
}

// codecFor picks the source's own codec, then the caller's, then an
// ImageCodec bounded by the caller's pixel limit.
func codecFor(c clipdib.Codec, opts *clipdib.Options) clipdib.Codec {
	if c != nil {
		return c
	}
	if opts == nil {
		return &clipdib.ImageCodec{}
	}
	if opts.Codec != nil {
		return opts.Codec
	}
	return &clipdib.ImageCodec{MaxPixels: opts.MaxPixels}
}
