package main

import (
	"fmt"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/fumiama/clipdib"
)

// encoder writes a pixel buffer in one output format.
type encoder func(w io.Writer, buf *clipdib.PixelBuffer) error

// encoderFor picks the output format from the file name. Stdout and names
// without a known extension get PNG.
func encoderFor(name string) encoder {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".bgra.zst"):
		return writeRawZstd
	case strings.HasSuffix(lower, ".bgra"):
		return writeRaw
	}
	switch filepath.Ext(lower) {
	case ".bmp":
		return func(w io.Writer, buf *clipdib.PixelBuffer) error {
			return bmp.Encode(w, buf.Image())
		}
	case ".tif", ".tiff":
		return func(w io.Writer, buf *clipdib.PixelBuffer) error {
			return tiff.Encode(w, buf.Image(), &tiff.Options{Compression: tiff.Deflate})
		}
	}
	return func(w io.Writer, buf *clipdib.PixelBuffer) error {
		return png.Encode(w, buf.Image())
	}
}

// writeRaw writes the rows as they are held in memory.
func writeRaw(w io.Writer, buf *clipdib.PixelBuffer) error {
	_, err := w.Write(buf.Pix)
	return err
}

func writeRawZstd(w io.Writer, buf *clipdib.PixelBuffer) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if _, err := enc.Write(buf.Pix); err != nil {
		enc.Close()
		return fmt.Errorf("zstd: %w", err)
	}
	return enc.Close()
}
