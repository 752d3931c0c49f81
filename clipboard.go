package clipdib

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies one representation of the clipboard image.
type Format int

const (
	// FormatDIB is a DIB with any header version (CF_DIB).
	FormatDIB Format = iota + 1
	// FormatDIBV5 is a DIB with a BITMAPV5HEADER (CF_DIBV5).
	FormatDIBV5
	// FormatBitmap is an image the clipboard owner has already realized as
	// pixels (CF_BITMAP), read without any DIB parsing.
	FormatBitmap
)

func (f Format) String() string {
	switch f {
	case FormatDIB:
		return "dib"
	case FormatDIBV5:
		return "dibv5"
	case FormatBitmap:
		return "bitmap"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dib":
		return FormatDIB, nil
	case "dibv5":
		return FormatDIBV5, nil
	case "bitmap":
		return FormatBitmap, nil
	}
	return 0, fmt.Errorf("clipdib: unknown clipboard format %q", s)
}

// DefaultOrder returns the order in which clipboard formats are tried: the
// most widely produced container first, the realized bitmap last.
func DefaultOrder() []Format {
	return []Format{FormatDIB, FormatDIBV5, FormatBitmap}
}

// Clipboard is an open, exclusively held clipboard. Buffers returned by Data
// must stay valid and unchanged until Close.
type Clipboard interface {
	// Data returns the buffer stored in format f.
	Data(f Format) ([]byte, error)
	Close() error
}

// BitmapReader is implemented by a Clipboard that can hand out a realized
// bitmap directly as top-down BGRA pixels. Implementations that decode to
// get there use opts.Codec if set, and stay within opts.MaxPixels.
type BitmapReader interface {
	Bitmap(opts *Options) (*PixelBuffer, error)
}

// Source opens the clipboard.
type Source interface {
	Open() (Clipboard, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func() (Clipboard, error)

// Open implements Source.
func (f SourceFunc) Open() (Clipboard, error) { return f() }

// Dispatcher decodes the first clipboard format that yields an image.
type Dispatcher struct {
	Source Source
	// Order lists the formats to try. Nil means DefaultOrder.
	Order   []Format
	Options *Options
}

// Decode opens the clipboard, tries each format in order and returns the
// first successful decode. The clipboard is closed before Decode returns.
// If every format fails the error wraps ErrNoImage and the error of each
// attempt.
func (d *Dispatcher) Decode() (*PixelBuffer, error) {
	cb, err := d.Source.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	defer cb.Close()

	order := d.Order
	if order == nil {
		order = DefaultOrder()
	}
	var errs []error
	for _, f := range order {
		buf, err := d.decodeFormat(cb, f)
		if err == nil {
			return buf, nil
		}
		errs = append(errs, fmt.Errorf("%v: %w", f, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrNoImage, errors.Join(errs...))
}

func (d *Dispatcher) decodeFormat(cb Clipboard, f Format) (*PixelBuffer, error) {
	switch f {
	case FormatDIB, FormatDIBV5:
		dib, err := cb.Data(f)
		if err != nil {
			return nil, err
		}
		if len(dib) == 0 {
			return nil, FormatError("empty buffer")
		}
		return Decode(dib, d.Options)
	case FormatBitmap:
		br, ok := cb.(BitmapReader)
		if !ok {
			return nil, UnsupportedError("realized bitmap")
		}
		buf, err := br.Bitmap(d.Options)
		if err != nil {
			return nil, err
		}
		if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
			return nil, FormatError("empty bitmap")
		}
		if uint64(buf.Width)*uint64(buf.Height) > uint64(d.Options.maxPixels()) {
			buf.Release()
			return nil, ErrTooLarge
		}
		return buf, nil
	}
	return nil, UnsupportedError(f.String())
}

// DecodeClipboardImage decodes the clipboard image of src, trying formats in
// DefaultOrder.
func DecodeClipboardImage(src Source, opts *Options) (*PixelBuffer, error) {
	d := Dispatcher{Source: src, Options: opts}
	return d.Decode()
}
