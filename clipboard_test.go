package clipdib

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeClipboard serves fixed buffers and records what was asked of it.
type fakeClipboard struct {
	data   map[Format][]byte
	bitmap *PixelBuffer
	asked  []Format
	closed int
}

func (c *fakeClipboard) Data(f Format) ([]byte, error) {
	c.asked = append(c.asked, f)
	b, ok := c.data[f]
	if !ok {
		return nil, errors.New("format not available")
	}
	return b, nil
}

func (c *fakeClipboard) Close() error {
	c.closed++
	return nil
}

type fakeBitmapClipboard struct {
	*fakeClipboard
}

func (c fakeBitmapClipboard) Bitmap(*Options) (*PixelBuffer, error) {
	c.asked = append(c.asked, FormatBitmap)
	if c.bitmap == nil {
		return nil, errors.New("no bitmap")
	}
	return c.bitmap, nil
}

func sourceOf(cb Clipboard) Source {
	return SourceFunc(func() (Clipboard, error) { return cb, nil })
}

func opaqueDIB(b, g, r byte) []byte {
	return testDIB{width: 1, height: 1, bitDepth: 24, pixels: []byte{b, g, r, 0}}.bytes()
}

func TestDispatcher_FirstSuccessWins(t *testing.T) {
	cb := &fakeClipboard{data: map[Format][]byte{
		FormatDIB:   opaqueDIB(1, 2, 3),
		FormatDIBV5: opaqueDIB(4, 5, 6),
	}}
	buf, err := DecodeClipboardImage(sourceOf(cb), nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 255}, buf.Pix); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Format{FormatDIB}, cb.asked); diff != "" {
		t.Errorf("asked mismatch (-want +got):\n%s", diff)
	}
	if cb.closed != 1 {
		t.Errorf("closed %d times", cb.closed)
	}
}

func TestDispatcher_FallsThrough(t *testing.T) {
	cb := &fakeClipboard{
		data: map[Format][]byte{
			FormatDIB: []byte("truncated"),
		},
		bitmap: &PixelBuffer{Width: 1, Height: 1, Stride: 4, Pix: []byte{7, 8, 9, 10}},
	}
	d := Dispatcher{Source: sourceOf(fakeBitmapClipboard{cb})}
	buf, err := d.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{7, 8, 9, 10}, buf.Pix); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultOrder(), cb.asked); diff != "" {
		t.Errorf("asked mismatch (-want +got):\n%s", diff)
	}
	if cb.closed != 1 {
		t.Errorf("closed %d times", cb.closed)
	}
}

func TestDispatcher_Order(t *testing.T) {
	cb := &fakeClipboard{data: map[Format][]byte{
		FormatDIB:   opaqueDIB(1, 2, 3),
		FormatDIBV5: opaqueDIB(4, 5, 6),
	}}
	d := Dispatcher{Source: sourceOf(cb), Order: []Format{FormatDIBV5, FormatDIB}}
	buf, err := d.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{4, 5, 6, 255}, buf.Pix); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcher_NoImage(t *testing.T) {
	cb := &fakeClipboard{data: map[Format][]byte{FormatDIBV5: {}}}
	buf, err := DecodeClipboardImage(sourceOf(cb), nil)
	if buf != nil || !errors.Is(err, ErrNoImage) {
		t.Fatalf("Decode = %v, %v; want ErrNoImage", buf, err)
	}
	var ue UnsupportedError
	if !errors.As(err, &ue) {
		t.Errorf("err = %v, want it to carry the bitmap failure", err)
	}
	if cb.closed != 1 {
		t.Errorf("closed %d times", cb.closed)
	}
}

func TestDispatcher_BitmapTooLarge(t *testing.T) {
	cb := &fakeClipboard{bitmap: &PixelBuffer{Width: 4, Height: 4, Stride: 16, Pix: make([]byte, 64)}}
	d := Dispatcher{
		Source:  sourceOf(fakeBitmapClipboard{cb}),
		Order:   []Format{FormatBitmap},
		Options: &Options{MaxPixels: 8},
	}
	if _, err := d.Decode(); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestDispatcher_OpenFails(t *testing.T) {
	failure := errors.New("clipboard busy")
	src := SourceFunc(func() (Clipboard, error) { return nil, failure })
	_, err := DecodeClipboardImage(src, nil)
	if !errors.Is(err, ErrNoImage) || !errors.Is(err, failure) {
		t.Errorf("err = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range DefaultOrder() {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFormat("emf"); err == nil {
		t.Error("ParseFormat(\"emf\") succeeded")
	}
}
