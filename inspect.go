package clipdib

import (
	"fmt"

	"seehuhn.de/go/icc"
)

// Logical color space types of BITMAPV4HEADER and BITMAPV5HEADER (bV5CSType).
const (
	lcsCalibratedRGB = 0x00000000
	lcsSRGB          = 0x73524742 // 'sRGB'
	lcsWindows       = 0x57696e20 // 'Win '
	profileLinked    = 0x4c494e4b // 'LINK'
	profileEmbedded  = 0x4d424544 // 'MBED'
)

func csTypeName(v uint32) string {
	switch v {
	case lcsCalibratedRGB:
		return "calibrated-rgb"
	case lcsSRGB:
		return "srgb"
	case lcsWindows:
		return "windows"
	case profileLinked:
		return "linked"
	case profileEmbedded:
		return "embedded"
	}
	return fmt.Sprintf("0x%08x", v)
}

// Info describes the layout of a DIB without decoding its pixels.
type Info struct {
	Variant            string     `yaml:"variant"`
	HeaderSize         uint32     `yaml:"header_size"`
	DeclaredHeaderSize uint32     `yaml:"declared_header_size"`
	Width              int32      `yaml:"width"`
	Height             int32      `yaml:"height"`
	BottomUp           bool       `yaml:"bottom_up"`
	BitDepth           uint16     `yaml:"bit_depth"`
	Compression        string     `yaml:"compression"`
	ImageSize          uint32     `yaml:"image_size"`
	ColorsUsed         uint32     `yaml:"colors_used"`
	Masks              ColorMasks `yaml:"masks"`
	MaskTable          bool       `yaml:"mask_table"`
	PixelOffset        int        `yaml:"pixel_offset"`
	BufferSize         int        `yaml:"buffer_size"`
	ColorSpace         string     `yaml:"color_space,omitempty"`
	Profile            *Profile   `yaml:"profile,omitempty"`
}

// Profile describes the ICC profile block of a BITMAPV5HEADER.
type Profile struct {
	Offset     uint32 `yaml:"offset"`
	Size       uint32 `yaml:"size"`
	ColorSpace string `yaml:"color_space,omitempty"`
	Components int    `yaml:"components,omitempty"`
	// Error is set if an embedded profile could not be parsed.
	Error string `yaml:"error,omitempty"`
}

// Inspect parses the header of dib and reports where everything lies. It
// fails for the same malformed headers and offsets that Decode rejects, but
// does not look at the pixel data.
func Inspect(dib []byte) (*Info, error) {
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
	info := &Info{
		Variant:            h.Variant(),
		HeaderSize:         h.Size,
		DeclaredHeaderSize: h.DeclaredSize,
		Width:              h.Width,
		Height:             h.Height,
		BottomUp:           h.BottomUp(),
		BitDepth:           h.BitDepth,
		Compression:        h.Compression.String(),
		ImageSize:          h.ImageSize,
		ColorsUsed:         h.ColorsUsed,
		Masks:              masks,
		MaskTable:          tableLen > 0,
		PixelOffset:        off,
		BufferSize:         len(b),
	}
	if h.Size < v4InfoHeaderLen {
		return info, nil
	}
	cs, ok := b.u32(offCSType)
	if !ok {
		return info, nil
	}
	info.ColorSpace = csTypeName(cs)
	start, end, ok := profileRange(b, &h)
	if !ok {
		return info, nil
	}
	p := &Profile{Offset: uint32(start), Size: uint32(end - start)}
	if cs == profileEmbedded {
		prof, err := icc.Decode(b[start:end])
		if err != nil {
			p.Error = err.Error()
		} else {
			p.ColorSpace = fmt.Sprint(prof.ColorSpace)
			p.Components = prof.ColorSpace.NumComponents()
		}
	}
	info.Profile = p
	return info, nil
}
