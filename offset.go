package clipdib

// paletteLen returns the byte length of the color table. Only depths of 1 to
// 8 bits carry a palette; a zero biClrUsed means the full 2^depth entries.
// Embedded JPEG and PNG streams declare a depth of 0 and have none.
func paletteLen(h *Header) uint64 {
	if h.BitDepth == 0 || h.BitDepth > 8 {
		return 0
	}
	n := uint64(h.ColorsUsed)
	if n == 0 {
		n = 1 << h.BitDepth
	}
	return n * 4
}

// profileRange returns the ICC profile block of a BITMAPV5HEADER, measured
// from the start of the DIB. ok is false if there is no profile or it
// overlaps the header.
func profileRange(b blob, h *Header) (start, end uint64, ok bool) {
	if h.Size < v5InfoHeaderLen {
		return 0, 0, false
	}
	data, ok1 := b.u32(offProfileData)
	size, ok2 := b.u32(offProfileSize)
	if !ok1 || !ok2 || size == 0 {
		return 0, 0, false
	}
	start, end = uint64(data), uint64(data)+uint64(size)
	if start < uint64(h.Size) {
		return 0, 0, false
	}
	return start, end, true
}

// pixelOffset returns where the pixel data starts: after the header, the
// bit-field table and the palette, and after the ICC profile block if one
// trails them.
func pixelOffset(b blob, h *Header, maskTableLen int) (int, error) {
	off := uint64(h.Size) + uint64(maskTableLen) + paletteLen(h)
	if _, end, ok := profileRange(b, h); ok {
		if end > uint64(len(b)) {
			return 0, FormatError("profile block beyond end of buffer")
		}
		if end > off {
			off = end
		}
	}
	if off > uint64(len(b)) {
		return 0, FormatError("pixel data offset beyond end of buffer")
	}
	return int(off), nil
}
