package clipdib

import "errors"

var (
	// ErrNoImage means that no clipboard candidate could be decoded.
	ErrNoImage = errors.New("clipdib: no decodable image on clipboard")
	// ErrTooLarge means that the image exceeds the configured pixel budget.
	ErrTooLarge = errors.New("clipdib: image too large")
)

// A FormatError reports that the input is not a valid DIB.
type FormatError string

func (e FormatError) Error() string { return "dib: invalid format: " + string(e) }

// An UnsupportedError reports that the input uses a valid but unsupported
// DIB feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "dib: unsupported feature: " + string(e) }
