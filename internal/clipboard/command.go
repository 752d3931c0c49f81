// Package clipboard provides clipdib sources backed by the system clipboard
// and by files.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fumiama/clipdib"
	"github.com/fumiama/clipdib/internal/log"
)

var errClosed = errors.New("clipboard: closed")

// targetPlaceholder in Command.Args is replaced by the MIME type requested.
const targetPlaceholder = "{target}"

// targets lists the MIME types read for each clipboard format, in order.
var targets = map[clipdib.Format][]string{
	clipdib.FormatDIB:    {"image/bmp", "image/x-bmp"},
	clipdib.FormatDIBV5:  {"image/x-ms-bmp"},
	clipdib.FormatBitmap: {"image/png"},
}

// Command reads the system clipboard through a helper program that writes
// the requested MIME type to stdout.
type Command struct {
	Name string
	// Args are passed to Name. Each occurrence of "{target}" is replaced by
	// the MIME type being read.
	Args  []string
	Codec clipdib.Codec
	// PNGOnly is set for helpers that cannot select a type and always
	// write PNG.
	PNGOnly bool

	run func(name string, args ...string) ([]byte, error)
}

// System returns the clipboard helper for the current OS and session, or an
// error if there is none.
func System() (*Command, error) {
	name, args, pngOnly := clipboardCmd(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "")
	if name == "" {
		return nil, fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
	return &Command{Name: name, Args: args, PNGOnly: pngOnly}, nil
}

// clipboardCmd returns the helper program and its arguments for goos.
func clipboardCmd(goos string, wayland bool) (name string, args []string, pngOnly bool) {
	switch goos {
	case "darwin":
		return "pngpaste", []string{"-"}, true
	case "linux", "freebsd", "openbsd", "netbsd":
		if wayland {
			return "wl-paste", []string{"--no-newline", "--type", targetPlaceholder}, false
		}
		return "xclip", []string{"-selection", "clipboard", "-t", targetPlaceholder, "-o"}, false
	}
	return "", nil, false
}

// Open implements clipdib.Source. Every read runs the helper once; outputs
// are kept until Close.
func (c *Command) Open() (clipdib.Clipboard, error) {
	if c.Name == "" {
		return nil, errors.New("clipboard: no helper command")
	}
	if _, err := exec.LookPath(c.Name); err != nil && c.run == nil {
		return nil, fmt.Errorf("clipboard: %w", err)
	}
	return &session{cmd: c, cache: make(map[string][]byte)}, nil
}

func (c *Command) output(target string) ([]byte, error) {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = strings.ReplaceAll(a, targetPlaceholder, target)
	}
	log.Debug("clipboard: %s %s", c.Name, strings.Join(args, " "))
	if c.run != nil {
		return c.run(c.Name, args...)
	}
	var stderr bytes.Buffer
	cmd := exec.Command(c.Name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.Name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	return out, nil
}

type session struct {
	cmd   *Command
	cache map[string][]byte
}

func (s *session) read(target string) ([]byte, error) {
	if s.cache == nil {
		return nil, errClosed
	}
	if b, ok := s.cache[target]; ok {
		return b, nil
	}
	b, err := s.cmd.output(target)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("clipboard: no %s data", target)
	}
	s.cache[target] = b
	return b, nil
}

func (s *session) Data(f clipdib.Format) ([]byte, error) {
	if s.cmd.PNGOnly {
		return nil, fmt.Errorf("clipboard: %s offers no %v data", s.cmd.Name, f)
	}
	var errs []error
	for _, t := range targets[f] {
		b, err := s.read(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dib, err := asDIB(f, b)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		return dib, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("clipboard: no target for %v", f)
	}
	return nil, errors.Join(errs...)
}

func (s *session) Bitmap(opts *clipdib.Options) (*clipdib.PixelBuffer, error) {
	target := targets[clipdib.FormatBitmap][0]
	b, err := s.read(target)
	if err != nil {
		return nil, err
	}
	return codecFor(s.cmd.Codec, opts).DecodeBGRA(clipdib.CompressionNone, b)
}

func (s *session) Close() error {
	s.cache = nil
	return nil
}
