// Command clipdib writes the image on the clipboard to a file.
//
// Usage:
//
//	clipdib [-in file] [-alpha infer|keep] [-max-pixels n] [-info] [-v] [output]
//
// The output format follows the file extension: .png (default), .bmp, .tif,
// .bgra (raw top-down BGRA rows) or .bgra.zst. Without an output name the
// image goes to stdout, which must not be a terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fumiama/clipdib"
	"github.com/fumiama/clipdib/internal/clipboard"
	"github.com/fumiama/clipdib/internal/config"
	"github.com/fumiama/clipdib/internal/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(argv []string, stdout io.Writer, stderr io.Writer) error {
	args, err := parseFlags("clipdib", argv, stderr)
	if err != nil {
		return err
	}

	path := args.config
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return err
	}
	if args.alpha != "" {
		settings.Alpha = args.alpha
	}
	if args.maxPixels > 0 {
		settings.MaxPixels = args.maxPixels
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	if args.verbose {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	opts, err := settings.Options()
	if err != nil {
		return err
	}
	order, err := settings.Order()
	if err != nil {
		return err
	}
	src, err := source(args.in, settings, opts)
	if err != nil {
		return err
	}

	if args.info {
		return printInfo(stdout, src)
	}

	d := clipdib.Dispatcher{Source: src, Order: order, Options: opts}
	buf, err := d.Decode()
	if err != nil {
		return err
	}
	defer buf.Release()
	log.Debug("decoded %dx%d image", buf.Width, buf.Height)

	if args.output == "" || args.output == "-" {
		if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errors.New("refusing to write image data to a terminal; name an output file")
		}
		return encoderFor(args.output)(stdout, buf)
	}
	f, err := os.Create(args.output)
	if err != nil {
		return err
	}
	if err := encoderFor(args.output)(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", args.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("wrote %s (%dx%d)", args.output, buf.Width, buf.Height)
	return nil
}

func source(in string, s *config.Settings, opts *clipdib.Options) (clipdib.Source, error) {
	if in != "" {
		// A padded 32-bit DIB plus headers fits in 8 bytes per pixel.
		return &clipboard.File{Path: in, Codec: opts.Codec, MaxSize: 8 * uint64(s.MaxPixels)}, nil
	}
	if s.Clipboard.Command != "" {
		return &clipboard.Command{Name: s.Clipboard.Command, Args: s.Clipboard.Args, Codec: opts.Codec}, nil
	}
	cmd, err := clipboard.System()
	if err != nil {
		return nil, err
	}
	cmd.Codec = opts.Codec
	return cmd, nil
}

// printInfo writes the header report of the first DIB on the clipboard.
func printInfo(w io.Writer, src clipdib.Source) error {
	cb, err := src.Open()
	if err != nil {
		return err
	}
	defer cb.Close()

	var errs []error
	for _, f := range []clipdib.Format{clipdib.FormatDIB, clipdib.FormatDIBV5} {
		dib, err := cb.Data(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		info, err := clipdib.Inspect(dib)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %w", clipdib.ErrNoImage, errors.Join(errs...))
}
