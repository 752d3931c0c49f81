package main

import (
	"flag"
	"io"
)

type cliArgs struct {
	config    string
	in        string
	alpha     string
	maxPixels int
	info      bool
	verbose   bool
	output    string
}

func parseFlags(name string, args []string, stderr io.Writer) (cliArgs, error) {
	var a cliArgs
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.config, "config", "", "Settings file (default: user config dir)")
	fs.StringVar(&a.in, "in", "", "Read a DIB, BMP or image file instead of the clipboard")
	fs.StringVar(&a.alpha, "alpha", "", "All-zero alpha handling: infer or keep")
	fs.IntVar(&a.maxPixels, "max-pixels", 0, "Largest accepted width*height")
	fs.BoolVar(&a.info, "info", false, "Print the DIB header report instead of decoding")
	fs.BoolVar(&a.verbose, "v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	if fs.NArg() > 0 {
		a.output = fs.Arg(0)
	}
	return a, nil
}
