package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage indicates invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared by commands that produce output.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	noColor bool
}

// renderFlags holds browser session overrides.
type renderFlags struct {
	scale    float64
	viewport string
	timeout  string
}

// styleFlags holds document CSS overrides.
type styleFlags struct {
	variant string
	css     string
}

// exportFlags holds all export command flags.
type exportFlags struct {
	output    string
	collision string
	report    bool
	json      bool

	common commonFlags
	render renderFlags
	style  styleFlags

	// changed records flags given explicitly, so that zero values
	// never override config or env.
	changed map[string]bool
}

// set reports whether the named flag was given on the command line.
func (f *exportFlags) set(name string) bool {
	return f.changed[name]
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addRenderFlags adds browser session flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.Float64VarP(&f.scale, "scale", "s", 0, "device scale factor (default 2, max 8)")
	fs.StringVar(&f.viewport, "viewport", "", "browser window WIDTHxHEIGHT (default 1920x1080)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-sheet render timeout (e.g., 30s, 2m)")
}

// addStyleFlags adds document CSS flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.variant, "style", "", "table style: precise, standard")
	fs.StringVar(&f.css, "css", "", "extra CSS file appended to the style")
}

// parseExportFlags parses export command flags and returns positional args.
// -h and --help print the export usage to stderr and return flag.ErrHelp.
func parseExportFlags(args []string, stderr io.Writer) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet(cmdExport, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &exportFlags{changed: make(map[string]bool)}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default ./output)")
	fs.StringVar(&f.collision, "on-collision", "", "duplicate file names: overwrite, suffix")
	fs.BoolVar(&f.report, "report", false, "write index.md and index.html next to the images")
	fs.BoolVar(&f.json, "json", false, "print the run summary as JSON")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addStyleFlags(fs, &f.style)

	fs.Usage = func() { printExportUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	return f, fs.Args(), nil
}
