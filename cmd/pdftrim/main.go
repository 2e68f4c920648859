// Command pdftrim removes whitespace margins from a PDF document.
//
// # Installation
//
//	go install github.com/lvillar/pdftrim/cmd/pdftrim@latest
//
// # Usage
//
//	pdftrim -i input.pdf -d out/ [-n name] [-be histogram] [-b 10] [-c scale] [--dpi 150]
//
// Borders are given in points ("10.5") or as a percentage of the page
// ("5%"), either one value for all sides or four values in CSS order
// (top, right, bottom, left), repeated or comma separated.
//
// # Environment
//
// Defaults may be set in the environment or a .env file:
// PDFTRIM_EXTRACTOR, PDFTRIM_CROPPER, PDFTRIM_DPI, PDFTRIM_WORKERS,
// PDFTRIM_OCR_LANG and PDFTRIM_LOG_LEVEL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/bounds"
	"github.com/lvillar/pdftrim/logger"
	"github.com/lvillar/pdftrim/trim"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "pdftrim: %v\n", err)
		os.Exit(1)
	}
}

// borderList collects -b values across repeated flags.
type borderList []string

func (b *borderList) String() string { return strings.Join(*b, ",") }

func (b *borderList) Set(v string) error {
	*b = append(*b, v)
	return nil
}

type options struct {
	input, outputDir, name string
	extractor, cropper     string
	borders                borderList
	dpi, workers           int
	ocrLang, logLevel      string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("pdftrim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	str := func(p *string, short, long, def, usage string) {
		fs.StringVar(p, short, def, usage)
		fs.StringVar(p, long, def, usage+" (shorthand -"+short+")")
	}
	str(&o.input, "i", "input", "", "path to the PDF file")
	str(&o.outputDir, "d", "output-dir", "", "directory the trimmed PDF is saved to")
	str(&o.name, "n", "name", "", "output file name; defaults to the input file name")
	str(&o.extractor, "be", "bounds-extractor", getEnvOrDefault("PDFTRIM_EXTRACTOR", pdftrim.DefaultExtractor),
		"bounds extractor: "+strings.Join(bounds.Names(), ", "))
	str(&o.cropper, "c", "cropper", getEnvOrDefault("PDFTRIM_CROPPER", pdftrim.DefaultCropper), "cropper: box, scale")
	fs.Var(&o.borders, "b", "border in points or percent; 1 or 4 values")
	fs.Var(&o.borders, "border", "border in points or percent; 1 or 4 values (shorthand -b)")
	fs.IntVar(&o.dpi, "dpi", getEnvInt("PDFTRIM_DPI", 0), "render resolution for histogram and ocr (0: renderer default, ocr 500)")
	fs.IntVar(&o.workers, "workers", getEnvInt("PDFTRIM_WORKERS", runtime.NumCPU()), "pages analysed concurrently")
	fs.StringVar(&o.ocrLang, "ocr-lang", getEnvOrDefault("PDFTRIM_OCR_LANG", "eng"), "tesseract languages, comma separated")
	fs.StringVar(&o.logLevel, "log-level", getEnvOrDefault("PDFTRIM_LOG_LEVEL", "info"), "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.input == "" || o.outputDir == "" {
		fs.Usage()
		return nil, errors.New("both -i and -d are required")
	}
	return o, nil
}

// outputPath joins the output directory with the chosen name, adding the
// .pdf extension when the name has none.
func (o *options) outputPath() string {
	name := o.name
	if name == "" {
		name = filepath.Base(o.input)
	}
	if filepath.Ext(name) == "" {
		name += ".pdf"
	}
	return filepath.Join(o.outputDir, name)
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	borders, err := pdftrim.ParseBorders(o.borders...)
	if err != nil {
		return err
	}
	log := logger.New(o.logLevel, stderr)

	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", o.outputDir, err)
	}
	out := o.outputPath()
	log.Info("trimming", "input", o.input, "output", out, "extractor", o.extractor, "cropper", o.cropper, "borders", o.borders.String())

	err = trim.TrimFile(ctx, o.input, out,
		pdftrim.WithExtractor(o.extractor),
		pdftrim.WithCropper(o.cropper),
		pdftrim.WithBorders(borders),
		pdftrim.WithDPI(o.dpi),
		pdftrim.WithWorkers(o.workers),
		pdftrim.WithOCRLanguages(strings.Split(o.ocrLang, ",")...),
		pdftrim.WithLogger(log),
	)
	if err != nil {
		return err
	}
	log.Info("done", "output", out)
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
