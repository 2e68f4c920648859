// Package trim runs the whole pipeline on a PDF document: it detects the
// content bounds of every page, pads them by the configured border and
// crops or rescales the pages accordingly.
//
// It uses the engine package to read and write documents, the bounds
// package to find content and the crop package to apply it.
package trim

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/bounds"
	"github.com/lvillar/pdftrim/crop"
	"github.com/lvillar/pdftrim/engine"
)

// Trim reads a PDF from r, trims it and writes the result to w.
func Trim(ctx context.Context, w io.Writer, r io.Reader, opts ...pdftrim.Option) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("trim: reading input: %w", err)
	}
	out, err := buildTrimmed(ctx, data, pdftrim.NewConfig(opts...))
	if err != nil {
		return err
	}
	return out.Write(w)
}

// TrimFile trims inputPath and saves the result to outputPath. The output
// is written to a temporary file first and renamed into place.
func TrimFile(ctx context.Context, inputPath, outputPath string, opts ...pdftrim.Option) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("trim: opening %s: %w", inputPath, err)
	}
	out, err := buildTrimmed(ctx, data, pdftrim.NewConfig(opts...))
	if err != nil {
		return err
	}
	return writePDFToFile(out, outputPath)
}

// Bounds returns the padded content bounds of every page of the document
// in data, without modifying it.
func Bounds(ctx context.Context, data []byte, opts ...pdftrim.Option) ([]pdftrim.Rect, error) {
	cfg := pdftrim.NewConfig(opts...)
	src, err := engine.Open(data, cfg.Logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	ext, err := bounds.New(cfg.Extractor, cfg)
	if err != nil {
		return nil, err
	}
	return ext.Bounds(ctx, src)
}

func buildTrimmed(ctx context.Context, data []byte, cfg *pdftrim.Config) (*engine.Writer, error) {
	log := cfg.Logger
	ext, err := bounds.New(cfg.Extractor, cfg)
	if err != nil {
		return nil, err
	}
	cropper, err := crop.New(cfg.Cropper, cfg)
	if err != nil {
		return nil, err
	}

	src, err := engine.Open(data, log)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	start := time.Now()
	rects, err := ext.Bounds(ctx, src)
	if err != nil {
		return nil, err
	}
	log.Info("content bounds computed", "pages", len(rects), "extractor", cfg.Extractor, "elapsed", time.Since(start).Round(time.Millisecond))

	dst, err := engine.NewWriter(data)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	if err := cropper.Crop(ctx, src, dst, rects); err != nil {
		return nil, err
	}
	log.Info("pages cropped", "cropper", cfg.Cropper, "elapsed", time.Since(start).Round(time.Millisecond))
	return dst, nil
}

// writePDFToFile writes the document next to path and renames it into
// place once complete.
func writePDFToFile(w *engine.Writer, path string) error {
	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("trim: creating %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("trim: creating %s: %w", path, err)
	}
	return nil
}
