package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/internal/pdftest"
)

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-i", "in/doc.pdf", "--output-dir", "out", "-be", "text", "-b", "10", "-b", "5%,0", "--border", "1"}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if o.extractor != "text" || o.cropper != pdftrim.DefaultCropper {
		t.Errorf("extractor=%q cropper=%q", o.extractor, o.cropper)
	}
	if len(o.borders) != 3 {
		t.Errorf("borders = %v", o.borders)
	}
	b, err := pdftrim.ParseBorders(o.borders...)
	if err != nil {
		t.Fatal(err)
	}
	if b.Right.Unit != pdftrim.UnitRatio || b.Left.Value != 1 {
		t.Errorf("expanded = %+v", b)
	}
	if got := o.outputPath(); got != filepath.Join("out", "doc.pdf") {
		t.Errorf("output = %q", got)
	}
	o.name = "trimmed"
	if got := o.outputPath(); got != filepath.Join("out", "trimmed.pdf") {
		t.Errorf("named output = %q", got)
	}
}

func TestParseFlagsRequired(t *testing.T) {
	var stderr bytes.Buffer
	if _, err := parseFlags([]string{"-i", "x.pdf"}, &stderr); err == nil {
		t.Error("expected error without -d")
	}
	if !strings.Contains(stderr.String(), "bounds-extractor") {
		t.Error("usage not printed")
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("PDFTRIM_CROPPER", "box")
	t.Setenv("PDFTRIM_DPI", "150")
	t.Setenv("PDFTRIM_WORKERS", "not a number")
	o, err := parseFlags([]string{"-i", "a.pdf", "-d", "out"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if o.cropper != "box" || o.dpi != 150 || o.workers < 1 {
		t.Errorf("got %+v", o)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.pdf")
	data := pdftest.Build([]pdftest.Page{{Width: 200, Height: 300, Content: "BT /F1 10 Tf 20 250 Td (Hello) Tj ET"}}, "").Bytes()
	if err := os.WriteFile(in, data, 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	var stderr bytes.Buffer
	err := run(context.Background(), []string{"-i", in, "-d", outDir, "-be", "text", "-c", "box", "-b", "2", "--log-level", "debug"}, &stderr)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, "doc.pdf")); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if !strings.Contains(stderr.String(), "INFO: done") {
		t.Errorf("log output:\n%s", stderr.String())
	}
}

func TestRunInvalidBorder(t *testing.T) {
	err := run(context.Background(), []string{"-i", "a.pdf", "-d", t.TempDir(), "-b", "1,2"}, &bytes.Buffer{})
	if !errors.Is(err, pdftrim.ErrInvalidBorder) {
		t.Errorf("expected ErrInvalidBorder, got %v", err)
	}
}
