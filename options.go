package pdftrim

import "runtime"

// Default component names.
const (
	DefaultExtractor = "histogram"
	DefaultCropper   = "scale"
)

// Config controls a trimming run. Build it with NewConfig.
type Config struct {
	Extractor    string
	Cropper      string
	Borders      FourBorders
	DPI          int // 0 renders at the renderer default
	Workers      int
	OCRLanguages []string
	Logger       Logger
}

// Option is a functional option for configuring a trimming run.
type Option func(*Config)

// WithExtractor selects the bounds extractor by name: "page", "text",
// "text_images", "ocr" or "histogram".
func WithExtractor(name string) Option {
	return func(c *Config) {
		c.Extractor = name
	}
}

// WithCropper selects the cropper by name: "box" or "scale".
func WithCropper(name string) Option {
	return func(c *Config) {
		c.Cropper = name
	}
}

// WithBorders sets the padding added around the detected content.
func WithBorders(b FourBorders) Option {
	return func(c *Config) {
		c.Borders = b
	}
}

// WithDPI sets the rasterisation resolution for pixel-based extractors.
func WithDPI(dpi int) Option {
	return func(c *Config) {
		c.DPI = dpi
	}
}

// WithWorkers bounds the number of pages analysed concurrently.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithOCRLanguages sets the Tesseract languages, e.g. "eng", "deu".
func WithOCRLanguages(langs ...string) Option {
	return func(c *Config) {
		c.OCRLanguages = langs
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// NewConfig applies opts over the defaults: histogram bounds, scale
// cropping, no border, one worker per CPU and a silent logger.
//
// Example:
//
//	cfg := pdftrim.NewConfig(
//	    pdftrim.WithExtractor("text"),
//	    pdftrim.WithCropper("box"),
//	)
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Extractor: DefaultExtractor,
		Cropper:   DefaultCropper,
		Workers:   runtime.NumCPU(),
		Logger:    NopLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = NopLogger{}
	}
	return cfg
}
