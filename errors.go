package pdftrim

import (
	"errors"
	"fmt"
)

// Sentinel errors for trimming failure conditions.
var (
	ErrInvalidBorder            = errors.New("pdftrim: invalid border")
	ErrUnresolvableDestination  = errors.New("pdftrim: unresolvable destination")
	ErrUnsupportedAnnotation    = errors.New("pdftrim: unsupported annotation")
	ErrAnnotationReconstruction = errors.New("pdftrim: annotation reconstruction failed")
	ErrPageOutOfRange           = errors.New("pdftrim: page index out of range")
	ErrUnknownExtractor         = errors.New("pdftrim: unknown bounds extractor")
	ErrUnknownCropper           = errors.New("pdftrim: unknown cropper")
	ErrUnsupported              = errors.New("pdftrim: unsupported operation")
	ErrEncrypted                = errors.New("pdftrim: document is encrypted")
)

// Error represents a failure during a specific trimming operation.
// Page is the zero-based page index, or -1 when the failure is not tied
// to a page.
type Error struct {
	Op   string // operation name, e.g. "Bounds", "DrawRegion"
	Page int
	Err  error
}

func (e *Error) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Page >= 0 {
		return fmt.Sprintf("pdftrim.%s: page %d: %s", e.Op, e.Page+1, msg)
	}
	return fmt.Sprintf("pdftrim.%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with operation and page context.
func NewError(op string, page int, err error) *Error {
	return &Error{Op: op, Page: page, Err: err}
}

// PageError reports an out-of-range page index for op.
func PageError(op string, page, count int) *Error {
	return &Error{Op: op, Page: -1, Err: fmt.Errorf("%w: %d not in [0,%d)", ErrPageOutOfRange, page, count)}
}
