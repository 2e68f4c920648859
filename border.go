package pdftrim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit selects how a border value is interpreted.
type Unit int

const (
	// UnitPoint is an absolute distance in PDF points.
	UnitPoint Unit = iota
	// UnitRatio is a fraction of the page dimension along the same axis.
	UnitRatio
)

func (u Unit) String() string {
	if u == UnitRatio {
		return "ratio"
	}
	return "pt"
}

// BorderSpec is a single border value.
type BorderSpec struct {
	Value float64
	Unit  Unit
}

// Points returns an absolute border of v points.
func Points(v float64) BorderSpec { return BorderSpec{Value: v, Unit: UnitPoint} }

// Percent returns a page-relative border of p percent.
func Percent(p float64) BorderSpec { return BorderSpec{Value: p / 100, Unit: UnitRatio} }

func (b BorderSpec) String() string {
	if b.Unit == UnitRatio {
		return strconv.FormatFloat(b.Value*100, 'g', -1, 64) + "%"
	}
	return strconv.FormatFloat(b.Value, 'g', -1, 64)
}

// Resolve returns the border in points for a page dimension of length.
func (b BorderSpec) Resolve(length float64) float64 {
	if b.Unit == UnitRatio {
		return b.Value * length
	}
	return b.Value
}

// Validate reports whether b holds a usable value.
func (b BorderSpec) Validate() error {
	if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) || b.Value < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBorder, b.Value)
	}
	if b.Unit == UnitRatio && b.Value > 1 {
		return fmt.Errorf("%w: %v%% exceeds 100%%", ErrInvalidBorder, b.Value*100)
	}
	return nil
}

// ParseBorder parses "<n>" as points and "<n>%" as a percentage of the
// page dimension.
func ParseBorder(s string) (BorderSpec, error) {
	s = strings.TrimSpace(s)
	unit := UnitPoint
	if strings.HasSuffix(s, "%") {
		unit = UnitRatio
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return BorderSpec{}, fmt.Errorf("%w: %q", ErrInvalidBorder, s)
	}
	if unit == UnitRatio {
		if v > 100 {
			return BorderSpec{}, fmt.Errorf("%w: %v%% exceeds 100%%", ErrInvalidBorder, v)
		}
		v /= 100
	}
	b := BorderSpec{Value: v, Unit: unit}
	if err := b.Validate(); err != nil {
		return BorderSpec{}, err
	}
	return b, nil
}

// FourBorders holds one border per side.
type FourBorders struct {
	Top, Right, Bottom, Left BorderSpec
}

// ExpandBorders applies CSS shorthand: one value sets all sides, four
// values are top, right, bottom, left.
func ExpandBorders(specs ...BorderSpec) (FourBorders, error) {
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return FourBorders{}, err
		}
	}
	switch len(specs) {
	case 1:
		b := specs[0]
		return FourBorders{Top: b, Right: b, Bottom: b, Left: b}, nil
	case 4:
		return FourBorders{Top: specs[0], Right: specs[1], Bottom: specs[2], Left: specs[3]}, nil
	}
	return FourBorders{}, fmt.Errorf("%w: expected 1 or 4 values, got %d", ErrInvalidBorder, len(specs))
}

// ParseBorders parses and expands border strings. Each argument may itself
// hold several comma or space separated values.
func ParseBorders(args ...string) (FourBorders, error) {
	var specs []BorderSpec
	for _, a := range args {
		for _, f := range strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ' ' }) {
			b, err := ParseBorder(f)
			if err != nil {
				return FourBorders{}, err
			}
			specs = append(specs, b)
		}
	}
	if len(specs) == 0 {
		return FourBorders{}, nil
	}
	return ExpandBorders(specs...)
}

// AdjustBounds pads content by b and clips the result to page. Ratio
// borders use the page width for left and right and the page height for
// top and bottom.
func AdjustBounds(content, page Rect, b FourBorders) Rect {
	content = content.Normalize()
	page = page.Normalize()
	w, h := page.Width(), page.Height()

	r := Rect{
		X0: content.X0 - b.Left.Resolve(w),
		Y0: content.Y0 - b.Top.Resolve(h),
		X1: content.X1 + b.Right.Resolve(w),
		Y1: content.Y1 + b.Bottom.Resolve(h),
	}
	return Rect{
		X0: clamp(r.X0, page.X0, page.X1),
		Y0: clamp(r.Y0, page.Y0, page.Y1),
		X1: clamp(r.X1, page.X0, page.X1),
		Y1: clamp(r.Y1, page.Y0, page.Y1),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
