package crop

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lvillar/pdftrim/document"
	"github.com/lvillar/pdftrim/internal/syntax"
)

// Fallbacks applied when no style source sets a value.
const (
	defaultFontSize = 11
	defaultAlign    = 0
	defaultLineEnd  = "OpenArrow"
)

// style is a TextStyle whose fields may be unset: empty Font, negative
// Size or Align, nil Color.
type style document.TextStyle

func unsetStyle() style {
	return style{Size: -1, Align: -1}
}

func (s style) complete() bool {
	return s.Font != "" && s.Size >= 0 && s.Color != nil && s.Align >= 0
}

var (
	dsFontRe  = regexp.MustCompile(`font\s*:\s*([^;,]+)`)
	dsSizeRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)pt`)
	dsColorRe = regexp.MustCompile(`(?:^|[;\s])color\s*:\s*#?([0-9a-fA-F]{6})`)
	dsAlignRe = regexp.MustCompile(`text-align\s*:\s*([a-z]+)`)
)

// parseDisplayStyle reads a /DS string such as
// "font: Helvetica,sans-serif 12pt; text-align:center; color:#FF0000".
func parseDisplayStyle(ds string) style {
	s := unsetStyle()
	if m := dsFontRe.FindStringSubmatch(ds); m != nil {
		var family []string
		for _, f := range strings.Fields(m[1]) {
			if !dsSizeRe.MatchString(f) {
				family = append(family, f)
			}
		}
		s.Font = strings.Trim(strings.Join(family, " "), `'"`)
	}
	if m := dsSizeRe.FindStringSubmatch(ds); m != nil {
		s.Size, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := dsColorRe.FindStringSubmatch(ds); m != nil {
		s.Color = hexColor(m[1])
	}
	if m := dsAlignRe.FindStringSubmatch(ds); m != nil {
		switch m[1] {
		case "left", "justify", "start":
			s.Align = 0
		case "center":
			s.Align = 1
		case "right", "end":
			s.Align = 2
		}
	}
	return s
}

func hexColor(h string) []float64 {
	c := make([]float64, 3)
	for i := range c {
		v, _ := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		c[i] = float64(v) / 255
	}
	return c
}

// parseDefaultAppearance reads the font and fill colour operators of a
// /DA string such as "0.9 0.4 0.4 rg /Helv 12 Tf".
func parseDefaultAppearance(da string) style {
	s := unsetStyle()
	p := syntax.NewString(da)
	for {
		op, args, err := p.NextOp()
		if err != nil {
			return s
		}
		switch op {
		case "Tf":
			if len(args) >= 2 {
				name, okName := args[len(args)-2].(syntax.Name)
				size, okSize := syntax.Number(args[len(args)-1])
				if okName && okSize {
					s.Font, s.Size = string(name), size
				}
			}
		case "rg":
			if c, ok := numbers(args, 3); ok {
				s.Color = c
			}
		case "g":
			if c, ok := numbers(args, 1); ok {
				s.Color = []float64{c[0], c[0], c[0]}
			}
		}
	}
}

// numbers returns the last n operands as numbers.
func numbers(args []syntax.Object, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, a := range args[len(args)-n:] {
		v, ok := syntax.Number(a)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// alignFromQuadding maps /Q to an alignment, -1 when absent or invalid.
func alignFromQuadding(q *int) int {
	if q == nil || *q < 0 || *q > 2 {
		return -1
	}
	return *q
}

// mergeStyles takes each field from first, then second, then the
// fallbacks.
func mergeStyles(first, second style) style {
	m := style{Font: first.Font, Color: first.Color}
	if m.Font == "" {
		m.Font = second.Font
	}
	if m.Color == nil {
		m.Color = second.Color
	}
	switch {
	case first.Size >= 0:
		m.Size = first.Size
	case second.Size >= 0:
		m.Size = second.Size
	default:
		m.Size = defaultFontSize
	}
	switch {
	case first.Align >= 0:
		m.Align = first.Align
	case second.Align >= 0:
		m.Align = second.Align
	default:
		m.Align = defaultAlign
	}
	return m
}

// appearanceStyle resolves the styling of a redaction overlay from /DA
// and /Q.
func appearanceStyle(rec document.AnnotationRecord) document.TextStyle {
	s := parseDefaultAppearance(rec.DefaultAppearance)
	s.Align = alignFromQuadding(rec.Quadding)
	return document.TextStyle(mergeStyles(s, unsetStyle()))
}

// freeTextBody builds the body of a free text annotation. Rich text wins;
// otherwise a complete /DS is used as is; otherwise /DA and /Q are merged
// with whatever /DS provides.
func freeTextBody(rec document.AnnotationRecord, scale float64) document.FreeTextBody {
	c := rec.Common
	body := document.FreeTextBody{
		Fill:    c.Colors.Fill,
		LineEnd: defaultLineEnd,
		Opacity: c.Opacity,
		Rotate:  c.Rotation,
	}
	if c.Border != nil {
		body.BorderWidth = max(c.Border.Width, 0) * scale
		body.Dashes = c.Border.Dashes
	}
	if len(c.LineEnds) > 0 {
		body.LineEnd = c.LineEnds[0]
	}

	if rec.RichText != nil {
		body.RichText = true
		body.Text = *rec.RichText
		body.BorderColor = c.Colors.Stroke
		return body
	}

	body.Text = c.Info.Content
	ds := parseDisplayStyle(rec.DefaultStyle)
	if ds.complete() {
		body.Style = document.TextStyle(ds)
		return body
	}
	da := parseDefaultAppearance(rec.DefaultAppearance)
	da.Align = alignFromQuadding(rec.Quadding)
	body.Style = document.TextStyle(mergeStyles(da, ds))
	return body
}
