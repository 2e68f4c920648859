package engine

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/internal/syntax"
)

// readContext parses, validates and optimises a document held in memory.
// Reading the same bytes twice yields the same object numbers, which lets
// a Reader and a Writer share annotation and stream ids.
func readContext(data []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		if errors.Is(err, pdfcpu.ErrWrongPassword) {
			return nil, fmt.Errorf("%w: %v", pdftrim.ErrEncrypted, err)
		}
		return nil, fmt.Errorf("engine: reading document: %w", err)
	}
	return ctx, nil
}

// objects wraps a pdfcpu context with lenient lookups: a broken reference
// reads as absent.
type objects struct {
	ctx *model.Context
}

func (o objects) deref(obj types.Object) types.Object {
	if obj == nil {
		return nil
	}
	v, err := o.ctx.Dereference(obj)
	if err != nil {
		return nil
	}
	return v
}

func (o objects) dict(obj types.Object) types.Dict {
	d, _ := o.deref(obj).(types.Dict)
	return d
}

func (o objects) array(obj types.Object) types.Array {
	a, _ := o.deref(obj).(types.Array)
	return a
}

func (o objects) number(obj types.Object) (float64, bool) {
	switch v := o.deref(obj).(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func (o objects) numbers(obj types.Object) []float64 {
	arr := o.array(obj)
	if arr == nil {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, v := range arr {
		n, ok := o.number(v)
		if !ok {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func (o objects) name(obj types.Object) string {
	n, _ := o.deref(obj).(types.Name)
	return string(n)
}

// text decodes a string object, honouring escapes and UTF-16 byte order
// marks. Names are returned as is.
func (o objects) text(obj types.Object) (string, bool) {
	var raw string
	switch v := o.deref(obj).(type) {
	case types.StringLiteral:
		raw = v.PDFString()
	case types.HexLiteral:
		raw = v.PDFString()
	case types.Name:
		return string(v), true
	default:
		return "", false
	}
	objs, err := syntax.ParseAll(raw)
	if err != nil || len(objs) != 1 {
		return "", false
	}
	s, ok := objs[0].(syntax.String)
	if !ok {
		return "", false
	}
	return s.Text(), true
}

func (o objects) str(d types.Dict, key string) string {
	s, _ := o.text(d[key])
	return s
}

// stream returns the decoded bytes of a stream object.
func (o objects) stream(obj types.Object) ([]byte, error) {
	sd, _, err := o.ctx.DereferenceStreamDict(obj)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, errors.New("not a stream")
	}
	if sd.Content == nil {
		if err := sd.Decode(); err != nil {
			return nil, err
		}
	}
	return sd.Content, nil
}

// refNumber returns the object number of an indirect reference, or 0.
func refNumber(obj types.Object) int {
	if r, ok := obj.(types.IndirectRef); ok {
		return int(r.ObjectNumber)
	}
	return 0
}

func floats(vs ...float64) types.Array {
	a := make(types.Array, len(vs))
	for i, v := range vs {
		a[i] = types.Float(v)
	}
	return a
}

// pdfText encodes s as a literal string, or as UTF-16BE hex when it holds
// characters outside ASCII.
func pdfText(s string) types.Object {
	for _, r := range s {
		if r > 0x7e || r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return types.HexLiteral(utf16Hex(s))
		}
	}
	return types.StringLiteral(escapeLiteral(s))
}
