package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrSyntax is returned for malformed input.
var ErrSyntax = errors.New("syntax: malformed input")

// Parser is a recursive descent parser for PDF syntax.
type Parser struct {
	data []byte
	pos  int
}

// New creates a parser over data.
func New(data []byte) *Parser {
	return &Parser{data: data}
}

// NewString creates a parser over s.
func NewString(s string) *Parser {
	return &Parser{data: []byte(s)}
}

// ParseAll parses every object in s. Keywords are returned as Operator
// values.
func ParseAll(s string) ([]Object, error) {
	p := NewString(s)
	var objs []Object
	for {
		p.skip()
		if p.pos >= len(p.data) {
			return objs, nil
		}
		obj, err := p.ParseObject()
		if err != nil {
			return objs, err
		}
		objs = append(objs, obj)
	}
}

// class is the lexical category of a byte.
type class uint8

const (
	regular class = iota
	space
	delim
)

var classes = func() (t [256]class) {
	for _, b := range []byte(" \t\n\r\f\x00") {
		t[b] = space
	}
	for _, b := range []byte("()<>[]{}/%") {
		t[b] = delim
	}
	return t
}()

// at returns the class of the byte at i. The end of input reads as space.
func (p *Parser) at(i int) class {
	if i >= len(p.data) {
		return space
	}
	return classes[p.data[i]]
}

// skip moves past blanks and comments.
func (p *Parser) skip() {
	for p.pos < len(p.data) {
		switch c := p.data[p.pos]; {
		case c == '%':
			if n := bytes.IndexAny(p.data[p.pos:], "\r\n"); n >= 0 {
				p.pos += n
			} else {
				p.pos = len(p.data)
			}
		case classes[c] == space:
			p.pos++
		default:
			return
		}
	}
}

// word consumes the run of regular bytes that follows any blanks.
func (p *Parser) word() string {
	p.skip()
	start := p.pos
	for p.at(p.pos) == regular {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// ParseObject parses the next object from the current position.
func (p *Parser) ParseObject() (Object, error) {
	p.skip()
	if p.pos >= len(p.data) {
		return nil, io.ErrUnexpectedEOF
	}

	b := p.data[p.pos]

	switch {
	case b == '<':
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
			return p.parseDict()
		}
		return p.parseHexString()

	case b == '(':
		return p.parseLiteralString()

	case b == '/':
		return p.parseName()

	case b == '[':
		return p.parseArray()

	case b >= '0' && b <= '9', b == '+', b == '-', b == '.':
		return p.parseNumberOrRef()

	case classes[b] == regular:
		return p.parseKeyword(), nil

	default:
		return nil, fmt.Errorf("%w: unexpected character %q at position %d", ErrSyntax, b, p.pos)
	}
}

// parseKeyword parses true, false, null or a bare operator.
func (p *Parser) parseKeyword() Object {
	tok := p.word()
	switch tok {
	case "true":
		return Boolean(true)
	case "false":
		return Boolean(false)
	case "null":
		return Null{}
	}
	return Operator(tok)
}

func (p *Parser) parseName() (Name, error) {
	if p.data[p.pos] != '/' {
		return "", fmt.Errorf("%w: expected '/' at position %d", ErrSyntax, p.pos)
	}
	p.pos++

	var buf bytes.Buffer
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if classes[b] != regular {
			break
		}
		if b == '#' && p.pos+2 < len(p.data) {
			hi := unhex(p.data[p.pos+1])
			lo := unhex(p.data[p.pos+2])
			if hi >= 0 && lo >= 0 {
				buf.WriteByte(byte(hi<<4 | lo))
				p.pos += 3
				continue
			}
		}
		buf.WriteByte(b)
		p.pos++
	}
	return Name(buf.String()), nil
}

// parseNumberOrRef parses a number or an indirect reference (N G R).
func (p *Parser) parseNumberOrRef() (Object, error) {
	start := p.pos
	tok := p.word()

	intVal, err := strconv.ParseInt(tok, 10, 64)
	if err == nil {
		after := p.pos
		p.skip()
		if p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
			genVal, err2 := strconv.ParseInt(p.word(), 10, 64)
			if err2 == nil {
				p.skip()
				if p.pos < len(p.data) && p.data[p.pos] == 'R' && p.at(p.pos+1) != regular {
					p.pos++
					return Reference{Number: int(intVal), Generation: int(genVal)}, nil
				}
			}
		}
		p.pos = after
		return Integer(intVal), nil
	}

	realVal, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %q at position %d", ErrSyntax, tok, start)
	}
	return Real(realVal), nil
}

func (p *Parser) parseLiteralString() (String, error) {
	p.pos++ // skip '('

	var buf bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		b := p.data[p.pos]
		p.pos++

		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(b)
			}
		case '\\':
			if p.pos >= len(p.data) {
				return String{}, fmt.Errorf("%w: unexpected end of string escape", ErrSyntax)
			}
			esc := p.data[p.pos]
			p.pos++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r', '\n':
				// line continuation
				if esc == '\r' && p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			default:
				if esc >= '0' && esc <= '7' {
					oct := int(esc - '0')
					for i := 0; i < 2 && p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '7'; i++ {
						oct = oct*8 + int(p.data[p.pos]-'0')
						p.pos++
					}
					buf.WriteByte(byte(oct))
				} else {
					buf.WriteByte(esc)
				}
			}
		default:
			buf.WriteByte(b)
		}
	}

	if depth != 0 {
		return String{}, fmt.Errorf("%w: unterminated literal string", ErrSyntax)
	}
	return String{Value: buf.Bytes()}, nil
}

func (p *Parser) parseHexString() (String, error) {
	p.pos++ // skip '<'

	var buf bytes.Buffer
	hi := -1

	for p.pos < len(p.data) {
		b := p.data[p.pos]
		p.pos++

		if b == '>' {
			if hi >= 0 {
				buf.WriteByte(byte(hi << 4))
			}
			return String{Value: buf.Bytes(), IsHex: true}, nil
		}
		if classes[b] == space {
			continue
		}
		v := unhex(b)
		if v < 0 {
			return String{}, fmt.Errorf("%w: invalid hex character %q", ErrSyntax, b)
		}
		if hi < 0 {
			hi = v
		} else {
			buf.WriteByte(byte(hi<<4 | v))
			hi = -1
		}
	}
	return String{}, fmt.Errorf("%w: unterminated hex string", ErrSyntax)
}

func (p *Parser) parseArray() (Array, error) {
	p.pos++ // skip '['

	arr := Array{}
	for {
		p.skip()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("%w: unterminated array", ErrSyntax)
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Dict, error) {
	p.pos += 2 // skip '<<'

	d := make(Dict)
	for {
		p.skip()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("%w: unterminated dictionary", ErrSyntax)
		}
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return d, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("%w: dictionary key at position %d is not a name", ErrSyntax, p.pos)
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		val, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("dict value for %s: %w", key, err)
		}
		d[key] = val
	}
}

// NextOp reads operands up to and including the next operator of a
// content stream. Inline image data is skipped. It returns io.EOF once
// the stream is exhausted.
func (p *Parser) NextOp() (Operator, []Object, error) {
	var operands []Object
	for {
		p.skip()
		if p.pos >= len(p.data) {
			return "", nil, io.EOF
		}
		obj, err := p.ParseObject()
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return "", nil, io.EOF
			}
			// Unbalanced delimiters are skipped, as viewers do.
			p.pos++
			operands = operands[:0]
			continue
		}
		op, ok := obj.(Operator)
		if !ok {
			operands = append(operands, obj)
			continue
		}
		if op == "BI" {
			p.skipInlineImage()
			return "BI", nil, nil
		}
		return op, operands, nil
	}
}

// skipInlineImage advances past "... ID <data> EI".
func (p *Parser) skipInlineImage() {
	idx := bytes.Index(p.data[p.pos:], []byte("ID"))
	if idx < 0 {
		p.pos = len(p.data)
		return
	}
	p.pos += idx + 2
	for p.pos+2 <= len(p.data) {
		if p.data[p.pos] == 'E' && p.data[p.pos+1] == 'I' &&
			p.pos > 0 && p.at(p.pos-1) == space && p.at(p.pos+2) != regular {
			p.pos += 2
			return
		}
		p.pos++
	}
	p.pos = len(p.data)
}

func unhex(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	default:
		return -1
	}
}
