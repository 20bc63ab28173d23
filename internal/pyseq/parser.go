// Package pyseq parses the string-encoded attribute-mapping sequences that
// several raw catalog columns embed (python-literal lists of flat dicts, or
// a single flat dict for belongs_to_collection).
//
// The grammar is deliberately narrow: a sequence of mappings whose values
// are scalars (integer, float, string, boolean or None). String values may
// use single or double quote delimiters and may contain Unicode text,
// embedded quotes and nested punctuation. Anything outside the grammar is a
// parse failure, never a panic.
package pyseq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformed marks input that does not conform to the embedded-structure
// grammar. Callers treat it as zero mappings plus a data-quality event.
var ErrMalformed = errors.New("malformed embedded structure")

// Mapping is one attribute-mapping. Values are int64, float64, string, bool
// or nil.
type Mapping map[string]any

// Parse converts an embedded-structure field into its ordered mapping
// sequence. Empty or blank input yields an empty sequence and no error. A
// bare mapping (not wrapped in a list) yields a one-element sequence.
func Parse(s string) ([]Mapping, error) {
	p := &parser{src: s}
	p.skipSpace()

	if p.eof() {
		return nil, nil
	}

	var (
		seq []Mapping
		err error
	)

	switch p.peek() {
	case '[':
		seq, err = p.parseList()
	case '{':
		var m Mapping

		m, err = p.parseMapping()
		if err == nil {
			seq = []Mapping{m}
		}
	default:
		err = p.fail("expected '[' or '{'")
	}

	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.eof() {
		return nil, p.fail("trailing content after structure")
	}

	return seq, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(msg string) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformed, msg, p.pos)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseList() ([]Mapping, error) {
	p.pos++ // consume '['
	p.skipSpace()

	seq := []Mapping{}

	if !p.eof() && p.peek() == ']' {
		p.pos++

		return seq, nil
	}

	for {
		p.skipSpace()

		if p.eof() || p.peek() != '{' {
			return nil, p.fail("expected mapping in sequence")
		}

		m, err := p.parseMapping()
		if err != nil {
			return nil, err
		}

		seq = append(seq, m)

		p.skipSpace()

		if p.eof() {
			return nil, p.fail("unterminated sequence")
		}

		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++

			return seq, nil
		default:
			return nil, p.fail("expected ',' or ']'")
		}
	}
}

func (p *parser) parseMapping() (Mapping, error) {
	p.pos++ // consume '{'
	p.skipSpace()

	m := Mapping{}

	if !p.eof() && p.peek() == '}' {
		p.pos++

		return m, nil
	}

	for {
		p.skipSpace()

		if p.eof() || (p.peek() != '\'' && p.peek() != '"') {
			return nil, p.fail("expected quoted key")
		}

		key, err := p.parseString()
		if err != nil {
			return nil, err
		}

		p.skipSpace()

		if p.eof() || p.peek() != ':' {
			return nil, p.fail("expected ':' after key")
		}

		p.pos++

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		m[key] = val

		p.skipSpace()

		if p.eof() {
			return nil, p.fail("unterminated mapping")
		}

		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++

			return m, nil
		default:
			return nil, p.fail("expected ',' or '}'")
		}
	}
}

func (p *parser) parseValue() (any, error) {
	p.skipSpace()

	if p.eof() {
		return nil, p.fail("expected value")
	}

	switch c := p.peek(); {
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '[' || c == '{':
		// Values are scalars only; a nested container is outside the grammar.
		return nil, p.fail("nested container value")
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseKeyword()
	}
}

func (p *parser) parseString() (string, error) {
	quote := p.peek()
	p.pos++

	var b strings.Builder

	for !p.eof() {
		c := p.peek()

		switch c {
		case quote:
			p.pos++

			return b.String(), nil
		case '\\':
			p.pos++

			if p.eof() {
				return "", p.fail("dangling escape")
			}

			b.WriteByte(escapeByte(p.peek()))
			p.pos++
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}

	return "", p.fail("unterminated string")
}

func escapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		// \', \", \\ and anything unrecognized keep the escaped byte.
		return c
	}
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	isFloat := false

	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}

	for !p.eof() {
		c := p.peek()

		switch {
		case c >= '0' && c <= '9':
			p.pos++
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
			p.pos++
		case c == '-' || c == '+':
			// Exponent sign; only valid mid-float, the strconv parse below
			// rejects anything else.
			isFloat = true
			p.pos++
		default:
			goto done
		}
	}

done:
	text := p.src[start:p.pos]

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.fail("invalid number " + strconv.Quote(text))
		}

		return f, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.fail("invalid number " + strconv.Quote(text))
	}

	return n, nil
}

func (p *parser) parseKeyword() (any, error) {
	start := p.pos

	for !p.eof() {
		c := p.peek()
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			p.pos++

			continue
		}

		break
	}

	switch p.src[start:p.pos] {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return nil, p.fail("unrecognized token")
	}
}
