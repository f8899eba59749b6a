package jsondoc

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// MaxDepth bounds array/object nesting accepted by Parse.
const MaxDepth = 512

// Parse scans data once and builds a Document. On failure it returns a
// *ParseError and no document.
func Parse(data []byte) (*Document, error) {
	p := &parser{
		data: data,
		doc:  &Document{nodes: make([]node, 0, estimateNodes(data))},
	}

	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, p.fail("unexpected end of input")
	}
	if _, err := p.parseValue(0); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.data) {
		return nil, p.fail("trailing data")
	}
	return p.doc, nil
}

// ParseString is Parse for string input.
func ParseString(s string) (*Document, error) {
	return Parse([]byte(s))
}

func estimateNodes(data []byte) int {
	n := len(data) / 8
	if n < 4 {
		return 4
	}
	return n
}

type parser struct {
	data []byte
	pos  int
	doc  *Document
}

func (p *parser) fail(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) alloc(n node) int {
	p.doc.nodes = append(p.doc.nodes, n)
	return len(p.doc.nodes) - 1
}

func (p *parser) parseValue(depth int) (int, error) {
	if p.pos >= len(p.data) {
		return 0, p.fail("unexpected end of input")
	}
	switch c := p.data[p.pos]; {
	case c == '{':
		return p.parseObject(depth + 1)
	case c == '[':
		return p.parseArray(depth + 1)
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return 0, err
		}
		return p.alloc(node{kind: String, str: s}), nil
	case c == '-' || ('0' <= c && c <= '9'):
		f, err := p.parseNumber()
		if err != nil {
			return 0, err
		}
		return p.alloc(node{kind: Number, num: f}), nil
	case c == 't':
		if err := p.literal("true"); err != nil {
			return 0, err
		}
		return p.alloc(node{kind: Bool, b: true}), nil
	case c == 'f':
		if err := p.literal("false"); err != nil {
			return 0, err
		}
		return p.alloc(node{kind: Bool}), nil
	case c == 'n':
		if err := p.literal("null"); err != nil {
			return 0, err
		}
		return p.alloc(node{kind: Null}), nil
	default:
		return 0, p.fail("unexpected token %q", c)
	}
}

func (p *parser) literal(word string) error {
	if len(p.data)-p.pos < len(word) || string(p.data[p.pos:p.pos+len(word)]) != word {
		return p.fail("invalid literal, expected %s", word)
	}
	p.pos += len(word)
	return nil
}

func (p *parser) parseObject(depth int) (int, error) {
	if depth > MaxDepth {
		return 0, p.fail("nesting deeper than %d", MaxDepth)
	}
	idx := p.alloc(node{kind: Object})
	p.pos++ // '{'

	var (
		keys  []string
		vals  []int
		index map[string]int
	)
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		p.commit(idx, vals, keys)
		return idx, nil
	}

	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return 0, p.fail("unterminated object")
		}
		if p.data[p.pos] != '"' {
			return 0, p.fail("expected string key, found %q", p.data[p.pos])
		}
		key, err := p.parseString()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			return 0, p.fail("expected ':' after object key")
		}
		p.pos++
		p.skipSpace()

		child, err := p.parseValue(depth)
		if err != nil {
			return 0, err
		}

		// Duplicate keys: the last value wins, the first position is kept.
		if pos, dup := lookupKey(keys, index, key); dup {
			vals[pos] = child
		} else {
			keys = append(keys, key)
			vals = append(vals, child)
			if index != nil {
				index[key] = len(keys) - 1
			} else if len(keys) == 16 {
				index = make(map[string]int, 32)
				for i, k := range keys {
					index[k] = i
				}
			}
		}

		p.skipSpace()
		if p.pos >= len(p.data) {
			return 0, p.fail("unterminated object")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			p.commit(idx, vals, keys)
			return idx, nil
		default:
			return 0, p.fail("expected ',' or '}' in object, found %q", p.data[p.pos])
		}
	}
}

func lookupKey(keys []string, index map[string]int, key string) (int, bool) {
	if index != nil {
		pos, ok := index[key]
		return pos, ok
	}
	for i, k := range keys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

func (p *parser) parseArray(depth int) (int, error) {
	if depth > MaxDepth {
		return 0, p.fail("nesting deeper than %d", MaxDepth)
	}
	idx := p.alloc(node{kind: Array})
	p.pos++ // '['

	var vals []int
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		p.commit(idx, vals, nil)
		return idx, nil
	}

	for {
		p.skipSpace()
		child, err := p.parseValue(depth)
		if err != nil {
			return 0, err
		}
		vals = append(vals, child)

		p.skipSpace()
		if p.pos >= len(p.data) {
			return 0, p.fail("unterminated array")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			p.commit(idx, vals, nil)
			return idx, nil
		default:
			return 0, p.fail("expected ',' or ']' in array, found %q", p.data[p.pos])
		}
	}
}

// commit appends a container's children as one contiguous run.
func (p *parser) commit(idx int, vals []int, keys []string) {
	first := len(p.doc.children)
	p.doc.children = append(p.doc.children, vals...)
	if keys != nil {
		if n := first - len(p.doc.keys); n > 0 {
			p.doc.keys = append(p.doc.keys, make([]string, n)...)
		}
		p.doc.keys = append(p.doc.keys, keys...)
	}
	p.doc.nodes[idx].first = first
	p.doc.nodes[idx].count = len(vals)
}

func (p *parser) parseString() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	contentStart := p.pos
	escaped := false

	for {
		if p.pos >= len(p.data) {
			p.pos = start
			return "", p.fail("unterminated string")
		}
		c := p.data[p.pos]
		if c == '"' {
			break
		}
		if c < 0x20 {
			return "", p.fail("control character %#02x in string", c)
		}
		if c == '\\' {
			escaped = true
			p.pos++
			if p.pos >= len(p.data) {
				p.pos = start
				return "", p.fail("unterminated string")
			}
		}
		p.pos++
	}

	raw := p.data[contentStart:p.pos]
	if !utf8.Valid(raw) {
		return "", p.fail("invalid UTF-8 in string")
	}
	p.pos++ // closing quote

	if !escaped {
		return string(raw), nil
	}
	s, off, reason := unescapeString(raw)
	if reason != "" {
		p.pos = contentStart + off
		return "", p.fail("%s", reason)
	}
	return s, nil
}

// unescapeString decodes JSON escapes. On failure it returns the offset of
// the bad escape within raw and a reason.
func unescapeString(raw []byte) (string, int, string) {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case '"', '\\', '/':
			b.WriteByte(raw[i])
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			r, ok := readHex4(raw, i+1)
			if !ok {
				return "", i - 1, "invalid \\u escape"
			}
			i += 4
			if utf16.IsSurrogate(r) {
				if r >= 0xDC00 || i+6 >= len(raw) || raw[i+1] != '\\' || raw[i+2] != 'u' {
					return "", i - 5, "unpaired surrogate in \\u escape"
				}
				low, ok := readHex4(raw, i+3)
				if !ok || low < 0xDC00 || low > 0xDFFF {
					return "", i - 5, "unpaired surrogate in \\u escape"
				}
				r = utf16.DecodeRune(r, low)
				i += 6
			}
			b.WriteRune(r)
		default:
			return "", i - 1, fmt.Sprintf("invalid escape character %q", raw[i])
		}
	}
	return b.String(), 0, ""
}

func readHex4(raw []byte, at int) (rune, bool) {
	if at+4 > len(raw) {
		return 0, false
	}
	var r rune
	for _, c := range raw[at : at+4] {
		var v byte
		switch {
		case '0' <= c && c <= '9':
			v = c - '0'
		case 'a' <= c && c <= 'f':
			v = c - 'a' + 10
		case 'A' <= c && c <= 'F':
			v = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(v)
	}
	return r, true
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	if p.data[p.pos] == '-' {
		p.pos++
	}

	switch {
	case p.pos < len(p.data) && p.data[p.pos] == '0':
		p.pos++
	case p.pos < len(p.data) && '1' <= p.data[p.pos] && p.data[p.pos] <= '9':
		p.digits()
	default:
		return 0, p.fail("invalid number literal")
	}

	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		p.pos++
		if p.digits() == 0 {
			return 0, p.fail("invalid number literal: missing fraction digits")
		}
	}

	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.digits() == 0 {
			return 0, p.fail("invalid number literal: missing exponent digits")
		}
	}

	f, err := strconv.ParseFloat(string(p.data[start:p.pos]), 64)
	if err != nil {
		p.pos = start
		return 0, p.fail("number out of range")
	}
	return f, nil
}

func (p *parser) digits() int {
	n := 0
	for p.pos < len(p.data) && '0' <= p.data[p.pos] && p.data[p.pos] <= '9' {
		p.pos++
		n++
	}
	return n
}
