package canonical

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	jerrors "jsonator/internal/errors"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a parsed JSON document. Object members keep their source order.
type Value struct {
	Kind Kind
	Bool bool
	// Text holds the literal of a number or the decoded contents of a string.
	// An unpaired surrogate escape is kept as its 3-byte WTF-8 form.
	Text    string
	Items   []Value
	Members []Member
}

type Member struct {
	Key   string
	Value Value
}

const byteOrderMark = "\ufeff"

// nonFiniteLiterals are accepted in number position besides RFC 8259 numbers.
var nonFiniteLiterals = []string{"NaN", "Infinity", "-Infinity"}

// Parse decodes text into a Value. Syntax errors carry the encoding/json
// message unchanged and the byte offset where decoding stopped.
func Parse(text string) (Value, error) {
	if strings.HasPrefix(text, byteOrderMark) {
		return Value{}, jerrors.ErrParse("unexpected UTF-8 BOM", 0)
	}

	p := &parser{text: text}
	p.skipSpace()
	v, ok := p.value()
	if ok {
		p.skipSpace()
		ok = p.pos == len(p.text)
	}
	if !ok {
		return Value{}, p.syntaxError()
	}
	return v, nil
}

type span struct {
	start, end int
}

type parser struct {
	text string
	pos  int
	// nonFinite records where NaN and Infinity literals were read.
	nonFinite []span
}

// syntaxError reports the first error encoding/json finds once the non-finite
// literals read so far are masked with arrays of the same length.
func (p *parser) syntaxError() error {
	masked := []byte(p.text)
	for _, s := range p.nonFinite {
		n := s.end - s.start
		copy(masked[s.start:s.end], "[0"+strings.Repeat(" ", n-3)+"]")
	}

	var raw json.RawMessage
	err := json.Unmarshal(masked, &raw)
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return jerrors.ErrParse(syntaxErr.Error(), syntaxErr.Offset)
	}
	if err != nil {
		return jerrors.ErrParse(err.Error(), int64(p.pos))
	}
	return jerrors.ErrParse(fmt.Sprintf("invalid JSON at offset %d", p.pos), int64(p.pos))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.text) {
		switch p.text[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek(c byte) bool {
	return p.pos < len(p.text) && p.text[p.pos] == c
}

func (p *parser) literal(lit string) bool {
	if strings.HasPrefix(p.text[p.pos:], lit) {
		p.pos += len(lit)
		return true
	}
	return false
}

func (p *parser) value() (Value, bool) {
	if p.pos >= len(p.text) {
		return Value{}, false
	}

	switch {
	case p.peek('{'):
		return p.object()
	case p.peek('['):
		return p.array()
	case p.peek('"'):
		s, ok := p.str()
		return Value{Kind: KindString, Text: s}, ok
	case p.literal("true"):
		return Value{Kind: KindBool, Bool: true}, true
	case p.literal("false"):
		return Value{Kind: KindBool}, true
	case p.literal("null"):
		return Value{Kind: KindNull}, true
	}

	for _, lit := range nonFiniteLiterals {
		start := p.pos
		if p.literal(lit) {
			p.nonFinite = append(p.nonFinite, span{start: start, end: p.pos})
			return Value{Kind: KindNumber, Text: lit}, true
		}
	}
	return p.number()
}

func (p *parser) object() (Value, bool) {
	p.pos++
	obj := Value{Kind: KindObject, Members: []Member{}}
	index := make(map[string]int)

	p.skipSpace()
	if p.peek('}') {
		p.pos++
		return obj, true
	}

	for {
		p.skipSpace()
		if !p.peek('"') {
			return Value{}, false
		}
		key, ok := p.str()
		if !ok {
			return Value{}, false
		}

		p.skipSpace()
		if !p.peek(':') {
			return Value{}, false
		}
		p.pos++
		p.skipSpace()

		val, ok := p.value()
		if !ok {
			return Value{}, false
		}

		// A repeated key keeps its first position and takes the last value.
		if i, seen := index[key]; seen {
			obj.Members[i].Value = val
		} else {
			index[key] = len(obj.Members)
			obj.Members = append(obj.Members, Member{Key: key, Value: val})
		}

		p.skipSpace()
		switch {
		case p.peek(','):
			p.pos++
		case p.peek('}'):
			p.pos++
			return obj, true
		default:
			return Value{}, false
		}
	}
}

func (p *parser) array() (Value, bool) {
	p.pos++
	arr := Value{Kind: KindArray, Items: []Value{}}

	p.skipSpace()
	if p.peek(']') {
		p.pos++
		return arr, true
	}

	for {
		p.skipSpace()
		item, ok := p.value()
		if !ok {
			return Value{}, false
		}
		arr.Items = append(arr.Items, item)

		p.skipSpace()
		switch {
		case p.peek(','):
			p.pos++
		case p.peek(']'):
			p.pos++
			return arr, true
		default:
			return Value{}, false
		}
	}
}

func (p *parser) digits() bool {
	start := p.pos
	for p.pos < len(p.text) && p.text[p.pos] >= '0' && p.text[p.pos] <= '9' {
		p.pos++
	}
	return p.pos > start
}

func (p *parser) number() (Value, bool) {
	start := p.pos
	if p.peek('-') {
		p.pos++
	}

	switch {
	case p.peek('0'):
		p.pos++
	case p.pos < len(p.text) && p.text[p.pos] >= '1' && p.text[p.pos] <= '9':
		p.digits()
	default:
		return Value{}, false
	}

	if p.peek('.') {
		p.pos++
		if !p.digits() {
			return Value{}, false
		}
	}
	if p.peek('e') || p.peek('E') {
		p.pos++
		if p.peek('+') || p.peek('-') {
			p.pos++
		}
		if !p.digits() {
			return Value{}, false
		}
	}
	return Value{Kind: KindNumber, Text: p.text[start:p.pos]}, true
}

// str reads a string literal. Invalid UTF-8 becomes U+FFFD, as encoding/json
// does; unpaired surrogate escapes are kept.
func (p *parser) str() (string, bool) {
	p.pos++
	var b strings.Builder

	for p.pos < len(p.text) {
		c := p.text[p.pos]
		switch {
		case c == '"':
			p.pos++
			return b.String(), true
		case c < 0x20:
			return "", false
		case c == '\\':
			if !p.escape(&b) {
				return "", false
			}
		case c < utf8.RuneSelf:
			b.WriteByte(c)
			p.pos++
		default:
			r, size := utf8.DecodeRuneInString(p.text[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", false
}

func (p *parser) escape(b *strings.Builder) bool {
	p.pos++
	if p.pos >= len(p.text) {
		return false
	}
	esc := p.text[p.pos]
	p.pos++

	switch esc {
	case '"', '\\', '/':
		b.WriteByte(esc)
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
		r, ok := p.hex4()
		if !ok {
			return false
		}
		if !utf16.IsSurrogate(r) {
			b.WriteRune(r)
			return true
		}
		if r < 0xdc00 && strings.HasPrefix(p.text[p.pos:], `\u`) {
			save := p.pos
			p.pos += 2
			if lo, ok := p.hex4(); ok && lo >= 0xdc00 && lo < 0xe000 {
				b.WriteRune(utf16.DecodeRune(r, lo))
				return true
			}
			p.pos = save
		}
		writeSurrogate(b, r)
	default:
		return false
	}
	return true
}

func (p *parser) hex4() (rune, bool) {
	if p.pos+4 > len(p.text) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(p.text[p.pos : p.pos+4]) {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	p.pos += 4
	return r, true
}

// writeSurrogate stores a lone surrogate with the generalized UTF-8 encoding,
// which no valid UTF-8 input can produce.
func writeSurrogate(b *strings.Builder, r rune) {
	b.WriteByte(byte(0xe0 | r>>12))
	b.WriteByte(byte(0x80 | (r>>6)&0x3f))
	b.WriteByte(byte(0x80 | r&0x3f))
}

// readSurrogate is the inverse of writeSurrogate.
func readSurrogate(s string) (rune, bool) {
	if len(s) < 3 || s[0] != 0xed || s[1]&0xe0 != 0xa0 || s[2]&0xc0 != 0x80 {
		return 0, false
	}
	return 0xd000 | rune(s[1]&0x3f)<<6 | rune(s[2]&0x3f), true
}
