package canonical

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Format parses text and returns its canonical form, newline-terminated.
func Format(text string, opts Options) (string, error) {
	v, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Serialize(v, opts) + "\n", nil
}

// Serialize renders v under opts. It never fails and is deterministic.
func Serialize(v Value, opts Options) string {
	e := newEncoder(opts)
	e.writeValue(v, 0)
	return e.buf.String()
}

type encoder struct {
	buf       strings.Builder
	opts      Options
	multiline bool
	unit      string
	itemSep   string
	keySep    string
}

func newEncoder(opts Options) *encoder {
	e := &encoder{opts: opts, itemSep: ",", keySep: ": "}
	switch opts.Indent.Kind {
	case IndentSpaces:
		e.multiline = true
		e.unit = strings.Repeat(" ", max(opts.Indent.Width, 0))
	case IndentTab:
		e.multiline = true
		e.unit = "\t"
	case IndentNone:
		e.itemSep = ", "
	case IndentCompact:
		e.keySep = ":"
	}
	return e
}

func (e *encoder) newline(depth int) {
	if !e.multiline {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.unit)
	}
}

func (e *encoder) writeValue(v Value, depth int) {
	switch v.Kind {
	case KindNull:
		e.buf.WriteString("null")
	case KindBool:
		e.buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		e.buf.WriteString(formatNumber(v.Text))
	case KindString:
		e.writeString(v.Text)
	case KindArray:
		if len(v.Items) == 0 {
			e.buf.WriteString("[]")
			return
		}
		e.buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				e.buf.WriteString(e.itemSep)
			}
			e.newline(depth + 1)
			e.writeValue(item, depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte(']')
	case KindObject:
		if len(v.Members) == 0 {
			e.buf.WriteString("{}")
			return
		}
		members := v.Members
		if e.opts.SortKeys {
			members = append([]Member(nil), members...)
			sort.SliceStable(members, func(i, j int) bool {
				return members[i].Key < members[j].Key
			})
		}
		e.buf.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				e.buf.WriteString(e.itemSep)
			}
			e.newline(depth + 1)
			e.writeString(m.Key)
			e.buf.WriteString(e.keySep)
			e.writeValue(m.Value, depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte('}')
	}
}

func (e *encoder) writeString(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); {
		// Lone surrogates are escaped even without EnsureASCII.
		if r, ok := readSurrogate(s[i:]); ok {
			fmt.Fprintf(&e.buf, `\u%04x`, r)
			i += 3
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch r {
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '\t':
			e.buf.WriteString(`\t`)
		case '\b':
			e.buf.WriteString(`\b`)
		case '\f':
			e.buf.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(&e.buf, `\u%04x`, r)
			case e.opts.EnsureASCII && r > 0x7e:
				if r > 0xffff {
					hi, lo := utf16.EncodeRune(r)
					fmt.Fprintf(&e.buf, `\u%04x\u%04x`, hi, lo)
				} else {
					fmt.Fprintf(&e.buf, `\u%04x`, r)
				}
			default:
				e.buf.WriteRune(r)
			}
		}
	}
	e.buf.WriteByte('"')
}

// formatNumber keeps integer literals as written and renders everything else
// as the shortest float that round-trips.
func formatNumber(lit string) string {
	switch lit {
	case "NaN", "Infinity", "-Infinity":
		return lit
	}
	if !strings.ContainsAny(lit, ".eE") {
		if lit == "-0" {
			return "0"
		}
		return lit
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !math.IsInf(f, 0) {
		return lit
	}
	return formatFloat(f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed
}
