package textenc

import (
	"bytes"
	"errors"
	"io"
)

// Kind identifies the text encoding announced by a byte-order mark.
type Kind int

const (
	KindUTF8 Kind = iota
	KindUTF8BOM
	KindUTF16LE
	KindUTF16BE
	KindUTF32LE
	KindUTF32BE
)

func (k Kind) String() string {
	switch k {
	case KindUTF8BOM:
		return "utf-8-bom"
	case KindUTF16LE:
		return "utf-16le"
	case KindUTF16BE:
		return "utf-16be"
	case KindUTF32LE:
		return "utf-32le"
	case KindUTF32BE:
		return "utf-32be"
	default:
		return "utf-8"
	}
}

// IsUTF8 reports whether the content can be read as UTF-8 text.
func (k Kind) IsUTF8() bool {
	return k == KindUTF8 || k == KindUTF8BOM
}

var (
	utf8BOM    = []byte{0xef, 0xbb, 0xbf}
	utf16LEBOM = []byte{0xff, 0xfe}
	utf16BEBOM = []byte{0xfe, 0xff}
	utf32LEBOM = []byte{0xff, 0xfe, 0x00, 0x00}
	utf32BEBOM = []byte{0x00, 0x00, 0xfe, 0xff}
)

// DetectHeader inspects up to the first 4 bytes of content for a BOM.
// Content without a BOM is assumed to be UTF-8.
func DetectHeader(header []byte) Kind {
	// UTF-32LE shares its first two bytes with UTF-16LE.
	if bytes.HasPrefix(header, utf32LEBOM) {
		return KindUTF32LE
	}
	if bytes.HasPrefix(header, utf32BEBOM) {
		return KindUTF32BE
	}
	if bytes.HasPrefix(header, utf8BOM) {
		return KindUTF8BOM
	}
	if bytes.HasPrefix(header, utf16LEBOM) {
		return KindUTF16LE
	}
	if bytes.HasPrefix(header, utf16BEBOM) {
		return KindUTF16BE
	}
	return KindUTF8
}

// SniffReader reads up to 4 bytes from r and determines its encoding.
// Short or empty input is not an error.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, 4)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUTF8, err
	}

	return DetectHeader(header[:n]), nil
}
