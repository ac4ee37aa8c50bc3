// Package canonical parses JSON into an order-preserving tree and serializes
// it back under a fixed set of layout options.
package canonical

import "fmt"

// IndentKind selects how nested values are laid out.
type IndentKind int

const (
	// IndentSpaces puts every element on its own line, indented by Width spaces.
	IndentSpaces IndentKind = iota
	// IndentTab is IndentSpaces with one tab per level.
	IndentTab
	// IndentNone keeps the document on one line with ", " and ": " separators.
	IndentNone
	// IndentCompact keeps the document on one line with no whitespace.
	IndentCompact
)

// Indent is the layout half of Options.
type Indent struct {
	Kind  IndentKind
	Width int
}

func Spaces(n int) Indent { return Indent{Kind: IndentSpaces, Width: n} }
func Tab() Indent         { return Indent{Kind: IndentTab} }
func NoIndent() Indent    { return Indent{Kind: IndentNone} }
func Compact() Indent     { return Indent{Kind: IndentCompact} }

func (i Indent) String() string {
	switch i.Kind {
	case IndentTab:
		return "tab"
	case IndentNone:
		return "none"
	case IndentCompact:
		return "compact"
	default:
		return fmt.Sprintf("spaces(%d)", i.Width)
	}
}

// Options fully determines the canonical text for a given input.
type Options struct {
	SortKeys    bool
	Indent      Indent
	EnsureASCII bool
}

// DefaultOptions is four-space indentation with non-ASCII escaped.
func DefaultOptions() Options {
	return Options{
		Indent:      Spaces(4),
		EnsureASCII: true,
	}
}
