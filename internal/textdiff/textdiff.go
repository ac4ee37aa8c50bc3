// Package textdiff renders line-based unified diffs between two texts.
package textdiff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ContextLines is the number of unchanged lines shown around each hunk.
const ContextLines = 5

const noNewlineMarker = "\\ No newline at end of file\n"

// Unified returns a unified diff from original to updated, or "" when the
// texts are identical. Every emitted line ends in a newline; a source line
// without one is followed by the conventional no-newline marker.
func Unified(original, updated, originalLabel, updatedLabel string) string {
	if original == updated {
		return ""
	}

	a := splitLines(original)
	b := splitLines(updated)
	groups := difflib.NewMatcher(a, b).GetGroupedOpCodes(ContextLines)
	if len(groups) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("--- " + originalLabel + "\n")
	buf.WriteString("+++ " + updatedLabel + "\n")

	for _, group := range groups {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&buf, "@@ -%s +%s @@\n",
			formatRange(first.I1, last.I2),
			formatRange(first.J1, last.J2),
		)

		for _, op := range group {
			switch op.Tag {
			case 'e':
				writeLines(&buf, " ", a[op.I1:op.I2])
			case 'r':
				writeLines(&buf, "-", a[op.I1:op.I2])
				writeLines(&buf, "+", b[op.J1:op.J2])
			case 'd':
				writeLines(&buf, "-", a[op.I1:op.I2])
			case 'i':
				writeLines(&buf, "+", b[op.J1:op.J2])
			}
		}
	}

	return buf.String()
}

func writeLines(buf *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		buf.WriteString(prefix)
		buf.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			buf.WriteString("\n")
			buf.WriteString(noNewlineMarker)
		}
	}
}

// splitLines splits after each "\n", keeping the terminators. A bare "\r" or
// a Unicode line separator stays inside its line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// formatRange renders a hunk range: "start" for one line, "start,length"
// otherwise, with an empty range anchored at the line before it.
func formatRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return strconv.Itoa(beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}
