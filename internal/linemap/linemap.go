// Package linemap builds the newline index of a document snapshot and
// translates protocol positions into byte offsets and back.
package linemap

import (
	"sort"
	"unicode/utf8"

	lsp "github.com/tliron/glsp/protocol_3_16"
)

// Kind identifies the terminator that closed a line.
type Kind uint8

const (
	None Kind = iota // terminal entry of unterminated text
	LF
	CR
	CRLF
)

// Width returns the terminator's byte width.
func (k Kind) Width() int {
	switch k {
	case LF, CR:
		return 1
	case CRLF:
		return 2
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case LF:
		return "LF"
	case CR:
		return "CR"
	case CRLF:
		return "CRLF"
	default:
		return "None"
	}
}

// Newline records one line ending. End is the byte offset just past the
// terminator, or past the final byte for the terminal entry.
type Newline struct {
	End  int
	Kind Kind
}

// Map resolves positions against a single immutable snapshot. It is a
// per-batch artifact: callers build it from the text as it stood when the
// batch began and discard it afterwards.
type Map struct {
	text     []byte
	newlines []Newline
}

// New scans text once, recording every line ending. A \r\n pair counts as
// one terminator. Text that does not end with a terminator gets a terminal
// entry with Kind None; empty text has no entries.
func New(text []byte) *Map {
	var newlines []Newline
	for i := 0; i < len(text); {
		switch text[i] {
		case '\n':
			newlines = append(newlines, Newline{End: i + 1, Kind: LF})
			i++
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				newlines = append(newlines, Newline{End: i + 2, Kind: CRLF})
				i += 2
			} else {
				newlines = append(newlines, Newline{End: i + 1, Kind: CR})
				i++
			}
		default:
			i++
		}
	}
	if len(text) > 0 && (len(newlines) == 0 || newlines[len(newlines)-1].End < len(text)) {
		newlines = append(newlines, Newline{End: len(text), Kind: None})
	}
	return &Map{text: text, newlines: newlines}
}

// Offset resolves pos to a byte offset. The character column counts UTF-16
// code units, per protocol convention. Positions outside the text clamp: a
// line past the last resolves to the text length, a column past the end of
// its line resolves to the end of that line. Resolution never fails.
func (m *Map) Offset(pos lsp.Position) int {
	line := int(pos.Line)
	off := m.LineStart(line)
	end := m.lineContentEnd(line)

	var units uint32
	for off < end {
		r, size := utf8.DecodeRune(m.text[off:end])
		w := uint32(1)
		if r > 0xFFFF {
			// Codepoints above the BMP take two UTF-16 units.
			w = 2
		}
		if units+w > pos.Character {
			break
		}
		units += w
		off += size
	}
	return off
}

// Position is the reverse mapping: the protocol position of a byte offset.
// Offsets outside the text clamp; an offset inside a terminator resolves to
// the end of the line the terminator closes.
func (m *Map) Position(offset int) lsp.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(m.text) {
		offset = len(m.text)
	}

	line := sort.Search(len(m.newlines), func(i int) bool {
		return m.newlines[i].End > offset
	})
	// The very end of unterminated text belongs to the terminal entry.
	if line == len(m.newlines) && line > 0 && m.newlines[line-1].Kind == None {
		line--
	}

	start := m.LineStart(line)
	if end := m.lineContentEnd(line); offset > end {
		offset = end
	}

	var units uint32
	for i := start; i < offset; {
		r, size := utf8.DecodeRune(m.text[i:offset])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return lsp.Position{Line: uint32(line), Character: units}
}

// LineStart returns the byte offset at which a line begins: 0 for line 0,
// entry k-1's End for line k. Lines past the last clamp to the text length.
func (m *Map) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line-1 < len(m.newlines) {
		return m.newlines[line-1].End
	}
	return len(m.text)
}

// LineCount returns the number of lines. Empty text is one empty line; a
// trailing terminator opens a final empty line.
func (m *Map) LineCount() int {
	n := len(m.newlines)
	if n == 0 {
		return 1
	}
	if m.newlines[n-1].Kind != None {
		return n + 1
	}
	return n
}

// Newlines returns a copy of the recorded line endings.
func (m *Map) Newlines() []Newline {
	out := make([]Newline, len(m.newlines))
	copy(out, m.newlines)
	return out
}

// lineContentEnd returns the end of a line's content, before its
// terminator.
func (m *Map) lineContentEnd(line int) int {
	if line >= 0 && line < len(m.newlines) {
		nl := m.newlines[line]
		return nl.End - nl.Kind.Width()
	}
	return len(m.text)
}
