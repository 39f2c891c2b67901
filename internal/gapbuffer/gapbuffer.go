// Package gapbuffer provides a growable byte buffer with a movable gap,
// giving cheap edits that cluster around a single point.
package gapbuffer

const minGap = 64

// Buffer stores text as a prefix, a gap, and a suffix within one slice.
// Bytes before gapStart and from gapEnd onward are live; the gap between
// them is scratch space for insertions.
type Buffer struct {
	data     []byte
	gapStart int
	gapEnd   int
}

// New creates a buffer seeded with content.
func New(content []byte) *Buffer {
	b := &Buffer{}
	b.Reset(content)
	return b
}

// Reset replaces the entire buffer content.
func (b *Buffer) Reset(content []byte) {
	b.data = make([]byte, len(content)+minGap)
	copy(b.data, content)
	b.gapStart = len(content)
	b.gapEnd = len(b.data)
}

// Len returns the number of live bytes.
func (b *Buffer) Len() int {
	return len(b.data) - (b.gapEnd - b.gapStart)
}

// Insert writes p at byte offset off. Offsets outside [0, Len()] are
// clamped.
func (b *Buffer) Insert(off int, p []byte) {
	if len(p) == 0 {
		return
	}
	if off < 0 {
		off = 0
	}
	if off > b.Len() {
		off = b.Len()
	}
	b.grow(len(p))
	b.moveGap(off)
	copy(b.data[b.gapStart:], p)
	b.gapStart += len(p)
}

// Delete removes the bytes in [start, end). Bounds are clamped; an empty
// or inverted range is a no-op.
func (b *Buffer) Delete(start, end int) {
	n := b.Len()
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	if end > n {
		end = n
	}
	if start == end {
		return
	}
	b.moveGap(start)
	b.gapEnd += end - start
}

// Bytes returns a contiguous copy of the live content.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.Len())
	n := copy(out, b.data[:b.gapStart])
	copy(out[n:], b.data[b.gapEnd:])
	return out
}

// String returns the live content as a string.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

func (b *Buffer) gap() int {
	return b.gapEnd - b.gapStart
}

// moveGap shifts the gap so that it begins at byte offset off.
func (b *Buffer) moveGap(off int) {
	if off < b.gapStart {
		n := b.gapStart - off
		copy(b.data[b.gapEnd-n:b.gapEnd], b.data[off:b.gapStart])
		b.gapStart = off
		b.gapEnd -= n
	} else if off > b.gapStart {
		n := off - b.gapStart
		copy(b.data[b.gapStart:], b.data[b.gapEnd:b.gapEnd+n])
		b.gapStart += n
		b.gapEnd += n
	}
}

// grow widens the gap to hold at least n more bytes, reallocating with
// slack so repeated inserts amortize.
func (b *Buffer) grow(n int) {
	if b.gap() >= n {
		return
	}
	newGap := n + minGap + b.Len()/2
	data := make([]byte, b.Len()+newGap)
	copy(data, b.data[:b.gapStart])
	tail := b.data[b.gapEnd:]
	copy(data[len(data)-len(tail):], tail)
	b.gapEnd = len(data) - len(tail)
	b.data = data
}
