// Package document implements a versioned text buffer mirroring a document
// that is edited elsewhere. Change batches arrive with the version span
// they cover: batches behind the buffer are skipped as replays, batches
// ahead of it are rejected as gaps, and in-order batches are applied with
// positional delta correction.
package document

import (
	"fmt"

	"tandem/internal/gapbuffer"
	"tandem/internal/linemap"
)

// UnsetVersion marks a buffer that has not been reset yet.
const UnsetVersion int32 = -1

// Buffer holds one document's text and version. It does no internal
// locking; a single writer at a time is assumed, and shared use goes
// through the store, which serializes access.
type Buffer struct {
	version int32
	text    *gapbuffer.Buffer
}

// New creates an empty buffer at the unset version.
func New() *Buffer {
	return &Buffer{
		version: UnsetVersion,
		text:    gapbuffer.New(nil),
	}
}

// Reset replaces content and version unconditionally. It never fails;
// moving the version backward is allowed.
func (b *Buffer) Reset(version int32, content string) {
	b.version = version
	b.text.Reset([]byte(content))
}

// Version returns the current version, UnsetVersion before the first reset.
func (b *Buffer) Version() int32 {
	return b.version
}

// Text returns the current content.
func (b *Buffer) Text() string {
	return b.text.String()
}

// Bytes returns a copy of the current content.
func (b *Buffer) Bytes() []byte {
	return b.text.Bytes()
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	return b.text.Len()
}

// Apply applies one change set.
//
// A set whose FromVersion is behind the buffer is a recognized replay and
// is skipped without error. A set whose FromVersion is ahead of the buffer
// returns ErrVersionGap with the buffer untouched. Otherwise every offset
// is resolved against the text as it stood before the set, and changes are
// applied in order with a running delta correcting for the bytes earlier
// changes inserted or removed.
//
// On ErrOutOfOrder, changes applied before the offending one remain in the
// buffer and the version does not advance.
func (b *Buffer) Apply(cs ChangeSet) (Status, error) {
	if b.version != UnsetVersion {
		if cs.FromVersion < b.version {
			return StatusStale, nil
		}
		if cs.FromVersion > b.version {
			return StatusRejected, fmt.Errorf(
				"applying versions %d through %d against version %d: %w",
				cs.FromVersion, cs.ToVersion, b.version, ErrVersionGap)
		}
	}

	m := linemap.New(b.text.Bytes())

	delta := 0
	prevStart, prevEnd := -1, -1
	for i, change := range cs.Changes {
		start := m.Offset(change.Range.Start)
		end := m.Offset(change.Range.End)
		if end < start {
			end = start
		}
		if start < prevStart || start < prevEnd {
			return StatusRejected, fmt.Errorf(
				"change %d starts at offset %d inside or before span [%d, %d): %w",
				i, start, prevStart, prevEnd, ErrOutOfOrder)
		}
		prevStart, prevEnd = start, end

		if end > start {
			b.text.Delete(start+delta, end+delta)
		}
		if change.NewText != "" {
			b.text.Insert(start+delta, []byte(change.NewText))
			delta += len(change.NewText)
		}
		delta -= end - start
	}

	b.version = cs.ToVersion
	return StatusApplied, nil
}

// ApplyAll applies change sets in order, stopping at the first failure.
// Statuses for the sets that were reached are returned; on error the last
// returned status belongs to the failed set.
func (b *Buffer) ApplyAll(sets []ChangeSet) ([]Status, error) {
	statuses := make([]Status, 0, len(sets))
	for _, cs := range sets {
		status, err := b.Apply(cs)
		statuses = append(statuses, status)
		if err != nil {
			return statuses, err
		}
	}
	return statuses, nil
}
