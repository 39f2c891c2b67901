package document

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Change replaces one span of text. A zero-width range is a pure insert;
// empty NewText is a pure delete.
type Change struct {
	Range   protocol.Range `json:"range"`
	NewText string         `json:"newText"`
}

// ChangeSet is an ordered batch of changes covering one version span:
// applying it moves a buffer from FromVersion to ToVersion. Changes must
// be ordered by start position and must not overlap.
type ChangeSet struct {
	FromVersion int32    `json:"fromVersion"`
	ToVersion   int32    `json:"toVersion"`
	Changes     []Change `json:"changes"`
}

// Status is the outcome of applying one change set.
type Status int

const (
	StatusApplied  Status = iota // the set mutated the buffer and advanced the version
	StatusStale                  // the set was behind the buffer and skipped
	StatusRejected               // the set failed; see the returned error
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusStale:
		return "stale"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
