// Package session defines the JSON recording of one document's sync
// traffic and replays it against a store. Recordings hold the opening
// snapshot plus the change sets that followed, in the same shape the
// protocol sends them, so captured editor traffic replays directly.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tandem/internal/document"
	"tandem/internal/store"
)

// ErrNoDocument reports a recording without an opening snapshot.
var ErrNoDocument = errors.New("session: recording names no document")

// Open is the snapshot that starts a recording.
type Open struct {
	URI     string `json:"uri"`
	Version int32  `json:"version"`
	Text    string `json:"text"`
}

// Session is one recorded document lifetime.
type Session struct {
	Open    Open                 `json:"open"`
	Batches []document.ChangeSet `json:"batches"`
}

// Result summarizes a replay.
type Result struct {
	URI     string
	Applied int
	Stale   int
	Version int32
	Length  int
}

// Load reads a session recording from JSON.
func Load(r io.Reader) (Session, error) {
	var s Session
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&s); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Open.URI == "" {
		return Session{}, ErrNoDocument
	}
	return s, nil
}

// Replay opens the recorded document in st and applies every batch in
// order. A version gap or ordering failure stops the replay at the
// failing batch; the result still reflects the store's final state.
func (s Session) Replay(st *store.Store) (Result, error) {
	st.Reset(s.Open.URI, s.Open.Version, s.Open.Text)

	res := Result{URI: s.Open.URI}
	var applyErr error
	for i, cs := range s.Batches {
		status, err := st.Apply(s.Open.URI, cs)
		if err != nil {
			applyErr = fmt.Errorf("batch %d of %d: %w", i+1, len(s.Batches), err)
			break
		}
		switch status {
		case document.StatusApplied:
			res.Applied++
		case document.StatusStale:
			res.Stale++
		}
	}
	res.Version, _ = st.Version(s.Open.URI)
	res.Length, _ = st.Len(s.Open.URI)
	return res, applyErr
}
