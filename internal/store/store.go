// Package store tracks open documents keyed by URI and serializes access
// to their buffers. Buffers do no locking of their own; the store is the
// single boundary through which concurrent callers read and mutate them.
package store

import (
	"crypto/md5"
	"errors"
	"fmt"
	"log"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"tandem/internal/document"
)

// Predefined errors returned by store operations.
var (
	ErrNotOpen     = errors.New("store: document not open")
	ErrAlreadyOpen = errors.New("store: document already open")
)

// Store holds the open documents.
type Store struct {
	mu          sync.RWMutex
	docs        map[string]*document.Buffer
	subscribers map[int]chan Event
	nextSubID   int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		docs:        make(map[string]*document.Buffer),
		subscribers: make(map[int]chan Event),
	}
}

// Open starts tracking a document at the given version.
func (s *Store) Open(uri string, version int32, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[uri]; exists {
		return fmt.Errorf("open %s: %w", uri, ErrAlreadyOpen)
	}
	b := document.New()
	b.Reset(version, content)
	s.docs[uri] = b
	s.emit(Event{Type: DocumentOpened, URI: uri, FromVersion: document.UnsetVersion, ToVersion: version})
	return nil
}

// Reset replaces a document's content and version, tracking the URI if it
// was not open. Like the buffer's reset, it always succeeds.
func (s *Store) Reset(uri string, version int32, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.docs[uri]
	if !ok {
		b = document.New()
		s.docs[uri] = b
	}
	from := b.Version()
	b.Reset(version, content)
	s.emit(Event{Type: DocumentReset, URI: uri, FromVersion: from, ToVersion: version})
}

// Apply applies one change set to the document at uri.
func (s *Store) Apply(uri string, cs document.ChangeSet) (document.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.docs[uri]
	if !ok {
		return document.StatusRejected, fmt.Errorf("apply to %s: %w", uri, ErrNotOpen)
	}
	status, err := b.Apply(cs)
	if status == document.StatusApplied {
		s.emit(Event{Type: DocumentChanged, URI: uri, FromVersion: cs.FromVersion, ToVersion: cs.ToVersion})
	}
	return status, err
}

// ApplyDidOpen ingests an LSP didOpen notification.
func (s *Store) ApplyDidOpen(params *protocol.DidOpenTextDocumentParams) error {
	return s.Open(params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
}

// ApplyDidClose ingests an LSP didClose notification.
func (s *Store) ApplyDidClose(params *protocol.DidCloseTextDocumentParams) error {
	return s.Close(params.TextDocument.URI)
}

// ApplyDidChange ingests an LSP didChange notification. Whole-document
// events reset the buffer; incremental events after the last reset form
// one change set for the batch.
//
// The notification carries only the target version, so staleness is
// checked against the current version here and FromVersion is derived
// from the buffer. Gap detection stays with Apply, for callers that track
// full version spans; ordered delivery is the transport's contract.
func (s *Store) ApplyDidChange(params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	to := params.TextDocument.Version

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("didChange for %s: %w", uri, ErrNotOpen)
	}

	if b.Version() != document.UnsetVersion && to <= b.Version() {
		log.Printf("Skipping stale didChange for %s: version %d, buffer at %d", uri, to, b.Version())
		return nil
	}

	reset := false
	var pending []document.Change
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				// No range means full replacement, like the whole variant.
				s.resetLocked(b, uri, to, change.Text)
				reset = true
				pending = pending[:0]
				continue
			}
			pending = append(pending, document.Change{Range: *change.Range, NewText: change.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			s.resetLocked(b, uri, to, change.Text)
			reset = true
			pending = pending[:0]
		default:
			return fmt.Errorf("didChange for %s: unexpected change event type %T", uri, raw)
		}
	}

	if len(pending) == 0 && reset {
		return nil
	}
	cs := document.ChangeSet{FromVersion: b.Version(), ToVersion: to, Changes: pending}
	status, err := b.Apply(cs)
	if err != nil {
		return fmt.Errorf("didChange for %s: %w", uri, err)
	}
	if status == document.StatusApplied {
		s.emit(Event{Type: DocumentChanged, URI: uri, FromVersion: cs.FromVersion, ToVersion: cs.ToVersion})
	}
	return nil
}

// Text returns the current content of the document at uri.
func (s *Store) Text(uri string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.docs[uri]
	if !ok {
		return "", fmt.Errorf("read %s: %w", uri, ErrNotOpen)
	}
	return b.Text(), nil
}

// Version returns the current version of the document at uri.
func (s *Store) Version(uri string) (int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.docs[uri]
	if !ok {
		return document.UnsetVersion, fmt.Errorf("read %s: %w", uri, ErrNotOpen)
	}
	return b.Version(), nil
}

// Len returns the content length in bytes of the document at uri.
func (s *Store) Len(uri string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.docs[uri]
	if !ok {
		return 0, fmt.Errorf("read %s: %w", uri, ErrNotOpen)
	}
	return b.Len(), nil
}

// Checksum returns the MD5 checksum of the document content, for
// comparing the mirror against the editor's copy.
func (s *Store) Checksum(uri string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", uri, ErrNotOpen)
	}
	hash := md5.New()
	hash.Write(b.Bytes())
	return hash.Sum(nil), nil
}

// Paths returns the URIs of all open documents.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		paths = append(paths, uri)
	}
	return paths
}

// Close stops tracking the document at uri.
func (s *Store) Close(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("close %s: %w", uri, ErrNotOpen)
	}
	from := b.Version()
	delete(s.docs, uri)
	s.emit(Event{Type: DocumentClosed, URI: uri, FromVersion: from, ToVersion: from})
	return nil
}

// CloseAll stops tracking every open document.
func (s *Store) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for uri, b := range s.docs {
		s.emit(Event{Type: DocumentClosed, URI: uri, FromVersion: b.Version(), ToVersion: b.Version()})
	}
	s.docs = make(map[string]*document.Buffer)
}

// resetLocked resets b in place and emits the event. Callers hold s.mu.
func (s *Store) resetLocked(b *document.Buffer, uri string, version int32, content string) {
	from := b.Version()
	b.Reset(version, content)
	s.emit(Event{Type: DocumentReset, URI: uri, FromVersion: from, ToVersion: version})
}
