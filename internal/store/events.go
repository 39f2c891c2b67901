package store

import "context"

// EventType identifies what happened to a document.
type EventType int

const (
	DocumentOpened  EventType = iota // a document was opened
	DocumentReset                    // content was replaced wholesale
	DocumentChanged                  // an incremental change set was applied
	DocumentClosed                   // a document was dropped
)

func (t EventType) String() string {
	switch t {
	case DocumentOpened:
		return "opened"
	case DocumentReset:
		return "reset"
	case DocumentChanged:
		return "changed"
	case DocumentClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event describes a single change in the store.
type Event struct {
	Type        EventType
	URI         string
	FromVersion int32
	ToVersion   int32
}

// Subscribe returns a channel of store events until ctx is canceled.
// Callers must drain the channel; sends to a full subscriber are dropped.
func (s *Store) Subscribe(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	ch := make(chan Event, 16)
	sid := s.nextSubID
	s.nextSubID++
	s.subscribers[sid] = ch
	s.mu.Unlock()

	// remove on context done
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, sid)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

// emit sends event to all subscribers non-blocking. Callers hold s.mu.
func (s *Store) emit(event Event) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// drop if not ready
		}
	}
}
