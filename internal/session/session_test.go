package session_test

import (
	"errors"
	"strings"
	"testing"

	"tandem/internal/document"
	"tandem/internal/session"
	"tandem/internal/store"
)

const recording = `{
  "open": {"uri": "file:///demo.txt", "version": 0, "text": "hello world"},
  "batches": [
    {
      "fromVersion": 0,
      "toVersion": 1,
      "changes": [
        {
          "range": {"start": {"line": 0, "character": 6}, "end": {"line": 0, "character": 11}},
          "newText": "there"
        }
      ]
    },
    {
      "fromVersion": 0,
      "toVersion": 1,
      "changes": [
        {
          "range": {"start": {"line": 0, "character": 6}, "end": {"line": 0, "character": 11}},
          "newText": "there"
        }
      ]
    },
    {
      "fromVersion": 1,
      "toVersion": 2,
      "changes": [
        {
          "range": {"start": {"line": 0, "character": 11}, "end": {"line": 0, "character": 11}},
          "newText": "!"
        }
      ]
    }
  ]
}`

func TestLoad(t *testing.T) {
	t.Run("valid recording", func(t *testing.T) {
		s, err := session.Load(strings.NewReader(recording))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if s.Open.URI != "file:///demo.txt" {
			t.Errorf("Open.URI = %q, want %q", s.Open.URI, "file:///demo.txt")
		}
		if s.Open.Version != 0 {
			t.Errorf("Open.Version = %d, want 0", s.Open.Version)
		}
		if len(s.Batches) != 3 {
			t.Fatalf("len(Batches) = %d, want 3", len(s.Batches))
		}
		first := s.Batches[0]
		if first.FromVersion != 0 || first.ToVersion != 1 {
			t.Errorf("Batches[0] spans %d..%d, want 0..1", first.FromVersion, first.ToVersion)
		}
		if len(first.Changes) != 1 || first.Changes[0].NewText != "there" {
			t.Errorf("Batches[0].Changes = %+v", first.Changes)
		}
		if got := first.Changes[0].Range.Start.Character; got != 6 {
			t.Errorf("Batches[0] start character = %d, want 6", got)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := session.Load(strings.NewReader("{not json")); err == nil {
			t.Error("Load() with malformed JSON returned nil error")
		}
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := session.Load(strings.NewReader(`{"batches": []}`))
		if !errors.Is(err, session.ErrNoDocument) {
			t.Errorf("Load() error = %v, want ErrNoDocument", err)
		}
	})
}

func TestReplay(t *testing.T) {
	t.Run("full recording", func(t *testing.T) {
		s, err := session.Load(strings.NewReader(recording))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		st := store.New()
		res, err := s.Replay(st)
		if err != nil {
			t.Fatalf("Replay() error = %v", err)
		}
		if res.Applied != 2 {
			t.Errorf("Applied = %d, want 2", res.Applied)
		}
		if res.Stale != 1 {
			t.Errorf("Stale = %d, want 1", res.Stale)
		}
		if res.Version != 2 {
			t.Errorf("Version = %d, want 2", res.Version)
		}

		text, err := st.Text(res.URI)
		if err != nil {
			t.Fatalf("Text() error = %v", err)
		}
		if text != "hello there!" {
			t.Errorf("Text() = %q, want %q", text, "hello there!")
		}
		if res.Length != len("hello there!") {
			t.Errorf("Length = %d, want %d", res.Length, len("hello there!"))
		}
	})

	t.Run("version gap stops the replay", func(t *testing.T) {
		s := session.Session{
			Open: session.Open{URI: "file:///gap.txt", Version: 0, Text: "base"},
			Batches: []document.ChangeSet{
				{FromVersion: 0, ToVersion: 1},
				{FromVersion: 5, ToVersion: 6},
				{FromVersion: 1, ToVersion: 2},
			},
		}

		st := store.New()
		res, err := s.Replay(st)
		if !errors.Is(err, document.ErrVersionGap) {
			t.Fatalf("Replay() error = %v, want ErrVersionGap", err)
		}
		if res.Applied != 1 {
			t.Errorf("Applied = %d, want 1", res.Applied)
		}
		if res.Version != 1 {
			t.Errorf("Version = %d, want 1", res.Version)
		}
	})

	t.Run("replay over an existing document resets it", func(t *testing.T) {
		st := store.New()
		if err := st.Open("file:///demo.txt", 9, "stale mirror"); err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		s, err := session.Load(strings.NewReader(recording))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, err := s.Replay(st); err != nil {
			t.Fatalf("Replay() error = %v", err)
		}
		text, _ := st.Text("file:///demo.txt")
		if text != "hello there!" {
			t.Errorf("Text() = %q, want %q", text, "hello there!")
		}
	})
}
