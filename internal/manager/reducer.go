// Package manager implements shortcut management as a pure reducer over a
// small view state, plus a Session that runs the reducer's effects against a
// store.
package manager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/undeadops/goshort/internal/shortcut"
)

var (
	ErrNotFound        = errors.New("shortcut not found")
	ErrKeywordRequired = errors.New("keyword is required")
	ErrURLRequired     = errors.New("url is required")
	ErrMalformedImport = errors.New("import file is not a valid shortcut export")
)

// ExportPrefix starts every export filename.
const ExportPrefix = "go-shortcut-export-"

// State is the manager's view: the loaded mapping plus the draft form.
type State struct {
	Entries         *shortcut.Entries
	Keyword         string
	URL             string
	EditMode        bool
	OriginalKeyword string
}

func (s State) clearDraft() State {
	s.Keyword = ""
	s.URL = ""
	s.EditMode = false
	s.OriginalKeyword = ""
	return s
}

type Event interface{ event() }

type (
	// Loaded replaces the view's mapping with one read from storage.
	Loaded struct{ Entries *shortcut.Entries }
	// Submit saves the draft, renaming OriginalKeyword when editing.
	Submit struct{ Keyword, URL string }
	// Edit loads an existing entry into the draft.
	Edit struct{ Keyword string }
	Delete struct{ Keyword string }
	Cancel struct{}
	// Export renders the mapping as a download dated At.
	Export struct{ At time.Time }
	// Import merges a JSON object into the mapping, imported keys winning.
	Import struct{ Contents []byte }
)

func (Loaded) event() {}
func (Submit) event() {}
func (Edit) event()   {}
func (Delete) event() {}
func (Cancel) event() {}
func (Export) event() {}
func (Import) event() {}

type Effect interface{ effect() }

type (
	// Persist writes the full mapping to storage.
	Persist struct{ Entries *shortcut.Entries }
	// Download offers Data to the user as a file named Filename.
	Download struct {
		Filename string
		Data     []byte
	}
	// Notify reports Err to the user.
	Notify struct{ Err error }
)

func (Persist) effect()  {}
func (Download) effect() {}
func (Notify) effect()   {}

// Reduce applies ev to s. It never mutates s.Entries; every change happens on
// a copy that is returned in the new state and, when storage must follow, in a
// Persist effect.
func Reduce(s State, ev Event) (State, []Effect) {
	if s.Entries == nil {
		s.Entries = shortcut.NewEntries()
	}

	switch ev := ev.(type) {
	case Loaded:
		if ev.Entries == nil {
			s.Entries = shortcut.NewEntries()
		} else {
			s.Entries = ev.Entries.Clone()
		}
		return s, nil

	case Submit:
		if ev.Keyword == "" {
			return s, []Effect{Notify{Err: ErrKeywordRequired}}
		}
		if ev.URL == "" {
			return s, []Effect{Notify{Err: ErrURLRequired}}
		}
		updated := s.Entries.Clone()
		if s.EditMode && s.OriginalKeyword != ev.Keyword {
			updated.Delete(s.OriginalKeyword)
		}
		updated.Set(ev.Keyword, ev.URL)

		s.Entries = updated
		return s.clearDraft(), []Effect{Persist{Entries: updated}}

	case Edit:
		url, ok := s.Entries.Get(ev.Keyword)
		if !ok {
			return s, []Effect{Notify{Err: fmt.Errorf("%w: %s", ErrNotFound, ev.Keyword)}}
		}
		s.Keyword = ev.Keyword
		s.URL = url
		s.EditMode = true
		s.OriginalKeyword = ev.Keyword
		return s, nil

	case Delete:
		updated := s.Entries.Clone()
		updated.Delete(ev.Keyword)

		s.Entries = updated
		if s.EditMode && s.OriginalKeyword == ev.Keyword {
			s = s.clearDraft()
		}
		return s, []Effect{Persist{Entries: updated}}

	case Cancel:
		return s.clearDraft(), nil

	case Export:
		data, err := encodeExport(s.Entries)
		if err != nil {
			return s, []Effect{Notify{Err: fmt.Errorf("failed to encode export: %w", err)}}
		}
		return s, []Effect{Download{Filename: ExportFilename(ev.At), Data: data}}

	case Import:
		imported := shortcut.NewEntries()
		if err := json.Unmarshal(ev.Contents, imported); err != nil {
			return s, []Effect{Notify{Err: fmt.Errorf("%w: %v", ErrMalformedImport, err)}}
		}
		merged := s.Entries.Clone()
		merged.Merge(imported)

		s.Entries = merged
		return s, []Effect{Persist{Entries: merged}}
	}

	return s, nil
}

// ExportFilename names an export taken at t, by its UTC date.
func ExportFilename(t time.Time) string {
	return ExportPrefix + t.UTC().Format("2006-01-02") + ".json"
}

// encodeExport writes entries as a 2-space indented object in mapping order.
// Strings are encoded without HTML escaping so urls stay readable.
func encodeExport(entries *shortcut.Entries) ([]byte, error) {
	all := entries.All()
	if len(all) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, e := range all {
		key, err := encodeString(e.Keyword)
		if err != nil {
			return nil, err
		}
		value, err := encodeString(e.URL)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(all)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
