// Package shortcut holds the keyword -> url mapping shared by every goshort surface.
package shortcut

import (
	"bytes"
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotObject is returned when decoding JSON whose top-level value is not an object.
var ErrNotObject = errors.New("shortcut: entries must be a JSON object")

// Entry is one keyword -> url association.
type Entry struct {
	Keyword string `json:"keyword"`
	URL     string `json:"url"`
}

// Entries maps keywords to urls and iterates in insertion order.
// Overwriting a keyword keeps its position; the zero value is an empty mapping.
type Entries struct {
	om *orderedmap.OrderedMap[string, string]
}

// NewEntries returns a mapping holding pairs in the given order.
func NewEntries(pairs ...Entry) *Entries {
	e := &Entries{om: orderedmap.New[string, string]()}
	for _, p := range pairs {
		e.om.Set(p.Keyword, p.URL)
	}
	return e
}

// FromMap builds Entries from a plain map. Go maps have no order, so the
// resulting order is unspecified.
func FromMap(m map[string]string) *Entries {
	e := NewEntries()
	for k, v := range m {
		e.om.Set(k, v)
	}
	return e
}

func (e *Entries) init() {
	if e.om == nil {
		e.om = orderedmap.New[string, string]()
	}
}

func (e *Entries) Len() int {
	if e == nil || e.om == nil {
		return 0
	}
	return e.om.Len()
}

func (e *Entries) Get(keyword string) (string, bool) {
	if e == nil || e.om == nil {
		return "", false
	}
	return e.om.Get(keyword)
}

// Set stores keyword -> url, replacing any previous url for keyword.
func (e *Entries) Set(keyword, url string) {
	e.init()
	e.om.Set(keyword, url)
}

// Delete removes keyword and reports whether it was present.
func (e *Entries) Delete(keyword string) bool {
	if e == nil || e.om == nil {
		return false
	}
	_, ok := e.om.Delete(keyword)
	return ok
}

// All returns the entries in iteration order.
func (e *Entries) All() []Entry {
	if e.Len() == 0 {
		return []Entry{}
	}
	out := make([]Entry, 0, e.om.Len())
	for pair := e.om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Entry{Keyword: pair.Key, URL: pair.Value})
	}
	return out
}

func (e *Entries) Keywords() []string {
	all := e.All()
	out := make([]string, len(all))
	for i, entry := range all {
		out[i] = entry.Keyword
	}
	return out
}

// Map returns an unordered copy as a plain map.
func (e *Entries) Map() map[string]string {
	out := make(map[string]string, e.Len())
	for _, entry := range e.All() {
		out[entry.Keyword] = entry.URL
	}
	return out
}

// Clone returns an independent copy preserving order.
func (e *Entries) Clone() *Entries {
	return NewEntries(e.All()...)
}

// Merge copies every entry of other into e. Keys present in both take
// other's url; keys only in e keep their url and position.
func (e *Entries) Merge(other *Entries) {
	e.init()
	for _, entry := range other.All() {
		e.om.Set(entry.Keyword, entry.URL)
	}
}

// Equal reports whether both mappings hold the same pairs, ignoring order.
func (e *Entries) Equal(other *Entries) bool {
	if e.Len() != other.Len() {
		return false
	}
	for _, entry := range e.All() {
		url, ok := other.Get(entry.Keyword)
		if !ok || url != entry.URL {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the mapping as a JSON object in iteration order.
func (e *Entries) MarshalJSON() ([]byte, error) {
	if e.Len() == 0 {
		return []byte("{}"), nil
	}
	return e.om.MarshalJSON()
}

// UnmarshalJSON replaces the mapping with the decoded object. A JSON null
// decodes to an empty mapping; any other non-object value is ErrNotObject.
func (e *Entries) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	om := orderedmap.New[string, string]()
	if bytes.Equal(trimmed, []byte("null")) {
		e.om = om
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	if err := om.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	e.om = om
	return nil
}
