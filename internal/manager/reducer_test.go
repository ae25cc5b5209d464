package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undeadops/goshort/internal/shortcut"
)

func loaded(pairs ...shortcut.Entry) State {
	s, _ := Reduce(State{}, Loaded{Entries: shortcut.NewEntries(pairs...)})
	return s
}

func persisted(t *testing.T, effects []Effect) *shortcut.Entries {
	t.Helper()
	require.Len(t, effects, 1)
	p, ok := effects[0].(Persist)
	require.True(t, ok, "expected Persist, got %T", effects[0])
	return p.Entries
}

func TestSubmitCreatesAndClearsDraft(t *testing.T) {
	s := loaded()
	s.Keyword, s.URL = "gh", "https://github.com"

	next, effects := Reduce(s, Submit{Keyword: "gh", URL: "https://github.com"})

	assert.Equal(t, map[string]string{"gh": "https://github.com"}, persisted(t, effects).Map())
	assert.Equal(t, map[string]string{"gh": "https://github.com"}, next.Entries.Map())
	assert.Empty(t, next.Keyword)
	assert.Empty(t, next.URL)
	assert.False(t, next.EditMode)
}

func TestSubmitOverwritesDuplicateSilently(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "gh", URL: "old"})

	next, effects := Reduce(s, Submit{Keyword: "gh", URL: "new"})

	assert.Equal(t, map[string]string{"gh": "new"}, persisted(t, effects).Map())
	assert.Equal(t, 1, next.Entries.Len())
}

func TestSubmitRequiresFields(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "x"})

	tt := []struct {
		name    string
		ev      Submit
		wantErr error
	}{
		{name: "Missing keyword", ev: Submit{URL: "https://a.example"}, wantErr: ErrKeywordRequired},
		{name: "Missing url", ev: Submit{Keyword: "a"}, wantErr: ErrURLRequired},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			next, effects := Reduce(s, tc.ev)
			require.Len(t, effects, 1)
			n, ok := effects[0].(Notify)
			require.True(t, ok)
			assert.ErrorIs(t, n.Err, tc.wantErr)
			assert.Equal(t, s, next)
		})
	}
}

func TestRenamePreservesSingleEntry(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "x"})

	s, effects := Reduce(s, Edit{Keyword: "a"})
	assert.Empty(t, effects)
	assert.True(t, s.EditMode)
	assert.Equal(t, "a", s.Keyword)
	assert.Equal(t, "x", s.URL)
	assert.Equal(t, "a", s.OriginalKeyword)

	s, effects = Reduce(s, Submit{Keyword: "b", URL: "x"})

	assert.Equal(t, map[string]string{"b": "x"}, persisted(t, effects).Map())
	assert.Equal(t, map[string]string{"b": "x"}, s.Entries.Map())
	assert.False(t, s.EditMode)
	assert.Empty(t, s.OriginalKeyword)
}

func TestRenameOntoExistingKeyword(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "x"}, shortcut.Entry{Keyword: "b", URL: "y"})

	s, _ = Reduce(s, Edit{Keyword: "a"})
	s, effects := Reduce(s, Submit{Keyword: "b", URL: "x"})

	assert.Equal(t, map[string]string{"b": "x"}, persisted(t, effects).Map())
}

func TestEditMissingKeyword(t *testing.T) {
	s := loaded()

	next, effects := Reduce(s, Edit{Keyword: "nope"})
	require.Len(t, effects, 1)
	assert.ErrorIs(t, effects[0].(Notify).Err, ErrNotFound)
	assert.False(t, next.EditMode)
}

func TestDeleteWhileEditingClearsForm(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "x"}, shortcut.Entry{Keyword: "b", URL: "y"})

	s, _ = Reduce(s, Edit{Keyword: "a"})
	s, effects := Reduce(s, Delete{Keyword: "a"})

	assert.Equal(t, map[string]string{"b": "y"}, persisted(t, effects).Map())
	assert.False(t, s.EditMode)
	assert.Empty(t, s.Keyword)
	assert.Empty(t, s.URL)
	assert.Empty(t, s.OriginalKeyword)
}

func TestDeleteOtherKeepsEditing(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "x"}, shortcut.Entry{Keyword: "b", URL: "y"})

	s, _ = Reduce(s, Edit{Keyword: "a"})
	s, _ = Reduce(s, Delete{Keyword: "b"})

	assert.True(t, s.EditMode)
	assert.Equal(t, "a", s.OriginalKeyword)
	assert.Equal(t, map[string]string{"a": "x"}, s.Entries.Map())
}

func TestCancel(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "x"})
	s, _ = Reduce(s, Edit{Keyword: "a"})

	s, effects := Reduce(s, Cancel{})
	assert.Empty(t, effects)
	assert.False(t, s.EditMode)
	assert.Empty(t, s.Keyword)
	assert.Equal(t, map[string]string{"a": "x"}, s.Entries.Map())
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	orig := shortcut.NewEntries(shortcut.Entry{Keyword: "a", URL: "x"})
	s := State{Entries: orig}

	Reduce(s, Submit{Keyword: "b", URL: "y"})
	Reduce(s, Delete{Keyword: "a"})
	Reduce(s, Import{Contents: []byte(`{"c":"z"}`)})

	assert.Equal(t, map[string]string{"a": "x"}, orig.Map())
}

func TestImportMergePrecedence(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "1"}, shortcut.Entry{Keyword: "b", URL: "2"})

	s, effects := Reduce(s, Import{Contents: []byte(`{"b":"3","c":"4"}`)})

	want := map[string]string{"a": "1", "b": "3", "c": "4"}
	assert.Equal(t, want, persisted(t, effects).Map())
	assert.Equal(t, want, s.Entries.Map())
}

func TestImportKeepsDraft(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "1"})
	s, _ = Reduce(s, Edit{Keyword: "a"})

	s, _ = Reduce(s, Import{Contents: []byte(`{"c":"4"}`)})
	assert.True(t, s.EditMode)
	assert.Equal(t, "a", s.OriginalKeyword)
}

func TestMalformedImportIsNoop(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "a", URL: "1"})

	for _, contents := range []string{`{"a":`, `not json`, `["a","b"]`, `{"a":1}`} {
		next, effects := Reduce(s, Import{Contents: []byte(contents)})
		require.Len(t, effects, 1, contents)
		n, ok := effects[0].(Notify)
		require.True(t, ok, contents)
		assert.ErrorIs(t, n.Err, ErrMalformedImport)
		assert.Equal(t, map[string]string{"a": "1"}, next.Entries.Map())
	}
}

func TestExport(t *testing.T) {
	s := loaded(shortcut.Entry{Keyword: "gh", URL: "https://github.com"}, shortcut.Entry{Keyword: "q", URL: "https://a.example/?x=1"})
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*60*60))

	next, effects := Reduce(s, Export{At: at})
	require.Len(t, effects, 1)
	d, ok := effects[0].(Download)
	require.True(t, ok)

	assert.Equal(t, "go-shortcut-export-2024-03-10.json", d.Filename)
	assert.Equal(t, "{\n  \"gh\": \"https://github.com\",\n  \"q\": \"https://a.example/?x=1\"\n}", string(d.Data))
	assert.Equal(t, s, next)
}

func TestExportThenImportIsIdempotent(t *testing.T) {
	s := loaded(
		shortcut.Entry{Keyword: "a", URL: "1"},
		shortcut.Entry{Keyword: "b", URL: "https://b.example/?q=<x>&y"},
	)

	_, effects := Reduce(s, Export{At: time.Now()})
	d := effects[0].(Download)

	next, effects := Reduce(s, Import{Contents: d.Data})
	assert.Equal(t, s.Entries.All(), persisted(t, effects).All())
	assert.Equal(t, s.Entries.All(), next.Entries.All())
}

func TestExportKeepsURLsReadable(t *testing.T) {
	s := loaded(
		shortcut.Entry{Keyword: "search", URL: "https://x.example/?a=1&b=<2>"},
		shortcut.Entry{Keyword: `q"uote\`, URL: "https://café.example"},
	)

	_, effects := Reduce(s, Export{At: time.Now()})
	require.Len(t, effects, 1)
	d := effects[0].(Download)

	want := "{\n  \"search\": \"https://x.example/?a=1&b=<2>\",\n  \"q\\\"uote\\\\\": \"https://café.example\"\n}"
	assert.Equal(t, want, string(d.Data))

	next, _ := Reduce(s, Import{Contents: d.Data})
	assert.Equal(t, s.Entries.All(), next.Entries.All())
}

func TestExportEmpty(t *testing.T) {
	_, effects := Reduce(loaded(), Export{At: time.Now()})
	require.Len(t, effects, 1)
	assert.Equal(t, "{}", string(effects[0].(Download).Data))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "go-shortcut-export-2026-01-02.json", ExportFilename(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}
