package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undeadops/goshort/internal/omnibox"
	"github.com/undeadops/goshort/internal/shortcut"
	"github.com/undeadops/goshort/internal/store/memory"
)

func newTestServer(t *testing.T, initial *shortcut.Entries) (*httptest.Server, *memory.Store) {
	t.Helper()
	return newTestServerWithBase(t, initial, "https://go.example")
}

func newTestServerWithBase(t *testing.T, initial *shortcut.Entries, baseURL string) (*httptest.Server, *memory.Store) {
	t.Helper()
	st := memory.New(initial)
	router := Router(st, omnibox.NewController(st), zerolog.Nop(), Options{
		BaseURL: baseURL,
		Now: func() time.Time {
			return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

// noRedirect keeps the client from following Location headers.
var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func storedMap(t *testing.T, st *memory.Store) map[string]string {
	t.Helper()
	entries, err := st.Get(context.Background())
	require.NoError(t, err)
	return entries.Map()
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := do(t, http.MethodGet, srv.URL+"/ping", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGoRedirects(t *testing.T) {
	srv, _ := newTestServer(t, shortcut.NewEntries(shortcut.Entry{Keyword: "gh", URL: "https://github.com"}))

	tt := []struct {
		name     string
		path     string
		location string
	}{
		{name: "Keyword path", path: "/g/gh", location: "https://github.com"},
		{name: "Query", path: "/go?q=gh", location: "https://github.com"},
		{name: "Unknown keyword", path: "/g/ghx", location: "https://www.google.com/search?q=ghx"},
		{name: "Case sensitive", path: "/go?q=GH", location: "https://www.google.com/search?q=GH"},
		{name: "Escaped query", path: "/go?q=a+b", location: "https://www.google.com/search?q=a+b"},
		{name: "Escaped path", path: "/g/a%20b", location: "https://www.google.com/search?q=a+b"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+tc.path, "")
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, tc.location, resp.Header.Get("Location"))
		})
	}
}

func TestSuggest(t *testing.T) {
	srv, _ := newTestServer(t, shortcut.NewEntries(
		shortcut.Entry{Keyword: "gh", URL: "https://github.com"},
		shortcut.Entry{Keyword: "ghpr", URL: "https://github.com/pulls"},
		shortcut.Entry{Keyword: "docs", URL: "https://go.dev/doc"},
	))

	resp := do(t, http.MethodGet, srv.URL+"/suggest?q=GH", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SuggestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Suggestions, 2)
	assert.Equal(t, "gh", body.Suggestions[0].Content)
	assert.Equal(t, "ghpr", body.Suggestions[1].Content)

	resp = do(t, http.MethodGet, srv.URL+"/suggest?q=zzz", "")
	body = SuggestResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Suggestions, 1)
	assert.Equal(t, "zzz", body.Suggestions[0].Content)
}

func TestOpenSearch(t *testing.T) {
	srv, _ := newTestServer(t, shortcut.NewEntries(shortcut.Entry{Keyword: "gh", URL: "https://github.com"}))

	resp := do(t, http.MethodGet, srv.URL+"/opensearch/suggest?q=g", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body []json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 4)
	assert.JSONEq(t, `"g"`, string(body[0]))
	assert.JSONEq(t, `["gh"]`, string(body[1]))
	assert.JSONEq(t, `["https://go.example/g/gh"]`, string(body[3]))

	resp = do(t, http.MethodGet, srv.URL+"/opensearch.xml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `template="https://go.example/go?q={searchTerms}"`)
}

func TestOpenSearchUsesRequestHost(t *testing.T) {
	srv, _ := newTestServerWithBase(t, shortcut.NewEntries(shortcut.Entry{Keyword: "gh", URL: "https://github.com"}), "")

	resp := do(t, http.MethodGet, srv.URL+"/opensearch.xml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `template="`+srv.URL+`/go?q={searchTerms}"`)
	assert.Contains(t, string(raw), `template="`+srv.URL+`/opensearch/suggest?q={searchTerms}"`)

	resp = do(t, http.MethodGet, srv.URL+"/opensearch/suggest?q=g", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body []json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 4)
	assert.JSONEq(t, `["`+srv.URL+`/g/gh"]`, string(body[3]))
}

func TestCreateAndList(t *testing.T) {
	srv, st := newTestServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/manage/", `{"keyword":"gh","url":"https://github.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = do(t, http.MethodPost, srv.URL+"/manage/", `{"keyword":"docs","url":"https://go.dev/doc"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, map[string]string{"gh": "https://github.com", "docs": "https://go.dev/doc"}, storedMap(t, st))

	resp = do(t, http.MethodGet, srv.URL+"/manage/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list ShortcutListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, []ShortcutResponse{
		{Keyword: "gh", URL: "https://github.com"},
		{Keyword: "docs", URL: "https://go.dev/doc"},
	}, list.Shortcuts)
}

func TestCreateValidation(t *testing.T) {
	srv, st := newTestServer(t, nil)

	for _, body := range []string{
		`{"url":"https://github.com"}`,
		`{"keyword":"gh"}`,
		`{"keyword":"gh","url":"github.com"}`,
		`not-json`,
	} {
		resp := do(t, http.MethodPost, srv.URL+"/manage/", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	assert.Empty(t, storedMap(t, st))
}

func TestUpdateRenames(t *testing.T) {
	srv, st := newTestServer(t, shortcut.NewEntries(shortcut.Entry{Keyword: "a", URL: "https://x.example"}))

	resp := do(t, http.MethodPut, srv.URL+"/manage/a", `{"keyword":"b"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"b": "https://x.example"}, storedMap(t, st))

	resp = do(t, http.MethodPut, srv.URL+"/manage/b", `{"url":"https://y.example"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"b": "https://y.example"}, storedMap(t, st))
}

func TestUpdateMissing(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodPut, srv.URL+"/manage/nope", `{"url":"https://y.example"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	srv, st := newTestServer(t, shortcut.NewEntries(
		shortcut.Entry{Keyword: "a", URL: "https://x.example"},
		shortcut.Entry{Keyword: "my docs", URL: "https://d.example"},
	))

	resp := do(t, http.MethodDelete, srv.URL+"/manage/a", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodDelete, srv.URL+"/manage/my%20docs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, storedMap(t, st))
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t, shortcut.NewEntries(shortcut.Entry{Keyword: "gh", URL: "https://github.com"}))

	resp := do(t, http.MethodGet, srv.URL+"/manage/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="go-shortcut-export-2026-10-19.json"`, resp.Header.Get("Content-Disposition"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"gh\": \"https://github.com\"\n}", string(raw))
}

func TestImport(t *testing.T) {
	srv, st := newTestServer(t, shortcut.NewEntries(
		shortcut.Entry{Keyword: "a", URL: "1"},
		shortcut.Entry{Keyword: "b", URL: "2"},
	))

	resp := do(t, http.MethodPost, srv.URL+"/manage/import", `{"b":"3","c":"4"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, storedMap(t, st))

	resp = do(t, http.MethodPost, srv.URL+"/manage/import", `{"b":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody ErrResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Contains(t, errBody.ErrorText, "import")
	assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, storedMap(t, st))
}
