package api

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/render"

	"github.com/undeadops/goshort/internal/omnibox"
)

// redirectNavigator sends the browser to the target with a 302, replacing
// the page in the current tab.
type redirectNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

func (n redirectNavigator) Navigate(_ context.Context, target string) error {
	http.Redirect(n.w, n.r, target, http.StatusFound)
	return nil
}

// Go resolves committed address-bar text, taken from /g/<text> or ?q=.
func (h *ShortcutHandler) Go(w http.ResponseWriter, r *http.Request) {
	text := pathParam(r, "*")
	if text == "" {
		text = r.URL.Query().Get("q")
	}

	if err := h.omnibox.OnInputEntered(r.Context(), text, redirectNavigator{w: w, r: r}); err != nil {
		h.handleError(w, r, err)
	}
}

type SuggestResponse struct {
	Query       string               `json:"query"`
	Suggestions []omnibox.Suggestion `json:"suggestions"`
}

func (h *ShortcutHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	h.omnibox.OnInputChanged(r.Context(), text, func(s []omnibox.Suggestion) {
		h.respondJSON(w, r, http.StatusOK, &SuggestResponse{Query: text, Suggestions: s})
	})
}

// OpenSearchSuggest answers in the OpenSearch suggestions format:
// [query, [completions], [descriptions], [urls]].
func (h *ShortcutHandler) OpenSearchSuggest(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	h.omnibox.OnInputChanged(r.Context(), text, func(s []omnibox.Suggestion) {
		completions := make([]string, len(s))
		descriptions := make([]string, len(s))
		urls := make([]string, len(s))
		for i, sg := range s {
			completions[i] = sg.Content
			descriptions[i] = sg.Description
			urls[i] = h.root(r) + "/g/" + url.PathEscape(sg.Content)
		}
		h.respondJSON(w, r, http.StatusOK, []interface{}{text, completions, descriptions, urls})
	})
}

type openSearchURL struct {
	Type     string `xml:"type,attr"`
	Method   string `xml:"method,attr"`
	Template string `xml:"template,attr"`
}

type openSearchDescription struct {
	XMLName       xml.Name        `xml:"OpenSearchDescription"`
	Xmlns         string          `xml:"xmlns,attr"`
	ShortName     string          `xml:"ShortName"`
	Description   string          `xml:"Description"`
	InputEncoding string          `xml:"InputEncoding"`
	URLs          []openSearchURL `xml:"Url"`
}

// OpenSearchDescription lets a browser register goshort as a search provider.
func (h *ShortcutHandler) OpenSearchDescription(w http.ResponseWriter, r *http.Request) {
	root := h.root(r)
	desc := &openSearchDescription{
		Xmlns:         "http://a9.com/-/spec/opensearch/1.1/",
		ShortName:     "go",
		Description:   "Go shortcuts",
		InputEncoding: "UTF-8",
		URLs: []openSearchURL{
			{Type: "text/html", Method: "get", Template: root + "/go?q={searchTerms}"},
			{Type: "application/x-suggestions+json", Method: "get", Template: root + "/opensearch/suggest?q={searchTerms}"},
		},
	}
	render.XML(w, r, desc)
}

// root is the externally visible base URL without a trailing slash.
func (h *ShortcutHandler) root(r *http.Request) string {
	if h.baseURL != "" {
		return strings.TrimRight(h.baseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
