// Package omnibox turns address-bar input into shortcut suggestions and
// navigation targets.
//
// Typing produces suggestions for every keyword containing the input,
// case-insensitively. Committing an exact keyword navigates to its url;
// anything else falls through to a web search so the address bar never
// dead-ends.
package omnibox

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/undeadops/goshort/internal/shortcut"
	"github.com/undeadops/goshort/internal/store"
)

// DefaultSearchURL receives the query-escaped input when no keyword matches.
const DefaultSearchURL = "https://www.google.com/search?q="

// Suggestion is one address-bar completion.
type Suggestion struct {
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Navigator sends the current tab to a url.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) Navigate(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Filter returns the entries whose keyword contains text, ignoring case, in
// mapping order.
func Filter(entries *shortcut.Entries, text string) []shortcut.Entry {
	needle := strings.ToLower(text)
	matches := []shortcut.Entry{}
	for _, e := range entries.All() {
		if strings.Contains(strings.ToLower(e.Keyword), needle) {
			matches = append(matches, e)
		}
	}
	return matches
}

// Suggest builds the suggestion list for text. When nothing matches and text
// is not blank, a single suggestion echoing text is returned.
func Suggest(entries *shortcut.Entries, text string) []Suggestion {
	matches := Filter(entries, text)
	suggestions := make([]Suggestion, 0, len(matches))
	for _, e := range matches {
		suggestions = append(suggestions, Suggestion{
			Content:     e.Keyword,
			Description: fmt.Sprintf(`Go to "%s" with shortcut "%s"`, e.URL, e.Keyword),
		})
	}

	if len(suggestions) == 0 && strings.TrimSpace(text) != "" {
		suggestions = append(suggestions, Suggestion{
			Content:     text,
			Description: fmt.Sprintf(`No matching shortcut found for "%s"`, text),
		})
	}
	return suggestions
}

// Resolve maps committed text to a url: the exact (case-sensitive) keyword's
// target, otherwise a search for text.
func Resolve(entries *shortcut.Entries, text, searchURL string) string {
	if target, ok := entries.Get(text); ok {
		return target
	}
	return searchURL + url.QueryEscape(text)
}

// Controller answers the two address-bar events against the shortcut store.
type Controller struct {
	store     store.Store
	searchURL string
	logger    zerolog.Logger
}

type Option func(*Controller)

// WithSearchURL overrides DefaultSearchURL.
func WithSearchURL(searchURL string) Option {
	return func(c *Controller) {
		if searchURL != "" {
			c.searchURL = searchURL
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func NewController(s store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:     s,
		searchURL: DefaultSearchURL,
		logger:    zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

func (c *Controller) SearchURL() string {
	return c.searchURL
}

// OnInputChanged calls suggest exactly once with the suggestions for text.
func (c *Controller) OnInputChanged(ctx context.Context, text string, suggest func([]Suggestion)) {
	entries := store.Load(ctx, c.store, c.logger)
	suggest(Suggest(entries, text))
}

// OnInputEntered navigates to the url text resolves to.
func (c *Controller) OnInputEntered(ctx context.Context, text string, nav Navigator) error {
	entries := store.Load(ctx, c.store, c.logger)
	target := Resolve(entries, text, c.searchURL)

	_, matched := entries.Get(text)
	c.logger.Debug().Str("text", text).Str("url", target).Bool("matched", matched).Msg("Navigating")

	if err := nav.Navigate(ctx, target); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", target, err)
	}
	return nil
}
