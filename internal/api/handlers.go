package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"github.com/undeadops/goshort/internal/manager"
	"github.com/undeadops/goshort/internal/omnibox"
	"github.com/undeadops/goshort/internal/shortcut"
	"github.com/undeadops/goshort/internal/store"
)

// maxImportSize caps the body accepted by the import endpoint.
const maxImportSize = 1 << 20

type Options struct {
	// BaseURL is the externally visible root used in the OpenSearch
	// description. Derived from the request when empty.
	BaseURL string
	// Now overrides time.Now for export filenames.
	Now func() time.Time
}

type ShortcutHandler struct {
	store   store.Store
	omnibox *omnibox.Controller
	logger  zerolog.Logger
	baseURL string
	now     func() time.Time

	// writeMu serialises read-modify-write cycles from concurrent requests.
	writeMu sync.Mutex
}

func Router(st store.Store, ctrl *omnibox.Controller, logger zerolog.Logger, opts Options) *chi.Mux {
	h := &ShortcutHandler{
		store:   st,
		omnibox: ctrl,
		logger:  logger,
		baseURL: opts.BaseURL,
		now:     opts.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()

	r.Use(middleware.Heartbeat("/ping"))
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Address-bar integration
	r.Get("/g/*", h.Go)
	r.Get("/go", h.Go)
	r.Get("/suggest", h.Suggest)
	r.Get("/opensearch/suggest", h.OpenSearchSuggest)
	r.Get("/opensearch.xml", h.OpenSearchDescription)

	r.Route("/manage", func(r chi.Router) {
		r.Get("/", h.ListShortcuts)
		r.Post("/", h.CreateShortcut)
		r.Get("/export", h.ExportShortcuts)
		r.Post("/import", h.ImportShortcuts)
		r.Put("/{keyword}", h.UpdateShortcut)
		r.Delete("/{keyword}", h.DeleteShortcut)
	})
	return r
}

// session opens a manager session for the request, loaded from the store.
func (h *ShortcutHandler) session(r *http.Request) *manager.Session {
	sess := manager.NewSession(h.store,
		manager.WithLogger(httplog.LogEntry(r.Context())),
		manager.WithClock(h.now),
	)
	sess.Load(r.Context())
	return sess
}

type ShortcutRequest struct {
	Keyword string `json:"keyword"`
	URL     string `json:"url"`
}

// Bind validates a create request; both fields are required.
func (c *ShortcutRequest) Bind(r *http.Request) error {
	if c.Keyword == "" {
		return manager.ErrKeywordRequired
	}
	if c.URL == "" {
		return manager.ErrURLRequired
	}
	return validateURL(c.URL)
}

// UpdateShortcutRequest retargets and/or renames an entry. Empty fields keep
// the current value.
type UpdateShortcutRequest struct {
	Keyword string `json:"keyword,omitempty"`
	URL     string `json:"url,omitempty"`
}

func (u *UpdateShortcutRequest) Bind(r *http.Request) error {
	if u.URL == "" {
		return nil
	}
	return validateURL(u.URL)
}

// validateURL accepts what a browser url input would: an absolute URL.
func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsed.Scheme == "" {
		return errors.New("url must be absolute")
	}
	return nil
}

type ShortcutResponse struct {
	Keyword string `json:"keyword"`
	URL     string `json:"url"`
}

type ShortcutListResponse struct {
	Shortcuts []ShortcutResponse `json:"shortcuts"`
}

func newListResponse(entries *shortcut.Entries) *ShortcutListResponse {
	resp := &ShortcutListResponse{Shortcuts: []ShortcutResponse{}}
	for _, e := range entries.All() {
		resp.Shortcuts = append(resp.Shortcuts, ShortcutResponse{Keyword: e.Keyword, URL: e.URL})
	}
	return resp
}

func (h *ShortcutHandler) ListShortcuts(w http.ResponseWriter, r *http.Request) {
	entries := store.Load(r.Context(), h.store, httplog.LogEntry(r.Context()))
	h.respondJSON(w, r, http.StatusOK, newListResponse(entries))
}

func (h *ShortcutHandler) CreateShortcut(w http.ResponseWriter, r *http.Request) {
	data := &ShortcutRequest{}
	if err := render.Bind(r, data); err != nil {
		h.handleError(w, r, badRequest(err))
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if _, err := h.session(r).Submit(r.Context(), data.Keyword, data.URL); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusCreated, &ShortcutResponse{Keyword: data.Keyword, URL: data.URL})
}

func (h *ShortcutHandler) UpdateShortcut(w http.ResponseWriter, r *http.Request) {
	original := keywordParam(r)

	data := &UpdateShortcutRequest{}
	if err := render.Bind(r, data); err != nil {
		h.handleError(w, r, badRequest(err))
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	sess := h.session(r)
	state, err := sess.Edit(r.Context(), original)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	keyword, target := state.Keyword, state.URL
	if data.Keyword != "" {
		keyword = data.Keyword
	}
	if data.URL != "" {
		target = data.URL
	}

	if _, err := sess.Submit(r.Context(), keyword, target); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, &ShortcutResponse{Keyword: keyword, URL: target})
}

type DeleteShortcutResponse struct {
	Message string `json:"message"`
}

func (h *ShortcutHandler) DeleteShortcut(w http.ResponseWriter, r *http.Request) {
	keyword := keywordParam(r)

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if _, err := h.session(r).Delete(r.Context(), keyword); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, &DeleteShortcutResponse{Message: "Shortcut deleted successfully"})
}

func (h *ShortcutHandler) ExportShortcuts(w http.ResponseWriter, r *http.Request) {
	download, err := h.session(r).Export(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, download.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(download.Data)
}

func (h *ShortcutHandler) ImportShortcuts(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		h.handleError(w, r, badRequest(err))
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	state, err := h.session(r).Import(r.Context(), body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, newListResponse(state.Entries))
}

func keywordParam(r *http.Request) string {
	return pathParam(r, "keyword")
}

// pathParam returns the named URL parameter unescaped. chi matches on the
// raw path when the request carries escaped characters.
func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(value); err == nil {
			return unescaped
		}
	}
	return value
}

func (h *ShortcutHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, data)
}
