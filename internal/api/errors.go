package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/go-chi/render"

	"github.com/undeadops/goshort/internal/manager"
	"github.com/undeadops/goshort/internal/shortcut"
)

var errBadRequest = errors.New("bad request")

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }
func (e *requestError) Is(target error) bool {
	return target == errBadRequest
}

// badRequest marks err as caused by the client.
func badRequest(err error) error {
	return &requestError{err: err}
}

// ErrResponse is the JSON body of every error reply.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, manager.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, manager.ErrKeywordRequired),
		errors.Is(err, manager.ErrURLRequired),
		errors.Is(err, manager.ErrMalformedImport),
		errors.Is(err, shortcut.ErrNotObject):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError converts err to an HTTP reply. Server-side failures are logged
// and their details withheld.
func (h *ShortcutHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
	}

	logger := httplog.LogEntry(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Handling error")
	} else {
		logger.Info().Err(err).Int("status", status).Msg("Rejected request")
		resp.ErrorText = err.Error()
	}

	_ = render.Render(w, r, resp)
}
