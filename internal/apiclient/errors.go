package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/auth"
)

// ErrNotFound matches API errors with status 404.
var ErrNotFound = errors.New("not found")

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return "api: " + strconv.Itoa(e.Status) + " " + e.Message
}

// Is maps well-known statuses onto the sentinel errors callers check.
func (e *Error) Is(target error) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return target == auth.ErrNotLoggedIn
	case http.StatusForbidden:
		return target == auth.ErrForbidden
	case http.StatusNotFound:
		return target == ErrNotFound
	}
	return false
}

// StatusCode returns the HTTP status of an API error in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the API-provided message for err, falling back to
// fallback when err carries none. It is what views show the user.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// parseError reads the {"message": ...} body the API sends with errors.
func parseError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var v struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &v) == nil {
		switch {
		case v.Message != "":
			return &Error{Status: resp.StatusCode, Message: v.Message}
		case v.Error != "":
			return &Error{Status: resp.StatusCode, Message: v.Error}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" || strings.HasPrefix(msg, "<") {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
