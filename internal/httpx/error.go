package httpx

import (
	"fmt"
	"io"
	"net/http"
)

// HTTPError represents a non-2xx response returned by the remote service.
// Status carries the status line text and Body the raw response payload so
// callers can surface both in their own error messages.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
	Header     http.Header
}

func newHTTPError(resp *http.Response) *HTTPError {
	defer closeBody(resp.Body)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = nil
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
		Header:     resp.Header.Clone(),
	}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("http error: %s body=%s", e.Status, string(e.Body))
}

// Retryable reports whether the error should be considered transient.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}
