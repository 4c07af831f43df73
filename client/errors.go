package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// NetworkError means no response was received at all: offline, DNS
// failure, timeout, cancellation. Never retried automatically.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a server response with a 4xx/5xx status. Message carries
// the server-provided error text when the body had one; Body keeps the
// raw payload for callers that need more.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("portal returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("portal returned %d", e.StatusCode)
}

// IsAuthFailure reports whether this is the 401 the refresh path cares
// about.
func (e *HTTPError) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// DecodeError means the server responded 2xx but the payload did not
// match the endpoint's declared shape. Malformed data stops here instead
// of propagating into caller state.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorBody is the error envelope the portal uses on failed requests.
type errorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func httpErrorFrom(resp *response) *HTTPError {
	herr := &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}

	var body errorBody
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		if body.Error != "" {
			herr.Message = body.Error
		} else {
			herr.Message = body.Message
		}
	}
	return herr
}
