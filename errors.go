package kamiwaza

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// maxErrorBodyLen bounds how much of a response body is carried in error
// messages.
const maxErrorBodyLen = 512

// APIError is the generic failure for any non-2xx response that no more
// specific error kind covers. It carries the status code, the raw body and
// the parsed JSON body when one was available.
type APIError struct {
	StatusCode int
	Body       string
	Parsed     map[string]any

	message string
}

func (e *APIError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, truncateBody(e.Body))
}

// Detail returns the body's detail field, or "" when absent.
func (e *APIError) Detail() string {
	if detail, ok := e.Parsed["detail"].(string); ok {
		return detail
	}
	return ""
}

// AuthenticationError indicates a missing credential, a failed login, or a
// failed or exhausted refresh.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NonAPIResponseError indicates the endpoint answered with an HTML page
// where JSON was expected, the usual symptom of a base URL that points at
// the platform dashboard instead of the API.
type NonAPIResponseError struct {
	BaseURL    string
	StatusCode int
}

func (e *NonAPIResponseError) Error() string {
	return fmt.Sprintf(
		"received HTML instead of an API response (status %d); base URL is %q - did you forget to append '/api'?",
		e.StatusCode, e.BaseURL,
	)
}

// BackendUnavailableError indicates a dependent subsystem is not provisioned
// on the server, reported as a 501 under that subsystem's path prefix.
type BackendUnavailableError struct {
	Backend    string
	StatusCode int
	Body       string
	Parsed     map[string]any
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend is not configured", e.Backend)
}

// TransportError wraps a connection-level failure (DNS, refused connection,
// timeout). These are never retried by the client; callers wanting retries
// must wrap calls with their own policy.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// translateHTTPError maps a finished non-2xx response to one error kind.
// path must be the cleaned request path (no leading slash).
func translateHTTPError(baseURL, path string, resp *http.Response, body []byte) error {
	parsed := parseJSONObject(body)

	if resp.StatusCode == http.StatusNotFound && looksLikeHTML(resp.Header.Get("Content-Type"), body) {
		return &NonAPIResponseError{BaseURL: baseURL, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode == http.StatusNotImplemented && strings.HasPrefix(path, "vectordb") {
		return &BackendUnavailableError{
			Backend:    "vectordb",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Parsed:     parsed,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Parsed:     parsed,
	}
}

// looksLikeHTML reports whether a response is an HTML page rather than an
// API payload. The platform dashboard serves pages mentioning "Dashboard",
// which catches misrouted responses with a generic content type.
func looksLikeHTML(contentType string, body []byte) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html") ||
		bytes.Contains(body, []byte("Dashboard"))
}

// parseJSONObject decodes body as a JSON object, returning nil for anything
// else.
func parseJSONObject(body []byte) map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	return parsed
}

func truncateBody(body string) string {
	if len(body) > maxErrorBodyLen {
		return body[:maxErrorBodyLen] + "..."
	}
	return body
}
