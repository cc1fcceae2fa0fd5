package kamiwaza

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateHTTPError404HTML(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
	}

	err := translateHTTPError("https://platform.local", "models/", resp, []byte("<html></html>"))

	var nonAPI *NonAPIResponseError
	require.ErrorAs(t, err, &nonAPI)
	assert.Equal(t, "https://platform.local", nonAPI.BaseURL)
	assert.Contains(t, nonAPI.Error(), "/api")
}

func TestTranslateHTTPError404DashboardBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
	}

	err := translateHTTPError("https://platform.local", "models/", resp, []byte("Dashboard"))

	var nonAPI *NonAPIResponseError
	require.ErrorAs(t, err, &nonAPI)
}

func TestTranslateHTTPError404JSON(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}

	err := translateHTTPError("https://platform.local", "models/abc", resp, []byte(`{"detail": "Model not found"}`))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Model not found", apiErr.Detail())
}

func TestTranslateHTTPError501VectorDB(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusNotImplemented, Header: http.Header{}}

	err := translateHTTPError("https://platform.local", "vectordb/vectordb/", resp, []byte(`{"detail": "no"}`))

	var unavailable *BackendUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "vectordb", unavailable.Backend)
}

func TestTranslateHTTPError501OtherPath(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusNotImplemented, Header: http.Header{}}

	err := translateHTTPError("https://platform.local", "models/", resp, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestAPIErrorTruncatesLongBody(t *testing.T) {
	apiErr := &APIError{StatusCode: 500, Body: strings.Repeat("x", 2048)}

	message := apiErr.Error()
	assert.Less(t, len(message), 1024)
	assert.Contains(t, message, "...")
}
