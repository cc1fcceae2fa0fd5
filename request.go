package kamiwaza

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// The catalog store is eventually consistent for freshly written resources:
// a PUT to a dataset's schema immediately after creating the dataset can
// transiently 404. That one case is retried on a short fixed schedule, gated
// on the dataset having been mutated by this client within the recency
// window and on the server's exact not-found detail. Retrying any more
// broadly would mask real 404s.
const (
	datasetSchemaPath = "catalog/datasets/by-urn/schema"

	// The server's wording, matched exactly. A looser match would widen the
	// retry scope; see DESIGN.md before changing it.
	datasetSchemaRetryDetail = "Dataset not found or schema could not be updated"
)

// datasetSchemaRetryDelays sums to 5s across 8 retries (9 attempts total).
var datasetSchemaRetryDelays = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
	time.Second,
	time.Second,
	time.Second,
	500 * time.Millisecond,
}

// scheduleBackOff is a backoff.BackOff over a fixed delay schedule,
// returning backoff.Stop once the schedule is exhausted.
type scheduleBackOff struct {
	delays []time.Duration
	next   int
}

// Compile-time check to ensure scheduleBackOff implements backoff.BackOff
var _ backoff.BackOff = (*scheduleBackOff)(nil)

func (b *scheduleBackOff) NextBackOff() time.Duration {
	if b.next >= len(b.delays) {
		return backoff.Stop
	}
	d := b.delays[b.next]
	b.next++
	return d
}

func (b *scheduleBackOff) Reset() { b.next = 0 }

type requestOptions struct {
	body     any
	form     url.Values
	params   url.Values
	headers  http.Header
	skipAuth bool
}

// RequestOption configures a single API call.
type RequestOption func(*requestOptions)

// WithJSONBody sends v as the JSON request body.
func WithJSONBody(v any) RequestOption {
	return func(o *requestOptions) { o.body = v }
}

// WithFormBody sends form as a URL-encoded request body.
func WithFormBody(form url.Values) RequestOption {
	return func(o *requestOptions) { o.form = form }
}

// WithParams merges params into the query string.
func WithParams(params url.Values) RequestOption {
	return func(o *requestOptions) {
		for key, values := range params {
			for _, value := range values {
				o.params.Add(key, value)
			}
		}
	}
}

// WithParam adds a single query parameter.
func WithParam(key, value string) RequestOption {
	return func(o *requestOptions) { o.params.Add(key, value) }
}

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) { o.headers.Add(key, value) }
}

// WithSkipAuth sends the request without installing a credential. Used by
// the auth endpoints themselves, which run while no valid credential exists.
func WithSkipAuth() RequestOption {
	return func(o *requestOptions) { o.skipAuth = true }
}

func newRequestOptions(opts []RequestOption) *requestOptions {
	o := &requestOptions{
		params:  url.Values{},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Do executes an API call and decodes the JSON response into out. A 204 or
// empty body leaves out untouched and returns nil. out may be nil when the
// response body is irrelevant.
func (c *Client) Do(ctx context.Context, method, path string, out any, opts ...RequestOption) error {
	resp, err := c.execute(ctx, method, path, newRequestOptions(opts))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	// Explicit no-content result, never a parse error.
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		contentType := resp.Header.Get("Content-Type")
		if looksLikeHTML(contentType, body) {
			return &NonAPIResponseError{BaseURL: c.baseURL, StatusCode: resp.StatusCode}
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			message: fmt.Sprintf(
				"failed to parse JSON response (content-type %q): %s",
				contentType, truncateBody(string(body)),
			),
		}
	}
	return nil
}

// Get issues a GET request. See Do.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, out, opts...)
}

// Post issues a POST request. See Do.
func (c *Client) Post(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, out, opts...)
}

// Put issues a PUT request. See Do.
func (c *Client) Put(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, out, opts...)
}

// Patch issues a PATCH request. See Do.
func (c *Client) Patch(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, out, opts...)
}

// Delete issues a DELETE request. See Do.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, out, opts...)
}

// DoStream executes an API call and returns the raw response body for
// streaming consumption. The caller owns the body and must close it.
func (c *Client) DoStream(ctx context.Context, method, path string, opts ...RequestOption) (io.ReadCloser, error) {
	resp, err := c.execute(ctx, method, path, newRequestOptions(opts))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// execute performs the call with the client's retry rules: one transparent
// refresh-and-replay on a 401, and the bounded eventual-consistency retry
// for schema writes against recently mutated datasets. Any response it
// returns has a 2xx status and an unread body.
func (c *Client) execute(ctx context.Context, method, path string, opts *requestOptions) (*http.Response, error) {
	cleaned := strings.TrimLeft(path, "/")
	requestURL := c.baseURL + "/" + cleaned
	if len(opts.params) > 0 {
		requestURL += "?" + opts.params.Encode()
	}

	bodyBytes, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}

	// Computed once, before the first attempt.
	schemaRetry := c.schemaRetryEligible(method, cleaned, opts.params)
	schedule := &scheduleBackOff{delays: datasetSchemaRetryDelays}
	didRefresh := false

	for {
		req, err := http.NewRequestWithContext(ctx, method, requestURL, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		for key, values := range opts.headers {
			req.Header[key] = append([]string(nil), values...)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		if !opts.skipAuth && c.auth != nil {
			// Authentication failures propagate immediately; the refresh
			// retry below is only for 401s on the call itself.
			if err := c.auth.Authenticate(ctx, req); err != nil {
				return nil, err
			}
		}

		c.logger.DebugContext(ctx, "sending request", "method", method, "path", cleaned)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &TransportError{Err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			if opts.skipAuth {
				return nil, &AuthenticationError{Message: fmt.Sprintf("unauthenticated request to %s was rejected", cleaned)}
			}
			if c.auth == nil {
				return nil, &AuthenticationError{Message: "authentication failed: no credentials configured"}
			}
			if didRefresh {
				return nil, &AuthenticationError{Message: "authentication failed after token refresh"}
			}
			if !c.auth.SupportsRefresh() {
				return nil, &AuthenticationError{Message: "authentication failed and credentials cannot be refreshed"}
			}
			didRefresh = true
			c.logger.WarnContext(ctx, "received 401, refreshing credentials", "path", cleaned)
			if err := c.auth.Refresh(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			if schemaRetry && resp.StatusCode == http.StatusNotFound && retryableSchemaDetail(body) {
				if delay := schedule.NextBackOff(); delay != backoff.Stop {
					c.logger.DebugContext(ctx, "retrying schema update after 404",
						"attempt", schedule.next, "delay", delay, "urn", opts.params.Get("urn"))
					c.sleep(delay)
					continue
				}
			}

			return nil, translateHTTPError(c.baseURL, cleaned, resp, body)
		}

		return resp, nil
	}
}

// schemaRetryEligible is the eligibility predicate for the
// eventual-consistency retry: PUT to the dataset schema path for a URN this
// client mutated within the recency window.
func (c *Client) schemaRetryEligible(method, cleaned string, params url.Values) bool {
	if method != http.MethodPut {
		return false
	}
	if strings.TrimRight(cleaned, "/") != datasetSchemaPath {
		return false
	}
	urn := params.Get("urn")
	return urn != "" && c.recent.ContainsFresh(urn)
}

func retryableSchemaDetail(body []byte) bool {
	parsed := parseJSONObject(body)
	if parsed == nil {
		return false
	}
	detail, ok := parsed["detail"].(string)
	return ok && detail == datasetSchemaRetryDetail
}

func encodeBody(opts *requestOptions) ([]byte, string, error) {
	switch {
	case opts.form != nil:
		return []byte(opts.form.Encode()), "application/x-www-form-urlencoded", nil
	case opts.body != nil:
		data, err := json.Marshal(opts.body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return data, "application/json", nil
	default:
		return nil, "", nil
	}
}

// drain consumes and closes a response body so the connection can be reused
// by the next attempt.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyLen))
	_ = resp.Body.Close()
}
