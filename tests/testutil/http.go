package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spares/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/require"
)

// APIClient sends requests straight to an http.Handler
type APIClient struct {
	Handler http.Handler
	// Headers are added to every request
	Headers map[string]string
}

// NewAPIClient creates a client for handler
func NewAPIClient(handler http.Handler) *APIClient {
	return &APIClient{Handler: handler, Headers: map[string]string{}}
}

// Response is a recorded API response
type Response struct {
	*httptest.ResponseRecorder
}

// Do sends method path with body encoded as JSON. Extra headers are given as
// key/value pairs.
func (c *APIClient) Do(t *testing.T, method, path string, body any, headers ...string) *Response {
	t.Helper()
	require.Zero(t, len(headers)%2, "headers must be key/value pairs")

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.Handler.ServeHTTP(w, req)
	return &Response{ResponseRecorder: w}
}

// Envelope decodes the standard response wrapper. When out is not nil the
// data field is decoded into it.
func (r *Response) Envelope(t *testing.T, out any) dto.Response {
	t.Helper()

	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &raw), "body: %s", r.Body.String())
	if out != nil {
		require.NotEmpty(t, raw.Data, "response has no data: %s", r.Body.String())
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}

// RequireStatus fails the test with the body when the status differs
func (r *Response) RequireStatus(t *testing.T, status int) *Response {
	t.Helper()
	require.Equal(t, status, r.Code, "body: %s", r.Body.String())
	return r
}

// ErrorCode returns the error code of a failed response
func (r *Response) ErrorCode(t *testing.T) string {
	t.Helper()
	env := r.Envelope(t, nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

// Data decodes the data field of a successful response into T
func Data[T any](t *testing.T, r *Response) T {
	t.Helper()
	var out T
	env := r.Envelope(t, &out)
	require.True(t, env.Success, "body: %s", r.Body.String())
	return out
}
