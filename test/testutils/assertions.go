package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response envelope with the payload left raw
type Envelope struct {
	Success  bool              `json:"success"`
	Data     json.RawMessage   `json:"data,omitempty"`
	Error    *EnvelopeError    `json:"error,omitempty"`
	Message  string            `json:"message,omitempty"`
	Warnings []EnvelopeWarning `json:"warnings,omitempty"`
}

// EnvelopeWarning is one storage reset reported alongside the data
type EnvelopeWarning struct {
	Code string `json:"code"`
	Key  string `json:"key"`
}

// EnvelopeError is the error part of the envelope
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HTTPAssertions provides HTTP response assertions
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates HTTP assertions for t
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// Success asserts the status code and a successful envelope, and decodes the
// data into target when target is non-nil
func (ha *HTTPAssertions) Success(rec *httptest.ResponseRecorder, expectedCode int, target interface{}) Envelope {
	ha.t.Helper()
	env := ha.decode(rec)
	assert.Equal(ha.t, expectedCode, rec.Code, rec.Body.String())
	assert.True(ha.t, env.Success, "expected success envelope")
	if target != nil {
		require.NoError(ha.t, json.Unmarshal(env.Data, target))
	}
	return env
}

// Failure asserts the status code and the error code of a failed envelope
func (ha *HTTPAssertions) Failure(rec *httptest.ResponseRecorder, expectedCode int, errorCode string) Envelope {
	ha.t.Helper()
	env := ha.decode(rec)
	assert.Equal(ha.t, expectedCode, rec.Code, rec.Body.String())
	assert.False(ha.t, env.Success)
	if assert.NotNil(ha.t, env.Error) {
		assert.Equal(ha.t, errorCode, env.Error.Code)
	}
	return env
}

// JSONContentType asserts the response declares a JSON body
func (ha *HTTPAssertions) JSONContentType(rec *httptest.ResponseRecorder) {
	ha.t.Helper()
	assert.Contains(ha.t, rec.Header().Get("Content-Type"), "application/json")
}

func (ha *HTTPAssertions) decode(rec *httptest.ResponseRecorder) Envelope {
	ha.t.Helper()
	var env Envelope
	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
