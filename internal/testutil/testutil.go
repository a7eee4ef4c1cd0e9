// Package testutil provides common helpers for the HTTP and CLI tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BTreeMap/DialogCore/internal/arbiter"
	"github.com/BTreeMap/DialogCore/internal/dialog"
	"github.com/BTreeMap/DialogCore/internal/rg"
	"github.com/BTreeMap/DialogCore/internal/store"
)

// NewManager creates a dialog manager over every built-in RG and an
// in-memory store. A non-zero seed makes replies reproducible.
func NewManager(t testing.TB, seed uint64, opts ...dialog.Option) *dialog.Manager {
	t.Helper()
	reg, err := rg.NewRegistry()
	if err != nil {
		t.Fatalf("failed to build RG registry: %v", err)
	}
	return dialog.NewManager(store.NewInMemoryStore(), arbiter.New(reg, arbiter.WithSeed(seed)), nil, opts...)
}

// Envelope is the decoded API response wrapper.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// NewJSONRequest builds a request. A string body is sent as is, any other
// non-nil body is marshalled to JSON.
func NewJSONRequest(t testing.TB, method, url string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		r = bytes.NewReader(MustMarshalJSON(t, b))
	}
	req := httptest.NewRequest(method, url, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DoJSON serves one request on h and decodes the envelope. It fails the
// test if the reply is not JSON.
func DoJSON(t testing.TB, h http.Handler, method, url string, body any) (int, Envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, NewJSONRequest(t, method, url, body))
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("%s %s: expected Content-Type application/json, got %q", method, url, ct)
	}
	var env Envelope
	MustUnmarshalJSON(t, rr.Body.Bytes(), &env)
	return rr.Code, env
}

// DecodeResult unmarshals the envelope's result into a T.
func DecodeResult[T any](t testing.TB, env Envelope) T {
	t.Helper()
	var v T
	MustUnmarshalJSON(t, env.Result, &v)
	return v
}

// MustMarshalJSON marshals an object to JSON and fails test on error.
func MustMarshalJSON(t testing.TB, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t testing.TB, data []byte, target any) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON %q: %v", data, err)
	}
}
