package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/DialogCore/internal/rg"
)

func echoHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		result := map[string]string{"method": r.Method, "body": string(body), "ct": r.Header.Get("Content-Type")}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "result": result})
	})
}

func TestDoJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantBody string
		wantCT   string
	}{
		{"no body", nil, "", ""},
		{"raw string", `{"text":`, `{"text":`, "application/json"},
		{"struct", struct {
			Text string `json:"text"`
		}{"hi"}, `{"text":"hi"}`, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := DoJSON(t, echoHandler(t), http.MethodPost, "/echo", tt.body)
			assert.Equal(t, http.StatusAccepted, code)
			assert.Equal(t, "ok", env.Status)
			got := DecodeResult[map[string]string](t, env)
			assert.Equal(t, http.MethodPost, got["method"])
			assert.Equal(t, tt.wantBody, got["body"])
			assert.Equal(t, tt.wantCT, got["ct"])
		})
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(t, 5)
	greeting, err := m.StartConversation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rg.LaunchPhrase(""), greeting.Text)
	assert.Equal(t, 0, greeting.TurnNum)
}

func TestMustMarshalJSON(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(MustMarshalJSON(t, map[string]int{"a": 1})))
	var out map[string]int
	MustUnmarshalJSON(t, []byte(`{"b":2}`), &out)
	assert.Equal(t, 2, out["b"])
}
