package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/DialogCore/internal/dialog"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/rg"
	"github.com/BTreeMap/DialogCore/internal/store"
	"github.com/BTreeMap/DialogCore/internal/testutil"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(testutil.NewManager(t, 9)).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, testutil.Envelope) {
	t.Helper()
	var b any
	if body != "" {
		b = body
	}
	return testutil.DoJSON(t, h, method, path, b)
}

func TestConversationEndpoints(t *testing.T) {
	h := newTestServer(t)

	code, env := do(t, h, http.MethodPost, "/conversations", "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "ok", env.Status)
	greeting := testutil.DecodeResult[models.TurnResponse](t, env)
	assert.Equal(t, rg.LaunchPhrase(""), greeting.Text)
	id := greeting.ConversationID

	code, env = do(t, h, http.MethodPost, "/conversations/"+id+"/turns", `{"text":"my name is abi"}`)
	require.Equal(t, http.StatusOK, code)
	turn := testutil.DecodeResult[models.TurnResponse](t, env)
	assert.Equal(t, 1, turn.TurnNum)
	assert.Contains(t, turn.Text, "Abi")

	code, env = do(t, h, http.MethodGet, "/conversations/"+id, "")
	require.Equal(t, http.StatusOK, code)
	conv := testutil.DecodeResult[models.Conversation](t, env)
	assert.Equal(t, 2, conv.TurnNum)

	code, env = do(t, h, http.MethodGet, "/conversations/"+id+"/turns", "")
	require.Equal(t, http.StatusOK, code)
	turns := testutil.DecodeResult[[]models.TurnRecord](t, env)
	assert.Len(t, turns, 2)

	do(t, h, http.MethodPost, "/conversations/"+id+"/turns", `{"text":"i have to go"}`)
	code, env = do(t, h, http.MethodPost, "/conversations/"+id+"/turns", `{"text":"yes"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ended", env.Status)

	code, env = do(t, h, http.MethodPost, "/conversations/"+id+"/turns", `{"text":"hello?"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error", env.Status)

	code, _ = do(t, h, http.MethodDelete, "/conversations/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodGet, "/conversations/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTurnValidation(t *testing.T) {
	h := newTestServer(t)
	_, env := do(t, h, http.MethodPost, "/conversations", "")
	greeting := testutil.DecodeResult[models.TurnResponse](t, env)
	path := "/conversations/" + greeting.ConversationID + "/turns"

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{"text":`, http.StatusBadRequest},
		{"blank text", `{"text":"   "}`, http.StatusBadRequest},
		{"too long", `{"text":"` + strings.Repeat("a", models.MaxUserTextLength+1) + `"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, "error", env.Status)
		})
	}

	code, _ := do(t, h, http.MethodPost, "/conversations/c_unknown/turns", `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealth(t *testing.T) {
	code, env := do(t, newTestServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Result), "healthy")
}

// failingService fails every call with err.
type failingService struct{ err error }

func (f failingService) StartConversation(context.Context) (*models.TurnResponse, error) {
	return nil, f.err
}

func (f failingService) HandleTurn(context.Context, string, string) (*models.TurnResponse, error) {
	return nil, f.err
}

func (f failingService) GetConversation(context.Context, string) (*models.Conversation, error) {
	return nil, f.err
}

func (f failingService) ListTurns(context.Context, string) ([]models.TurnRecord, error) {
	return nil, f.err
}

func (f failingService) DeleteConversation(context.Context, string) error { return f.err }

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{store.ErrStaleTurn, http.StatusConflict},
		{dialog.ErrConversationEnded, http.StatusConflict},
		{store.ErrNotFound, http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		h := NewServer(failingService{err: tt.err}).Handler()
		code, env := do(t, h, http.MethodPost, "/conversations/c_x/turns", `{"text":"hi"}`)
		assert.Equal(t, tt.want, code, tt.err.Error())
		assert.Equal(t, "error", env.Status)
	}
}
