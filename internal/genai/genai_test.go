package genai

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp   openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
}

func (m *mockChatService) Create(_ context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	m.params = params
	return m.resp, m.err
}

func choices(texts ...string) openai.ChatCompletion {
	var out openai.ChatCompletion
	for _, t := range texts {
		out.Choices = append(out.Choices, openai.ChatCompletionChoice{Message: openai.ChatCompletionMessage{Content: t}})
	}
	return out
}

func testClient(chat chatService) *Client {
	return &Client{chat: chat, model: "test-model", temperature: 0.5, maxTokens: 50, candidates: 3, systemPrompt: "be nice"}
}

func TestGeneratePromptWithContext(t *testing.T) {
	mock := &mockChatService{resp: choices("Hello World")}
	out, err := testClient(mock).GeneratePromptWithContext(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", out)
	assert.Len(t, mock.params.Messages, 2)
	assert.False(t, mock.params.N.Valid())
}

func TestGenerateErrors(t *testing.T) {
	_, err := testClient(&mockChatService{err: errors.New("service failure")}).
		GeneratePromptWithContext(context.Background(), "sys", "usr")
	assert.ErrorContains(t, err, "service failure")

	_, err = testClient(&mockChatService{resp: choices()}).
		GeneratePromptWithContext(context.Background(), "sys", "usr")
	assert.ErrorIs(t, err, ErrNoChoicesReturned)

	_, err = testClient(&mockChatService{resp: choices()}).
		GenerateCandidates(context.Background(), nil, "hi")
	assert.ErrorIs(t, err, ErrNoChoicesReturned)
}

func TestGenerateCandidates(t *testing.T) {
	mock := &mockChatService{resp: choices(" That sounds fun! ", "", "Tell me more?")}
	history := []string{"Hi, what's your name?", "abi", "Nice to meet you, Abi!"}
	cands, err := testClient(mock).GenerateCandidates(context.Background(), history, "i went hiking")
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "That sounds fun!", cands[0].Text)
	assert.Equal(t, "Tell me more?", cands[1].Text)
	assert.Greater(t, cands[0].Score, cands[1].Score)

	// system + three history utterances + the user text
	assert.Len(t, mock.params.Messages, 5)
	assert.Equal(t, int64(3), mock.params.N.Value)
}

func TestNewClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	assert.Error(t, err)

	cli, err := NewClient(WithAPIKey("test-key"), WithCandidates(0), WithModel("gpt-test"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cli.candidates)
	assert.Equal(t, "gpt-test", cli.model)
}

func TestDebugLogging(t *testing.T) {
	dir := t.TempDir()
	c := testClient(&mockChatService{resp: choices("Test response")})
	c.debugMode, c.stateDir = true, dir

	_, err := c.GeneratePromptWithContext(context.Background(), "System prompt", "User prompt")
	require.NoError(t, err)

	files, err := os.ReadDir(filepath.Join(dir, "debug"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := os.ReadFile(filepath.Join(dir, "debug", files[0].Name()))
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(content, &entry))
	for _, field := range []string{"timestamp", "method", "model", "params", "response"} {
		assert.Contains(t, entry, field)
	}
}
