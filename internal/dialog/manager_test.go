package dialog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/BTreeMap/DialogCore/internal/arbiter"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/rg"
	"github.com/BTreeMap/DialogCore/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// historyRecorder captures the history each turn's annotators receive.
type historyRecorder struct {
	mu   sync.Mutex
	seen [][]string
}

func (h *historyRecorder) Name() string { return "history_recorder" }

func (h *historyRecorder) Annotate(_ context.Context, req *nlu.Request) (nlu.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, append([]string(nil), req.History...))
	return nil, nil
}

func newManager(t *testing.T, annotators ...nlu.Annotator) (*Manager, *store.InMemoryStore) {
	t.Helper()
	reg, err := rg.NewRegistry()
	require.NoError(t, err)
	st := store.NewInMemoryStore()
	pipe := nlu.NewPipeline(nlu.WithAnnotators(append(nlu.DefaultAnnotators(), annotators...)...))
	clock := func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	return NewManager(st, arbiter.New(reg, arbiter.WithSeed(3)), pipe, WithClock(clock)), st
}

func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	greeting, err := m.StartConversation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, greeting.TurnNum)
	assert.Equal(t, rg.LaunchPhrase(""), greeting.Text)
	assert.Equal(t, "LAUNCH", greeting.ResponseRG)
	id := greeting.ConversationID

	reply, err := m.HandleTurn(ctx, id, "my name is abi")
	require.NoError(t, err)
	assert.Equal(t, 1, reply.TurnNum)
	assert.Contains(t, reply.Text, "Abi")
	assert.Equal(t, "NEURAL_CHAT", reply.ActiveRG)

	conv, err := m.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.TurnNum)
	assert.Equal(t, "Abi", conv.UserAttributes.Name())
	assert.Equal(t, reply.Text, conv.LastBotText)
	assert.NotEmpty(t, conv.RGStates["LAUNCH"])

	reply, err = m.HandleTurn(ctx, id, "I have to go.")
	require.NoError(t, err)
	assert.Equal(t, "CLOSING_CONFIRMATION", reply.ResponseRG)
	assert.False(t, reply.Ended)

	reply, err = m.HandleTurn(ctx, id, "yes")
	require.NoError(t, err)
	assert.Equal(t, rg.ClosingStopText, reply.Text)
	assert.True(t, reply.Ended)

	_, err = m.HandleTurn(ctx, id, "wait")
	require.ErrorIs(t, err, ErrConversationEnded)

	turns, err := m.ListTurns(ctx, id)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "", turns[0].UserText)
	assert.Equal(t, "my name is abi", turns[1].UserText)
	assert.Equal(t, rg.ClosingStopText, turns[3].BotText)

	require.NoError(t, m.DeleteConversation(ctx, id))
	_, err = m.GetConversation(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHandleTurnErrors(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.HandleTurn(ctx, "c_missing", "hello")
	require.ErrorIs(t, err, store.ErrNotFound)

	start, err := m.StartConversation(ctx)
	require.NoError(t, err)
	_, err = m.HandleTurn(ctx, start.ConversationID, "   ")
	require.ErrorIs(t, err, ErrEmptyUtterance)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = m.HandleTurn(cancelled, start.ConversationID, "hello")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnnotatorsSeeRecentHistory(t *testing.T) {
	ctx := context.Background()
	rec := &historyRecorder{}
	m, _ := newManager(t, rec)

	start, err := m.StartConversation(ctx)
	require.NoError(t, err)
	first, err := m.HandleTurn(ctx, start.ConversationID, "hello")
	require.NoError(t, err)
	_, err = m.HandleTurn(ctx, start.ConversationID, "thank you")
	require.NoError(t, err)

	require.Len(t, rec.seen, 3)
	assert.Empty(t, rec.seen[0])
	assert.Equal(t, []string{start.Text}, rec.seen[1])
	assert.Equal(t, []string{start.Text, "hello", first.Text}, rec.seen[2])
}

func TestTurnsOfOneConversationSerialize(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t)
	start, err := m.StartConversation(ctx)
	require.NoError(t, err)

	const n = 6
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.HandleTurn(ctx, start.ConversationID, "tell me something")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	turns, err := st.ListTurns(ctx, start.ConversationID)
	require.NoError(t, err)
	assert.Len(t, turns, n+1)
	for i, turn := range turns {
		assert.Equal(t, i, turn.TurnNum)
	}
	assert.Empty(t, m.locks)
}
