// Package dialog runs conversations turn by turn: it loads the conversation
// record, annotates the utterance, lets the arbiter pick the reply and
// commits the new record together with the turn log.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/DialogCore/internal/arbiter"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/store"
	"github.com/BTreeMap/DialogCore/internal/tracker"
	"github.com/BTreeMap/DialogCore/internal/util"
)

// DefaultHistoryTurns is how many logged turns feed the annotators.
const DefaultHistoryTurns = 5

var (
	// ErrConversationEnded is returned for turns after the session ended.
	ErrConversationEnded = errors.New("conversation has ended")
	// ErrEmptyUtterance is returned when the user text is blank.
	ErrEmptyUtterance = errors.New("empty utterance")
)

// Opts configures a Manager.
type Opts struct {
	HistoryTurns int
	Now          func() time.Time
}

// Option is a functional option for NewManager.
type Option func(*Opts)

// WithHistoryTurns sets how many prior turns the annotators see.
func WithHistoryTurns(n int) Option {
	return func(o *Opts) { o.HistoryTurns = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Manager serves turns for any number of conversations. Turns of the same
// conversation run one at a time.
type Manager struct {
	store    store.Store
	arbiter  *arbiter.Arbiter
	pipeline *nlu.Pipeline
	history  int
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*convLock
}

type convLock struct {
	sync.Mutex
	refs int
}

func NewManager(st store.Store, arb *arbiter.Arbiter, pipe *nlu.Pipeline, opts ...Option) *Manager {
	o := Opts{HistoryTurns: DefaultHistoryTurns, Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if pipe == nil {
		pipe = nlu.NewPipeline(nlu.WithAnnotators(nlu.DefaultAnnotators()...))
	}
	return &Manager{
		store:    st,
		arbiter:  arb,
		pipeline: pipe,
		history:  o.HistoryTurns,
		now:      o.Now,
		locks:    make(map[string]*convLock),
	}
}

// lock serialises turns of one conversation and returns the unlock func.
func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &convLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		m.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// StartConversation creates a conversation and runs its greeting turn.
func (m *Manager) StartConversation(ctx context.Context) (*models.TurnResponse, error) {
	now := m.now()
	conv := &models.Conversation{
		ID:             util.NewConversationID(),
		UserAttributes: models.UserAttributes{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	unlock := m.lock(conv.ID)
	defer unlock()
	slog.Info("Manager.StartConversation: new conversation", "conversation_id", conv.ID)
	return m.runTurn(ctx, conv, "")
}

// HandleTurn answers one user utterance.
func (m *Manager) HandleTurn(ctx context.Context, conversationID, userText string) (*models.TurnResponse, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, ErrEmptyUtterance
	}
	unlock := m.lock(conversationID)
	defer unlock()

	conv, err := m.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Ended {
		return nil, fmt.Errorf("%w: %s", ErrConversationEnded, conversationID)
	}
	return m.runTurn(ctx, conv, userText)
}

// GetConversation returns the stored record.
func (m *Manager) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return m.store.GetConversation(ctx, id)
}

// ListTurns returns the turn log, oldest first.
func (m *Manager) ListTurns(ctx context.Context, id string) ([]models.TurnRecord, error) {
	return m.store.ListTurns(ctx, id)
}

// DeleteConversation removes the record and its log.
func (m *Manager) DeleteConversation(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()
	return m.store.DeleteConversation(ctx, id)
}

// recentHistory returns the last logged utterances, oldest first.
func (m *Manager) recentHistory(ctx context.Context, conv *models.Conversation) []string {
	if conv.TurnNum == 0 || m.history <= 0 {
		return nil
	}
	turns, err := m.store.ListTurns(ctx, conv.ID)
	if err != nil {
		slog.Warn("Manager.recentHistory: turn log unavailable", "conversation_id", conv.ID, "error", err)
		return nil
	}
	if len(turns) > m.history {
		turns = turns[len(turns)-m.history:]
	}
	var out []string
	for _, t := range turns {
		if t.UserText != "" {
			out = append(out, t.UserText)
		}
		out = append(out, t.BotText)
	}
	return out
}

func (m *Manager) runTurn(ctx context.Context, conv *models.Conversation, userText string) (*models.TurnResponse, error) {
	tr, err := tracker.Load(conv.Tracker)
	if err != nil {
		slog.Warn("Manager.runTurn: resetting unreadable entity tracker", "conversation_id", conv.ID, "error", err)
		tr = tracker.New()
		tr.Cur = conv.CurrentEntity
	}

	ann, err := m.pipeline.Annotate(ctx, nlu.Request{
		ConversationID: conv.ID,
		Text:           userText,
		CurrentEntity:  conv.CurrentEntity,
		History:        m.recentHistory(ctx, conv),
	})
	if err != nil {
		return nil, err
	}

	res := m.arbiter.RunTurn(ctx, arbiter.Request{
		Input: models.TurnInput{
			ConversationID: conv.ID,
			UserText:       userText,
			TurnNum:        conv.TurnNum,
			UserAttributes: conv.UserAttributes,
			LastActiveRG:   conv.LastActiveRG,
			PersistedState: conv.RGStates,
			CurrentEntity:  conv.CurrentEntity,
		},
		Annotations:    ann,
		Tracker:        tr,
		LastAnswerType: conv.LastAnswerType,
		LastBotText:    conv.LastBotText,
	})

	trRaw, err := res.Tracker.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode entity tracker: %w", err)
	}
	now := m.now()
	out := res.Output
	next := *conv
	next.TurnNum = conv.TurnNum + 1
	next.LastActiveRG = out.NewActiveRG
	next.LastAnswerType = res.AnswerType
	next.LastBotText = out.ResponseText
	next.CurrentEntity = out.NewCurrentEntity
	next.UserAttributes = res.UserAttributes
	next.RGStates = out.NewState
	next.Tracker = trRaw
	next.Ended = out.ShouldEndSession
	next.UpdatedAt = now

	rec := models.TurnRecord{
		ConversationID: conv.ID,
		TurnNum:        conv.TurnNum,
		UserText:       userText,
		BotText:        out.ResponseText,
		ResponseRG:     res.ResponseRG,
		PromptRG:       out.PromptRG,
		CreatedAt:      now,
	}
	if out.NewCurrentEntity != nil {
		rec.EntityName = out.NewCurrentEntity.Name
	}
	if err := m.store.CommitTurn(ctx, &next, rec); err != nil {
		return nil, fmt.Errorf("commit turn %d of %s: %w", conv.TurnNum, conv.ID, err)
	}
	slog.Info("Manager.runTurn: turn committed", "conversation_id", conv.ID, "turn", conv.TurnNum,
		"response_rg", res.ResponseRG, "prompt_rg", out.PromptRG, "ended", out.ShouldEndSession, "degraded", res.Failed)

	return &models.TurnResponse{
		ConversationID: conv.ID,
		TurnNum:        conv.TurnNum,
		Text:           out.ResponseText,
		ResponseRG:     res.ResponseRG,
		PromptRG:       out.PromptRG,
		ActiveRG:       out.NewActiveRG,
		CurrentEntity:  out.NewCurrentEntity,
		Ended:          out.ShouldEndSession,
		Degraded:       res.Failed,
	}, nil
}
