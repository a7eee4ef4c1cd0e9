// Package store provides storage backends for DialogCore conversations.
//
// A conversation is one record holding everything the next turn needs plus an
// append-only turn log. CommitTurn writes both atomically.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/DialogCore/internal/models"
)

var (
	// ErrNotFound is returned when the conversation does not exist.
	ErrNotFound = errors.New("conversation not found")
	// ErrStaleTurn is returned by CommitTurn when another turn was committed
	// for the conversation since the record was loaded.
	ErrStaleTurn = errors.New("conversation changed since it was loaded")
	// ErrTurnExists is returned when a turn number is logged twice.
	ErrTurnExists = errors.New("turn already logged")
	// ErrNoDSN is returned when a database store is opened without a DSN.
	ErrNoDSN = errors.New("database DSN not set")
)

// Store persists conversations and their turn logs.
type Store interface {
	SaveConversation(ctx context.Context, c *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	AppendTurn(ctx context.Context, t models.TurnRecord) error
	ListTurns(ctx context.Context, conversationID string) ([]models.TurnRecord, error)
	DeleteConversation(ctx context.Context, id string) error
	// CommitTurn stores c and logs t in one transaction. The stored record
	// must still be at turn t.TurnNum, or be absent when t is the first turn.
	CommitTurn(ctx context.Context, c *models.Conversation, t models.TurnRecord) error
	Close() error
}

// Opts holds configuration options for stores.
type Opts struct {
	DSN      string
	CacheTTL time.Duration
}

// Option is a functional option for configuring stores.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithCacheTTL sets how long CachedStore keeps a conversation record.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.CacheTTL = ttl }
}

// DetectDSNType returns "postgres" for PostgreSQL connection strings and
// "sqlite3" for everything else.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}

// Open picks the backend by DSN. An empty DSN gives an in-memory store.
func Open(dsn string) (Store, error) {
	switch {
	case dsn == "":
		slog.Debug("store.Open: no DSN, using in-memory store")
		return NewInMemoryStore(), nil
	case DetectDSNType(dsn) == "postgres":
		return NewPostgresStore(WithPostgresDSN(dsn))
	default:
		return NewSQLiteStore(WithSQLiteDSN(dsn))
	}
}

// InMemoryStore keeps conversations in process memory.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	turns         map[string][]models.TurnRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[string]*models.Conversation),
		turns:         make(map[string][]models.TurnRecord),
	}
}

// cloneConversation deep-copies c so callers never share maps with the store.
func cloneConversation(c *models.Conversation) (*models.Conversation, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode conversation %s: %w", c.ID, err)
	}
	var out models.Conversation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", c.ID, err)
	}
	return &out, nil
}

func (s *InMemoryStore) SaveConversation(_ context.Context, c *models.Conversation) error {
	cp, err := cloneConversation(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.ID] = cp
	return nil
}

func (s *InMemoryStore) GetConversation(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	c, ok := s.conversations[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneConversation(c)
}

func (s *InMemoryStore) AppendTurn(_ context.Context, t models.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendTurnLocked(t)
}

func (s *InMemoryStore) appendTurnLocked(t models.TurnRecord) error {
	if _, ok := s.conversations[t.ConversationID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, t.ConversationID)
	}
	log := s.turns[t.ConversationID]
	if slices.ContainsFunc(log, func(r models.TurnRecord) bool { return r.TurnNum == t.TurnNum }) {
		return fmt.Errorf("%w: %s turn %d", ErrTurnExists, t.ConversationID, t.TurnNum)
	}
	s.turns[t.ConversationID] = append(log, t)
	return nil
}

func (s *InMemoryStore) ListTurns(_ context.Context, conversationID string) ([]models.TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, conversationID)
	}
	out := slices.Clone(s.turns[conversationID])
	slices.SortFunc(out, func(a, b models.TurnRecord) int { return a.TurnNum - b.TurnNum })
	return out, nil
}

func (s *InMemoryStore) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.conversations, id)
	delete(s.turns, id)
	return nil
}

func (s *InMemoryStore) CommitTurn(_ context.Context, c *models.Conversation, t models.TurnRecord) error {
	cp, err := cloneConversation(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkTurn(s.conversations[c.ID], c.ID, t.TurnNum); err != nil {
		return err
	}
	prev, existed := s.conversations[c.ID]
	s.conversations[c.ID] = cp
	if err := s.appendTurnLocked(t); err != nil {
		if existed {
			s.conversations[c.ID] = prev
		} else {
			delete(s.conversations, c.ID)
		}
		return err
	}
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

// checkTurn enforces that a turn commits on top of the record it was
// computed from.
func checkTurn(stored *models.Conversation, id string, turnNum int) error {
	switch {
	case stored == nil && turnNum != 0:
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	case stored != nil && stored.TurnNum != turnNum:
		return fmt.Errorf("%w: %s is at turn %d, not %d", ErrStaleTurn, id, stored.TurnNum, turnNum)
	}
	return nil
}
