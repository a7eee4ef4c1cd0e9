package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// openTimeout bounds the connectivity check and schema setup at startup.
const openTimeout = 10 * time.Second

// openSQL opens dsn with driver, lets tune size the pool, checks the
// connection and applies the embedded schema.
func openSQL(name, driver, dsn, schema string, tune func(*sql.DB)) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNoDSN)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", name, err)
	}
	tune(db)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: apply schema: %w", name, err)
	}
	slog.Debug(name+".open: schema applied", "driver", driver)
	return db, nil
}

func collectOpts(opts []Option) Opts {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// sqlStore holds the queries shared by the SQLite and Postgres backends.
// Queries are written with '?' placeholders and rebound per dialect.
type sqlStore struct {
	db         *sql.DB
	name       string
	dollarVars bool
	// lockClause is appended to the turn check inside CommitTurn.
	lockClause string
}

const conversationColumns = `id, turn_num, last_active_rg, last_answer_type, last_bot_text,
	current_entity, user_attributes, rg_states, tracker, ended, created_at, updated_at`

const upsertConversation = `INSERT INTO conversations (` + conversationColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		turn_num = excluded.turn_num,
		last_active_rg = excluded.last_active_rg,
		last_answer_type = excluded.last_answer_type,
		last_bot_text = excluded.last_bot_text,
		current_entity = excluded.current_entity,
		user_attributes = excluded.user_attributes,
		rg_states = excluded.rg_states,
		tracker = excluded.tracker,
		ended = excluded.ended,
		updated_at = excluded.updated_at`

const insertTurn = `INSERT INTO turns (conversation_id, turn_num, user_text, bot_text, response_rg, prompt_rg, entity_name, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// rebind converts '?' placeholders to '$n' for Postgres.
func (s *sqlStore) rebind(query string) string {
	if !s.dollarVars {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// jsonColumn encodes v for a nullable JSON column.
func jsonColumn(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return nil, nil
	}
	return string(raw), nil
}

func conversationArgs(c *models.Conversation) ([]any, error) {
	entity, err := jsonColumn(c.CurrentEntity)
	if err != nil {
		return nil, fmt.Errorf("encode current entity: %w", err)
	}
	attrs, err := jsonColumn(c.UserAttributes)
	if err != nil {
		return nil, fmt.Errorf("encode user attributes: %w", err)
	}
	states, err := jsonColumn(c.RGStates)
	if err != nil {
		return nil, fmt.Errorf("encode rg states: %w", err)
	}
	var tr any
	if len(c.Tracker) > 0 {
		tr = string(c.Tracker)
	}
	return []any{
		c.ID, c.TurnNum, c.LastActiveRG, int(c.LastAnswerType), c.LastBotText,
		entity, attrs, states, tr, c.Ended, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	}, nil
}

// scanConversation scans a conversation from a single sql.Row.
func scanConversation(row *sql.Row) (*models.Conversation, error) {
	var c models.Conversation
	var answer int
	var entity, attrs, states, tr sql.NullString
	err := row.Scan(
		&c.ID, &c.TurnNum, &c.LastActiveRG, &answer, &c.LastBotText,
		&entity, &attrs, &states, &tr, &c.Ended, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.LastAnswerType = models.AnswerType(answer)
	if entity.Valid {
		if err := json.Unmarshal([]byte(entity.String), &c.CurrentEntity); err != nil {
			return nil, fmt.Errorf("decode current entity: %w", err)
		}
	}
	if attrs.Valid {
		if err := json.Unmarshal([]byte(attrs.String), &c.UserAttributes); err != nil {
			return nil, fmt.Errorf("decode user attributes: %w", err)
		}
	}
	if states.Valid {
		if err := json.Unmarshal([]byte(states.String), &c.RGStates); err != nil {
			return nil, fmt.Errorf("decode rg states: %w", err)
		}
	}
	if tr.Valid {
		c.Tracker = json.RawMessage(tr.String)
	}
	return &c, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *sqlStore) saveConversation(ctx context.Context, ex execer, c *models.Conversation) error {
	args, err := conversationArgs(c)
	if err != nil {
		return err
	}
	if _, err := ex.ExecContext(ctx, s.rebind(upsertConversation), args...); err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", c.ID, err)
	}
	return nil
}

func (s *sqlStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	if err := s.saveConversation(ctx, s.db, c); err != nil {
		slog.Error(s.name+".SaveConversation failed", "error", err, "conversationID", c.ID)
		return err
	}
	slog.Debug(s.name+".SaveConversation succeeded", "conversationID", c.ID, "turn", c.TurnNum)
	return nil
}

func (s *sqlStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+conversationColumns+` FROM conversations WHERE id = ?`), id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug(s.name+".GetConversation not found", "conversationID", id)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		slog.Error(s.name+".GetConversation failed", "error", err, "conversationID", id)
		return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}
	return c, nil
}

func (s *sqlStore) exists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM conversations WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *sqlStore) appendTurn(ctx context.Context, tx *sql.Tx, t models.TurnRecord) error {
	ok, err := s.exists(ctx, tx, t.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to check conversation %s: %w", t.ConversationID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, t.ConversationID)
	}
	var dup int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM turns WHERE conversation_id = ? AND turn_num = ?`),
		t.ConversationID, t.TurnNum).Scan(&dup)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s turn %d", ErrTurnExists, t.ConversationID, t.TurnNum)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check turn log: %w", err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(insertTurn), t.ConversationID, t.TurnNum, t.UserText, t.BotText,
		t.ResponseRG, nilIfEmpty(t.PromptRG), nilIfEmpty(t.EntityName), t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert turn %d of %s: %w", t.TurnNum, t.ConversationID, err)
	}
	return nil
}

// inTx runs fn in a transaction and commits it when fn succeeds.
func (s *sqlStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) AppendTurn(ctx context.Context, t models.TurnRecord) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error { return s.appendTurn(ctx, tx, t) })
	if err != nil {
		slog.Error(s.name+".AppendTurn failed", "error", err, "conversationID", t.ConversationID, "turn", t.TurnNum)
		return err
	}
	return nil
}

func (s *sqlStore) ListTurns(ctx context.Context, conversationID string) ([]models.TurnRecord, error) {
	ok, err := s.exists(ctx, s.db, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation %s: %w", conversationID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, conversationID)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT conversation_id, turn_num, user_text, bot_text, response_rg,
		prompt_rg, entity_name, created_at FROM turns WHERE conversation_id = ? ORDER BY turn_num`), conversationID)
	if err != nil {
		slog.Error(s.name+".ListTurns query failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.TurnRecord
	for rows.Next() {
		var t models.TurnRecord
		var promptRG, entity sql.NullString
		if err := rows.Scan(&t.ConversationID, &t.TurnNum, &t.UserText, &t.BotText, &t.ResponseRG,
			&promptRG, &entity, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		t.PromptRG = promptRG.String
		t.EntityName = entity.String
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turn rows: %w", err)
	}
	slog.Debug(s.name+".ListTurns succeeded", "conversationID", conversationID, "count", len(turns))
	return turns, nil
}

func (s *sqlStore) DeleteConversation(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM turns WHERE conversation_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete turns: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM conversations WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		slog.Debug(s.name+".DeleteConversation failed", "error", err, "conversationID", id)
		return err
	}
	slog.Debug(s.name+".DeleteConversation succeeded", "conversationID", id)
	return nil
}

func (s *sqlStore) CommitTurn(ctx context.Context, c *models.Conversation, t models.TurnRecord) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var stored *models.Conversation
		var turnNum int
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT turn_num FROM conversations WHERE id = ?`+s.lockClause), c.ID).Scan(&turnNum)
		switch {
		case err == nil:
			stored = &models.Conversation{ID: c.ID, TurnNum: turnNum}
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to read turn counter: %w", err)
		}
		if err := checkTurn(stored, c.ID, t.TurnNum); err != nil {
			return err
		}
		if err := s.saveConversation(ctx, tx, c); err != nil {
			return err
		}
		return s.appendTurn(ctx, tx, t)
	})
	if err != nil {
		slog.Error(s.name+".CommitTurn failed", "error", err, "conversationID", c.ID, "turn", t.TurnNum)
		return err
	}
	slog.Debug(s.name+".CommitTurn succeeded", "conversationID", c.ID, "turn", t.TurnNum)
	return nil
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	slog.Debug("Closing " + s.name + " database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close "+s.name+" database", "error", err)
	}
	return err
}
