// Package tracker maintains the conversation's current entity across turns.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/orsinium-labs/stopwords"

	"github.com/BTreeMap/DialogCore/internal/kg"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
)

// PageviewCut is the popularity a linked entity needs to be adopted without
// an expected type.
const PageviewCut = 10000

// MaxHistory bounds the per-turn entity history kept in the record.
const MaxHistory = 50

// Blacklist holds canonical names too generic to become the current entity
// on popularity alone.
var Blacklist = map[string]bool{
	"Song": true, "Album": true, "Music": true, "Food": true, "Name": true, "Human": true,
	"Yes": true, "Okay": true, "Thank you": true, "Love": true, "Time": true, "Sport": true,
	"Musical instrument": true, "Movie": true, "Film": true, "Book": true,
}

// Rule records which tracker rule decided the current entity.
type Rule int

const (
	RuleNone Rule = iota
	RuleExpectedType
	RuleMentioned
	RulePopular
	RuleRetained
	RuleCleared
	RuleOverridden
)

func (r Rule) String() string {
	switch r {
	case RuleExpectedType:
		return "expected_type"
	case RuleMentioned:
		return "mentioned"
	case RulePopular:
		return "popular"
	case RuleRetained:
		return "retained"
	case RuleCleared:
		return "cleared"
	case RuleOverridden:
		return "overridden"
	}
	return "none"
}

// TurnEntities is the focus of one turn as seen from each side.
type TurnEntities struct {
	User     *models.Entity `json:"user,omitempty"`
	Response *models.Entity `json:"response,omitempty"`
	Prompt   *models.Entity `json:"prompt,omitempty"`
}

// Tracker is persisted with the conversation and mutated only at commit; the
// arbiter works on a Clone during the turn.
type Tracker struct {
	Cur                   *models.Entity      `json:"cur_entity,omitempty"`
	ExpectedType          *models.EntityGroup `json:"expected_type,omitempty"`
	InitiatedByUser       bool                `json:"initiated_by_user"`
	LastRule              Rule                `json:"last_rule"`
	History               []TurnEntities      `json:"history,omitempty"`
	TalkedFinished        []*models.Entity    `json:"talked_finished,omitempty"`
	TalkedRejected        []*models.Entity    `json:"talked_rejected,omitempty"`
	UserMentionedUntalked []*models.Entity    `json:"user_mentioned_untalked,omitempty"`
}

// New returns a tracker with no current entity.
func New() *Tracker { return &Tracker{} }

// Load restores a persisted tracker. Empty input yields a fresh tracker.
func Load(raw json.RawMessage) (*Tracker, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return New(), nil
	}
	var t Tracker
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode entity tracker: %w", err)
	}
	return &t, nil
}

// Marshal serializes the tracker for the conversation record.
func (t *Tracker) Marshal() (json.RawMessage, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode entity tracker: %w", err)
	}
	return data, nil
}

// Clone returns a deep enough copy for the turn to mutate freely.
func (t *Tracker) Clone() *Tracker {
	c := *t
	c.History = slices.Clone(t.History)
	c.TalkedFinished = slices.Clone(t.TalkedFinished)
	c.TalkedRejected = slices.Clone(t.TalkedRejected)
	c.UserMentionedUntalked = slices.Clone(t.UserMentionedUntalked)
	return &c
}

// CurEntityInitiatedByUserThisTurn reports whether this turn's entity was
// adopted from the user's words by an expected type or by popularity.
func (t *Tracker) CurEntityInitiatedByUserThisTurn() bool {
	return t != nil && t.InitiatedByUser
}

var stop = stopwords.MustGet("en")

// InitForTurn applies the tracker rules to the new annotations before any RG
// responds. Graph errors only disable the alias check.
func (t *Tracker) InitForTurn(ctx context.Context, g kg.Graph, ann *models.Annotations) {
	if ann == nil {
		ann = &models.Annotations{}
	}
	prev := t.Cur
	t.InitiatedByUser = false
	candidates := ann.EntityLinker.TopHighPrec()

	switch {
	case t.adoptExpected(candidates):
		t.LastRule = RuleExpectedType
		t.InitiatedByUser = true
	case prev != nil && mentions(ctx, g, prev, ann):
		t.LastRule = RuleMentioned
	case t.adoptPopular(candidates):
		t.LastRule = RulePopular
		t.InitiatedByUser = true
	case prev != nil && ann.NavigationalIntent.IsTopicChange():
		if ann.NavigationalIntent.NegIntent {
			t.RejectEntity(prev)
		}
		t.Cur = nil
		t.LastRule = RuleCleared
	default:
		t.LastRule = RuleRetained
	}

	for _, c := range candidates {
		if !c.Entity.Equal(t.Cur) && !t.known(c.Entity) && !containsEntity(t.UserMentionedUntalked, c.Entity) {
			t.UserMentionedUntalked = append(t.UserMentionedUntalked, c.Entity)
		}
	}
	t.UserMentionedUntalked = slices.DeleteFunc(t.UserMentionedUntalked, func(e *models.Entity) bool {
		return e.Equal(t.Cur)
	})
	t.History = append(t.History, TurnEntities{User: t.Cur})
	if len(t.History) > MaxHistory {
		t.History = slices.Clone(t.History[len(t.History)-MaxHistory:])
	}

	slog.Debug("Tracker.InitForTurn: decided", "rule", t.LastRule, "previous", prev, "current", t.Cur,
		"initiated_by_user", t.InitiatedByUser)
}

func (t *Tracker) adoptExpected(candidates []models.LinkedSpan) bool {
	if t.ExpectedType == nil {
		return false
	}
	for _, c := range candidates {
		if t.ExpectedType.Matches(c.Entity) {
			t.Cur = c.Entity
			return true
		}
	}
	return false
}

func (t *Tracker) adoptPopular(candidates []models.LinkedSpan) bool {
	for _, c := range candidates {
		if c.Entity.Pageview > PageviewCut && !Blacklist[c.Entity.Name] && !containsEntity(t.TalkedRejected, c.Entity) {
			t.Cur = c.Entity
			return true
		}
	}
	return false
}

func mentions(ctx context.Context, g kg.Graph, e *models.Entity, ann *models.Annotations) bool {
	if ann == nil || ann.Normalized == "" {
		return false
	}
	entry := kg.Entry{Entity: e}
	if g != nil {
		aliases, err := g.Aliases(ctx, e.Name)
		if err != nil && !errors.Is(err, kg.ErrNotFound) {
			slog.Warn("Tracker.mentions: alias lookup failed", "entity", e.Name, "error", err)
		}
		entry.Aliases = aliases
	}
	forms := slices.DeleteFunc(kg.SurfaceForms(entry), stop.Contains)
	if len(forms) == 0 {
		return false
	}
	m, err := nlu.NewKeywordMatcher(forms)
	if err != nil {
		slog.Warn("Tracker.mentions: build matcher failed", "entity", e.Name, "error", err)
		return false
	}
	return m.Contains(ann.Normalized)
}

// Override replaces the tracker's decision with one made by the last active
// RG.
func (t *Tracker) Override(u models.UpdateEntity) {
	if !u.Update {
		return
	}
	t.Cur = u.Entity
	t.InitiatedByUser = false
	t.LastRule = RuleOverridden
	if n := len(t.History); n > 0 {
		t.History[n-1].User = u.Entity
	}
}

// UpdateFromResponse records the chosen response's focus. A declared entity
// replaces the current one; the expected type is reset.
func (t *Tracker) UpdateFromResponse(r *models.ResponseResult) {
	if r == nil {
		return
	}
	t.ExpectedType = r.ExpectedType
	if r.CurEntity != nil {
		t.Cur = r.CurEntity
	}
	if n := len(t.History); n > 0 {
		t.History[n-1].Response = t.Cur
	}
}

// UpdateFromPrompt records the chosen prompt's focus and expected type.
func (t *Tracker) UpdateFromPrompt(p *models.PromptResult) {
	if p == nil {
		return
	}
	if p.ExpectedType != nil {
		t.ExpectedType = p.ExpectedType
	}
	if p.CurEntity != nil {
		t.Cur = p.CurEntity
	}
	if n := len(t.History); n > 0 {
		t.History[n-1].Prompt = t.Cur
	}
}

// FinishEntity marks e as fully discussed.
func (t *Tracker) FinishEntity(e *models.Entity) {
	if e == nil || containsEntity(t.TalkedFinished, e) {
		return
	}
	t.TalkedFinished = append(t.TalkedFinished, e)
	t.UserMentionedUntalked = slices.DeleteFunc(t.UserMentionedUntalked, e.Equal)
}

// RejectEntity marks e as unwanted by the user so popularity never brings it
// back.
func (t *Tracker) RejectEntity(e *models.Entity) {
	if e == nil || containsEntity(t.TalkedRejected, e) {
		return
	}
	t.TalkedRejected = append(t.TalkedRejected, e)
	t.UserMentionedUntalked = slices.DeleteFunc(t.UserMentionedUntalked, e.Equal)
}

// TalkedAbout reports whether e was finished or rejected.
func (t *Tracker) TalkedAbout(e *models.Entity) bool { return t.known(e) }

func (t *Tracker) known(e *models.Entity) bool {
	return containsEntity(t.TalkedFinished, e) || containsEntity(t.TalkedRejected, e)
}

func containsEntity(list []*models.Entity, e *models.Entity) bool {
	return slices.ContainsFunc(list, e.Equal)
}
