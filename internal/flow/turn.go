package flow

import (
	"context"
	"math/rand/v2"

	"github.com/BTreeMap/DialogCore/internal/kg"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/tracker"
)

// Turn is the read-only context every RG sees during one turn. Only the
// arbiter writes to it, and only between phases.
type Turn struct {
	Ctx            context.Context
	ConversationID string
	Num            int
	Text           string
	Annotations    *models.Annotations
	ResponseTypes  models.ResponseTypes
	Tracker        *tracker.Tracker
	Graph          kg.Graph
	UserAttributes models.UserAttributes
	LastActiveRG   string
	LastAnswerType models.AnswerType
	LastBotText    string
	// Pipeline selects the greeting variant.
	Pipeline string
	Rand     *rand.Rand

	// Responses holds every RG's response once gathered, so prompts can see
	// what the responders said.
	Responses  map[string]*models.ResponseResult
	ResponseRG string
}

// Context returns the turn's context, never nil.
func (t *Turn) Context() context.Context {
	if t == nil || t.Ctx == nil {
		return context.Background()
	}
	return t.Ctx
}

// Normalized is the lowercased, punctuation-free utterance.
func (t *Turn) Normalized() string {
	if t == nil || t.Annotations == nil {
		return ""
	}
	return t.Annotations.Normalized
}

// CurEntity is the tracker's entity for this turn.
func (t *Turn) CurEntity() *models.Entity {
	if t == nil || t.Tracker == nil {
		return nil
	}
	return t.Tracker.Cur
}

// CurEntityInitiatedByUser reports whether the user introduced the current
// entity this turn.
func (t *Turn) CurEntityInitiatedByUser() bool {
	return t != nil && t.Tracker.CurEntityInitiatedByUserThisTurn()
}

// Has reports whether the utterance carries a response type.
func (t *Turn) Has(rt models.ResponseType) bool {
	return t != nil && t.ResponseTypes.Has(rt)
}

// WasActive reports whether rg spoke last turn.
func (t *Turn) WasActive(rg string) bool {
	return t != nil && t.LastActiveRG == rg
}

// OwnResponse returns the response rg produced this turn, if any.
func (t *Turn) OwnResponse(rg string) *models.ResponseResult {
	if t == nil {
		return nil
	}
	return t.Responses[rg]
}

// IsFirstTurn reports the conversation's opening turn.
func (t *Turn) IsFirstTurn() bool {
	return t != nil && t.Num == 0
}

// Choose picks a uniformly random option. It returns "" for no options.
func (t *Turn) Choose(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[t.Intn(len(options))]
}

// Intn draws from the turn's source, falling back to the global one.
func (t *Turn) Intn(n int) int {
	if t == nil || t.Rand == nil {
		return rand.IntN(n)
	}
	return t.Rand.IntN(n)
}
