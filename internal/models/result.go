package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidResult          = errors.New("invalid result")
	ErrTextWithoutPriority    = fmt.Errorf("%w: non-empty text with priority NO", ErrInvalidResult)
	ErrPriorityWithoutText    = fmt.Errorf("%w: empty text with priority above NO", ErrInvalidResult)
	ErrExpectedTypeWithPrompt = fmt.Errorf("%w: expected_type set on a response that needs a prompt", ErrInvalidResult)
	ErrHandoffWithoutPrompt   = fmt.Errorf("%w: smooth_handoff set on a response that does not need a prompt", ErrInvalidResult)
	ErrHandoffWithExpected    = fmt.Errorf("%w: smooth_handoff and expected_type both set", ErrInvalidResult)
	ErrPromptTypeWithoutText  = fmt.Errorf("%w: empty prompt text with prompt type above NO", ErrInvalidResult)
)

// ResponseResult is an RG's candidate response for this turn.
type ResponseResult struct {
	Text             string           `json:"text"`
	Priority         ResponsePriority `json:"priority"`
	NeedsPrompt      bool             `json:"needs_prompt"`
	CurEntity        *Entity          `json:"cur_entity,omitempty"`
	ExpectedType     *EntityGroup     `json:"expected_type,omitempty"`
	AnswerType       AnswerType       `json:"answer_type"`
	SmoothHandoff    SmoothHandoff    `json:"smooth_handoff,omitempty"`
	ConditionalState ConditionalState `json:"conditional_state,omitempty"`

	// UserAttributes are merged into the conversation's user attributes at
	// commit when this result is chosen. A nil value deletes the attribute.
	UserAttributes map[string]any `json:"user_attributes,omitempty"`
}

// EmptyResponse is the result of an RG with nothing to say.
func EmptyResponse() *ResponseResult {
	return &ResponseResult{Priority: PriorityNo, AnswerType: AnswerNone}
}

// EmptyResponseWithState carries a conditional state for an RG with nothing
// to say, so it can still record what it saw.
func EmptyResponseWithState(cond ConditionalState) *ResponseResult {
	r := EmptyResponse()
	r.ConditionalState = cond
	return r
}

// IsEmpty reports whether the result has no text.
func (r *ResponseResult) IsEmpty() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

// Validate checks the structural invariants of a response.
func (r *ResponseResult) Validate() error {
	empty := r.IsEmpty()
	switch {
	case empty && r.Priority != PriorityNo:
		return ErrPriorityWithoutText
	case !empty && r.Priority == PriorityNo:
		return ErrTextWithoutPriority
	case r.ExpectedType != nil && r.NeedsPrompt:
		return ErrExpectedTypeWithPrompt
	case r.SmoothHandoff != SmoothHandoffNone && !r.NeedsPrompt:
		return ErrHandoffWithoutPrompt
	case r.SmoothHandoff != SmoothHandoffNone && r.ExpectedType != nil:
		return ErrHandoffWithExpected
	}
	return nil
}

// PromptResult is an RG's candidate prompt for this turn.
type PromptResult struct {
	Text             string           `json:"text"`
	PromptType       PromptType       `json:"prompt_type"`
	CurEntity        *Entity          `json:"cur_entity,omitempty"`
	ExpectedType     *EntityGroup     `json:"expected_type,omitempty"`
	AnswerType       AnswerType       `json:"answer_type"`
	ConditionalState ConditionalState `json:"conditional_state,omitempty"`
	UserAttributes   map[string]any   `json:"user_attributes,omitempty"`
}

// EmptyPrompt is the result of an RG with no prompt to offer.
func EmptyPrompt() *PromptResult {
	return &PromptResult{PromptType: PromptNo, AnswerType: AnswerNone}
}

// EmptyPromptWithState carries a conditional state for an RG with no prompt.
func EmptyPromptWithState(cond ConditionalState) *PromptResult {
	p := EmptyPrompt()
	p.ConditionalState = cond
	return p
}

// IsEmpty reports whether the prompt has no text.
func (p *PromptResult) IsEmpty() bool {
	return p == nil || strings.TrimSpace(p.Text) == ""
}

// Validate checks the structural invariants of a prompt.
func (p *PromptResult) Validate() error {
	empty := p.IsEmpty()
	switch {
	case empty && p.PromptType != PromptNo:
		return ErrPromptTypeWithoutText
	case !empty && p.PromptType == PromptNo:
		return fmt.Errorf("%w: non-empty prompt text with prompt type NO", ErrInvalidResult)
	}
	return nil
}

// UpdateEntity is what a last-active RG returns to override the entity
// tracker before responses are gathered.
type UpdateEntity struct {
	Update bool
	Entity *Entity
}
