package rg

import (
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// FallbackResponse is the universal fallback apology.
const FallbackResponse = "Sorry, I'm not sure how to answer that."

// FallbackPrompts are the generic openers FALLBACK offers every turn.
var FallbackPrompts = []string{
	"So, what would you like to talk about next?",
	"Is there anything in particular you'd like to chat about?",
	"What's something that's been on your mind lately?",
	"Tell me, what's something you're looking forward to?",
}

var posNavResponses = []string{
	"I'd love to talk about %s, but I'm afraid I don't know much about it yet.",
	"Hmm, I don't know enough about %s to chat about it right now.",
}

const keyFallbackCount = "used_fallback_response"

// Fallback answers when nothing else can, and always has a prompt ready.
type Fallback struct {
	flow.Base
}

func NewFallback() *Fallback {
	return &Fallback{Base: flow.NewBase(flow.RGFallback)}
}

func (f *Fallback) InitState() models.State {
	st := flow.BaseState()
	st[keyFallbackCount] = 0
	return st
}

func (f *Fallback) GetResponse(turn *flow.Turn, state models.State) (*models.ResponseResult, error) {
	if turn.WasActive(f.Name()) {
		var options []string
		switch {
		case turn.Has(models.ResponseTypeDontKnow):
			options = regex.ResponseToDontKnow
		case turn.Has(models.ResponseTypeEverything):
			options = regex.ResponseToEverything
		case turn.Has(models.ResponseTypeNothing):
			options = regex.ResponseToNothing
		case turn.Has(models.ResponseTypeBackchannel):
			options = regex.ResponseToBackChanneling
		}
		if options != nil {
			return respond(turn.Choose(options), models.PriorityWeakContinue, true), nil
		}
	} else if ann := turn.Annotations; ann != nil {
		if nav := ann.NavigationalIntent; nav != nil && nav.PosIntent && nav.PosTopic != "" {
			text := fmt.Sprintf(turn.Choose(posNavResponses), nav.PosTopic)
			return respond(text, models.PriorityWeakContinue, true), nil
		}
	}

	n := state.GetInt(keyFallbackCount)
	slog.Debug("Fallback.GetResponse: universal fallback", "used", n)
	res := respond(FallbackResponse, models.PriorityUniversalFallback, true)
	res.AnswerType = models.AnswerEnding
	res.ConditionalState = models.ConditionalState{keyFallbackCount: n + 1}
	return res, nil
}

func (f *Fallback) GetPrompt(turn *flow.Turn, _ models.State) (*models.PromptResult, error) {
	return &models.PromptResult{
		Text:       chooseFresh(turn, FallbackPrompts),
		PromptType: models.PromptGeneric,
		AnswerType: models.AnswerQuestionHandoff,
	}, nil
}
