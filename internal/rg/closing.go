package rg

import (
	"log/slog"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// ClosingStopText is the last thing said before the session ends.
const ClosingStopText = "Okay, I will stop. Thanks for chatting with me!"

// ClosingThreshold is the dialog-act probability of closing above which the
// user is taken to be leaving.
const ClosingThreshold = 0.85

const keyAskedToExit = "has_just_asked_to_exit"

var (
	closingCompliments = []string{
		"It's been so nice to talk to you, you're so easy to talk to.",
		"I've enjoyed our conversation, you're a wonderful conversationalist!",
		"It's been a pleasure to talk to you, you're a really great listener.",
	}
	closingQuestions = []string{
		"I'm hearing that you want to end this conversation. Is that correct?",
		"If I'm understanding correctly, you'd like to end this conversation. Is that right?",
		"Are you saying that you'd like to stop talking for now?",
	}
	closingContinue = []string{
		"Ok! I'm happy you want to keep talking with me.",
		"Great! I'd like to keep talking to you, too.",
		"Sounds good! Let's keep chatting.",
		"I'd love to talk some more!",
	}
)

// ClosingConfirmation asks before ending the conversation and ends it when
// the user confirms.
type ClosingConfirmation struct {
	flow.Base
}

func NewClosingConfirmation() *ClosingConfirmation {
	return &ClosingConfirmation{Base: flow.NewBase(flow.RGClosingConfirmation)}
}

func (c *ClosingConfirmation) InitState() models.State {
	st := flow.BaseState()
	st[keyAskedToExit] = false
	return st
}

// TryingToStop reports whether the user seems to want to leave.
func TryingToStop(turn *flow.Turn) bool {
	utt := turn.Normalized()
	if turn.Annotations != nil && turn.Annotations.DialogAct.Prob(nlu.DialogActClosing) > ClosingThreshold &&
		!strings.Contains(utt, "about") {
		return true
	}
	return regex.TryingToStopTemplate.Matches(utt)
}

func (c *ClosingConfirmation) GetResponse(turn *flow.Turn, state models.State) (*models.ResponseResult, error) {
	utt := turn.Normalized()
	if state.GetBool(keyAskedToExit) {
		switch {
		case turn.Has(models.ResponseTypeYes) || regex.ClosingPositiveConfirmationTemplate.Matches(utt):
			res := respond(ClosingStopText, models.PriorityStrongContinue, false)
			res.AnswerType = models.AnswerEnding
			res.ConditionalState = models.ConditionalState{keyAskedToExit: false}
			return res, nil
		case turn.Has(models.ResponseTypeNo) || regex.ClosingNegativeConfirmationTemplate.Matches(utt):
			res := respond(turn.Choose(closingContinue), models.PriorityStrongContinue, true)
			res.ConditionalState = models.ConditionalState{keyAskedToExit: false}
			return res, nil
		}
		return models.EmptyResponseWithState(models.ConditionalState{keyAskedToExit: false}), nil
	}

	if !TryingToStop(turn) {
		return models.EmptyResponse(), nil
	}
	slog.Debug("ClosingConfirmation.GetResponse: user may be leaving", "utterance", utt)
	res := respond("Alright, "+lowerFirst(turn.Choose(closingCompliments))+" "+turn.Choose(closingQuestions),
		models.PriorityForceStart, false)
	res.AnswerType = models.AnswerQuestionSelfHandling
	res.ConditionalState = models.ConditionalState{keyAskedToExit: true}
	return res, nil
}

func (c *ClosingConfirmation) UpdateIfNotChosen(state models.State, cond models.ConditionalState) models.State {
	out := flow.DefaultUpdateIfNotChosen(state, cond)
	out[keyAskedToExit] = false
	return out
}

// EndsSession reports whether res is the stop response.
func (c *ClosingConfirmation) EndsSession(res *models.ResponseResult) bool {
	return res != nil && res.Text == ClosingStopText
}
