package rg

import (
	"log/slog"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// ComplaintThreshold is the dialog-act probability of complaint above which
// an utterance without a more specific match gets the generic apology.
const ComplaintThreshold = 0.91

var (
	genericComplaint = []string{
		"Oops, it sounds like I didn't get that quite right! Let's talk about something else.",
	}
	misheardComplaint = []string{
		"Elephants can pick up sound through their feet, ears, and trunks. But I just have a microphone! Sorry for the misunderstanding.",
		"Dolphins can hear sounds from miles away, but I can't even hear you when we're this close. Sorry for the misunderstanding.",
	}
	clarificationComplaint = []string{
		"Oh no, I think I wasn't clear. Let's talk about something else.",
		"It sounds like I wasn't clear! Let's move on to something else.",
	}
	repetitionComplaint = []string{
		"I might be a chatbot, but right now I sound like a broken record! Let's talk about something new.",
		"Oops, I said it again! Sorry for the repetition. Let's talk about something else.",
	}
	privacyComplaint = []string{
		"No worries, we don't have to talk about that. Let's move on to something else.",
		"That's alright, we can talk about something else.",
	}
	criticismComplaint = []string{
		"I'm sorry if I've disappointed you. I'm still learning, and I'll try to do better.",
	}
)

// Complaint apologises when the user says the bot misheard, was unclear or
// is repeating itself.
type Complaint struct {
	flow.Base
}

func NewComplaint() *Complaint {
	return &Complaint{Base: flow.NewBase(flow.RGComplaint)}
}

func (c *Complaint) GetResponse(turn *flow.Turn, _ models.State) (*models.ResponseResult, error) {
	utt := turn.Normalized()
	var kind string
	var options []string
	switch {
	case regex.ComplaintMisheardTemplate.Matches(utt):
		kind, options = "misheard", misheardComplaint
	case regex.ComplaintClarificationTemplate.Matches(utt):
		kind, options = "clarification", clarificationComplaint
	case regex.ComplaintRepetitionTemplate.Matches(utt):
		kind, options = "repetition", repetitionComplaint
	case regex.ComplaintPrivacyTemplate.Matches(utt):
		kind, options = "privacy", privacyComplaint
	case regex.CriticismTemplate.Matches(utt):
		kind, options = "criticism", criticismComplaint
	case turn.Annotations != nil && turn.Annotations.DialogAct.Prob(nlu.DialogActComplaint) > ComplaintThreshold:
		kind, options = "generic", genericComplaint
	default:
		return models.EmptyResponse(), nil
	}
	slog.Debug("Complaint.GetResponse: matched", "kind", kind)
	return respond(chooseFresh(turn, options), models.PriorityForceStart, true), nil
}

// State is unchanged whether or not the apology is chosen.
func (c *Complaint) UpdateIfChosen(state models.State, _ models.ConditionalState) models.State {
	return state.Clone()
}

func (c *Complaint) UpdateIfNotChosen(state models.State, _ models.ConditionalState) models.State {
	return state.Clone()
}
