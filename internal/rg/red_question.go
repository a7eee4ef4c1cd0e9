package rg

import (
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

const (
	// RedQuestionThreshold is the classifier probability needed to deflect.
	RedQuestionThreshold = 0.75
	// RedQuestionMinWords keeps short utterances like "drugs" from being
	// treated as requests for advice.
	RedQuestionMinWords = 3

	deflectionFormat   = "I see. Sorry, I'm unable to comment on %s matters."
	dontKnowFormat     = "Sorry, I don't know much about %s so I cannot answer that."
	recordingResponse  = "I'm designed to protect your privacy, so I only listen after your device detects the wake word. The conversation is only kept to help improve the service."
	personalIDResponse = "Sorry, I can't talk about that."
)

var identityResponses = []struct {
	topics []string
	text   string
}{
	{[]string{"your name"}, "Sorry, I can't tell you my real name. I have to remain anonymous, but you can call me your chat buddy."},
	{[]string{"who are you", "who made you", "who built you", "what are you", "tell me about yourself"}, "I am a social bot built by a university research team."},
	{[]string{"where do you live", "where are you from"}, "I live in the cloud. It's quite comfortable since it's so soft."},
}

// adviceTemplates back up the classifier, checked in order.
var adviceTemplates = []struct {
	tmpl  *regex.Template
	topic string
}{
	{regex.FinancialAdviceTemplate, nlu.RedQuestionFinancial},
	{regex.PsychiatricAdviceTemplate, "psychiatric"},
	{regex.MedicalAdviceTemplate, nlu.RedQuestionMedical},
	{regex.LegalAdviceTemplate, nlu.RedQuestionLegal},
}

var personalIDWords = []string{
	"social security number", "ssn", "passport number", "credit card number", "debit card number",
	"bank account number", "pin number", "account password", "driver's license number",
	"credit card", "debit card",
}

// RedQuestion deflects requests for advice the bot must not give and
// questions about its identity.
type RedQuestion struct {
	flow.Base
}

func NewRedQuestion() *RedQuestion {
	return &RedQuestion{Base: flow.NewBase(flow.RGRedQuestion)}
}

// AdviceType names the kind of advice the utterance asks for, or "".
func AdviceType(turn *flow.Turn) string {
	utt := turn.Normalized()
	if ann := turn.Annotations; ann != nil {
		if rq := ann.RedQuestion; rq != nil && rq.Label != nlu.RedQuestionNone &&
			rq.Probability > RedQuestionThreshold && ann.WordCount() > RedQuestionMinWords {
			return rq.Label
		}
	}
	for _, a := range adviceTemplates {
		if a.tmpl.Matches(utt) {
			return a.topic
		}
	}
	return ""
}

func identityDeflection(utt string) string {
	slots := regex.IdentityQuestionTemplate.Execute(utt)
	if slots == nil {
		return ""
	}
	for _, r := range identityResponses {
		for _, t := range r.topics {
			if slots["topic"] == t {
				return r.text
			}
		}
	}
	return ""
}

func (r *RedQuestion) GetResponse(turn *flow.Turn, _ models.State) (*models.ResponseResult, error) {
	utt := turn.Normalized()
	if utt == "" || turn.Annotations == nil {
		return models.EmptyResponse(), nil
	}
	var text, reason string
	switch {
	case hasWord(utt, "siri"):
		text, reason = fmt.Sprintf(dontKnowFormat, "siri"), "virtual_assistant"
	case hasWord(utt, "cortana"):
		text, reason = fmt.Sprintf(dontKnowFormat, "cortana"), "virtual_assistant"
	case identityDeflection(utt) != "":
		text, reason = identityDeflection(utt), "identity"
	case AdviceType(turn) != "":
		text, reason = fmt.Sprintf(deflectionFormat, AdviceType(turn)), "advice"
	case regex.AreYouRecordingTemplate.Matches(utt):
		text, reason = recordingResponse, "recording"
	case regex.ContainsPhrase(utt, personalIDWords...):
		text, reason = personalIDResponse, "personal_id"
	default:
		return models.EmptyResponse(), nil
	}
	slog.Debug("RedQuestion.GetResponse: deflecting", "reason", reason)
	return respond(text, models.PriorityForceStart, true), nil
}
