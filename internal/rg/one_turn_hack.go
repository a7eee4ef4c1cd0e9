package rg

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// NameCorrectionText apologises for getting the user's name wrong.
const NameCorrectionText = "Oops, it sounds like I got your name wrong. I'm so sorry about that! I won't make that mistake again."

const missedTopic = "I think I missed the last part of that sentence. Can you tell me one more time what you want to talk about?"

type chattyReply struct {
	text        string
	needsPrompt bool
}

// Hand-written replies to whole utterances.
var chattyReplies = map[string]chattyReply{
	"let's talk":                        {"Ok, I'd love to talk to you! What would you like to talk about?", false},
	"can we talk":                       {"I think we're already talking! What would you like to talk about?", false},
	"can we have a conversation":        {"I think we're already having a conversation! Is there something in particular you want to have a conversation about?", false},
	"start a conversation":              {"Ok! I'm happy to choose a topic.", true},
	"let's talk about":                  {missedTopic, false},
	"talk to me about":                  {missedTopic, false},
	"i want to talk about":              {missedTopic, false},
	"hi":                                {"Well hi there! Let's keep chatting, huh?", true},
	"hello":                             {"Hello to you too! I'd love to keep chatting with you.", true},
	"can we chat":                       {"I think we're already chatting! What would you like to chat about?", false},
	"chat with me":                      {"Of course! I'd love to chat with you. What do you want to chat about?", false},
	"thank you":                         {"You're welcome!", true},
	"start talking":                     {"Ok. What do you want to talk about?", false},
	"your mom":                          {"Hm, I actually don't have a mother...", true},
	"i want to talk":                    {"Ok! What do you want to talk about?", false},
	"what do you want to talk about":    {"I like to talk about lots of things!", true},
	"what are you doing":                {"Right now, I'm chatting with you!", true},
	"what's up":                         {"Not much! What's up with you?", false},
	"how was your day":                  {"My day has been pretty good so far.", true},
	"i have a question":                 {"All right. Ask away!", false},
	"can i ask you a question":          {"All right. Ask away!", false},
	"why are you asking":                {"I'm asking because I like getting to know you better.", true},
	"why do you want to know":           {"I'm asking because I like getting to know you better.", true},
	"do you know jokes":                 {"What do you call a can opener that doesn't work? A can't opener!", true},
	"tell me a joke":                    {"Why is Peter Pan always flying? He neverlands.", true},
	"tell me something funny":           {"What do you give to a sick lemon? Lemon aid!", true},
	"good morning":                      {"Good morning to you too!", true},
	"what would you like to talk about": {"Hmm, let me think.", true},
	"whatever you want to talk about":   {"If you insist!", true},
}

var (
	storyReplies = []string{
		"Here's a short one. A little robot once asked the moon why it followed her home. The moon said it just liked the company. I feel the same way about our chat!",
		"Once upon a time, a curious cloud wanted to see the ocean up close, so it rained. And that's how it finally got to swim.",
	}
	complimentReplies = []string{
		"Thank you, that's so kind of you to say!",
		"Aw, thanks! I'm really enjoying talking with you too.",
	}
	ageReply = "It's hard to say since I don't have a real birthday!"
)

// OneTurnHack answers utterances that need a single fixed reply: chatty
// phrases, name corrections and simple requests.
type OneTurnHack struct {
	flow.Base
}

func NewOneTurnHack() *OneTurnHack {
	return &OneTurnHack{Base: flow.NewBase(flow.RGOneTurnHack)}
}

// UpdateEntity keeps the current entity out of one-turn replies.
func (o *OneTurnHack) UpdateEntity(*flow.Turn, models.State) models.UpdateEntity {
	return models.UpdateEntity{}
}

// IsNameCorrection reports whether the user is correcting the name the bot
// used.
func IsNameCorrection(turn *flow.Turn) bool {
	utt := turn.Normalized()
	if regex.MyNameIsNotTemplate.Matches(utt) {
		return true
	}
	return regex.MyNameIsNonContextualTemplate.Matches(utt) && turn.LastActiveRG != "" && turn.LastActiveRG != flow.RGLaunch
}

func (o *OneTurnHack) GetResponse(turn *flow.Turn, _ models.State) (*models.ResponseResult, error) {
	utt := turn.Normalized()
	if utt == "" {
		return models.EmptyResponse(), nil
	}
	var nav *models.NavigationalIntent
	if turn.Annotations != nil {
		nav = turn.Annotations.NavigationalIntent
	}

	var res *models.ResponseResult
	kind := ""
	switch reply, chatty := chattyReplies[utt]; {
	case chatty:
		kind, res = "chatty", respond(reply.text, models.PriorityForceStart, reply.needsPrompt)
	case IsNameCorrection(turn):
		kind, res = "name_correction", respond(NameCorrectionText, models.PriorityForceStart, true)
		res.UserAttributes = map[string]any{
			models.UserAttrName:             nil,
			models.UserAttrNameCorrected:    true,
			models.UserAttrRecognizedByName: false,
		}
	case regex.SayThatAgainTemplate.Matches(utt) && turn.LastBotText != "":
		kind, res = "repeat", respond("I said, "+lowerFirst(turn.LastBotText), models.PriorityForceStart, false)
		res.AnswerType = turn.LastAnswerType
	case regex.RequestNameTemplate.Matches(utt):
		text := "I don't think you've told me your name yet."
		if name := turn.UserAttributes.Name(); name != "" {
			text = fmt.Sprintf("Your name is %s, right? I remember because it's a lovely name.", name)
		}
		kind, res = "request_name", respond(text, models.PriorityForceStart, true)
	case regex.RequestStoryTemplate.Matches(utt):
		kind, res = "story", respond(chooseFresh(turn, storyReplies), models.PriorityForceStart, true)
	case regex.RequestAgeTemplate.Matches(utt):
		kind, res = "age", respond(ageReply, models.PriorityForceStart, true)
	case regex.ComplimentTemplate.Matches(utt):
		kind, res = "compliment", respond(turn.Choose(complimentReplies), models.PriorityForceStart, true)
	case nav != nil && nav.PosIntent && nav.PosTopicIsHesitatingAsk && !strings.Contains(utt, "depends on"):
		kind, res = "hesitate", respond(missedTopic, models.PriorityForceStart, false)
	case nav != nil && nav.PosIntent && nav.PosTopic == "":
		kind, res = "no_topic", respond("Ok, I'd love to talk to you! What would you like to talk about?", models.PriorityForceStart, false)
	default:
		return models.EmptyResponse(), nil
	}
	slog.Debug("OneTurnHack.GetResponse: matched", "kind", kind)
	return res, nil
}

func lowerFirst(s string) string {
	if s == "" || strings.HasPrefix(s, "I ") || strings.HasPrefix(s, "I'") {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
