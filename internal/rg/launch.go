package rg

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/orsinium-labs/stopwords"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// Greeting variants by pipeline.
var launchPhrases = map[string]string{
	"":         "Hi, this is a social bot. I'd love to get to know you a bit better before we chat! Is it all right if I ask for your name?",
	"research": "Hi, this is a research social bot. Thanks for helping us out today! Before we chat, is it all right if I ask for your name?",
	"demo":     "Hello there! I'm a social bot and I love a good conversation. Before we start, may I ask your name?",
}

var (
	greetWithName = []string{
		"Well it's nice to meet you, %s! I'm excited to chat with you today.",
		"Nice to meet you, %s! I'm looking forward to chatting with you today.",
		"Glad to meet you, %s! I appreciate you taking the time to chat with me today.",
	}
	greetWithoutName = []string{
		"Great to meet you! Let's get to chatting!",
		"Nice to meet you! Let's get started!",
		"Glad to meet you! Let's get chatting!",
	}
)

const (
	askNameFirstTime = "Ok, great! What's your name?"
	askNameAgain     = "Sorry, I didn't catch your name. Would you mind repeating it?"
	askNameRepeat    = "Ok! What's your name?"
	askNameWhy       = "Oh, I just want to get to know you! But if you'd prefer to stay anonymous, that's no problem. So, do you mind telling me your name?"
	movingOn         = "No problem. Let's move on!"
)

const (
	treeletHandleName = "handle_name"
	keyAskedName      = "asked_name_counter"
)

type nameIntent int

const (
	intentGaveName nameIntent = iota
	intentYesWithoutName
	intentNoName
	intentRepeat
	intentWhy
	intentUnclear
)

var (
	english    = stopwords.MustGet("en")
	titleCaser = cases.Title(language.English)
)

// Launch opens the conversation, learns the user's name and hands over to
// NEURAL_CHAT.
type Launch struct {
	flow.Base
}

func NewLaunch() *Launch {
	return &Launch{Base: flow.NewBase(flow.RGLaunch)}
}

func (l *Launch) InitState() models.State {
	st := flow.BaseState()
	st[keyAskedName] = 0
	return st
}

// LaunchPhrase returns the greeting for a pipeline, or the default one.
func LaunchPhrase(pipeline string) string {
	if p, ok := launchPhrases[strings.ToLower(pipeline)]; ok {
		return p
	}
	return launchPhrases[""]
}

func (l *Launch) GetResponse(turn *flow.Turn, state models.State) (*models.ResponseResult, error) {
	if turn.IsFirstTurn() {
		res := respond(LaunchPhrase(turn.Pipeline), models.PriorityForceStart, false)
		res.AnswerType = models.AnswerQuestionSelfHandling
		res.ConditionalState = models.ConditionalState{models.StateKeyNextTreelet: treeletHandleName}
		// A name carried over from an earlier conversation could belong to
		// someone else.
		res.UserAttributes = map[string]any{models.UserAttrName: nil}
		return res, nil
	}
	if state.GetString(models.StateKeyNextTreelet) != treeletHandleName || !turn.WasActive(l.Name()) {
		return models.EmptyResponse(), nil
	}
	return l.handleName(turn, state), nil
}

func (l *Launch) handleName(turn *flow.Turn, state models.State) *models.ResponseResult {
	intent, name := nameFromUtterance(turn)
	if name != "" && nlu.ContainsOffensive(strings.ToLower(name)) {
		slog.Info("Launch.handleName: ignoring offensive name")
		name = ""
	}
	asked := state.GetInt(keyAskedName)
	slog.Debug("Launch.handleName: detected intent", "intent", intent, "has_name", name != "", "asked", asked)

	askAgain := func(text string) *models.ResponseResult {
		res := respond(text, models.PriorityStrongContinue, false)
		res.AnswerType = models.AnswerQuestionSelfHandling
		res.ConditionalState = models.ConditionalState{
			models.StateKeyNextTreelet: treeletHandleName,
			keyAskedName:               asked + 1,
		}
		return res
	}
	handoff := func(text string) *models.ResponseResult {
		res := respond(text, models.PriorityStrongContinue, true)
		res.SmoothHandoff = models.SmoothHandoffLaunchToNeuralChat
		res.ConditionalState = models.ConditionalState{models.StateKeyNextTreelet: ""}
		return res
	}

	switch intent {
	case intentNoName:
		return handoff(movingOn)
	case intentWhy:
		return askAgain(askNameWhy)
	case intentRepeat:
		return askAgain(askNameRepeat)
	}
	if name != "" {
		res := handoff(fmt.Sprintf(turn.Choose(greetWithName), name))
		res.UserAttributes = map[string]any{models.UserAttrName: name}
		return res
	}
	switch {
	case asked == 0 || intent == intentYesWithoutName:
		return askAgain(askNameFirstTime)
	case asked == 1:
		return askAgain(askNameAgain)
	}
	return handoff(turn.Choose(greetWithoutName))
}

// nameFromUtterance reads the user's answer to "may I ask your name".
func nameFromUtterance(turn *flow.Turn) (nameIntent, string) {
	utt := turn.Normalized()
	if regex.DoesNotWantToSayNameTemplate.Matches(utt) || turn.Has(models.ResponseTypeNegative) {
		return intentNoName, ""
	}
	if hasWord(utt, "what", "repeat") {
		return intentRepeat, ""
	}
	if hasWord(utt, "why") {
		return intentWhy, ""
	}
	if slots := regex.MyNameIsTemplate.Execute(utt); slots != nil {
		for _, w := range strings.Fields(slots["name"]) {
			if !english.Contains(w) && w != "alexa" {
				return intentGaveName, titleCaser.String(w)
			}
		}
	}

	var rest []string
	for _, w := range strings.Fields(utt) {
		if !isYesWord(w) {
			rest = append(rest, w)
		}
	}
	if len(rest) == 1 && !english.Contains(rest[0]) {
		return intentGaveName, titleCaser.String(rest[0])
	}
	if len(rest) == 0 && utt != "" {
		return intentYesWithoutName, ""
	}
	return intentUnclear, ""
}

func isYesWord(w string) bool {
	for _, y := range regex.Yes {
		if w == y {
			return true
		}
	}
	return false
}
