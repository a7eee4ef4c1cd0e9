package rg

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// MaxNeuralTurns is how many user turns NEURAL_CHAT continues one topic for
// before handing the conversation back.
const MaxNeuralTurns = 3

const (
	keyUsedTopics = "used_topics"
	keyTopicTurns = "num_topic_turns"
)

// Neural chat topics.
const (
	TopicCurrentActivities = "current_activities"
	TopicGeneralActivities = "general_activities"
	TopicIcebreaker        = "icebreaker"
	TopicFoodExperiences   = "food_experiences"
)

type neuralTopic struct {
	name string
	// launch marks topics gentle enough to open a conversation with.
	launch   bool
	starters []string
	closing  []string
}

var neuralTopics = []neuralTopic{
	{
		name:     TopicCurrentActivities,
		launch:   true,
		starters: []string{"What have you been up to today?", "What have you been doing today?"},
		closing:  []string{"It sounds like you've had quite a day.", "Thanks for telling me about your day."},
	},
	{
		name:     TopicGeneralActivities,
		launch:   true,
		starters: []string{"What do you like to do in your free time?", "What's something you enjoy doing when you have a day off?"},
		closing:  []string{"That sounds like a great way to spend time.", "I'm glad you have things you enjoy."},
	},
	{
		name:     TopicIcebreaker,
		starters: []string{"If you could travel anywhere in the world, where would you go?", "If you could learn any new skill instantly, what would it be?"},
		closing:  []string{"I love imagining things like that.", "What a fun thing to think about."},
	},
	{
		name:     TopicFoodExperiences,
		starters: []string{"What's the most delicious thing you've eaten recently?"},
		closing:  []string{"Now I'm getting hungry just thinking about it."},
	},
}

func lookupTopic(name string) (neuralTopic, bool) {
	for _, t := range neuralTopics {
		if t.name == name {
			return t, true
		}
	}
	return neuralTopic{}, false
}

// NeuralChat asks open starter questions and keeps the conversation going on
// them with the turn's neural candidates.
type NeuralChat struct {
	flow.Base
	// Now is the clock used for day-of-week greetings.
	Now func() time.Time
}

func NewNeuralChat() *NeuralChat {
	return &NeuralChat{Base: flow.NewBase(flow.RGNeuralChat), Now: time.Now}
}

func (n *NeuralChat) InitState() models.State {
	st := flow.BaseState()
	st[keyUsedTopics] = []string{}
	st[keyTopicTurns] = 0
	return st
}

func (n *NeuralChat) ConsumesHandoffs() []models.SmoothHandoff {
	return []models.SmoothHandoff{models.SmoothHandoffLaunchToNeuralChat}
}

func (n *NeuralChat) GetResponse(turn *flow.Turn, state models.State) (*models.ResponseResult, error) {
	topic, ok := lookupTopic(state.GetString(models.StateKeyNextTreelet))
	if !ok || !turn.WasActive(n.Name()) {
		return models.EmptyResponse(), nil
	}
	done := models.ConditionalState{models.StateKeyNextTreelet: "", keyTopicTurns: 0}

	var nav *models.NavigationalIntent
	if turn.Annotations != nil {
		nav = turn.Annotations.NavigationalIntent
	}
	if turn.Has(models.ResponseTypeDisinterested) || (nav != nil && nav.NegIntent) {
		slog.Debug("NeuralChat.GetResponse: user is not interested", "topic", topic.name)
		res := respond(turn.Choose(regex.Acknowledgements)+" No problem.", models.PriorityStrongContinue, true)
		res.ConditionalState = done
		return res, nil
	}

	turns := state.GetInt(keyTopicTurns) + 1
	cands := turn.Annotations.NeuralCandidates()
	if turns >= MaxNeuralTurns || len(cands) == 0 {
		text := chooseFresh(turn, topic.closing)
		if len(cands) > 0 {
			if c := pickCandidate(cands, false); c != "" {
				text = c
			}
		}
		res := respond(text, models.PriorityStrongContinue, true)
		res.ConditionalState = done
		return res, nil
	}

	res := respond(pickCandidate(cands, true), models.PriorityStrongContinue, false)
	if res.IsEmpty() {
		return models.EmptyResponse(), nil
	}
	res.AnswerType = models.AnswerQuestionSelfHandling
	res.ConditionalState = models.ConditionalState{models.StateKeyNextTreelet: topic.name, keyTopicTurns: turns}
	return res, nil
}

// pickCandidate returns the best candidate that asks a question when
// question is set, or the best one that does not.
func pickCandidate(cands []models.NeuralCandidate, question bool) string {
	for _, c := range cands {
		text := strings.TrimSpace(c.Text)
		if text != "" && strings.HasSuffix(text, "?") == question {
			return text
		}
	}
	return ""
}

func (n *NeuralChat) GetPrompt(turn *flow.Turn, state models.State) (*models.PromptResult, error) {
	handoff := false
	if res := turn.OwnResponse(turn.ResponseRG); res != nil {
		handoff = res.SmoothHandoff == models.SmoothHandoffLaunchToNeuralChat
	}
	used := state.GetStringSlice(keyUsedTopics)
	var topic *neuralTopic
	for i := range neuralTopics {
		t := &neuralTopics[i]
		if slices.Contains(used, t.name) || (handoff && !t.launch) {
			continue
		}
		topic = t
		break
	}
	if topic == nil {
		return models.EmptyPrompt(), nil
	}

	text := turn.Choose(topic.starters)
	if topic.name == TopicCurrentActivities {
		text = n.dayGreeting(turn) + " " + text
	}
	p := &models.PromptResult{
		Text:       text,
		PromptType: models.PromptGeneric,
		AnswerType: models.AnswerQuestionSelfHandling,
		ConditionalState: models.ConditionalState{
			models.StateKeyNextTreelet: topic.name,
			keyUsedTopics:              append(used, topic.name),
			keyTopicTurns:              0,
		},
	}
	if handoff {
		p.PromptType = models.PromptForceStart
	}
	slog.Debug("NeuralChat.GetPrompt: starter", "topic", topic.name, "handoff", handoff)
	return p, nil
}

// dayGreeting names the weekday in the user's timezone when it is known.
func (n *NeuralChat) dayGreeting(turn *flow.Turn) string {
	now := n.Now()
	if tz, ok := turn.UserAttributes[models.UserAttrTimezone].(string); ok && tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			now = now.In(loc)
		} else {
			slog.Debug("NeuralChat.dayGreeting: unknown timezone", "timezone", tz)
		}
	}
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return "I hope you're having a relaxing weekend."
	case time.Friday:
		return "Happy Friday!"
	}
	return fmt.Sprintf("I hope your %s is going well.", now.Weekday())
}

func (n *NeuralChat) UpdateIfNotChosen(state models.State, cond models.ConditionalState) models.State {
	out := flow.DefaultUpdateIfNotChosen(state, cond)
	out[keyTopicTurns] = 0
	return out
}

// ReduceSize forgets which topics were used.
func (n *NeuralChat) ReduceSize(state models.State) models.State {
	out := flow.DefaultReduceSize(state)
	out[keyUsedTopics] = []string{}
	return out
}
