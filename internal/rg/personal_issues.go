package rg

import (
	"embed"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/regex"
	"github.com/BTreeMap/DialogCore/internal/supernode"
)

//go:embed personal_issues
var personalIssuesDefs embed.FS

// KeyEnteringPersonalIssues is set when the user discloses a personal issue
// and the RG takes the conversation.
const KeyEnteringPersonalIssues = "entering_personal_issues"

const (
	keyPITreelet           = "pi_treelet"
	keyQuestionLastTurn    = "question_last_turn"
	keyNeuralLastTurn      = "neural_last_turn"
	keyTurnsSinceActive    = "turns_since_active"
	personalIssuesCooldown = 15

	// Share of personal-issue probability that counts as continued sharing.
	personalDisclosureThreshold = 0.45
)

// Treelets of a personal-issues conversation, as stored in pi_treelet.
const (
	piFirstTurn        = "first_turn"
	piSubsequentTurn   = "subsequent_turn"
	piPossibleContinue = "possible_continue"
	piContinueAccepted = "possible_continue_accepted"
	piEnding           = "ending"
)

// RGs after which a disclosure does not interrupt.
var personalIssuesNoStartAfter = []string{flow.RGMusic}

// PersonalIssues listens to users who share something painful. It offers
// support and never advice.
type PersonalIssues struct {
	*supernode.RG
}

// NewPersonalIssues builds the PERSONAL_ISSUES RG from its embedded
// definitions.
func NewPersonalIssues() (*PersonalIssues, error) {
	lib, err := supernode.Load(personalIssuesDefs, "personal_issues")
	if err != nil {
		return nil, fmt.Errorf("load %s definitions: %w", flow.RGPersonalIssues, err)
	}
	hooks := PersonalIssuesHooks()
	if report := supernode.Graph(lib, hooks); !report.OK() {
		return nil, fmt.Errorf("%s definitions: %w: %v", flow.RGPersonalIssues, supernode.ErrBadDefinition, report.Problems)
	}
	initial := models.State{
		KeyEnteringPersonalIssues: false,
		keyPITreelet:              nil,
		keyQuestionLastTurn:       false,
		keyNeuralLastTurn:         false,
		keyTurnsSinceActive:       personalIssuesCooldown,
	}
	return &PersonalIssues{RG: supernode.NewRG(flow.RGPersonalIssues, lib, hooks, initial)}, nil
}

func (p *PersonalIssues) UpdateIfChosen(state models.State, cond models.ConditionalState) models.State {
	out := p.RG.UpdateIfChosen(state, cond)
	out[keyTurnsSinceActive] = 0
	return out
}

// UpdateIfNotChosen ends any conversation in progress and counts towards the
// cooldown before the next one.
func (p *PersonalIssues) UpdateIfNotChosen(state models.State, cond models.ConditionalState) models.State {
	out := p.RG.UpdateIfNotChosen(state, cond)
	out[KeyEnteringPersonalIssues] = false
	out[keyPITreelet] = nil
	out[keyQuestionLastTurn] = false
	out[keyNeuralLastTurn] = false
	out[keyTurnsSinceActive] = state.GetInt(keyTurnsSinceActive) + 1
	return out
}

// PersonalIssuesHooks are the Go functions PERSONAL_ISSUES's definitions
// refer to.
func PersonalIssuesHooks() supernode.Hooks {
	return supernode.Hooks{
		Entry: func(turn *flow.Turn, state models.State) models.ConditionalState {
			switch {
			case state.GetString(keyPITreelet) != "":
				return nil
			case state.GetInt(keyTurnsSinceActive) < personalIssuesCooldown:
				return nil
			case slices.Contains(personalIssuesNoStartAfter, turn.LastActiveRG):
				return nil
			case !isPersonalIssue(turn):
				return nil
			}
			slog.Debug("PersonalIssues.Entry: disclosure detected", "utterance", turn.Normalized())
			return models.ConditionalState{KeyEnteringPersonalIssues: true}
		},
		NLU: map[string]supernode.NLUFunc{
			"personal_issues_subsequent_turn": func(turn *flow.Turn, state models.State) map[string]any {
				sig := readPersonalIssueSignals(turn, state)
				next, p := nextPersonalIssuesTreelet(state.GetString(keyPITreelet), sig)
				flags := map[string]any{
					"next":           nil,
					"priority":       p,
					"short_response": sig.short,
					"has_neural":     neuralStatement(turn) != "",
				}
				if next != "" {
					flags["next"] = next
				}
				return flags
			},
		},
		Helpers: map[string]supernode.HelperFunc{
			"sample_first_turn_statement":                 sampleWith(firstTurnPhrasing),
			"sample_subsequent_turn_statement":            sampleWith(subsequentTurnPhrasing),
			"sample_partial_subsequent_turn_statement":    sampleWith(partialSubsequentPhrasing),
			"sample_validation_statement":                 sampleWith(validationPhrasing),
			"sample_possible_continue_statement":          sampleWith(possibleContinuePhrasing),
			"sample_possible_continue_accepted_statement": sampleWith(continueAcceptedPhrasing),
			"sample_ending_statement":                     sampleWith(endingPhrasing),
			"response_contains_question": func(_ *supernode.Scope, args ...any) (any, error) {
				for _, a := range args {
					if s, ok := a.(string); ok && strings.Contains(s, "?") {
						return true, nil
					}
				}
				return false, nil
			},
		},
	}
}

// personalIssueSignals are the readings of one utterance the transition
// table branches on.
type personalIssueSignals struct {
	yes, no, disinterested bool
	gratitude              bool
	sharing, continued     bool
	noncommittal, short    bool
	// question is whether the bot's last turn asked one.
	question bool
}

func readPersonalIssueSignals(turn *flow.Turn, state models.State) personalIssueSignals {
	words := turn.Annotations.WordCount()
	return personalIssueSignals{
		yes:           turn.Has(models.ResponseTypeYes),
		no:            turn.Has(models.ResponseTypeNo),
		disinterested: turn.Has(models.ResponseTypeDisinterested),
		gratitude:     isGratitude(turn),
		sharing:       isPersonalIssue(turn),
		continued:     isContinuedSharing(turn),
		noncommittal:  turn.Has(models.ResponseTypeBackchannel) || words <= 5,
		short:         words <= 2,
		question:      state.GetBool(keyQuestionLastTurn),
	}
}

type piTransition struct {
	when     func(personalIssueSignals) bool
	next     string
	priority models.ResponsePriority
}

func piRule(pick func(personalIssueSignals) bool, next string) piTransition {
	return piTransition{when: pick, next: next, priority: models.PriorityStrongContinue}
}

func weakly(t piTransition) piTransition {
	t.priority = models.PriorityWeakContinue
	return t
}

var (
	sigNo            = func(s personalIssueSignals) bool { return s.no }
	sigYes           = func(s personalIssueSignals) bool { return s.yes }
	sigDisinterested = func(s personalIssueSignals) bool { return s.disinterested }
	sigGratitude     = func(s personalIssueSignals) bool { return s.gratitude }
	sigSharing       = func(s personalIssueSignals) bool { return s.sharing }
	sigContinued     = func(s personalIssueSignals) bool { return s.continued }
	sigShort         = func(s personalIssueSignals) bool { return s.short }
	sigNoncommittal  = func(s personalIssueSignals) bool { return s.noncommittal }
)

// personalIssuesTransitions maps the treelet that ran last turn to ordered
// rules; the first that holds picks the next treelet.
var personalIssuesTransitions = map[string][]piTransition{
	piFirstTurn: {
		piRule(sigNo, piEnding),
		piRule(sigDisinterested, piEnding),
		piRule(sigContinued, piSubsequentTurn),
		piRule(sigSharing, piSubsequentTurn),
		piRule(sigShort, piSubsequentTurn),
		piRule(sigGratitude, piEnding),
	},
	piSubsequentTurn: {
		piRule(sigDisinterested, piEnding),
		piRule(sigSharing, piSubsequentTurn),
		piRule(sigContinued, piSubsequentTurn),
		piRule(func(s personalIssueSignals) bool { return s.question && s.short }, piPossibleContinue),
		piRule(func(s personalIssueSignals) bool { return s.question && (s.yes || s.no) }, piSubsequentTurn),
		piRule(func(s personalIssueSignals) bool { return !s.question && (s.gratitude || s.no) }, piEnding),
		piRule(func(s personalIssueSignals) bool { return !s.question && s.short }, piSubsequentTurn),
		piRule(func(s personalIssueSignals) bool { return !s.question && s.yes }, piContinueAccepted),
		weakly(piRule(func(personalIssueSignals) bool { return true }, piPossibleContinue)),
	},
	piPossibleContinue: {
		piRule(sigNo, piEnding),
		piRule(sigGratitude, piEnding),
		piRule(sigDisinterested, piEnding),
		piRule(sigYes, piContinueAccepted),
		piRule(sigSharing, piSubsequentTurn),
		piRule(sigContinued, piSubsequentTurn),
		weakly(piRule(sigShort, piEnding)),
		weakly(piRule(sigNoncommittal, piEnding)),
	},
	piContinueAccepted: {
		piRule(sigSharing, piSubsequentTurn),
		piRule(sigContinued, piSubsequentTurn),
		piRule(sigGratitude, piEnding),
		piRule(sigDisinterested, piEnding),
		piRule(sigNo, piEnding),
		piRule(sigYes, piPossibleContinue),
		piRule(sigNoncommittal, piPossibleContinue),
	},
}

// nextPersonalIssuesTreelet returns "" when no rule of last's row holds.
func nextPersonalIssuesTreelet(last string, sig personalIssueSignals) (string, models.ResponsePriority) {
	for _, t := range personalIssuesTransitions[last] {
		if t.when(sig) {
			return t.next, t.priority
		}
	}
	return "", models.PriorityNo
}

func sentimentOf(turn *flow.Turn) float64 {
	if turn == nil || turn.Annotations == nil || turn.Annotations.Sentiment == nil {
		return 0
	}
	return turn.Annotations.Sentiment.Compound
}

// isPersonalIssue is a negative or neutral disclosure about the user.
func isPersonalIssue(turn *flow.Turn) bool {
	return sentimentOf(turn) <= 0 && regex.PersonalSharingTemplate.Matches(turn.Normalized())
}

func isGratitude(turn *flow.Turn) bool {
	utt := turn.Normalized()
	return sentimentOf(turn) >= 0 && regex.GratitudeTemplate.Matches(utt) && !regex.NegatedGratitudeTemplate.Matches(utt)
}

// isContinuedSharing is the user still opening up: emotional language, a
// long answer, or news about someone close. Questions and topic changes are
// not.
func isContinuedSharing(turn *flow.Turn) bool {
	utt := turn.Normalized()
	if turn.Has(models.ResponseTypeQuestion) || regex.ChangeTopicTemplate.Matches(utt) {
		return false
	}
	words := turn.Annotations.WordCount()
	var disclosure float64
	if turn.Annotations != nil {
		disclosure = turn.Annotations.DialogAct.Prob(nlu.DialogActPersonalIssue)
	}
	return regex.NegativeEmotionTemplate.Matches(utt) ||
		(words >= 5 && regex.PersonalPronounTemplate.Matches(utt)) ||
		disclosure >= personalDisclosureThreshold ||
		words >= 10 ||
		regex.PersonalSharingContinuedTemplate.Matches(utt)
}

// neuralStatement is the first neural candidate that is not a question, the
// same one a no_question neural_generation instruction picks.
func neuralStatement(turn *flow.Turn) string {
	if turn == nil {
		return ""
	}
	for _, c := range turn.Annotations.NeuralCandidates() {
		if text := strings.TrimSpace(c.Text); text != "" && !strings.Contains(text, "?") {
			return text
		}
	}
	return ""
}

// phrasing fills one of its templates' {slot}s with random choices.
type phrasing struct {
	templates []string
	slots     map[string][]string
}

func (p phrasing) sample(turn *flow.Turn) string {
	tmpl := turn.Choose(p.templates)
	names := make([]string, 0, len(p.slots))
	for name := range p.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", turn.Choose(p.slots[name]))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func sampleWith(p phrasing) supernode.HelperFunc {
	return func(s *supernode.Scope, _ ...any) (any, error) {
		return p.sample(s.Turn), nil
	}
}

var (
	piAcknowledgements = []string{
		"Mhm, I see.", "Right, I see.", "Ah, okay then.", "I see.", "Mm, I see.", "Alright, I see.", "Mhm, I hear you.",
	}
	piOfferListen = []string{
		"I'm here to listen if you would like to tell me more.",
		"I would be interested to hear more if you don't mind sharing.",
		"Feel free to continue telling me more.",
		"Please continue telling me more if you would like to.",
		"I'm willing to hear more if you'd like to tell me about it.",
		"I'd be willing to listen if you're willing to continue sharing.",
	}
	piFirstValidate = []string{"I'm sorry to hear that.", "That sounds difficult.", "That's really unfortunate."}
	piValidate      = []string{"That sounds frustrating.", "How awful, I'm sorry.", "That's tough and really unfortunate."}
	piQuestions     = []string{
		"How long have you been feeling this way?",
		"Is there anything you've been doing to help cope with this?",
		"Do you think the situation might improve soon?",
		"Is there anyone who might be able to help you get through this?",
	}
	piAnythingElse = []string{
		"Would you like to tell me more about this?",
		"Is there anything else you would like to tell me about this?",
		"Was there something else you would like to talk about regarding this?",
		"Is there anything else you would like to bring up?",
		"Do you want to talk more about what happened?",
		"Is there anything else you want to tell me?",
	}
	piOK          = []string{"Okay.", "Sure thing.", "That's fine.", "That's alright."}
	piThanking    = []string{"Thank you for talking to me about this today.", "Thanks for sharing this with me."}
	piGladTalked  = []string{"I'm glad that we talked about this.", "I'm happy that we got to talk about this."}
	piReassurance = []string{
		"I hope things will turn out alright.",
		"I hope you'll be fine.",
		"I hope you will be kind to yourself even when things are difficult.",
		"As with all things, we can only take it one step at a time.",
	}
	piListenNextTime = []string{
		"I'm always here to listen if you need it.",
		"I'm always happy to listen if you'd like to talk about this again.",
	}
)

var (
	firstTurnPhrasing = phrasing{
		templates: []string{"Thank you for sharing that with me. {validate} {encourage}"},
		slots:     map[string][]string{"validate": piFirstValidate, "encourage": piOfferListen},
	}
	subsequentTurnPhrasing = phrasing{
		templates: []string{"{validate} {question}", "{validate} {sharing}"},
		slots: map[string][]string{
			"validate": append(append([]string(nil), piFirstValidate...), piValidate...),
			"question": piQuestions,
			"sharing":  piOfferListen,
		},
	}
	partialSubsequentPhrasing = phrasing{
		templates: []string{"{question}", "{sharing}"},
		slots:     map[string][]string{"question": piQuestions, "sharing": piOfferListen},
	}
	validationPhrasing = phrasing{
		templates: []string{"{ack} {validate}"},
		slots:     map[string][]string{"ack": piAcknowledgements, "validate": piValidate},
	}
	possibleContinuePhrasing = phrasing{
		templates: []string{"{ack} {anything_else}"},
		slots:     map[string][]string{"ack": piAcknowledgements, "anything_else": piAnythingElse},
	}
	continueAcceptedPhrasing = phrasing{
		templates: []string{"{ok} {listen}"},
		slots:     map[string][]string{"ok": piOK, "listen": piOfferListen},
	}
	endingPhrasing = phrasing{
		templates: []string{
			"{thanks} {glad} Let's talk about something else then.",
			"{thanks} {reassurance} {next_time} Let's talk about something else then.",
		},
		slots: map[string][]string{
			"thanks": piThanking, "glad": piGladTalked, "reassurance": piReassurance, "next_time": piListenNextTime,
		},
	}
)
