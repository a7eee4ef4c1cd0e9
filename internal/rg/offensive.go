package rg

import (
	"log/slog"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// Offence categories, counted per conversation.
const (
	OffenceCriticism = "criticism"
	OffenceSexual    = "sexual"
	OffenceCurse     = "curse"
)

var (
	offensiveFirst = []string{
		"I'd rather not talk about that.",
		"I'd prefer not to discuss that.",
		"That's something I'd rather not discuss.",
	}
	offensiveAgain = map[string][]string{
		OffenceCriticism: {"What makes you say that?", "Why did you say that?", "What made you say that?"},
		OffenceSexual:    {"That kind of talk makes me uncomfortable. Let's keep things friendly."},
		OffenceCurse:     {"Let's keep our conversation friendly, please."},
	}
	criticismFollowup = "Thanks for letting me know. I'm always trying to get better."
)

// OffensiveUser deflects offensive user input. Repeated criticism gets a
// question asking why, answered on the following turn. Offensive turns
// leave RG state untouched, so the offence counts live in the user
// attributes.
type OffensiveUser struct {
	flow.Base
}

func NewOffensiveUser() *OffensiveUser {
	return &OffensiveUser{Base: flow.NewBase(flow.RGOffensiveUser)}
}

// CategorizeOffence names the kind of offence in an offensive utterance.
func CategorizeOffence(turn *flow.Turn) string {
	utt := turn.Normalized()
	switch {
	case regex.CriticismTemplate.Matches(utt):
		return OffenceCriticism
	case turn.Annotations != nil && turn.Annotations.RedQuestion != nil &&
		turn.Annotations.RedQuestion.Label == nlu.RedQuestionSexual:
		return OffenceSexual
	}
	return OffenceCurse
}

func (o *OffensiveUser) GetResponse(turn *flow.Turn, _ models.State) (*models.ResponseResult, error) {
	followUp, _ := turn.UserAttributes[models.UserAttrOffenceFollowUp].(bool)
	if followUp && turn.WasActive(o.Name()) && !turn.Annotations.IsOffensive() {
		res := respond(criticismFollowup, models.PriorityForceStart, true)
		res.UserAttributes = map[string]any{models.UserAttrOffenceFollowUp: nil}
		return res, nil
	}
	if !turn.Annotations.IsOffensive() {
		return models.EmptyResponse(), nil
	}
	utt := turn.Normalized()
	if hasWord(utt, regex.Yes...) || hasWord(utt, regex.No...) {
		slog.Debug("OffensiveUser.GetResponse: offensive but a yes/no answer, not responding")
		return models.EmptyResponse(), nil
	}

	kind := CategorizeOffence(turn)
	counts := OffenceCounts(turn.UserAttributes)
	seen := counts[kind]
	counts[kind] = seen + 1
	slog.Info("OffensiveUser.GetResponse: deflecting", "kind", kind, "seen", seen)

	stored := make(map[string]any, len(counts))
	for k, v := range counts {
		stored[k] = v
	}
	var res *models.ResponseResult
	if seen == 0 {
		res = respond(turn.Choose(offensiveFirst), models.PriorityForceStart, true)
	} else {
		res = respond(turn.Choose(offensiveAgain[kind]), models.PriorityForceStart, kind != OffenceCriticism)
	}
	var followUpAttr any
	if seen > 0 && kind == OffenceCriticism {
		res.AnswerType = models.AnswerQuestionSelfHandling
		followUpAttr = true
	}
	res.UserAttributes = map[string]any{
		models.UserAttrOffenceCounts:   stored,
		models.UserAttrOffenceFollowUp: followUpAttr,
	}
	return res, nil
}

// OffenceCounts returns how often each kind of offence was deflected.
func OffenceCounts(attrs models.UserAttributes) map[string]int {
	out := map[string]int{}
	if m, ok := attrs[models.UserAttrOffenceCounts].(map[string]any); ok {
		for k, v := range m {
			out[k] = models.ToInt(v)
		}
	}
	return out
}
