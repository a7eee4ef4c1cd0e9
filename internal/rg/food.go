package rg

import (
	"embed"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/regex"
	"github.com/BTreeMap/DialogCore/internal/supernode"
)

//go:embed food
var foodDefs embed.FS

// KeyEnteringFood is set when the conversation moves to food.
const KeyEnteringFood = "entering_food_rg"

// shortAnswerWords is the longest comment answered with a plain
// acknowledgement.
const shortAnswerWords = 3

// NewFood builds the FOOD RG from its embedded definitions.
func NewFood() (*TopicRG, error) {
	return newTopicRG(flow.RGFood, foodDefs, "food", KeyEnteringFood, FoodHooks())
}

func foodFlags(turn *flow.Turn) map[string]any {
	food := entityIn(turn, models.GroupFood)
	return map[string]any{"has_food": food != nil, "food": food}
}

// FoodHooks are the Go functions FOOD's definitions refer to.
func FoodHooks() supernode.Hooks {
	return supernode.Hooks{
		Entry: func(turn *flow.Turn, _ models.State) models.ConditionalState {
			if entering(turn, models.ResponseTypeFoodKeyword, []string{"food", "cooking", "eating"}, models.GroupFood) {
				return models.ConditionalState{KeyEnteringFood: true}
			}
			return nil
		},
		NLU: map[string]supernode.NLUFunc{
			"food_introductory": func(turn *flow.Turn, _ models.State) map[string]any {
				flags := foodFlags(turn)
				answering := turn.WasActive(flow.RGFood)
				flags["likes_food"] = regex.FoodLikeTemplate.Matches(turn.Normalized()) || (answering && turn.Has(models.ResponseTypeYes))
				flags["dislikes_food"] = answering && turn.Has(models.ResponseTypeNo)
				return flags
			},
			"food_ask_favorite": func(turn *flow.Turn, _ models.State) map[string]any {
				flags := foodFlags(turn)
				flags["no_favorite"] = turn.Has(models.ResponseTypeDontKnow) || turn.Has(models.ResponseTypeNo) ||
					turn.Has(models.ResponseTypeNothing)
				return flags
			},
			"open_ended_user_comment": func(turn *flow.Turn, _ models.State) map[string]any {
				return map[string]any{"short_answer": turn.Annotations.WordCount() <= shortAnswerWords}
			},
		},
		PromptNLU: map[string]supernode.NLUFunc{
			"food_introductory": promptedFlags,
		},
		Helpers: map[string]supernode.HelperFunc{
			"food_factoid": func(_ *supernode.Scope, args ...any) (any, error) {
				var e *models.Entity
				if len(args) > 0 {
					e = models.ToEntity(args[0])
				}
				return FoodFactoid(e), nil
			},
		},
		PromptMethods: map[string]supernode.PromptMethod{
			"ask_favorite_food": func(turn *flow.Turn, _ models.State) (*models.PromptResult, error) {
				g, _ := models.LookupEntityGroup(models.GroupFood)
				return &models.PromptResult{
					Text:         "What's your favorite food?",
					PromptType:   models.PromptContextual,
					ExpectedType: g,
					AnswerType:   models.AnswerQuestionSelfHandling,
				}, nil
			},
		},
		Constants: map[string]string{
			"short_ack": "Got it, thanks for sharing.",
		},
	}
}
