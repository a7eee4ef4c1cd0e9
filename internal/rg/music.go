package rg

import (
	"embed"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/regex"
	"github.com/BTreeMap/DialogCore/internal/supernode"
)

//go:embed music
var musicDefs embed.FS

// KeyEnteringMusic is set when the conversation moves to music.
const KeyEnteringMusic = "entering_music_rg"

// Songs the bot says it has been listening to.
var botSongs = []string{"Bohemian Rhapsody", "Shake It Off", "Here Comes the Sun"}

var musicGroups = []string{
	models.GroupMusician, models.GroupMusicalWork, models.GroupMusicalGenre, models.GroupMusicalInstrument,
}

// NewMusic builds the MUSIC RG from its embedded definitions.
func NewMusic() (*TopicRG, error) {
	return newTopicRG(flow.RGMusic, musicDefs, "music", KeyEnteringMusic, MusicHooks())
}

// MusicHooks are the Go functions MUSIC's definitions refer to.
func MusicHooks() supernode.Hooks {
	return supernode.Hooks{
		Entry: func(turn *flow.Turn, _ models.State) models.ConditionalState {
			if entering(turn, models.ResponseTypeMusicKeyword, []string{"music", "songs", "singers", "bands"}, musicGroups...) {
				return models.ConditionalState{KeyEnteringMusic: true}
			}
			return nil
		},
		NLU: map[string]supernode.NLUFunc{
			"music_introductory": func(turn *flow.Turn, _ models.State) map[string]any {
				utt := turn.Normalized()
				answering := turn.WasActive(flow.RGMusic)
				unsure := turn.Has(models.ResponseTypeDontKnow)
				return map[string]any{
					"likes_music":    regex.MusicLikeTemplate.Matches(utt) || (answering && turn.Has(models.ResponseTypeYes)),
					"dislikes_music": !unsure && ((answering && turn.Has(models.ResponseTypeNo)) || turn.Has(models.ResponseTypeNegative)),
				}
			},
			"music_handle_opinion": func(turn *flow.Turn, _ models.State) map[string]any {
				return map[string]any{
					"has_genre":        entityIn(turn, models.GroupMusicalGenre) != nil,
					"likes_everything": turn.Has(models.ResponseTypeEverything),
				}
			},
			"music_ask_singer": func(turn *flow.Turn, _ models.State) map[string]any {
				musician := entityIn(turn, models.GroupMusician)
				return map[string]any{
					"has_musician": musician != nil,
					"musician":     musician,
					"dont_know":    turn.Has(models.ResponseTypeDontKnow) || turn.Has(models.ResponseTypeNothing),
				}
			},
			"music_ask_song": func(turn *flow.Turn, _ models.State) map[string]any {
				return map[string]any{"has_song": entityIn(turn, models.GroupMusicalWork) != nil}
			},
		},
		PromptNLU: map[string]supernode.NLUFunc{
			"music_introductory": promptedFlags,
		},
		Helpers: map[string]supernode.HelperFunc{
			"song_name": func(s *supernode.Scope, _ ...any) (any, error) {
				return s.Turn.Choose(botSongs), nil
			},
		},
		PromptMethods: map[string]supernode.PromptMethod{
			"ask_singer": func(turn *flow.Turn, _ models.State) (*models.PromptResult, error) {
				g, _ := models.LookupEntityGroup(models.GroupMusician)
				return &models.PromptResult{
					Text:         turn.Choose([]string{"Who's your favorite singer or band?", "Is there a singer or band you've been listening to a lot?"}),
					PromptType:   models.PromptContextual,
					ExpectedType: g,
					AnswerType:   models.AnswerQuestionSelfHandling,
				}, nil
			},
		},
	}
}
