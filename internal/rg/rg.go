// Package rg holds the built-in response generators: the fixed-policy RGs
// that guard every turn, the neural chat and fallback RGs, and the
// supernode-driven topic RGs.
package rg

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
)

// All builds every built-in RG.
func All() ([]flow.ResponseGenerator, error) {
	music, err := NewMusic()
	if err != nil {
		return nil, fmt.Errorf("build MUSIC: %w", err)
	}
	food, err := NewFood()
	if err != nil {
		return nil, fmt.Errorf("build FOOD: %w", err)
	}
	personal, err := NewPersonalIssues()
	if err != nil {
		return nil, fmt.Errorf("build PERSONAL_ISSUES: %w", err)
	}
	return []flow.ResponseGenerator{
		NewLaunch(),
		NewClosingConfirmation(),
		NewComplaint(),
		NewRedQuestion(),
		NewOffensiveUser(),
		NewOneTurnHack(),
		NewAcknowledgment(),
		music,
		food,
		personal,
		NewNeuralChat(),
		NewFallback(),
	}, nil
}

// NewRegistry registers every built-in RG.
func NewRegistry() (*flow.Registry, error) {
	rgs, err := All()
	if err != nil {
		return nil, err
	}
	return flow.NewRegistry(rgs...)
}

func respond(text string, p models.ResponsePriority, needsPrompt bool) *models.ResponseResult {
	return &models.ResponseResult{
		Text:        text,
		Priority:    p,
		NeedsPrompt: needsPrompt,
		AnswerType:  models.AnswerStatement,
	}
}

// chooseFresh picks an option the bot did not just say, when there is one.
func chooseFresh(turn *flow.Turn, options []string) string {
	if turn == nil || turn.LastBotText == "" {
		return turn.Choose(options)
	}
	fresh := make([]string, 0, len(options))
	for _, o := range options {
		if !strings.Contains(turn.LastBotText, o) {
			fresh = append(fresh, o)
		}
	}
	if len(fresh) == 0 {
		return turn.Choose(options)
	}
	return turn.Choose(fresh)
}

func hasWord(normalized string, words ...string) bool {
	for _, tok := range strings.FieldsFunc(normalized, func(r rune) bool { return r == ' ' || r == '\'' }) {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}
