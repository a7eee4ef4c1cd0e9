package flow

import (
	"github.com/BTreeMap/DialogCore/internal/models"
)

// BaseState returns the fields every RG state carries.
func BaseState() models.State {
	return models.State{
		models.StateKeyPrevTreelet:    "",
		models.StateKeyNextTreelet:    "",
		models.StateKeyNumTurnsInRG:   0,
		models.StateKeyRGTakenOver:    nil,
		models.StateKeyTakeoverEntity: nil,
		models.StateKeyCurSupernode:   nil,
	}
}

// Base supplies the default RG behaviour. RGs embed it and override what
// they need.
type Base struct {
	name string
}

// NewBase names an embedded base.
func NewBase(name string) Base { return Base{name: name} }

func (b Base) Name() string { return b.name }

func (b Base) InitState() models.State { return BaseState() }

func (b Base) GetPrompt(*Turn, models.State) (*models.PromptResult, error) {
	return models.EmptyPrompt(), nil
}

func (b Base) UpdateIfChosen(state models.State, cond models.ConditionalState) models.State {
	return DefaultUpdateIfChosen(state, cond)
}

func (b Base) UpdateIfNotChosen(state models.State, cond models.ConditionalState) models.State {
	return DefaultUpdateIfNotChosen(state, cond)
}

// DefaultUpdateIfChosen applies the overlay and counts the turn. The treelet
// that was scheduled becomes the previous one unless the overlay names it.
func DefaultUpdateIfChosen(state models.State, cond models.ConditionalState) models.State {
	ran := state.GetString(models.StateKeyNextTreelet)
	out := state.Apply(cond)
	if !cond.Pending(models.StateKeyPrevTreelet) && ran != "" {
		out[models.StateKeyPrevTreelet] = ran
	}
	out[models.StateKeyNumTurnsInRG] = state.GetInt(models.StateKeyNumTurnsInRG) + 1
	return out
}

// DefaultUpdateIfNotChosen drops the RG out of any treelet or supernode it
// was in. On a state that has never run this changes nothing.
func DefaultUpdateIfNotChosen(state models.State, _ models.ConditionalState) models.State {
	out := state.Clone()
	if out == nil {
		out = BaseState()
	}
	out[models.StateKeyPrevTreelet] = ""
	out[models.StateKeyNextTreelet] = ""
	out[models.StateKeyNumTurnsInRG] = 0
	out[models.StateKeyCurSupernode] = nil
	return out
}
