// Package flow defines the response generator contract, the RG registry and
// the per-RG state registry the turn arbiter drives.
package flow

import (
	"errors"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// Built-in RG names.
const (
	RGLaunch              = "LAUNCH"
	RGClosingConfirmation = "CLOSING_CONFIRMATION"
	RGComplaint           = "COMPLAINT"
	RGRedQuestion         = "RED_QUESTION"
	RGOffensiveUser       = "OFFENSIVE_USER"
	RGOneTurnHack         = "ONE_TURN_HACK"
	RGNeuralChat          = "NEURAL_CHAT"
	RGFallback            = "FALLBACK"
	RGMusic               = "MUSIC"
	RGFood                = "FOOD"
	RGPersonalIssues      = "PERSONAL_ISSUES"
	RGAcknowledgment      = "ACKNOWLEDGMENT"
)

var (
	// ErrUnknownRG is returned when a name is not in the registry.
	ErrUnknownRG = errors.New("unknown response generator")
	// ErrDuplicateRG is returned when two RGs share a name.
	ErrDuplicateRG = errors.New("duplicate response generator")
	// ErrHandoffOwner is returned when a smooth-handoff tag has two consumers.
	ErrHandoffOwner = errors.New("smooth handoff consumed by more than one response generator")
	// ErrStateTooLarge is returned when a state stays over the size limit
	// after ReduceSize.
	ErrStateTooLarge = errors.New("response generator state too large")
)

// ResponseGenerator is one sub-dialog. The arbiter calls it sequentially
// with its own state; it must not mutate that state in place and must not
// block on the network.
type ResponseGenerator interface {
	Name() string
	// InitState returns the state of an RG that has never run.
	InitState() models.State
	GetResponse(turn *Turn, state models.State) (*models.ResponseResult, error)
	GetPrompt(turn *Turn, state models.State) (*models.PromptResult, error)
	UpdateIfChosen(state models.State, cond models.ConditionalState) models.State
	UpdateIfNotChosen(state models.State, cond models.ConditionalState) models.State
}

// EntityUpdater is implemented by RGs that may overrule the entity tracker
// on turns where they were last active.
type EntityUpdater interface {
	UpdateEntity(turn *Turn, state models.State) models.UpdateEntity
}

// SizeReducer is implemented by RGs whose state has its own non-essential
// parts to drop when oversize.
type SizeReducer interface {
	ReduceSize(state models.State) models.State
}

// SessionEnder is implemented by RGs whose chosen response can end the
// conversation.
type SessionEnder interface {
	EndsSession(res *models.ResponseResult) bool
}

// HandoffConsumer is implemented by RGs that supply the prompt for smooth
// handoff tags.
type HandoffConsumer interface {
	ConsumesHandoffs() []models.SmoothHandoff
}
