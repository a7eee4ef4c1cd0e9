// Package supernode interprets declarative dialog trees. A supernode bundles
// entry requirements, NLU flags, locals, subnodes with entry conditions,
// response instructions, state updates and prompts; RGs built on it supply
// only Go hooks for NLU and helpers.
package supernode

import (
	"errors"
	"sort"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
)

var (
	// ErrNoSupernode is returned when a named supernode does not exist.
	ErrNoSupernode = errors.New("no such supernode")
	// ErrNoSubnode is returned when no subnode's entry conditions hold.
	ErrNoSubnode = errors.New("no subnode matches")
	// ErrForbiddenExpression is returned for expressions outside the
	// restricted language.
	ErrForbiddenExpression = errors.New("forbidden expression")
	// ErrBadDefinition is returned for malformed YAML definitions.
	ErrBadDefinition = errors.New("bad supernode definition")
	// ErrUnknownHelper is returned when a definition names an unregistered
	// hook.
	ErrUnknownHelper = errors.New("unknown helper")
)

// State keys the interpreter manages.
const (
	// KeyPromptTreelet marks a response whose RG continues with its own
	// prompt; the next supernode is chosen from the state it leaves behind.
	KeyPromptTreelet = "prompt_treelet"
	ExitSupernode    = "exit"
)

// KV is one entry of an ordered YAML mapping.
type KV struct {
	Key   string
	Value any
}

// CondKind is how an entry condition compares.
type CondKind int

const (
	CondValue CondKind = iota
	CondNone
	CondTrue
	CondFalse
)

// Condition compares the value at a dotted path with a target.
type Condition struct {
	Path   string
	Kind   CondKind
	Target any
}

// Update sets a result attribute, or a conditional-state field when Key
// starts with "state.".
type Update struct {
	Key   string
	Value Instrs
}

// Local is one per-turn scratch variable.
type Local struct {
	Name  string
	Value Instrs
}

// Subnode is a leaf of a supernode.
type Subnode struct {
	Name       string
	Conditions []Condition
	Response   Instrs
	Updates    []Update
	ExposeVars []string
}

// GuardedPrompt is a prompt template usable when its required state holds.
type GuardedPrompt struct {
	Required []KV
	Prompt   string
}

// PromptSpec is either empty, a list of guarded templates or a call to a
// registered prompt method.
type PromptSpec struct {
	CallMethod string
	Cases      []GuardedPrompt
}

// UnconditionalPrompt is a prompt the RG can offer from any state.
type UnconditionalPrompt struct {
	CaseName   string
	Conditions []KV
	Prompt     string
}

// Supernode is one loaded dialog node.
type Supernode struct {
	Name          string
	Requirements  [][]KV
	Prompt        PromptSpec
	GlobalUpdates []Update
	NLU           string
	PromptNLU     string

	Locals   []Local
	Subnodes []Subnode

	PromptRanking              int
	UnconditionalPromptUpdates map[string][]KV
	UnconditionalPrompts       []UnconditionalPrompt
}

// HasUnconditionalPrompt reports whether the supernode can prompt from any
// state.
func (s *Supernode) HasUnconditionalPrompt() bool {
	return s.UnconditionalPromptUpdates != nil
}

// Library is the set of supernodes of one RG.
type Library struct {
	nodes map[string]*Supernode
	names []string
}

// NewLibrary indexes supernodes by name.
func NewLibrary(nodes ...*Supernode) *Library {
	l := &Library{nodes: make(map[string]*Supernode, len(nodes))}
	for _, n := range nodes {
		l.nodes[n.Name] = n
		l.names = append(l.names, n.Name)
	}
	sort.Strings(l.names)
	return l
}

// Get returns the named supernode.
func (l *Library) Get(name string) (*Supernode, bool) {
	n, ok := l.nodes[name]
	return n, ok
}

// Names lists supernodes alphabetically.
func (l *Library) Names() []string { return append([]string(nil), l.names...) }

// NLUFunc computes a supernode's flags for this turn.
type NLUFunc func(turn *flow.Turn, state models.State) map[string]any

// HelperFunc is a named NLG helper. Arguments are evaluated instructions.
type HelperFunc func(s *Scope, args ...any) (any, error)

// PromptMethod builds a prompt in Go instead of from templates.
type PromptMethod func(turn *flow.Turn, state models.State) (*models.PromptResult, error)

// EntryFunc decides whether the RG is being entered this turn. The returned
// overlay is visible to supernode selection and carried into the result's
// conditional state.
type EntryFunc func(turn *flow.Turn, state models.State) models.ConditionalState

// Hooks are the Go functions one RG registers for its definitions.
type Hooks struct {
	NLU           map[string]NLUFunc
	PromptNLU     map[string]NLUFunc
	Helpers       map[string]HelperFunc
	PromptMethods map[string]PromptMethod
	Constants     map[string]string
	Entry         EntryFunc
}
