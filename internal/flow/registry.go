package flow

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// Fixed tie-break positions. Content RGs sort alphabetically between the
// last of the head and neural chat.
var (
	headOrder = []string{RGLaunch, RGClosingConfirmation, RGComplaint, RGRedQuestion, RGOffensiveUser, RGOneTurnHack}
	tailOrder = []string{RGNeuralChat, RGFallback}
)

// Registry holds the RGs of one dialog, in tie-break order.
type Registry struct {
	rgs      map[string]ResponseGenerator
	order    []string
	rank     map[string]int
	handoffs map[models.SmoothHandoff]string
}

// NewRegistry validates names and smooth-handoff ownership and fixes the
// tie-break order.
func NewRegistry(rgs ...ResponseGenerator) (*Registry, error) {
	r := &Registry{
		rgs:      make(map[string]ResponseGenerator, len(rgs)),
		rank:     make(map[string]int, len(rgs)),
		handoffs: map[models.SmoothHandoff]string{},
	}
	for _, rg := range rgs {
		name := rg.Name()
		if _, dup := r.rgs[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRG, name)
		}
		r.rgs[name] = rg
		if hc, ok := rg.(HandoffConsumer); ok {
			for _, tag := range hc.ConsumesHandoffs() {
				if owner, taken := r.handoffs[tag]; taken {
					return nil, fmt.Errorf("%w: %s by %s and %s", ErrHandoffOwner, tag, owner, name)
				}
				r.handoffs[tag] = name
			}
		}
	}

	var content []string
	for name := range r.rgs {
		if indexOf(headOrder, name) < 0 && indexOf(tailOrder, name) < 0 {
			content = append(content, name)
		}
	}
	sort.Strings(content)
	for _, group := range [][]string{headOrder, content, tailOrder} {
		for _, name := range group {
			if _, ok := r.rgs[name]; ok {
				r.rank[name] = len(r.order)
				r.order = append(r.order, name)
			}
		}
	}
	slog.Debug("Registry built", "order", r.order, "handoffs", len(r.handoffs))
	return r, nil
}

// MustRegistry is NewRegistry for static wiring.
func MustRegistry(rgs ...ResponseGenerator) *Registry {
	r, err := NewRegistry(rgs...)
	if err != nil {
		panic(err)
	}
	return r
}

func indexOf(list []string, s string) int {
	for i, x := range list {
		if x == s {
			return i
		}
	}
	return -1
}

// Get returns the named RG.
func (r *Registry) Get(name string) (ResponseGenerator, error) {
	rg, ok := r.rgs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRG, name)
	}
	return rg, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.rgs[name]
	return ok
}

// Names lists the RGs in tie-break order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Rank is the tie-break position of name; lower wins. Unknown names rank
// last.
func (r *Registry) Rank(name string) int {
	if i, ok := r.rank[name]; ok {
		return i
	}
	return len(r.order)
}

// HandoffOwner returns the RG that consumes tag.
func (r *Registry) HandoffOwner(tag models.SmoothHandoff) (string, bool) {
	name, ok := r.handoffs[tag]
	return name, ok
}
