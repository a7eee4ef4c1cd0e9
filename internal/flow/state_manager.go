package flow

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// StateManager stores one state record per RG between turns. It decodes
// records before a turn and encodes them at commit, all or nothing.
type StateManager struct {
	registry *Registry
	maxBytes int
}

// NewStateManager creates a state registry for the RGs of reg.
func NewStateManager(reg *Registry, opts ...Option) *StateManager {
	o := Opts{MaxStateBytes: DefaultMaxStateBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxStateBytes <= 0 {
		o.MaxStateBytes = DefaultMaxStateBytes
	}
	slog.Debug("Creating StateManager", "max_state_bytes", o.MaxStateBytes)
	return &StateManager{registry: reg, maxBytes: o.MaxStateBytes}
}

// Load decodes every registered RG's record. A missing or unreadable record
// is replaced by the RG's initial state.
func (sm *StateManager) Load(persisted map[string]json.RawMessage) map[string]models.State {
	states := make(map[string]models.State, len(sm.registry.order))
	for _, name := range sm.registry.order {
		rg := sm.registry.rgs[name]
		raw, ok := persisted[name]
		if !ok || len(raw) == 0 {
			states[name] = rg.InitState()
			continue
		}
		var st models.State
		if err := json.Unmarshal(raw, &st); err != nil || st == nil {
			slog.Warn("StateManager.Load: reinitialising state", "rg", name, "error", err)
			states[name] = rg.InitState()
			continue
		}
		states[name] = st
	}
	return states
}

// Commit encodes every state. A record over the limit goes through the RG's
// ReduceSize, or DefaultReduceSize; if it is still too large nothing is
// returned and the error wraps ErrStateTooLarge.
func (sm *StateManager) Commit(states map[string]models.State) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(states))
	for name, st := range states {
		data, err := json.Marshal(st)
		if err != nil {
			return nil, fmt.Errorf("encode state of %s: %w", name, err)
		}
		if len(data) > sm.maxBytes {
			reduced := sm.reduce(name, st)
			data, err = json.Marshal(reduced)
			if err != nil {
				return nil, fmt.Errorf("encode reduced state of %s: %w", name, err)
			}
			slog.Warn("StateManager.Commit: reduced oversize state", "rg", name, "bytes", len(data), "limit", sm.maxBytes)
			if len(data) > sm.maxBytes {
				return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrStateTooLarge, name, len(data), sm.maxBytes)
			}
		}
		out[name] = data
	}
	return out, nil
}

func (sm *StateManager) reduce(name string, st models.State) models.State {
	if rg, ok := sm.registry.rgs[name]; ok {
		if r, ok := rg.(SizeReducer); ok {
			return r.ReduceSize(st)
		}
	}
	return DefaultReduceSize(st)
}
