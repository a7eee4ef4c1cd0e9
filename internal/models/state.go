package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// noUpdateKey is the single key of NoUpdate's encoded form. Encoding the
// marker as an object keeps it apart from every string a state can hold.
const noUpdateKey = "$no_update"

type noUpdate struct{}

func (noUpdate) MarshalJSON() ([]byte, error) { return []byte(`{"` + noUpdateKey + `":true}`), nil }
func (noUpdate) String() string               { return "NO_UPDATE" }

// NoUpdate marks a conditional-state field that must leave the underlying
// state field untouched. It differs from an explicit nil, which clears it.
var NoUpdate any = noUpdate{}

// IsNoUpdate reports whether v is the NoUpdate sentinel or its decoded form.
func IsNoUpdate(v any) bool {
	switch x := v.(type) {
	case noUpdate:
		return true
	case map[string]any:
		flag, ok := x[noUpdateKey].(bool)
		return ok && flag && len(x) == 1
	}
	return false
}

// State is one RG's persisted record, keyed by field name.
type State map[string]any

// Shared state fields maintained by the base RG behaviour.
const (
	StateKeyPrevTreelet       = "prev_treelet"
	StateKeyNextTreelet       = "next_treelet"
	StateKeyNumTurnsInRG      = "num_turns_in_rg"
	StateKeyRGTakenOver       = "rg_that_was_taken_over"
	StateKeyTakeoverEntity    = "takeover_entity"
	StateKeyCurSupernode      = "cur_supernode"
	StateKeyConditionalState  = "conditional_state"
	StateKeyAcceptanceCache   = "acceptance_cache"
	StateKeyHistory           = "history"
	StateKeyTurnsSinceActive  = "turns_since_last_active"
	DefaultTurnsSinceLastSeen = 34
)

// Clone returns a copy whose nested maps and slices are not shared.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, inner := range x {
			m[k] = cloneValue(inner)
		}
		return m
	case State:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, inner := range x {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}

// Apply returns a copy of s with the overlay merged in. Absent keys and
// NoUpdate values leave the field as it was.
func (s State) Apply(cond ConditionalState) State {
	out := s.Clone()
	if out == nil {
		out = State{}
	}
	for k, v := range cond {
		if IsNoUpdate(v) {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s State) Get(key string) any { return s[key] }

func (s State) GetString(key string) string {
	switch v := s[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (s State) GetBool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func (s State) GetInt(key string) int {
	return ToInt(s[key])
}

// GetStringSlice reads a list field stored either natively or as decoded JSON.
func (s State) GetStringSlice(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if str, ok := x.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// GetEntity reads an entity field stored either natively or as decoded JSON.
func (s State) GetEntity(key string) *Entity {
	return ToEntity(s[key])
}

// Size is the serialized size in bytes.
func (s State) Size() (int, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// ConditionalState is an overlay applied to an RG's state only when that
// RG's candidate is chosen.
type ConditionalState map[string]any

// Clone returns a copy of the overlay.
func (c ConditionalState) Clone() ConditionalState {
	if c == nil {
		return nil
	}
	out := make(ConditionalState, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns c overlaid by other, skipping NoUpdate values in other.
func (c ConditionalState) Merge(other ConditionalState) ConditionalState {
	out := maps.Clone(c)
	if out == nil {
		out = ConditionalState{}
	}
	for k, v := range other {
		if IsNoUpdate(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Pending reports whether the overlay sets the given field.
func (c ConditionalState) Pending(key string) bool {
	v, ok := c[key]
	return ok && !IsNoUpdate(v)
}

// ToInt converts the numeric shapes produced by Go code and JSON decoding.
func ToInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case int32:
		return int(x)
	case float64:
		return int(x)
	case float32:
		return int(x)
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(x)
		return n
	}
	return 0
}

// ToEntity converts an *Entity, Entity or decoded JSON object to an entity.
func ToEntity(v any) *Entity {
	switch x := v.(type) {
	case *Entity:
		return x
	case Entity:
		return &x
	case map[string]any:
		data, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		var e Entity
		if err := json.Unmarshal(data, &e); err != nil || e.Name == "" {
			return nil
		}
		return &e
	}
	return nil
}
