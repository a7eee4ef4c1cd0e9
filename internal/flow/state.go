package flow

import (
	"strings"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// DefaultMaxStateBytes is the largest serialized RG state accepted at commit.
const DefaultMaxStateBytes = 64 << 10

// Opts holds configuration for the state registry.
type Opts struct {
	MaxStateBytes int
}

// Option configures the state registry.
type Option func(*Opts)

// WithMaxStateBytes sets the per-RG serialized size limit.
func WithMaxStateBytes(n int) Option {
	return func(o *Opts) {
		o.MaxStateBytes = n
	}
}

// DefaultReduceSize drops the overlay, caches and histories from a state.
func DefaultReduceSize(state models.State) models.State {
	out := state.Clone()
	for k := range out {
		switch {
		case k == models.StateKeyConditionalState,
			k == models.StateKeyAcceptanceCache,
			k == models.StateKeyHistory,
			strings.HasSuffix(k, "_cache"):
			delete(out, k)
		}
	}
	return out
}
