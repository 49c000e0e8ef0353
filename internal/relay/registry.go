package relay

import (
	"fmt"
	"sync"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"go.uber.org/zap"
)

// Registry owns the relay table. The table is fixed at construction;
// only relay states change, and every change issues exactly one write
// to the DigitalOutput.
type Registry struct {
	relays []types.Relay
	output DigitalOutput
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewRegistry builds the table from defs, assigning ids 1..N in order,
// and drives every pin low.
func NewRegistry(defs []types.RelayDefinition, output DigitalOutput, logger *zap.Logger) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("relay table is empty")
	}
	if output == nil {
		return nil, fmt.Errorf("digital output is required")
	}

	pins := make(map[int]int, len(defs))
	relays := make([]types.Relay, 0, len(defs))
	for i, def := range defs {
		id := i + 1
		if other, dup := pins[def.Pin]; dup {
			return nil, fmt.Errorf("relay %d: pin %d already used by relay %d", id, def.Pin, other)
		}
		pins[def.Pin] = id

		relays = append(relays, types.Relay{
			ID:          id,
			Pin:         def.Pin,
			Name:        def.Name,
			Description: def.Description,
		})
	}

	r := &Registry{
		relays: relays,
		output: output,
		logger: logger,
	}

	for _, rl := range relays {
		output.Write(rl.Pin, false)
		logger.Info("Relay initialized",
			zap.Int("relay_id", rl.ID),
			zap.String("name", rl.Name),
			zap.Int("pin", rl.Pin))
	}

	return r, nil
}

// Count returns the number of relays.
func (r *Registry) Count() int {
	return len(r.relays)
}

// SetState writes the output and stores the new state.
func (r *Registry) SetState(id int, on bool) (types.Relay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.index(id)
	if err != nil {
		return types.Relay{}, err
	}

	return r.apply(idx, on), nil
}

// Toggle inverts the current state of relay id.
func (r *Registry) Toggle(id int) (types.Relay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.index(id)
	if err != nil {
		return types.Relay{}, err
	}

	return r.apply(idx, !r.relays[idx].State), nil
}

func (r *Registry) Get(id int) (types.Relay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, err := r.index(id)
	if err != nil {
		return types.Relay{}, err
	}
	return r.relays[idx], nil
}

// GetAll returns a copy of the table ordered by id.
func (r *Registry) GetAll() []types.Relay {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Relay, len(r.relays))
	copy(out, r.relays)
	return out
}

// index must be called with r.mu held.
func (r *Registry) index(id int) (int, error) {
	if id < 1 || id > len(r.relays) {
		return 0, types.InvalidRelayID(len(r.relays))
	}
	return id - 1, nil
}

// apply must be called with r.mu held for writing.
func (r *Registry) apply(idx int, on bool) types.Relay {
	rl := &r.relays[idx]
	r.output.Write(rl.Pin, on)
	rl.State = on

	r.logger.Info("Relay switched",
		zap.Int("relay_id", rl.ID),
		zap.String("name", rl.Name),
		zap.String("state", rl.StateLabel()))

	return *rl
}
