package relay

import (
	"sync"

	"go.uber.org/zap"
)

// DigitalOutput drives the physical output behind a relay pin.
// Writes are synchronous. Drivers that can fail report the failure
// themselves; the registry treats every write as applied.
type DigitalOutput interface {
	Write(pin int, on bool)
}

// SimulatedOutput keeps pin levels in memory and logs every write.
// It is the default driver when no hardware bridge is configured.
type SimulatedOutput struct {
	logger *zap.Logger

	mu     sync.RWMutex
	levels map[int]bool
}

func NewSimulatedOutput(logger *zap.Logger) *SimulatedOutput {
	return &SimulatedOutput{
		logger: logger,
		levels: make(map[int]bool),
	}
}

func (o *SimulatedOutput) Write(pin int, on bool) {
	o.mu.Lock()
	o.levels[pin] = on
	o.mu.Unlock()

	o.logger.Debug("Pin written",
		zap.Int("pin", pin),
		zap.Bool("level", on))
}

// Level returns the last level written to pin.
func (o *SimulatedOutput) Level(pin int) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.levels[pin]
}
