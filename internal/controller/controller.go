package controller

import (
	"sync"

	"github.com/KevinKickass/OpenRelayCore/internal/command"
	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"go.uber.org/zap"
)

// Broadcaster delivers a message to every connected session. It must not
// block; delivery is best effort.
type Broadcaster interface {
	Broadcast(data []byte)
}

// StateListener is told about every relay whose state was written.
type StateListener interface {
	RelayChanged(relay types.Relay)
}

type Origin string

const (
	OriginWebSocket Origin = "websocket"
	OriginHTTP      Origin = "http"
)

// Controller is the single execution context for commands. One command is
// parsed, dispatched, formatted and handed to the broadcaster before the
// next one starts, so mutations never interleave and broadcasts leave in
// dispatch order.
type Controller struct {
	logger     *zap.Logger
	dispatcher *command.Dispatcher
	registry   command.Registry
	deviceName string

	mu          sync.Mutex
	broadcaster Broadcaster
	listeners   []StateListener
	executed    uint64
}

func NewController(
	logger *zap.Logger,
	registry command.Registry,
	deviceName string,
) *Controller {
	return &Controller{
		logger:     logger,
		dispatcher: command.NewDispatcher(registry, logger),
		registry:   registry,
		deviceName: deviceName,
	}
}

// SetBroadcaster sets where outcomes are fanned out to.
func (c *Controller) SetBroadcaster(b Broadcaster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcaster = b
}

func (c *Controller) AddStateListener(l StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// ExecuteRaw handles one inbound WebSocket frame. Every outcome, reads and
// errors included, is broadcast to all sessions.
func (c *Controller) ExecuteRaw(raw []byte) command.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd := command.Parse(raw)
	c.logger.Debug("WebSocket command received",
		zap.Int("raw_length", len(raw)),
		zap.String("action", string(cmd.Action)),
		zap.Int("relay_id", cmd.RelayID))

	return c.execute(cmd, OriginWebSocket)
}

// Execute runs an already structured command, as built by the HTTP API.
// Only successful mutations are broadcast for this origin.
func (c *Controller) Execute(cmd command.Command, origin Origin) command.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.execute(cmd, origin)
}

// execute must be called with c.mu held.
func (c *Controller) execute(cmd command.Command, origin Origin) command.Outcome {
	out := c.dispatcher.Dispatch(cmd)
	c.executed++

	if !out.OK {
		c.logger.Info("Command rejected",
			zap.String("origin", string(origin)),
			zap.String("kind", string(out.Err.Kind)),
			zap.String("message", out.Message),
			zap.String("command", out.Command))
	}

	if out.Mutated() {
		for _, rl := range out.Affected {
			for _, l := range c.listeners {
				l.RelayChanged(rl)
			}
		}
	}

	if c.broadcaster != nil && (origin == OriginWebSocket || out.Mutated()) {
		c.broadcaster.Broadcast(command.FormatOutcome(out))
	}

	return out
}

// Snapshot returns the relay table as seen between two commands.
func (c *Controller) Snapshot() []types.Relay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.GetAll()
}

// Welcome is the first message a new WebSocket session receives.
func (c *Controller) Welcome() []byte {
	return command.FormatWelcome(c.deviceName, c.Snapshot())
}

func (c *Controller) RelayCount() int {
	return c.registry.Count()
}

func (c *Controller) DeviceName() string {
	return c.deviceName
}

// ExecutedCount returns how many commands have been dispatched.
func (c *Controller) ExecutedCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executed
}
