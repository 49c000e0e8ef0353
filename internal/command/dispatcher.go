package command

import (
	"errors"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"go.uber.org/zap"
)

// Registry is the relay table the dispatcher operates on.
type Registry interface {
	Count() int
	SetState(id int, on bool) (types.Relay, error)
	Toggle(id int) (types.Relay, error)
	Get(id int) (types.Relay, error)
	GetAll() []types.Relay
}

// Outcome is the result of dispatching one Command. Successful outcomes
// carry no Message; failed ones always carry Err and Message.
type Outcome struct {
	OK       bool
	Action   Action
	RelayID  int
	Targeted bool
	Affected []types.Relay
	Message  string
	Err      *types.Error

	// Command is the offending input echoed back for unknown commands.
	Command string
	// Decoded is false when the input was not a JSON object.
	Decoded bool
}

// Mutated reports whether the outcome changed relay state.
func (o Outcome) Mutated() bool {
	return o.OK && o.Action.Mutating()
}

// Dispatcher executes commands against the registry. It does no locking
// of its own: callers must not dispatch concurrently.
type Dispatcher struct {
	registry Registry
	logger   *zap.Logger
}

func NewDispatcher(registry Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

func (d *Dispatcher) Dispatch(cmd Command) Outcome {
	out := Outcome{
		Action:   cmd.Action,
		RelayID:  cmd.RelayID,
		Targeted: cmd.Targeted,
		Decoded:  cmd.Decoded,
	}

	switch cmd.Action {
	case ActionTurnOn, ActionTurnOff:
		rl, err := d.registry.SetState(cmd.RelayID, cmd.Action == ActionTurnOn)
		return d.single(out, rl, err)

	case ActionToggle:
		rl, err := d.registry.Toggle(cmd.RelayID)
		return d.single(out, rl, err)

	case ActionGetStatus:
		rl, err := d.registry.Get(cmd.RelayID)
		return d.single(out, rl, err)

	case ActionGetAllStatus:
		out.OK = true
		out.Affected = d.registry.GetAll()
		return out

	case ActionAllOn, ActionAllOff:
		on := cmd.Action == ActionAllOn
		for id := 1; id <= d.registry.Count(); id++ {
			if _, err := d.registry.SetState(id, on); err != nil {
				d.logger.Error("Batch switch failed for relay",
					zap.Int("relay_id", id),
					zap.Error(err))
			}
		}
		out.OK = true
		out.Affected = d.registry.GetAll()
		return out

	default:
		return d.unknown(out, cmd)
	}
}

func (d *Dispatcher) single(out Outcome, rl types.Relay, err error) Outcome {
	if err != nil {
		return d.fail(out, err)
	}
	out.OK = true
	out.Affected = []types.Relay{rl}
	return out
}

func (d *Dispatcher) unknown(out Outcome, cmd Command) Outcome {
	out.Action = ActionUnknown
	out.Command = cmd.Text

	if cmd.Targeted {
		if _, err := d.registry.Get(cmd.RelayID); err != nil {
			return d.fail(out, err)
		}
		return d.fail(out, types.NewError(types.KindInvalidAction, "Invalid action for relay"))
	}

	if cmd.Decoded {
		return d.fail(out, types.NewError(types.KindUnknownCommand, "Invalid action"))
	}

	d.logger.Warn("Unknown command", zap.String("command", cmd.Text))
	return d.fail(out, types.NewError(types.KindUnknownCommand, "Unknown command"))
}

func (d *Dispatcher) fail(out Outcome, err error) Outcome {
	var e *types.Error
	if !errors.As(err, &e) {
		e = types.NewError(types.KindUnknownCommand, "%s", err.Error())
	}
	out.OK = false
	out.Err = e
	out.Message = e.Message
	return out
}
