package command

type Action string

const (
	ActionTurnOn       Action = "turn_on"
	ActionTurnOff      Action = "turn_off"
	ActionToggle       Action = "toggle"
	ActionGetStatus    Action = "get_status"
	ActionGetAllStatus Action = "get_all_status"
	ActionAllOn        Action = "all_on"
	ActionAllOff       Action = "all_off"
	ActionUnknown      Action = "unknown"
)

// Accepted action names as advertised to clients.
var (
	RelayActions = []string{"on", "off", "toggle", "status"}
	AllActions   = []string{"on", "off", "toggle", "status", "all_on", "all_off"}
)

// Targeted reports whether the action addresses a single relay.
func (a Action) Targeted() bool {
	switch a {
	case ActionTurnOn, ActionTurnOff, ActionToggle, ActionGetStatus:
		return true
	}
	return false
}

// Mutating reports whether the action changes relay state.
func (a Action) Mutating() bool {
	switch a {
	case ActionTurnOn, ActionTurnOff, ActionToggle, ActionAllOn, ActionAllOff:
		return true
	}
	return false
}

// WireName is the short action name echoed in success responses.
func (a Action) WireName() string {
	switch a {
	case ActionTurnOn:
		return "on"
	case ActionTurnOff:
		return "off"
	}
	return string(a)
}

// Command is a parsed request. RelayID is meaningful only when Targeted
// is set. Text holds the offending input of an ActionUnknown command and
// Decoded records whether that input was a JSON object.
type Command struct {
	Action   Action
	RelayID  int
	Targeted bool
	Text     string
	Decoded  bool
}

// ForRelay builds a command addressing relay id.
func ForRelay(action Action, id int) Command {
	return Command{Action: action, RelayID: id, Targeted: true, Decoded: true}
}

// Global builds a command addressing the whole registry.
func Global(action Action) Command {
	return Command{Action: action, Decoded: true}
}
