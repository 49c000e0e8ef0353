package types

import "fmt"

// RelayDefinition is the static configuration of one relay output.
// Ids are not configured: they follow the position in the relay table.
type RelayDefinition struct {
	Pin         int    `json:"pin" yaml:"pin" mapstructure:"pin"`
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
}

// Relay is a snapshot of a single relay and its current state.
type Relay struct {
	ID          int
	Pin         int
	Name        string
	Description string
	State       bool
}

// StateLabel renders the state the way status lines and the HTML page show it.
func (r Relay) StateLabel() string {
	if r.State {
		return "ON"
	}
	return "OFF"
}

func (r Relay) String() string {
	return fmt.Sprintf("R%d:%s", r.ID, r.StateLabel())
}
