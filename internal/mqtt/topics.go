package mqtt

import "fmt"

// Topics builds the topic names under the configured prefix.
//
//	<prefix>/status              online/offline, retained
//	<prefix>/relay/<pin>/set     ON/OFF output commands
//	<prefix>/relay/<id>/state    retained relay state mirror
type Topics struct {
	Prefix string
}

func (t Topics) Status() string {
	return fmt.Sprintf("%s/status", t.Prefix)
}

// RelaySet is addressed by GPIO pin: it drives the physical output.
func (t Topics) RelaySet(pin int) string {
	return fmt.Sprintf("%s/relay/%d/set", t.Prefix, pin)
}

// RelayState is addressed by relay id, the same id API clients use.
func (t Topics) RelayState(id int) string {
	return fmt.Sprintf("%s/relay/%d/state", t.Prefix, id)
}
