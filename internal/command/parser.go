package command

import (
	"encoding/json"
	"strings"
)

// Normalize keeps printable ASCII only, trims surrounding spaces and
// lower-cases the result. CR, LF, tabs and any non-ASCII byte are dropped.
func Normalize(raw []byte) string {
	buf := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b >= 32 && b <= 126 {
			buf = append(buf, b)
		}
	}
	return strings.ToLower(strings.TrimSpace(string(buf)))
}

// Parse turns inbound text into a Command. It never fails: input that is
// not a JSON object, or names an action that does not fit its target,
// yields ActionUnknown carrying the text to echo back.
func Parse(raw []byte) Command {
	text := Normalize(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return Command{Action: ActionUnknown, Text: text}
	}

	action := decodeAction(fields["action"])

	if rawID, ok := fields["relay_id"]; ok {
		id := decodeRelayID(rawID)
		cmd := Command{RelayID: id, Targeted: true, Decoded: true}

		switch action {
		case "on", "turn_on":
			cmd.Action = ActionTurnOn
		case "off", "turn_off":
			cmd.Action = ActionTurnOff
		case "toggle":
			cmd.Action = ActionToggle
		case "status", "get_status":
			cmd.Action = ActionGetStatus
		default:
			cmd.Action = ActionUnknown
			cmd.Text = action
		}
		return cmd
	}

	switch action {
	case "get_all_status", "status":
		return Global(ActionGetAllStatus)
	case "all_on", "turn_all_on":
		return Global(ActionAllOn)
	case "all_off", "turn_all_off":
		return Global(ActionAllOff)
	}

	return Command{Action: ActionUnknown, Text: action, Decoded: true}
}

// decodeAction returns "" for a missing or non-string action.
func decodeAction(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.ToLower(s)
}

// decodeRelayID returns 0 for anything but a JSON integer, which later
// fails range validation.
func decodeRelayID(raw json.RawMessage) int {
	var id int
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0
	}
	return id
}
