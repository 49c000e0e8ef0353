package command

import (
	"bytes"
	"encoding/json"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
)

// Field order in the structs below is the wire key order existing
// clients rely on.

// RelayView is the per-relay object inside snapshots.
type RelayView struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Pin         int    `json:"pin"`
	State       bool   `json:"state"`
}

type snapshotResponse struct {
	Relays []RelayView `json:"relays"`
}

type mutationResponse struct {
	Status  string `json:"status"`
	RelayID int    `json:"relay_id"`
	Action  string `json:"action"`
	State   bool   `json:"state"`
}

type relayStatusResponse struct {
	Status      string `json:"status"`
	RelayID     int    `json:"relay_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Pin         int    `json:"pin"`
	State       bool   `json:"state"`
}

type batchResponse struct {
	Status  string      `json:"status"`
	Action  string      `json:"action"`
	Message string      `json:"message"`
	Relays  []RelayView `json:"relays"`
}

type errorResponse struct {
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	Command      *string   `json:"command,omitempty"`
	ValidActions []string  `json:"valid_actions"`
	Help         *helpBody `json:"help,omitempty"`
}

type helpBody struct {
	JSONFormat helpFormats `json:"json_format"`
}

type helpFormats struct {
	RelayControl string `json:"relay_control"`
	AllControl   string `json:"all_control"`
	Status       string `json:"status"`
}

type welcomeResponse struct {
	Message string      `json:"message"`
	Relays  []RelayView `json:"relays"`
}

var usageHelp = &helpBody{
	JSONFormat: helpFormats{
		RelayControl: `{"relay_id":1,"action":"on"}`,
		AllControl:   `{"action":"all_on"}`,
		Status:       `{"action":"status"}`,
	},
}

// View converts a relay snapshot to its wire object.
func View(r types.Relay) RelayView {
	return RelayView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Pin:         r.Pin,
		State:       r.State,
	}
}

func Views(relays []types.Relay) []RelayView {
	views := make([]RelayView, 0, len(relays))
	for _, r := range relays {
		views = append(views, View(r))
	}
	return views
}

// FormatOutcome renders an outcome as the JSON message sent to clients.
func FormatOutcome(o Outcome) []byte {
	if !o.OK {
		return encode(errorBody(o))
	}

	switch o.Action {
	case ActionTurnOn, ActionTurnOff, ActionToggle:
		rl := o.Affected[0]
		return encode(mutationResponse{
			Status:  "success",
			RelayID: rl.ID,
			Action:  o.Action.WireName(),
			State:   rl.State,
		})

	case ActionGetStatus:
		rl := o.Affected[0]
		return encode(relayStatusResponse{
			Status:      "success",
			RelayID:     rl.ID,
			Name:        rl.Name,
			Description: rl.Description,
			Pin:         rl.Pin,
			State:       rl.State,
		})

	case ActionAllOn, ActionAllOff:
		msg := "All relays turned OFF"
		if o.Action == ActionAllOn {
			msg = "All relays turned ON"
		}
		return encode(batchResponse{
			Status:  "success",
			Action:  string(o.Action),
			Message: msg,
			Relays:  Views(o.Affected),
		})

	default:
		return FormatSnapshot(o.Affected)
	}
}

// FormatSnapshot renders {"relays":[...]} ordered as given.
func FormatSnapshot(relays []types.Relay) []byte {
	return encode(snapshotResponse{Relays: Views(relays)})
}

// FormatRelay renders a single relay object.
func FormatRelay(r types.Relay) []byte {
	return encode(View(r))
}

// FormatWelcome renders the greeting sent to a new WebSocket session.
func FormatWelcome(deviceName string, relays []types.Relay) []byte {
	return encode(welcomeResponse{
		Message: "Connected to " + deviceName,
		Relays:  Views(relays),
	})
}

func errorBody(o Outcome) errorResponse {
	resp := errorResponse{
		Status:       "error",
		Message:      o.Message,
		ValidActions: AllActions,
	}

	if o.Action != ActionUnknown {
		return resp
	}

	// Out-of-range targets are reported without an echo, like any other
	// invalid id.
	if o.Err != nil && o.Err.Kind == types.KindInvalidRelayID {
		return resp
	}

	echo := o.Command
	resp.Command = &echo
	if o.Targeted {
		resp.ValidActions = RelayActions
	}
	if !o.Decoded {
		resp.Help = usageHelp
	}
	return resp
}

// encode marshals without HTML escaping so echoed input stays verbatim.
func encode(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return []byte(`{"status":"error","message":"encoding failed","valid_actions":[]}`)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
