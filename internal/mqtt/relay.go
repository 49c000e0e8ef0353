package mqtt

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
)

// Output drives relay pins through an MQTT-attached actuator: each write
// publishes ON or OFF to <prefix>/relay/<pin>/set.
type Output struct {
	pub    Publisher
	topics Topics
	qos    byte
	logger *zap.Logger
}

func NewOutput(pub Publisher, topics Topics, qos byte, logger *zap.Logger) *Output {
	return &Output{pub: pub, topics: topics, qos: qos, logger: logger}
}

// Write never fails towards the caller; the registry state is authoritative
// and a lost publish is only logged.
func (o *Output) Write(pin int, on bool) {
	payload := "OFF"
	if on {
		payload = "ON"
	}

	if err := o.pub.Publish(o.topics.RelaySet(pin), []byte(payload), o.qos, false); err != nil {
		o.logger.Error("Relay output publish failed",
			zap.Int("pin", pin),
			zap.String("state", payload),
			zap.Error(err))
	}
}

type statePayload struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Pin   int    `json:"pin"`
	State string `json:"state"`
}

// StatePublisher mirrors relay state to retained topics so dashboards and
// automations see the current table on subscribe.
type StatePublisher struct {
	pub    Publisher
	topics Topics
	qos    byte
	logger *zap.Logger
}

func NewStatePublisher(pub Publisher, topics Topics, qos byte, logger *zap.Logger) *StatePublisher {
	return &StatePublisher{pub: pub, topics: topics, qos: qos, logger: logger}
}

// RelayChanged publishes one relay's state.
func (s *StatePublisher) RelayChanged(r types.Relay) {
	payload, err := json.Marshal(statePayload{
		ID:    r.ID,
		Name:  r.Name,
		Pin:   r.Pin,
		State: r.StateLabel(),
	})
	if err != nil {
		s.logger.Error("Failed to encode relay state", zap.Error(err))
		return
	}

	if err := s.pub.Publish(s.topics.RelayState(r.ID), payload, s.qos, true); err != nil {
		s.logger.Warn("Relay state publish failed",
			zap.Int("relay_id", r.ID),
			zap.Error(err))
	}
}

// PublishAll seeds the retained topics, typically right after startup.
func (s *StatePublisher) PublishAll(relays []types.Relay) {
	for _, r := range relays {
		s.RelayChanged(r)
	}
}
