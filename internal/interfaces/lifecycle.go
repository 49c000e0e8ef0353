package interfaces

import (
	"context"

	"github.com/KevinKickass/OpenRelayCore/internal/config"
	"github.com/KevinKickass/OpenRelayCore/internal/controller"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State            string `json:"state"`
	RelayCount       int    `json:"relay_count"`
	ConnectedClients int    `json:"connected_clients"`
	CommandsExecuted uint64 `json:"commands_executed"`
	MQTTConnected    bool   `json:"mqtt_connected"`
}

// NetworkInfo is the primary interface address reported by /info.
type NetworkInfo struct {
	IPAddress  string `json:"ip_address"`
	MACAddress string `json:"mac_address"`
}

type LifecycleManager interface {
	Config() *config.Config
	Controller() *controller.Controller
	NetworkInfo() NetworkInfo
	GetCurrentStatus() SystemStatus
	Shutdown(ctx context.Context) error
}
