package system

import (
	"context"
	"fmt"
	"sync"

	"github.com/KevinKickass/OpenRelayCore/internal/api/rest"
	"github.com/KevinKickass/OpenRelayCore/internal/api/websocket"
	"github.com/KevinKickass/OpenRelayCore/internal/config"
	"github.com/KevinKickass/OpenRelayCore/internal/controller"
	"github.com/KevinKickass/OpenRelayCore/internal/interfaces"
	"github.com/KevinKickass/OpenRelayCore/internal/mqtt"
	"github.com/KevinKickass/OpenRelayCore/internal/relay"
	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"go.uber.org/zap"
)

type LifecycleManager struct {
	config *config.Config
	logger *zap.Logger

	network    interfaces.NetworkInfo
	mqttClient *mqtt.Client
	registry   *relay.Registry
	controller *controller.Controller
	wsHub      *websocket.Hub
	restServer *rest.Server
	reporter   *Reporter

	hubCancel context.CancelFunc

	stateMu      sync.RWMutex
	currentState SystemState

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

func NewLifecycleManager(cfg *config.Config, logger *zap.Logger) *LifecycleManager {
	return &LifecycleManager{
		config:       cfg,
		logger:       logger,
		network:      DetectNetworkInfo(),
		currentState: StateInitializing,
		shutdownChan: make(chan struct{}),
	}
}

// Start builds the relay table and output driver, then brings up the
// WebSocket hub, the HTTP server and the status reporter.
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting OpenRelayCore",
		zap.String("device", lm.config.Device.Name),
		zap.String("output_driver", lm.config.Output.Driver))

	if err := lm.start(); err != nil {
		lm.setState(StateError)

		// Release whatever came up before the failure.
		ctx, cancel := context.WithTimeout(context.Background(), lm.config.Server.ShutdownTimeout)
		defer cancel()
		if cerr := lm.gracefulShutdown(ctx); cerr != nil {
			lm.logger.Warn("Cleanup after failed start", zap.Error(cerr))
		}
		return err
	}

	lm.setState(StateRunning)
	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort),
		zap.Int("relays", lm.registry.Count()),
		zap.String("ip_address", lm.network.IPAddress))
	return nil
}

func (lm *LifecycleManager) start() error {
	defs, err := relay.LoadDefinitions(lm.config.Relays.File, lm.config.Relays.Definitions)
	if err != nil {
		return fmt.Errorf("failed to load relay table: %w", err)
	}

	if lm.config.MQTT.Enabled {
		client, err := mqtt.Connect(lm.config.MQTT, lm.logger)
		if err != nil {
			return fmt.Errorf("failed to connect MQTT: %w", err)
		}
		lm.mqttClient = client
	}

	lm.registry, err = relay.NewRegistry(defs, lm.buildOutput(), lm.logger)
	if err != nil {
		return fmt.Errorf("failed to build relay registry: %w", err)
	}

	lm.controller = controller.NewController(lm.logger, lm.registry, lm.config.Device.Name)

	if lm.mqttClient != nil {
		states := mqtt.NewStatePublisher(lm.mqttClient, lm.mqttClient.Topics(), lm.config.MQTT.QoS, lm.logger)
		states.PublishAll(lm.registry.GetAll())
		lm.controller.AddStateListener(states)
	}

	lm.wsHub = websocket.NewHub(lm.logger, lm.controller)
	lm.controller.SetBroadcaster(lm.wsHub)

	hubCtx, cancel := context.WithCancel(context.Background())
	lm.hubCancel = cancel
	go lm.wsHub.Run(hubCtx)

	lm.restServer = rest.NewServer(lm.config, lm, lm.logger, lm.wsHub)
	if err := lm.restServer.Start(); err != nil {
		return fmt.Errorf("failed to start REST API: %w", err)
	}

	lm.reporter = NewReporter(lm, lm.config.Server.StatusInterval, lm.logger)
	lm.reporter.Start()

	return nil
}

func (lm *LifecycleManager) buildOutput() relay.DigitalOutput {
	if lm.config.Output.Driver == config.DriverMQTT && lm.mqttClient != nil {
		return mqtt.NewOutput(lm.mqttClient, lm.mqttClient.Topics(), lm.config.MQTT.QoS, lm.logger)
	}
	return relay.NewSimulatedOutput(lm.logger)
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")
		lm.setState(StateStopping)

		shutdownErr = lm.gracefulShutdown(ctx)

		lm.setState(StateStopped)
		close(lm.shutdownChan)
	})

	return shutdownErr
}

// Done is closed once Shutdown has completed.
func (lm *LifecycleManager) Done() <-chan struct{} {
	return lm.shutdownChan
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	if lm.reporter != nil {
		lm.reporter.Stop()
	}

	var shutdownErr error
	if lm.restServer != nil {
		if err := lm.restServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("rest api shutdown failed: %w", err)
		}
	}

	// Closes every WebSocket session.
	if lm.hubCancel != nil {
		lm.hubCancel()
		select {
		case <-lm.wsHub.Done():
		case <-ctx.Done():
			if shutdownErr == nil {
				shutdownErr = fmt.Errorf("websocket hub stop: %w", ctx.Err())
			}
		}
	}

	if lm.mqttClient != nil {
		if err := lm.mqttClient.Close(); err != nil && shutdownErr == nil {
			shutdownErr = fmt.Errorf("mqtt close failed: %w", err)
		}
	}

	if shutdownErr == nil {
		lm.logger.Info("Graceful shutdown completed")
	}
	return shutdownErr
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()

	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.logger.Warn("Unexpected state transition", zap.Error(err))
	}
	lm.currentState = state
}

func (lm *LifecycleManager) State() SystemState {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return lm.currentState
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	status := interfaces.SystemStatus{
		State: lm.State().String(),
	}
	if lm.controller != nil {
		status.RelayCount = lm.controller.RelayCount()
		status.CommandsExecuted = lm.controller.ExecutedCount()
	}
	if lm.wsHub != nil {
		status.ConnectedClients = lm.wsHub.GetClientCount()
	}
	if lm.mqttClient != nil {
		status.MQTTConnected = lm.mqttClient.IsConnected()
	}
	return status
}

// ClientCount and Relays feed the status reporter.
func (lm *LifecycleManager) ClientCount() int {
	return lm.wsHub.GetClientCount()
}

func (lm *LifecycleManager) Relays() []types.Relay {
	return lm.controller.Snapshot()
}

func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}

func (lm *LifecycleManager) Controller() *controller.Controller {
	return lm.controller
}

func (lm *LifecycleManager) NetworkInfo() interfaces.NetworkInfo {
	return lm.network
}
