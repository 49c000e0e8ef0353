package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenRelayCore/internal/config"
)

const (
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout bounds how long a publish waits for the broker.
	defaultPublishTimeout = 2 * time.Second

	// milliseconds
	disconnectQuiesce = 250

	keepAlive = 60 * time.Second

	maxQoS = 2

	payloadOnline  = "online"
	payloadOffline = "offline"
)

// Publisher is the part of the client the relay drivers need.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Client wraps paho.mqtt.golang with connection tracking and an
// online/offline status topic.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics
	logger *zap.Logger

	connected bool
	connMu    sync.RWMutex
}

// Connect dials the broker and waits for the first connection. Later
// connection losses are handled by paho's auto-reconnect.
func Connect(cfg config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		topics: Topics{Prefix: cfg.TopicPrefix},
		logger: logger,
	}

	opts := c.buildOptions()
	c.client = pahomqtt.NewClient(opts)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously; mark connected here so
	// publishes right after Connect are not rejected.
	c.setConnected(true)

	logger.Info("MQTT connected",
		zap.String("broker", cfg.Broker),
		zap.String("client_id", cfg.ClientID))
	return c, nil
}

func (c *Client) buildOptions() *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(c.cfg.Broker)
	opts.SetClientID(c.cfg.ClientID)
	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(keepAlive)
	opts.SetConnectTimeout(defaultConnectTimeout)

	// Broker announces us offline if the process dies without Close.
	opts.SetWill(c.topics.Status(), payloadOffline, c.cfg.QoS, true)

	opts.SetOnConnectHandler(func(pc pahomqtt.Client) {
		c.setConnected(true)
		pc.Publish(c.topics.Status(), c.cfg.QoS, true, payloadOnline)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.setConnected(false)
		c.logger.Warn("MQTT connection lost", zap.Error(err))
	})

	return opts
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

// Publish sends payload to topic and waits for the broker to accept it.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close publishes the graceful offline status and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		if err := c.Publish(c.topics.Status(), []byte(payloadOffline), c.cfg.QoS, true); err != nil {
			c.logger.Warn("Failed to publish offline status", zap.Error(err))
		}
	}

	c.client.Disconnect(disconnectQuiesce)
	c.setConnected(false)
	c.logger.Info("MQTT disconnected")
	return nil
}
