package mqtt

import (
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"obd-mqtt-logger/internal/config"
	"obd-mqtt-logger/internal/errors"
	"obd-mqtt-logger/internal/logger"
)

// QoSLevel is used for every publish and subscription.
// We want all messages with no duplicates.
const QoSLevel byte = 2

// Client wraps the paho client and keeps the state tracker in sync with
// the transport's connect/disconnect callbacks. The callbacks run on a
// transport-owned goroutine; all state they touch lives in the tracker.
type Client struct {
	client  paho.Client
	cfg     *config.MQTTConfig
	tracker *StateTracker
}

// NewClient creates a broker client for the given role.
// clientIDSuffix keeps producer and consumer sessions distinct when both
// run against the same configuration.
func NewClient(cfg *config.MQTTConfig, tracker *StateTracker, clientIDSuffix string) (*Client, error) {
	opts := paho.NewClientOptions()

	scheme := "tcp"
	if cfg.CertPath != "" {
		tlsConfig, err := newTLSConfig(cfg.CertPath)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsConfig)
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.URL, cfg.Port))
	opts.SetClientID(cfg.ClientID + clientIDSuffix)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)

	opts.SetOnConnectHandler(func(client paho.Client) {
		tracker.OnConnect()
		logger.LogInfo("Connected to broker")
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		tracker.OnConnectionLost()
		logger.LogError("Unexpected disconnection: %v", err)
	})

	return &Client{
		client:  paho.NewClient(opts),
		cfg:     cfg,
		tracker: tracker,
	}, nil
}

// Connect performs the initial broker connect. A failure here is fatal
// at startup; reconnection after that is the transport's business.
func (c *Client) Connect() error {
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		c.tracker.OnConnectFailed()
		return errors.NewConnectFailed(
			fmt.Sprintf("MQTT broker %s:%d", c.cfg.URL, c.cfg.Port), token.Error())
	}
	return nil
}

// Publish hands one payload to the transport, fire-and-forget: delivery
// confirmation is not awaited by the calling loop.
func (c *Client) Publish(topic string, payload []byte) {
	token := c.client.Publish(topic, QoSLevel, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			logger.LogWarn("Publish to %s failed: %v", topic, token.Error())
		}
	}()
}

// Shutdown stops the background delivery loop and disconnects cleanly
func (c *Client) Shutdown() {
	c.client.Disconnect(250)
}

// Tracker exposes the connection state tracker
func (c *Client) Tracker() *StateTracker {
	return c.tracker
}
