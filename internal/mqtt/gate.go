package mqtt

import (
	"context"
	"time"

	"obd-mqtt-logger/internal/errors"
	"obd-mqtt-logger/internal/logger"
)

// Transport is the outbound surface the gate controls.
// Interface Segregation Principle - the gate needs publishing and a way
// to shut the delivery loop down, nothing else.
type Transport interface {
	Publish(topic string, payload []byte)
	Shutdown()
}

// DeliveryGate guards every outbound publish behind the tracker's
// liveness state. The defining invariant: no publish is attempted while
// the tracker reports a dead connection. A dead connection mid-stream
// is fatal for the whole producer run.
type DeliveryGate struct {
	tracker   *StateTracker
	transport Transport
	broker    string
	log       logger.ILogger
}

// NewDeliveryGate creates a gate over the given transport
func NewDeliveryGate(tracker *StateTracker, transport Transport, broker string, log logger.ILogger) *DeliveryGate {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &DeliveryGate{
		tracker:   tracker,
		transport: transport,
		broker:    broker,
		log:       log,
	}
}

// WaitUntilLive blocks until the tracker reports Connected, re-checking
// at pollInterval. Used once before the main loop starts.
func (g *DeliveryGate) WaitUntilLive(ctx context.Context, pollInterval time.Duration) error {
	for !g.tracker.IsConnected() {
		g.log.LogInfo("Connecting...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return nil
}

// Publish relays one payload if and only if the connection is live.
// On a dead connection the transport's delivery loop is stopped and
// disconnected before the error is returned.
func (g *DeliveryGate) Publish(topic string, payload []byte) error {
	if !g.tracker.IsConnected() {
		// Socket broke. Stop the delivery loop before reporting.
		g.transport.Shutdown()
		return errors.NewTransportDown(g.broker, topic)
	}
	g.transport.Publish(topic, payload)
	return nil
}
