package mqtt

import (
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"obd-mqtt-logger/internal/errors"
	"obd-mqtt-logger/internal/logger"
	"obd-mqtt-logger/internal/metrics"
)

// AllTopics matches every topic on the broker
const AllTopics = "#"

// Message is one received topic/payload pair, handed from the transport
// callback to the consumer loop over the channel. The callback never
// touches shared state directly.
type Message struct {
	Topic   string
	Payload []byte
}

// Subscriber receives broker messages and feeds them to the consumer
// loop as explicit events
type Subscriber struct {
	client   *Client
	messages chan Message
	stats    *metrics.Metrics
}

// NewSubscriber creates a subscriber over an existing client
func NewSubscriber(client *Client, stats *metrics.Metrics) *Subscriber {
	if stats == nil {
		stats = metrics.NewMetrics()
	}
	return &Subscriber{
		client:   client,
		messages: make(chan Message, 256),
		stats:    stats,
	}
}

// enqueue hands one message to the consumer loop. The send never
// blocks: the transport's router goroutine must not park on a backlog
// nobody is draining anymore. An overflowing backlog drops the message
// and counts the drop.
func (s *Subscriber) enqueue(msg Message) {
	select {
	case s.messages <- msg:
	default:
		s.stats.IncrementMessagesDropped()
		logger.LogWarn("Consumer backlog full, dropping message on %s", msg.Topic)
	}
}

// SubscribeAll subscribes to the universal topic pattern
func (s *Subscriber) SubscribeAll() error {
	token := s.client.client.Subscribe(AllTopics, QoSLevel, func(client paho.Client, msg paho.Message) {
		logger.LogDebug("Received message [%s] - %s", msg.Topic(), msg.Payload())
		s.enqueue(Message{Topic: msg.Topic(), Payload: msg.Payload()})
	})
	if token.Wait() && token.Error() != nil {
		return errors.NewConnectFailed(
			fmt.Sprintf("subscription %q", AllTopics), token.Error())
	}
	return nil
}

// Messages returns the stream of received messages
func (s *Subscriber) Messages() <-chan Message {
	return s.messages
}

// Close shuts the underlying client down
func (s *Subscriber) Close() {
	s.client.Shutdown()
}
