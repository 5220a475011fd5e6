package consumer

import (
	"context"
	"encoding/json"
	"time"

	"obd-mqtt-logger/internal/logger"
	"obd-mqtt-logger/internal/metrics"
	"obd-mqtt-logger/internal/mqtt"
	"obd-mqtt-logger/internal/storage"
	"obd-mqtt-logger/internal/topics"
)

// envelope is the expected shape of an inbound payload
type envelope struct {
	Timestamp float64 `json:"timestamp"`
	Data      string  `json:"data"`
}

// Service consumes relayed records: decode the topic path, append the
// line to the local log and write one point into the time-series store.
// A failed unit of work drops that message only; the subscription keeps
// receiving.
type Service struct {
	messages  <-chan mqtt.Message
	appendLog *storage.AppendLog
	store     storage.PointWriter
	stats     *metrics.Metrics
	log       logger.ILogger
}

// NewService creates a consumer service over a message stream
func NewService(
	messages <-chan mqtt.Message,
	appendLog *storage.AppendLog,
	store storage.PointWriter,
	stats *metrics.Metrics,
	log logger.ILogger,
) *Service {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	if stats == nil {
		stats = metrics.NewMetrics()
	}
	return &Service{
		messages:  messages,
		appendLog: appendLog,
		store:     store,
		stats:     stats,
		log:       log,
	}
}

// Run processes messages until the context is cancelled
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.log.LogInfo("Interrupt received, stopping consumer")
			return nil
		case msg := <-s.messages:
			s.Handle(ctx, msg)
		}
	}
}

// Handle processes one received message. Errors are reported and the
// message dropped; they never stop the loop.
func (s *Service) Handle(ctx context.Context, msg mqtt.Message) {
	s.stats.IncrementMessagesReceived()

	path, err := topics.Parse(msg.Topic)
	if err != nil {
		s.log.LogWarn("%v", err)
		return
	}

	var env envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		s.log.LogWarn("Malformed payload on %s: %v", msg.Topic, err)
		return
	}
	s.log.LogInfo("Received %s - %s", msg.Topic, env.Data)

	if err := s.appendLog.WriteLine(msg.Topic + " " + env.Data); err != nil {
		s.log.LogError("Appending to log failed: %v", err)
		return
	}

	point := &storage.Point{
		Series:    path.Series(),
		Field:     path.Field(),
		Value:     env.Data,
		Timestamp: timestampFromSeconds(env.Timestamp),
	}
	if err := s.store.Write(ctx, point); err != nil {
		// Reported only; the subscription keeps receiving
		s.log.LogError("%v", err)
		s.stats.IncrementStoreErrors()
		return
	}
	s.stats.IncrementStoreWrites()
}

// timestampFromSeconds converts float epoch seconds to a time.Time with
// millisecond resolution
func timestampFromSeconds(seconds float64) time.Time {
	return time.UnixMilli(int64(seconds * 1000))
}
