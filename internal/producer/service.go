package producer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"obd-mqtt-logger/internal/logger"
	"obd-mqtt-logger/internal/metrics"
	"obd-mqtt-logger/internal/obd"
	"obd-mqtt-logger/internal/record"
	"obd-mqtt-logger/internal/storage"
	"obd-mqtt-logger/internal/topics"
)

// Gate is the outbound publish surface the loop depends on
type Gate interface {
	WaitUntilLive(ctx context.Context, pollInterval time.Duration) error
	Publish(topic string, payload []byte) error
}

// Envelope is the wire format of one published reading
type Envelope struct {
	Timestamp float64 `json:"timestamp"`
	Data      string  `json:"data"`
	Raw       string  `json:"raw"`
}

// Service runs the sampling loop: iterate the catalog, canonicalize each
// reading, append it to the local log and optionally relay it through
// the delivery gate.
// Single Responsibility: cycle coordination, no decoding rules here.
type Service struct {
	driver    obd.Driver
	codec     *record.Codec
	filter    *record.Filter
	appendLog *storage.AppendLog
	gate      Gate // nil when relaying is disabled
	clientID  string
	domain    string
	stats     *metrics.Metrics
	log       logger.ILogger
}

// NewService creates a producer service. Pass a nil gate to log locally
// without publishing.
func NewService(
	driver obd.Driver,
	codec *record.Codec,
	filter *record.Filter,
	appendLog *storage.AppendLog,
	gate Gate,
	clientID, domain string,
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
		driver:    driver,
		codec:     codec,
		filter:    filter,
		appendLog: appendLog,
		gate:      gate,
		clientID:  clientID,
		domain:    domain,
		stats:     stats,
		log:       log,
	}
}

// Run samples the catalog until the context is cancelled. Cancellation
// is checked at the top of each cycle only; in-flight queries finish.
// A controlled stop returns nil; a dead transport mid-stream returns the
// gate's error and ends the run.
func (s *Service) Run(ctx context.Context) error {
	commands := s.driver.SupportedCommands()
	s.log.LogInfo("Sampling loop started with %d supported commands", len(commands))

	for {
		select {
		case <-ctx.Done():
			// Controlled way of stopping logging
			s.log.LogInfo("Interrupt received, stopping after current cycle")
			return nil
		default:
		}

		for _, cmd := range commands {
			if err := s.sample(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

// sample handles one catalog entry within a cycle
func (s *Service) sample(ctx context.Context, cmd obd.Command) error {
	if s.filter.Skip(cmd.Name) {
		s.stats.IncrementReadingsSkipped()
		return nil
	}

	resp, err := s.driver.Query(ctx, cmd)
	if err != nil {
		s.log.LogWarn("Query for %s failed: %v", cmd.Name, err)
		s.stats.IncrementEncodeErrors()
		return nil
	}
	s.stats.IncrementReadingsSampled()

	rec, err := s.codec.Encode(resp)
	if err != nil {
		if stderrors.Is(err, record.ErrNoData) {
			s.log.LogDebug("Value for %s is none", cmd.Name)
			s.stats.IncrementReadingsSkipped()
			return nil
		}
		// Unsupported value kind: report, skip this reading only
		s.log.LogWarn("%v", err)
		s.stats.IncrementEncodeErrors()
		return nil
	}

	if err := s.appendLog.WriteLine(rec.Line()); err != nil {
		return err
	}
	s.stats.IncrementRecordsEncoded()

	if s.gate == nil {
		return nil
	}
	return s.publish(rec)
}

// publish relays one record through the delivery gate.
// A TransportDown error here is fatal for the run.
func (s *Service) publish(rec *record.CanonicalRecord) error {
	envelope := Envelope{
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Data:      rec.PublishData(),
		Raw:       rec.RawHex,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	topic := topics.Build(s.clientID, s.domain, rec.Name)
	s.log.LogDebug("Publishing %s %s", topic, payload)

	if err := s.gate.Publish(topic, payload); err != nil {
		s.stats.IncrementMQTTErrors()
		return err
	}
	s.stats.IncrementMQTTPublishes()
	return nil
}
