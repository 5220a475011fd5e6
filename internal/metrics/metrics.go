package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Metrics tracks pipeline counters in Prometheus text format
type Metrics struct {
	// Producer counters
	readingsSampledTotal int64
	readingsSkippedTotal int64
	recordsEncodedTotal  int64
	encodeErrorsTotal    int64
	mqttPublishesTotal   int64
	mqttErrorsTotal      int64

	// Consumer counters
	messagesReceivedTotal int64
	messagesDroppedTotal  int64
	storeWritesTotal      int64
	storeErrorsTotal      int64

	// Gauges
	brokerStatus int64 // 1 = connected, 0 = disconnected

	mu sync.RWMutex
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncrementReadingsSampled increments the sampled reading counter
func (m *Metrics) IncrementReadingsSampled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readingsSampledTotal++
}

// IncrementReadingsSkipped increments the filtered/absent reading counter
func (m *Metrics) IncrementReadingsSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readingsSkippedTotal++
}

// IncrementRecordsEncoded increments the canonical record counter
func (m *Metrics) IncrementRecordsEncoded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordsEncodedTotal++
}

// IncrementEncodeErrors increments the codec error counter
func (m *Metrics) IncrementEncodeErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encodeErrorsTotal++
}

// IncrementMQTTPublishes increments the MQTT publish counter
func (m *Metrics) IncrementMQTTPublishes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mqttPublishesTotal++
}

// IncrementMQTTErrors increments the MQTT error counter
func (m *Metrics) IncrementMQTTErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mqttErrorsTotal++
}

// IncrementMessagesReceived increments the received message counter
func (m *Metrics) IncrementMessagesReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesReceivedTotal++
}

// IncrementMessagesDropped increments the backlog-overflow drop counter
func (m *Metrics) IncrementMessagesDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesDroppedTotal++
}

// IncrementStoreWrites increments the time-series write counter
func (m *Metrics) IncrementStoreWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeWritesTotal++
}

// IncrementStoreErrors increments the time-series error counter
func (m *Metrics) IncrementStoreErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrorsTotal++
}

// SetBrokerStatus sets the broker status gauge (1 = connected)
func (m *Metrics) SetBrokerStatus(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if connected {
		m.brokerStatus = 1
	} else {
		m.brokerStatus = 0
	}
}

// GetMetricsText returns metrics in Prometheus text format
func (m *Metrics) GetMetricsText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(`# HELP readings_sampled_total Total number of instrument readings sampled
# TYPE readings_sampled_total counter
readings_sampled_total %d

# HELP readings_skipped_total Total number of readings filtered out or absent
# TYPE readings_skipped_total counter
readings_skipped_total %d

# HELP records_encoded_total Total number of canonical records produced
# TYPE records_encoded_total counter
records_encoded_total %d

# HELP encode_errors_total Total number of codec failures
# TYPE encode_errors_total counter
encode_errors_total %d

# HELP mqtt_publishes_total Total number of MQTT publish operations
# TYPE mqtt_publishes_total counter
mqtt_publishes_total %d

# HELP mqtt_errors_total Total number of MQTT publish errors
# TYPE mqtt_errors_total counter
mqtt_errors_total %d

# HELP messages_received_total Total number of messages received from the broker
# TYPE messages_received_total counter
messages_received_total %d

# HELP messages_dropped_total Total number of messages dropped on a full consumer backlog
# TYPE messages_dropped_total counter
messages_dropped_total %d

# HELP store_writes_total Total number of time-series points written
# TYPE store_writes_total counter
store_writes_total %d

# HELP store_errors_total Total number of failed time-series writes
# TYPE store_errors_total counter
store_errors_total %d

# HELP broker_status Current broker connection status (1 = connected, 0 = disconnected)
# TYPE broker_status gauge
broker_status %d
`,
		m.readingsSampledTotal,
		m.readingsSkippedTotal,
		m.recordsEncodedTotal,
		m.encodeErrorsTotal,
		m.mqttPublishesTotal,
		m.mqttErrorsTotal,
		m.messagesReceivedTotal,
		m.messagesDroppedTotal,
		m.storeWritesTotal,
		m.storeErrorsTotal,
		m.brokerStatus,
	)
}

// ServeHTTP implements http.Handler interface for /metrics endpoint
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprint(w, m.GetMetricsText())
}

// StartMetricsServer exposes /metrics and /health on the given port.
// Runs in its own goroutine; errors are returned through the channel.
func StartMetricsServer(m *Metrics, port int) <-chan error {
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/metrics", m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		errCh <- server.ListenAndServe()
	}()
	return errCh
}
