package producer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"obd-mqtt-logger/internal/errors"
	"obd-mqtt-logger/internal/logger"
	"obd-mqtt-logger/internal/obd"
	"obd-mqtt-logger/internal/record"
	"obd-mqtt-logger/internal/storage"
)

// fakeDriver serves canned responses per command name
type fakeDriver struct {
	commands  []obd.Command
	responses map[string]*obd.Response
	mu        sync.Mutex
	queried   []string
}

func (d *fakeDriver) SupportedCommands() []obd.Command {
	return d.commands
}

func (d *fakeDriver) Query(ctx context.Context, cmd obd.Command) (*obd.Response, error) {
	d.mu.Lock()
	d.queried = append(d.queried, cmd.Name)
	d.mu.Unlock()
	if resp, ok := d.responses[cmd.Name]; ok {
		return resp, nil
	}
	return &obd.Response{Command: cmd, Value: obd.Absent()}, nil
}

func (d *fakeDriver) Close() error { return nil }

func (d *fakeDriver) queriedNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.queried...)
}

// fakeGate records publishes and optionally fails them
type fakeGate struct {
	mu        sync.Mutex
	published []fakePublish
	failWith  error
}

type fakePublish struct {
	topic   string
	payload []byte
}

func (g *fakeGate) WaitUntilLive(ctx context.Context, pollInterval time.Duration) error {
	return nil
}

func (g *fakeGate) Publish(topic string, payload []byte) error {
	if g.failWith != nil {
		return g.failWith
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.published = append(g.published, fakePublish{topic: topic, payload: payload})
	return nil
}

func newTestLog(t *testing.T) (*storage.AppendLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "car.log")
	appendLog, err := storage.CreateAppendLog(path, false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { appendLog.Close() })
	return appendLog, path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func newTestService(driver obd.Driver, appendLog *storage.AppendLog, gate Gate) *Service {
	return NewService(
		driver,
		record.NewCodec(),
		record.NewFilter(),
		appendLog,
		gate,
		"car1", "toyota",
		nil,
		logger.NewMockLogger(),
	)
}

func TestSampleWritesCanonicalLine(t *testing.T) {
	driver := &fakeDriver{
		commands: []obd.Command{{Name: "RPM"}},
		responses: map[string]*obd.Response{
			"RPM": {
				Command:   obd.Command{Name: "RPM"},
				Timestamp: 1700000000,
				Value:     obd.Quantity(2500, "rpm"),
			},
		},
	}
	appendLog, path := newTestLog(t)
	service := newTestService(driver, appendLog, nil)

	if err := service.sample(context.Background(), driver.commands[0]); err != nil {
		t.Fatalf("sample() error = %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, expected 1", len(lines))
	}
	if lines[0] != "1700000000,RPM,2500:rpm," {
		t.Errorf("log line = %q", lines[0])
	}
}

func TestFilteredReadingsNeverReachCodecOrLog(t *testing.T) {
	driver := &fakeDriver{
		commands: []obd.Command{
			{Name: "O2_SENSORS"},
			{Name: "GET_DTC"},
			{Name: "CATALYST_TEMP_B1S1"},
		},
	}
	appendLog, path := newTestLog(t)
	service := newTestService(driver, appendLog, nil)

	for _, cmd := range driver.commands {
		if err := service.sample(context.Background(), cmd); err != nil {
			t.Fatalf("sample(%s) error = %v", cmd.Name, err)
		}
	}

	if got := driver.queriedNames(); len(got) != 0 {
		t.Errorf("filtered commands were queried: %v", got)
	}
	if lines := readLines(t, path); len(lines) != 0 {
		t.Errorf("filtered commands produced log lines: %v", lines)
	}
}

func TestAbsentValueProducesNothing(t *testing.T) {
	driver := &fakeDriver{
		commands: []obd.Command{{Name: "RPM"}},
		// no canned response: Query returns an absent value
	}
	appendLog, path := newTestLog(t)
	gate := &fakeGate{}
	service := newTestService(driver, appendLog, gate)

	if err := service.sample(context.Background(), driver.commands[0]); err != nil {
		t.Fatalf("sample() error = %v", err)
	}
	if lines := readLines(t, path); len(lines) != 0 {
		t.Errorf("absent value produced log lines: %v", lines)
	}
	if len(gate.published) != 0 {
		t.Errorf("absent value produced %d publishes", len(gate.published))
	}
}

func TestPublishEnvelopeStripsUnit(t *testing.T) {
	driver := &fakeDriver{
		commands: []obd.Command{{Name: "RPM"}},
		responses: map[string]*obd.Response{
			"RPM": {
				Command:   obd.Command{Name: "RPM"},
				Timestamp: 1700000000,
				Value:     obd.Quantity(2500, "rpm"),
			},
		},
	}
	appendLog, _ := newTestLog(t)
	gate := &fakeGate{}
	service := newTestService(driver, appendLog, gate)

	before := float64(time.Now().UnixNano()) / 1e9
	if err := service.sample(context.Background(), driver.commands[0]); err != nil {
		t.Fatalf("sample() error = %v", err)
	}
	after := float64(time.Now().UnixNano()) / 1e9
	if len(gate.published) != 1 {
		t.Fatalf("got %d publishes, expected 1", len(gate.published))
	}
	if gate.published[0].topic != "car1/toyota/RPM" {
		t.Errorf("topic = %q, expected car1/toyota/RPM", gate.published[0].topic)
	}

	var env Envelope
	if err := json.Unmarshal(gate.published[0].payload, &env); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	// Unit suffix must be stripped on the wire, kept in the local log
	if env.Data != "2500" {
		t.Errorf("envelope data = %q, expected 2500", env.Data)
	}
	// Wall clock at publish time, in float epoch seconds
	if env.Timestamp < before || env.Timestamp > after {
		t.Errorf("envelope timestamp = %v, expected wall clock seconds in [%v, %v]",
			env.Timestamp, before, after)
	}
}

func TestTransportDownIsFatalForTheRun(t *testing.T) {
	driver := &fakeDriver{
		commands: []obd.Command{{Name: "RPM"}},
		responses: map[string]*obd.Response{
			"RPM": {
				Command: obd.Command{Name: "RPM"},
				Value:   obd.Quantity(2500, "rpm"),
			},
		},
	}
	appendLog, _ := newTestLog(t)
	gate := &fakeGate{failWith: errors.NewTransportDown("broker:8883", "car1/toyota/RPM")}
	service := newTestService(driver, appendLog, gate)

	err := service.Run(context.Background())
	if !stderrors.Is(err, errors.ErrTransportDown) {
		t.Fatalf("Run() error = %v, expected ErrTransportDown", err)
	}
}

func TestRunStopsCleanlyOnCancellation(t *testing.T) {
	driver := &fakeDriver{
		commands: []obd.Command{{Name: "RPM"}},
		responses: map[string]*obd.Response{
			"RPM": {
				Command: obd.Command{Name: "RPM"},
				Value:   obd.Quantity(2500, "rpm"),
			},
		},
	}
	appendLog, _ := newTestLog(t)
	service := newTestService(driver, appendLog, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		// An interrupt is a controlled stop, not an error
		if err != nil {
			t.Fatalf("Run() error = %v, expected clean stop", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}
}

func TestUnsupportedValueKindSkipsReadingOnly(t *testing.T) {
	driver := &fakeDriver{
		commands: []obd.Command{{Name: "MYSTERY"}, {Name: "RPM"}},
		responses: map[string]*obd.Response{
			"MYSTERY": {
				Command: obd.Command{Name: "MYSTERY"},
				Value:   obd.Value{Kind: obd.ValueKind(42)},
			},
			"RPM": {
				Command:   obd.Command{Name: "RPM"},
				Timestamp: 1700000000,
				Value:     obd.Quantity(2500, "rpm"),
			},
		},
	}
	appendLog, path := newTestLog(t)
	service := newTestService(driver, appendLog, nil)

	for _, cmd := range driver.commands {
		if err := service.sample(context.Background(), cmd); err != nil {
			t.Fatalf("sample(%s) error = %v", cmd.Name, err)
		}
	}

	lines := readLines(t, path)
	if len(lines) != 1 || !strings.Contains(lines[0], "RPM") {
		t.Errorf("expected only the RPM line, got %v", lines)
	}
}
