// Package sim provides a bench adapter implementing obd.Driver with
// synthetic readings. It stands in for a real ELM327 adapter during
// development and in environments without a car.
package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"obd-mqtt-logger/internal/obd"
)

// queryLatency approximates the serial round-trip of a real adapter
const queryLatency = 50 * time.Millisecond

// Driver produces deterministic-looking values derived from the clock
type Driver struct {
	catalog []obd.Command
	started time.Time
}

// Connect opens a simulated session. The device path is accepted for
// interface compatibility and ignored.
func Connect(ctx context.Context, device string) (obd.Driver, error) {
	return &Driver{
		catalog: []obd.Command{
			{Name: "RPM", Category: "engine"},
			{Name: "SPEED", Category: "engine"},
			{Name: "ENGINE_LOAD", Category: "engine"},
			{Name: "THROTTLE_POS", Category: "engine"},
			{Name: "ELM_VOLTAGE", Category: "adapter"},
			{Name: "ELM_VERSION", Category: "adapter"},
			{Name: "STATUS", Category: "diagnostic"},
			{Name: "GET_DTC", Category: "diagnostic"},
			{Name: "FUEL_LEVEL", Category: "fuel"},
		},
		started: time.Now(),
	}, nil
}

// SupportedCommands returns the fixed bench catalog
func (d *Driver) SupportedCommands() []obd.Command {
	return d.catalog
}

// Query fabricates one reading for the command
func (d *Driver) Query(ctx context.Context, cmd obd.Command) (*obd.Response, error) {
	time.Sleep(queryLatency)

	now := time.Now()
	phase := now.Sub(d.started).Seconds()

	resp := &obd.Response{
		Command:   cmd,
		Timestamp: now.Unix(),
	}

	switch cmd.Name {
	case "RPM":
		value := 900 + 1600*(1+math.Sin(phase/10))/2
		resp.Value = obd.Quantity(math.Round(value), "revolutions_per_minute")
		resp.Messages = [][]byte{frameFor(value)}
	case "SPEED":
		value := 40 * (1 + math.Sin(phase/30)) / 2
		resp.Value = obd.Quantity(math.Round(value), "kph")
		resp.Messages = [][]byte{frameFor(value)}
	case "ENGINE_LOAD":
		resp.Value = obd.Quantity(math.Round(35+10*math.Sin(phase/5)), "percent")
	case "THROTTLE_POS":
		resp.Value = obd.Quantity(math.Round(12+8*math.Sin(phase/3)), "percent")
	case "ELM_VOLTAGE":
		resp.Value = obd.Quantity(13.8, "volt")
	case "ELM_VERSION":
		resp.Value = obd.Scalar("ELM327 v1.5")
	case "STATUS":
		resp.Value = obd.Status(false, 0, "spark")
	case "FUEL_LEVEL":
		// Roughly one tank per eight hours of driving
		level := math.Max(0, 95-phase/300)
		resp.Value = obd.Quantity(math.Round(level), "percent")
	default:
		resp.Value = obd.Absent()
	}

	return resp, nil
}

// Close releases nothing for the bench adapter
func (d *Driver) Close() error {
	return nil
}

// frameFor fabricates a two-byte adapter frame for a value
func frameFor(value float64) []byte {
	raw := uint16(value)
	return []byte(fmt.Sprintf("41%04x", raw))
}
