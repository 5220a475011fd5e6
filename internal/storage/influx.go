package storage

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"obd-mqtt-logger/internal/config"
	"obd-mqtt-logger/internal/errors"
)

// Point is one time-series datum derived from a received message.
// Series is the first two topic segments joined, Field the remainder.
type Point struct {
	Series    string
	Field     string
	Value     interface{}
	Timestamp time.Time
}

// PointWriter stores points into a time-series backend
type PointWriter interface {
	Write(ctx context.Context, p *Point) error
}

// InfluxStore writes points to InfluxDB. Each write opens and closes its
// own client connection: every message is an independent, synchronous
// unit of work with no batching, so a mid-run store outage affects only
// the messages arriving during it.
type InfluxStore struct {
	cfg *config.TSDBConfig
}

// NewInfluxStore creates a store writer for the configured server
func NewInfluxStore(cfg *config.TSDBConfig) *InfluxStore {
	return &InfluxStore{cfg: cfg}
}

// Write stores one point with millisecond precision
func (s *InfluxStore) Write(ctx context.Context, p *Point) error {
	options := influxdb2.DefaultOptions().SetPrecision(time.Millisecond)
	client := influxdb2.NewClientWithOptions(s.cfg.ServerURL(), s.cfg.AuthToken(), options)
	defer client.Close()

	point := influxdb2.NewPoint(
		p.Series,
		nil,
		map[string]interface{}{p.Field: p.Value},
		p.Timestamp,
	)

	writeAPI := client.WriteAPIBlocking(s.cfg.Org, s.cfg.Bucket)
	if err := writeAPI.WritePoint(ctx, point); err != nil {
		return errors.NewStoreWriteFailed(p.Series, p.Field, err)
	}
	return nil
}
