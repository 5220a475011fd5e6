package obd

import "context"

// Driver is the interface to the OBD-II adapter.
// Interface Segregation Principle - the producer only needs the catalog
// and a blocking query; connection setup and the serial protocol live in
// the concrete adapter implementation.
type Driver interface {
	// SupportedCommands returns the reading catalog negotiated with the car
	SupportedCommands() []Command

	// Query samples one command and returns its typed response.
	// Blocks at the adapter's native latency; not interruptible mid-query.
	Query(ctx context.Context, cmd Command) (*Response, error)

	// Close releases the serial device
	Close() error
}

// Connector opens a driver session on a serial-port-like device.
// A failed connect is fatal at startup (ConnectFailed), never retried here.
type Connector func(ctx context.Context, device string) (Driver, error)
