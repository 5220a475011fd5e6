package errors

import (
	"errors"
	"fmt"
)

// ErrorSeverity defines the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Sentinel targets for errors.Is matching at call sites.
// Steady-state errors are warnings that skip one unit of work; startup
// errors and TransportDown are fatal for the run.
var (
	ErrUnsupportedValueKind = errors.New("unsupported value kind")
	ErrMalformedTopic       = errors.New("malformed topic")
	ErrTransportDown        = errors.New("transport down")
	ErrConnectFailed        = errors.New("connect failed")
	ErrLogfileExists        = errors.New("logfile exists")
	ErrStoreWriteFailed     = errors.New("store write failed")
)

// LoggerError is the base error type for all logger errors
type LoggerError struct {
	Op       string        // Operation that failed
	Kind     error         // Sentinel for errors.Is
	Err      error         // Underlying error
	Severity ErrorSeverity // Error severity
	Code     int           // Diagnostic code
}

// Error implements the error interface
func (e *LoggerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Severity, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Severity, e.Op, e.Kind)
}

// Unwrap returns the underlying error chain
func (e *LoggerError) Unwrap() error {
	return e.Err
}

// Is matches against the sentinel kind
func (e *LoggerError) Is(target error) bool {
	return target == e.Kind
}

// UnsupportedValueKindError reports a reading whose decoded value matches
// no known decode rule. Skips that reading only.
type UnsupportedValueKindError struct {
	LoggerError
	Command   string
	ValueKind string
}

// NewUnsupportedValueKind creates a new unsupported-value-kind error
func NewUnsupportedValueKind(command, kind string) *UnsupportedValueKindError {
	return &UnsupportedValueKindError{
		LoggerError: LoggerError{
			Op:       "decode",
			Kind:     ErrUnsupportedValueKind,
			Severity: SeverityWarning,
			Code:     2,
		},
		Command:   command,
		ValueKind: kind,
	}
}

// Error implements the error interface
func (e *UnsupportedValueKindError) Error() string {
	return fmt.Sprintf("[%s] decode %s: unsupported value kind %q",
		e.Severity, e.Command, e.ValueKind)
}

// MalformedTopicError reports an inbound topic with fewer than two
// separators. Drops that message only.
type MalformedTopicError struct {
	LoggerError
	Topic string
}

// NewMalformedTopic creates a new malformed-topic error
func NewMalformedTopic(topic string) *MalformedTopicError {
	return &MalformedTopicError{
		LoggerError: LoggerError{
			Op:       "parse topic",
			Kind:     ErrMalformedTopic,
			Severity: SeverityWarning,
			Code:     3,
		},
		Topic: topic,
	}
}

// Error implements the error interface
func (e *MalformedTopicError) Error() string {
	return fmt.Sprintf("[%s] parse topic %q: fewer than two separators",
		e.Severity, e.Topic)
}

// TransportDownError reports a publish attempted while the broker
// connection is known dead. Fatal for the producer run.
type TransportDownError struct {
	LoggerError
	Broker string
	Topic  string
}

// NewTransportDown creates a new transport-down error
func NewTransportDown(broker, topic string) *TransportDownError {
	return &TransportDownError{
		LoggerError: LoggerError{
			Op:       "publish",
			Kind:     ErrTransportDown,
			Severity: SeverityCritical,
			Code:     4,
		},
		Broker: broker,
		Topic:  topic,
	}
}

// Error implements the error interface
func (e *TransportDownError) Error() string {
	return fmt.Sprintf("[%s] publish to %q: MQTT broker %q connection is down",
		e.Severity, e.Topic, e.Broker)
}

// ConnectFailedError reports a failed instrument or transport connect at
// startup. Fatal before any loop is entered.
type ConnectFailedError struct {
	LoggerError
	Target string
}

// NewConnectFailed creates a new connect-failed error
func NewConnectFailed(target string, err error) *ConnectFailedError {
	return &ConnectFailedError{
		LoggerError: LoggerError{
			Op:       "connect",
			Kind:     ErrConnectFailed,
			Err:      err,
			Severity: SeverityCritical,
			Code:     1,
		},
		Target: target,
	}
}

// Error implements the error interface
func (e *ConnectFailedError) Error() string {
	return fmt.Sprintf("[%s] could not connect to %s: %v",
		e.Severity, e.Target, e.Err)
}

// LogfileExistsError reports that the target log path already exists and
// overwrite was not requested. Fatal at startup.
type LogfileExistsError struct {
	LoggerError
	Path string
}

// NewLogfileExists creates a new logfile-exists error
func NewLogfileExists(path string) *LogfileExistsError {
	return &LogfileExistsError{
		LoggerError: LoggerError{
			Op:       "open logfile",
			Kind:     ErrLogfileExists,
			Severity: SeverityCritical,
			Code:     5,
		},
		Path: path,
	}
}

// Error implements the error interface
func (e *LogfileExistsError) Error() string {
	return fmt.Sprintf("[%s] logfile %q exists already, will not overwrite "+
		"(remove it or pass -f)", e.Severity, e.Path)
}

// StoreWriteFailedError reports a failed time-series write. Reported,
// does not stop the consumer's subscription.
type StoreWriteFailedError struct {
	LoggerError
	Series string
	Field  string
}

// NewStoreWriteFailed creates a new store-write-failed error
func NewStoreWriteFailed(series, field string, err error) *StoreWriteFailedError {
	return &StoreWriteFailedError{
		LoggerError: LoggerError{
			Op:       "store write",
			Kind:     ErrStoreWriteFailed,
			Err:      err,
			Severity: SeverityError,
			Code:     6,
		},
		Series: series,
		Field:  field,
	}
}

// Error implements the error interface
func (e *StoreWriteFailedError) Error() string {
	return fmt.Sprintf("[%s] writing %s/%s to time-series store: %v",
		e.Severity, e.Series, e.Field, e.Err)
}
