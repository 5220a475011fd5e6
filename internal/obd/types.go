package obd

// ValueKind identifies the dynamic kind of a decoded reading value.
// The set is closed - anything the adapter hands back must map onto one
// of these or the codec rejects it.
type ValueKind int

const (
	// KindAbsent means the car returned no data for the command
	KindAbsent ValueKind = iota
	// KindQuantity is a physical quantity with a unit (e.g. 2500 rpm)
	KindQuantity
	// KindStatus is the OBD status word (MIL, trouble code count, ignition)
	KindStatus
	// KindScalar is any plain value already rendered as a string
	KindScalar
)

// String returns the string representation of the kind
func (k ValueKind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindQuantity:
		return "quantity"
	case KindStatus:
		return "status"
	case KindScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the four value kinds a reading can carry.
// Only the fields belonging to Kind are meaningful.
type Value struct {
	Kind ValueKind

	// KindQuantity
	Magnitude float64
	Unit      string

	// KindStatus
	MIL          bool
	DTCCount     int
	IgnitionType string

	// KindScalar
	Scalar string
}

// Absent returns the explicit no-data value
func Absent() Value {
	return Value{Kind: KindAbsent}
}

// Quantity builds a physical-quantity value
func Quantity(magnitude float64, unit string) Value {
	return Value{Kind: KindQuantity, Magnitude: magnitude, Unit: unit}
}

// Status builds an OBD status value
func Status(mil bool, dtcCount int, ignitionType string) Value {
	return Value{Kind: KindStatus, MIL: mil, DTCCount: dtcCount, IgnitionType: ignitionType}
}

// Scalar builds a plain scalar/string value
func Scalar(s string) Value {
	return Value{Kind: KindScalar, Scalar: s}
}

// Command identifies one supported instrument reading.
// Supplied by the driver at session start and immutable afterwards.
type Command struct {
	Name     string
	Category string
}

// Response is one sampled value for a command.
// Messages holds the raw frames exactly as the adapter transmitted them,
// possibly empty. Immutable after creation.
type Response struct {
	Command   Command
	Timestamp int64
	Value     Value
	Messages  [][]byte
}
