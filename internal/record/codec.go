package record

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"obd-mqtt-logger/internal/errors"
	"obd-mqtt-logger/internal/obd"
)

// ErrNoData marks a reading the car returned nothing for.
// A silent skip, not a reportable failure: no record, no log line, no publish.
var ErrNoData = fmt.Errorf("no data")

// CanonicalRecord is the normalized, persisted/transmitted form of one
// reading. Never mutated after creation. Consumers of historical logs
// depend on the exact string shapes produced here.
type CanonicalRecord struct {
	Timestamp int64
	Name      string
	Decoded   string
	RawHex    string
}

// Line renders the record as one append-log line (without the newline).
// Format: <epoch-seconds>,<name>,<decoded>,<rawhex>
func (r *CanonicalRecord) Line() string {
	return fmt.Sprintf("%d,%s,%s,%s", r.Timestamp, r.Name, r.Decoded, r.RawHex)
}

// PublishData derives the wire payload's data field from the decoded
// value: everything up to the first ':'. Unit suffixes are stripped
// before transmission while the local log keeps them.
func (r *CanonicalRecord) PublishData() string {
	if idx := strings.IndexByte(r.Decoded, ':'); idx >= 0 {
		return r.Decoded[:idx]
	}
	return r.Decoded
}

// Codec converts typed responses into canonical records.
// Holds the named raw-field override table (configuration, see filter.go).
type Codec struct {
	rawOverrides map[string]RawOverride
}

// NewCodec creates a codec with the default override table
func NewCodec() *Codec {
	return NewCodecWithOverrides(DefaultRawOverrides())
}

// NewCodecWithOverrides creates a codec with a custom override table
func NewCodecWithOverrides(overrides map[string]RawOverride) *Codec {
	return &Codec{rawOverrides: overrides}
}

// Encode normalizes one response into a canonical record.
// Returns ErrNoData for absent values and UnsupportedValueKind when the
// value's dynamic kind matches no known decode rule.
func (c *Codec) Encode(resp *obd.Response) (*CanonicalRecord, error) {
	var decoded string

	switch resp.Value.Kind {
	case obd.KindAbsent:
		return nil, ErrNoData
	case obd.KindStatus:
		decoded = fmt.Sprintf("%s;%d;%s",
			formatBool(resp.Value.MIL), resp.Value.DTCCount, resp.Value.IgnitionType)
	case obd.KindQuantity:
		decoded = fmt.Sprintf("%s:%s", formatMagnitude(resp.Value.Magnitude), resp.Value.Unit)
	case obd.KindScalar:
		decoded = resp.Value.Scalar
	default:
		return nil, errors.NewUnsupportedValueKind(resp.Command.Name, resp.Value.Kind.String())
	}

	// Records are one line each; embedded newlines become ';'
	decoded = strings.ReplaceAll(decoded, "\n", ";")

	return &CanonicalRecord{
		Timestamp: resp.Timestamp,
		Name:      resp.Command.Name,
		Decoded:   decoded,
		RawHex:    c.rawHex(resp),
	}, nil
}

// rawHex computes the raw field: the semicolon-joined lowercase hex dump
// of the adapter frames, unless the command has an override rule.
func (c *Codec) rawHex(resp *obd.Response) string {
	switch c.rawOverrides[resp.Command.Name] {
	case OverrideMagnitude:
		// Re-encode the decoded magnitude instead of the frame dump
		return hex.EncodeToString([]byte(formatMagnitude(resp.Value.Magnitude)))
	case OverrideScalar:
		// Re-encode the decoded string value instead of the frame dump
		return hex.EncodeToString([]byte(resp.Value.Scalar))
	}

	if len(resp.Messages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		parts = append(parts, hex.EncodeToString(msg))
	}
	return strings.Join(parts, ";")
}

// formatMagnitude renders a magnitude in minimal decimal form:
// no exponent, no trailing zeros, integers without a decimal point.
func formatMagnitude(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatBool renders the MIL flag capitalized, byte-compatible with
// historical log lines
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
