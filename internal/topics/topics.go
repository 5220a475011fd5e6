package topics

import (
	"fmt"
	"strings"

	"obd-mqtt-logger/internal/errors"
)

// Separator between topic path segments
const Separator = "/"

// TopicPath holds the three components of a reading's origin.
// Invariant: Build(ClientID, Domain, ReadingName) reproduces the path
// the components were parsed from.
type TopicPath struct {
	ClientID    string
	Domain      string
	ReadingName string
}

// Build constructs the publish topic for a reading
// Pattern: {client_id}/{domain}/{reading_name}
func Build(clientID, domain, readingName string) string {
	return fmt.Sprintf("%s/%s/%s", clientID, domain, readingName)
}

// Parse splits an inbound topic into its components.
// Only the first two separators are structural: reading names are
// free-form and may themselves contain "/", so everything after the
// second separator is kept verbatim as ReadingName.
func Parse(topic string) (*TopicPath, error) {
	parts := strings.SplitN(topic, Separator, 3)
	if len(parts) < 3 {
		return nil, errors.NewMalformedTopic(topic)
	}
	return &TopicPath{
		ClientID:    parts[0],
		Domain:      parts[1],
		ReadingName: parts[2],
	}, nil
}

// Series returns the two-level time-series key for the reading
func (t *TopicPath) Series() string {
	return t.ClientID + Separator + t.Domain
}

// Field returns the field name under the series
func (t *TopicPath) Field() string {
	return t.ReadingName
}

// String reassembles the full topic path
func (t *TopicPath) String() string {
	return Build(t.ClientID, t.Domain, t.ReadingName)
}
