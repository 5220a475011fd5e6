package topics

import (
	stderrors "errors"
	"testing"

	"obd-mqtt-logger/internal/errors"
)

func TestBuildAndParseRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		clientID    string
		domain      string
		readingName string
	}{
		{"plain reading", "car1", "toyota", "RPM"},
		{"reading name with separator", "car1", "toyota", "MODE/06/DATA"},
		{"empty reading name", "car1", "toyota", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic := Build(tt.clientID, tt.domain, tt.readingName)
			parsed, err := Parse(topic)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", topic, err)
			}
			if parsed.ClientID != tt.clientID || parsed.Domain != tt.domain || parsed.ReadingName != tt.readingName {
				t.Errorf("Parse(%q) = %+v, expected (%q, %q, %q)",
					topic, parsed, tt.clientID, tt.domain, tt.readingName)
			}
			if parsed.String() != topic {
				t.Errorf("String() = %q, expected %q", parsed.String(), topic)
			}
		})
	}
}

func TestParseSeriesAndField(t *testing.T) {
	parsed, err := Parse("car1/toyota/RPM")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Series() != "car1/toyota" {
		t.Errorf("Series() = %q, expected car1/toyota", parsed.Series())
	}
	if parsed.Field() != "RPM" {
		t.Errorf("Field() = %q, expected RPM", parsed.Field())
	}
}

func TestParseKeepsEmbeddedSeparators(t *testing.T) {
	parsed, err := Parse("car1/toyota/a/b/c")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.ReadingName != "a/b/c" {
		t.Errorf("ReadingName = %q, expected a/b/c", parsed.ReadingName)
	}
}

func TestParseMalformedTopic(t *testing.T) {
	tests := []string{
		"",
		"car1",
		"car1/toyota",
	}
	for _, topic := range tests {
		t.Run("topic "+topic, func(t *testing.T) {
			_, err := Parse(topic)
			if !stderrors.Is(err, errors.ErrMalformedTopic) {
				t.Errorf("Parse(%q) error = %v, expected ErrMalformedTopic", topic, err)
			}
		})
	}
}
