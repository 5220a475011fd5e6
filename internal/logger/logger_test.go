package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestShouldLogLadder(t *testing.T) {
	tests := []struct {
		name         string
		currentLevel string
		messageLevel string
		want         bool
	}{
		{"error level passes error", LogLevelError, LogLevelError, true},
		{"error level blocks warn", LogLevelError, LogLevelWarn, false},
		{"warn level passes error", LogLevelWarn, LogLevelError, true},
		{"warn level passes warn", LogLevelWarn, LogLevelWarn, true},
		{"warn level blocks info", LogLevelWarn, LogLevelInfo, false},
		{"warn level blocks debug", LogLevelWarn, LogLevelDebug, false},
		{"info level passes warn", LogLevelInfo, LogLevelWarn, true},
		{"info level blocks debug", LogLevelInfo, LogLevelDebug, false},
		{"debug level passes debug", LogLevelDebug, LogLevelDebug, true},
		{"unknown level allows message", "exotic", LogLevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldLog(tt.currentLevel, tt.messageLevel); got != tt.want {
				t.Errorf("shouldLog(%q, %q) = %v, want %v",
					tt.currentLevel, tt.messageLevel, got, tt.want)
			}
		})
	}
}

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WARNING", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"WARN", LogLevelWarn},
		{"DEBUG", LogLevelDebug},
		{"Info", LogLevelInfo},
		{"error", LogLevelError},
	}

	for _, tt := range tests {
		if got := normalizeLevel(tt.in); got != tt.want {
			t.Errorf("normalizeLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWarningLevelSuppressesInfoAndDebug(t *testing.T) {
	var buf bytes.Buffer
	prevOutput := log.Writer()
	log.SetOutput(&buf)
	prevConfig := GlobalLogging
	defer func() {
		log.SetOutput(prevOutput)
		GlobalLogging = prevConfig
	}()

	Init(&LoggingConfig{Level: "WARNING"})

	LogDebug("debug line")
	LogInfo("info line")
	LogWarn("warn line")
	LogError("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Error("WARNING level must suppress debug messages")
	}
	if strings.Contains(out, "info line") {
		t.Error("WARNING level must suppress info messages")
	}
	if !strings.Contains(out, "warn line") {
		t.Error("WARNING level must pass warn messages")
	}
	if !strings.Contains(out, "error line") {
		t.Error("WARNING level must pass error messages")
	}
}

func TestSetLevelNormalizesAtRuntime(t *testing.T) {
	prevConfig := GlobalLogging
	defer func() { GlobalLogging = prevConfig }()

	GlobalLogging = &LoggingConfig{Level: LogLevelInfo}
	SetLevel("WARNING")

	if GlobalLogging.Level != LogLevelWarn {
		t.Errorf("SetLevel(WARNING) left level %q, want %q", GlobalLogging.Level, LogLevelWarn)
	}
	if IsDebugEnabled() {
		t.Error("debug must stay disabled at warn level")
	}
}
