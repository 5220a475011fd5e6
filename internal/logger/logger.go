package logger

import (
	"log"
	"os"
	"strings"
)

// LogLevel constants
const (
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
)

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// GlobalLogging is the active logging configuration
var GlobalLogging *LoggingConfig

// normalizeLevel maps configuration spellings onto the level ladder.
// "WARNING" is the historical configuration value for the warn level.
func normalizeLevel(level string) string {
	level = strings.ToLower(level)
	if level == "warning" {
		return LogLevelWarn
	}
	return level
}

// Init applies the logging configuration to the process-wide logger
func Init(config *LoggingConfig) {
	level := normalizeLevel(config.Level)
	if level == "" {
		level = LogLevelInfo
	}
	config.Level = level

	if config.File != "" {
		// 0600 permissions, owner read/write only
		output, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			log.Printf("Failed to open log file %s: %v, falling back to stdout", config.File, err)
		} else {
			log.SetOutput(output)
		}
	}

	GlobalLogging = config
}

// SetLevel changes the active log level at runtime (config watch)
func SetLevel(level string) {
	if GlobalLogging != nil {
		GlobalLogging.Level = normalizeLevel(level)
	}
}

// shouldLog checks if a message should be logged based on current level
func shouldLog(currentLevel, messageLevel string) bool {
	levels := []string{LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug}

	currentIndex := -1
	messageIndex := -1

	for i, level := range levels {
		if level == currentLevel {
			currentIndex = i
		}
		if level == messageLevel {
			messageIndex = i
		}
	}

	// If either level is not found, default to allowing the message
	if currentIndex == -1 || messageIndex == -1 {
		return true
	}

	return messageIndex <= currentIndex
}

// LogStartup logs startup messages that should always be visible regardless of log level
func LogStartup(format string, args ...interface{}) {
	log.Printf("🔧 "+format, args...)
}

// LogError logs error messages via the global configuration
func LogError(format string, args ...interface{}) {
	if GlobalLogging == nil || shouldLog(normalizeLevel(GlobalLogging.Level), LogLevelError) {
		log.Printf("❌ "+format, args...)
	}
}

// LogWarn logs warning messages via the global configuration
func LogWarn(format string, args ...interface{}) {
	if GlobalLogging == nil || shouldLog(normalizeLevel(GlobalLogging.Level), LogLevelWarn) {
		log.Printf("⚠️ "+format, args...)
	}
}

// LogInfo logs info messages via the global configuration
func LogInfo(format string, args ...interface{}) {
	if GlobalLogging == nil || shouldLog(normalizeLevel(GlobalLogging.Level), LogLevelInfo) {
		log.Printf("ℹ️ "+format, args...)
	}
}

// LogDebug logs debug messages via the global configuration
func LogDebug(format string, args ...interface{}) {
	if GlobalLogging != nil && shouldLog(normalizeLevel(GlobalLogging.Level), LogLevelDebug) {
		log.Printf("🔧 "+format, args...)
	}
}

// IsDebugEnabled checks if debug logging is enabled
func IsDebugEnabled() bool {
	return GlobalLogging != nil && shouldLog(normalizeLevel(GlobalLogging.Level), LogLevelDebug)
}
