package storage

import (
	"os"

	"obd-mqtt-logger/internal/errors"
)

// AppendLog is a line-oriented UTF-8 log file. The handle stays open for
// the lifetime of a run and every line reaches the file before the next
// unit of work starts - a crash loses at most the in-flight line.
type AppendLog struct {
	file *os.File
}

// CreateAppendLog opens a fresh producer log. Refuses to touch an
// existing file unless forceOverwrite is set.
func CreateAppendLog(path string, forceOverwrite bool) (*AppendLog, error) {
	if _, err := os.Stat(path); err == nil && !forceOverwrite {
		return nil, errors.NewLogfileExists(path)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return &AppendLog{file: file}, nil
}

// OpenAppendLog opens a consumer log in append mode, creating it when
// missing
func OpenAppendLog(path string) (*AppendLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &AppendLog{file: file}, nil
}

// WriteLine appends one record line. The newline is added here; callers
// must not embed raw newlines.
func (l *AppendLog) WriteLine(line string) error {
	_, err := l.file.WriteString(line + "\n")
	return err
}

// Close releases the file handle
func (l *AppendLog) Close() error {
	return l.file.Close()
}
