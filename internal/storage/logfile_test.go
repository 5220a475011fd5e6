package storage

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"obd-mqtt-logger/internal/errors"
)

func TestCreateAppendLogRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "car.log")
	if err := os.WriteFile(path, []byte("old data\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := CreateAppendLog(path, false)
	if !stderrors.Is(err, errors.ErrLogfileExists) {
		t.Fatalf("CreateAppendLog() error = %v, expected ErrLogfileExists", err)
	}

	// Nothing was written, the old content must survive
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old data\n" {
		t.Errorf("existing file was modified: %q", data)
	}
}

func TestCreateAppendLogForceOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "car.log")
	if err := os.WriteFile(path, []byte("old data\n"), 0644); err != nil {
		t.Fatal(err)
	}

	appendLog, err := CreateAppendLog(path, true)
	if err != nil {
		t.Fatalf("CreateAppendLog() error = %v", err)
	}
	defer appendLog.Close()

	if err := appendLog.WriteLine("1700000000,RPM,2500:rpm,"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1700000000,RPM,2500:rpm,\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestOpenAppendLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mqtt.log")
	if err := os.WriteFile(path, []byte("first line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	appendLog, err := OpenAppendLog(path)
	if err != nil {
		t.Fatalf("OpenAppendLog() error = %v", err)
	}
	defer appendLog.Close()

	if err := appendLog.WriteLine("second line"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first line\nsecond line\n" {
		t.Errorf("file content = %q", data)
	}
}
