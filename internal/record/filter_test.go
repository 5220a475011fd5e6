package record

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilterSkip(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		command  string
		wantSkip bool
	}{
		{"deny-listed entry", "O2_SENSORS", true},
		{"deny-listed adapter reading", "ELM_VOLTAGE", true},
		{"DTC substring anywhere", "GET_CURRENT_DTC", true},
		{"DTC substring in new reading", "SOME_NEW_DTC_READING", true},
		{"catalyst temperature", "CATALYST_TEMP_B1S1", true},
		{"engine speed passes", "RPM", false},
		{"vehicle speed passes", "SPEED", false},
		{"throttle passes", "THROTTLE_POS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Skip(tt.command); got != tt.wantSkip {
				t.Errorf("Skip(%q) = %v, expected %v", tt.command, got, tt.wantSkip)
			}
		})
	}
}

func TestFilterCustomDenyList(t *testing.T) {
	filter := NewFilterWithDenyList([]string{"RPM"})

	if !filter.Skip("RPM") {
		t.Error("custom deny-list entry not skipped")
	}
	if filter.Skip("O2_SENSORS") {
		t.Error("default deny-list leaked into custom filter")
	}
	// Substring rules hold regardless of the configured list
	if !filter.Skip("GET_DTC") {
		t.Error("DTC substring rule not applied with custom deny-list")
	}
}

func TestLoadCatalogConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
deny_list:
  - NOISY_READING
raw_overrides:
  BATTERY_VOLTAGE: magnitude
  FIRMWARE_VERSION: scalar
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	filter, overrides, err := LoadCatalogConfig(path)
	if err != nil {
		t.Fatalf("LoadCatalogConfig() error = %v", err)
	}
	if !filter.Skip("NOISY_READING") {
		t.Error("configured deny-list entry not skipped")
	}
	if overrides["BATTERY_VOLTAGE"] != OverrideMagnitude {
		t.Errorf("BATTERY_VOLTAGE override = %v, expected OverrideMagnitude", overrides["BATTERY_VOLTAGE"])
	}
	if overrides["FIRMWARE_VERSION"] != OverrideScalar {
		t.Errorf("FIRMWARE_VERSION override = %v, expected OverrideScalar", overrides["FIRMWARE_VERSION"])
	}
}

func TestLoadCatalogConfigRejectsUnknownRule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("raw_overrides:\n  X: bogus\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadCatalogConfig(path); err == nil {
		t.Error("expected an error for an unknown override rule")
	}
}
