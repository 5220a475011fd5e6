package record

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RawOverride selects a raw-field rule replacing the generic frame dump
// for specific named commands
type RawOverride int

const (
	// OverrideNone keeps the generic hex dump of the adapter frames
	OverrideNone RawOverride = iota
	// OverrideMagnitude hex-encodes the decoded magnitude string
	OverrideMagnitude
	// OverrideScalar hex-encodes the decoded string value
	OverrideScalar
)

// DefaultRawOverrides returns the built-in override table.
// ELM_VOLTAGE carries the adapter's own voltage, whose frame dump is not
// the value actually logged; ELM_VERSION has no frames at all.
func DefaultRawOverrides() map[string]RawOverride {
	return map[string]RawOverride{
		"ELM_VOLTAGE": OverrideMagnitude,
		"ELM_VERSION": OverrideScalar,
	}
}

// defaultDenyList holds readings that are known noisy, static or
// irrelevant for trip logging. DTC and catalyst-temperature readings are
// excluded by substring match instead, see Skip.
var defaultDenyList = []string{
	"O2_SENSORS",
	"O2_S1_WR_CURRENT",
	"AMBIANT_AIR_TEMP",
	"CALIBRATION_ID",
	"CATALYST_TEMP_B1S2",
	"CONTROL_MODULE_VOLTAGE",
	"CVN",
	"DISTANCE_W_MIL",
	"DISTANCE_SINCE_DTC_CLEAR",
	"DTC_FUEL_TYPE",
	"DTC_BAROMETRIC_PRESSURE",
	"ELM_VOLTAGE",
	"FUEL_TYPE",
	"GET_CURRENT_DTC",
	"GET_DTC",
	"COMMANDED_EQUIV_RATIO",
	"EVAPORATIVE_PURGE",
	"LONG_FUEL_TRIM_1",
	"O2_S2_WR_CURRENT",
	"FUEL_STATUS",
	"BAROMETRIC_PRESSURE",
	"MIDS_A",
	"MIDS_B",
	"MIDS_C",
	"MIDS_D",
	"MIDS_E",
	"MIDS_F",
	"MONITOR_CATALYST_B1",
	"MONITOR_MISFIRE_CYLINDER_1",
	"MONITOR_MISFIRE_CYLINDER_2",
	"MONITOR_MISFIRE_CYLINDER_3",
	"MONITOR_MISFIRE_CYLINDER_4",
	"MONITOR_MISFIRE_GENERAL",
	"MONITOR_O2_B1S1",
	"MONITOR_O2_B1S2",
	"MONITOR_EGR_B1",
	"MONITOR_VVT_B1",
	"PIDS_9A",
	"PIDS_A",
	"PIDS_B",
	"PIDS_C",
	"RUN_TIME_MIL",
	"SHORT_O2_TRIM_B1",
	"LONG_O2_TRIM_B1",
	"SHORT_FUEL_TRIM_1",
	"STATUS",
	"TIMING_ADVANCE",
	"VIN",
	"WARMUPS_SINCE_DTC_CLEAR",
	"ELM_VERSION",
	"OBD_COMPLIANCE",
	"INTAKE_TEMP",
	"COOLANT_TEMP",
}

// Filter decides which catalog entries the producer samples at all.
// Filtered readings never reach the codec, the log file or the broker.
type Filter struct {
	deny map[string]struct{}
}

// NewFilter creates a filter with the built-in deny-list
func NewFilter() *Filter {
	return NewFilterWithDenyList(defaultDenyList)
}

// NewFilterWithDenyList creates a filter with a custom deny-list
func NewFilterWithDenyList(names []string) *Filter {
	deny := make(map[string]struct{}, len(names))
	for _, name := range names {
		deny[name] = struct{}{}
	}
	return &Filter{deny: deny}
}

// Skip reports whether a command must be excluded from sampling
func (f *Filter) Skip(name string) bool {
	if _, ok := f.deny[name]; ok {
		return true
	}
	return strings.Contains(name, "DTC") || strings.Contains(name, "CATALYST")
}

// catalogFile is the on-disk form of the filter and override tables
type catalogFile struct {
	DenyList     []string          `yaml:"deny_list"`
	RawOverrides map[string]string `yaml:"raw_overrides"`
}

// LoadCatalogConfig reads the deny-list and raw-override tables from a
// YAML file. Missing sections fall back to the built-in defaults.
func LoadCatalogConfig(path string) (*Filter, map[string]RawOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read catalog config %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("error parsing catalog config %s: %w", path, err)
	}

	filter := NewFilter()
	if len(file.DenyList) > 0 {
		filter = NewFilterWithDenyList(file.DenyList)
	}

	overrides := DefaultRawOverrides()
	if len(file.RawOverrides) > 0 {
		overrides = make(map[string]RawOverride, len(file.RawOverrides))
		for name, rule := range file.RawOverrides {
			switch rule {
			case "magnitude":
				overrides[name] = OverrideMagnitude
			case "scalar":
				overrides[name] = OverrideScalar
			default:
				return nil, nil, fmt.Errorf("unknown raw override rule %q for %s", rule, name)
			}
		}
	}

	return filter, overrides, nil
}
