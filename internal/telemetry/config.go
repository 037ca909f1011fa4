package telemetry

import (
	"os"
)

// Environment variables read at startup.
const (
	EnvCalibrationMode = "AICTX_CALIBRATION_MODE"
	EnvObserveJSON     = "AICTX_OBSERVE_JSON"
	EnvArtifactsDir    = "AICTX_ARTIFACTS_DIR"

	DefaultArtifactsDir = ".aictx"
)

// Settings are the telemetry gates.
type Settings struct {
	Calibration  bool
	Observe      bool
	ArtifactsDir string
}

// SettingsFrom derives Settings from lookup. Observe defaults to Calibration
// when its variable is unset; an explicit value other than "1" turns it off.
func SettingsFrom(lookup func(string) (string, bool)) Settings {
	s := Settings{ArtifactsDir: DefaultArtifactsDir}
	if v, _ := lookup(EnvCalibrationMode); v == "1" {
		s.Calibration = true
	}
	if v, ok := lookup(EnvObserveJSON); ok {
		s.Observe = v == "1"
	} else {
		s.Observe = s.Calibration
	}
	if v, _ := lookup(EnvArtifactsDir); v != "" {
		s.ArtifactsDir = v
	}
	return s
}

// Read once at process start; only the observe and artifacts-dir
// overrides below are consulted again.
var startup = SettingsFrom(os.LookupEnv)

// CalibrationModeEnabled reports whether calibration mode was enabled at startup.
func CalibrationModeEnabled() bool { return startup.Calibration }

// ObserveEnabled reports whether JSONL emission is on. Setting
// AICTX_OBSERVE_JSON=1 mid-run turns it on.
func ObserveEnabled() bool {
	if os.Getenv(EnvObserveJSON) == "1" {
		return true
	}
	return startup.Observe
}

// ArtifactsDir returns the directory events.jsonl is written to.
func ArtifactsDir() string {
	if d := os.Getenv(EnvArtifactsDir); d != "" {
		return d
	}
	return startup.ArtifactsDir
}
