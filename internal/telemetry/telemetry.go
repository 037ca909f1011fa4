package telemetry

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var errLog = zerolog.New(os.Stderr).With().Str("component", "telemetry").Logger()

// Emit appends a single JSON line to <ArtifactsDir>/events.jsonl when
// observation is enabled. It augments fields with RFC3339Nano time and the
// event name; those two keys in fields are ignored.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "time" || k == "event" {
			continue
		}
		m[k] = v
	}

	dir := ArtifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		errLog.Error().Err(err).Str("dir", dir).Msg("mkdir")
		return
	}

	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		errLog.Error().Err(err).Str("path", path).Msg("open")
		return
	}
	defer f.Close()

	l := zerolog.New(f)
	l.Log().
		Fields(m).
		Str("time", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("event", name).
		Send()
}
