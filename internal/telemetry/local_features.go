package telemetry

import (
	"context"

	"github.com/petasbytes/aicontext/internal/metrics"
)

// EmitTurnFeatures records size features of a recorded exchange. Raw text
// never reaches the event.
func EmitTurnFeatures(ctx context.Context, speaker, prompt, reply string) {
	if !(CalibrationModeEnabled() && ObserveEnabled()) {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	Emit("turn_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"speaker":          speaker,
		"prompt":           featureMap(metrics.CountFeatures(prompt)),
		"reply":            featureMap(metrics.CountFeatures(reply)),
	})
}

func featureMap(f metrics.Features) map[string]any {
	return map[string]any{
		"bytes": f.Bytes,
		"runes": f.Runes,
		"words": f.Words,
		"lines": f.Lines,
	}
}
