package app

import (
	"strings"

	"volumetric-fog/fog"
	"volumetric-fog/internal/output"
)

// FrameSummary writes one frame's statistics into o.
func FrameSummary(o *output.Overlay, stats fog.FrameStats, cfg *fog.Configuration) {
	if stats.Skipped {
		o.AddLine("fog %s: skipped (%s)", stats.State, stats.SkipReason)
		return
	}
	o.AddLine("fog %s  %s -> %s  %.1fms", stats.State, stats.LowRes, stats.Target,
		float64(stats.Elapsed.Microseconds())/1000)
	o.AddLine("steps %d  blur %d  density %.3f  distance %.0f",
		cfg.MaxSteps, cfg.BlurIterations, cfg.Density, cfg.Distance)
	if len(stats.Features) > 0 {
		o.AddLine("features: %s", strings.Join(stats.Features, " "))
	}
	o.AddLine("passes: %s", strings.Join(stats.Passes, " > "))
	o.AddLine("history %s  reprojected %v", stats.History, stats.Reprojected)
	o.AddLine("textures %d persistent (%d KiB), %d recycled",
		stats.Arena.Persistent, stats.Arena.PersistentSize/1024, stats.Arena.Recycled)
}
