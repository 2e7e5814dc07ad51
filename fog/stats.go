package fog

import (
	"time"

	"volumetric-fog/internal/gpu"
)

// FrameStats reports what Render did for one frame.
type FrameStats struct {
	State PipelineState
	// Skipped is set when the frame was not rendered; SkipReason says why.
	Skipped    bool
	SkipReason string

	Passes      []string
	Features    []string
	Target      gpu.Descriptor
	LowRes      gpu.Descriptor
	Reprojected bool
	History     HistoryState
	Arena       gpu.ArenaStats
	Elapsed     time.Duration
}
