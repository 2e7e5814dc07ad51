package fog

import (
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// compositeInputs groups the textures read by the upsample pass.
type compositeInputs struct {
	color    *gpu.Texture // full resolution scene colour
	depth    *gpu.Texture // full resolution device depth
	lowDepth *gpu.Texture // downsampled device depth
	fog      *gpu.Texture // low resolution fog, RGB radiance and A transmittance
}

// upsampleComposite upsamples the fog to full resolution and composites it
// over the scene colour into out. Alpha of the scene colour is preserved.
func upsampleComposite(in compositeInputs, out *gpu.Texture, cam *CameraData, edgeThreshold float32) {
	gpu.Dispatch(out.Width(), out.Height(), func(x, y int) {
		uv := out.UV(x, y)
		fog := upsampleFog(in, uv, cam.LinearDepth(in.depth.Load(x, y).X), cam, edgeThreshold)
		scene := in.color.Load(x, y)
		out.Store(x, y, math.Vec4{
			X: scene.X*fog.W + fog.X,
			Y: scene.Y*fog.W + fog.Y,
			Z: scene.Z*fog.W + fog.Z,
			W: scene.W,
		})
	})
}

// upsampleFog filters the 2x2 low resolution footprint around uv
// bilinearly, unless one of its depths differs from the full resolution
// depth by more than edgeThreshold (relative). Then the texel with the
// closest depth is taken alone.
func upsampleFog(in compositeInputs, uv math.Vec2, linear float32, cam *CameraData, edgeThreshold float32) math.Vec4 {
	lw, lh := in.fog.Width(), in.fog.Height()
	x0 := int(math.Floor(uv.X*float32(lw) - 0.5))
	y0 := int(math.Floor(uv.Y*float32(lh) - 0.5))

	edge := false
	bestX, bestY := x0, y0
	bestDiff := float32(-1)
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			sx := min(max(x0+dx, 0), lw-1)
			sy := min(max(y0+dy, 0), lh-1)
			diff := math.Abs(cam.LinearDepth(in.lowDepth.Load(sx, sy).X) - linear)
			if diff > edgeThreshold*linear {
				edge = true
			}
			if bestDiff < 0 || diff < bestDiff {
				bestDiff = diff
				bestX, bestY = sx, sy
			}
		}
	}
	if edge {
		return in.fog.Load(bestX, bestY)
	}
	return in.fog.SampleBilinear(uv)
}
