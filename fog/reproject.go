package fog

import (
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// reprojectInputs groups the textures read by the reprojection pass.
type reprojectInputs struct {
	current   *gpu.Texture // this frame's fog
	depth     *gpu.Texture // this frame's downsampled depth
	motion    *gpu.Texture // full resolution motion vectors
	history   *gpu.Texture // last frame's output
	prevDepth *gpu.Texture // last frame's downsampled depth
}

// reprojectFog blends the history into the current fog. A cold history, an
// off-screen history coordinate or a depth mismatch beyond depthTolerance
// (relative to the linear depth) keeps the current value unchanged.
func reprojectFog(in reprojectInputs, out *gpu.Texture, cam *CameraData, warm bool, weight, depthTolerance float32) {
	gpu.Dispatch(out.Width(), out.Height(), func(x, y int) {
		cur := in.current.Load(x, y)
		if !warm {
			out.Store(x, y, cur)
			return
		}

		uv := out.UV(x, y)
		mv := in.motion.SamplePoint(uv)
		prevUV := uv.Sub(math.Vec2{X: mv.X, Y: mv.Y})
		if !prevUV.InUnitSquare() {
			out.Store(x, y, cur)
			return
		}

		linear := cam.LinearDepth(in.depth.Load(x, y).X)
		prevLinear := cam.LinearDepth(in.prevDepth.SamplePoint(prevUV).X)
		if math.Abs(linear-prevLinear) > depthTolerance*linear {
			out.Store(x, y, cur)
			return
		}

		// Clamp the history to the current 3x3 neighbourhood to reject
		// stale values that survived the depth test.
		lo, hi := cur, cur
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				n := in.current.Load(x+dx, y+dy)
				lo = lo.Min(n)
				hi = hi.Max(n)
			}
		}
		hist := in.history.SampleBilinear(prevUV).Clamp(lo, hi)
		out.Store(x, y, cur.Lerp(hist, weight))
	})
}
