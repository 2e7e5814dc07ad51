package fog

import (
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// downsampleDepth writes the minimum (closest) device depth of each source
// footprint into dst. Depths are never averaged so edges do not bleed.
func downsampleDepth(src, dst *gpu.Texture) {
	sw, sh := src.Width(), src.Height()
	rx := float32(sw) / float32(dst.Width())
	ry := float32(sh) / float32(dst.Height())

	gpu.Dispatch(dst.Width(), dst.Height(), func(x, y int) {
		x0, x1 := footprint(x, rx, sw)
		y0, y1 := footprint(y, ry, sh)
		closest := float32(1)
		for sy := y0; sy < y1; sy++ {
			for sx := x0; sx < x1; sx++ {
				closest = min(closest, src.Load(sx, sy).X)
			}
		}
		dst.Store(x, y, math.Vec4{X: closest})
	})
}

// footprint returns the source texel range [lo, hi) covered by texel i.
func footprint(i int, ratio float32, size int) (int, int) {
	lo := int(float32(i) * ratio)
	hi := int(float32(i+1) * ratio)
	lo = min(lo, size-1)
	hi = min(max(hi, lo+1), size)
	return lo, hi
}
