package fog

import (
	"fmt"

	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// blurKernel is a 5 tap binomial filter; the weights sum to exactly 1.
var blurKernel = [5]float32{0.0625, 0.25, 0.375, 0.25, 0.0625}

// blurAxis filters src along one axis into dst.
func blurAxis(src, dst *gpu.Texture, dx, dy int) {
	gpu.Dispatch(dst.Width(), dst.Height(), func(x, y int) {
		var sum math.Vec4
		for i, w := range blurKernel {
			o := i - len(blurKernel)/2
			sum = sum.Add(src.Load(x+o*dx, y+o*dy).Mul(w))
		}
		dst.Store(x, y, sum)
	})
}

// pingPongResult returns which slot holds the data after the given number
// of swaps between a source (0) and a target (1).
func pingPongResult(swaps int) int {
	return swaps % 2
}

// separableBlur runs iterations of a horizontal then vertical pass,
// ping-ponging between fog and scratch. The result always ends in fog.
func separableBlur(fog, scratch *gpu.Texture, iterations int) error {
	if iterations <= 0 {
		return nil
	}
	slots := [2]*gpu.Texture{fog, scratch}
	swaps := 0
	for i := 0; i < iterations; i++ {
		for _, axis := range [2][2]int{{1, 0}, {0, 1}} {
			src := slots[pingPongResult(swaps)]
			dst := slots[pingPongResult(swaps+1)]
			blurAxis(src, dst, axis[0], axis[1])
			swaps++
		}
	}
	if last := pingPongResult(swaps); last != 0 {
		if err := fog.CopyFrom(slots[last]); err != nil {
			return fmt.Errorf("blur copy back: %w", err)
		}
	}
	return nil
}
