// Package output converts rendered HDR textures into files: tone mapped
// PNG previews with an optional text overlay, and lossless EXR dumps.
package output

import (
	"image"
	"image/color"
	stdmath "math"

	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// ToneMapping controls the HDR to display conversion.
type ToneMapping struct {
	Exposure float32
	Gamma    float32
}

func DefaultToneMapping() ToneMapping {
	return ToneMapping{Exposure: 1, Gamma: 2.2}
}

// Apply maps one linear channel value into [0, 1] with exposure, Reinhard
// and gamma.
func (tm ToneMapping) Apply(v float32) float32 {
	v = max(v*tm.Exposure, 0)
	v /= 1 + v
	if tm.Gamma > 0 {
		v = float32(stdmath.Pow(float64(v), 1/float64(tm.Gamma)))
	}
	return math.Saturate(v)
}

// Tonemap converts tex into an 8-bit image. Alpha is written as opaque.
func Tonemap(tex *gpu.Texture, tm ToneMapping) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, tex.Width(), tex.Height()))
	gpu.Dispatch(tex.Width(), tex.Height(), func(x, y int) {
		c := tex.Load(x, y)
		img.SetRGBA(x, y, color.RGBA{
			R: toByte(tm.Apply(c.X)),
			G: toByte(tm.Apply(c.Y)),
			B: toByte(tm.Apply(c.Z)),
			A: 255,
		})
	})
	return img
}

func toByte(v float32) uint8 {
	return uint8(v*255 + 0.5)
}
