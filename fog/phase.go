package fog

import (
	stdmath "math"

	"volumetric-fog/math"
)

const maxPhaseAnisotropy = 0.999

// henyeyGreenstein evaluates the single lobe phase function. cosTheta is the
// cosine between the view ray and the direction towards the light, so
// positive g scatters forward, towards a viewer looking at the light.
func henyeyGreenstein(g, cosTheta float32) float32 {
	g = math.Clamp(g, -maxPhaseAnisotropy, maxPhaseAnisotropy)
	g2 := g * g
	denom := 1 + g2 - 2*g*cosTheta
	return (1 - g2) / (4 * stdmath.Pi * denom * math.Sqrt(denom))
}
