package fog

import "volumetric-fog/math"

// VolumeModifier scales the fog density inside a sphere.
type VolumeModifier struct {
	Enabled           bool      `json:"enabled"`
	Position          math.Vec3 `json:"position"`
	Radius            float32   `json:"radius"`
	FallOff           float32   `json:"fallOff"`
	DensityMultiplier float32   `json:"densityMultiplier"`
}

const minModifierFallOff = 0.01

func DefaultVolumeModifier() VolumeModifier {
	return VolumeModifier{Enabled: true, Radius: 2.5, FallOff: 0.05, DensityMultiplier: 10}
}

// valid reports whether the modifier affects anything.
func (m *VolumeModifier) valid() bool {
	return m != nil && m.Enabled && m.Radius > 0
}

// modifierParams is the packed form used by the integrator.
type modifierParams struct {
	enabled           bool
	position          math.Vec3
	radiusSq          float32
	fallOff           float32
	densityMultiplier float32
}

func packModifier(m *VolumeModifier) modifierParams {
	if !m.valid() {
		return modifierParams{}
	}
	return modifierParams{
		enabled:           true,
		position:          m.Position,
		radiusSq:          m.Radius * m.Radius,
		fallOff:           max(m.FallOff, minModifierFallOff),
		densityMultiplier: max(m.DensityMultiplier, 0),
	}
}

// factor returns the density multiplier at p: 1 outside the sphere, rising
// smoothly to densityMultiplier at the centre.
func (m modifierParams) factor(p math.Vec3) float32 {
	if !m.enabled {
		return 1
	}
	d := p.Sub(m.position).LengthSqr()
	w := math.Pow(math.Saturate(1-d/m.radiusSq), m.fallOff)
	return math.Lerp(1, m.densityMultiplier, w)
}
