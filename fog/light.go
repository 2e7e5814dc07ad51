package fog

import (
	stdmath "math"

	"volumetric-fog/core"
	"volumetric-fog/math"
)

// LightType identifies the shape of a light.
type LightType int

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
	LightTypeSpot
)

// LightID is a stable identifier assigned by the host light manager.
type LightID uint32

// Light is a visible light as enumerated by the host for this frame.
type Light struct {
	ID        LightID
	Type      LightType
	Position  math.Vec3
	Direction math.Vec3 // direction the light travels
	Color     core.Color
	Intensity float32
	Range     float32
	SpotAngle float32 // outer cone half angle in degrees
	// ShadowIndex selects the additional shadow map slice, or -1.
	ShadowIndex int
}

// Radiance returns the light colour scaled by its intensity.
func (l Light) Radiance() math.Vec3 {
	return l.Color.RGB().Mul(l.Intensity)
}

// spotCone returns the cosine of the outer and inner cone angles. The inner
// cone is 80% of the outer one.
func (l Light) spotCone() (outer, inner float32) {
	outer = float32(stdmath.Cos(float64(l.SpotAngle) * stdmath.Pi / 180))
	inner = float32(stdmath.Cos(float64(l.SpotAngle*0.8) * stdmath.Pi / 180))
	return outer, inner
}

// LightOverride holds the volumetric parameters attached to one additional
// light. A light without an override does not scatter into the fog.
type LightOverride struct {
	Anisotropy float32 `json:"anisotropy"`
	Scattering float32 `json:"scattering"`
	Radius     float32 `json:"radius"`
}

const (
	MaxOverrideScattering = 16
	// MaxAdditionalLights caps the additional light arrays per frame.
	MaxAdditionalLights = 256
)

// DefaultLightOverride matches the stock per-light component.
func DefaultLightOverride() LightOverride {
	return LightOverride{Anisotropy: 0.25, Scattering: 1, Radius: 0.2}
}

// Sanitized clamps o into its editable range.
func (o LightOverride) Sanitized() LightOverride {
	return LightOverride{
		Anisotropy: math.Clamp(o.Anisotropy, -1, 1),
		Scattering: math.Clamp(o.Scattering, 0, MaxOverrideScattering),
		Radius:     math.Saturate(o.Radius),
	}
}

// LightData is the per-frame light list.
type LightData struct {
	// MainLightIndex indexes Visible, or is -1 when there is no main light.
	MainLightIndex int
	Visible        []Light
	Overrides      map[LightID]LightOverride
}

// MainLight returns the main light if the index is valid and the light is
// directional.
func (d *LightData) MainLight() (Light, bool) {
	if d.MainLightIndex < 0 || d.MainLightIndex >= len(d.Visible) {
		return Light{}, false
	}
	l := d.Visible[d.MainLightIndex]
	if l.Type != LightTypeDirectional {
		return Light{}, false
	}
	return l, true
}

// AdditionalLightsCount is the number of visible lights other than the one
// at MainLightIndex. A light at that index never counts as additional, even
// when it is rejected as the main light for not being directional.
func (d *LightData) AdditionalLightsCount() int {
	n := len(d.Visible)
	if d.MainLightIndex >= 0 && d.MainLightIndex < n {
		n--
	}
	return min(n, MaxAdditionalLights)
}

// minAttenuationDistanceSq keeps the inverse square law finite at the light.
const minAttenuationDistanceSq = 1e-4

// Attenuation returns the distance and cone attenuation of a point or spot
// light at pos, and the unit direction towards the light.
// radiusSq is a soft core: closer than the radius the falloff is flat.
func (l Light) Attenuation(pos math.Vec3, radiusSq float32) (float32, math.Vec3) {
	toLight := l.Position.Sub(pos)
	distSq := toLight.LengthSqr()
	if distSq <= 0 {
		return 0, math.Vec3{}
	}
	dir := toLight.Mul(1 / math.Sqrt(distSq))

	atten := 1 / max(distSq, radiusSq, minAttenuationDistanceSq)
	if l.Range > 0 {
		window := math.Saturate(1 - distSq/(l.Range*l.Range))
		atten *= window * window
	}
	if l.Type == LightTypeSpot {
		outer, inner := l.spotCone()
		theta := dir.Negate().Dot(l.Direction.Normalize())
		atten *= math.Saturate((theta - outer) / max(inner-outer, 1e-4))
	}
	return atten, dir
}
