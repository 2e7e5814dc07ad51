package scene

import (
	"volumetric-fog/core"
	"volumetric-fog/math"
)

// SkyProbe is a three colour gradient sky. It lights the rasterised scene
// and implements fog.AmbientProbe and fog.ReflectionProbe.
type SkyProbe struct {
	Zenith    core.Color
	Horizon   core.Color
	Ground    core.Color
	Intensity float32
}

func DefaultSky() SkyProbe {
	return SkyProbe{
		Zenith:    core.Color{R: 0.25, G: 0.45, B: 0.85, A: 1},
		Horizon:   core.Color{R: 0.7, G: 0.75, B: 0.8, A: 1},
		Ground:    core.Color{R: 0.2, G: 0.18, B: 0.15, A: 1},
		Intensity: 1,
	}
}

// Radiance returns the sky colour seen along dir.
func (s SkyProbe) Radiance(_ math.Vec3, dir math.Vec3) math.Vec3 {
	up := dir.Normalize().Y
	var c core.Color
	if up >= 0 {
		c = s.Horizon.Lerp(s.Zenith, math.Sqrt(up))
	} else {
		c = s.Horizon.Lerp(s.Ground, math.Saturate(-up*4))
	}
	return c.RGB().Mul(s.Intensity)
}

// IrradianceNormal approximates the cosine weighted sky seen by a surface
// with normal n: ground below, horizon sideways, a horizon-zenith mix above.
func (s SkyProbe) IrradianceNormal(n math.Vec3) math.Vec3 {
	sky := s.Horizon.Lerp(s.Zenith, 0.5)
	c := s.Ground.Lerp(sky, math.Saturate(n.Y*0.5+0.5))
	return c.RGB().Mul(s.Intensity)
}

// Irradiance is the sky light reaching a point in the medium, which sees
// both hemispheres.
func (s SkyProbe) Irradiance(_ math.Vec3) math.Vec3 {
	up := s.IrradianceNormal(math.Vec3Up)
	down := s.IrradianceNormal(math.Vec3Down)
	return up.Add(down).Mul(0.5)
}
