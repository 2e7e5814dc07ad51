package fog

import "volumetric-fog/math"

// ShadowSampler returns the main light visibility at a world position,
// 0 fully shadowed and 1 fully lit.
type ShadowSampler interface {
	Visibility(world math.Vec3) float32
}

// AdditionalShadowSampler returns the visibility of an additional light
// from its shadow slice.
type AdditionalShadowSampler interface {
	Visibility(shadowIndex int, world math.Vec3) float32
}

// AmbientProbe returns diffuse irradiance from the probe volume.
type AmbientProbe interface {
	Irradiance(world math.Vec3) math.Vec3
}

// ReflectionProbe returns specular radiance seen along dir.
type ReflectionProbe interface {
	Radiance(world, dir math.Vec3) math.Vec3
}
