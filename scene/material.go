package scene

import "volumetric-fog/core"

// Material describes how a surface reflects light in the preview
// rasterizer. Shading is Lambertian.
type Material struct {
	Name     string
	Albedo   core.Color // diffuse reflectance
	Emissive core.Color // self-emitted radiance, added after lighting
	Unlit    bool       // output albedo as is
}

// DefaultMaterial returns a plain light grey matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:   "Default",
		Albedo: core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1},
	}
}
