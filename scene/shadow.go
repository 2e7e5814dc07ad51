package scene

import (
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// ShadowMap is an orthographic depth map of the main directional light,
// fitted around the scene bounds. It implements fog.ShadowSampler.
type ShadowMap struct {
	// Bias is subtracted from the receiver depth, in device depth units.
	Bias float32

	depth    *gpu.Texture
	viewProj math.Mat4
	valid    bool
}

func NewShadowMap(size int) *ShadowMap {
	size = max(size, 1)
	return &ShadowMap{
		Bias:  0.0015,
		depth: gpu.NewTexture("shadow.depth", gpu.Descriptor{Width: size, Height: size, Format: gpu.FormatR32F}),
	}
}

func (m *ShadowMap) Size() int { return m.depth.Width() }

// Texture exposes the depth map for debugging.
func (m *ShadowMap) Texture() *gpu.Texture { return m.depth }

// ViewProjection returns the light space transform of the last Update.
func (m *ShadowMap) ViewProjection() math.Mat4 { return m.viewProj }

// Update renders the depth of every mesh in s as seen along lightDir, the
// direction the light travels. A scene without geometry leaves the map
// invalid and every point lit.
func (m *ShadowMap) Update(s *Scene, lightDir math.Vec3) {
	nodes := s.meshNodes()
	bounds, ok := s.Bounds()
	if !ok || lightDir.LengthSqr() == 0 {
		m.valid = false
		return
	}
	dir := lightDir.Normalize()
	center := bounds.Center()
	radius := max(bounds.Max.Sub(bounds.Min).Length()*0.5, 0.01)

	up := math.Vec3Up
	if math.Abs(dir.Y) > 0.99 {
		up = math.Vec3Back
	}
	eye := center.Sub(dir.Mul(2 * radius))
	view := math.Mat4LookAt(eye, center, up)
	proj := math.Mat4Orthographic(-radius, radius, -radius, radius, radius*0.5, radius*3.5)
	m.viewProj = view.Mul(proj)

	size := m.Size()
	m.depth.Clear(math.Vec4{X: 1})
	tris := buildTriangles(nodes, m.viewProj, m.viewProj, size, size)
	gpu.Dispatch(1, size, func(_, y int) {
		for i := range tris {
			t := &tris[i]
			if y < t.minY || y > t.maxY {
				continue
			}
			for x := t.minX; x <= t.maxX; x++ {
				b, inside := t.cover(x, y)
				if !inside {
					continue
				}
				if d := t.depth(b); d >= 0 && d < m.depth.Load(x, y).X {
					m.depth.Store(x, y, math.Vec4{X: d})
				}
			}
		}
	})
	m.valid = true
}

// Visibility returns the lit fraction of a 3x3 percentage closer filter
// around the projection of world. Points outside the map are lit.
func (m *ShadowMap) Visibility(world math.Vec3) float32 {
	if !m.valid {
		return 1
	}
	ndc := m.viewProj.MulPoint(world)
	d := ndc.Z*0.5 + 0.5
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || d > 1 {
		return 1
	}
	size := float32(m.Size())
	cx := int(math.Floor((ndc.X*0.5 + 0.5) * size))
	cy := int(math.Floor((0.5 - ndc.Y*0.5) * size))

	lit := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if d-m.Bias <= m.depth.Load(cx+dx, cy+dy).X {
				lit++
			}
		}
	}
	return float32(lit) / 9
}
