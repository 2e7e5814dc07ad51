package scene

import "volumetric-fog/math"

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix.
// The planes are normalized so DistanceTo returns a true distance in world units.
//
// Matrices multiply row vectors, so clip.x is the dot product of the point
// with column 0; Gribb/Hartmann extraction therefore works on columns.
func FrustumFromVP(vp math.Mat4) Frustum {
	col := func(j int) math.Vec4 {
		return math.Vec4{X: vp[0][j], Y: vp[1][j], Z: vp[2][j], W: vp[3][j]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = normalizePlane(c3.Add(c0)) // left
	f.Planes[1] = normalizePlane(c3.Sub(c0)) // right
	f.Planes[2] = normalizePlane(c3.Add(c1)) // bottom
	f.Planes[3] = normalizePlane(c3.Sub(c1)) // top
	f.Planes[4] = normalizePlane(c3.Add(c2)) // near
	f.Planes[5] = normalizePlane(c3.Sub(c2)) // far
	return f
}

func normalizePlane(v math.Vec4) Plane {
	n := v.ToVec3()
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W / l}
}

// ContainsSphere reports whether a sphere touches the frustum.
func (f *Frustum) ContainsSphere(center math.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.DistanceTo(center) < -radius {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// Extend grows the box to contain p.
func (box AABB) Extend(p math.Vec3) AABB {
	return AABB{Min: box.Min.Min(p), Max: box.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (box AABB) Union(other AABB) AABB {
	return AABB{Min: box.Min.Min(other.Min), Max: box.Max.Max(other.Max)}
}

func (box AABB) Center() math.Vec3 {
	return box.Min.Add(box.Max).Mul(0.5)
}

func (box AABB) Corners() [8]math.Vec3 {
	mn, mx := box.Min, box.Max
	return [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
}

// IntersectsFrustum returns false if the AABB is completely outside the frustum.
// Uses the "n-vertex" test: for each plane, check if the "positive vertex"
// (the corner most aligned with the plane normal) is on the outside.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		px := box.Max.X
		if p.Normal.X < 0 {
			px = box.Min.X
		}
		py := box.Max.Y
		if p.Normal.Y < 0 {
			py = box.Min.Y
		}
		pz := box.Max.Z
		if p.Normal.Z < 0 {
			pz = box.Min.Z
		}
		if p.DistanceTo(math.Vec3{X: px, Y: py, Z: pz}) < 0 {
			return false
		}
	}
	return true
}

// ComputeAABB computes the world-space AABB for a mesh transformed by worldMatrix.
// If the mesh has a cached local AABB, it transforms the 8 corners (fast path).
// Otherwise it falls back to iterating all vertices.
func ComputeAABB(mesh *Mesh, worldMatrix math.Mat4) AABB {
	if mesh.HasLocalAABB {
		return transformAABB(mesh.LocalAABB, worldMatrix)
	}
	if len(mesh.Vertices) == 0 {
		return AABB{}
	}
	first := worldMatrix.MulPoint(mesh.Vertices[0].Position)
	out := AABB{Min: first, Max: first}
	for _, v := range mesh.Vertices[1:] {
		out = out.Extend(worldMatrix.MulPoint(v.Position))
	}
	return out
}

// transformAABB transforms a local AABB by a world matrix by testing all 8 corners.
func transformAABB(local AABB, m math.Mat4) AABB {
	corners := local.Corners()
	first := m.MulPoint(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		out = out.Extend(m.MulPoint(c))
	}
	return out
}
