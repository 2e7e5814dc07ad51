package scene

import (
	stdmath "math"

	"volumetric-fog/math"
)

// Ray is a half line in world space. Direction is unit length.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is the closest ray intersection with a mesh.
type Hit struct {
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3 // geometric normal facing the ray origin
	Node     *Node
	Triangle int
}

// RayAt returns the camera ray through uv, with v pointing down.
func (c *Camera) RayAt(uv math.Vec2) Ray {
	data := c.Data()
	near := data.WorldFromDepth(uv, 0)
	far := data.WorldFromDepth(uv, 1)
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// Raycast returns the closest visible mesh the ray hits.
func (s *Scene) Raycast(ray Ray) (Hit, bool) {
	closest := Hit{Distance: stdmath.MaxFloat32}
	found := false
	for _, node := range s.meshNodes() {
		world := node.WorldMatrix()
		t, ok := rayAABBIntersect(ray, ComputeAABB(node.Mesh, world))
		if !ok || t > closest.Distance {
			continue
		}
		if hit, ok := rayMeshIntersect(ray, node, world, closest.Distance); ok {
			closest, found = hit, true
		}
	}
	return closest, found
}

// rayAABBIntersect is the slab test. It returns the entry distance, or 0
// when the origin is inside the box.
func rayAABBIntersect(ray Ray, box AABB) (float32, bool) {
	invDir := math.Vec3{
		X: 1 / ray.Direction.X,
		Y: 1 / ray.Direction.Y,
		Z: 1 / ray.Direction.Z,
	}

	t1 := (box.Min.X - ray.Origin.X) * invDir.X
	t2 := (box.Max.X - ray.Origin.X) * invDir.X
	t3 := (box.Min.Y - ray.Origin.Y) * invDir.Y
	t4 := (box.Max.Y - ray.Origin.Y) * invDir.Y
	t5 := (box.Min.Z - ray.Origin.Z) * invDir.Z
	t6 := (box.Max.Z - ray.Origin.Z) * invDir.Z

	tmin := max(min(t1, t2), min(t3, t4), min(t5, t6))
	tmax := min(max(t1, t2), max(t3, t4), max(t5, t6))
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return max(tmin, 0), true
}

// rayMeshIntersect tests every triangle of node closer than limit.
func rayMeshIntersect(ray Ray, node *Node, world math.Mat4, limit float32) (Hit, bool) {
	closest := Hit{Distance: limit}
	found := false
	for i := 0; i < node.Mesh.TriangleCount(); i++ {
		tri, ok := node.Mesh.Triangle(i)
		if !ok {
			continue
		}
		v0 := world.MulPoint(tri[0].Position)
		v1 := world.MulPoint(tri[1].Position)
		v2 := world.MulPoint(tri[2].Position)

		t, hit := mollerTrumbore(ray, v0, v1, v2)
		if !hit || t >= closest.Distance {
			continue
		}
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		if n.Dot(ray.Direction) > 0 {
			n = n.Negate()
		}
		closest = Hit{Distance: t, Point: ray.At(t), Normal: n, Node: node, Triangle: i}
		found = true
	}
	return closest, found
}

// mollerTrumbore intersects a ray with a triangle of either winding.
func mollerTrumbore(ray Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
