package scene

import (
	stdmath "math"

	"volumetric-fog/core"
	"volumetric-fog/math"
)

// CreatePlane generates a square in the XZ plane facing +Y.
func CreatePlane(size float32) *Mesh {
	s := size / 2
	n := math.Vec3Up
	vertices := []core.Vertex{
		{Position: math.Vec3{X: -s, Z: -s}, Normal: n, Color: core.ColorWhite},
		{Position: math.Vec3{X: s, Z: -s}, Normal: n, Color: core.ColorWhite},
		{Position: math.Vec3{X: s, Z: s}, Normal: n, Color: core.ColorWhite},
		{Position: math.Vec3{X: -s, Z: s}, Normal: n, Color: core.ColorWhite},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}
	return CreateMeshFromData("Plane", vertices, indices)
}

// cubeFaces lists the outward normal and the two in-plane axes of each face.
var cubeFaces = [6][3]math.Vec3{
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {X: -1}, {Y: 1}},
	{{Y: 1}, {X: 1}, {Z: -1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{X: 1}, {Z: -1}, {Y: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
}

// CreateCube generates an axis aligned cube with per-face normals.
func CreateCube(size float32) *Mesh {
	s := size / 2
	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range cubeFaces {
		normal, u, v := face[0], face[1], face[2]
		base := uint32(len(vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := normal.Add(u.Mul(c[0])).Add(v.Mul(c[1])).Mul(s)
			vertices = append(vertices, core.Vertex{Position: p, Normal: normal, Color: core.ColorWhite})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return CreateMeshFromData("Cube", vertices, indices)
}

// CreateSphere generates a UV-sphere mesh
func CreateSphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		sinPhi := float32(stdmath.Sin(phi))
		cosPhi := float32(stdmath.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2.0 * stdmath.Pi / float64(segments)
			sinTheta := float32(stdmath.Sin(theta))
			cosTheta := float32(stdmath.Cos(theta))

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				Color:    core.ColorWhite,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return CreateMeshFromData("Sphere", vertices, indices)
}
