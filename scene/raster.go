package scene

import (
	"volumetric-fog/core"
	"volumetric-fog/fog"
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// rasterVertex carries the attributes interpolated across a triangle.
type rasterVertex struct {
	clip   math.Vec4 // current clip position
	prev   math.Vec4 // previous frame clip position
	world  math.Vec3
	normal math.Vec3
	color  core.Color
}

func (a rasterVertex) lerp(b rasterVertex, t float32) rasterVertex {
	return rasterVertex{
		clip:   a.clip.Lerp(b.clip, t),
		prev:   a.prev.Lerp(b.prev, t),
		world:  a.world.Lerp(b.world, t),
		normal: a.normal.Lerp(b.normal, t),
		color:  a.color.Lerp(b.color, t),
	}
}

// clipNear clips a triangle against the near plane (z >= -w). The result
// is a convex polygon of up to four vertices.
func clipNear(in [3]rasterVertex) ([4]rasterVertex, int) {
	var out [4]rasterVertex
	n := 0
	dist := func(v rasterVertex) float32 { return v.clip.Z + v.clip.W }
	for i := 0; i < 3; i++ {
		a, b := in[i], in[(i+1)%3]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			out[n] = a.lerp(b, da/(da-db))
			n++
		}
	}
	return out, n
}

// screenTriangle is a triangle set up for scan conversion.
type screenTriangle struct {
	v      [3]rasterVertex
	sx, sy [3]float32
	z      [3]float32 // device depth in [0, 1]
	invW   [3]float32
	area   float32

	minX, maxX, minY, maxY int
	material               *Material
}

// setupTriangle projects three clipped vertices into a width x height
// target. It reports false for degenerate or off-screen triangles.
func setupTriangle(v [3]rasterVertex, width, height int) (screenTriangle, bool) {
	t := screenTriangle{v: v}
	fw, fh := float32(width), float32(height)
	for i, vert := range v {
		if vert.clip.W <= 0 {
			return t, false
		}
		inv := 1 / vert.clip.W
		t.invW[i] = inv
		t.sx[i] = (vert.clip.X*inv*0.5 + 0.5) * fw
		t.sy[i] = (0.5 - vert.clip.Y*inv*0.5) * fh
		t.z[i] = vert.clip.Z*inv*0.5 + 0.5
	}
	t.area = edge(t.sx[0], t.sy[0], t.sx[1], t.sy[1], t.sx[2], t.sy[2])
	if math.Abs(t.area) < 1e-9 {
		return t, false
	}

	t.minX = max(int(math.Floor(min(t.sx[0], t.sx[1], t.sx[2]))), 0)
	t.maxX = min(int(math.Floor(max(t.sx[0], t.sx[1], t.sx[2]))), width-1)
	t.minY = max(int(math.Floor(min(t.sy[0], t.sy[1], t.sy[2]))), 0)
	t.maxY = min(int(math.Floor(max(t.sy[0], t.sy[1], t.sy[2]))), height-1)
	return t, t.minX <= t.maxX && t.minY <= t.maxY
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// cover returns the screen-space barycentrics of the pixel centre (x, y)
// and whether it lies inside the triangle, either winding.
func (t *screenTriangle) cover(x, y int) ([3]float32, bool) {
	px, py := float32(x)+0.5, float32(y)+0.5
	b := [3]float32{
		edge(t.sx[1], t.sy[1], t.sx[2], t.sy[2], px, py) / t.area,
		edge(t.sx[2], t.sy[2], t.sx[0], t.sy[0], px, py) / t.area,
		edge(t.sx[0], t.sy[0], t.sx[1], t.sy[1], px, py) / t.area,
	}
	return b, b[0] >= 0 && b[1] >= 0 && b[2] >= 0
}

// depth interpolates device depth, which is affine in screen space.
func (t *screenTriangle) depth(b [3]float32) float32 {
	return b[0]*t.z[0] + b[1]*t.z[1] + b[2]*t.z[2]
}

// perspective turns screen barycentrics into perspective correct weights.
func (t *screenTriangle) perspective(b [3]float32) [3]float32 {
	p := [3]float32{b[0] * t.invW[0], b[1] * t.invW[1], b[2] * t.invW[2]}
	sum := p[0] + p[1] + p[2]
	if sum == 0 {
		return b
	}
	return [3]float32{p[0] / sum, p[1] / sum, p[2] / sum}
}

func (t *screenTriangle) attributes(w [3]float32) rasterVertex {
	var out rasterVertex
	for i := 0; i < 3; i++ {
		v := &t.v[i]
		out.prev = out.prev.Add(v.prev.Mul(w[i]))
		out.world = out.world.Add(v.world.Mul(w[i]))
		out.normal = out.normal.Add(v.normal.Mul(w[i]))
		out.color = out.color.Add(v.color.Scale(w[i]))
	}
	out.color.A = 1
	return out
}

// buildTriangles transforms, culls and clips every visible mesh of nodes
// for a width x height target.
func buildTriangles(nodes []*Node, viewProj, prevViewProj math.Mat4, width, height int) []screenTriangle {
	frustum := FrustumFromVP(viewProj)
	var tris []screenTriangle
	for _, node := range nodes {
		world := node.WorldMatrix()
		if !ComputeAABB(node.Mesh, world).IntersectsFrustum(&frustum) {
			continue
		}
		prevWorld := node.PreviousWorldMatrix()
		mvp := world.Mul(viewProj)
		prevMVP := prevWorld.Mul(prevViewProj)
		mat := node.Mesh.material()

		for i := 0; i < node.Mesh.TriangleCount(); i++ {
			src, ok := node.Mesh.Triangle(i)
			if !ok {
				continue
			}
			var in [3]rasterVertex
			for k, v := range src {
				p := v.Position.ToVec4(1)
				in[k] = rasterVertex{
					clip:   p.MulMat(mvp),
					prev:   p.MulMat(prevMVP),
					world:  world.MulPoint(v.Position),
					normal: world.MulDirection(v.Normal),
					color:  v.Color,
				}
			}
			poly, n := clipNear(in)
			for k := 1; k+1 < n; k++ {
				t, ok := setupTriangle([3]rasterVertex{poly[0], poly[k], poly[k+1]}, width, height)
				if !ok {
					continue
				}
				t.material = mat
				tris = append(tris, t)
			}
		}
	}
	return tris
}

// Rasterizer renders a scene into the colour, depth and motion vector
// targets the fog pipeline consumes.
type Rasterizer struct {
	Color  *gpu.Texture // RGBA16F linear radiance
	Depth  *gpu.Texture // R32F device depth
	Motion *gpu.Texture // RGBA32F uv motion in RG

	// Triangles drawn by the last Render call.
	Triangles int
}

func NewRasterizer(width, height int) *Rasterizer {
	r := &Rasterizer{}
	r.Resize(width, height)
	return r
}

// Resize reallocates the targets when the size changed.
func (r *Rasterizer) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if r.Color != nil && r.Color.Width() == width && r.Color.Height() == height {
		return
	}
	r.Color = gpu.NewTexture("scene.color", gpu.Descriptor{Width: width, Height: height, Format: gpu.FormatRGBA16F})
	r.Depth = gpu.NewTexture("scene.depth", gpu.Descriptor{Width: width, Height: height, Format: gpu.FormatR32F})
	r.Motion = gpu.NewTexture("scene.motion", gpu.Descriptor{Width: width, Height: height, Format: gpu.FormatRGBA32F})
}

func (r *Rasterizer) Width() int  { return r.Color.Width() }
func (r *Rasterizer) Height() int { return r.Color.Height() }

// Render draws s from its camera. Pixels without geometry show the sky at
// the far plane. shadow may be nil.
func (r *Rasterizer) Render(s *Scene, shadow fog.ShadowSampler) {
	width, height := r.Width(), r.Height()
	cam := s.Camera.Data()
	vp := cam.ViewProjection
	prevVP := cam.PreviousViewProjection

	tris := buildTriangles(s.meshNodes(), vp, prevVP, width, height)
	r.Triangles = len(tris)
	lights := s.shadingLights()

	gpu.Dispatch(1, height, func(_, y int) {
		for x := 0; x < width; x++ {
			uv := r.Color.UV(x, y)
			far := cam.WorldFromDepth(uv, 1)
			sky := s.Sky.Radiance(far, far.Sub(cam.Position).Normalize())
			r.Color.Store(x, y, sky.ToVec4(1))
			r.Depth.Store(x, y, math.Vec4{X: 1})
			r.Motion.Store(x, y, motionVector(uv, far.ToVec4(1).MulMat(prevVP)))
		}

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
				d := t.depth(b)
				if d < 0 || d >= r.Depth.Load(x, y).X {
					continue
				}
				attr := t.attributes(t.perspective(b))
				radiance := shade(s, lights, t.material, attr, shadow)
				r.Color.Store(x, y, radiance.ToVec4(1))
				r.Depth.Store(x, y, math.Vec4{X: d})
				r.Motion.Store(x, y, motionVector(r.Color.UV(x, y), attr.prev))
			}
		}
	})
}

// motionVector returns uv minus the uv of the previous clip position in
// the RG channels.
func motionVector(uv math.Vec2, prevClip math.Vec4) math.Vec4 {
	if prevClip.W <= 0 {
		return math.Vec4{}
	}
	prevX := prevClip.X/prevClip.W*0.5 + 0.5
	prevY := 0.5 - prevClip.Y/prevClip.W*0.5
	return math.Vec4{X: uv.X - prevX, Y: uv.Y - prevY}
}

// shade evaluates Lambert lighting with the sky as ambient term.
func shade(s *Scene, lights []*Light, mat *Material, attr rasterVertex, shadow fog.ShadowSampler) math.Vec3 {
	albedo := mat.Albedo.Mul(attr.color).RGB()
	if mat.Unlit {
		return albedo
	}
	n := attr.normal.Normalize()
	light := s.Sky.IrradianceNormal(n)
	for _, l := range lights {
		switch l.Type {
		case fog.LightTypeDirectional:
			ndl := n.Dot(l.Direction.Normalize().Negate())
			if ndl <= 0 {
				continue
			}
			visibility := float32(1)
			if l.Main && shadow != nil {
				visibility = shadow.Visibility(attr.world)
			}
			light = light.Add(l.Radiance().Mul(ndl * visibility))
		default:
			atten, toLight := l.Attenuation(attr.world, 0)
			ndl := n.Dot(toLight)
			if atten <= 0 || ndl <= 0 {
				continue
			}
			light = light.Add(l.Radiance().Mul(ndl * atten))
		}
	}
	return albedo.MulVec(light).Add(mat.Emissive.RGB())
}
