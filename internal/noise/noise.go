// Package noise bakes tileable fractal gradient noise into 3D textures used
// to break up the fog density.
package noise

import (
	"math/rand/v2"

	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// Settings describes a baked noise volume.
type Settings struct {
	// Size is the voxel count along each axis.
	Size int
	// Period is the lattice cell count of the first layer along each axis.
	Period int
	// Layers is the number of octaves summed together.
	Layers int
	// Lacunarity multiplies the period of each successive layer. It is an
	// integer so every layer still tiles.
	Lacunarity int
	// Persistence scales the amplitude of each successive layer.
	Persistence float32
	Seed        uint64
}

func DefaultSettings() Settings {
	return Settings{
		Size:        32,
		Period:      4,
		Layers:      3,
		Lacunarity:  2,
		Persistence: 0.5,
		Seed:        1,
	}
}

func (s Settings) sanitized() Settings {
	s.Size = max(s.Size, 2)
	s.Period = max(s.Period, 1)
	s.Layers = max(s.Layers, 1)
	s.Lacunarity = max(s.Lacunarity, 1)
	return s
}

var gradients = [12]math.Vec3{
	{X: 1, Y: 1}, {X: -1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: -1},
	{X: 1, Z: 1}, {X: -1, Z: 1}, {X: 1, Z: -1}, {X: -1, Z: -1},
	{Y: 1, Z: 1}, {Y: -1, Z: 1}, {Y: 1, Z: -1}, {Y: -1, Z: -1},
}

// Generator evaluates periodic Perlin gradient noise.
type Generator struct {
	perm [512]uint8
}

// NewGenerator shuffles a permutation table from seed. Equal seeds give
// equal noise.
func NewGenerator(seed uint64) *Generator {
	g := &Generator{}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i, v := range rng.Perm(256) {
		g.perm[i] = uint8(v)
		g.perm[i+256] = uint8(v)
	}
	return g
}

func (g *Generator) hash(x, y, z int) int {
	return int(g.perm[int(g.perm[int(g.perm[x])+y])+z])
}

func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func wrap(i, period int) int {
	i %= period
	if i < 0 {
		i += period
	}
	return i & 255
}

// Gradient returns noise in roughly [-1, 1] that repeats every period
// units along each axis. It is zero on lattice points.
func (g *Generator) Gradient(p math.Vec3, period int) float32 {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	x, y, z := int(fx), int(fy), int(fz)
	d := math.Vec3{X: p.X - fx, Y: p.Y - fy, Z: p.Z - fz}
	u, v, w := fade(d.X), fade(d.Y), fade(d.Z)

	corner := func(ox, oy, oz int) float32 {
		h := g.hash(wrap(x+ox, period), wrap(y+oy, period), wrap(z+oz, period))
		off := math.Vec3{X: d.X - float32(ox), Y: d.Y - float32(oy), Z: d.Z - float32(oz)}
		return gradients[h%len(gradients)].Dot(off)
	}

	x00 := math.Lerp(corner(0, 0, 0), corner(1, 0, 0), u)
	x10 := math.Lerp(corner(0, 1, 0), corner(1, 1, 0), u)
	x01 := math.Lerp(corner(0, 0, 1), corner(1, 0, 1), u)
	x11 := math.Lerp(corner(0, 1, 1), corner(1, 1, 1), u)
	return math.Lerp(math.Lerp(x00, x10, v), math.Lerp(x01, x11, v), w)
}

// Fractal sums Layers octaves at normalised coordinate p (one unit is one
// tile) and maps the result into [0, 1].
func (g *Generator) Fractal(p math.Vec3, s Settings) float32 {
	s = s.sanitized()
	var sum, norm float32
	amplitude := float32(1)
	period := s.Period
	for i := 0; i < s.Layers; i++ {
		sum += g.Gradient(p.Mul(float32(period)), period) * amplitude
		norm += amplitude
		amplitude *= s.Persistence
		period *= s.Lacunarity
	}
	if norm == 0 {
		return 0.5
	}
	return math.Saturate((sum/norm + 1) * 0.5)
}

// Bake fills a single channel volume with fractal noise.
func Bake(s Settings) *gpu.Texture3D {
	s = s.sanitized()
	g := NewGenerator(s.Seed)
	tex := gpu.NewTexture3D(s.Size, s.Size, s.Size, 1)
	bake(tex, s, func(p math.Vec3) math.Vec3 {
		return math.Vec3{X: g.Fractal(p, s)}
	})
	return tex
}

// BakeDistortion fills a three channel volume with independent noise per
// channel, suited to displacing sample positions.
func BakeDistortion(s Settings) *gpu.Texture3D {
	s = s.sanitized()
	gens := [3]*Generator{NewGenerator(s.Seed), NewGenerator(s.Seed + 1), NewGenerator(s.Seed + 2)}
	tex := gpu.NewTexture3D(s.Size, s.Size, s.Size, 3)
	bake(tex, s, func(p math.Vec3) math.Vec3 {
		return math.Vec3{
			X: gens[0].Fractal(p, s),
			Y: gens[1].Fractal(p, s),
			Z: gens[2].Fractal(p, s),
		}
	})
	return tex
}

// bake evaluates fn at every voxel centre, one slice row per dispatch row.
func bake(tex *gpu.Texture3D, s Settings, fn func(math.Vec3) math.Vec3) {
	n := s.Size
	inv := 1 / float32(n)
	gpu.Dispatch(n, n*n, func(x, row int) {
		y, z := row%n, row/n
		p := math.Vec3{
			X: (float32(x) + 0.5) * inv,
			Y: (float32(y) + 0.5) * inv,
			Z: (float32(z) + 0.5) * inv,
		}
		tex.Set(x, y, z, fn(p))
	})
}
