package gpu

import "volumetric-fog/math"

// Texture3D is a read-only volume sampled with repeat addressing and
// trilinear filtering. It holds one or three float channels.
type Texture3D struct {
	Width, Height, Depth int
	Channels             int
	data                 []float32
}

// NewTexture3D allocates a zeroed volume. channels must be 1 or 3.
func NewTexture3D(width, height, depth, channels int) *Texture3D {
	if channels != 1 {
		channels = 3
	}
	return &Texture3D{
		Width:    width,
		Height:   height,
		Depth:    depth,
		Channels: channels,
		data:     make([]float32, width*height*depth*channels),
	}
}

// Valid reports whether the volume can be sampled: every dimension is
// positive and the voxel storage matches them.
func (t *Texture3D) Valid() bool {
	if t == nil || t.Width <= 0 || t.Height <= 0 || t.Depth <= 0 {
		return false
	}
	if t.Channels != 1 && t.Channels != 3 {
		return false
	}
	return len(t.data) == t.Width*t.Height*t.Depth*t.Channels
}

func (t *Texture3D) index(x, y, z int) int {
	return ((z*t.Height+y)*t.Width + x) * t.Channels
}

// Set writes a voxel. Single channel volumes keep v.X only.
func (t *Texture3D) Set(x, y, z int, v math.Vec3) {
	i := t.index(x, y, z)
	t.data[i] = v.X
	if t.Channels == 3 {
		t.data[i+1] = v.Y
		t.data[i+2] = v.Z
	}
}

// At reads a voxel with repeat addressing.
func (t *Texture3D) At(x, y, z int) math.Vec3 {
	x = wrap(x, t.Width)
	y = wrap(y, t.Height)
	z = wrap(z, t.Depth)
	i := t.index(x, y, z)
	if t.Channels == 1 {
		return math.Vec3{X: t.data[i]}
	}
	return math.Vec3{X: t.data[i], Y: t.data[i+1], Z: t.data[i+2]}
}

// Sample filters the volume at normalised coordinate p; one unit spans
// the whole volume in each axis.
func (t *Texture3D) Sample(p math.Vec3) math.Vec3 {
	fx := p.X*float32(t.Width) - 0.5
	fy := p.Y*float32(t.Height) - 0.5
	fz := p.Z*float32(t.Depth) - 0.5
	x0, y0, z0 := math.Floor(fx), math.Floor(fy), math.Floor(fz)
	tx, ty, tz := fx-x0, fy-y0, fz-z0
	ix, iy, iz := int(x0), int(y0), int(z0)

	c00 := t.At(ix, iy, iz).Lerp(t.At(ix+1, iy, iz), tx)
	c10 := t.At(ix, iy+1, iz).Lerp(t.At(ix+1, iy+1, iz), tx)
	c01 := t.At(ix, iy, iz+1).Lerp(t.At(ix+1, iy, iz+1), tx)
	c11 := t.At(ix, iy+1, iz+1).Lerp(t.At(ix+1, iy+1, iz+1), tx)

	c0 := c00.Lerp(c10, ty)
	c1 := c01.Lerp(c11, ty)
	return c0.Lerp(c1, tz)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
