package gpu

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-openexr/half"

	"volumetric-fog/math"
)

var (
	// ErrDescriptorMismatch is returned when two textures must share a shape but do not.
	ErrDescriptorMismatch = errors.New("gpu: descriptor mismatch")
	// ErrReleased is returned when a released texture is used.
	ErrReleased = errors.New("gpu: texture released")
)

// Texture is a 2D float render target held in CPU memory.
// Texel (0,0) is the top-left corner; UV (0,0) maps to the same corner.
//
// Concurrent Store calls are safe as long as they target distinct texels,
// which is how kernels dispatched by Dispatch use it.
type Texture struct {
	name     string
	desc     Descriptor
	f32      []float32   // R32F and RGBA32F
	f16      []half.Half // RGBA16F
	released bool
}

// NewTexture allocates a zeroed texture.
func NewTexture(name string, desc Descriptor) *Texture {
	t := &Texture{name: name, desc: desc}
	n := desc.Width * desc.Height * desc.Format.Channels()
	if desc.Format == FormatRGBA16F {
		t.f16 = make([]half.Half, n)
	} else {
		t.f32 = make([]float32, n)
	}
	return t
}

func (t *Texture) Name() string           { return t.name }
func (t *Texture) Descriptor() Descriptor { return t.desc }
func (t *Texture) Width() int             { return t.desc.Width }
func (t *Texture) Height() int            { return t.desc.Height }
func (t *Texture) Released() bool         { return t.released }
func (t *Texture) String() string         { return fmt.Sprintf("%s(%s)", t.name, t.desc) }

func (t *Texture) SizeBytes() int {
	return t.desc.Width * t.desc.Height * t.desc.Format.BytesPerTexel()
}

// TexelSize returns the UV extent of one texel.
func (t *Texture) TexelSize() math.Vec2 {
	return math.Vec2{X: 1 / float32(t.desc.Width), Y: 1 / float32(t.desc.Height)}
}

// UV returns the texture coordinate of the centre of texel (x, y).
func (t *Texture) UV(x, y int) math.Vec2 {
	return math.Vec2{
		X: (float32(x) + 0.5) / float32(t.desc.Width),
		Y: (float32(y) + 0.5) / float32(t.desc.Height),
	}
}

func (t *Texture) clampCoord(x, y int) (int, int) {
	x = min(max(x, 0), t.desc.Width-1)
	y = min(max(y, 0), t.desc.Height-1)
	return x, y
}

// Load fetches a texel with clamp-to-edge addressing. Single channel
// formats return (r, 0, 0, 1).
func (t *Texture) Load(x, y int) math.Vec4 {
	x, y = t.clampCoord(x, y)
	i := y*t.desc.Width + x
	switch t.desc.Format {
	case FormatR32F:
		return math.Vec4{X: t.f32[i], W: 1}
	case FormatRGBA16F:
		p := t.f16[i*4 : i*4+4 : i*4+4]
		return math.Vec4{X: p[0].Float32(), Y: p[1].Float32(), Z: p[2].Float32(), W: p[3].Float32()}
	default:
		p := t.f32[i*4 : i*4+4 : i*4+4]
		return math.Vec4{X: p[0], Y: p[1], Z: p[2], W: p[3]}
	}
}

// Store writes a texel. Out of range coordinates are ignored.
func (t *Texture) Store(x, y int, v math.Vec4) {
	if x < 0 || y < 0 || x >= t.desc.Width || y >= t.desc.Height {
		return
	}
	i := y*t.desc.Width + x
	switch t.desc.Format {
	case FormatR32F:
		t.f32[i] = v.X
	case FormatRGBA16F:
		p := t.f16[i*4 : i*4+4 : i*4+4]
		p[0] = half.FromFloat32(v.X)
		p[1] = half.FromFloat32(v.Y)
		p[2] = half.FromFloat32(v.Z)
		p[3] = half.FromFloat32(v.W)
	default:
		p := t.f32[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = v.X, v.Y, v.Z, v.W
	}
}

// SamplePoint returns the texel containing uv.
func (t *Texture) SamplePoint(uv math.Vec2) math.Vec4 {
	x := int(math.Floor(uv.X * float32(t.desc.Width)))
	y := int(math.Floor(uv.Y * float32(t.desc.Height)))
	return t.Load(x, y)
}

// SampleBilinear filters the four texels around uv with clamp-to-edge
// addressing. Identical neighbours return their exact value.
func (t *Texture) SampleBilinear(uv math.Vec2) math.Vec4 {
	fx := uv.X*float32(t.desc.Width) - 0.5
	fy := uv.Y*float32(t.desc.Height) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := fx - x0
	ty := fy - y0
	ix, iy := int(x0), int(y0)

	top := t.Load(ix, iy).Lerp(t.Load(ix+1, iy), tx)
	bottom := t.Load(ix, iy+1).Lerp(t.Load(ix+1, iy+1), tx)
	return top.Lerp(bottom, ty)
}

// Clear fills every texel with v.
func (t *Texture) Clear(v math.Vec4) {
	switch t.desc.Format {
	case FormatR32F:
		for i := range t.f32 {
			t.f32[i] = v.X
		}
	case FormatRGBA16F:
		px := [4]half.Half{half.FromFloat32(v.X), half.FromFloat32(v.Y), half.FromFloat32(v.Z), half.FromFloat32(v.W)}
		for i := 0; i < len(t.f16); i += 4 {
			copy(t.f16[i:i+4], px[:])
		}
	default:
		px := [4]float32{v.X, v.Y, v.Z, v.W}
		for i := 0; i < len(t.f32); i += 4 {
			copy(t.f32[i:i+4], px[:])
		}
	}
}

// CopyFrom copies the contents of src. Both textures must share a descriptor.
func (t *Texture) CopyFrom(src *Texture) error {
	if t.released || src.released {
		return fmt.Errorf("copy %s -> %s: %w", src.name, t.name, ErrReleased)
	}
	if t.desc != src.desc {
		return fmt.Errorf("copy %s -> %s: %w", src, t, ErrDescriptorMismatch)
	}
	copy(t.f32, src.f32)
	copy(t.f16, src.f16)
	return nil
}

// Equal reports whether both textures hold bit-identical contents.
func (t *Texture) Equal(other *Texture) bool {
	if t.desc != other.desc {
		return false
	}
	for i := range t.f32 {
		if t.f32[i] != other.f32[i] {
			return false
		}
	}
	for i := range t.f16 {
		if t.f16[i].Bits() != other.f16[i].Bits() {
			return false
		}
	}
	return true
}

// Clone returns an independent copy under a new name.
func (t *Texture) Clone(name string) *Texture {
	c := NewTexture(name, t.desc)
	copy(c.f32, t.f32)
	copy(c.f16, t.f16)
	return c
}

// release marks t unusable and hands back its storage for reuse.
func (t *Texture) release() storage {
	st := storage{f32: t.f32, f16: t.f16}
	t.released = true
	t.f32 = nil
	t.f16 = nil
	return st
}

// storage is the backing memory of a released texture, recycled by the arena.
type storage struct {
	f32 []float32
	f16 []half.Half
}
