package output

import (
	"fmt"
	"image"

	"github.com/mrjoshuak/go-openexr/exr"

	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// ToEXR copies tex into an EXR image. Single channel textures fill R only.
func ToEXR(tex *gpu.Texture) *exr.RGBAImage {
	img := exr.NewRGBAImage(image.Rect(0, 0, tex.Width(), tex.Height()))
	for y := 0; y < tex.Height(); y++ {
		for x := 0; x < tex.Width(); x++ {
			c := tex.Load(x, y)
			img.SetRGBA(x, y, c.X, c.Y, c.Z, c.W)
		}
	}
	return img
}

// FromEXR loads an EXR image into a new texture of the given format.
func FromEXR(name string, img *exr.RGBAImage, format gpu.Format) *gpu.Texture {
	b := img.Bounds()
	tex := gpu.NewTexture(name, gpu.Descriptor{Width: b.Dx(), Height: b.Dy(), Format: format})
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := img.RGBA(x+b.Min.X, y+b.Min.Y)
			tex.Store(x, y, math.Vec4{X: r, Y: g, Z: bl, W: a})
		}
	}
	return tex
}

// WriteEXR dumps tex to path as half float RGBA.
func WriteEXR(path string, tex *gpu.Texture) error {
	if err := exr.EncodeFile(path, ToEXR(tex)); err != nil {
		return fmt.Errorf("write exr %q: %w", path, err)
	}
	return nil
}

// ReadEXR reads path into an RGBA16F texture named after the file.
func ReadEXR(path string) (*gpu.Texture, error) {
	img, err := exr.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exr %q: %w", path, err)
	}
	return FromEXR(path, img, gpu.FormatRGBA16F), nil
}
