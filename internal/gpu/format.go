package gpu

import "fmt"

// Format is the texel layout of a Texture.
type Format uint8

const (
	FormatUnknown Format = iota
	// FormatR32F is a single float channel, used for depth.
	FormatR32F
	// FormatRGBA16F stores four half floats per texel.
	FormatRGBA16F
	// FormatRGBA32F stores four float32 per texel.
	FormatRGBA32F
)

func (f Format) Channels() int {
	switch f {
	case FormatR32F:
		return 1
	case FormatRGBA16F, FormatRGBA32F:
		return 4
	default:
		return 0
	}
}

// BytesPerTexel is used for arena accounting only.
func (f Format) BytesPerTexel() int {
	switch f {
	case FormatR32F:
		return 4
	case FormatRGBA16F:
		return 8
	case FormatRGBA32F:
		return 16
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatR32F:
		return "R32F"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRGBA32F:
		return "RGBA32F"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}
