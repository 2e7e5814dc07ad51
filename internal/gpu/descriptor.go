package gpu

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Descriptor describes the shape of a texture allocation.
type Descriptor struct {
	Width  int
	Height int
	Format Format
}

func (d Descriptor) Valid() bool {
	return d.Width > 0 && d.Height > 0 && d.Format.Channels() > 0
}

// Hash returns a content hash of the descriptor. Persistent textures are
// keyed by it so that a resize or format change forces reallocation.
func (d Descriptor) Hash() uint64 {
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(d.Width))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(d.Height))
	buf[16] = byte(d.Format)

	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}

// Scaled returns a descriptor with both dimensions multiplied by scale and
// truncated, never smaller than one texel.
func (d Descriptor) Scaled(scale float32) Descriptor {
	d.Width = max(int(float32(d.Width)*scale), 1)
	d.Height = max(int(float32(d.Height)*scale), 1)
	return d
}

func (d Descriptor) WithFormat(f Format) Descriptor {
	d.Format = f
	return d
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%dx%d %s", d.Width, d.Height, d.Format)
}
