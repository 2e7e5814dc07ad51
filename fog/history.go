package fog

import (
	"fmt"

	"volumetric-fog/internal/gpu"
)

// HistoryState tracks whether reprojection has usable history.
type HistoryState int

const (
	// HistoryDisabled holds no textures.
	HistoryDisabled HistoryState = iota
	// HistoryCold holds textures without valid content.
	HistoryCold
	// HistoryWarm holds last frame's fog and depth.
	HistoryWarm
)

func (s HistoryState) String() string {
	switch s {
	case HistoryDisabled:
		return "disabled"
	case HistoryCold:
		return "cold"
	case HistoryWarm:
		return "warm"
	default:
		return fmt.Sprintf("HistoryState(%d)", int(s))
	}
}

// historySlots are the textures used by one frame: the previous slot is
// read, the current slot written.
type historySlots struct {
	prevFog   *gpu.Texture
	prevDepth *gpu.Texture
	curFog    *gpu.Texture
	curDepth  *gpu.Texture
}

// history is the double buffered persistent fog and depth, owned by a
// single pipeline. Slots alternate every committed frame, so a frame never
// reads and writes the same texture.
type history struct {
	arena *gpu.Arena
	state HistoryState
	index int
	key   uint64
}

func historyName(kind string, slot int) string {
	return fmt.Sprintf("fog.history.%s.%d", kind, slot)
}

// acquire returns the slots for this frame, allocating them when missing
// or when the descriptors changed. Any allocation makes the history cold.
func (h *history) acquire(fogDesc, depthDesc gpu.Descriptor) historySlots {
	key := fogDesc.Hash() ^ depthDesc.Hash()<<1
	fresh := false
	var fogs, depths [2]*gpu.Texture
	for slot := 0; slot < 2; slot++ {
		var allocated bool
		fogs[slot], allocated = h.arena.Persistent(historyName("fog", slot), fogDesc)
		fresh = fresh || allocated
		depths[slot], allocated = h.arena.Persistent(historyName("depth", slot), depthDesc)
		fresh = fresh || allocated
	}
	if fresh || h.state == HistoryDisabled {
		if h.state == HistoryWarm && key != h.key {
			Logger().Info("fog: history descriptor changed, reallocated",
				"fog", fogDesc.String(), "depth", depthDesc.String())
		} else {
			Logger().Info("fog: history allocated", "fog", fogDesc.String())
		}
		h.state = HistoryCold
		h.index = 0
	}
	h.key = key

	prev := 1 - h.index
	return historySlots{
		prevFog:   fogs[prev],
		prevDepth: depths[prev],
		curFog:    fogs[h.index],
		curDepth:  depths[h.index],
	}
}

// commit flips the slots after a frame wrote the current ones.
func (h *history) commit() {
	h.index = 1 - h.index
	h.state = HistoryWarm
}

// invalidate keeps the textures but discards their content.
func (h *history) invalidate() {
	if h.state == HistoryWarm {
		h.state = HistoryCold
	}
}

// release frees every history texture.
func (h *history) release() {
	released := false
	for slot := 0; slot < 2; slot++ {
		released = h.arena.Release(historyName("fog", slot)) || released
		released = h.arena.Release(historyName("depth", slot)) || released
	}
	if released {
		Logger().Info("fog: history released")
	}
	h.state = HistoryDisabled
	h.index = 0
	h.key = 0
}
