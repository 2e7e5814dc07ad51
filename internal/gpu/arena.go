package gpu

import (
	"sync"

	"volumetric-fog/math"
)

// ArenaStats summarises arena activity.
type ArenaStats struct {
	Persistent     int // live persistent textures
	Transient      int // live transient textures across open scopes
	Allocations    int // fresh storage allocations since creation
	Reallocations  int // persistent textures replaced after a descriptor change
	Recycled       int // transient textures served from the pool
	PersistentSize int // bytes held by persistent textures
}

type persistentEntry struct {
	tex  *Texture
	hash uint64
}

// Arena owns texture handles. Persistent textures live until released or
// until their descriptor hash changes; transient textures belong to a
// FrameScope and are released when it ends. Released transient storage is
// pooled by descriptor hash and reused by later scopes.
type Arena struct {
	mu         sync.Mutex
	persistent map[string]*persistentEntry
	pool       map[uint64][]storage
	stats      ArenaStats
}

func NewArena() *Arena {
	return &Arena{
		persistent: make(map[string]*persistentEntry),
		pool:       make(map[uint64][]storage),
	}
}

// Persistent returns the persistent texture registered under name, allocating
// a zeroed one when it is missing or its descriptor hash differs from desc.
// The second result reports whether the texture is freshly allocated and so
// holds no history.
func (a *Arena) Persistent(name string, desc Descriptor) (*Texture, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hash := desc.Hash()
	if e, ok := a.persistent[name]; ok {
		if e.hash == hash && !e.tex.released {
			return e.tex, false
		}
		slogger().Info("gpu: reallocating persistent texture",
			"name", name, "old", e.tex.desc.String(), "new", desc.String())
		e.tex.release()
		a.stats.Reallocations++
		a.stats.Persistent--
		a.stats.PersistentSize -= e.tex.desc.Width * e.tex.desc.Height * e.tex.desc.Format.BytesPerTexel()
	}

	tex := NewTexture(name, desc)
	a.persistent[name] = &persistentEntry{tex: tex, hash: hash}
	a.stats.Allocations++
	a.stats.Persistent++
	a.stats.PersistentSize += tex.SizeBytes()
	slogger().Debug("gpu: persistent texture allocated", "name", name, "desc", desc.String())
	return tex, true
}

// Lookup returns a live persistent texture without allocating.
func (a *Arena) Lookup(name string) (*Texture, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.persistent[name]
	if !ok || e.tex.released {
		return nil, false
	}
	return e.tex, true
}

// Release frees a persistent texture. It reports whether one was held.
func (a *Arena) Release(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.releaseLocked(name)
}

func (a *Arena) releaseLocked(name string) bool {
	e, ok := a.persistent[name]
	if !ok {
		return false
	}
	a.stats.Persistent--
	a.stats.PersistentSize -= e.tex.SizeBytes()
	e.tex.release()
	delete(a.persistent, name)
	slogger().Debug("gpu: persistent texture released", "name", name)
	return true
}

// ReleaseAll frees every persistent texture and drops the transient pool.
func (a *Arena) ReleaseAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for name := range a.persistent {
		a.releaseLocked(name)
	}
	a.pool = make(map[uint64][]storage)
}

func (a *Arena) Stats() ArenaStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// BeginFrame opens a transient scope. Call End when the frame is done.
func (a *Arena) BeginFrame() *FrameScope {
	return &FrameScope{arena: a}
}

// FrameScope owns the transient textures of one frame.
type FrameScope struct {
	arena    *Arena
	textures []*Texture
	ended    bool
}

// Create returns a cleared transient texture valid until End.
func (s *FrameScope) Create(name string, desc Descriptor) *Texture {
	a := s.arena
	a.mu.Lock()
	defer a.mu.Unlock()

	hash := desc.Hash()
	var tex *Texture
	if free := a.pool[hash]; len(free) > 0 {
		st := free[len(free)-1]
		a.pool[hash] = free[:len(free)-1]
		tex = &Texture{name: name, desc: desc, f32: st.f32, f16: st.f16}
		tex.Clear(math.Vec4{})
		a.stats.Recycled++
	} else {
		tex = NewTexture(name, desc)
		a.stats.Allocations++
	}
	a.stats.Transient++
	s.textures = append(s.textures, tex)
	return tex
}

// End releases every texture created by the scope. Handles become invalid
// and their storage returns to the arena pool. End is idempotent.
func (s *FrameScope) End() {
	if s.ended {
		return
	}
	s.ended = true

	a := s.arena
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, tex := range s.textures {
		hash := tex.desc.Hash()
		a.pool[hash] = append(a.pool[hash], tex.release())
		a.stats.Transient--
	}
	s.textures = nil
}
