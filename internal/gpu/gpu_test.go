package gpu

import (
	"errors"
	"sync/atomic"
	"testing"

	"volumetric-fog/math"
)

func rgba(w, h int) Descriptor {
	return Descriptor{Width: w, Height: h, Format: FormatRGBA16F}
}

func TestDescriptorHash(t *testing.T) {
	a := rgba(64, 32)
	if a.Hash() != rgba(64, 32).Hash() {
		t.Error("equal descriptors should hash equal")
	}
	if a.Hash() == rgba(32, 64).Hash() {
		t.Error("swapped dimensions should hash differently")
	}
	if a.Hash() == a.WithFormat(FormatRGBA32F).Hash() {
		t.Error("format change should change the hash")
	}
}

func TestDescriptorScaled(t *testing.T) {
	tests := []struct {
		in    Descriptor
		scale float32
		w, h  int
	}{
		{rgba(1920, 1080), 0.5, 960, 540},
		{rgba(1920, 1080), 0.25, 480, 270},
		{rgba(101, 51), 0.5, 50, 25},
		{rgba(2, 2), 0.25, 1, 1},
	}
	for _, tt := range tests {
		got := tt.in.Scaled(tt.scale)
		if got.Width != tt.w || got.Height != tt.h {
			t.Errorf("%v scaled by %v: got %dx%d, want %dx%d", tt.in, tt.scale, got.Width, got.Height, tt.w, tt.h)
		}
	}
}

func TestTextureHalfStorage(t *testing.T) {
	tex := NewTexture("fog", rgba(4, 4))
	v := math.NewVec4(0.1, 1.5, 1000, 1)
	tex.Store(1, 2, v)
	got := tex.Load(1, 2)

	tolerance := []float32{1e-3, 1e-3, 1, 0}
	values := [][2]float32{{got.X, v.X}, {got.Y, v.Y}, {got.Z, v.Z}, {got.W, v.W}}
	for i, pair := range values {
		if math.Abs(pair[0]-pair[1]) > tolerance[i] {
			t.Errorf("channel %d: got %v, want %v", i, pair[0], pair[1])
		}
	}
	if got.W != 1 {
		t.Errorf("alpha 1 must survive half storage exactly, got %v", got.W)
	}
}

func TestTextureR32F(t *testing.T) {
	tex := NewTexture("depth", Descriptor{Width: 2, Height: 2, Format: FormatR32F})
	tex.Store(0, 0, math.NewVec4(0.25, 9, 9, 9))
	got := tex.Load(0, 0)
	if got != math.NewVec4(0.25, 0, 0, 1) {
		t.Errorf("single channel load: got %v", got)
	}
	// Clamp to edge.
	if tex.Load(-5, -5) != got {
		t.Error("out of range load should clamp to the edge texel")
	}
}

func TestSampleBilinear(t *testing.T) {
	tex := NewTexture("ramp", Descriptor{Width: 2, Height: 1, Format: FormatRGBA32F})
	tex.Store(0, 0, math.NewVec4(0, 0, 0, 1))
	tex.Store(1, 0, math.NewVec4(1, 1, 1, 1))

	mid := tex.SampleBilinear(math.NewVec2(0.5, 0.5))
	if math.Abs(mid.X-0.5) > 1e-6 {
		t.Errorf("midpoint: got %v, want 0.5", mid.X)
	}
	left := tex.SampleBilinear(math.NewVec2(0.25, 0.5))
	if left.X != 0 {
		t.Errorf("texel centre should return the texel exactly, got %v", left.X)
	}
	if mid.W != 1 {
		t.Errorf("constant channel should stay exact, got %v", mid.W)
	}
}

func TestCopyFromMismatch(t *testing.T) {
	a := NewTexture("a", rgba(4, 4))
	b := NewTexture("b", rgba(8, 4))
	if err := a.CopyFrom(b); !errors.Is(err, ErrDescriptorMismatch) {
		t.Errorf("expected ErrDescriptorMismatch, got %v", err)
	}

	c := NewTexture("c", rgba(4, 4))
	c.Clear(math.NewVec4(1, 2, 3, 4))
	if err := a.CopyFrom(c); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(c) {
		t.Error("copy should produce identical contents")
	}
}

func TestTexture3DSample(t *testing.T) {
	vol := NewTexture3D(2, 2, 2, 1)
	vol.Set(0, 0, 0, math.NewVec3(1, 0, 0))
	// Voxel centre returns the voxel.
	if got := vol.Sample(math.NewVec3(0.25, 0.25, 0.25)).X; math.Abs(got-1) > 1e-6 {
		t.Errorf("voxel centre: got %v", got)
	}
	// Repeat addressing.
	if got := vol.Sample(math.NewVec3(1.25, -0.75, 2.25)).X; math.Abs(got-1) > 1e-5 {
		t.Errorf("wrapped voxel centre: got %v", got)
	}
}

func TestTexture3DValid(t *testing.T) {
	tests := []struct {
		name string
		vol  *Texture3D
		want bool
	}{
		{"allocated", NewTexture3D(2, 3, 4, 1), true},
		{"three channels", NewTexture3D(2, 2, 2, 3), true},
		{"nil", nil, false},
		{"empty", NewTexture3D(0, 0, 0, 1), false},
		{"zero width", NewTexture3D(0, 2, 2, 1), false},
		{"zero depth", NewTexture3D(2, 2, 0, 3), false},
		{"no storage", &Texture3D{Width: 2, Height: 2, Depth: 2, Channels: 1}, false},
		{"bad channel count", &Texture3D{Width: 1, Height: 1, Depth: 1, Channels: 2, data: make([]float32, 2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vol.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArenaPersistent(t *testing.T) {
	arena := NewArena()
	tex, fresh := arena.Persistent("history", rgba(16, 16))
	if !fresh {
		t.Error("first request should allocate")
	}
	again, fresh := arena.Persistent("history", rgba(16, 16))
	if fresh || again != tex {
		t.Error("same descriptor should return the held texture")
	}

	resized, fresh := arena.Persistent("history", rgba(32, 16))
	if !fresh || resized == tex {
		t.Error("descriptor change should reallocate")
	}
	if !tex.Released() {
		t.Error("stale texture should be released")
	}
	if s := arena.Stats(); s.Reallocations != 1 || s.Persistent != 1 {
		t.Errorf("unexpected stats %+v", s)
	}

	if !arena.Release("history") {
		t.Error("release should report a held texture")
	}
	if _, ok := arena.Lookup("history"); ok {
		t.Error("released texture should not be found")
	}
	if s := arena.Stats(); s.Persistent != 0 || s.PersistentSize != 0 {
		t.Errorf("unexpected stats after release %+v", s)
	}
}

func TestFrameScopeRecycles(t *testing.T) {
	arena := NewArena()
	scope := arena.BeginFrame()
	first := scope.Create("scratch", rgba(8, 8))
	first.Clear(math.NewVec4(5, 5, 5, 5))
	scope.End()
	if !first.Released() {
		t.Fatal("transient texture should be released at scope end")
	}

	scope = arena.BeginFrame()
	second := scope.Create("scratch", rgba(8, 8))
	defer scope.End()
	if second.Load(3, 3) != (math.Vec4{}) {
		t.Error("recycled texture should be cleared")
	}
	if s := arena.Stats(); s.Recycled != 1 || s.Allocations != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestGraphValidation(t *testing.T) {
	desc := rgba(4, 4)
	src := NewTexture("src", desc)
	mid := NewTexture("mid", desc)
	dst := NewTexture("dst", desc)
	nop := func() error { return nil }

	tests := []struct {
		name  string
		build func(g *Graph)
		want  error
	}{
		{"valid chain", func(g *Graph) {
			g.Import(src)
			g.AddPass("a", []*Texture{src}, []*Texture{mid}, nop)
			g.AddPass("b", []*Texture{mid}, []*Texture{dst}, nop)
		}, nil},
		{"read before write", func(g *Graph) {
			g.Import(src)
			g.AddPass("b", []*Texture{mid}, []*Texture{dst}, nop)
			g.AddPass("a", []*Texture{src}, []*Texture{mid}, nop)
		}, ErrReadBeforeWrite},
		{"hazard", func(g *Graph) {
			g.Import(src)
			g.AddPass("a", []*Texture{src}, []*Texture{src}, nop)
		}, ErrReadWriteHazard},
		{"unsafe allowed", func(g *Graph) {
			g.Import(src)
			g.AddUnsafePass("a", []*Texture{src}, []*Texture{src}, nop)
		}, nil},
		{"nil texture", func(g *Graph) {
			g.AddPass("a", nil, []*Texture{nil}, nop)
		}, ErrNilTexture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph(tt.name)
			tt.build(g)
			err := g.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGraphRejectsReleased(t *testing.T) {
	arena := NewArena()
	scope := arena.BeginFrame()
	tex := scope.Create("t", rgba(2, 2))
	scope.End()

	g := NewGraph("released")
	g.Import(tex)
	if err := g.Execute(); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
}

func TestGraphExecutesInOrder(t *testing.T) {
	var order []string
	g := NewGraph("order")
	a := NewTexture("a", rgba(1, 1))
	b := NewTexture("b", rgba(1, 1))
	g.AddPass("first", nil, []*Texture{a}, func() error { order = append(order, "first"); return nil })
	g.AddPass("second", []*Texture{a}, []*Texture{b}, func() error { order = append(order, "second"); return nil })
	if err := g.Execute(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected order %v", order)
	}

	failing := NewGraph("failing")
	boom := errors.New("boom")
	failing.AddPass("bad", nil, []*Texture{a}, func() error { return boom })
	if err := failing.Execute(); !errors.Is(err, boom) {
		t.Errorf("expected wrapped pass error, got %v", err)
	}
}

func TestDispatchCoversGrid(t *testing.T) {
	const w, h = 37, 23
	var hits [w * h]atomic.Int32
	Dispatch(w, h, func(x, y int) {
		hits[y*w+x].Add(1)
	})
	for i := range hits {
		if n := hits[i].Load(); n != 1 {
			t.Fatalf("texel %d visited %d times", i, n)
		}
	}
}

func BenchmarkDispatchBilinear(b *testing.B) {
	src := NewTexture("src", rgba(256, 256))
	dst := NewTexture("dst", rgba(512, 512))
	for i := 0; i < b.N; i++ {
		Dispatch(dst.Width(), dst.Height(), func(x, y int) {
			dst.Store(x, y, src.SampleBilinear(dst.UV(x, y)))
		})
	}
}
