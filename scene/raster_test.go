package scene

import (
	"testing"

	"volumetric-fog/core"
	"volumetric-fog/fog"
	"volumetric-fog/math"
)

func clipVertex(z, w float32) rasterVertex {
	return rasterVertex{clip: math.Vec4{Z: z, W: w}}
}

func TestClipNear(t *testing.T) {
	inside, behind := clipVertex(0, 1), clipVertex(-2, 1)
	tests := []struct {
		name string
		in   [3]rasterVertex
		want int
	}{
		{"all inside", [3]rasterVertex{inside, inside, inside}, 3},
		{"one behind", [3]rasterVertex{inside, behind, inside}, 4},
		{"two behind", [3]rasterVertex{inside, behind, behind}, 3},
		{"all behind", [3]rasterVertex{behind, behind, behind}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n := clipNear(tt.in)
			if n != tt.want {
				t.Fatalf("clipNear produced %d vertices, want %d", n, tt.want)
			}
			for i := 0; i < n; i++ {
				if d := out[i].clip.Z + out[i].clip.W; d < -1e-6 {
					t.Errorf("vertex %d is behind the near plane: %v", i, d)
				}
			}
		})
	}
}

// planeScene is an unlit ground plane seen at an angle, with the horizon
// in the upper part of the image.
func planeScene(albedo core.Color) *Scene {
	s := NewScene()
	s.Camera = NewCamera(1.0472, 1, 0.1, 50)
	s.Camera.SetPosition(math.NewVec3(0, 2, 5))
	s.Camera.LookAt(math.Vec3Zero)

	ground := NewNode("ground")
	ground.Mesh = CreatePlane(40)
	ground.Mesh.Material = &Material{Name: "flat", Albedo: albedo, Unlit: true}
	s.AddNode(ground)
	return s
}

func TestRasterizerDrawsPlane(t *testing.T) {
	albedo := core.Color{R: 0.5, G: 0.25, B: 1, A: 1}
	s := planeScene(albedo)
	r := NewRasterizer(32, 32)
	r.Render(s, nil)

	if r.Triangles == 0 {
		t.Fatal("no triangles drawn")
	}

	c := r.Color.Load(16, 16)
	if !near(c.X, 0.5, 2e-3) || !near(c.Y, 0.25, 2e-3) || !near(c.Z, 1, 2e-3) {
		t.Errorf("centre colour = %v, want albedo %v", c, albedo)
	}
	d := r.Depth.Load(16, 16).X
	if d <= 0 || d >= 1 {
		t.Fatalf("centre depth = %v, want inside (0, 1)", d)
	}
	cam := s.Camera.Data()
	if p := cam.WorldFromDepth(r.Depth.UV(16, 16), d); !near(p.Y, 0, 0.05) {
		t.Errorf("reconstructed centre = %v, want a point on the ground", p)
	}

	// The top row looks above the horizon.
	if d := r.Depth.Load(16, 0).X; d != 1 {
		t.Errorf("top row depth = %v, want the far plane", d)
	}
	sky := r.Color.Load(16, 0)
	if near(sky.X, 0.5, 2e-3) && near(sky.Y, 0.25, 2e-3) {
		t.Error("top row shows the ground colour")
	}
}

func TestRasterizerStaticMotionIsZero(t *testing.T) {
	s := planeScene(core.ColorWhite)
	r := NewRasterizer(24, 24)
	r.Render(s, nil)
	s.EndFrame()
	r.Render(s, nil)

	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			mv := r.Motion.Load(x, y)
			if math.Abs(mv.X) > 1e-4 || math.Abs(mv.Y) > 1e-4 {
				t.Fatalf("motion at (%d, %d) = %v, want zero", x, y, mv)
			}
		}
	}
}

func TestRasterizerCameraMotion(t *testing.T) {
	s := planeScene(core.ColorWhite)
	r := NewRasterizer(24, 24)
	r.Render(s, nil)
	s.EndFrame()

	s.Camera.Translate(math.NewVec3(0.5, 0, 0))
	r.Render(s, nil)

	// Moving right shifts the ground left on screen.
	if mv := r.Motion.Load(12, 12); mv.X >= 0 {
		t.Errorf("motion x = %v, want negative", mv.X)
	}
}

func TestRasterizerNodeMotion(t *testing.T) {
	s := planeScene(core.ColorWhite)
	box := NewNode("box")
	box.Mesh = CreateCube(1)
	box.SetPosition(math.NewVec3(0, 0.5, 0))
	s.AddNode(box)

	r := NewRasterizer(32, 32)
	r.Render(s, nil)
	s.EndFrame()

	box.Translate(math.NewVec3(0.25, 0, 0))
	r.Render(s, nil)

	if mv := r.Motion.Load(16, 16); mv.X <= 0 {
		t.Errorf("motion x over the moving box = %v, want positive", mv.X)
	}
	if mv := r.Motion.Load(1, 30); math.Abs(mv.X) > 1e-4 {
		t.Errorf("ground motion = %v, want zero", mv.X)
	}
}

func TestRasterizerResize(t *testing.T) {
	r := NewRasterizer(8, 8)
	color := r.Color
	r.Resize(8, 8)
	if r.Color != color {
		t.Error("same size reallocated the targets")
	}
	r.Resize(16, 4)
	if r.Width() != 16 || r.Height() != 4 || r.Depth.Width() != 16 || r.Motion.Height() != 4 {
		t.Errorf("resized to %dx%d", r.Width(), r.Height())
	}
}

func TestShadeDirectionalLight(t *testing.T) {
	s := NewScene()
	s.Sky.Intensity = 0
	sun := &Light{Main: true}
	sun.Type = fog.LightTypeDirectional
	sun.Direction = math.Vec3Down
	sun.Color = core.ColorWhite
	sun.Intensity = 2
	s.AddLight(sun)

	mat := &Material{Albedo: core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}}
	attr := rasterVertex{normal: math.Vec3Up, color: core.ColorWhite}
	got := shade(s, s.Lights, mat, attr, nil)
	if !near(got.X, 1, 1e-5) {
		t.Errorf("lit radiance = %v, want 1", got.X)
	}

	attr.normal = math.Vec3Down
	if got := shade(s, s.Lights, mat, attr, nil); got.X != 0 {
		t.Errorf("back-facing radiance = %v, want 0", got.X)
	}
}
