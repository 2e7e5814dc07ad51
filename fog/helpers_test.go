package fog

import (
	stdmath "math"
	"testing"

	"volumetric-fog/core"
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

const (
	testNear = 0.1
	testFar  = 200
)

var testEye = math.NewVec3(0, 2, 0)

func testCamera(w, h int) CameraData {
	view := math.Mat4LookAt(testEye, testEye.Add(math.NewVec3(0, 0, -1)), math.Vec3Up)
	proj := math.Mat4Perspective(stdmath.Pi/3, float32(w)/float32(h), testNear, testFar)
	vp := view.Mul(proj)
	return NewCameraData(view, proj, vp, testEye, testNear, testFar)
}

// flatFrame builds a frame whose depth is a wall facing the camera at the
// given view distance, in front of a uniform scene colour.
func flatFrame(t testing.TB, w, h int, distance float32, scene core.Color) *FrameContext {
	t.Helper()
	cam := testCamera(w, h)
	_, device := cam.ProjectUV(testEye.Add(math.NewVec3(0, 0, -distance)))

	color := gpu.NewTexture("scene.color", gpu.Descriptor{Width: w, Height: h, Format: gpu.FormatRGBA16F})
	color.Clear(scene.Vec4())
	depth := gpu.NewTexture("scene.depth", gpu.Descriptor{Width: w, Height: h, Format: gpu.FormatR32F})
	depth.Clear(math.Vec4{X: device})

	return &FrameContext{
		Color:  color,
		Depth:  depth,
		Camera: cam,
		Lights: LightData{
			MainLightIndex: 0,
			Visible: []Light{{
				ID:          1,
				Type:        LightTypeDirectional,
				Direction:   math.NewVec3(0, 0, 1), // towards the camera
				Color:       core.ColorWhite,
				Intensity:   1,
				ShadowIndex: -1,
			}},
		},
		FrameCount: 7,
	}
}

func withMotion(frame *FrameContext, mv math.Vec2) *FrameContext {
	d := frame.Color.Descriptor().WithFormat(gpu.FormatRGBA32F)
	motion := gpu.NewTexture("scene.motion", d)
	motion.Clear(math.Vec4{X: mv.X, Y: mv.Y})
	frame.MotionVectors = motion
	return frame
}

// endToEndConfiguration is the reference scenario: half resolution, two
// blur iterations, main light only.
func endToEndConfiguration() Configuration {
	cfg := DefaultConfiguration()
	cfg.Distance = 128
	cfg.BaseHeight = 0
	cfg.MaximumHeight = 50
	cfg.Density = 0.2
	cfg.AttenuationDistance = 128
	cfg.MainLight = MainLightSettings{Enabled: true, Anisotropy: 0.4, Scattering: 0.15, ColorTint: core.ColorWhite}
	cfg.AdditionalLights.Enabled = false
	cfg.Noise.Mode = NoiseOff
	cfg.Resolution = ResolutionHalf
	cfg.MaxSteps = 64
	cfg.BlurIterations = 2
	cfg.Reprojection = false
	return cfg
}

func meanLuminance(tex *gpu.Texture) float32 {
	var sum float32
	for y := 0; y < tex.Height(); y++ {
		for x := 0; x < tex.Width(); x++ {
			c := tex.Load(x, y)
			sum += core.Color{R: c.X, G: c.Y, B: c.Z}.Luminance()
		}
	}
	return sum / float32(tex.Width()*tex.Height())
}

func fill(tex *gpu.Texture, fn func(x, y int) math.Vec4) {
	for y := 0; y < tex.Height(); y++ {
		for x := 0; x < tex.Width(); x++ {
			tex.Store(x, y, fn(x, y))
		}
	}
}

func approx(a, b, eps float32) bool {
	return math.Abs(a-b) <= eps
}
