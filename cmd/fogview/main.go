// Command fogview is an interactive preview of a fog scene. The scene and
// fog are rendered in software and presented through OpenGL.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	stdmath "math"
	"os"

	"volumetric-fog/fog"
	"volumetric-fog/internal/app"
	"volumetric-fog/internal/opengl"
	"volumetric-fog/internal/output"
	"volumetric-fog/math"
	"volumetric-fog/scene"
)

const (
	shadowSize  = 512
	orbitSpeed  = 1.2  // radians per second
	dragSpeed   = 0.01 // radians per pixel
	zoomStep    = 0.5
	maxFrameDt  = 0.1
	titlePeriod = 0.5 // seconds between title refreshes
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fogview: %v\n", err)
		os.Exit(1)
	}
}

// viewer owns everything the preview mutates from key callbacks.
type viewer struct {
	flags       *app.Config
	scene       *scene.Scene
	orbit       *scene.OrbitCamera
	cfg         fog.Configuration
	baseDensity float32
	pipeline    *fog.Pipeline
	presenter   *opengl.Presenter
	dayNight    *app.DayNight
	window      *opengl.Window
}

func run(c *app.Config) error {
	fog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel()})))

	s, cfg, err := c.Load()
	if err != nil {
		return err
	}

	wc := opengl.DefaultWindowConfig()
	wc.Width, wc.Height = c.Width*2, c.Height*2
	wc.Title = "fogview"
	window, err := opengl.NewWindow(wc)
	if err != nil {
		return err
	}
	defer window.Destroy()

	presenter, err := opengl.NewPresenter()
	if err != nil {
		return err
	}
	defer presenter.Destroy()
	presenter.ToneMapping.Exposure = float32(c.Exposure)

	v := &viewer{
		flags:       c,
		scene:       s,
		orbit:       orbitFrom(s.Camera),
		cfg:         cfg,
		baseDensity: cfg.Density,
		pipeline:    fog.NewPipeline(),
		presenter:   presenter,
		dayNight:    app.NewDayNight(),
		window:      window,
	}
	defer v.pipeline.Dispose()
	s.SetCamera(&v.orbit.Camera)
	v.pipeline.Setup(&v.cfg)

	window.SetKeyCallback(v.handleKey)
	window.SetScrollCallback(func(_, yoff float64) {
		v.orbit.Zoom(float32(-yoff) * zoomStep)
	})

	fmt.Println("Controls:")
	fmt.Println("  Arrows / left drag  orbit        PageUp/PageDown / wheel  zoom")
	fmt.Println("  Right click         focus the surface under the cursor")
	fmt.Println("  F fog  R reprojection  B blur  H resolution  N noise")
	fmt.Println("  T day/night cycle  Space skip an hour  -/= exposure  1/2/3 colour/depth/motion")

	r := scene.NewRasterizer(c.Width, c.Height)
	shadow := scene.NewShadowMap(shadowSize)

	last := window.Time()
	lastTitle := last
	lastX, lastY := window.GetCursorPos()
	rightWasDown := false
	frames := 0
	var stats fog.FrameStats

	for !window.ShouldClose() {
		window.PollEvents()

		now := window.Time()
		dt := float32(min(now-last, maxFrameDt))
		last = now

		x, y := window.GetCursorPos()
		if window.IsMouseButtonPressed(opengl.MouseButtonLeft) {
			v.orbit.Orbit(float32(lastX-x)*dragSpeed, float32(y-lastY)*dragSpeed)
		}
		lastX, lastY = x, y
		rightDown := window.IsMouseButtonPressed(opengl.MouseButtonRight)
		if rightDown && !rightWasDown {
			v.focus(x, y)
		}
		rightWasDown = rightDown
		v.orbitKeys(dt)

		v.dayNight.Update(dt)
		v.dayNight.Apply(s, &v.cfg, v.baseDensity)
		s.Update(dt)

		frame := s.Frame(r, shadow)
		stats = v.pipeline.Render(frame, &v.cfg)
		s.EndFrame()

		switch presenter.View {
		case opengl.ViewDepth:
			presenter.Upload(r.Depth)
		case opengl.ViewMotion:
			presenter.Upload(r.Motion)
		default:
			presenter.Upload(frame.Color)
		}
		presenter.Draw(window.GetFramebufferSize())
		window.SwapBuffers()

		frames++
		if now-lastTitle >= titlePeriod {
			fps := float64(frames) / (now - lastTitle)
			frames, lastTitle = 0, now
			window.SetTitle(fmt.Sprintf("fogview | FPS: %.1f | %s | %s | fog %.1fms",
				fps, v.dayNight.TimeOfDayStr(), presenter.View, float64(stats.Elapsed.Microseconds())/1000))
		}
	}

	var hud output.Overlay
	app.FrameSummary(&hud, stats, &v.cfg)
	fmt.Print(hud.Text())
	return nil
}

// orbitFrom places an orbit camera where cam is, looking at its target.
func orbitFrom(cam *scene.Camera) *scene.OrbitCamera {
	offset := cam.Position.Sub(cam.Target)
	distance := max(offset.Length(), 0.1)
	o := scene.NewOrbitCamera(cam.Target, distance, cam.FOV, cam.AspectRatio)
	o.NearPlane, o.FarPlane = cam.NearPlane, cam.FarPlane
	o.Yaw = float32(stdmath.Atan2(float64(offset.X), float64(offset.Z)))
	o.Pitch = float32(stdmath.Asin(float64(math.Clamp(offset.Y/distance, -1, 1))))
	o.UpdatePosition()
	return o
}

// focus moves the orbit target to the surface under the cursor.
func (v *viewer) focus(x, y float64) {
	if v.window.Width <= 0 || v.window.Height <= 0 {
		return
	}
	uv := math.NewVec2(float32(x)/float32(v.window.Width), float32(y)/float32(v.window.Height))
	hit, ok := v.scene.Raycast(v.orbit.RayAt(uv))
	if !ok {
		return
	}
	v.orbit.Target = hit.Point
	v.orbit.Distance = max(v.orbit.Position.Distance(hit.Point), 0.5)
	v.orbit.UpdatePosition()
	fmt.Printf("Focus: %s at (%.2f, %.2f, %.2f)\n", hit.Node.Name, hit.Point.X, hit.Point.Y, hit.Point.Z)
}

func (v *viewer) orbitKeys(dt float32) {
	w := v.window
	var yaw, pitch float32
	if w.IsKeyPressed(opengl.KeyLeft) {
		yaw -= orbitSpeed * dt
	}
	if w.IsKeyPressed(opengl.KeyRight) {
		yaw += orbitSpeed * dt
	}
	if w.IsKeyPressed(opengl.KeyUp) {
		pitch += orbitSpeed * dt
	}
	if w.IsKeyPressed(opengl.KeyDown) {
		pitch -= orbitSpeed * dt
	}
	if yaw != 0 || pitch != 0 {
		v.orbit.Orbit(yaw, pitch)
	}
	if w.IsKeyPressed(opengl.KeyPageUp) {
		v.orbit.Zoom(-zoomStep * 10 * dt)
	}
	if w.IsKeyPressed(opengl.KeyPageDown) {
		v.orbit.Zoom(zoomStep * 10 * dt)
	}
}

func (v *viewer) handleKey(key int) {
	cfg := &v.cfg
	switch key {
	case opengl.KeyEscape:
		v.window.Handle.SetShouldClose(true)
	case opengl.KeyF:
		cfg.Enabled = !cfg.Enabled
		fmt.Printf("Fog: %v\n", cfg.Enabled)
	case opengl.KeyR:
		cfg.Reprojection = !cfg.Reprojection
		v.pipeline.Setup(cfg)
		fmt.Printf("Reprojection: %v\n", cfg.Reprojection)
	case opengl.KeyB:
		cfg.BlurIterations = (cfg.BlurIterations + 1) % (fog.MaxBlurIterations + 1)
		fmt.Printf("Blur iterations: %d\n", cfg.BlurIterations)
	case opengl.KeyH:
		if cfg.Resolution == fog.ResolutionHalf {
			cfg.Resolution = fog.ResolutionQuarter
		} else {
			cfg.Resolution = fog.ResolutionHalf
		}
		fmt.Printf("Resolution: %v\n", cfg.Resolution)
	case opengl.KeyN:
		cfg.Noise.Mode = (cfg.Noise.Mode + 1) % (fog.NoiseWithDistortion + 1)
		v.flags.AttachNoise(cfg)
		fmt.Printf("Noise: %s\n", cfg.Noise.Mode)
	case opengl.KeyT:
		v.dayNight.Active = !v.dayNight.Active
		fmt.Printf("Day/night cycle: %v\n", v.dayNight.Active)
	case opengl.KeySpace:
		v.dayNight.Time += 1.0 / 24
		v.dayNight.Time -= math.Floor(v.dayNight.Time)
		fmt.Printf("Time of day: %s\n", v.dayNight.TimeOfDayStr())
	case opengl.KeyMinus:
		v.presenter.ToneMapping.Exposure = max(v.presenter.ToneMapping.Exposure/1.25, 0.05)
	case opengl.KeyEqual:
		v.presenter.ToneMapping.Exposure = min(v.presenter.ToneMapping.Exposure*1.25, 20)
	case opengl.Key1:
		v.presenter.View = opengl.ViewColor
	case opengl.Key2:
		v.presenter.View = opengl.ViewDepth
	case opengl.Key3:
		v.presenter.View = opengl.ViewMotion
	}
}
