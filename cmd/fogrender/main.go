// Command fogrender renders a fog scene offscreen and writes the final
// frame as a tone mapped PNG and, optionally, a linear EXR.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"volumetric-fog/fog"
	"volumetric-fog/internal/app"
	"volumetric-fog/internal/output"
	"volumetric-fog/scene"
)

const (
	frameTime  = float32(1.0 / 30)
	shadowSize = 1024
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fogrender: %v\n", err)
		os.Exit(1)
	}
}

func run(c *app.Config) error {
	if c.Frames < 1 {
		return errors.New("at least one frame is required")
	}
	fog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel()})))

	s, cfg, err := c.Load()
	if err != nil {
		return err
	}

	r := scene.NewRasterizer(c.Width, c.Height)
	shadow := scene.NewShadowMap(shadowSize)
	pipeline := fog.NewPipeline()
	defer pipeline.Dispose()

	event := pipeline.Setup(&cfg)
	fmt.Printf("Rendering %d frames at %dx%d, fog scheduled %s\n", c.Frames, c.Width, c.Height, event)

	var (
		frame *fog.FrameContext
		stats fog.FrameStats
	)
	for i := 0; i < c.Frames; i++ {
		s.Update(frameTime)
		frame = s.Frame(r, shadow)
		stats = pipeline.Render(frame, &cfg)
		s.EndFrame()
	}

	var hud output.Overlay
	app.FrameSummary(&hud, stats, &cfg)
	fmt.Print(hud.Text())

	if c.EXR != "" {
		if err := output.WriteEXR(c.EXR, frame.Color); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", c.EXR)
	}
	if c.Out != "" {
		tm := output.DefaultToneMapping()
		tm.Exposure = float32(c.Exposure)
		img := output.Tonemap(frame.Color, tm)
		if c.HUD {
			hud.Draw(img)
		}
		if err := output.WritePNG(c.Out, img); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", c.Out)
	}
	return nil
}
