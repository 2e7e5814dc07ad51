// Package app holds what the fog commands share: flags, scene loading and
// the animated day/night cycle.
package app

import (
	"flag"
	"log/slog"
)

// Config represents the command-line parameters of the fog commands.
type Config struct {
	Scene     string
	Fog       string
	Width     int
	Height    int
	Frames    int
	Out       string
	EXR       string
	Exposure  float64
	HUD       bool
	NoiseSize int
	Seed      uint64
	Verbose   bool
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Width:     640,
		Height:    360,
		Frames:    8,
		Out:       "fog.png",
		Exposure:  1,
		HUD:       true,
		NoiseSize: 32,
		Seed:      1,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Scene, "scene", c.Scene, "scene description JSON (empty for the built-in demo)")
	fs.StringVar(&c.Fog, "fog", c.Fog, "fog configuration JSON, replaces the scene's fog block")
	fs.IntVar(&c.Width, "width", c.Width, "frame width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "frame height in pixels")
	fs.IntVar(&c.Frames, "frames", c.Frames, "frames to render before writing output")
	fs.StringVar(&c.Out, "out", c.Out, "PNG output path (empty to skip)")
	fs.StringVar(&c.EXR, "exr", c.EXR, "EXR output path for the linear frame (empty to skip)")
	fs.Float64Var(&c.Exposure, "exposure", c.Exposure, "tone mapping exposure")
	fs.BoolVar(&c.HUD, "hud", c.HUD, "draw frame statistics on the PNG")
	fs.IntVar(&c.NoiseSize, "noise-size", c.NoiseSize, "voxels per axis of the baked noise volumes")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "noise seed")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "log pipeline activity")
}

// LogLevel is the slog level the flags ask for.
func (c *Config) LogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
