package app

import (
	"fmt"

	"volumetric-fog/fog"
	"volumetric-fog/internal/noise"
	"volumetric-fog/scene"
)

// Load builds the scene named by the flags and its fog configuration, with
// noise volumes baked when the configuration asks for noise.
func (c *Config) Load() (*scene.Scene, fog.Configuration, error) {
	desc := scene.DemoDescription()
	if c.Scene != "" {
		d, err := scene.LoadDescription(c.Scene)
		if err != nil {
			return nil, fog.Configuration{}, err
		}
		desc = d
	}

	s, err := desc.Build()
	if err != nil {
		return nil, fog.Configuration{}, fmt.Errorf("build scene: %w", err)
	}

	var cfg fog.Configuration
	if c.Fog != "" {
		cfg, err = fog.LoadConfiguration(c.Fog)
	} else {
		cfg, err = desc.Configuration()
	}
	if err != nil {
		return nil, fog.Configuration{}, err
	}

	c.AttachNoise(&cfg)
	return s, cfg, nil
}

// AttachNoise bakes the noise volumes cfg needs but does not have.
func (c *Config) AttachNoise(cfg *fog.Configuration) {
	if cfg.Noise.Mode == fog.NoiseOff {
		return
	}
	settings := noise.DefaultSettings()
	settings.Size = c.NoiseSize
	settings.Seed = c.Seed

	if cfg.Noise.Texture == nil {
		cfg.Noise.Texture = noise.Bake(settings)
		fog.Logger().Info("app: baked noise volume", "size", settings.Size, "seed", settings.Seed)
	}
	if cfg.Noise.Mode == fog.NoiseWithDistortion && cfg.Noise.DistortionTexture == nil {
		cfg.Noise.DistortionTexture = noise.BakeDistortion(settings)
	}
}
