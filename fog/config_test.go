package fog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigurationIsActive(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
		want   bool
	}{
		{"default", func(*Configuration) {}, true},
		{"disabled", func(c *Configuration) { c.Enabled = false }, false},
		{"negative distance", func(c *Configuration) { c.Distance = -1 }, false},
		{"zero density", func(c *Configuration) { c.Density = 0 }, false},
		{"ground below top", func(c *Configuration) { c.Ground = GroundSettings{Enabled: true, Height: 10} }, true},
		{"ground at top", func(c *Configuration) { c.Ground = GroundSettings{Enabled: true, Height: 50} }, false},
		{"ground ignored when off", func(c *Configuration) { c.Ground = GroundSettings{Height: 80} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration()
			tt.mutate(&cfg)
			if got := cfg.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigurationSanitize(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Distance = 4000
	cfg.BaseHeight, cfg.MaximumHeight = 10, 5
	cfg.Density = 3
	cfg.AttenuationDistance = 0
	cfg.AnisotropyRange = [2]float32{-0.5, 0.5}
	cfg.MainLight.Anisotropy = 0.9
	cfg.MainLight.Scattering = 4
	cfg.APV.Weight = -1
	cfg.Noise.MinMax = [2]float32{0.8, 0.2}
	cfg.Noise.Mode = 9
	cfg.Resolution = 1
	cfg.MaxSteps = 1000
	cfg.BlurIterations = 12
	cfg.RenderPassEvent = 7
	cfg.Sanitize()

	checks := []struct {
		name      string
		got, want any
	}{
		{"distance", cfg.Distance, float32(MaxDistance)},
		{"maximum height", cfg.MaximumHeight, float32(10)},
		{"density", cfg.Density, float32(1)},
		{"attenuation", cfg.AttenuationDistance, float32(MinAttenuationDistance)},
		{"anisotropy", cfg.MainLight.Anisotropy, float32(0.5)},
		{"scattering", cfg.MainLight.Scattering, float32(MaxMainLightScattering)},
		{"apv weight", cfg.APV.Weight, float32(0)},
		{"noise window", cfg.Noise.MinMax, [2]float32{0.2, 0.8}},
		{"noise mode", cfg.Noise.Mode, NoiseOff},
		{"resolution", cfg.Resolution, ResolutionHalf},
		{"max steps", cfg.MaxSteps, MaxMaxSteps},
		{"blur", cfg.BlurIterations, MaxBlurIterations},
		{"event", cfg.RenderPassEvent, BeforeRenderingPostProcessing},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestSanitizeKeepsInactiveDistance(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Distance = 0
	cfg.Sanitize()
	if cfg.IsActive() {
		t.Error("sanitising must not revive a zero distance volume")
	}
}

func TestSanitizeRejectsInvertedAnisotropyRange(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.AnisotropyRange = [2]float32{0.5, -0.5}
	cfg.MainLight.Anisotropy = -0.9
	cfg.Sanitize()
	if cfg.AnisotropyRange != [2]float32{-1, 1} || cfg.MainLight.Anisotropy != -0.9 {
		t.Errorf("range %v anisotropy %v", cfg.AnisotropyRange, cfg.MainLight.Anisotropy)
	}
}

func TestConfigurationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fog.json")
	cfg := DefaultConfiguration()
	cfg.Density = 0.6
	cfg.Noise.Mode = NoiseWithDistortion
	cfg.Resolution = ResolutionQuarter
	cfg.RenderPassEvent = AfterRenderingSkybox
	cfg.Reprojection = true

	if err := SaveConfiguration(cfg, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"noise+distortion"`, `"afterSkybox"`, `"maxSteps": 64`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved configuration lacks %s", want)
		}
	}

	got, err := LoadConfiguration(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Density != 0.6 || got.Noise.Mode != NoiseWithDistortion || got.Resolution != ResolutionQuarter ||
		got.RenderPassEvent != AfterRenderingSkybox || !got.Reprojection {
		t.Errorf("loaded configuration differs: %+v", got)
	}
}

func TestLoadConfigurationKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"density": 0.5, "blurIterations": 40}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Density != 0.5 || cfg.Distance != 128 || cfg.BlurIterations != MaxBlurIterations {
		t.Errorf("density %v distance %v blur %v", cfg.Density, cfg.Distance, cfg.BlurIterations)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfiguration(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"noise": {"mode": "swirl"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfiguration(bad); err == nil {
		t.Error("expected an error for an unknown noise mode")
	}
}

func TestNoiseModeText(t *testing.T) {
	for _, m := range []NoiseMode{NoiseOff, NoiseOnly, NoiseWithDistortion} {
		data, err := json.Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		var back NoiseMode
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("%s: %v", data, err)
		}
		if back != m {
			t.Errorf("%v came back as %v", m, back)
		}
	}
}
