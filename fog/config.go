package fog

import (
	"encoding/json"
	"fmt"
	"os"

	"volumetric-fog/core"
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// Resolution is the downsample factor of the low resolution passes.
type Resolution float32

const (
	ResolutionQuarter Resolution = 0.25
	ResolutionHalf    Resolution = 0.5
)

// NoiseMode selects how 3D noise modulates the fog density.
type NoiseMode int

const (
	NoiseOff NoiseMode = iota
	NoiseOnly
	NoiseWithDistortion
)

var noiseModeNames = [...]string{"off", "noise", "noise+distortion"}

func (m NoiseMode) String() string {
	if m < 0 || int(m) >= len(noiseModeNames) {
		return fmt.Sprintf("NoiseMode(%d)", int(m))
	}
	return noiseModeNames[m]
}

func (m NoiseMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *NoiseMode) UnmarshalText(text []byte) error {
	for i, name := range noiseModeNames {
		if string(text) == name {
			*m = NoiseMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown noise mode %q", text)
}

// RenderPassEvent tags where the host schedules the fog. The pipeline only
// reports it back from Setup.
type RenderPassEvent int

const (
	AfterRenderingSkybox          RenderPassEvent = 400
	BeforeRenderingTransparents   RenderPassEvent = 450
	AfterRenderingTransparents    RenderPassEvent = 500
	BeforeRenderingPostProcessing RenderPassEvent = 550
)

var renderPassEventNames = map[RenderPassEvent]string{
	AfterRenderingSkybox:          "afterSkybox",
	BeforeRenderingTransparents:   "beforeTransparents",
	AfterRenderingTransparents:    "afterTransparents",
	BeforeRenderingPostProcessing: "beforePostProcessing",
}

func (e RenderPassEvent) String() string {
	if name, ok := renderPassEventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("RenderPassEvent(%d)", int(e))
}

func (e RenderPassEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *RenderPassEvent) UnmarshalText(text []byte) error {
	for ev, name := range renderPassEventNames {
		if string(text) == name {
			*e = ev
			return nil
		}
	}
	return fmt.Errorf("unknown render pass event %q", text)
}

type GroundSettings struct {
	Enabled bool    `json:"enabled"`
	Height  float32 `json:"height"`
}

type MainLightSettings struct {
	Enabled    bool       `json:"enabled"`
	Anisotropy float32    `json:"anisotropy"`
	Scattering float32    `json:"scattering"`
	ColorTint  core.Color `json:"colorTint"`
}

type AdditionalLightsSettings struct {
	Enabled bool `json:"enabled"`
}

// ContributionSettings gates a probe based in-scatter term.
type ContributionSettings struct {
	Enabled bool    `json:"enabled"`
	Weight  float32 `json:"weight"`
}

// NoiseSettings configures density modulation by 3D textures. Textures are
// supplied at runtime and never serialised.
type NoiseSettings struct {
	Mode                NoiseMode      `json:"mode"`
	Texture             *gpu.Texture3D `json:"-"`
	Scale               float32        `json:"scale"`
	MinMax              [2]float32     `json:"minMax"`
	Velocity            math.Vec3      `json:"velocity"`
	DistortionTexture   *gpu.Texture3D `json:"-"`
	DistortionScale     float32        `json:"distortionScale"`
	DistortionIntensity math.Vec3      `json:"distortionIntensity"`
	DistortionVelocity  math.Vec3      `json:"distortionVelocity"`
}

// Configuration is the caller owned fog volume, read fresh every frame.
type Configuration struct {
	Enabled             bool           `json:"enabled"`
	Distance            float32        `json:"distance"`
	BaseHeight          float32        `json:"baseHeight"`
	MaximumHeight       float32        `json:"maximumHeight"`
	Ground              GroundSettings `json:"ground"`
	Density             float32        `json:"density"`
	AttenuationDistance float32        `json:"attenuationDistance"`
	Tint                core.Color     `json:"tint"`
	AmbienceColor       core.Color     `json:"ambienceColor"`

	MainLight        MainLightSettings        `json:"mainLight"`
	AdditionalLights AdditionalLightsSettings `json:"additionalLights"`
	APV              ContributionSettings     `json:"apv"`
	ReflectionProbes ContributionSettings     `json:"reflectionProbes"`
	Noise            NoiseSettings            `json:"noise"`

	Resolution      Resolution      `json:"resolution"`
	MaxSteps        int             `json:"maxSteps"`
	MinimumStepSize float32         `json:"minimumStepSize"`
	BlurIterations  int             `json:"blurIterations"`
	Reprojection    bool            `json:"reprojection"`
	RenderPassEvent RenderPassEvent `json:"renderPassEvent"`

	// AnisotropyRange bounds every anisotropy value before it reaches the
	// phase function.
	AnisotropyRange [2]float32 `json:"anisotropyRange"`
}

// Limits applied by Sanitize.
const (
	MaxDistance            = 512
	MinAttenuationDistance = 0.05
	MinMaxSteps            = 8
	MaxMaxSteps            = 128
	MaxBlurIterations      = 6
	MaxMainLightScattering = 1
)

// DefaultConfiguration returns an enabled fog volume with the stock values.
func DefaultConfiguration() Configuration {
	return Configuration{
		Enabled:             true,
		Distance:            128,
		BaseHeight:          0,
		MaximumHeight:       50,
		Density:             0.2,
		AttenuationDistance: 128,
		Tint:                core.ColorWhite,
		AmbienceColor:       core.Color{A: 1},
		MainLight: MainLightSettings{
			Enabled:    true,
			Anisotropy: 0.4,
			Scattering: 0.15,
			ColorTint:  core.ColorWhite,
		},
		AdditionalLights: AdditionalLightsSettings{Enabled: true},
		APV:              ContributionSettings{Weight: 1},
		ReflectionProbes: ContributionSettings{Weight: 1},
		Noise: NoiseSettings{
			Scale:           50,
			MinMax:          [2]float32{0, 1},
			DistortionScale: 50,
		},
		Resolution:      ResolutionHalf,
		MaxSteps:        64,
		MinimumStepSize: 0.25,
		BlurIterations:  2,
		RenderPassEvent: BeforeRenderingPostProcessing,
		AnisotropyRange: [2]float32{-1, 1},
	}
}

// LoadConfiguration reads a JSON configuration. Missing fields keep their
// default values and the result is sanitised.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read fog configuration %q: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse fog configuration %q: %w", path, err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// SaveConfiguration writes cfg as indented JSON.
func SaveConfiguration(cfg Configuration, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fog configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fog configuration %q: %w", path, err)
	}
	return nil
}

// Sanitize clamps every field into its editable range, the way an inspector
// would before the value reaches the pipeline.
func (c *Configuration) Sanitize() {
	c.Distance = min(c.Distance, MaxDistance)
	if c.MaximumHeight < c.BaseHeight {
		c.MaximumHeight = c.BaseHeight
	}
	c.Density = math.Saturate(c.Density)
	c.AttenuationDistance = max(c.AttenuationDistance, MinAttenuationDistance)

	lo, hi := c.AnisotropyRange[0], c.AnisotropyRange[1]
	if lo >= hi || lo < -1 || hi > 1 {
		lo, hi = -1, 1
	}
	c.AnisotropyRange = [2]float32{lo, hi}
	c.MainLight.Anisotropy = math.Clamp(c.MainLight.Anisotropy, lo, hi)
	c.MainLight.Scattering = math.Clamp(c.MainLight.Scattering, 0, MaxMainLightScattering)

	c.APV.Weight = math.Saturate(c.APV.Weight)
	c.ReflectionProbes.Weight = math.Saturate(c.ReflectionProbes.Weight)

	if c.Noise.Mode < NoiseOff || c.Noise.Mode > NoiseWithDistortion {
		c.Noise.Mode = NoiseOff
	}
	if c.Noise.MinMax[1] < c.Noise.MinMax[0] {
		c.Noise.MinMax[0], c.Noise.MinMax[1] = c.Noise.MinMax[1], c.Noise.MinMax[0]
	}

	c.Resolution = Resolution(math.Clamp(float32(c.Resolution), float32(ResolutionQuarter), float32(ResolutionHalf)))
	c.MaxSteps = min(max(c.MaxSteps, MinMaxSteps), MaxMaxSteps)
	c.MinimumStepSize = max(c.MinimumStepSize, 0)
	c.BlurIterations = min(max(c.BlurIterations, 0), MaxBlurIterations)

	if _, ok := renderPassEventNames[c.RenderPassEvent]; !ok {
		c.RenderPassEvent = BeforeRenderingPostProcessing
	}
}

// IsActive reports whether the volume produces any fog at all.
func (c *Configuration) IsActive() bool {
	if !c.Enabled || c.Distance <= 0 || c.Density <= 0 {
		return false
	}
	if c.Ground.Enabled && c.Ground.Height >= c.MaximumHeight {
		return false
	}
	return true
}

// Absorption is the extinction coefficient per unit of density.
func (c *Configuration) Absorption() float32 {
	return 1 / max(c.AttenuationDistance, MinAttenuationDistance)
}
