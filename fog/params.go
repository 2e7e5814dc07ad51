package fog

import (
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// features are the runtime switches of the integrator.
type features uint16

const (
	featureMainLight features = 1 << iota
	featureAdditionalLights
	featureAPV
	featureReflections
	featureNoise
	featureDistortion
	featureModifier
	featureGround
	featureMainShadow
)

func (f features) has(flag features) bool { return f&flag != 0 }

var featureNames = []struct {
	flag features
	name string
}{
	{featureMainLight, "mainLight"},
	{featureAdditionalLights, "additionalLights"},
	{featureAPV, "apv"},
	{featureReflections, "reflectionProbes"},
	{featureNoise, "noise"},
	{featureDistortion, "distortion"},
	{featureModifier, "modifier"},
	{featureGround, "ground"},
	{featureMainShadow, "mainShadow"},
}

// Names lists the enabled features.
func (f features) Names() []string {
	var names []string
	for _, fn := range featureNames {
		if f.has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// frameParams is the integrator input for one frame, resolved from the
// configuration and the frame context.
type frameParams struct {
	features features

	distance      float32
	baseHeight    float32
	maximumHeight float32
	groundHeight  float32
	density       float32
	absorption    float32
	tint          math.Vec3
	ambience      math.Vec3

	maxSteps        int
	minimumStepSize float32
	frameIndex      int
	time            float32

	camera CameraData

	mainLightDir      math.Vec3
	mainLightRadiance math.Vec3
	mainShadow        ShadowSampler

	// additional holds the packed non-main lights. anisotropies and
	// scatterings are sized to the visible light count; slots
	// [0, len(additional)) belong to additional lights and the last slot
	// to the main light.
	additional        []Light
	anisotropies      []float32
	scatterings       []float32
	radiiSq           []float32
	additionalShadows AdditionalShadowSampler

	apvWeight        float32
	ambient          AmbientProbe
	reflectionWeight float32
	reflections      ReflectionProbe

	noise               *gpu.Texture3D
	noiseFrequency      float32
	noiseMinMax         [2]float32
	noiseVelocity       math.Vec3
	distortion          *gpu.Texture3D
	distortionFrequency float32
	distortionIntensity math.Vec3
	distortionVelocity  math.Vec3

	modifier modifierParams
}

// buildParams resolves the per-frame integrator parameters. Features whose
// inputs are missing are disabled for the frame.
func buildParams(cfg *Configuration, frame *FrameContext) frameParams {
	log := Logger()
	p := frameParams{
		distance:        cfg.Distance,
		baseHeight:      cfg.BaseHeight,
		maximumHeight:   cfg.MaximumHeight,
		groundHeight:    cfg.Ground.Height,
		density:         cfg.Density,
		absorption:      cfg.Absorption(),
		tint:            cfg.Tint.RGB(),
		ambience:        cfg.AmbienceColor.RGB(),
		maxSteps:        cfg.MaxSteps,
		minimumStepSize: cfg.MinimumStepSize,
		frameIndex:      frame.FrameCount % 64,
		time:            frame.Time,
		camera:          frame.Camera,
	}
	if p.frameIndex < 0 {
		p.frameIndex += 64
	}
	if cfg.Ground.Enabled {
		p.features |= featureGround
	}

	lights := &frame.Lights
	visible := len(lights.Visible)
	mainLight, hasMain := lights.MainLight()
	additionalCount := lights.AdditionalLightsCount()

	enableMain := cfg.MainLight.Enabled && cfg.MainLight.Scattering > 0 && hasMain
	enableAdditional := cfg.AdditionalLights.Enabled && additionalCount > 0
	if enableMain || enableAdditional {
		p.anisotropies = make([]float32, visible)
		p.scatterings = make([]float32, visible)
	}

	if enableMain {
		p.features |= featureMainLight
		p.mainLightDir = mainLight.Direction.Normalize()
		p.mainLightRadiance = mainLight.Radiance().MulVec(cfg.MainLight.ColorTint.RGB())
		p.anisotropies[visible-1] = clampAnisotropy(cfg, cfg.MainLight.Anisotropy)
		p.scatterings[visible-1] = cfg.MainLight.Scattering
		if frame.MainShadow != nil {
			p.features |= featureMainShadow
			p.mainShadow = frame.MainShadow
		}
	} else if cfg.MainLight.Enabled && !hasMain {
		log.Debug("fog: main light contribution disabled, no valid main light",
			"mainLightIndex", lights.MainLightIndex)
	}

	if enableAdditional {
		p.features |= featureAdditionalLights
		p.additional = make([]Light, 0, additionalCount)
		p.radiiSq = make([]float32, additionalCount)
		p.additionalShadows = frame.AdditionalShadows
		for i, l := range lights.Visible {
			if len(p.additional) == additionalCount {
				break
			}
			if i == lights.MainLightIndex {
				continue
			}
			slot := len(p.additional)
			p.additional = append(p.additional, l)
			o, ok := lights.Overrides[l.ID]
			if !ok {
				continue
			}
			o = o.Sanitized()
			p.anisotropies[slot] = clampAnisotropy(cfg, o.Anisotropy)
			p.scatterings[slot] = o.Scattering
			p.radiiSq[slot] = o.Radius * o.Radius
		}
	}

	if cfg.APV.Enabled && cfg.APV.Weight > 0 {
		if frame.Ambient != nil {
			p.features |= featureAPV
			p.apvWeight = cfg.APV.Weight
			p.ambient = frame.Ambient
		} else {
			log.Debug("fog: apv contribution disabled, no ambient probe")
		}
	}
	if cfg.ReflectionProbes.Enabled && cfg.ReflectionProbes.Weight > 0 {
		if frame.Reflections != nil {
			p.features |= featureReflections
			p.reflectionWeight = cfg.ReflectionProbes.Weight
			p.reflections = frame.Reflections
		} else {
			log.Debug("fog: reflection probe contribution disabled, no reflection probe")
		}
	}

	n := &cfg.Noise
	if n.Mode != NoiseOff {
		if n.Texture.Valid() && n.Scale > 0 {
			p.features |= featureNoise
			p.noise = n.Texture
			p.noiseFrequency = 1 / n.Scale
			p.noiseMinMax = n.MinMax
			p.noiseVelocity = n.Velocity
		} else {
			log.Debug("fog: noise disabled, texture missing or empty, or scale not positive", "scale", n.Scale)
		}
	}
	if n.Mode == NoiseWithDistortion && p.features.has(featureNoise) {
		if n.DistortionTexture.Valid() && n.DistortionScale > 0 {
			p.features |= featureDistortion
			p.distortion = n.DistortionTexture
			p.distortionFrequency = 1 / n.DistortionScale
			p.distortionIntensity = n.DistortionIntensity
			p.distortionVelocity = n.DistortionVelocity
		} else {
			log.Debug("fog: distortion disabled, texture missing or empty, or scale not positive", "scale", n.DistortionScale)
		}
	}

	p.modifier = packModifier(frame.Modifier)
	if p.modifier.enabled {
		p.features |= featureModifier
	}
	return p
}

func clampAnisotropy(cfg *Configuration, g float32) float32 {
	return math.Clamp(g, cfg.AnisotropyRange[0], cfg.AnisotropyRange[1])
}
