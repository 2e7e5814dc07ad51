package fog

import (
	stdmath "math"
	"testing"

	"volumetric-fog/core"
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

func TestHeightFactor(t *testing.T) {
	tests := []struct {
		name         string
		y            float32
		base, max    float32
		ground       bool
		groundHeight float32
		want         float32
	}{
		{"at base", 0, 0, 10, false, 0, 1},
		{"below base", -3, 0, 10, false, 0, 1},
		{"half way", 5, 0, 10, false, 0, 0.5},
		{"above maximum", 15, 0, 10, false, 0, 0},
		{"under ground", 1, 0, 10, true, 2, 0},
		{"under ground below base", -5, 0, 10, true, -4, 0},
		{"above ground", 2.5, 0, 10, true, 2, 0.75},
		{"degenerate band below", 3, 3, 3, false, 0, 1},
		{"degenerate band above", 3.5, 3, 3, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heightFactor(tt.y, tt.base, tt.max, tt.ground, tt.groundHeight)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDensityHalvesAtMidHeight(t *testing.T) {
	p := frameParams{density: 0.8, baseHeight: 0, maximumHeight: 10}
	atBase := p.densityAt(math.NewVec3(3, 0, -7))
	atMid := p.densityAt(math.NewVec3(3, 5, -7))
	if atMid != atBase*0.5 {
		t.Errorf("density at height 5 = %v, want half of %v", atMid, atBase)
	}
	if d := p.densityAt(math.NewVec3(0, 15, 0)); d != 0 {
		t.Errorf("density above maximum = %v, want 0", d)
	}
}

func TestGroundClampOverridesProfile(t *testing.T) {
	p := frameParams{
		features:      featureGround,
		density:       1,
		baseHeight:    0,
		maximumHeight: 100,
		groundHeight:  4,
	}
	for _, y := range []float32{3.99, 0, -20} {
		if d := p.densityAt(math.NewVec3(0, y, 0)); d != 0 {
			t.Errorf("density at %v below ground = %v, want 0", y, d)
		}
	}
	if d := p.densityAt(math.NewVec3(0, 4, 0)); d <= 0 {
		t.Error("density at ground height should be positive")
	}
}

func TestZeroDensityTransmitsEverything(t *testing.T) {
	frame := flatFrame(t, 16, 8, 20, core.ColorWhite)
	cfg := endToEndConfiguration()
	cfg.Density = 0
	cfg.AmbienceColor = core.Color{R: 1, G: 1, B: 1, A: 1}
	p := buildParams(&cfg, frame)

	out := gpu.NewTexture("fog", gpu.Descriptor{Width: 16, Height: 8, Format: gpu.FormatRGBA16F})
	integrateFog(&p, frame.Depth, out)
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			if got := out.Load(x, y); got != (math.Vec4{W: 1}) {
				t.Fatalf("texel (%d,%d) = %v, want transmittance 1 and no radiance", x, y, got)
			}
		}
	}
}

func TestIntegrateRayAccumulates(t *testing.T) {
	frame := flatFrame(t, 16, 8, 20, core.ColorWhite)
	cfg := endToEndConfiguration()
	p := buildParams(&cfg, frame)

	_, device := p.camera.ProjectUV(testEye.Add(math.NewVec3(0, 0, -20)))
	got := p.integrateRay(math.NewVec2(0.5, 0.5), device, 0.5)
	if got.W >= 1 || got.W <= 0 {
		t.Errorf("transmittance %v should be attenuated", got.W)
	}
	if got.X <= 0 || got.X != got.Y || got.Y != got.Z {
		t.Errorf("white light should give grey positive radiance, got %v", got)
	}

	// Optical depth through a uniform slab is density*absorption*length.
	h := heightFactor(testEye.Y, cfg.BaseHeight, cfg.MaximumHeight, false, 0)
	want := math.Exp(-cfg.Density * h * cfg.Absorption() * (20 - testNear))
	if !approx(got.W, want, 2e-3) {
		t.Errorf("transmittance %v, want about %v", got.W, want)
	}
}

func TestIntegrateRespectsDistance(t *testing.T) {
	frame := flatFrame(t, 16, 8, 150, core.ColorWhite)
	cfg := endToEndConfiguration()
	cfg.MaximumHeight = 1000
	p := buildParams(&cfg, frame)
	_, device := p.camera.ProjectUV(testEye.Add(math.NewVec3(0, 0, -150)))

	got := p.integrateRay(math.NewVec2(0.5, 0.5), device, 0)
	want := math.Exp(-cfg.Density * heightFactor(testEye.Y, 0, 1000, false, 0) * cfg.Absorption() * (cfg.Distance - testNear))
	if !approx(got.W, want, 2e-3) {
		t.Errorf("march should stop at the fog distance: transmittance %v, want %v", got.W, want)
	}
}

func TestHenyeyGreenstein(t *testing.T) {
	iso := henyeyGreenstein(0, 0.3)
	if !approx(iso, 1/(4*stdmath.Pi), 1e-6) {
		t.Errorf("isotropic phase = %v", iso)
	}
	if henyeyGreenstein(0.6, 1) <= henyeyGreenstein(0.6, -1) {
		t.Error("positive anisotropy should favour forward scattering")
	}
	if henyeyGreenstein(-0.6, -1) <= henyeyGreenstein(-0.6, 1) {
		t.Error("negative anisotropy should favour back scattering")
	}
	if v := henyeyGreenstein(1, 1); stdmath.IsNaN(float64(v)) || stdmath.IsInf(float64(v), 0) {
		t.Errorf("extreme anisotropy must stay finite, got %v", v)
	}

	// The phase function integrates to one over the sphere.
	for _, g := range []float32{-0.5, 0, 0.4, 0.8} {
		const n = 4000
		var sum float64
		for i := 0; i < n; i++ {
			theta := (float64(i) + 0.5) * stdmath.Pi / n
			sum += float64(henyeyGreenstein(g, float32(stdmath.Cos(theta)))) * 2 * stdmath.Pi * stdmath.Sin(theta) * stdmath.Pi / n
		}
		if stdmath.Abs(sum-1) > 1e-2 {
			t.Errorf("g=%v integrates to %v", g, sum)
		}
	}
}

func TestBuildParamsMainLightSkipped(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	cfg := endToEndConfiguration()

	frame.Lights.MainLightIndex = -1
	p := buildParams(&cfg, frame)
	if p.features.has(featureMainLight) {
		t.Error("invalid main light index should disable the main light")
	}
	if p.scatterings != nil || p.anisotropies != nil {
		t.Error("no parameter slots should be written without any light term")
	}

	frame.Lights.MainLightIndex = 0
	cfg.MainLight.Scattering = 0
	p = buildParams(&cfg, frame)
	if p.features.has(featureMainLight) || p.scatterings != nil {
		t.Error("zero scattering should skip the main light and its slots")
	}
}

func TestBuildParamsPacksLights(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	frame.Lights.Visible = []Light{
		{ID: 10, Type: LightTypePoint, Position: math.NewVec3(0, 2, -5), Color: core.ColorRed, Intensity: 4, ShadowIndex: -1},
		frame.Lights.Visible[0],
		{ID: 11, Type: LightTypePoint, Position: math.NewVec3(1, 2, -5), Color: core.ColorBlue, Intensity: 4, ShadowIndex: -1},
	}
	frame.Lights.MainLightIndex = 1
	frame.Lights.Overrides = map[LightID]LightOverride{
		11: {Anisotropy: 0.3, Scattering: 2, Radius: 0.5},
	}
	cfg := endToEndConfiguration()
	cfg.AdditionalLights.Enabled = true

	p := buildParams(&cfg, frame)
	if !p.features.has(featureAdditionalLights) || len(p.additional) != 2 {
		t.Fatalf("expected two additional lights, got %d", len(p.additional))
	}
	if p.additional[0].ID != 10 || p.additional[1].ID != 11 {
		t.Errorf("additional lights should skip the main light in order, got %v, %v", p.additional[0].ID, p.additional[1].ID)
	}
	if p.scatterings[0] != 0 {
		t.Error("light without override must not scatter")
	}
	if p.scatterings[1] != 2 || p.radiiSq[1] != 0.25 || p.anisotropies[1] != 0.3 {
		t.Errorf("override not applied: scattering %v radiusSq %v anisotropy %v", p.scatterings[1], p.radiiSq[1], p.anisotropies[1])
	}
	if p.scatterings[2] != cfg.MainLight.Scattering || p.anisotropies[2] != cfg.MainLight.Anisotropy {
		t.Error("main light parameters belong in the last slot")
	}
}

func TestMissingOverrideContributesNothing(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	frame.Lights.MainLightIndex = -1
	frame.Lights.Visible = []Light{{ID: 3, Type: LightTypePoint, Position: math.NewVec3(0, 2, -4), Color: core.ColorWhite, Intensity: 100, ShadowIndex: -1}}
	cfg := endToEndConfiguration()
	cfg.AdditionalLights.Enabled = true
	cfg.AmbienceColor = core.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}

	p := buildParams(&cfg, frame)
	got := p.inScattering(math.NewVec3(0, 2, -3), math.NewVec3(0, 0, -1))
	if got != cfg.AmbienceColor.RGB() {
		t.Errorf("expected only the ambience term, got %v", got)
	}

	frame.Lights.Overrides = map[LightID]LightOverride{3: DefaultLightOverride()}
	p = buildParams(&cfg, frame)
	lit := p.inScattering(math.NewVec3(0, 2, -3), math.NewVec3(0, 0, -1))
	if lit.X <= got.X {
		t.Error("light with an override should add in-scattering")
	}
}

func TestAdditionalAttenuation(t *testing.T) {
	l := Light{Type: LightTypePoint, Position: math.Vec3Zero, Range: 10}
	near, _ := l.Attenuation(math.NewVec3(0.1, 0, 0), 0.25)
	edge, _ := l.Attenuation(math.NewVec3(0.2, 0, 0), 0.25)
	if !approx(near, edge, 1e-2) {
		t.Errorf("inside the soft core attenuation should be flat: %v vs %v", near, edge)
	}
	far, _ := l.Attenuation(math.NewVec3(3, 0, 0), 0.25)
	if far >= edge {
		t.Error("attenuation should fall off with distance")
	}
	if out, _ := l.Attenuation(math.NewVec3(11, 0, 0), 0); out != 0 {
		t.Errorf("beyond range attenuation = %v, want 0", out)
	}

	spot := Light{Type: LightTypeSpot, Position: math.Vec3Zero, Direction: math.NewVec3(0, -1, 0), SpotAngle: 30}
	inside, _ := spot.Attenuation(math.NewVec3(0, -2, 0), 0)
	outside, _ := spot.Attenuation(math.NewVec3(2, 0, 0), 0)
	if inside <= 0 || outside != 0 {
		t.Errorf("spot cone: inside %v, outside %v", inside, outside)
	}
}

func TestNoiseFeatureGating(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	cfg := endToEndConfiguration()

	cfg.Noise.Mode = NoiseOnly
	cfg.Noise.Texture = nil
	if p := buildParams(&cfg, frame); p.features.has(featureNoise) {
		t.Error("missing noise texture should disable noise")
	}

	vol := gpu.NewTexture3D(4, 4, 4, 1)
	cfg.Noise.Texture = vol
	cfg.Noise.Scale = 0
	if p := buildParams(&cfg, frame); p.features.has(featureNoise) {
		t.Error("non positive scale should disable noise")
	}

	cfg.Noise.Scale = 10
	cfg.Noise.Texture = gpu.NewTexture3D(0, 0, 0, 1)
	if p := buildParams(&cfg, frame); p.features.has(featureNoise) {
		t.Error("empty noise volume should disable noise")
	}

	cfg.Noise.Texture = vol
	cfg.Noise.Mode = NoiseWithDistortion
	p := buildParams(&cfg, frame)
	if !p.features.has(featureNoise) || p.features.has(featureDistortion) {
		t.Error("distortion without a texture should leave plain noise enabled")
	}

	cfg.Noise.DistortionTexture = gpu.NewTexture3D(4, 0, 4, 3)
	p = buildParams(&cfg, frame)
	if !p.features.has(featureNoise) || p.features.has(featureDistortion) {
		t.Error("empty distortion volume should leave plain noise enabled")
	}

	cfg.Noise.DistortionTexture = gpu.NewTexture3D(4, 4, 4, 3)
	if p := buildParams(&cfg, frame); !p.features.has(featureDistortion) {
		t.Error("distortion with a valid volume should be enabled")
	}
}

func TestNoiseRemap(t *testing.T) {
	vol := gpu.NewTexture3D(2, 2, 2, 1)
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				vol.Set(x, y, z, math.NewVec3(0.5, 0, 0))
			}
		}
	}
	p := frameParams{
		features:       featureNoise,
		density:        1,
		maximumHeight:  10,
		noise:          vol,
		noiseFrequency: 1,
		noiseMinMax:    [2]float32{0.25, 0.75},
	}
	if got := p.noiseAt(math.NewVec3(0.3, 0.1, 0.7)); !approx(got, 0.5, 1e-6) {
		t.Errorf("remapped noise = %v, want 0.5", got)
	}
	p.noiseMinMax = [2]float32{0.6, 1}
	if got := p.noiseAt(math.Vec3Zero); got != 0 {
		t.Errorf("noise below the window = %v, want 0", got)
	}
}

func TestModifierFactor(t *testing.T) {
	m := packModifier(&VolumeModifier{Enabled: true, Position: math.NewVec3(0, 1, 0), Radius: 2, FallOff: 0, DensityMultiplier: 5})
	if m.fallOff != minModifierFallOff {
		t.Errorf("falloff should be clamped to %v, got %v", minModifierFallOff, m.fallOff)
	}
	if got := m.factor(math.NewVec3(0, 1, 0)); got != 5 {
		t.Errorf("factor at centre = %v, want 5", got)
	}
	if got := m.factor(math.NewVec3(0, 4, 0)); got != 1 {
		t.Errorf("factor outside = %v, want 1", got)
	}
	if disabled := packModifier(&VolumeModifier{Radius: 2}); disabled.factor(math.Vec3Zero) != 1 {
		t.Error("disabled modifier should not change density")
	}
	if nilMod := packModifier(nil); nilMod.enabled {
		t.Error("nil modifier should be disabled")
	}
}

func TestInterleavedGradientNoiseRange(t *testing.T) {
	seen := map[float32]bool{}
	for frame := 0; frame < 64; frame++ {
		v := interleavedGradientNoise(3, 5, frame)
		if v < 0 || v >= 1 {
			t.Fatalf("frame %d: dither %v out of range", frame, v)
		}
		seen[v] = true
	}
	if len(seen) < 32 {
		t.Errorf("dither should vary across frames, saw %d distinct values", len(seen))
	}
}

func BenchmarkIntegrateFog(b *testing.B) {
	frame := flatFrame(b, 160, 90, 20, core.ColorWhite)
	cfg := endToEndConfiguration()
	p := buildParams(&cfg, frame)
	out := gpu.NewTexture("fog", gpu.Descriptor{Width: 160, Height: 90, Format: gpu.FormatRGBA16F})
	for i := 0; i < b.N; i++ {
		integrateFog(&p, frame.Depth, out)
	}
}

type constantAmbient struct{ irradiance math.Vec3 }

func (a constantAmbient) Irradiance(math.Vec3) math.Vec3 { return a.irradiance }

type constantReflection struct{ radiance math.Vec3 }

func (r constantReflection) Radiance(_, _ math.Vec3) math.Vec3 { return r.radiance }

type constantShadow struct{ visibility float32 }

func (s constantShadow) Visibility(math.Vec3) float32 { return s.visibility }

type sliceShadows struct{ visibility []float32 }

func (s sliceShadows) Visibility(shadowIndex int, _ math.Vec3) float32 {
	return s.visibility[shadowIndex]
}

var (
	samplePos = math.NewVec3(0, 2, -5)
	sampleDir = math.NewVec3(0, 0, -1)
)

func TestProbeContributions(t *testing.T) {
	ambient := constantAmbient{math.NewVec3(2, 2, 2)}
	reflection := constantReflection{math.NewVec3(4, 4, 4)}

	tests := []struct {
		name       string
		apv        ContributionSettings
		reflection ContributionSettings
		ambient    AmbientProbe
		probe      ReflectionProbe
		flag       features
		enabled    bool
		want       float32
	}{
		{"apv weighted", ContributionSettings{Enabled: true, Weight: 0.5}, ContributionSettings{}, ambient, nil, featureAPV, true, 1},
		{"apv full weight", ContributionSettings{Enabled: true, Weight: 1}, ContributionSettings{}, ambient, nil, featureAPV, true, 2},
		{"apv zero weight", ContributionSettings{Enabled: true}, ContributionSettings{}, ambient, nil, featureAPV, false, 0},
		{"apv switched off", ContributionSettings{Weight: 1}, ContributionSettings{}, ambient, nil, featureAPV, false, 0},
		{"apv without probe", ContributionSettings{Enabled: true, Weight: 1}, ContributionSettings{}, nil, nil, featureAPV, false, 0},
		{"reflections weighted", ContributionSettings{}, ContributionSettings{Enabled: true, Weight: 0.25}, nil, reflection, featureReflections, true, 1},
		{"reflections full weight", ContributionSettings{}, ContributionSettings{Enabled: true, Weight: 1}, nil, reflection, featureReflections, true, 4},
		{"reflections zero weight", ContributionSettings{}, ContributionSettings{Enabled: true}, nil, reflection, featureReflections, false, 0},
		{"reflections switched off", ContributionSettings{}, ContributionSettings{Weight: 1}, nil, reflection, featureReflections, false, 0},
		{"reflections without probe", ContributionSettings{}, ContributionSettings{Enabled: true, Weight: 1}, nil, nil, featureReflections, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
			frame.Ambient = tt.ambient
			frame.Reflections = tt.probe
			cfg := endToEndConfiguration()
			cfg.MainLight.Enabled = false
			cfg.APV = tt.apv
			cfg.ReflectionProbes = tt.reflection

			p := buildParams(&cfg, frame)
			if got := p.features.has(tt.flag); got != tt.enabled {
				t.Fatalf("feature enabled = %v, want %v (features %v)", got, tt.enabled, p.features.Names())
			}
			got := p.inScattering(samplePos, sampleDir)
			if !approx(got.X, tt.want, 1e-6) || got.X != got.Y || got.Y != got.Z {
				t.Errorf("in-scattering = %v, want %v per channel", got, tt.want)
			}
		})
	}
}

func TestAmbientRadianceScalesWithWeight(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	frame.Ambient = constantAmbient{math.NewVec3(1, 1, 1)}
	cfg := endToEndConfiguration()
	cfg.MainLight.Enabled = false
	_, device := frame.Camera.ProjectUV(testEye.Add(math.NewVec3(0, 0, -20)))
	uv := math.NewVec2(0.5, 0.5)

	cfg.APV = ContributionSettings{Enabled: true, Weight: 0.5}
	p := buildParams(&cfg, frame)
	half := p.integrateRay(uv, device, 0.5)
	cfg.APV.Weight = 1
	p = buildParams(&cfg, frame)
	full := p.integrateRay(uv, device, 0.5)

	if half.X <= 0 {
		t.Fatalf("ambient probe should add radiance, got %v", half)
	}
	if !approx(full.X, 2*half.X, 1e-5*full.X) {
		t.Errorf("doubling the weight gave %v from %v", full.X, half.X)
	}
	if full.W != half.W {
		t.Errorf("weight must not change transmittance: %v vs %v", full.W, half.W)
	}
}

func TestMainShadowVisibility(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	cfg := endToEndConfiguration()

	unshadowed := buildParams(&cfg, frame)
	if unshadowed.features.has(featureMainShadow) {
		t.Error("no shadow sampler should leave main shadows off")
	}
	lit := unshadowed.inScattering(samplePos, sampleDir)
	if lit.X <= 0 {
		t.Fatalf("main light should scatter, got %v", lit)
	}

	_, device := frame.Camera.ProjectUV(testEye.Add(math.NewVec3(0, 0, -20)))
	for _, visibility := range []float32{0, 0.5, 1} {
		frame.MainShadow = constantShadow{visibility}
		p := buildParams(&cfg, frame)
		if !p.features.has(featureMainShadow) {
			t.Fatalf("visibility %v: shadow sampler should enable main shadows", visibility)
		}
		got := p.inScattering(samplePos, sampleDir)
		if !approx(got.X, lit.X*visibility, 1e-6) {
			t.Errorf("visibility %v: in-scattering %v, want %v", visibility, got.X, lit.X*visibility)
		}
		if visibility == 0 {
			if ray := p.integrateRay(math.NewVec2(0.5, 0.5), device, 0.5); ray.X != 0 || ray.Y != 0 || ray.Z != 0 {
				t.Errorf("fully shadowed ray should carry no radiance, got %v", ray)
			}
		}
	}
}

func TestAdditionalShadowSampler(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	frame.Lights.MainLightIndex = -1
	frame.Lights.Visible = []Light{{
		ID: 20, Type: LightTypePoint, Position: math.NewVec3(0, 2, -8),
		Color: core.ColorWhite, Intensity: 10, ShadowIndex: 0,
	}}
	frame.Lights.Overrides = map[LightID]LightOverride{20: {Scattering: 1}}
	cfg := endToEndConfiguration()
	cfg.MainLight.Enabled = false
	cfg.AdditionalLights.Enabled = true

	lit := buildParams(&cfg, frame).inScattering(samplePos, sampleDir)
	if lit.X <= 0 {
		t.Fatalf("point light should scatter without a shadow sampler, got %v", lit)
	}

	tests := []struct {
		name        string
		shadowIndex int
		visibility  float32
		want        float32
	}{
		{"occluded", 0, 0, 0},
		{"half lit", 0, 0.5, lit.X * 0.5},
		{"no shadow slice", -1, 0, lit.X},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame.Lights.Visible[0].ShadowIndex = tt.shadowIndex
			frame.AdditionalShadows = sliceShadows{[]float32{tt.visibility}}
			got := buildParams(&cfg, frame).inScattering(samplePos, sampleDir)
			if !approx(got.X, tt.want, 1e-6) {
				t.Errorf("in-scattering %v, want %v", got.X, tt.want)
			}
		})
	}
}

func TestModifierScalesIntegratedDensity(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	cfg := endToEndConfiguration()
	_, device := frame.Camera.ProjectUV(testEye.Add(math.NewVec3(0, 0, -20)))
	uv := math.NewVec2(0.5, 0.5)
	centre := testEye.Add(math.NewVec3(0, 0, -10))
	outside := testEye.Add(math.NewVec3(0, 0, -40))

	plain := buildParams(&cfg, frame)
	base := plain.integrateRay(uv, device, 0.5)

	tests := []struct {
		name       string
		multiplier float32
		denser     bool
	}{
		{"thicker", 4, true},
		{"cleared", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame.Modifier = &VolumeModifier{Enabled: true, Position: centre, Radius: 15, FallOff: 1, DensityMultiplier: tt.multiplier}
			p := buildParams(&cfg, frame)
			if !p.features.has(featureModifier) {
				t.Fatal("modifier feature should be enabled")
			}
			if got, want := p.densityAt(centre), plain.densityAt(centre)*tt.multiplier; !approx(got, want, 1e-6) {
				t.Errorf("density at centre %v, want %v", got, want)
			}
			if got, want := p.densityAt(outside), plain.densityAt(outside); got != want {
				t.Errorf("density outside %v, want %v", got, want)
			}

			ray := p.integrateRay(uv, device, 0.5)
			if tt.denser && !(ray.W < base.W) {
				t.Errorf("transmittance %v should drop below %v", ray.W, base.W)
			}
			if !tt.denser && !(ray.W > base.W && ray.X < base.X) {
				t.Errorf("cleared volume gave %v, base %v", ray, base)
			}
		})
	}
}

func TestNonDirectionalMainIndexIsNotAdditional(t *testing.T) {
	frame := flatFrame(t, 8, 8, 20, core.ColorWhite)
	frame.Lights.Visible = []Light{
		{ID: 30, Type: LightTypePoint, Position: math.NewVec3(0, 2, -5), Color: core.ColorWhite, Intensity: 4, ShadowIndex: -1},
		{ID: 31, Type: LightTypePoint, Position: math.NewVec3(1, 2, -5), Color: core.ColorWhite, Intensity: 4, ShadowIndex: -1},
	}
	frame.Lights.MainLightIndex = 0
	frame.Lights.Overrides = map[LightID]LightOverride{30: {Scattering: 1}, 31: {Scattering: 1}}
	cfg := endToEndConfiguration()
	cfg.AdditionalLights.Enabled = true

	if _, ok := frame.Lights.MainLight(); ok {
		t.Error("a point light cannot be the main light")
	}
	if n := frame.Lights.AdditionalLightsCount(); n != 1 {
		t.Errorf("additional lights = %d, want 1", n)
	}
	p := buildParams(&cfg, frame)
	if p.features.has(featureMainLight) {
		t.Error("main light term should be skipped")
	}
	if len(p.additional) != 1 || p.additional[0].ID != 31 {
		t.Errorf("only light 31 should be packed, got %v", p.additional)
	}
}
