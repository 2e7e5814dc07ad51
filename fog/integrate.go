package fog

import (
	"volumetric-fog/internal/gpu"
	"volumetric-fog/math"
)

// minExtinction below which a step is treated as optically thin.
const minExtinction = 1e-7

// integrateFog raymarches every texel of out against the downsampled depth.
// out receives in-scattered radiance in RGB and transmittance in A.
func integrateFog(p *frameParams, depth, out *gpu.Texture) {
	gpu.Dispatch(out.Width(), out.Height(), func(x, y int) {
		uv := out.UV(x, y)
		d := depth.Load(x, y).X
		dither := interleavedGradientNoise(float32(x), float32(y), p.frameIndex)
		out.Store(x, y, p.integrateRay(uv, d, dither))
	})
}

// interleavedGradientNoise returns a per pixel offset in [0,1) that shifts
// every frame.
func interleavedGradientNoise(x, y float32, frame int) float32 {
	x += 5.588238 * float32(frame)
	y += 5.588238 * float32(frame)
	return math.Frac(52.9829189 * math.Frac(0.06711056*x+0.00583715*y))
}

// integrateRay marches the view ray through uv from the near plane to the
// closer of the fog distance and the scene surface at device depth d.
func (p *frameParams) integrateRay(uv math.Vec2, d, dither float32) math.Vec4 {
	cam := &p.camera
	nearPoint := cam.WorldFromDepth(uv, 0)
	surface := cam.WorldFromDepth(uv, d)

	toNear := nearPoint.Sub(cam.Position)
	start := toNear.Length()
	if start <= 0 {
		return math.Vec4{W: 1}
	}
	dir := toNear.Mul(1 / start)
	end := min(p.distance, surface.Sub(cam.Position).Length())
	rayLength := end - start
	if rayLength <= 0 {
		return math.Vec4{W: 1}
	}

	stepLength := max(rayLength/float32(p.maxSteps), p.minimumStepSize)
	steps := min(int(rayLength/stepLength)+1, p.maxSteps)

	var radiance math.Vec3
	transmittance := float32(1)
	for i := 0; i < steps; i++ {
		a := start + float32(i)*stepLength
		if a >= end {
			break
		}
		b := min(a+stepLength, end)
		delta := b - a
		pos := cam.Position.Add(dir.Mul(a + dither*delta))

		density := p.densityAt(pos)
		if density <= 0 {
			continue
		}
		extinction := density * p.absorption
		scatter := p.inScattering(pos, dir).Mul(density)
		stepTransmittance := math.Exp(-extinction * delta)

		var integrated math.Vec3
		if extinction > minExtinction {
			integrated = scatter.Mul((1 - stepTransmittance) / extinction)
		} else {
			integrated = scatter.Mul(delta)
		}
		radiance = radiance.Add(integrated.Mul(transmittance))
		transmittance *= stepTransmittance
	}
	return math.Vec4{X: radiance.X, Y: radiance.Y, Z: radiance.Z, W: transmittance}
}

// inScattering is the light scattered towards the viewer at pos per unit
// density, before extinction.
func (p *frameParams) inScattering(pos, viewDir math.Vec3) math.Vec3 {
	light := p.ambience

	if p.features.has(featureMainLight) {
		slot := len(p.scatterings) - 1
		phase := henyeyGreenstein(p.anisotropies[slot], viewDir.Dot(p.mainLightDir.Negate()))
		visibility := float32(1)
		if p.features.has(featureMainShadow) {
			visibility = p.mainShadow.Visibility(pos)
		}
		light = light.Add(p.mainLightRadiance.Mul(phase * p.scatterings[slot] * visibility))
	}

	if p.features.has(featureAdditionalLights) {
		for i := range p.additional {
			scattering := p.scatterings[i]
			if scattering <= 0 {
				continue
			}
			l := &p.additional[i]
			atten, toLight := l.Attenuation(pos, p.radiiSq[i])
			if atten <= 0 {
				continue
			}
			if p.additionalShadows != nil && l.ShadowIndex >= 0 {
				atten *= p.additionalShadows.Visibility(l.ShadowIndex, pos)
			}
			phase := henyeyGreenstein(p.anisotropies[i], viewDir.Dot(toLight))
			light = light.Add(l.Radiance().Mul(phase * scattering * atten))
		}
	}

	if p.features.has(featureAPV) {
		light = light.Add(p.ambient.Irradiance(pos).Mul(p.apvWeight))
	}
	if p.features.has(featureReflections) {
		light = light.Add(p.reflections.Radiance(pos, viewDir).Mul(p.reflectionWeight))
	}
	return light.MulVec(p.tint)
}
