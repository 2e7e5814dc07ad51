package fog

import "volumetric-fog/math"

// heightFactor is the vertical density profile: 1 at or below the base
// height, fading linearly to 0 at the maximum height, and 0 under the
// ground when enabled.
func heightFactor(y, base, maximum float32, ground bool, groundHeight float32) float32 {
	if ground && y < groundHeight {
		return 0
	}
	if maximum <= base {
		if y <= base {
			return 1
		}
		return 0
	}
	return math.Saturate((maximum - y) / (maximum - base))
}

// densityAt returns the fog density at world position pos.
func (p *frameParams) densityAt(pos math.Vec3) float32 {
	d := p.density * heightFactor(pos.Y, p.baseHeight, p.maximumHeight, p.features.has(featureGround), p.groundHeight)
	if d <= 0 {
		return 0
	}
	if p.features.has(featureNoise) {
		d *= p.noiseAt(pos)
	}
	if p.features.has(featureModifier) {
		d *= p.modifier.factor(pos)
	}
	return d
}

// noiseAt samples the scrolling noise volume, optionally displaced by the
// distortion volume, and remaps it through the min/max window.
func (p *frameParams) noiseAt(pos math.Vec3) float32 {
	coord := pos.Mul(p.noiseFrequency).Add(p.noiseVelocity.Mul(p.time))
	if p.features.has(featureDistortion) {
		dc := pos.Mul(p.distortionFrequency).Add(p.distortionVelocity.Mul(p.time))
		offset := p.distortion.Sample(dc).Mul(2).Sub(math.Vec3One)
		coord = coord.Add(offset.MulVec(p.distortionIntensity))
	}
	n := p.noise.Sample(coord).X

	lo, hi := p.noiseMinMax[0], p.noiseMinMax[1]
	if hi <= lo {
		if n >= lo {
			return 1
		}
		return 0
	}
	return math.Saturate((n - lo) / (hi - lo))
}
