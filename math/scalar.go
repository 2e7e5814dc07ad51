package math

import "math"

// Shader-style scalar helpers used by the fog kernels.

func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Saturate(x float32) float32 {
	return Clamp(x, 0, 1)
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func Exp(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func Abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

// Frac returns x - floor(x), always in [0,1).
func Frac(x float32) float32 {
	f := x - float32(math.Floor(float64(x)))
	if f >= 1 {
		return 0
	}
	return f
}

func Floor(x float32) float32 {
	return float32(math.Floor(float64(x)))
}
