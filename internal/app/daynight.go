package app

import (
	"fmt"
	stdmath "math"

	"volumetric-fog/core"
	"volumetric-fog/fog"
	"volumetric-fog/math"
	"volumetric-fog/scene"
)

// dayPalette holds the sky, sun and fog values for one key time of day.
type dayPalette struct {
	t            float32    // normalised time 0..1
	zenith       core.Color // sky overhead
	horizon      core.Color // sky at eye level
	ground       core.Color // sky below the horizon
	fogTint      core.Color
	densityScale float32 // multiplies the configured fog density
	sunColor     core.Color
	sunIntensity float32
	ambience     core.Color // flat fog ambience on top of the sky probe
}

// palettes are ordered by t and wrap (0 == 1).
var palettes = []dayPalette{
	{ // 0.00 noon
		t:            0.00,
		zenith:       core.Color{R: 0.20, G: 0.42, B: 0.90, A: 1},
		horizon:      core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1},
		ground:       core.Color{R: 0.12, G: 0.10, B: 0.08, A: 1},
		fogTint:      core.Color{R: 1.00, G: 1.00, B: 1.00, A: 1},
		densityScale: 0.7,
		sunColor:     core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1},
		sunIntensity: 3.0,
		ambience:     core.Color{R: 0.02, G: 0.02, B: 0.03, A: 1},
	},
	{ // 0.22 golden hour
		t:            0.22,
		zenith:       core.Color{R: 0.14, G: 0.20, B: 0.60, A: 1},
		horizon:      core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1},
		ground:       core.Color{R: 0.08, G: 0.07, B: 0.06, A: 1},
		fogTint:      core.Color{R: 1.00, G: 0.85, B: 0.70, A: 1},
		densityScale: 1.2,
		sunColor:     core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1},
		sunIntensity: 2.25,
		ambience:     core.Color{R: 0.02, G: 0.015, B: 0.02, A: 1},
	},
	{ // 0.30 dusk
		t:            0.30,
		zenith:       core.Color{R: 0.08, G: 0.10, B: 0.28, A: 1},
		horizon:      core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1},
		ground:       core.Color{R: 0.04, G: 0.03, B: 0.04, A: 1},
		fogTint:      core.Color{R: 0.85, G: 0.70, B: 0.80, A: 1},
		densityScale: 1.4,
		sunColor:     core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1},
		sunIntensity: 0.6,
		ambience:     core.Color{R: 0.01, G: 0.01, B: 0.02, A: 1},
	},
	{ // 0.50 midnight, the main light is the moon
		t:            0.50,
		zenith:       core.Color{R: 0.02, G: 0.03, B: 0.10, A: 1},
		horizon:      core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1},
		ground:       core.Color{R: 0.01, G: 0.01, B: 0.02, A: 1},
		fogTint:      core.Color{R: 0.70, G: 0.75, B: 1.00, A: 1},
		densityScale: 1.0,
		sunColor:     core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1},
		sunIntensity: 0.3,
		ambience:     core.Color{R: 0.005, G: 0.005, B: 0.01, A: 1},
	},
	{ // 0.70 pre-dawn
		t:            0.70,
		zenith:       core.Color{R: 0.06, G: 0.08, B: 0.25, A: 1},
		horizon:      core.Color{R: 0.40, G: 0.18, B: 0.24, A: 1},
		ground:       core.Color{R: 0.03, G: 0.03, B: 0.04, A: 1},
		fogTint:      core.Color{R: 0.80, G: 0.70, B: 0.85, A: 1},
		densityScale: 1.6,
		sunColor:     core.Color{R: 0.75, G: 0.42, B: 0.60, A: 1},
		sunIntensity: 0.5,
		ambience:     core.Color{R: 0.01, G: 0.01, B: 0.02, A: 1},
	},
	{ // 0.78 sunrise
		t:            0.78,
		zenith:       core.Color{R: 0.12, G: 0.18, B: 0.55, A: 1},
		horizon:      core.Color{R: 0.88, G: 0.45, B: 0.22, A: 1},
		ground:       core.Color{R: 0.08, G: 0.06, B: 0.05, A: 1},
		fogTint:      core.Color{R: 1.00, G: 0.80, B: 0.65, A: 1},
		densityScale: 1.5,
		sunColor:     core.Color{R: 1.00, G: 0.60, B: 0.28, A: 1},
		sunIntensity: 1.75,
		ambience:     core.Color{R: 0.015, G: 0.015, B: 0.02, A: 1},
	},
}

// DayNight drives the sun, sky and fog colour through a day.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool    // auto-advance when true
}

func NewDayNight() *DayNight {
	return &DayNight{
		Time:  0.2,
		Speed: 120.0,
	}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active || dn.Speed <= 0 {
		return
	}
	dn.Time += dt / dn.Speed
	dn.Time -= math.Floor(dn.Time)
}

// samplePalette interpolates the keyframes around t, wrapping from the last
// key back to noon.
func samplePalette(t float32) dayPalette {
	t -= math.Floor(t)
	n := len(palettes)
	a, b := palettes[n-1], palettes[0]
	span := 1 - a.t + b.t
	local := t - a.t
	if local < 0 {
		local += 1
	}
	for i := 0; i+1 < n; i++ {
		if t >= palettes[i].t && t < palettes[i+1].t {
			a, b = palettes[i], palettes[i+1]
			span = b.t - a.t
			local = t - a.t
			break
		}
	}
	f := math.Saturate(local / span)

	return dayPalette{
		t:            t,
		zenith:       a.zenith.Lerp(b.zenith, f),
		horizon:      a.horizon.Lerp(b.horizon, f),
		ground:       a.ground.Lerp(b.ground, f),
		fogTint:      a.fogTint.Lerp(b.fogTint, f),
		densityScale: math.Lerp(a.densityScale, b.densityScale, f),
		sunColor:     a.sunColor.Lerp(b.sunColor, f),
		sunIntensity: math.Lerp(a.sunIntensity, b.sunIntensity, f),
		ambience:     a.ambience.Lerp(b.ambience, f),
	}
}

// SunDirection is the direction the main light travels at the current
// time: straight down at noon, straight up at midnight.
func (dn *DayNight) SunDirection() math.Vec3 {
	angle := float64(dn.Time * 2 * stdmath.Pi)
	return math.Vec3{
		X: float32(stdmath.Sin(angle)),
		Y: -float32(stdmath.Cos(angle)),
		Z: 0.35,
	}.Normalize()
}

// Apply pushes the current time's sky, main light and fog colours into s
// and cfg. baseDensity is the density the cycle scales.
func (dn *DayNight) Apply(s *scene.Scene, cfg *fog.Configuration, baseDensity float32) {
	p := samplePalette(dn.Time)

	if sun, ok := s.MainLight(); ok {
		sun.Direction = dn.SunDirection()
		sun.Color = p.sunColor
		sun.Intensity = p.sunIntensity
	}
	s.Sky.Zenith = p.zenith
	s.Sky.Horizon = p.horizon
	s.Sky.Ground = p.ground

	cfg.Tint = p.fogTint
	cfg.AmbienceColor = p.ambience
	cfg.Density = baseDensity * p.densityScale
}

// TimeOfDayStr returns a human-readable time label.
func (dn *DayNight) TimeOfDayStr() string {
	hours := dn.Time*24.0 + 12
	h := int(hours) % 24
	m := int((hours - math.Floor(hours)) * 60)
	period := "AM"
	displayH := h
	if h == 0 {
		displayH = 12
	} else if h == 12 {
		period = "PM"
	} else if h > 12 {
		displayH = h - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
