// Package motion produces accelerometer-like samples for the simulation: a keyboard-driven
// tilt for the viewer and a deterministic sway for headless runs. Samples are in g units;
// the gravity field's scale turns them into m/s².
package motion

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxTilt is the largest pitch or roll a Tilt accepts, in radians.
const MaxTilt = math32.Pi / 3

// Tilt is the attitude of the enclosure. Positive Pitch tips the far edge (-Z) up so things
// slide toward +Z; positive Roll tips the left edge up so things slide toward +X.
type Tilt struct {
	Pitch float32
	Roll  float32
}

// Nudge adds to the tilt and clamps both angles to ±MaxTilt.
func (t *Tilt) Nudge(dPitch, dRoll float32) {
	t.Pitch = clamp(t.Pitch+dPitch, -MaxTilt, MaxTilt)
	t.Roll = clamp(t.Roll+dRoll, -MaxTilt, MaxTilt)
}

// Level resets the tilt.
func (t *Tilt) Level() { *t = Tilt{} }

// Sample returns the unit gravity direction for this tilt.
func (t Tilt) Sample() mgl64.Vec3 {
	p := clamp(t.Pitch, -MaxTilt, MaxTilt)
	r := clamp(t.Roll, -MaxTilt, MaxTilt)
	sp, cp := math32.Sincos(p)
	sr, cr := math32.Sincos(r)
	return mgl64.Vec3{float64(sr), float64(-cr * cp), float64(cr * sp)}
}

// Sway rocks the enclosure on a slow ellipse: pitch follows a sine of Amplitude and roll a
// cosine of half of it. Period is in seconds.
type Sway struct {
	Amplitude float32
	Period    float32
}

// At returns the sample at simulation time t. A non-positive Period holds the enclosure level.
func (s Sway) At(t float64) mgl64.Vec3 {
	if !(s.Period > 0) {
		return Tilt{}.Sample()
	}
	phase := 2 * math32.Pi * float32(t) / s.Period
	return Tilt{
		Pitch: s.Amplitude * math32.Sin(phase),
		Roll:  s.Amplitude / 2 * math32.Cos(phase),
	}.Sample()
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
