package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/vmath"
)

// GravityField is the single global acceleration applied to dynamic bodies.
// Its direction follows the latest motion sample and its strength is clamped to a maximum
// so sensor spikes cannot produce runaway acceleration.
type GravityField struct {
	direction   mgl64.Vec3
	strength    float64
	maxStrength float64
	scale       float64
}

// NewGravityField returns a field pointing along direction (straight down if direction has
// no length). strength is clamped to [0, maxStrength]; scale converts sample magnitude to
// acceleration (use 1 when samples are already in m/s²).
func NewGravityField(direction mgl64.Vec3, strength, maxStrength, scale float64) *GravityField {
	dir, ok := vmath.Unit(direction)
	if !ok {
		dir = vmath.Down
	}
	if maxStrength < 0 {
		maxStrength = 0
	}
	if !(scale > 0) {
		scale = 1
	}
	return &GravityField{
		direction:   dir,
		strength:    vmath.Clamp(strength, 0, maxStrength),
		maxStrength: maxStrength,
		scale:       scale,
	}
}

// Update points the field along sample and sets strength = min(|sample|*scale, maxStrength).
// A sample with (near) zero length keeps the previous direction. Non-finite samples are ignored.
func (g *GravityField) Update(sample mgl64.Vec3, maxStrength float64) {
	if !vmath.Finite(sample) {
		return
	}
	if maxStrength < 0 {
		maxStrength = 0
	}
	g.maxStrength = maxStrength
	mag := sample.Len()
	if dir, ok := vmath.Unit(sample); ok {
		g.direction = dir
	}
	g.strength = math.Min(mag*g.scale, maxStrength)
}

// Direction returns the unit direction of the field.
func (g *GravityField) Direction() mgl64.Vec3 { return g.direction }

// Strength returns the acceleration magnitude.
func (g *GravityField) Strength() float64 { return g.strength }

// MaxStrength returns the current clamp.
func (g *GravityField) MaxStrength() float64 { return g.maxStrength }

// Vector returns direction * strength.
func (g *GravityField) Vector() mgl64.Vec3 {
	return g.direction.Mul(g.strength)
}
