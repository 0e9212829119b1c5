package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/vmath"
)

// BodyID identifies a body for its whole lifetime. IDs are never reused by a World.
type BodyID uint64

// Kind is the motion type of a body.
type Kind int

const (
	// Dynamic bodies are integrated under gravity and respond to contacts.
	Dynamic Kind = iota
	// Static bodies never move.
	Static
	// Kinematic bodies move with their own velocity and push dynamic bodies like infinite mass.
	Kinematic
	// Frozen bodies were Dynamic until their time-to-live elapsed; they now behave as Static.
	Frozen
)

func (k Kind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Frozen:
		return "frozen"
	}
	return "unknown"
}

// Material holds the surface and damping coefficients of a body, each in [0,1].
type Material struct {
	Friction        float64
	RollingFriction float64
	LinearDamping   float64
	AngularDamping  float64
	Restitution     float64
}

// DefaultMaterial mirrors common engine defaults (friction 0.5, damping 0.1).
func DefaultMaterial() Material {
	return Material{
		Friction:       0.5,
		LinearDamping:  0.1,
		AngularDamping: 0.1,
	}
}

func (m Material) clamped() Material {
	return Material{
		Friction:        vmath.Clamp(m.Friction, 0, 1),
		RollingFriction: vmath.Clamp(m.RollingFriction, 0, 1),
		LinearDamping:   vmath.Clamp(m.LinearDamping, 0, 1),
		AngularDamping:  vmath.Clamp(m.AngularDamping, 0, 1),
		Restitution:     vmath.Clamp(m.Restitution, 0, 1),
	}
}

// BodyDef describes a body to construct. A zero Orientation means identity.
type BodyDef struct {
	Kind            Kind
	Shape           Shape
	Mass            float64
	Material        Material
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// Body is a rigid body: shape, mass, material, pose and velocity.
// Fields may be set freely before the body is added to a World; afterwards the World owns it.
type Body struct {
	id              BodyID
	Kind            Kind
	Shape           Shape
	Mass            float64
	Material        Material
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	CreatedAt       float64

	invInertia mgl64.Vec3 // local principal axes
}

// NewBody validates def and returns the body. Invalid geometry yields *InvalidShapeError.
// Non-positive mass defaults to 1; material coefficients are clamped to [0,1].
func NewBody(def BodyDef) (*Body, error) {
	if err := def.Shape.Validate(); err != nil {
		return nil, err
	}
	mass := def.Mass
	if !(mass > 0) {
		mass = 1
	}
	rot := def.Orientation
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	b := &Body{
		Kind:            def.Kind,
		Shape:           def.Shape,
		Mass:            mass,
		Material:        def.Material.clamped(),
		Position:        def.Position,
		Orientation:     rot.Normalize(),
		LinearVelocity:  def.LinearVelocity,
		AngularVelocity: def.AngularVelocity,
	}
	in := def.Shape.inertia(mass)
	b.invInertia = mgl64.Vec3{1 / in[0], 1 / in[1], 1 / in[2]}
	return b, nil
}

// ID returns the id assigned by the World, or 0 before the body is added.
func (b *Body) ID() BodyID { return b.id }

// IsDynamic reports whether the body is integrated and pushed by contacts.
func (b *Body) IsDynamic() bool { return b.Kind == Dynamic }

// Support returns the farthest point of the posed shape along dir.
func (b *Body) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return b.Shape.support(b.Position, b.Orientation, dir)
}

// BoundingRadius returns the radius of the body's bounding sphere.
func (b *Body) BoundingRadius() float64 {
	return b.Shape.BoundingRadius()
}

// HalfExtent returns the distance from the center to the support plane along -n,
// i.e. how high the center rests above a surface with normal n.
func (b *Body) HalfExtent(n mgl64.Vec3) float64 {
	return b.Position.Sub(b.Support(n.Mul(-1))).Dot(n)
}

func (b *Body) inverseMass() float64 {
	if b.Kind != Dynamic {
		return 0
	}
	return 1 / b.Mass
}

// invInertiaWorld applies the world-space inverse inertia tensor to v.
func (b *Body) invInertiaWorld(v mgl64.Vec3) mgl64.Vec3 {
	if b.Kind != Dynamic {
		return vmath.Zero
	}
	local := b.Orientation.Conjugate().Rotate(v)
	local = mgl64.Vec3{local[0] * b.invInertia[0], local[1] * b.invInertia[1], local[2] * b.invInertia[2]}
	return b.Orientation.Rotate(local)
}

// ApplyImpulse changes linear and angular velocity as if impulse j acted at offset r from the center.
func (b *Body) ApplyImpulse(j, r mgl64.Vec3) {
	if b.Kind != Dynamic {
		return
	}
	b.LinearVelocity = b.LinearVelocity.Add(j.Mul(1 / b.Mass))
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaWorld(r.Cross(j)))
}

// ApplyAngularImpulse changes angular velocity by the inverse inertia times l.
func (b *Body) ApplyAngularImpulse(l mgl64.Vec3) {
	if b.Kind != Dynamic {
		return
	}
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaWorld(l))
}

// velocityAt returns the velocity of the body point at offset r from the center.
func (b *Body) velocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.LinearVelocity.Add(b.AngularVelocity.Cross(r))
}

// integrate advances a dynamic or kinematic body by h seconds under acceleration g.
func (b *Body) integrate(g mgl64.Vec3, h float64) {
	switch b.Kind {
	case Dynamic:
		b.LinearVelocity = b.LinearVelocity.Add(g.Mul(h))
		b.Position = b.Position.Add(b.LinearVelocity.Mul(h))
		b.Orientation = vmath.IntegrateQuat(b.Orientation, b.AngularVelocity, h)
		b.LinearVelocity = b.LinearVelocity.Mul(dampFactor(b.Material.LinearDamping, h))
		b.AngularVelocity = b.AngularVelocity.Mul(dampFactor(b.Material.AngularDamping, h))
	case Kinematic:
		b.Position = b.Position.Add(b.LinearVelocity.Mul(h))
		b.Orientation = vmath.IntegrateQuat(b.Orientation, b.AngularVelocity, h)
	}
}

// freeze turns a dynamic body into a Frozen one, keeping its pose.
func (b *Body) freeze() {
	b.Kind = Frozen
	b.LinearVelocity = vmath.Zero
	b.AngularVelocity = vmath.Zero
}

func dampFactor(d, h float64) float64 {
	return vmath.Clamp(1-d*h, 0, 1)
}

// BodyView is a read-only copy of the parts of a body a renderer needs.
type BodyView struct {
	ID          BodyID
	Kind        Kind
	Shape       Shape
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

func (b *Body) view() BodyView {
	return BodyView{ID: b.id, Kind: b.Kind, Shape: b.Shape, Position: b.Position, Orientation: b.Orientation}
}
