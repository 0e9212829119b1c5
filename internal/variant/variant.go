// Package variant describes coin-pile worlds as data. A Variant names the boundary geometry,
// gravity defaults, spawn schedule and body constants; Build turns it into a running
// simulation. Built-in variants are embedded YAML files; more can be loaded from disk.
package variant

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"coinpile/internal/physics"
)

// Variant is the YAML definition of a world (e.g. internal/variant/variants/jar.yaml).
type Variant struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Physics     Physics    `yaml:"physics"`
	Gravity     Gravity    `yaml:"gravity"`
	Enclosure   *Enclosure `yaml:"enclosure,omitempty"`
	Surfaces    []Surface  `yaml:"surfaces,omitempty"`
	Spawn       *Spawn     `yaml:"spawn,omitempty"`
	Coin        Coin       `yaml:"coin"`
	Bodies      []Body     `yaml:"bodies,omitempty"`
}

// Physics maps onto physics.Config. Zero values take the engine defaults.
type Physics struct {
	Mode               string  `yaml:"mode,omitempty"` // fixed (default) or adaptive
	FixedStep          float64 `yaml:"fixed_step,omitempty"`
	MaxFrameDelta      float64 `yaml:"max_frame_delta,omitempty"`
	Epsilon            float64 `yaml:"epsilon,omitempty"`
	BoundaryIterations int     `yaml:"boundary_iterations,omitempty"`
	SolverIterations   int     `yaml:"solver_iterations,omitempty"`
	SettleSpeed        float64 `yaml:"settle_speed,omitempty"`
	FreezeAfter        float64 `yaml:"freeze_after,omitempty"`
	Despawn            *Box    `yaml:"despawn,omitempty"`
}

// Box is an axis-aligned volume.
type Box struct {
	Min mgl64.Vec3 `yaml:"min"`
	Max mgl64.Vec3 `yaml:"max"`
}

// Gravity holds the initial field. Scale converts motion samples (in g) to m/s².
type Gravity struct {
	Direction   mgl64.Vec3 `yaml:"direction"`
	Strength    float64    `yaml:"strength"`
	MaxStrength float64    `yaml:"max_strength"`
	Scale       float64    `yaml:"scale,omitempty"`
}

// Enclosure is a box-shaped boundary: a floor centered on the origin plus optional walls and lid.
type Enclosure struct {
	Width      float64    `yaml:"width"`
	Depth      float64    `yaml:"depth"`
	WallHeight float64    `yaml:"wall_height,omitempty"`
	Closed     bool       `yaml:"closed,omitempty"`
	TiltDeg    mgl64.Vec3 `yaml:"tilt_deg,omitempty"`
	Friction   float64    `yaml:"friction,omitempty"`
}

// Surface is one explicit boundary plane.
type Surface struct {
	Name        string     `yaml:"name"`
	Role        string     `yaml:"role"` // floor, wall or ceiling
	Center      mgl64.Vec3 `yaml:"center"`
	RotationDeg mgl64.Vec3 `yaml:"rotation_deg,omitempty"`
	HalfExtents [2]float64 `yaml:"half_extents"`
	Friction    *float64   `yaml:"friction,omitempty"`
	Restitution float64    `yaml:"restitution,omitempty"`
}

// Spawn maps onto spawn.Config.
type Spawn struct {
	Mode           string     `yaml:"mode"` // bounded or toggle
	Interval       float64    `yaml:"interval"`
	Count          int        `yaml:"count,omitempty"`
	Duration       float64    `yaml:"duration,omitempty"`
	StartActive    bool       `yaml:"start_active,omitempty"`
	MaxPerTick     int        `yaml:"max_per_tick,omitempty"`
	Position       mgl64.Vec3 `yaml:"position"`
	PositionJitter float64    `yaml:"position_jitter,omitempty"`
	TiltJitter     float64    `yaml:"tilt_jitter,omitempty"`
	SpinImpulse    float64    `yaml:"spin_impulse,omitempty"`
	Seed           uint64     `yaml:"seed,omitempty"`
}

// Shape is a body's collision geometry.
type Shape struct {
	Type   string  `yaml:"type"` // cylinder or box
	Radius float64 `yaml:"radius,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Depth  float64 `yaml:"depth,omitempty"`
}

// Material holds friction, damping and restitution, each in [0,1].
type Material struct {
	Friction        float64 `yaml:"friction"`
	RollingFriction float64 `yaml:"rolling_friction,omitempty"`
	LinearDamping   float64 `yaml:"linear_damping,omitempty"`
	AngularDamping  float64 `yaml:"angular_damping,omitempty"`
	Restitution     float64 `yaml:"restitution,omitempty"`
}

// Coin is the template for spawned bodies.
type Coin struct {
	Shape    Shape    `yaml:"shape"`
	Mass     float64  `yaml:"mass,omitempty"`
	Material Material `yaml:"material"`
}

// Body is a body placed at build time: a static prop, a kinematic mover or a dynamic coin.
type Body struct {
	Name            string     `yaml:"name,omitempty"`
	Kind            string     `yaml:"kind,omitempty"` // static (default), kinematic or dynamic
	Shape           *Shape     `yaml:"shape,omitempty"` // nil uses the coin shape
	Mass            float64    `yaml:"mass,omitempty"`
	Material        *Material  `yaml:"material,omitempty"` // nil uses the coin material
	Position        mgl64.Vec3 `yaml:"position"`
	RotationDeg     mgl64.Vec3 `yaml:"rotation_deg,omitempty"`
	Velocity        mgl64.Vec3 `yaml:"velocity,omitempty"`
	AngularVelocity mgl64.Vec3 `yaml:"angular_velocity,omitempty"`
}

// Load decodes one variant from r. Unknown keys are rejected so typos do not pass silently.
func Load(r io.Reader) (*Variant, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var v Variant
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("variant: decode: %w", err)
	}
	return &v, nil
}

// LoadFile reads a variant from a YAML file.
func LoadFile(path string) (*Variant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("variant: %w", err)
	}
	defer f.Close()
	v, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Clone returns a deep copy, so callers can apply overrides without touching a shared variant.
func (v *Variant) Clone() (*Variant, error) {
	out := new(Variant)
	if err := copier.CopyWithOption(out, v, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("variant: clone %q: %w", v.Name, err)
	}
	return out, nil
}

// Validate reports every problem found, joined into one error.
func (v *Variant) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(v.Name) == "" {
		add("name is empty")
	}
	if _, err := stepMode(v.Physics.Mode); err != nil {
		errs = append(errs, err)
	}
	if d := v.Physics.Despawn; d != nil {
		for i := range 3 {
			if !(d.Min[i] < d.Max[i]) {
				add("despawn box is empty on axis %d", i)
			}
		}
	}

	g := v.Gravity
	if g.Strength < 0 || g.MaxStrength < 0 || g.Scale < 0 {
		add("gravity values must not be negative")
	}
	if g.Strength > g.MaxStrength {
		add("gravity strength %g exceeds max_strength %g", g.Strength, g.MaxStrength)
	}

	switch {
	case v.Enclosure != nil && len(v.Surfaces) > 0:
		add("enclosure and surfaces are mutually exclusive")
	case v.Enclosure != nil:
		e := v.Enclosure
		if !(e.Width > 0) || !(e.Depth > 0) || e.WallHeight < 0 {
			add("enclosure %gx%g with wall height %g is invalid", e.Width, e.Depth, e.WallHeight)
		}
		if e.Closed && e.WallHeight == 0 {
			add("a closed enclosure needs a wall height")
		}
	case len(v.Surfaces) > 0:
		floor := false
		for _, s := range v.Surfaces {
			role, err := surfaceRole(s.Role)
			if err != nil {
				errs = append(errs, err)
			}
			floor = floor || (err == nil && role == physics.RoleFloor)
			if !(s.HalfExtents[0] > 0) || !(s.HalfExtents[1] > 0) {
				add("surface %q needs positive half_extents", s.Name)
			}
		}
		if !floor {
			errs = append(errs, physics.ErrNoFloor)
		}
	default:
		add("one of enclosure or surfaces is required")
	}

	_, coinErr := v.Coin.Shape.physics()
	if coinErr != nil {
		errs = append(errs, fmt.Errorf("coin: %w", coinErr))
	}
	if err := v.Coin.Material.check(); err != nil {
		errs = append(errs, fmt.Errorf("coin: %w", err))
	}

	if v.Spawn != nil {
		cfg, err := v.spawnConfig()
		if err != nil {
			errs = append(errs, err)
		} else {
			if coinErr != nil {
				// already reported; check the timing against a stand-in body
				cfg.Body.Shape = physics.Cylinder(1, 1)
			}
			if err := cfg.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for i, b := range v.Bodies {
		if _, err := bodyKind(b.Kind); err != nil {
			errs = append(errs, fmt.Errorf("body %d: %w", i, err))
		}
		if b.Shape != nil {
			if _, err := b.Shape.physics(); err != nil {
				errs = append(errs, fmt.Errorf("body %d: %w", i, err))
			}
		}
		if b.Material != nil {
			if err := b.Material.check(); err != nil {
				errs = append(errs, fmt.Errorf("body %d: %w", i, err))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("variant %q: %w", v.Name, err)
	}
	return nil
}

func (s Shape) physics() (physics.Shape, error) {
	var ps physics.Shape
	switch strings.ToLower(s.Type) {
	case "cylinder", "coin":
		ps = physics.Cylinder(s.Radius, s.Height)
	case "box":
		ps = physics.Box(s.Width, s.Height, s.Depth)
	default:
		return ps, fmt.Errorf("unknown shape type %q", s.Type)
	}
	return ps, ps.Validate()
}

func (m Material) check() error {
	coeffs := []struct {
		name string
		v    float64
	}{
		{"friction", m.Friction},
		{"rolling_friction", m.RollingFriction},
		{"linear_damping", m.LinearDamping},
		{"angular_damping", m.AngularDamping},
		{"restitution", m.Restitution},
	}
	for _, c := range coeffs {
		if c.v < 0 || c.v > 1 || math.IsNaN(c.v) {
			return fmt.Errorf("%s %g is outside [0,1]", c.name, c.v)
		}
	}
	return nil
}

func (m Material) physics() physics.Material {
	return physics.Material{
		Friction:        m.Friction,
		RollingFriction: m.RollingFriction,
		LinearDamping:   m.LinearDamping,
		AngularDamping:  m.AngularDamping,
		Restitution:     m.Restitution,
	}
}

func stepMode(s string) (physics.StepMode, error) {
	switch strings.ToLower(s) {
	case "", "fixed":
		return physics.StepFixed, nil
	case "adaptive":
		return physics.StepAdaptive, nil
	}
	return 0, fmt.Errorf("unknown physics mode %q", s)
}

func surfaceRole(s string) (physics.SurfaceRole, error) {
	switch strings.ToLower(s) {
	case "floor":
		return physics.RoleFloor, nil
	case "wall":
		return physics.RoleWall, nil
	case "ceiling":
		return physics.RoleCeiling, nil
	}
	return 0, fmt.Errorf("unknown surface role %q", s)
}

func bodyKind(s string) (physics.Kind, error) {
	switch strings.ToLower(s) {
	case "", "static":
		return physics.Static, nil
	case "kinematic":
		return physics.Kinematic, nil
	case "dynamic":
		return physics.Dynamic, nil
	}
	return 0, fmt.Errorf("unknown body kind %q", s)
}
