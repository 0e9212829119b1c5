package variant

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/logger"
	"coinpile/internal/physics"
	"coinpile/internal/sim"
	"coinpile/internal/spawn"
	"coinpile/internal/vmath"
)

// Build validates v and assembles its world, scheduler and simulation. log may be nil.
func Build(v *Variant, log *logger.Logger) (*sim.Simulation, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	bd, err := physics.NewBoundary(v.surfaces()...)
	if err != nil {
		return nil, fmt.Errorf("variant %q: %w", v.Name, err)
	}
	g := v.Gravity
	field := physics.NewGravityField(g.Direction, g.Strength, g.MaxStrength, g.Scale)
	w, err := physics.NewWorld(v.worldConfig(), bd, field, log)
	if err != nil {
		return nil, fmt.Errorf("variant %q: %w", v.Name, err)
	}

	for i, entry := range v.Bodies {
		b, err := v.body(entry)
		if err != nil {
			return nil, fmt.Errorf("variant %q: body %d: %w", v.Name, i, err)
		}
		if _, err := w.AddBody(b); err != nil {
			return nil, fmt.Errorf("variant %q: body %d: %w", v.Name, i, err)
		}
	}

	var sc *spawn.Scheduler
	if v.Spawn != nil {
		cfg, err := v.spawnConfig()
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.Name, err)
		}
		if sc, err = spawn.New(cfg, w, log); err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.Name, err)
		}
	}

	log.Logf("variant: built %q: %d surfaces, %d bodies, spawner %v", v.Name, len(bd.Surfaces()), w.Len(), sc != nil)
	return sim.New(w, sc, g.MaxStrength, log)
}

func rotation(deg mgl64.Vec3) mgl64.Quat {
	return vmath.Euler(mgl64.DegToRad(deg[0]), mgl64.DegToRad(deg[1]), mgl64.DegToRad(deg[2]))
}

func (v *Variant) worldConfig() physics.Config {
	p := v.Physics
	mode, _ := stepMode(p.Mode)
	cfg := physics.Config{
		Mode:               mode,
		FixedStep:          p.FixedStep,
		MaxFrameDelta:      p.MaxFrameDelta,
		Epsilon:            p.Epsilon,
		BoundaryIterations: p.BoundaryIterations,
		SolverIterations:   p.SolverIterations,
		SettleSpeed:        physics.DefaultConfig().SettleSpeed,
		FreezeAfter:        p.FreezeAfter,
	}
	if p.SettleSpeed > 0 {
		cfg.SettleSpeed = p.SettleSpeed
	}
	if p.Despawn != nil {
		cfg.Despawn = &physics.AABB{Min: p.Despawn.Min, Max: p.Despawn.Max}
	}
	return cfg
}

func (v *Variant) surfaces() []physics.Surface {
	if e := v.Enclosure; e != nil {
		out := physics.BoxEnclosure(e.Width, e.Depth, e.WallHeight, e.Closed, rotation(e.TiltDeg))
		if e.Friction > 0 {
			for i := range out {
				out[i].Friction = e.Friction
			}
		}
		return out
	}
	out := make([]physics.Surface, 0, len(v.Surfaces))
	for _, s := range v.Surfaces {
		role, _ := surfaceRole(s.Role)
		ps := physics.NewSurface(s.Name, role, s.Center, rotation(s.RotationDeg), s.HalfExtents[0], s.HalfExtents[1])
		if s.Friction != nil {
			ps.Friction = *s.Friction
		}
		ps.Restitution = s.Restitution
		out = append(out, ps)
	}
	return out
}

func (v *Variant) coinDef() (physics.BodyDef, error) {
	shape, err := v.Coin.Shape.physics()
	if err != nil {
		return physics.BodyDef{}, err
	}
	return physics.BodyDef{
		Kind:     physics.Dynamic,
		Shape:    shape,
		Mass:     v.Coin.Mass,
		Material: v.Coin.Material.physics(),
	}, nil
}

func (v *Variant) body(entry Body) (*physics.Body, error) {
	def, err := v.coinDef()
	if err != nil {
		return nil, err
	}
	if def.Kind, err = bodyKind(entry.Kind); err != nil {
		return nil, err
	}
	if entry.Shape != nil {
		if def.Shape, err = entry.Shape.physics(); err != nil {
			return nil, err
		}
	}
	if entry.Mass > 0 {
		def.Mass = entry.Mass
	}
	if entry.Material != nil {
		def.Material = entry.Material.physics()
	}
	def.Position = entry.Position
	def.Orientation = rotation(entry.RotationDeg)
	def.LinearVelocity = entry.Velocity
	def.AngularVelocity = entry.AngularVelocity
	return physics.NewBody(def)
}

func (v *Variant) spawnConfig() (spawn.Config, error) {
	s := v.Spawn
	var mode spawn.Mode
	switch s.Mode {
	case "bounded", "":
		mode = spawn.Bounded
	case "toggle":
		mode = spawn.Toggle
	default:
		return spawn.Config{}, fmt.Errorf("unknown spawn mode %q", s.Mode)
	}
	// the coin itself is checked by Validate
	def, _ := v.coinDef()
	return spawn.Config{
		Mode:           mode,
		Interval:       s.Interval,
		Count:          s.Count,
		Duration:       s.Duration,
		StartActive:    s.StartActive,
		MaxPerTick:     s.MaxPerTick,
		Position:       s.Position,
		PositionJitter: s.PositionJitter,
		TiltJitter:     s.TiltJitter,
		SpinImpulse:    s.SpinImpulse,
		Seed:           s.Seed,
		Body:           def,
	}, nil
}
