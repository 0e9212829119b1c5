package spawn

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/physics"
)

type recorder struct {
	bodies []*physics.Body
	fail   error
}

func (r *recorder) AddBody(b *physics.Body) (physics.BodyID, error) {
	if r.fail != nil {
		return 0, r.fail
	}
	r.bodies = append(r.bodies, b)
	return physics.BodyID(len(r.bodies)), nil
}

func coinTemplate() physics.BodyDef {
	return physics.BodyDef{Shape: physics.Cylinder(0.2, 0.04), Mass: 1, Material: physics.DefaultMaterial()}
}

func mustNew(t *testing.T, cfg Config, r *recorder) *Scheduler {
	t.Helper()
	s, err := New(cfg, r, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// run ticks s at the given rate from start for seconds and returns how many bodies spawned.
func run(t *testing.T, s *Scheduler, start, seconds, dt float64) int {
	t.Helper()
	total := 0
	n := int(math.Round(seconds / dt))
	for i := 0; i <= n; i++ {
		ids, err := s.OnTick(start + float64(i)*dt)
		if err != nil {
			t.Fatalf("OnTick: %v", err)
		}
		total += len(ids)
	}
	return total
}

func TestConfigValidate(t *testing.T) {
	base := Config{Mode: Bounded, Interval: 0.1, Count: 5, Body: coinTemplate()}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"zero interval", func(c *Config) { c.Interval = 0 }, false},
		{"inf interval", func(c *Config) { c.Interval = math.Inf(1) }, false},
		{"negative count", func(c *Config) { c.Count = -1 }, false},
		{"bounded without budget", func(c *Config) { c.Count = 0 }, false},
		{"toggle without budget", func(c *Config) { c.Count = 0; c.Mode = Toggle }, true},
		{"bad template", func(c *Config) { c.Body.Shape = physics.Cylinder(0, 1) }, false},
		{"nan position", func(c *Config) { c.Position = mgl64.Vec3{math.NaN(), 0, 0} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestTemplateErrorIsTyped(t *testing.T) {
	cfg := Config{Mode: Toggle, Interval: 1, Body: physics.BodyDef{Shape: physics.Box(1, -1, 1)}}
	_, err := New(cfg, &recorder{}, nil)
	var se *physics.InvalidShapeError
	if !errors.As(err, &se) {
		t.Fatalf("New = %v, want wrapped *InvalidShapeError", err)
	}
}

func TestBoundedDuration(t *testing.T) {
	r := &recorder{}
	s := mustNew(t, Config{Mode: Bounded, Interval: 0.1, Duration: 1.0, Body: coinTemplate()}, r)
	if got := run(t, s, 0, 3, 1.0/60); got != 10 {
		t.Errorf("spawned %d bodies, want 10", got)
	}
	if !s.Done() || s.Active() {
		t.Errorf("Done=%v Active=%v, want finished", s.Done(), s.Active())
	}
	if got := run(t, s, 3, 2, 1.0/60); got != 0 {
		t.Errorf("spawned %d more bodies after finishing", got)
	}
	// a finished bounded scheduler cannot be toggled back on
	if s.Toggle() {
		t.Error("Toggle revived a finished scheduler")
	}
}

func TestBoundedCount(t *testing.T) {
	r := &recorder{}
	s := mustNew(t, Config{Mode: Bounded, Interval: 0.125, Count: 5, Body: coinTemplate()}, r)
	if got := run(t, s, 10, 5, 1.0/30); got != 5 {
		t.Errorf("spawned %d bodies, want 5", got)
	}
	if s.Spawned() != 5 || len(r.bodies) != 5 {
		t.Errorf("Spawned()=%d recorded=%d, want 5", s.Spawned(), len(r.bodies))
	}
}

func TestNoDrift(t *testing.T) {
	// a jittery tick rate must not shift the spawn grid
	r := &recorder{}
	s := mustNew(t, Config{Mode: Toggle, StartActive: true, Interval: 0.125, Body: coinTemplate()}, r)
	now := 0.0
	total := 0
	for i := 0; now <= 100; i++ {
		ids, err := s.OnTick(now)
		if err != nil {
			t.Fatal(err)
		}
		total += len(ids)
		now += 0.01 + 0.03*float64(i%3)
	}
	// spawns at 0, 0.125, ... 100.0 at most; ticks are at most 0.07 apart so none are lost
	if total < 800 || total > 801 {
		t.Errorf("spawned %d bodies over 100s at 8/s, want 800 or 801", total)
	}
}

func TestCatchUpLimitedPerTick(t *testing.T) {
	r := &recorder{}
	s := mustNew(t, Config{Mode: Toggle, StartActive: true, Interval: 0.1, MaxPerTick: 3, Body: coinTemplate()}, r)
	if ids, _ := s.OnTick(0); len(ids) != 1 {
		t.Fatalf("first tick spawned %d, want 1", len(ids))
	}
	if ids, _ := s.OnTick(1); len(ids) != 3 {
		t.Errorf("late tick spawned %d, want 3 (MaxPerTick)", len(ids))
	}
	if ids, _ := s.OnTick(1); len(ids) != 3 {
		t.Errorf("second late tick spawned %d, want 3 more backlog", len(ids))
	}
}

func TestDoubleToggleRestoresState(t *testing.T) {
	for _, startActive := range []bool{false, true} {
		r := &recorder{}
		s := mustNew(t, Config{Mode: Toggle, StartActive: startActive, Interval: 0.5, Body: coinTemplate()}, r)
		s.OnTick(0)
		s.OnTick(0.2)
		s.Toggle()
		s.Toggle()
		if s.Active() != startActive {
			t.Errorf("startActive=%v: Active() = %v after two toggles", startActive, s.Active())
		}
		if startActive {
			// the timeline is kept: next spawn still due at 0.5, not at 0.3
			if ids, _ := s.OnTick(0.3); len(ids) != 0 {
				t.Error("double toggle re-anchored the timeline")
			}
			if ids, _ := s.OnTick(0.5); len(ids) != 1 {
				t.Error("spawn due at 0.5 was lost")
			}
		}
	}
}

func TestToggleReanchors(t *testing.T) {
	r := &recorder{}
	s := mustNew(t, Config{Mode: Toggle, Interval: 1, Body: coinTemplate()}, r)
	if ids, _ := s.OnTick(0); len(ids) != 0 {
		t.Fatal("inactive toggle scheduler spawned")
	}
	if !s.Toggle() {
		t.Fatal("Toggle() = false, want active")
	}
	if ids, _ := s.OnTick(2.3); len(ids) != 1 {
		t.Fatal("first tick after toggling on did not spawn")
	}
	if ids, _ := s.OnTick(3.2); len(ids) != 0 {
		t.Error("spawned before one interval after the new anchor")
	}
	if ids, _ := s.OnTick(3.3); len(ids) != 1 {
		t.Error("spawn due at 3.3 missing")
	}
	s.Toggle()
	if ids, _ := s.OnTick(10); len(ids) != 0 {
		t.Error("toggled-off scheduler spawned")
	}
	s.Toggle()
	if ids, _ := s.OnTick(10.05); len(ids) != 1 {
		t.Error("re-enabled scheduler did not spawn at once")
	}
}

func TestStopCancels(t *testing.T) {
	r := &recorder{}
	s := mustNew(t, Config{Mode: Bounded, Interval: 0.1, Duration: 10, Body: coinTemplate()}, r)
	run(t, s, 0, 0.45, 0.05)
	before := s.Spawned()
	s.Stop()
	if got := run(t, s, 0.5, 5, 0.05); got != 0 {
		t.Errorf("stopped scheduler spawned %d bodies", got)
	}
	if before != 5 || len(r.bodies) != before {
		t.Errorf("spawned %d (recorded %d) before Stop, want 5", before, len(r.bodies))
	}
	s.Stop()
	if !s.Done() {
		t.Error("Done() = false after Stop")
	}
}

func TestSpawnPose(t *testing.T) {
	r := &recorder{}
	cfg := Config{
		Mode:           Bounded,
		Interval:       0.1,
		Count:          20,
		MaxPerTick:     20,
		Position:       mgl64.Vec3{0, 1.5, 0},
		PositionJitter: 0.1,
		TiltJitter:     1,
		SpinImpulse:    0.25,
		Seed:           7,
		Body:           coinTemplate(),
	}
	s := mustNew(t, cfg, r)
	s.OnTick(0)
	s.OnTick(5)
	if len(r.bodies) != 20 {
		t.Fatalf("spawned %d, want 20", len(r.bodies))
	}
	spinning := 0
	for _, b := range r.bodies {
		if b.Kind != physics.Dynamic {
			t.Errorf("spawned kind %v", b.Kind)
		}
		p := b.Position
		if p[1] != 1.5 || math.Abs(p[0]) > 0.1 || math.Abs(p[2]) > 0.1 {
			t.Errorf("position %v outside jitter", p)
		}
		if l := b.Orientation.Len(); math.Abs(l-1) > 1e-9 {
			t.Errorf("orientation not unit: %v", l)
		}
		if b.AngularVelocity.Len() > 0 {
			spinning++
		}
	}
	if spinning != 20 {
		t.Errorf("%d of 20 bodies received a spin impulse", spinning)
	}

	// same seed, same bodies
	r2 := &recorder{}
	s2 := mustNew(t, cfg, r2)
	s2.OnTick(0)
	s2.OnTick(5)
	for i := range r.bodies {
		if r.bodies[i].Position != r2.bodies[i].Position || r.bodies[i].Orientation != r2.bodies[i].Orientation {
			t.Fatalf("body %d differs between runs with the same seed", i)
		}
	}
}

func TestAddBodyFailure(t *testing.T) {
	boom := errors.New("full")
	r := &recorder{fail: boom}
	s := mustNew(t, Config{Mode: Toggle, StartActive: true, Interval: 0.1, Body: coinTemplate()}, r)
	if _, err := s.OnTick(0); !errors.Is(err, boom) {
		t.Fatalf("OnTick = %v, want wrapped spawner error", err)
	}
	if s.Spawned() != 0 {
		t.Errorf("Spawned() = %d after failure", s.Spawned())
	}
	r.fail = nil
	if ids, _ := s.OnTick(0.1); len(ids) != 1 {
		t.Error("scheduler did not recover after a failed spawn")
	}
}
