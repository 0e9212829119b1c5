package main

import (
	"flag"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"

	"coinpile/internal/commands"
	"coinpile/internal/motion"
	"coinpile/internal/physics"
	"coinpile/internal/sim"
)

// runner drives a simulation with a fixed frame delta and feeds it motion samples.
type runner struct {
	sim     *sim.Simulation
	dt      float64
	elapsed float64
	out     io.Writer

	tilt    motion.Tilt
	tilted  bool
	sway    motion.Sway
	swaying bool

	spawned []physics.BodyID
}

func newRunner(s *sim.Simulation, dt float64, out io.Writer) *runner {
	return &runner{sim: s, dt: dt, out: out}
}

// advance ticks until seconds more have elapsed. Frames are whole; the last may overshoot by less than dt.
func (r *runner) advance(seconds float64) error {
	end := r.elapsed + seconds
	for r.elapsed < end-1e-9 {
		switch {
		case r.swaying:
			r.sim.SubmitMotion(r.sway.At(r.elapsed))
		case r.tilted:
			r.sim.SubmitMotion(r.tilt.Sample())
			r.tilted = false
		}
		ids, err := r.sim.Tick(r.dt)
		if err != nil {
			return err
		}
		r.spawned = append(r.spawned, ids...)
		r.elapsed += r.dt
	}
	return nil
}

// commands returns the script vocabulary bound to r.
func (r *runner) commands() *commands.Registry {
	reg := commands.NewRegistry()

	wait := newFlagSet("wait")
	secs := wait.Float64("s", 1, "seconds to run")
	reg.Register("wait", "-s SECONDS  run the simulation", wait, func() error {
		if !(*secs >= 0) || math.IsInf(*secs, 0) {
			return fmt.Errorf("wait: bad duration %g", *secs)
		}
		return r.advance(*secs)
	})

	reg.Register("toggle", "start or stop spawning", newFlagSet("toggle"), func() error {
		r.sim.ToggleSpawning()
		return nil
	})

	reg.Register("stop", "cancel spawning for good", newFlagSet("stop"), func() error {
		r.sim.StopSpawning()
		return nil
	})

	tilt := newFlagSet("tilt")
	pitch := tilt.Float64("pitch", 0, "pitch in degrees (toward -Z is negative)")
	roll := tilt.Float64("roll", 0, "roll in degrees (toward +X is positive)")
	reg.Register("tilt", "-pitch DEG -roll DEG  lean the world", tilt, func() error {
		r.swaying = false
		r.tilt = motion.Tilt{Pitch: float32(*pitch) * math32.Pi / 180, Roll: float32(*roll) * math32.Pi / 180}
		r.tilted = true
		return nil
	})

	reg.Register("level", "return gravity to straight down", newFlagSet("level"), func() error {
		r.swaying = false
		r.tilt.Level()
		r.tilted = true
		return nil
	})

	sway := newFlagSet("sway")
	amp := sway.Float64("amp", 0.3, "amplitude in radians")
	period := sway.Float64("period", 4, "period in seconds (0 turns sway off)")
	reg.Register("sway", "-amp RAD -period SECONDS  rock the world back and forth", sway, func() error {
		r.sway = motion.Sway{Amplitude: float32(*amp), Period: float32(*period)}
		r.swaying = *period > 0
		if !r.swaying {
			r.tilt.Level()
			r.tilted = true
		}
		return nil
	})

	reg.Register("status", "print the current stats", newFlagSet("status"), func() error {
		r.printStats()
		return nil
	})
	return reg
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (r *runner) printStats() {
	for _, line := range r.sim.Stats().Lines() {
		fmt.Fprintln(r.out, line)
	}
}

// summary is the end-of-run report.
type summary struct {
	Spawned  int
	Census   physics.Census
	Lowest   float64 // lowest body center
	Highest  float64 // highest body center
	Warnings int
}

func (r *runner) summarize() summary {
	st := r.sim.Stats()
	sm := summary{Spawned: st.Spawned, Census: st.Census, Warnings: len(st.Last.Warnings)}
	bodies := r.sim.Snapshot()
	if len(bodies) == 0 {
		return sm
	}
	sm.Lowest, sm.Highest = math.Inf(1), math.Inf(-1)
	for _, b := range bodies {
		sm.Lowest = min(sm.Lowest, b.Position[1])
		sm.Highest = max(sm.Highest, b.Position[1])
	}
	return sm
}

func (s summary) print(w io.Writer) {
	c := s.Census
	fmt.Fprintf(w, "spawned %d  live %d  dynamic %d  frozen %d  warnings %d\n", s.Spawned, c.Total(), c.Dynamic, c.Frozen, s.Warnings)
	if c.Total() > 0 {
		fmt.Fprintf(w, "height %.3f .. %.3f\n", s.Lowest, s.Highest)
	}
}
