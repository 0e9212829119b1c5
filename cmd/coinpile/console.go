package main

import (
	"flag"
	"io"
	"strings"

	"github.com/chewxy/math32"

	"coinpile/internal/commands"
	"coinpile/internal/motion"
)

// commands returns the console vocabulary bound to a.
func (a *app) commands() *commands.Registry {
	reg := commands.NewRegistry()

	reg.Register("toggle", "start or stop spawning", newFlagSet("toggle"), func() error {
		a.sim.ToggleSpawning()
		return nil
	})
	reg.Register("stop", "cancel spawning for good", newFlagSet("stop"), func() error {
		a.sim.StopSpawning()
		return nil
	})

	tilt := newFlagSet("tilt")
	pitch := tilt.Float64("pitch", 0, "pitch in degrees")
	roll := tilt.Float64("roll", 0, "roll in degrees")
	reg.Register("tilt", "-pitch DEG -roll DEG  lean the world", tilt, func() error {
		a.tilt = motion.Tilt{Pitch: float32(*pitch) * math32.Pi / 180, Roll: float32(*roll) * math32.Pi / 180}
		a.sim.SubmitMotion(a.tilt.Sample())
		return nil
	})
	reg.Register("level", "return gravity to straight down", newFlagSet("level"), func() error {
		a.tilt.Level()
		a.sim.SubmitMotion(a.tilt.Sample())
		return nil
	})

	reg.Register("reset", "rebuild the current variant", newFlagSet("reset"), a.rebuild)

	sw := newFlagSet("variant")
	name := sw.String("name", "", "built-in name or .yaml path")
	reg.Register("variant", "-name NAME  switch variant", sw, func() error {
		v, err := load(*name, 0)
		if err != nil {
			return err
		}
		prev := a.variant
		a.variant = v
		if err := a.rebuild(); err != nil {
			a.variant = prev
			return err
		}
		a.ref = *name
		a.reframe()
		return nil
	})

	reg.Register("grid", "show or hide the grid", newFlagSet("grid"), func() error {
		a.scn.SetGridVisible(!a.scn.GridVisible)
		return nil
	})
	reg.Register("stats", "show or hide the stats overlay", newFlagSet("stats"), func() error {
		a.dbg.SetShowStats(!a.dbg.ShowStats)
		return nil
	})

	reg.Register("help", "list commands", newFlagSet("help"), func() error {
		var b strings.Builder
		reg.Help(&b)
		for _, line := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
			a.log.Log(line)
		}
		return nil
	})
	return reg
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
