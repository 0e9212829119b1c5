// Command coinsim runs a coin-pile variant without a window and prints what happened.
//
//	coinsim -variant jar -seconds 20 -script pour.txt
//
// A script is one command per line; run "coinsim -help-script" for the vocabulary.
// Whatever time the script leaves before -seconds is run at the end.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"coinpile/internal/logger"
	"coinpile/internal/motion"
	"coinpile/internal/variant"
)

type options struct {
	variant    string
	seconds    float64
	dt         float64
	script     string
	seed       uint64
	count      int
	swayAmp    float64
	swayPeriod float64
	logPath    string
	verbose    bool
}

func main() {
	var o options
	flag.StringVar(&o.variant, "variant", "tabletop", "built-in variant name or path to a .yaml file")
	flag.Float64Var(&o.seconds, "seconds", 10, "simulated seconds to run in total")
	flag.Float64Var(&o.dt, "dt", 1.0/60, "frame delta in seconds")
	flag.StringVar(&o.script, "script", "", "script file to run first (- for stdin)")
	flag.Uint64Var(&o.seed, "seed", 0, "override the spawn seed (0 keeps the variant's)")
	flag.IntVar(&o.count, "count", 0, "override the spawn count (0 keeps the variant's)")
	flag.Float64Var(&o.swayAmp, "sway", 0, "rock gravity with this amplitude in radians")
	flag.Float64Var(&o.swayPeriod, "sway-period", 4, "sway period in seconds")
	flag.StringVar(&o.logPath, "log", logger.DefaultPath, "log file (empty keeps the log in memory)")
	flag.BoolVar(&o.verbose, "v", false, "print the log when done")
	list := flag.Bool("list", false, "list built-in variants and exit")
	helpScript := flag.Bool("help-script", false, "describe the script commands and exit")
	flag.Parse()

	switch {
	case *list:
		for _, n := range variant.Names() {
			fmt.Println(n)
		}
		return
	case *helpScript:
		newRunner(nil, 0, os.Stdout).commands().Help(os.Stdout)
		return
	}

	if err := run(o, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "coinsim:", err)
		os.Exit(1)
	}
}

func run(o options, stdin io.Reader, out io.Writer) error {
	if !(o.dt > 0) {
		return fmt.Errorf("dt must be positive, got %g", o.dt)
	}
	v, err := variant.Open(o.variant)
	if err != nil {
		return err
	}
	if v, err = override(v, o); err != nil {
		return err
	}

	log := logger.New(o.logPath)
	s, err := variant.Build(v, log)
	if err != nil {
		return err
	}
	r := newRunner(s, o.dt, out)
	if o.swayAmp != 0 {
		r.sway = motion.Sway{Amplitude: float32(o.swayAmp), Period: float32(o.swayPeriod)}
		r.swaying = o.swayPeriod > 0
	}

	if o.script != "" {
		src := stdin
		if o.script != "-" {
			f, err := os.Open(o.script)
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}
		if err := r.commands().RunScript(src); err != nil {
			return fmt.Errorf("script %s: %w", o.script, err)
		}
	}
	if rest := o.seconds - r.elapsed; rest > 0 {
		if err := r.advance(rest); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "variant %s  %.2fs in steps of %.4fs\n", v.Name, r.elapsed, o.dt)
	r.printStats()
	r.summarize().print(out)
	if o.verbose {
		for _, line := range log.Lines() {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

// override applies command-line spawn overrides to a copy, leaving v untouched.
func override(v *variant.Variant, o options) (*variant.Variant, error) {
	if v.Spawn == nil || (o.seed == 0 && o.count == 0) {
		return v, nil
	}
	c, err := v.Clone()
	if err != nil {
		return nil, err
	}
	if o.seed != 0 {
		c.Spawn.Seed = o.seed
	}
	if o.count != 0 {
		c.Spawn.Count = o.count
	}
	return c, nil
}
