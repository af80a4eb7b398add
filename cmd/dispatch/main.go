// Command dispatch resolves a mission dispatch by bouncing a ball through
// the ability/difficulty radar chart of a scenario.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xtding233/dispatch-bounce/internal/config"
	"github.com/xtding233/dispatch-bounce/internal/dispatch"
	"github.com/xtding233/dispatch-bounce/internal/logging"
	"github.com/xtding233/dispatch-bounce/internal/scenario"
	"github.com/xtding233/dispatch-bounce/internal/trace"
)

const usage = `usage: dispatch <command> [flags]

commands:
  run      resolve one dispatch and print the result
  overlap  print the overlap estimate and both polygons
  sim      repeat the resolution and print the outcome distribution
  watch    reprint the overlap estimate whenever the scenario files change
  replay   summarize a trace written by run -trace
`

type app struct {
	env    config.Env
	log    zerolog.Logger
	loader *scenario.Loader
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	env, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, env.LogLevel, env.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{env: env, log: logger, loader: scenario.NewLoader(env.ConfigDir), out: os.Stdout}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "run":
		err = a.run(ctx, args)
	case "overlap":
		err = a.overlap(args)
	case "sim":
		err = a.sim(args)
	case "watch":
		err = a.watch(ctx, args)
	case "replay":
		err = a.replay(args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error().Err(err).Str("cmd", cmd).Msg("dispatch failed")
		os.Exit(1)
	}
}

// engineFlags are shared by every command that resolves a scenario.
type engineFlags struct {
	scenario string
	task     string
	over     scenario.Overrides
	edits    editFlags
}

func (e *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&e.scenario, "scenario", "dispatch", "scenario name under <config>/scenarios")
	fs.StringVar(&e.task, "task", "", "task overlay under <config>/scenarios/<scenario>/tasks")

	fs.Func("speed", "override initial speed", floatInto(&e.over.Speed))
	fs.Func("friction", "override per-step friction", floatInto(&e.over.Friction))
	fs.Func("bounces", "override bounce budget", intInto(&e.over.MaxBounces))
	fs.Func("randomness", "override reflection randomness", floatInto(&e.over.Randomness))
	fs.Func("max-steps", "override the step cap", intInto(&e.over.MaxSteps))

	fs.Func("set", "edit an attribute: Name.field=value (field: name, player, task, auto_fail, bonus); repeatable", e.edits.set)
	fs.Func("add", "append an attribute with the given name; repeatable", e.edits.add)
	fs.Func("remove", "remove the named attribute; repeatable", e.edits.remove)
}

func floatInto(dst **float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

func intInto(dst **int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

// engine resolves the scenario layers, then applies the attribute edits.
func (a *app) engine(e *engineFlags) (scenario.Engine, error) {
	_, eng, err := a.loader.Resolve(e.scenario, e.task, e.over)
	if err != nil {
		return scenario.Engine{}, err
	}
	notes, err := e.edits.apply(&eng.Config.Attributes)
	if err != nil {
		return scenario.Engine{}, err
	}
	for _, n := range notes {
		a.log.Warn().Msg(n)
	}
	a.log.Debug().
		Str("scenario", e.scenario).
		Str("task", e.task).
		Str("version", eng.Version).
		Int("attributes", len(eng.Config.Attributes)).
		Msg("scenario resolved")
	return eng, nil
}

func (a *app) rng(seed uint64) dispatch.RandomSource {
	if seed == 0 {
		return dispatch.DefaultRNG()
	}
	return dispatch.NewSeededRNG(seed)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runOutput struct {
	Scenario string          `json:"scenario"`
	Task     string          `json:"task,omitempty"`
	Run      dispatch.RunID  `json:"run"`
	Overlap  int             `json:"overlap_percent"`
	Result   dispatch.Result `json:"result"`
	Absolute dispatch.Point  `json:"absolute"`
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	seed := fs.Uint64("seed", a.env.Seed, "RNG seed (0 = crypto RNG)")
	realtime := fs.Bool("realtime", false, "step once per DISPATCH_TICK instead of as fast as possible")
	tracePath := fs.String("trace", "", "write every frame as JSON Lines to this file (.zst compresses)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	eng, err := a.engine(&ef)
	if err != nil {
		return err
	}
	res := dispatch.NewResolver(
		dispatch.WithLogger(a.log),
		dispatch.WithLayout(eng.Layout),
		dispatch.WithRNG(a.rng(*seed)),
	)
	id, err := res.Start(eng.Config)
	if err != nil {
		return err
	}

	emit := func(dispatch.Frame) {}
	var (
		tw  *trace.Writer
		rec *trace.Recorder
	)
	if *tracePath != "" {
		tw, err = trace.Create(*tracePath)
		if err != nil {
			return err
		}
		defer tw.Close()
		rec = trace.NewRecorder(tw, id, eng.Layout)
		emit = rec.Frame
	}

	ticks := make(chan time.Time)
	if *realtime {
		t := time.NewTicker(a.env.Tick)
		defer t.Stop()
		go func() {
			for {
				select {
				case tc := <-t.C:
					select {
					case ticks <- tc:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		close(ticks)
	}

	result, err := res.Play(ctx, id, ticks, emit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			res.Reset()
		}
		return err
	}
	if rec != nil {
		if err := rec.Result(result); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
		if err := tw.Close(); err != nil {
			return fmt.Errorf("close trace: %w", err)
		}
		a.log.Debug().Str("path", *tracePath).Msg("trace written")
	}

	return a.print(runOutput{
		Scenario: ef.scenario,
		Task:     ef.task,
		Run:      id,
		Overlap:  dispatch.OverlapPercent(eng.Config.Attributes, eng.Layout),
		Result:   result,
		Absolute: eng.Layout.Absolute(result.Final),
	})
}

type overlapOutput struct {
	Overlap    int              `json:"overlap_percent"`
	Layout     dispatch.Layout  `json:"layout"`
	Ability    dispatch.Polygon `json:"ability"`
	Difficulty dispatch.Polygon `json:"difficulty"`
	AutoFail   *string          `json:"auto_fail,omitempty"`
	Bonus      bool             `json:"bonus"`
}

func (a *app) overlapReport(eng scenario.Engine) overlapOutput {
	attrs := eng.Config.Attributes
	out := overlapOutput{
		Overlap:    dispatch.OverlapPercent(attrs, eng.Layout),
		Layout:     eng.Layout,
		Ability:    dispatch.PolygonFor(attrs, dispatch.Ability, eng.Layout),
		Difficulty: dispatch.PolygonFor(attrs, dispatch.Difficulty, eng.Layout),
		Bonus:      dispatch.CheckBonus(attrs),
	}
	if i, ok := dispatch.CheckAutoFail(attrs); ok {
		name := attrs[i].Name
		out.AutoFail = &name
	}
	return out
}

func (a *app) overlap(args []string) error {
	fs := flag.NewFlagSet("overlap", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	eng, err := a.engine(&ef)
	if err != nil {
		return err
	}
	return a.print(a.overlapReport(eng))
}

func (a *app) sim(args []string) error {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	trials := fs.Int("trials", a.env.Trials, "number of resolutions")
	workers := fs.Int("workers", 0, "parallel workers (0 = auto)")
	seed := fs.Uint64("seed", a.env.Seed, "batch seed (0 = random)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	eng, err := a.engine(&ef)
	if err != nil {
		return err
	}

	start := time.Now()
	rep, err := dispatch.RunMonteCarlo(dispatch.SimParams{
		Config:  eng.Config,
		Layout:  eng.Layout,
		Trials:  *trials,
		Seed:    *seed,
		Workers: *workers,
	})
	if err != nil {
		return err
	}
	a.log.Info().
		Int("trials", rep.Trials).
		Uint64("seed", rep.Seed).
		Dur("took", time.Since(start)).
		Msg("simulation done")
	return a.print(rep)
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	interval := fs.Duration("interval", time.Second, "poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report := func() {
		eng, err := a.engine(&ef)
		if err != nil {
			a.log.Error().Err(err).Msg("reload failed")
			return
		}
		if err := a.print(a.overlapReport(eng)); err != nil {
			a.log.Error().Err(err).Msg("write report")
		}
	}
	report()

	changed := make(chan string, 1)
	w := a.loader.Watch(ef.scenario, ef.task, *interval, a.log, func(p string) {
		select {
		case changed <- p:
		default:
		}
	})
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-changed:
			a.log.Info().Str("path", p).Msg("reloading")
			report()
		}
	}
}

type replayOutput struct {
	Runs   int               `json:"runs"`
	Frames int               `json:"frames"`
	Bounce int               `json:"bounce_frames"`
	Result []dispatch.Result `json:"results"`
	Last   *dispatch.Point   `json:"last_absolute,omitempty"`
	Kinds  map[string]int    `json:"kinds"`
}

func (a *app) replay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("replay needs exactly one trace file")
	}
	entries, err := trace.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	out := replayOutput{Kinds: map[string]int{}}
	runs := map[uint64]struct{}{}
	for _, e := range entries {
		out.Kinds[e.Kind]++
		runs[e.Run] = struct{}{}
		switch {
		case e.Frame != nil:
			out.Frames++
			if e.Frame.Bounced {
				out.Bounce++
			}
		case e.Result != nil:
			out.Result = append(out.Result, *e.Result)
		}
		p := e.Absolute
		out.Last = &p
	}
	out.Runs = len(runs)
	return a.print(out)
}
