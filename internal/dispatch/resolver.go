package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrRunActive    = errors.New("a resolution is already running")
	ErrRunCancelled = errors.New("resolution was reset")
)

// State is the resolver lifecycle: Idle → Running → Terminal, and back to
// Idle on Reset.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// RunID identifies one started run. Every Start and Reset moves the
// resolver to a new id, so steps scheduled for an older run are ignored.
type RunID uint64

type Option func(*Resolver)

func WithLogger(l zerolog.Logger) Option { return func(r *Resolver) { r.log = l } }

func WithRNG(rng RandomSource) Option { return func(r *Resolver) { r.rng = rng } }

func WithLayout(l Layout) Option { return func(r *Resolver) { r.layout = l } }

// Resolver owns at most one active run and drives it through the
// resolution procedure. The stepping function is exposed directly so any
// scheduler (a ticker, a render loop, a test) can advance it.
type Resolver struct {
	mu     sync.Mutex
	layout Layout
	rng    RandomSource
	log    zerolog.Logger

	state State
	id    RunID
	run   *Run
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		layout: DefaultLayout(),
		rng:    DefaultRNG(),
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Layout returns the frame runs are simulated in.
func (r *Resolver) Layout() Layout { return r.layout }

// Start begins a fresh run from cfg. cfg is copied, so edits made after
// Start do not affect the run. Starting while a run is active is refused
// with ErrRunActive and leaves that run untouched.
//
// An auto-fail or a zero-area difficulty polygon ends the run here; the
// resolver is then already Terminal.
func (r *Resolver) Start(cfg Config) (RunID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRunning {
		r.log.Warn().Uint64("run", uint64(r.id)).Msg("start ignored: run in progress")
		return r.id, ErrRunActive
	}
	run, err := NewRun(cfg, r.layout, r.rng)
	if err != nil {
		return 0, err
	}
	r.id++
	r.run = run
	r.state = StateRunning

	p := run.cfg.Physics
	r.log.Debug().
		Uint64("run", uint64(r.id)).
		Int("attributes", len(run.cfg.Attributes)).
		Float64("speed", p.Speed).
		Float64("friction", p.Friction).
		Int("max_bounces", p.MaxBounces).
		Float64("randomness", p.Randomness).
		Msg("run started")

	if run.Done() {
		r.terminate()
	}
	return r.id, nil
}

// Step advances run id by one step. It returns false and changes nothing
// when id is not the active run (finished, reset, or superseded).
func (r *Resolver) Step(id RunID) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != r.id || r.state != StateRunning {
		return Frame{}, false
	}
	f, ok := r.run.Step()
	if ok && f.Terminal {
		r.terminate()
	}
	return f, ok
}

// terminate moves to Terminal and logs the result. Caller holds mu.
func (r *Resolver) terminate() {
	r.state = StateTerminal
	res, _ := r.run.Result()
	ev := r.log.Info().
		Uint64("run", uint64(r.id)).
		Stringer("outcome", res.Outcome).
		Str("reason", string(res.Reason)).
		Int("steps", res.Steps).
		Int("bounces", res.Bounces)
	if res.AutoFail >= 0 {
		ev = ev.Int("auto_fail", res.AutoFail).Str("attribute", r.run.cfg.Attributes[res.AutoFail].Name)
	}
	ev.Msg("run finished")
}

// Reset cancels any run and returns to Idle. Steps already scheduled for
// the cancelled run become no-ops.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRunning {
		r.log.Debug().Uint64("run", uint64(r.id)).Msg("run cancelled")
	}
	r.id++
	r.run = nil
	r.state = StateIdle
}

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Frame is the current observable state; the zero frame when Idle.
func (r *Resolver) Frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == nil {
		return Frame{}
	}
	return r.run.Frame()
}

// Result returns the terminal record of the current run, if any.
func (r *Resolver) Result() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == nil {
		return Result{}, false
	}
	return r.run.Result()
}

// resultFor returns the result of run id if it is still current.
func (r *Resolver) resultFor(id RunID) (Result, Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.id || r.run == nil {
		return Result{}, Frame{}, false
	}
	res, ok := r.run.Result()
	return res, r.run.Frame(), ok
}

// Resolve starts a run and steps it to completion without pausing.
func (r *Resolver) Resolve(cfg Config) (Result, error) {
	id, err := r.Start(cfg)
	if err != nil {
		return Result{}, err
	}
	for {
		f, ok := r.Step(id)
		if !ok || f.Terminal {
			break
		}
	}
	res, _, ok := r.resultFor(id)
	if !ok {
		return Result{}, ErrRunCancelled
	}
	return res, nil
}

// Play steps run id once per tick, handing every frame to emit, and
// returns the terminal result. It stops with ErrRunCancelled if the run
// is reset or replaced, or with ctx.Err() when ctx ends.
func (r *Resolver) Play(ctx context.Context, id RunID, ticks <-chan time.Time, emit func(Frame)) (Result, error) {
	if emit == nil {
		emit = func(Frame) {}
	}
	if res, f, ok := r.resultFor(id); ok {
		// already terminal at start (auto-fail, degenerate polygon)
		emit(f)
		return res, nil
	}
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-ticks:
		}
		f, ok := r.Step(id)
		if !ok {
			return Result{}, ErrRunCancelled
		}
		emit(f)
		if f.Terminal {
			res, _, _ := r.resultFor(id)
			return res, nil
		}
	}
}
