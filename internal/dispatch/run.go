package dispatch

import "math"

// Frame is the observable state after one step.
type Frame struct {
	Step     int     `json:"step"`
	Position Point   `json:"position"` // relative to the layout center
	Velocity Point   `json:"velocity"`
	Bounces  int     `json:"bounces"`
	Bounced  bool    `json:"bounced,omitempty"` // this step reflected off the boundary
	Outcome  Outcome `json:"outcome"`           // OutcomeNone until terminal
	Terminal bool    `json:"terminal"`
}

// Run is one bounce simulation over a frozen config. It advances one step
// per call to Step and is not safe for concurrent use; Resolver adds the
// locking and cancellation a shared run needs.
//
// Polygons are held relative to the center so positions and vertices share
// one frame.
type Run struct {
	cfg        Config
	rng        RandomSource
	ability    Polygon
	difficulty Polygon

	pos, vel Point
	steps    int
	bounces  int
	result   *Result
}

// NewRun snapshots cfg and prepares a run. The auto-fail and degenerate
// difficulty checks happen here, so a returned run may already be terminal.
func NewRun(cfg Config, l Layout, rng RandomSource) (*Run, error) {
	snap, err := cfg.snapshot()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	local := Layout{MaxRadius: l.MaxRadius}
	r := &Run{
		cfg:        snap,
		rng:        rng,
		ability:    PolygonFor(snap.Attributes, Ability, local),
		difficulty: PolygonFor(snap.Attributes, Difficulty, local),
	}

	if i, ok := CheckAutoFail(snap.Attributes); ok {
		// placed on the tripping axis at its threshold, not simulated
		r.pos = local.AxisPoint(i, len(snap.Attributes), *snap.Attributes[i].AutoFail)
		r.finish(OutcomeFailure, ReasonAutoFail, i)
		return r, nil
	}
	if r.difficulty.Degenerate() {
		r.finish(OutcomeFailure, ReasonDegenerate, -1)
		return r, nil
	}

	angle := uniformAngle(rng)
	speed := snap.Physics.Speed
	r.vel = Point{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
	return r, nil
}

// Step advances the ball once. It returns false without touching state
// when the run is already terminal.
func (r *Run) Step() (Frame, bool) {
	if r.result != nil {
		return r.Frame(), false
	}
	p := r.cfg.Physics

	r.pos = r.pos.Add(r.vel)
	r.vel = Point{X: r.vel.X * p.Friction, Y: r.vel.Y * p.Friction}
	r.steps++

	bounced := false
	if !r.difficulty.Contains(r.pos) {
		if r.bounces >= p.MaxBounces {
			r.settle(ReasonBounceBudget)
			return r.Frame(), true
		}
		r.reflect()
		bounced = true
	}

	switch {
	case math.Abs(r.vel.X) <= restSpeed && math.Abs(r.vel.Y) <= restSpeed:
		r.settle(ReasonAtRest)
	case r.steps >= p.MaxSteps:
		r.settle(ReasonStepCap)
	}
	f := r.Frame()
	f.Bounced = bounced
	return f, true
}

// reflect turns the ball back toward the center with a random jitter,
// keeping 90% of its current speed.
func (r *Run) reflect() {
	speed := math.Hypot(r.vel.X, r.vel.Y) * bounceDamping
	angle := math.Atan2(-r.pos.Y, -r.pos.X) + jitter(r.rng, r.cfg.Physics.Randomness)
	r.vel = Point{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
	r.bounces++
}

// settle classifies the resting position against the ability polygon.
func (r *Run) settle(reason Reason) {
	outcome := OutcomeFailure
	if r.ability.Contains(r.pos) {
		outcome = OutcomeSuccess
		if CheckBonus(r.cfg.Attributes) {
			outcome = OutcomeBonus
		}
	}
	r.finish(outcome, reason, -1)
}

func (r *Run) finish(o Outcome, reason Reason, autoFail int) {
	r.vel = Point{}
	r.result = &Result{
		Outcome:  o,
		Final:    r.pos,
		Steps:    r.steps,
		Bounces:  r.bounces,
		Reason:   reason,
		AutoFail: autoFail,
	}
}

// Frame reports the current state without advancing.
func (r *Run) Frame() Frame {
	f := Frame{Step: r.steps, Position: r.pos, Velocity: r.vel, Bounces: r.bounces}
	if r.result != nil {
		f.Outcome = r.result.Outcome
		f.Terminal = true
	}
	return f
}

// Done reports whether the run reached a terminal outcome.
func (r *Run) Done() bool { return r.result != nil }

// Result returns the terminal record; ok is false while the run is live.
func (r *Run) Result() (Result, bool) {
	if r.result == nil {
		return Result{}, false
	}
	return *r.result, true
}

// Config returns the snapshot the run was started with.
func (r *Run) Config() Config {
	return Config{Attributes: r.cfg.Attributes.Clone(), Physics: r.cfg.Physics}
}

// Complete steps the run to its end and returns the result. MaxSteps
// bounds the loop.
func (r *Run) Complete() Result {
	for !r.Done() {
		r.Step()
	}
	res, _ := r.Result()
	return res
}
