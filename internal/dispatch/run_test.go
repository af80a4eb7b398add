package dispatch

import (
	"math"
	"testing"
)

func TestEndToEndScenario(t *testing.T) {
	cfg := Config{
		Attributes: sheet([]int{70, 80, 60, 75, 85}, []int{50, 60, 70, 55, 65}),
		Physics:    Physics{Speed: 8, Friction: 0.98, MaxBounces: 15, Randomness: 0.5},
	}
	for seed := uint64(1); seed <= 200; seed++ {
		run, err := NewRun(cfg, DefaultLayout(), NewSeededRNG(seed))
		if err != nil {
			t.Fatal(err)
		}
		res := run.Complete()
		if res.Outcome != OutcomeSuccess && res.Outcome != OutcomeFailure {
			t.Fatalf("seed %d: outcome %v not in {success, failure}", seed, res.Outcome)
		}
		if res.Bounces > 15 {
			t.Fatalf("seed %d: %d bounces exceeds budget", seed, res.Bounces)
		}
		if res.Steps == 0 || res.Steps > DefaultMaxSteps {
			t.Fatalf("seed %d: steps=%d", seed, res.Steps)
		}
		if res.AutoFail != -1 {
			t.Fatalf("seed %d: unexpected auto-fail %d", seed, res.AutoFail)
		}
	}
}

func TestRunReproducibleWithSeed(t *testing.T) {
	cfg := DefaultConfig()
	a, _ := NewRun(cfg, DefaultLayout(), NewSeededRNG(7))
	b, _ := NewRun(cfg, DefaultLayout(), NewSeededRNG(7))
	for !a.Done() {
		fa, _ := a.Step()
		fb, _ := b.Step()
		if fa != fb {
			t.Fatalf("same seed diverged at step %d: %+v vs %+v", fa.Step, fa, fb)
		}
	}
	ra, _ := a.Result()
	rb, _ := b.Result()
	if ra != rb {
		t.Fatalf("results differ: %+v vs %+v", ra, rb)
	}
}

func TestAutoFailPlacement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Attributes.SetAutoFail(2, Threshold(40)) // Tech 60 >= 40
	cfg.Attributes.SetAutoFail(4, Threshold(10)) // also trips, but later in order
	run, err := NewRun(cfg, DefaultLayout(), NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	res, ok := run.Result()
	if !ok {
		t.Fatalf("auto-fail must be terminal before any step")
	}
	if res.Outcome != OutcomeFailure || res.Reason != ReasonAutoFail || res.AutoFail != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Steps != 0 || res.Bounces != 0 {
		t.Fatalf("no physics should run: %+v", res)
	}
	angle := 2*(2*math.Pi/5) - math.Pi/2
	r := 0.4 * 260
	if !near(res.Final.X, math.Cos(angle)*r) || !near(res.Final.Y, math.Sin(angle)*r) {
		t.Fatalf("final %v not on axis 2 at radius %v", res.Final, r)
	}
	if _, stepped := run.Step(); stepped {
		t.Fatalf("terminal run must not step")
	}
}

func TestDegenerateDifficultyFails(t *testing.T) {
	cfg := Config{Attributes: sheet([]int{90, 90, 90}, []int{0, 0, 0}), Physics: DefaultPhysics()}
	run, err := NewRun(cfg, DefaultLayout(), NewSeededRNG(3))
	if err != nil {
		t.Fatal(err)
	}
	res, ok := run.Result()
	if !ok || res.Outcome != OutcomeFailure || res.Reason != ReasonDegenerate {
		t.Fatalf("want immediate degenerate failure, got %+v ok=%v", res, ok)
	}
	if res.Final != (Point{}) {
		t.Fatalf("degenerate failure rests at the center, got %v", res.Final)
	}
}

func TestTooFewAttributes(t *testing.T) {
	cfg := Config{Attributes: sheet([]int{1, 2}, []int{3, 4}), Physics: DefaultPhysics()}
	if _, err := NewRun(cfg, DefaultLayout(), nil); err != ErrTooFewAttributes {
		t.Fatalf("want ErrTooFewAttributes, got %v", err)
	}
}

func TestOutcomeClassification(t *testing.T) {
	task := []int{50, 50, 50, 50, 50}
	cases := []struct {
		name   string
		player []int
		bonus  bool
		want   Outcome
	}{
		{"covering ability", []int{100, 100, 100, 100, 100}, false, OutcomeSuccess},
		{"covering ability with bonus", []int{100, 100, 100, 100, 100}, true, OutcomeBonus},
		{"empty ability", []int{0, 0, 0, 0, 0}, true, OutcomeFailure},
	}
	for _, c := range cases {
		cfg := Config{Attributes: sheet(c.player, task), Physics: DefaultPhysics()}
		if c.bonus {
			cfg.Attributes.SetBonus(3, Threshold(0))
		}
		for seed := uint64(1); seed <= 50; seed++ {
			run, _ := NewRun(cfg, DefaultLayout(), NewSeededRNG(seed))
			if res := run.Complete(); res.Outcome != c.want {
				t.Fatalf("%s seed %d: got %v want %v (%+v)", c.name, seed, res.Outcome, c.want, res)
			}
		}
	}
}

func TestStepCapTerminates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics = Physics{Speed: 5, Friction: 1, MaxBounces: math.MaxInt32, Randomness: 0.3, MaxSteps: 500}
	run, _ := NewRun(cfg, DefaultLayout(), NewSeededRNG(11))
	res := run.Complete()
	if res.Reason != ReasonStepCap || res.Steps != 500 {
		t.Fatalf("frictionless run must stop at the step cap: %+v", res)
	}
}

func TestZeroBounceBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics = Physics{Speed: 8, Friction: 1, MaxBounces: 0, MaxSteps: 1000}
	run, _ := NewRun(cfg, DefaultLayout(), NewSeededRNG(5))
	res := run.Complete()
	if res.Reason != ReasonBounceBudget || res.Bounces != 0 {
		t.Fatalf("first exit must settle: %+v", res)
	}
	task := PolygonFor(cfg.Attributes, Difficulty, Layout{MaxRadius: 260})
	if task.Contains(res.Final) {
		t.Fatalf("settled point should be outside the difficulty polygon: %v", res.Final)
	}
}

func TestReflectionDampsSpeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics = Physics{Speed: 8, Friction: 1, MaxBounces: 3, Randomness: 0}
	run, _ := NewRun(cfg, DefaultLayout(), NewSeededRNG(9))
	for {
		f, ok := run.Step()
		if !ok {
			t.Fatalf("run ended before bouncing")
		}
		if f.Terminal {
			t.Fatalf("run ended before bouncing: %+v", f)
		}
		if f.Bounced {
			speed := math.Hypot(f.Velocity.X, f.Velocity.Y)
			if !near(speed, 8*0.9) {
				t.Fatalf("speed after first bounce=%v want 7.2", speed)
			}
			// with zero jitter the ball heads straight back at the center
			toCenter := math.Atan2(-f.Position.Y, -f.Position.X)
			heading := math.Atan2(f.Velocity.Y, f.Velocity.X)
			if d := math.Abs(math.Remainder(toCenter-heading, 2*math.Pi)); d > 1e-9 {
				t.Fatalf("heading %v not toward center %v", heading, toCenter)
			}
			return
		}
	}
}

func TestRunConfigIsSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	run, _ := NewRun(cfg, DefaultLayout(), NewSeededRNG(2))
	cfg.Attributes.SetTaskValue(0, 0)
	cfg.Physics.Speed = 100
	got := run.Config()
	if got.Attributes[0].TaskValue != 50 || got.Physics.Speed != 8 {
		t.Fatalf("run observed edits made after start: %+v", got)
	}
}
