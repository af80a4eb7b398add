package dispatch

import "errors"

const (
	// DefaultMaxSteps caps a run that friction alone would never stop.
	DefaultMaxSteps = 10000

	// bounceDamping is the share of speed kept through a reflection.
	bounceDamping = 0.9

	// restSpeed is the per-axis velocity at or below which the ball has settled.
	restSpeed = 0.1
)

var ErrTooFewAttributes = errors.New("at least 3 attributes are required")

// Physics tunes the bounce simulation. Only MaxSteps is corrected here;
// range limits belong to whoever edits these values.
type Physics struct {
	Speed      float64 `json:"speed" yaml:"speed"`             // initial velocity magnitude
	Friction   float64 `json:"friction" yaml:"friction"`       // per-step velocity multiplier
	MaxBounces int     `json:"max_bounces" yaml:"max_bounces"` // reflection budget
	Randomness float64 `json:"randomness" yaml:"randomness"`   // jitter spread in radians
	MaxSteps   int     `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
}

// DefaultPhysics mirrors the stock tuning panel.
func DefaultPhysics() Physics {
	return Physics{
		Speed:      8,
		Friction:   0.98,
		MaxBounces: 15,
		Randomness: 0.5,
		MaxSteps:   DefaultMaxSteps,
	}
}

func (p Physics) normalized() Physics {
	if p.MaxBounces < 0 {
		p.MaxBounces = 0
	}
	if p.MaxSteps <= 0 {
		p.MaxSteps = DefaultMaxSteps
	}
	return p
}

// Config is everything one resolution reads: the attribute list and the
// physics bundle. The engine snapshots it when a run starts.
type Config struct {
	Attributes Attributes `json:"attributes" yaml:"attributes"`
	Physics    Physics    `json:"physics" yaml:"physics"`
}

// DefaultConfig is the stock five-attribute sheet with stock physics.
func DefaultConfig() Config {
	return Config{Attributes: DefaultAttributes(), Physics: DefaultPhysics()}
}

// snapshot deep-copies cfg so later edits cannot reach a running simulation.
func (c Config) snapshot() (Config, error) {
	if len(c.Attributes) < MinAttributes {
		return Config{}, ErrTooFewAttributes
	}
	return Config{Attributes: c.Attributes.Clone(), Physics: c.Physics.normalized()}, nil
}
