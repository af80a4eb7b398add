package scenario

import (
	"fmt"
	"strings"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

// Ranges enforced on the tuning panel. The engine itself accepts anything.
const (
	MinSpeed      = 2.0
	MaxSpeed      = 20.0
	MinFriction   = 0.90
	MaxFriction   = 0.99
	MinBounces    = 5
	MaxBounces    = 50
	MinRandomness = 0.0
	MaxRandomness = 1.0

	// a layout must leave a positive radius after the label margin
	minLayoutSide = 80.0
)

// ValidateRaw checks semantic constraints of a merged RawConfig.
// Attribute magnitudes are not checked: they are clamped, never rejected.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// attributes
	if len(cfg.Attributes) < dispatch.MinAttributes {
		errs = append(errs, fmt.Sprintf("attributes must list at least %d entries (got %d)", dispatch.MinAttributes, len(cfg.Attributes)))
	}

	// physics
	p := cfg.Physics
	if p.Speed != nil && (*p.Speed < MinSpeed || *p.Speed > MaxSpeed) {
		errs = append(errs, fmt.Sprintf("physics.speed must be in [%g,%g]", MinSpeed, MaxSpeed))
	}
	if p.Friction != nil && (*p.Friction < MinFriction || *p.Friction > MaxFriction) {
		errs = append(errs, fmt.Sprintf("physics.friction must be in [%g,%g]", MinFriction, MaxFriction))
	}
	if p.MaxBounces != nil && (*p.MaxBounces < MinBounces || *p.MaxBounces > MaxBounces) {
		errs = append(errs, fmt.Sprintf("physics.max_bounces must be in [%d,%d]", MinBounces, MaxBounces))
	}
	if p.Randomness != nil && (*p.Randomness < MinRandomness || *p.Randomness > MaxRandomness) {
		errs = append(errs, fmt.Sprintf("physics.randomness must be in [%g,%g]", MinRandomness, MaxRandomness))
	}
	if p.MaxSteps != nil && *p.MaxSteps < 0 {
		errs = append(errs, "physics.max_steps must be >= 0 (0 means default)")
	}

	// layout
	if cfg.Layout != nil {
		if cfg.Layout.Width != nil && *cfg.Layout.Width <= minLayoutSide {
			errs = append(errs, fmt.Sprintf("layout.width must be > %g", minLayoutSide))
		}
		if cfg.Layout.Height != nil && *cfg.Layout.Height <= minLayoutSide {
			errs = append(errs, fmt.Sprintf("layout.height must be > %g", minLayoutSide))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
