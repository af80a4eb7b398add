// resolve.go
package scenario

import (
	"fmt"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

// Overrides carries per-invocation physics tweaks (CLI flags, panel edits)
// applied on top of the merged layers.
type Overrides struct {
	Speed      *float64
	Friction   *float64
	MaxBounces *int
	Randomness *float64
	MaxSteps   *int
}

type Resolver interface {
	// Returns merged RawConfig and the normalized Engine
	Resolve(name, task string, o Overrides) (RawConfig, Engine, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → scenario → task → overrides, validates the
// result and normalizes it into engine inputs.
func (l *Loader) Resolve(name, task string, o Overrides) (RawConfig, Engine, error) {
	raw, err := l.LoadMerged(name, task)
	if err != nil {
		return RawConfig{}, Engine{}, err
	}
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return raw, Engine{}, err
	}
	return raw, Normalize(raw), nil
}

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	return mergeRaw(raw, RawConfig{Physics: PhysicsConfig{
		Speed:      o.Speed,
		Friction:   o.Friction,
		MaxBounces: o.MaxBounces,
		Randomness: o.Randomness,
		MaxSteps:   o.MaxSteps,
	}})
}

// Normalize fills defaults and clamps magnitudes. Unset physics fields take
// the stock tuning; an unset layout is the 600×600 frame.
func Normalize(raw RawConfig) Engine {
	phys := dispatch.DefaultPhysics()
	if raw.Physics.Speed != nil {
		phys.Speed = *raw.Physics.Speed
	}
	if raw.Physics.Friction != nil {
		phys.Friction = *raw.Physics.Friction
	}
	if raw.Physics.MaxBounces != nil {
		phys.MaxBounces = *raw.Physics.MaxBounces
	}
	if raw.Physics.Randomness != nil {
		phys.Randomness = *raw.Physics.Randomness
	}
	if raw.Physics.MaxSteps != nil && *raw.Physics.MaxSteps > 0 {
		phys.MaxSteps = *raw.Physics.MaxSteps
	}

	layout := dispatch.DefaultLayout()
	if raw.Layout != nil {
		w, h := 600.0, 600.0
		if raw.Layout.Width != nil {
			w = *raw.Layout.Width
		}
		if raw.Layout.Height != nil {
			h = *raw.Layout.Height
		}
		layout = dispatch.NewLayout(w, h)
	}

	attrs := make(dispatch.Attributes, 0, len(raw.Attributes))
	for i, a := range raw.Attributes {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("Attribute %d", i+1)
		}
		player, task := dispatch.DefaultValue, dispatch.DefaultValue
		if a.Player != nil {
			player = *a.Player
		}
		if a.Task != nil {
			task = *a.Task
		}
		attr := dispatch.NewAttribute(name, player, task)
		if a.AutoFail != nil && a.AutoFail.Value != nil {
			attr.AutoFail = dispatch.Threshold(*a.AutoFail.Value)
		}
		if a.Bonus != nil && a.Bonus.Value != nil {
			attr.Bonus = dispatch.Threshold(*a.Bonus.Value)
		}
		attrs = append(attrs, attr)
	}

	return Engine{
		Config:  dispatch.Config{Attributes: attrs, Physics: phys},
		Layout:  layout,
		Version: raw.Version,
	}
}
