// types.go
package scenario

import (
	"gopkg.in/yaml.v3"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

// Raw config loaded from YAML. Pointer fields distinguish "not set in this
// layer" from zero.
type RawConfig struct {
	Version    string            `yaml:"version"`
	Notes      string            `yaml:"notes,omitempty"`
	Layout     *LayoutConfig     `yaml:"layout,omitempty"`
	Physics    PhysicsConfig     `yaml:"physics"`
	Attributes []AttributeConfig `yaml:"attributes,omitempty"`
}

type LayoutConfig struct {
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
}

type PhysicsConfig struct {
	Speed      *float64 `yaml:"speed,omitempty"`
	Friction   *float64 `yaml:"friction,omitempty"`
	MaxBounces *int     `yaml:"max_bounces,omitempty"`
	Randomness *float64 `yaml:"randomness,omitempty"`
	MaxSteps   *int     `yaml:"max_steps,omitempty"` // safety cap, not part of the tuning panel
}

// AttributeConfig is one axis; layers merge attributes by Name.
type AttributeConfig struct {
	Name     string          `yaml:"name"`
	Player   *int            `yaml:"player,omitempty"`
	Task     *int            `yaml:"task,omitempty"`
	AutoFail *ThresholdInput `yaml:"auto_fail,omitempty"`
	Bonus    *ThresholdInput `yaml:"bonus,omitempty"`
}

// ThresholdInput is a threshold as typed by a user. A number sets it;
// empty or non-numeric text (e.g. "none") leaves it unset, which also lets
// a later layer clear a threshold set by an earlier one.
type ThresholdInput struct {
	Value *int
}

func (t *ThresholdInput) UnmarshalYAML(n *yaml.Node) error {
	t.Value = dispatch.ParseThreshold(n.Value)
	return nil
}

func (t ThresholdInput) MarshalYAML() (any, error) {
	if t.Value == nil {
		return "", nil
	}
	return *t.Value, nil
}

// Engine is a normalized scenario ready for internal/dispatch.
type Engine struct {
	Config  dispatch.Config
	Layout  dispatch.Layout
	Version string // effective config version for tracing
}
