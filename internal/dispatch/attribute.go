package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinValue = 0
	MaxValue = 100

	// DefaultValue is used for both magnitudes of a freshly added attribute.
	DefaultValue = 50

	// MinAttributes is the floor below which removal is rejected.
	MinAttributes = 3
)

// Attribute is one labeled axis of the resolution space.
type Attribute struct {
	Name        string `json:"name" yaml:"name"`
	PlayerValue int    `json:"player_value" yaml:"player_value"`
	TaskValue   int    `json:"task_value" yaml:"task_value"`
	AutoFail    *int   `json:"auto_fail,omitempty" yaml:"auto_fail,omitempty"` // nil = unset
	Bonus       *int   `json:"bonus,omitempty" yaml:"bonus,omitempty"`         // nil = unset
}

// Clamp restricts v to [0,100].
func Clamp(v int) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

// Threshold returns a clamped threshold pointer.
func Threshold(v int) *int {
	c := Clamp(v)
	return &c
}

// ParseThreshold turns free-form input into a threshold.
// Empty or non-numeric input means "unset" and yields nil.
func ParseThreshold(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return Threshold(v)
}

// NewAttribute builds an attribute with clamped magnitudes and no thresholds.
func NewAttribute(name string, player, task int) Attribute {
	return Attribute{Name: name, PlayerValue: Clamp(player), TaskValue: Clamp(task)}
}

// normalized returns a copy with every magnitude clamped and thresholds detached
// from the caller's pointers.
func (a Attribute) normalized() Attribute {
	out := Attribute{Name: a.Name, PlayerValue: Clamp(a.PlayerValue), TaskValue: Clamp(a.TaskValue)}
	if a.AutoFail != nil {
		out.AutoFail = Threshold(*a.AutoFail)
	}
	if a.Bonus != nil {
		out.Bonus = Threshold(*a.Bonus)
	}
	return out
}

// Attributes is the ordered attribute list. Order matters: it fixes the
// polygon winding and the auto-fail scan order.
type Attributes []Attribute

// DefaultAttributes returns the stock five-axis dispatch sheet.
func DefaultAttributes() Attributes {
	return Attributes{
		NewAttribute("Stealth", 70, 50),
		NewAttribute("Combat", 80, 60),
		NewAttribute("Tech", 60, 70),
		NewAttribute("Social", 75, 55),
		NewAttribute("Perception", 85, 65),
	}
}

// Clone deep-copies the list, clamping as it goes. Runs and overlap
// computations work on clones so later edits never leak into them.
func (as Attributes) Clone() Attributes {
	out := make(Attributes, len(as))
	for i, a := range as {
		out[i] = a.normalized()
	}
	return out
}

func (as Attributes) valid(i int) bool { return i >= 0 && i < len(as) }

// Add appends an attribute with mid-range values. An empty name
// becomes "Attribute N".
func (as *Attributes) Add(name string) {
	if name == "" {
		name = fmt.Sprintf("Attribute %d", len(*as)+1)
	}
	*as = append(*as, NewAttribute(name, DefaultValue, DefaultValue))
}

// Remove deletes attribute i. It is a no-op returning false when the
// index is out of range or the list would drop below MinAttributes.
func (as *Attributes) Remove(i int) bool {
	if !as.valid(i) || len(*as) <= MinAttributes {
		return false
	}
	*as = append((*as)[:i:i], (*as)[i+1:]...)
	return true
}

func (as Attributes) SetName(i int, name string) bool {
	if !as.valid(i) {
		return false
	}
	as[i].Name = name
	return true
}

func (as Attributes) SetPlayerValue(i, v int) bool {
	if !as.valid(i) {
		return false
	}
	as[i].PlayerValue = Clamp(v)
	return true
}

func (as Attributes) SetTaskValue(i, v int) bool {
	if !as.valid(i) {
		return false
	}
	as[i].TaskValue = Clamp(v)
	return true
}

// SetAutoFail sets or clears (nil) the auto-fail threshold of attribute i.
func (as Attributes) SetAutoFail(i int, v *int) bool {
	if !as.valid(i) {
		return false
	}
	as[i].AutoFail = nil
	if v != nil {
		as[i].AutoFail = Threshold(*v)
	}
	return true
}

// SetBonus sets or clears (nil) the bonus threshold of attribute i.
func (as Attributes) SetBonus(i int, v *int) bool {
	if !as.valid(i) {
		return false
	}
	as[i].Bonus = nil
	if v != nil {
		as[i].Bonus = Threshold(*v)
	}
	return true
}
