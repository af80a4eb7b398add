package dispatch

import "fmt"

// Outcome is the terminal classification of a run.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeBonus
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeSuccess:
		return "success"
	case OutcomeBonus:
		return "bonus"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*o = OutcomeNone
	case "success":
		*o = OutcomeSuccess
	case "bonus":
		*o = OutcomeBonus
	case "failure":
		*o = OutcomeFailure
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Reason records why a run ended.
type Reason string

const (
	ReasonAutoFail     Reason = "auto_fail"     // threshold short-circuit, no physics
	ReasonDegenerate   Reason = "degenerate"    // zero-area difficulty polygon
	ReasonAtRest       Reason = "at_rest"       // velocity decayed below rest speed
	ReasonBounceBudget Reason = "bounce_budget" // left the polygon with no bounces left
	ReasonStepCap      Reason = "step_cap"      // MaxSteps reached
)

// Result is the terminal record of one run.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Final   Point   `json:"final"` // relative to the layout center
	Steps   int     `json:"steps"`
	Bounces int     `json:"bounces"`
	Reason  Reason  `json:"reason"`

	// AutoFail is the index of the attribute that forced failure, -1 otherwise.
	AutoFail int `json:"auto_fail"`
}
