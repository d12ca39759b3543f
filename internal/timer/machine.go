// Package timer implements the zone/timer state machine: it tracks the
// active zone, drives a one-second countdown, and flips the zone when the
// countdown expires. The transition function is pure; scheduling lives in
// the Controller.
package timer

import (
	"fmt"

	"zonegram/internal/domain"
)

// Phase is the discriminant of the state machine.
type Phase int

const (
	PhaseUnselected Phase = iota
	PhaseAwaitingDuration
	PhaseRunning
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseUnselected:
		return "unselected"
	case PhaseAwaitingDuration:
		return "awaiting_duration"
	case PhaseRunning:
		return "running"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Duration is a user-entered countdown length.
type Duration struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// TotalSeconds converts the entered duration to countdown seconds.
func (d Duration) TotalSeconds() int {
	return d.Minutes*60 + d.Seconds
}

// State is the full machine state. Zone is empty only in PhaseUnselected;
// Remaining is meaningful only in PhaseRunning.
type State struct {
	Phase      Phase       `json:"phase"`
	Zone       domain.Zone `json:"zone,omitempty"`
	Remaining  int         `json:"remaining,omitempty"`
	Configured Duration    `json:"configured"`
}

// Event is one of the tagged event types below.
type Event interface{ isEvent() }

// SelectZone is the user's initial zone choice.
type SelectZone struct{ Zone domain.Zone }

// SetDuration starts the countdown from AwaitingDuration.
type SetDuration struct{ Minutes, Seconds int }

// Tick is one one-second decrement of the running countdown.
type Tick struct{}

// ManualSwitch flips to the complementary zone without waiting for expiry.
type ManualSwitch struct{}

// Advance moves an Expired state on to AwaitingDuration for the next zone.
// The Controller dispatches it immediately after expiry.
type Advance struct{}

func (SelectZone) isEvent()   {}
func (SetDuration) isEvent()  {}
func (Tick) isEvent()         {}
func (ManualSwitch) isEvent() {}
func (Advance) isEvent()      {}

// Effect is a side effect requested by a transition. The Controller
// interprets them; the transition function never schedules anything itself.
type Effect interface{ isEffect() }

// StartTicker requests a fresh one-second tick source.
type StartTicker struct{}

// StopTicker cancels the in-flight tick source, if any.
type StopTicker struct{}

// Notify carries a user-facing message (toast equivalent).
type Notify struct{ Message string }

func (StartTicker) isEffect() {}
func (StopTicker) isEffect()  {}
func (Notify) isEffect()      {}

// ValidationError reports a rejected timer duration. It is shown to the
// user immediately; the machine state does not advance.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateDuration checks a user-entered countdown length.
func ValidateDuration(minutes, seconds int) error {
	if minutes < 0 || seconds < 0 || seconds > 59 {
		return &ValidationError{Message: "please enter valid minutes and seconds (0-59)"}
	}
	if minutes == 0 && seconds == 0 {
		return &ValidationError{Message: "please enter a positive duration"}
	}
	return nil
}

// Transition applies one event to a state and returns the next state plus
// requested effects. It is pure: no clocks, no channels, no mutation of the
// input. Events that do not apply to the current phase leave the state
// unchanged; in particular a stale Tick after a zone switch is a no-op.
func Transition(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case SelectZone:
		if s.Phase != PhaseUnselected {
			return s, nil, fmt.Errorf("zone already selected: %s", s.Zone)
		}
		zone := domain.Normalize(e.Zone)
		if zone == "" {
			return s, nil, fmt.Errorf("zone name is required")
		}
		return State{Phase: PhaseAwaitingDuration, Zone: zone}, nil, nil

	case SetDuration:
		if s.Phase != PhaseAwaitingDuration {
			return s, nil, fmt.Errorf("no zone awaiting a duration")
		}
		if err := ValidateDuration(e.Minutes, e.Seconds); err != nil {
			return s, nil, err
		}
		d := Duration{Minutes: e.Minutes, Seconds: e.Seconds}
		next := State{
			Phase:      PhaseRunning,
			Zone:       s.Zone,
			Remaining:  d.TotalSeconds(),
			Configured: d,
		}
		effects := []Effect{
			StartTicker{},
			Notify{Message: fmt.Sprintf("%s zone started: timer set for %d:%02d", s.Zone, e.Minutes, e.Seconds)},
		}
		return next, effects, nil

	case Tick:
		if s.Phase != PhaseRunning {
			return s, nil, nil
		}
		if s.Remaining > 1 {
			next := s
			next.Remaining--
			return next, nil, nil
		}
		next := State{Phase: PhaseExpired, Zone: s.Zone, Configured: s.Configured}
		effects := []Effect{
			StopTicker{},
			Notify{Message: "Time's up! Switching to the other zone."},
		}
		return next, effects, nil

	case ManualSwitch:
		if s.Phase != PhaseAwaitingDuration && s.Phase != PhaseRunning {
			return s, nil, fmt.Errorf("no active zone to switch from")
		}
		next := State{Phase: PhaseAwaitingDuration, Zone: domain.Complement(s.Zone)}
		effects := []Effect{
			StopTicker{},
			Notify{Message: fmt.Sprintf("Switching to %s zone. Please set a new timer duration.", next.Zone)},
		}
		return next, effects, nil

	case Advance:
		if s.Phase != PhaseExpired {
			return s, nil, nil
		}
		// Built-in zones flip to their complement. A custom zone never
		// switches automatically; it re-awaits a duration for itself.
		next := State{Phase: PhaseAwaitingDuration, Zone: domain.Complement(s.Zone)}
		var effects []Effect
		if domain.IsBuiltin(s.Zone) {
			effects = append(effects, Notify{Message: fmt.Sprintf("Switching to %s zone. Please set a new timer duration.", next.Zone)})
		} else {
			effects = append(effects, Notify{Message: fmt.Sprintf("%s zone ended. Please set a new timer duration.", s.Zone)})
		}
		return next, effects, nil

	default:
		return s, nil, fmt.Errorf("unknown event %T", ev)
	}
}
