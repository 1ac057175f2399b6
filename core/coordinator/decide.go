// Package coordinator implements the DNS-lease state machine: a pure
// decision procedure (this file) plus the loop drivers that feed it real
// health verdicts and lease reads (loop.go). Splitting the two is what
// makes the DR takeover logic testable against a transcript of inputs
// without a live backend or a live health target, per SPEC_FULL.md §9.
package coordinator

import (
	"time"

	"github.com/mikempw/failover/core/lease"
	"github.com/mikempw/failover/core/status"
)

// State is one node of the three-state machine from SPEC_FULL.md §4.1.
type State int

const (
	PrimaryActive State = iota
	DRStandby
	DRActive
)

func (s State) String() string {
	switch s {
	case PrimaryActive:
		return "PRIMARY_ACTIVE"
	case DRActive:
		return "DR_ACTIVE"
	default:
		return "DR_STANDBY"
	}
}

// Action is what the loop driver should do as a result of one decision.
type Action int

const (
	ActionNone Action = iota
	ActionRenew
	ActionTakeover
	ActionObserveStandby
)

// LeaseObservation is the outcome of a single backend read, already
// parsed. A malformed or absent TXT record and a failed read are
// distinguished so the decision procedure can fail closed on the latter.
type LeaseObservation struct {
	Err     bool // the backend read itself failed
	Present bool // a well-formed lease was parsed
	Owner   lease.Owner
	Expires time.Time
}

// Input bundles everything Decide needs to make one decision.
type Input struct {
	State         State
	Verdict       status.T
	FailStreak    int
	FailThreshold int
	Lease         LeaseObservation
	Self          lease.Owner
	Now           time.Time
}

// Output is the pure result of one decision.
type Output struct {
	NextState      State
	NextFailStreak int
	Action         Action
}

// Decide implements the DR-role decision procedure of SPEC_FULL.md §4.1
// steps 1-9, plus the loss-of-lease observation of §4.1.1 for the
// DRActive state. PrimaryActive is not evaluated here: the primary loop
// never reads the lease and always renews (see loop.go).
func Decide(in Input) Output {
	if in.State == DRActive {
		return decideActive(in)
	}
	return decideStandby(in)
}

// decideActive resolves the open question of how a DR coordinator that
// has taken over notices an operator-initiated failback: it reads the
// lease every iteration while active. If another owner now holds a valid
// lease it steps down without writing; otherwise it renews unconditionally,
// exactly like the primary loop, per §4.1's "behaves like a primary" note.
func decideActive(in Input) Output {
	l := in.Lease
	if !l.Err && l.Present && l.Owner != in.Self && l.Expires.After(in.Now) {
		return Output{NextState: DRStandby, NextFailStreak: 0, Action: ActionObserveStandby}
	}
	return Output{NextState: DRActive, NextFailStreak: 0, Action: ActionRenew}
}

func decideStandby(in Input) Output {
	if in.Verdict == status.Healthy {
		return Output{NextState: DRStandby, NextFailStreak: 0, Action: ActionNone}
	}

	streak := in.FailStreak + 1
	if streak < in.FailThreshold {
		return Output{NextState: DRStandby, NextFailStreak: streak, Action: ActionNone}
	}

	l := in.Lease
	if l.Err {
		// Fails closed: a read failure never triggers takeover.
		return Output{NextState: DRStandby, NextFailStreak: streak, Action: ActionNone}
	}
	if l.Present && l.Owner == in.Self {
		return Output{NextState: DRStandby, NextFailStreak: 0, Action: ActionNone}
	}
	if l.Present && l.Expires.After(in.Now) {
		return Output{NextState: DRStandby, NextFailStreak: streak, Action: ActionNone}
	}

	return Output{NextState: DRActive, NextFailStreak: 0, Action: ActionTakeover}
}
