package coordinator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikempw/failover/core/coordinator"
	"github.com/mikempw/failover/core/lease"
	"github.com/mikempw/failover/core/status"
)

var now = time.Unix(1_000_000, 0)

func TestDecideHealthyResetsStreakAndTakesNoAction(t *testing.T) {
	out := coordinator.Decide(coordinator.Input{
		State:         coordinator.DRStandby,
		Verdict:       status.Healthy,
		FailStreak:    2,
		FailThreshold: 3,
		Self:          lease.DR,
		Now:           now,
	})
	assert.Equal(t, coordinator.DRStandby, out.NextState)
	assert.Equal(t, 0, out.NextFailStreak)
	assert.Equal(t, coordinator.ActionNone, out.Action)
}

func TestDecideFlappingStreakTrajectory(t *testing.T) {
	// Verdict pattern from SPEC_FULL.md §8 boundary scenario 5.
	verdicts := []status.T{
		status.Unhealthy, status.Healthy, status.Unhealthy, status.Unhealthy,
		status.Healthy, status.Unhealthy, status.Unhealthy, status.Unhealthy,
	}
	wantStreaks := []int{1, 0, 1, 2, 0, 1, 2, 3}

	streak := 0
	state := coordinator.DRStandby
	validLease := coordinator.LeaseObservation{Present: true, Owner: lease.Primary, Expires: now.Add(time.Hour)}

	for i, v := range verdicts {
		out := coordinator.Decide(coordinator.Input{
			State: state, Verdict: v, FailStreak: streak, FailThreshold: 3,
			Lease: validLease, Self: lease.DR, Now: now,
		})
		assert.Equal(t, wantStreaks[i], out.NextFailStreak, "step %d", i)
		streak = out.NextFailStreak
		state = out.NextState
		if i < len(verdicts)-1 {
			assert.Equal(t, coordinator.ActionNone, out.Action, "step %d", i)
		}
	}
}

func TestDecideNoTakeoverWhilePrimaryLeaseValid(t *testing.T) {
	// A valid non-self lease blocks takeover even when this verdict brings
	// the streak up to FAIL_THRESHOLD (a stricter case than invariant 1).
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRStandby, Verdict: status.Unhealthy,
		FailStreak: 2, FailThreshold: 3,
		Lease: coordinator.LeaseObservation{Present: true, Owner: lease.Primary, Expires: now.Add(time.Hour)},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionNone, out.Action)
	assert.Equal(t, coordinator.DRStandby, out.NextState)
}

func TestDecideTakeoverOnExpiredLeaseAfterThreshold(t *testing.T) {
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRStandby, Verdict: status.Unhealthy,
		FailStreak: 2, FailThreshold: 3,
		Lease: coordinator.LeaseObservation{Present: true, Owner: lease.Primary, Expires: now.Add(-time.Second)},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionTakeover, out.Action)
	assert.Equal(t, coordinator.DRActive, out.NextState)
}

func TestDecideMalformedLeaseTreatedAsExpired(t *testing.T) {
	// Boundary scenario 6: malformed TXT is treated as absent/expired.
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRStandby, Verdict: status.Unhealthy,
		FailStreak: 2, FailThreshold: 3,
		Lease: coordinator.LeaseObservation{Present: false},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionTakeover, out.Action)
}

func TestDecideBackendReadFailureFailsClosed(t *testing.T) {
	// Boundary scenario 3: DR cannot reach the backend; never takes over.
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRStandby, Verdict: status.Unhealthy,
		FailStreak: 5, FailThreshold: 3,
		Lease: coordinator.LeaseObservation{Err: true},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionNone, out.Action)
	assert.Equal(t, coordinator.DRStandby, out.NextState)
}

func TestDecideAlreadyActiveResetsStreak(t *testing.T) {
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRStandby, Verdict: status.Unhealthy,
		FailStreak: 2, FailThreshold: 3,
		Lease: coordinator.LeaseObservation{Present: true, Owner: lease.DR, Expires: now.Add(-time.Second)},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionNone, out.Action)
	assert.Equal(t, 0, out.NextFailStreak)
}

func TestDecideActiveRenewsWhenStillOwner(t *testing.T) {
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRActive, Verdict: status.Unhealthy,
		Lease: coordinator.LeaseObservation{Present: true, Owner: lease.DR, Expires: now.Add(time.Minute)},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionRenew, out.Action)
	assert.Equal(t, coordinator.DRActive, out.NextState)
}

func TestDecideActiveStepsDownOnObservedFailback(t *testing.T) {
	// Boundary scenario 4: operator failback observed by the (formerly)
	// active DR coordinator.
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRActive, Verdict: status.Healthy,
		Lease: coordinator.LeaseObservation{Present: true, Owner: lease.Primary, Expires: now.Add(time.Minute)},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionObserveStandby, out.Action)
	assert.Equal(t, coordinator.DRStandby, out.NextState)
}

func TestDecideActiveIgnoresReadFailureAndKeepsRenewing(t *testing.T) {
	out := coordinator.Decide(coordinator.Input{
		State: coordinator.DRActive, Verdict: status.Unhealthy,
		Lease: coordinator.LeaseObservation{Err: true},
		Self:  lease.DR, Now: now,
	})
	assert.Equal(t, coordinator.ActionRenew, out.Action)
	assert.Equal(t, coordinator.DRActive, out.NextState)
}
