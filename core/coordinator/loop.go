package coordinator

import (
	"context"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mikempw/failover/core/clock"
	"github.com/mikempw/failover/core/dnsbackend"
	"github.com/mikempw/failover/core/health"
	"github.com/mikempw/failover/core/lease"
	"github.com/mikempw/failover/core/siteconfig"
	"github.com/mikempw/failover/core/status"
)

// Coordinator drives the primary and DR loops described in
// SPEC_FULL.md §4.1. Each Run* method is the loop driver: it does the I/O
// (health check, lease read/write) and feeds the results into the pure
// Decide function, then sleeps once per iteration, per the single
// logical loop / no overlapping iterations concurrency rule in §5.
type Coordinator struct {
	cfg        siteconfig.T
	backend    dnsbackend.Backend
	oracle     health.Oracle
	clock      clock.Clock
	log        zerolog.Logger
	instanceID string
}

// New builds a Coordinator. instanceID is a random identifier attached to
// every log line for this process's lifetime, so a takeover or renewal
// can be correlated across sites' logs; it carries no authority and is
// never written to DNS.
func New(cfg siteconfig.T, backend dnsbackend.Backend, oracle health.Oracle, clk clock.Clock, log zerolog.Logger) *Coordinator {
	id := uuid.NewString()
	return &Coordinator{
		cfg: cfg, backend: backend, oracle: oracle, clock: clk,
		log:        log.With().Str("instance_id", id).Logger(),
		instanceID: id,
	}
}

// RunPrimary implements the primary-role loop: renew unconditionally,
// every interval, with no lease read. A failed write is logged and does
// not change role, per SPEC_FULL.md §4.1.
func (c *Coordinator) RunPrimary(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		c.renew(ctx, lease.Primary, c.cfg.PrimaryIP)
		if err := c.clock.Sleep(ctx, c.cfg.UpdateInterval); err != nil {
			return nil
		}
	}
}

// RunDR implements the DR-role loop of SPEC_FULL.md §4.1 steps 1-9 plus
// the §4.1.1 loss-of-lease observation, driving the pure Decide function
// with real health checks and backend reads.
func (c *Coordinator) RunDR(ctx context.Context) error {
	state := DRStandby
	streak := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		verdict := status.Unknown
		if state != DRActive {
			verdict = c.oracle.Check(ctx)
		}
		obs := c.readLease(ctx)

		out := Decide(Input{
			State:         state,
			Verdict:       verdict,
			FailStreak:    streak,
			FailThreshold: c.cfg.FailThreshold,
			Lease:         obs,
			Self:          lease.DR,
			Now:           c.clock.Now(),
		})

		switch out.Action {
		case ActionRenew:
			c.renew(ctx, lease.DR, c.cfg.DRIP)
		case ActionTakeover:
			c.log.Warn().Str("from_state", state.String()).Msg("taking over: primary lease expired and health checks failed")
			c.renew(ctx, lease.DR, c.cfg.DRIP)
		case ActionObserveStandby:
			c.log.Info().Msg("observed operator failback, stepping down to standby")
		}

		state = out.NextState
		streak = out.NextFailStreak

		if err := c.clock.Sleep(ctx, c.cfg.UpdateInterval); err != nil {
			return nil
		}
	}
}

func (c *Coordinator) renew(ctx context.Context, owner lease.Owner, ip net.IP) {
	exp := c.clock.Now().Add(c.cfg.LeaseTTL)
	txt := lease.Format(owner, exp)
	if err := c.backend.SetRecords(ctx, ip, txt, c.cfg.DNSTTL); err != nil {
		c.log.Error().Err(err).Str("owner", string(owner)).Msg("lease renewal failed")
		return
	}
	c.log.Debug().Str("owner", string(owner)).Time("expires_at", exp).Msg("lease renewed")
}

// readLease reads the backend and parses the TXT into a LeaseObservation.
// A backend read error is distinguished from a malformed/absent TXT so
// Decide can fail closed only on the former, per SPEC_FULL.md §4.1 step 5.
func (c *Coordinator) readLease(ctx context.Context) LeaseObservation {
	rec, err := c.backend.GetRecords(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("lease read failed")
		return LeaseObservation{Err: true}
	}
	if rec.TXT == "" {
		return LeaseObservation{}
	}
	parsed, err := lease.Parse(rec.TXT)
	if err != nil {
		c.log.Warn().Str("txt", rec.TXT).Msg("lease TXT malformed, treating as expired")
		return LeaseObservation{}
	}
	return LeaseObservation{Present: true, Owner: parsed.Owner, Expires: parsed.ExpiresAt}
}
