package coordinator_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikempw/failover/core/clock"
	"github.com/mikempw/failover/core/coordinator"
	"github.com/mikempw/failover/core/dnsbackend"
	"github.com/mikempw/failover/core/lease"
	"github.com/mikempw/failover/core/siteconfig"
	"github.com/mikempw/failover/core/status"
)

// fakeBackend is an in-memory dnsbackend.Backend for loop-driver tests.
type fakeBackend struct {
	mu      sync.Mutex
	a       net.IP
	txt     string
	failGet bool
}

func (b *fakeBackend) SetRecords(_ context.Context, ip net.IP, txt string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.a, b.txt = ip, txt
	return nil
}

func (b *fakeBackend) GetRecords(_ context.Context) (dnsbackend.Records, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet {
		return dnsbackend.Records{}, assert.AnError
	}
	return dnsbackend.Records{A: b.a, TXT: b.txt}, nil
}

// fakeOracle returns a scripted sequence of verdicts, repeating the last
// entry once exhausted.
type fakeOracle struct {
	mu       sync.Mutex
	verdicts []status.T
	i        int
}

func (o *fakeOracle) Check(context.Context) status.T {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.i >= len(o.verdicts) {
		return o.verdicts[len(o.verdicts)-1]
	}
	v := o.verdicts[o.i]
	o.i++
	return v
}

// TestPrimaryDiesDRTakesOver reproduces SPEC_FULL.md §8 boundary scenario
// 2: primary stops renewing at t=0, DR takes over between 110s and 120s
// with FAIL_THRESHOLD=3, UPDATE_INTERVAL=10s, LEASE_TTL=60s.
func TestPrimaryDiesDRTakesOver(t *testing.T) {
	v := clock.NewVirtual(time.Unix(0, 0))
	backend := &fakeBackend{}
	drIP := net.ParseIP("10.0.1.1")
	primaryIP := net.ParseIP("10.0.0.1")

	// Seed the lease as if primary had just renewed at t=0, then died.
	require.NoError(t, backend.SetRecords(context.Background(), primaryIP, lease.Format(lease.Primary, v.Now().Add(60*time.Second)), 30*time.Second))

	oracle := &fakeOracle{verdicts: []status.T{status.Unhealthy}}
	cfg := siteconfig.T{
		DRIP: drIP, PrimaryIP: primaryIP,
		LeaseTTL: 60 * time.Second, UpdateInterval: 10 * time.Second,
		FailThreshold: 3, DNSTTL: 30 * time.Second,
	}
	c := coordinator.New(cfg, backend, oracle, v, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.RunDR(ctx)
		close(done)
	}()

	// Advance in 10s ticks up to t=120s, checking the lease after each.
	tookOverAt := -1
	for i := 1; i <= 12; i++ {
		v.Advance(10 * time.Second)
		time.Sleep(5 * time.Millisecond) // let the goroutine observe the tick
		backend.mu.Lock()
		txt := backend.txt
		backend.mu.Unlock()
		if txt != "" {
			parsed, err := lease.Parse(txt)
			require.NoError(t, err)
			if parsed.Owner == lease.DR {
				tookOverAt = i * 10
				break
			}
		}
	}
	cancel()
	<-done

	assert.GreaterOrEqual(t, tookOverAt, 110)
	assert.LessOrEqual(t, tookOverAt, 120)
}

// TestBackendReadFailureNeverTakesOver reproduces boundary scenario 3.
func TestBackendReadFailureNeverTakesOver(t *testing.T) {
	v := clock.NewVirtual(time.Unix(0, 0))
	backend := &fakeBackend{failGet: true}
	oracle := &fakeOracle{verdicts: []status.T{status.Unhealthy}}
	cfg := siteconfig.T{
		DRIP: net.ParseIP("10.0.1.1"), PrimaryIP: net.ParseIP("10.0.0.1"),
		LeaseTTL: 60 * time.Second, UpdateInterval: 10 * time.Second,
		FailThreshold: 2, DNSTTL: 30 * time.Second,
	}
	c := coordinator.New(cfg, backend, oracle, v, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.RunDR(ctx)
		close(done)
	}()

	for i := 0; i < 20; i++ {
		v.Advance(10 * time.Second)
		time.Sleep(2 * time.Millisecond)
	}
	cancel()
	<-done

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Empty(t, backend.txt, "DR must never write the lease when it cannot read the backend")
}
