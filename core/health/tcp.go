package health

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/mikempw/failover/core/status"
)

// TCP probes reachability with a plain connect, mirroring the reference
// daemon's arbitrator health check (daemon/nmon/arbitrator.go) but over
// TCP rather than HTTP.
type TCP struct {
	Host    string
	Port    int
	Timeout time.Duration

	// ConfirmHost/ConfirmPort, when set, must also fail before Check
	// returns Unhealthy, per SPEC_FULL.md §4.2.2.
	ConfirmHost string
	ConfirmPort int

	dialer func(ctx context.Context, network, addr string) (net.Conn, error)
}

func (t *TCP) dial(ctx context.Context, addr string) error {
	dial := t.dialer
	if dial == nil {
		d := &net.Dialer{Timeout: t.Timeout}
		dial = d.DialContext
	}
	conn, err := dial(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (t *TCP) Check(ctx context.Context) status.T {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	primaryErr := t.dial(ctx, net.JoinHostPort(t.Host, strconv.Itoa(t.Port)))
	if primaryErr == nil {
		return status.Healthy
	}
	if t.ConfirmHost == "" {
		return classifyDialErr(primaryErr)
	}

	// A confirmation target is configured: only report Unhealthy if it
	// also fails, reducing false failovers from one flaky link.
	confirmErr := t.dial(ctx, net.JoinHostPort(t.ConfirmHost, strconv.Itoa(t.ConfirmPort)))
	if confirmErr == nil {
		return status.Healthy
	}
	return classifyDialErr(primaryErr)
}

func classifyDialErr(err error) status.T {
	if err == nil {
		return status.Healthy
	}
	if ne, ok := err.(net.Error); ok {
		if ne.Timeout() {
			return status.Unhealthy
		}
		if _, ok := ne.(*net.OpError); ok {
			return status.Unhealthy
		}
	}
	return status.Unknown
}
