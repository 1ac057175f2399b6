// Package health implements the health oracles the DR coordinator polls
// once per iteration: TCP reachability and Prometheus metric liveness.
package health

import (
	"context"

	"github.com/mikempw/failover/core/status"
)

// Oracle is the interface both variants satisfy. Check is called at most
// once per DR iteration and must not block past its own configured
// timeout.
type Oracle interface {
	Check(ctx context.Context) status.T
}
