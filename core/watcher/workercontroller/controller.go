// Package workercontroller abstracts starting and stopping the external
// telemetry-collector worker the watcher supervises, per SPEC_FULL.md
// §4.4.2, with a container-lifecycle variant and a Kubernetes
// deployment-scale variant.
package workercontroller

import (
	"context"
	"time"
)

// Controller is the boundary the watcher depends on. Both Ensure methods
// are no-ops when the worker is already in the target state. EnsureRunning
// returns once the start or scale-up request has been accepted; it does
// not wait for the worker to report running or ready. EnsureStopped on a
// container waits for the container to stop (up to grace); on a
// deployment it waits only for the desired replica count to read 0, not
// for the pods to terminate.
type Controller interface {
	EnsureRunning(ctx context.Context) error
	EnsureStopped(ctx context.Context, grace time.Duration) error
	IsRunning(ctx context.Context) (bool, error)
}
