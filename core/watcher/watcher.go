// Package watcher implements the DR-site collector watcher: it resolves
// the coordinating name independently of the coordinator and starts or
// stops the worker process to mirror the observed active site, per
// SPEC_FULL.md §4.4.
package watcher

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/mikempw/failover/core/clock"
	"github.com/mikempw/failover/core/watcher/resolver"
	"github.com/mikempw/failover/core/watcher/workercontroller"
)

// Watcher runs only on the DR site, independent of and peer to the DR
// coordinator. It never writes DNS and never consults the lease TXT.
type Watcher struct {
	FQDN     string
	MyIP     net.IP
	Interval time.Duration
	Grace    time.Duration

	Resolver   resolver.Resolver
	Controller workercontroller.Controller
	Clock      clock.Clock
	Log        zerolog.Logger

	haveLoggedOnce bool
	shouldRun      bool
}

// Run loops until ctx is cancelled. Each iteration resolves the
// coordinating name, starts or stops the worker to match, and
// self-heals a worker that died unexpectedly while it should be running,
// per SPEC_FULL.md §4.4.3.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		w.tick(ctx)
		if err := w.Clock.Sleep(ctx, w.Interval); err != nil {
			return nil
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	ip, err := w.Resolver.LookupA(ctx, w.FQDN)
	if err != nil {
		w.Log.Warn().Err(err).Str("fqdn", w.FQDN).Msg("resolution failed, keeping current state")
		w.selfHealIfNeeded(ctx)
		return
	}

	wasActive := w.shouldRun
	active := ip.Equal(w.MyIP)
	if active != w.shouldRun || !w.haveLoggedOnce {
		w.Log.Info().Bool("active", active).Str("resolved_ip", ip.String()).Msg("observed state change")
		w.haveLoggedOnce = true
	}
	w.shouldRun = active

	if active {
		running, err := w.Controller.IsRunning(ctx)
		if err != nil {
			w.Log.Warn().Err(err).Msg("failed to query worker state")
			return
		}
		if !running {
			if wasActive {
				w.Log.Warn().Msg("worker died unexpectedly while it should be running, restarting")
			}
			if err := w.Controller.EnsureRunning(ctx); err != nil {
				w.Log.Error().Err(err).Msg("failed to start worker")
			}
		}
		return
	}

	running, err := w.Controller.IsRunning(ctx)
	if err != nil {
		w.Log.Warn().Err(err).Msg("failed to query worker state")
		return
	}
	if running {
		if err := w.Controller.EnsureStopped(ctx, w.Grace); err != nil {
			w.Log.Error().Err(err).Msg("failed to stop worker")
		}
	}
}

// selfHealIfNeeded restarts the worker if it should be running but has
// died between polls, independent of any DNS change, mirroring the
// "died unexpectedly, restarting" behavior in every original watcher
// variant (otel_watcher.py, otel_watcher_docker.py, otel_watcher_k8s.py).
func (w *Watcher) selfHealIfNeeded(ctx context.Context) {
	if !w.shouldRun {
		return
	}
	running, err := w.Controller.IsRunning(ctx)
	if err != nil || running {
		return
	}
	w.Log.Warn().Msg("worker died unexpectedly while it should be running, restarting")
	if err := w.Controller.EnsureRunning(ctx); err != nil {
		w.Log.Error().Err(err).Msg("failed to restart worker")
	}
}
