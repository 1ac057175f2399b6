package cliapp

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mikempw/failover/core/clock"
	"github.com/mikempw/failover/core/coordinator"
	"github.com/mikempw/failover/core/health"
	"github.com/mikempw/failover/core/siteconfig"
	"github.com/mikempw/failover/core/watcher"
	"github.com/mikempw/failover/core/watcher/resolver"
	"github.com/mikempw/failover/core/watcher/workercontroller"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coordination loop (and, on the DR site, the collector watcher) until stopped",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := buildBackend(cfg)
		if err != nil {
			return &BackendError{Op: "run: build backend", Err: err}
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log.Info().
			Str("role", string(cfg.Role)).
			Str("dns_provider", cfg.DNSProvider).
			Str("record", cfg.DNSRecord).
			Dur("update_interval", cfg.UpdateInterval).
			Dur("lease_ttl", cfg.LeaseTTL).
			Int("fail_threshold", cfg.FailThreshold).
			Msg("failoverd starting")

		if cfg.Role == siteconfig.RolePrimary {
			c := coordinator.New(cfg, backend, nil, clock.Real, log.Logger)
			return c.RunPrimary(ctx)
		}

		oracle, err := buildOracle(cfg)
		if err != nil {
			return err
		}
		c := coordinator.New(cfg, backend, oracle, clock.Real, log.Logger)

		w, err := buildWatcher(cfg)
		if err != nil {
			return err
		}

		errC := make(chan error, 2)
		go func() { errC <- c.RunDR(ctx) }()
		go func() { errC <- w.Run(ctx) }()

		<-ctx.Done()
		<-errC
		<-errC
		return nil
	},
}

func buildOracle(cfg siteconfig.T) (health.Oracle, error) {
	switch cfg.HealthMode {
	case siteconfig.HealthModeMetrics:
		return health.NewMetrics(cfg.HealthURL, cfg.HealthMetric, cfg.HealthStaleCount, cfg.HealthTimeout), nil
	default:
		return &health.TCP{
			Host: cfg.HealthHost, Port: cfg.HealthPort, Timeout: cfg.HealthTimeout,
			ConfirmHost: cfg.HealthConfirmHost, ConfirmPort: cfg.HealthConfirmPort,
		}, nil
	}
}

func buildWatcher(cfg siteconfig.T) (*watcher.Watcher, error) {
	var res resolver.Resolver = resolver.System{}
	if cfg.DNSServer != "" {
		res = resolver.Direct{Server: cfg.DNSServer}
	}

	var ctrl workercontroller.Controller
	var err error
	switch cfg.WorkerController {
	case siteconfig.WorkerK8sScale:
		ctrl, err = workercontroller.NewK8sScale(cfg.WorkerNamespace, cfg.WorkerDeployment, log.Logger)
	default:
		ctrl, err = workercontroller.NewContainer(cfg.WorkerContainerName, log.Logger)
	}
	if err != nil {
		return nil, &BackendError{Op: "run: build worker controller", Err: err}
	}

	return &watcher.Watcher{
		FQDN:       cfg.DNSRecord,
		MyIP:       cfg.MyIP,
		Interval:   cfg.OtelCheckInterval,
		Grace:      10 * time.Second,
		Resolver:   res,
		Controller: ctrl,
		Clock:      clock.Real,
		Log:        log.Logger,
	}, nil
}
