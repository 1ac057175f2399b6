package cliapp

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/core/lease"
)

var failbackCmd = &cobra.Command{
	Use:   "failback",
	Short: "Operator-initiated restoration of primary as active",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := buildBackend(cfg)
		if err != nil {
			return &BackendError{Op: "failback: build backend", Err: err}
		}
		exp := time.Now().Add(cfg.LeaseTTL)
		txt := lease.Format(lease.Primary, exp)
		if err := backend.SetRecords(cmd.Context(), cfg.PrimaryIP, txt, cfg.DNSTTL); err != nil {
			return &BackendError{Op: "failback: write lease", Err: err}
		}
		return nil
	},
}
