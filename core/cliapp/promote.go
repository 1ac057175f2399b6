package cliapp

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/core/lease"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Operator-initiated DR takeover, regardless of current lease state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := buildBackend(cfg)
		if err != nil {
			return &BackendError{Op: "promote: build backend", Err: err}
		}
		exp := time.Now().Add(cfg.LeaseTTL)
		txt := lease.Format(lease.DR, exp)
		if err := backend.SetRecords(cmd.Context(), cfg.DRIP, txt, cfg.DNSTTL); err != nil {
			return &BackendError{Op: "promote: write lease", Err: err}
		}
		return nil
	},
}
