package cliapp

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/core/lease"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the initial lease, claiming this site as active",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := buildBackend(cfg)
		if err != nil {
			return &BackendError{Op: "init: build backend", Err: err}
		}

		ctx := cmd.Context()
		if !forceInit && !cfg.InitForce {
			rec, err := backend.GetRecords(ctx)
			if err != nil {
				return &BackendError{Op: "init: read existing lease", Err: err}
			}
			if rec.TXT != "" {
				if parsed, err := lease.Parse(rec.TXT); err == nil {
					if parsed.Owner != selfOwner(cfg) && parsed.Valid(time.Now()) {
						return &PreconditionError{Msg: "a valid lease for the other site already exists; pass --force to overwrite"}
					}
				}
			}
		}

		exp := time.Now().Add(cfg.LeaseTTL)
		txt := lease.Format(selfOwner(cfg), exp)
		if err := backend.SetRecords(ctx, selfIP(cfg), txt, cfg.DNSTTL); err != nil {
			return &BackendError{Op: "init: write lease", Err: err}
		}
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing valid lease for the other site")
}
