package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/core/dnsbackend"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate configuration without starting the loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := buildBackend(cfg); err != nil {
			return &BackendError{Op: "validate: build backend", Err: err}
		}
		fmt.Printf("configuration OK: role=%s provider=%s record=%s (registered providers: %v)\n",
			cfg.Role, cfg.DNSProvider, cfg.DNSRecord, dnsbackend.Registered())
		return nil
	},
}
