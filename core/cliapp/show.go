package cliapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikempw/failover/core/lease"
)

type showOutput struct {
	Record               string `json:"record"`
	A                     string `json:"a"`
	Owner                 string `json:"owner"`
	ExpiresAt             int64  `json:"expires_at"`
	TimeRemainingSeconds int64  `json:"time_remaining_seconds"`
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current lease as a structured object",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := showOutput{Record: cfg.DNSRecord, Owner: "UNKNOWN"}

		backend, err := buildBackend(cfg)
		if err != nil {
			fmt.Println(mustJSON(out))
			return nil
		}
		rec, err := backend.GetRecords(cmd.Context())
		if err != nil {
			fmt.Println(mustJSON(out))
			return nil
		}
		if rec.A != nil {
			out.A = rec.A.String()
		}
		if rec.TXT != "" {
			if parsed, err := lease.Parse(rec.TXT); err == nil {
				out.Owner = string(parsed.Owner)
				out.ExpiresAt = parsed.ExpiresAt.Unix()
				out.TimeRemainingSeconds = int64(time.Until(parsed.ExpiresAt).Seconds())
			}
		}
		fmt.Println(mustJSON(out))
		return nil
	},
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
