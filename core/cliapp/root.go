// Package cliapp is the cobra command tree for the failoverd binary,
// following the shape of the reference daemon's core/om root command:
// persistent flags configure logging before any subcommand runs, and
// Execute maps typed errors to process exit codes via the exitCoder
// convention instead of a hard-coded switch.
package cliapp

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mikempw/failover/util/logging"
)

var (
	debug     bool
	color     bool
	logFile   string
	logFormat string
)

var root = &cobra.Command{
	Use:           "failoverd",
	Short:         "Active/passive DNS-lease coordination daemon",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogger()
	},
}

func init() {
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug-level logging")
	root.PersistentFlags().BoolVar(&color, "color", false, "force colored console output")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rolling file")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "\"console\" or \"json\"")

	root.AddCommand(initCmd, runCmd, showCmd, promoteCmd, failbackCmd, validateCmd)
}

func configureLogger() {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	cfg := logging.Config{
		WithConsoleLog:  true,
		WithColor:       color,
		EncodeLogsAsJSON: logFormat == "json",
		Level:           level,
	}
	if logFile != "" {
		cfg.WithLogFile = true
		cfg.Filename = logFile
	}
	l := logging.Configure(cfg)
	log.Logger = *l
}

// Execute runs the command tree and maps any returned error to a process
// exit code, exactly as the reference daemon's core/om.ExecuteArgs does.
func Execute() {
	if err := root.Execute(); err != nil {
		var xc exitCoder
		code := 1
		if errors.As(err, &xc) {
			code = xc.ExitCode()
		}
		log.Error().Err(err).Msg("failoverd exiting with error")
		os.Exit(code)
	}
}
