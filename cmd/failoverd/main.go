// Command failoverd is the active/passive DNS-lease coordination daemon.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mikempw/failover/core/cliapp"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "failoverd: panic: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()
	cliapp.Execute()
}
