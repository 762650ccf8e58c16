// Package main provides the entry point for the meshalign CLI tool.
package main

import (
	"os"

	"github.com/graphmesh/meshalign/cmd/meshalign/cmd"
	"github.com/graphmesh/meshalign/pkg/logging"
)

// Version information populated at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cmd.Execute(version, commit, date); err != nil {
		logging.Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
