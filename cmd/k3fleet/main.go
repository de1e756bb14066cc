// Package main is the entry point for the k3fleet CLI.
//
// k3fleet is a command-line tool for keeping a small k3s homelab fleet
// in line with a declarative topology document. It regenerates per-node
// configuration artifacts, drives the build and deploy tooling, and
// decommissions nodes that were removed from the topology.
//
// Commands: apply, cleanup, validate, version, completion.
//
// For detailed usage information, run:
//
//	k3fleet --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/k3fleet/cmd/k3fleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
