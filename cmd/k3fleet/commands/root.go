// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the k3fleet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "k3fleet",
		Short: "Manage a declarative k3s homelab fleet",
		Long: `k3fleet keeps a small k3s cluster in line with a declarative topology:
it generates per-node configuration artifacts, deploys them through your
build tooling, and decommissions nodes that were removed from the
topology document.`,
	}

	cmd.AddCommand(Apply())
	cmd.AddCommand(Cleanup())
	cmd.AddCommand(Validate())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
