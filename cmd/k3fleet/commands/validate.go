package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k3fleet/cmd/k3fleet/handlers"
)

// Validate returns the command that checks the topology document
// without touching the cluster.
func Validate() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the topology document for violations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Validate(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to topology file (default: cluster.yaml)")

	return cmd
}
