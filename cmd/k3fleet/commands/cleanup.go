package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k3fleet/cmd/k3fleet/handlers"
)

// Cleanup returns the command that decommissions stale cluster members
// without running the deployment pipeline.
func Cleanup() *cobra.Command {
	var opts handlers.CleanupOptions

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Decommission cluster members removed from the topology",
		Long: `Decommission cluster members removed from the topology.

Compares the live cluster membership with the declared topology and
walks every stale node through drain, removal, service stop, and
credential purge. Interrupted runs resume where they left off.

Examples:
  # Show which nodes would be decommissioned
  k3fleet cleanup --dry-run

  # Decommission without a confirmation prompt
  k3fleet cleanup --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cleanup(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to topology file (default: cluster.yaml)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Artifact output directory (default: artifacts)")
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: $KUBECONFIG or ~/.kube/config)")
	cmd.Flags().StringVar(&opts.SSHKeyPath, "ssh-key", "", "SSH private key for node access (default: ~/.ssh/id_rsa)")
	cmd.Flags().StringVar(&opts.SSHUser, "ssh-user", "", "SSH user for node access (default: root)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show which nodes would be decommissioned without changing anything")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip confirmation prompts")
	cmd.Flags().BoolVar(&opts.ForceServerRemoval, "force-server-removal", false, "Allow decommissioning the server node")

	return cmd
}
