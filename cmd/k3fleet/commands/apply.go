package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k3fleet/cmd/k3fleet/handlers"
)

// Apply returns the command that reconciles the fleet with the
// declared topology.
//
// The pipeline validates the topology, regenerates artifacts, builds
// every node's configuration, asks for confirmation, deploys, and
// verifies reachability. With --cleanup, stale cluster members are
// decommissioned in the same run.
func Apply() *cobra.Command {
	var opts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile the fleet with the declared topology",
		Long: `Reconcile the fleet with the declared topology.

Examples:
  # Full pipeline against cluster.yaml in the current directory
  k3fleet apply

  # Show the plan without touching anything
  k3fleet apply --dry-run

  # Regenerate artifacts only
  k3fleet apply --skip-deploy

  # Also decommission nodes removed from the topology
  k3fleet apply --cleanup`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to topology file (default: cluster.yaml)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Artifact output directory (default: artifacts)")
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: $KUBECONFIG or ~/.kube/config)")
	cmd.Flags().StringVar(&opts.SSHKeyPath, "ssh-key", "", "SSH private key for node access (default: ~/.ssh/id_rsa)")
	cmd.Flags().StringVar(&opts.SSHUser, "ssh-user", "", "SSH user for node access (default: root)")
	cmd.Flags().StringArrayVar(&opts.BuildCommand, "build-cmd", []string{"nix", "build", ".#nodes.{node}"}, "Builder invocation; {node} expands to the node name")
	cmd.Flags().StringArrayVar(&opts.DeployCommand, "deploy-cmd", []string{"deploy", ".#{node}"}, "Deployer invocation; {node} expands to the node name")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Compute and print the plan without changing anything")
	cmd.Flags().BoolVar(&opts.SkipDeploy, "skip-deploy", false, "Stop after regenerating artifacts")
	cmd.Flags().BoolVar(&opts.Cleanup, "cleanup", false, "Decommission cluster members removed from the topology")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip confirmation prompts")
	cmd.Flags().BoolVar(&opts.ForceServerRemoval, "force-server-removal", false, "Allow decommissioning the server node")

	return cmd
}
