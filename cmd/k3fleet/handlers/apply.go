// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/k3fleet/internal/artifact"
	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/config"
	"github.com/imamik/k3fleet/internal/pipeline"
	"github.com/imamik/k3fleet/internal/pipeline/phases"
	"github.com/imamik/k3fleet/internal/platform/executor"
	"github.com/imamik/k3fleet/internal/platform/kube"
	"github.com/imamik/k3fleet/internal/platform/remote"
)

// ApplyOptions carries the apply command's flags.
type ApplyOptions struct {
	ConfigPath string
	OutputDir  string
	Kubeconfig string
	SSHKeyPath string
	SSHUser    string

	BuildCommand  []string
	DeployCommand []string

	DryRun             bool
	SkipDeploy         bool
	Cleanup            bool
	Yes                bool
	ForceServerRemoval bool
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	loadValidated = config.LoadValidated

	newStore = artifact.NewStore

	newControlPlane = func(kubeconfig string, timeouts *config.Timeouts) (cluster.ControlPlaneClient, error) {
		return kube.NewClient(kubeconfig, timeouts.ControlPlane)
	}

	newRemoteShell = func(keyPath, user string, timeouts *config.Timeouts) (pipeline.RemoteShellClient, error) {
		key, err := os.ReadFile(keyPath) // #nosec G304 - operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key %s: %w", keyPath, err)
		}
		return remote.NewShell(remote.Config{
			User:           user,
			PrivateKey:     key,
			DialTimeout:    timeouts.SSH,
			CommandTimeout: timeouts.SSH,
			MaxRetries:     timeouts.RetryMaxAttempts,
			RetryDelay:     timeouts.RetryInitialDelay,
		})
	}

	runPhases = pipeline.RunPhases

	printf = func(format string, v ...interface{}) {
		fmt.Printf(format, v...)
	}
)

// Apply runs the deployment pipeline: validate the topology, reconcile
// artifacts, optionally decommission stale nodes, build and deploy, and
// verify reachability. The per-node status table is printed whether or
// not the run succeeded.
func Apply(ctx context.Context, opts ApplyOptions) error {
	spec, warnings, err := loadValidated(configPath(opts.ConfigPath))
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		printf("WARNING: %s\n", warning.Error())
	}

	store, err := newStore(outputDir(opts.OutputDir))
	if err != nil {
		return err
	}

	pctx := pipeline.NewContext(ctx, spec, store, pipeline.Options{
		DryRun:             opts.DryRun,
		SkipDeploy:         opts.SkipDeploy,
		Cleanup:            opts.Cleanup,
		AutoApprove:        opts.Yes,
		ForceServerRemoval: opts.ForceServerRemoval,
	})

	if err := wireCollaborators(pctx, opts); err != nil {
		return err
	}

	runErr := runPhases(pctx, composePhases(pctx.Options))

	if results := pctx.State.Results.All(); len(results) > 0 {
		printf("\n%s\n", pctx.State.Results.RenderTable())
	}

	if errors.Is(runErr, pipeline.ErrConfirmationDeclined) {
		printf("aborted: %v\n", runErr)
		return runErr
	}
	if runErr != nil {
		return runErr
	}
	if pctx.State.Results.HasErrors() {
		return fmt.Errorf("completed with per-node failures, see status table")
	}
	return nil
}

// composePhases selects the phase sequence for the requested mode.
// Dry-run ends at the rendered plan; skip-deploy ends after artifact
// generation.
func composePhases(opts pipeline.Options) []pipeline.Phase {
	seq := []pipeline.Phase{phases.NewValidate(), phases.NewGenerate()}

	if opts.SkipDeploy && !opts.DryRun {
		return seq
	}
	if opts.Cleanup {
		seq = append(seq, phases.NewCleanup())
	}
	if opts.DryRun {
		return append(seq, phases.NewConfirm())
	}
	return append(seq,
		phases.NewBuild(),
		phases.NewConfirm(),
		phases.NewDeploy(),
		phases.NewVerify(),
	)
}

// wireCollaborators attaches the external clients the selected phases
// need. Dry-run still wires the control plane for read-only membership
// queries but never a remote shell.
func wireCollaborators(pctx *pipeline.Context, opts ApplyOptions) error {
	if opts.Yes {
		pctx.Confirmer = pipeline.AutoConfirmer{}
	} else {
		pctx.Confirmer = pipeline.NewPromptConfirmer()
	}

	// composePhases drops cleanup from a skip-deploy run, so a
	// generate-only run must not require a kubeconfig.
	cleanupSelected := opts.Cleanup && (opts.DryRun || !opts.SkipDeploy)
	if cleanupSelected {
		controlPlane, err := newControlPlane(kubeconfigPath(opts.Kubeconfig), pctx.Timeouts)
		if err != nil {
			return err
		}
		pctx.ControlPlane = controlPlane
	}

	if opts.DryRun || opts.SkipDeploy {
		return nil
	}

	shell, err := newRemoteShell(sshKeyPath(opts.SSHKeyPath), sshUser(opts.SSHUser), pctx.Timeouts)
	if err != nil {
		return err
	}
	pctx.Remote = shell

	pctx.Evaluator = &executor.Builder{Template: executor.CommandTemplate(opts.BuildCommand)}
	pctx.Deployer = &executor.Deployer{Template: executor.CommandTemplate(opts.DeployCommand)}
	return nil
}

func configPath(path string) string {
	if path == "" {
		return config.DefaultFile
	}
	return path
}

func outputDir(dir string) string {
	if dir == "" {
		return "artifacts"
	}
	return dir
}

func kubeconfigPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}

func sshKeyPath(path string) string {
	if path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "id_rsa")
}

func sshUser(user string) string {
	if user == "" {
		return "root"
	}
	return user
}
