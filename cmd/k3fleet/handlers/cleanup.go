package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/k3fleet/internal/pipeline"
	"github.com/imamik/k3fleet/internal/pipeline/phases"
)

// CleanupOptions carries the cleanup command's flags.
type CleanupOptions struct {
	ConfigPath string
	OutputDir  string
	Kubeconfig string
	SSHKeyPath string
	SSHUser    string

	DryRun             bool
	Yes                bool
	ForceServerRemoval bool
}

// Cleanup decommissions stale nodes without running the deployment
// pipeline: it validates the topology, inspects the live membership,
// and walks every stale member through the decommission state machine.
func Cleanup(ctx context.Context, opts CleanupOptions) error {
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
		Cleanup:            true,
		AutoApprove:        opts.Yes,
		ForceServerRemoval: opts.ForceServerRemoval,
	})

	if opts.Yes {
		pctx.Confirmer = pipeline.AutoConfirmer{}
	} else {
		pctx.Confirmer = pipeline.NewPromptConfirmer()
	}

	controlPlane, err := newControlPlane(kubeconfigPath(opts.Kubeconfig), pctx.Timeouts)
	if err != nil {
		return err
	}
	pctx.ControlPlane = controlPlane

	if !opts.DryRun {
		shell, err := newRemoteShell(sshKeyPath(opts.SSHKeyPath), sshUser(opts.SSHUser), pctx.Timeouts)
		if err != nil {
			return err
		}
		pctx.Remote = shell
	}

	runErr := runPhases(pctx, []pipeline.Phase{phases.NewValidate(), phases.NewCleanup()})

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
