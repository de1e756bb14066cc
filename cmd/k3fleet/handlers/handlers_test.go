package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k3fleet/internal/artifact"
	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/config"
	"github.com/imamik/k3fleet/internal/pipeline"
	k3test "github.com/imamik/k3fleet/internal/testing"
)

// saveAndRestoreFactories snapshots the injectable factory variables and
// restores them when the test finishes.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoad := loadValidated
	origStore := newStore
	origControlPlane := newControlPlane
	origRemote := newRemoteShell
	origRun := runPhases
	origPrintf := printf
	t.Cleanup(func() {
		loadValidated = origLoad
		newStore = origStore
		newControlPlane = origControlPlane
		newRemoteShell = origRemote
		runPhases = origRun
		printf = origPrintf
	})
}

func captureOutput(t *testing.T) *strings.Builder {
	t.Helper()
	var out strings.Builder
	printf = func(format string, v ...interface{}) {
		out.WriteString(fmt.Sprintf(format, v...))
	}
	return &out
}

func stubLoad(t *testing.T, spec *config.ClusterSpec, warnings config.ValidationErrors, err error) {
	t.Helper()
	loadValidated = func(string) (*config.ClusterSpec, config.ValidationErrors, error) {
		return spec, warnings, err
	}
}

func stubStore(t *testing.T) {
	t.Helper()
	newStore = func(string) (*artifact.Store, error) {
		return artifact.NewStore(t.TempDir())
	}
}

func TestApply_ValidationFailureAborts(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	verrs := config.ValidationErrors{{Field: "domain", Message: "is required", Severity: "error"}}
	stubLoad(t, nil, nil, verrs)

	ranPipeline := false
	runPhases = func(*pipeline.Context, []pipeline.Phase) error {
		ranPipeline = true
		return nil
	}

	err := Apply(context.Background(), ApplyOptions{})
	require.Error(t, err)
	assert.False(t, ranPipeline, "an invalid topology must never reach the pipeline")
}

func TestApply_PrintsWarningsAndRuns(t *testing.T) {
	saveAndRestoreFactories(t)
	out := captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	warnings := config.ValidationErrors{{Field: "nodes[0].description", Message: "empty", Severity: "warning"}}
	stubLoad(t, spec, warnings, nil)
	stubStore(t)

	var gotPhases []string
	runPhases = func(pctx *pipeline.Context, phases []pipeline.Phase) error {
		for _, p := range phases {
			gotPhases = append(gotPhases, p.Name())
		}
		pctx.State.Results.Record("srv", "deploy", pipeline.StatusOK, "deployed")
		return nil
	}
	newRemoteShell = func(string, string, *config.Timeouts) (pipeline.RemoteShellClient, error) {
		return k3test.NewMockRemoteShell(), nil
	}

	err := Apply(context.Background(), ApplyOptions{Yes: true})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "WARNING")
	assert.Contains(t, out.String(), "srv")
	assert.Equal(t, []string{"validate", "generate", "build", "confirm", "deploy", "verify"}, gotPhases)
}

func TestApply_DryRunStopsAtPlan(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)

	remoteRequested := false
	newRemoteShell = func(string, string, *config.Timeouts) (pipeline.RemoteShellClient, error) {
		remoteRequested = true
		return nil, errors.New("must not be called")
	}

	var gotPhases []string
	runPhases = func(_ *pipeline.Context, phases []pipeline.Phase) error {
		for _, p := range phases {
			gotPhases = append(gotPhases, p.Name())
		}
		return nil
	}

	err := Apply(context.Background(), ApplyOptions{DryRun: true, Yes: true})
	require.NoError(t, err)

	assert.False(t, remoteRequested, "dry-run must not open an SSH channel")
	assert.Equal(t, []string{"validate", "generate", "confirm"}, gotPhases)
}

func TestApply_SkipDeployEndsAfterGenerate(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)

	var gotPhases []string
	runPhases = func(_ *pipeline.Context, phases []pipeline.Phase) error {
		for _, p := range phases {
			gotPhases = append(gotPhases, p.Name())
		}
		return nil
	}

	err := Apply(context.Background(), ApplyOptions{SkipDeploy: true, Yes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"validate", "generate"}, gotPhases)
}

func TestApply_DeclinedConfirmationIsCleanAbort(t *testing.T) {
	saveAndRestoreFactories(t)
	out := captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)
	newRemoteShell = func(string, string, *config.Timeouts) (pipeline.RemoteShellClient, error) {
		return k3test.NewMockRemoteShell(), nil
	}
	runPhases = func(*pipeline.Context, []pipeline.Phase) error {
		return pipeline.ErrConfirmationDeclined
	}

	err := Apply(context.Background(), ApplyOptions{Yes: true})
	assert.ErrorIs(t, err, pipeline.ErrConfirmationDeclined)
	assert.Contains(t, out.String(), "aborted")
}

func TestApply_PerNodeFailuresExitNonZero(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)
	newRemoteShell = func(string, string, *config.Timeouts) (pipeline.RemoteShellClient, error) {
		return k3test.NewMockRemoteShell(), nil
	}
	runPhases = func(pctx *pipeline.Context, _ []pipeline.Phase) error {
		pctx.State.Results.Record("srv", "verify", pipeline.StatusError, "gone")
		return nil
	}

	err := Apply(context.Background(), ApplyOptions{Yes: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per-node failures")
}

func TestApply_SkipDeployWithCleanupSkipsControlPlane(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)

	cpRequested := false
	newControlPlane = func(string, *config.Timeouts) (cluster.ControlPlaneClient, error) {
		cpRequested = true
		return nil, errors.New("must not be called")
	}
	runPhases = func(*pipeline.Context, []pipeline.Phase) error { return nil }

	err := Apply(context.Background(), ApplyOptions{SkipDeploy: true, Cleanup: true, Yes: true})
	require.NoError(t, err)
	assert.False(t, cpRequested, "a generate-only run must not require a kubeconfig")
}

func TestApply_ThreadsTimeoutsToCollaborators(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)

	var shellTimeouts *config.Timeouts
	newRemoteShell = func(_, _ string, timeouts *config.Timeouts) (pipeline.RemoteShellClient, error) {
		shellTimeouts = timeouts
		return k3test.NewMockRemoteShell(), nil
	}
	var cpTimeouts *config.Timeouts
	newControlPlane = func(_ string, timeouts *config.Timeouts) (cluster.ControlPlaneClient, error) {
		cpTimeouts = timeouts
		return k3test.NewMockControlPlane().WithMembers(), nil
	}
	runPhases = func(*pipeline.Context, []pipeline.Phase) error { return nil }

	err := Apply(context.Background(), ApplyOptions{Yes: true, Cleanup: true})
	require.NoError(t, err)

	require.NotNil(t, shellTimeouts)
	assert.Positive(t, shellTimeouts.SSH)
	assert.Positive(t, shellTimeouts.RetryMaxAttempts)
	require.NotNil(t, cpTimeouts)
	assert.Positive(t, cpTimeouts.ControlPlane)
}

func TestCleanup_WiresControlPlaneAndRunsCleanupPhase(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)

	cp := k3test.NewMockControlPlane().WithMembers()
	newControlPlane = func(string, *config.Timeouts) (cluster.ControlPlaneClient, error) {
		return cp, nil
	}
	newRemoteShell = func(string, string, *config.Timeouts) (pipeline.RemoteShellClient, error) {
		return k3test.NewMockRemoteShell(), nil
	}

	var gotPhases []string
	var gotCtx *pipeline.Context
	runPhases = func(pctx *pipeline.Context, phases []pipeline.Phase) error {
		gotCtx = pctx
		for _, p := range phases {
			gotPhases = append(gotPhases, p.Name())
		}
		return nil
	}

	err := Cleanup(context.Background(), CleanupOptions{Yes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"validate", "cleanup"}, gotPhases)
	require.NotNil(t, gotCtx)
	assert.Same(t, cp, gotCtx.ControlPlane)
	assert.True(t, gotCtx.Options.Cleanup)
}

func TestCleanup_DryRunSkipsRemoteShell(t *testing.T) {
	saveAndRestoreFactories(t)
	captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").Build()
	stubLoad(t, spec, nil, nil)
	stubStore(t)
	newControlPlane = func(string, *config.Timeouts) (cluster.ControlPlaneClient, error) {
		return k3test.NewMockControlPlane().WithMembers(), nil
	}
	remoteRequested := false
	newRemoteShell = func(string, string, *config.Timeouts) (pipeline.RemoteShellClient, error) {
		remoteRequested = true
		return nil, errors.New("must not be called")
	}
	runPhases = func(*pipeline.Context, []pipeline.Phase) error { return nil }

	err := Cleanup(context.Background(), CleanupOptions{DryRun: true, Yes: true})
	require.NoError(t, err)
	assert.False(t, remoteRequested)
}

func TestValidate_ReportsViolations(t *testing.T) {
	saveAndRestoreFactories(t)
	out := captureOutput(t)

	verrs := config.ValidationErrors{
		{Field: "domain", Message: "is required", Severity: "error"},
		{Field: "nodes[0].description", Message: "empty", Severity: "warning"},
	}
	stubLoad(t, nil, verrs.Warnings(), verrs)

	err := Validate("cluster.yaml")
	require.Error(t, err)
	assert.Contains(t, out.String(), "ERROR: [domain]")
	assert.Contains(t, out.String(), "WARNING")
}

func TestValidate_ValidTopology(t *testing.T) {
	saveAndRestoreFactories(t)
	out := captureOutput(t)

	spec := k3test.NewSpecBuilder().WithServer("srv", "10.0.0.10").WithAgent("n1", "10.0.0.11").Build()
	stubLoad(t, spec, nil, nil)

	require.NoError(t, Validate(""))
	assert.Contains(t, out.String(), "topology valid")
}
