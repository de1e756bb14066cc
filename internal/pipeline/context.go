package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/imamik/k3fleet/internal/artifact"
	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/config"
)

// Options are the operator-facing switches for a pipeline run.
type Options struct {
	// DryRun computes every diff and would-be action but issues zero
	// mutating calls; read-only queries remain permitted.
	DryRun bool

	// SkipDeploy stops the run after artifact generation.
	SkipDeploy bool

	// Cleanup enables the decommission phase for stale members.
	Cleanup bool

	// AutoApprove answers the confirmation gate affirmatively without
	// prompting.
	AutoApprove bool

	// ForceServerRemoval overrides the fatal guard against
	// decommissioning the sole server node.
	ForceServerRemoval bool
}

// State holds the shared results of pipeline phases. It is
// progressively populated as each phase completes and is passed to
// subsequent phases that need earlier results.
type State struct {
	// Diff is the artifact reconciliation outcome (populated by the
	// generate phase; Plan-only in dry-run mode).
	Diff artifact.Diff

	// Stale holds the live members absent from the desired topology
	// (populated by the cleanup phase).
	Stale []cluster.Member

	// Results accumulates one record per node and phase. Never
	// collapsed into a single boolean.
	Results *ResultSet
}

// NewState creates an empty pipeline state.
func NewState() *State {
	return &State{Results: NewResultSet()}
}

// Context wraps all dependencies and state needed for a pipeline phase.
type Context struct {
	context.Context

	// RunID uniquely identifies this pipeline run in logs.
	RunID string

	Spec     *config.ClusterSpec
	Store    *artifact.Store
	State    *State
	Observer Observer
	Timeouts *config.Timeouts
	Options  Options

	// External collaborators. Nil clients are only acceptable for
	// phases that never touch them (e.g. generate-only runs).
	ControlPlane cluster.ControlPlaneClient
	Remote       RemoteShellClient
	Evaluator    EvaluatorClient
	Deployer     DeployExecutor
	Confirmer    Confirmer
}

// NewContext creates a new pipeline context with a fresh run ID and a
// console observer carrying it.
func NewContext(ctx context.Context, spec *config.ClusterSpec, store *artifact.Store, opts Options) *Context {
	runID := uuid.NewString()
	observer := NewConsoleObserver().WithFields(map[string]string{"run": runID})

	return &Context{
		Context:  ctx,
		RunID:    runID,
		Spec:     spec,
		Store:    store,
		State:    NewState(),
		Observer: observer,
		Timeouts: config.LoadTimeouts(),
		Options:  opts,
	}
}
