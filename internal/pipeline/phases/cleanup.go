package phases

import (
	"fmt"
	"strings"

	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/decommission"
	"github.com/imamik/k3fleet/internal/pipeline"
)

// Cleanup decommissions stale members: live nodes absent from the
// declared topology, plus nodes whose interrupted decommission left
// cached credentials behind. The operator confirms the batch before
// any cluster mutation; the original workflow's per-run prompt lives
// here rather than at the deploy gate.
type Cleanup struct{}

// NewCleanup creates the decommission phase.
func NewCleanup() *Cleanup {
	return &Cleanup{}
}

// Name implements the pipeline.Phase interface.
func (*Cleanup) Name() string {
	return "cleanup"
}

// Run implements the pipeline.Phase interface.
func (*Cleanup) Run(ctx *pipeline.Context) error {
	inspector := cluster.NewInspector(ctx.ControlPlane)

	// A connectivity failure aborts here: it must never be read as
	// "the cluster is empty, decommission everything".
	stale, err := inspector.StaleMembers(ctx, ctx.Spec)
	if err != nil {
		return err
	}
	ctx.State.Stale = stale

	candidates, err := decommission.Candidates(stale, ctx.Spec.NodeNames(), ctx.Store)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		ctx.Observer.Printf("no stale nodes to decommission")
		return nil
	}

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}

	if !ctx.Options.DryRun && !ctx.Options.AutoApprove {
		prompt := fmt.Sprintf("Decommission %d stale node(s)? %s", len(names), strings.Join(names, ", "))
		confirmed, err := ctx.Confirmer.Confirm(ctx, prompt)
		if err != nil {
			return err
		}
		if !confirmed {
			return pipeline.ErrConfirmationDeclined
		}
	}

	orchestrator := &decommission.Orchestrator{
		ControlPlane:       ctx.ControlPlane,
		Remote:             ctx.Remote,
		Credentials:        ctx.Store,
		Observer:           ctx.Observer,
		Timeouts:           ctx.Timeouts,
		Domain:             ctx.Spec.Domain,
		DryRun:             ctx.Options.DryRun,
		ForceServerRemoval: ctx.Options.ForceServerRemoval,
	}
	return orchestrator.Run(ctx, candidates, ctx.State.Results)
}
