package phases

import (
	"fmt"

	"github.com/imamik/k3fleet/internal/pipeline"
)

// Confirm renders the execution plan and gates the deploy on the
// operator's approval. In dry-run mode the rendered plan is the final
// output; --yes answers the gate without prompting.
type Confirm struct{}

// NewConfirm creates the confirmation phase.
func NewConfirm() *Confirm {
	return &Confirm{}
}

// Name implements the pipeline.Phase interface.
func (*Confirm) Name() string {
	return "confirm"
}

// Run implements the pipeline.Phase interface.
func (*Confirm) Run(ctx *pipeline.Context) error {
	plan := pipeline.RenderPlan(ctx.Spec, ctx.State.Diff, ctx.State.Stale)
	ctx.Observer.Printf("\n%s", plan)

	if ctx.Options.DryRun {
		pipeline.LogDryRun(ctx.Observer, "confirm", "", fmt.Sprintf("deploy to %d node(s)", len(ctx.Spec.Nodes)))
		return nil
	}
	if ctx.Options.AutoApprove {
		return nil
	}

	confirmed, err := ctx.Confirmer.Confirm(ctx, fmt.Sprintf("Deploy to %d node(s) in %s?", len(ctx.Spec.Nodes), ctx.Spec.Domain))
	if err != nil {
		return err
	}
	if !confirmed {
		return pipeline.ErrConfirmationDeclined
	}
	return nil
}
