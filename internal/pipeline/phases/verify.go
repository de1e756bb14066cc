package phases

import (
	"context"

	"github.com/imamik/k3fleet/internal/pipeline"
	"github.com/imamik/k3fleet/internal/util/async"
)

// Verify pings every declared node's management channel after deploy.
// Failures degrade the result to a warning; the deploy already
// happened, so the table reports reachability instead of rolling back.
type Verify struct{}

// NewVerify creates the verification phase.
func NewVerify() *Verify {
	return &Verify{}
}

// Name implements the pipeline.Phase interface.
func (*Verify) Name() string {
	return "verify"
}

// Run implements the pipeline.Phase interface.
func (*Verify) Run(ctx *pipeline.Context) error {
	addresses := make(map[string]string, len(ctx.Spec.Nodes))
	names := make([]string, 0, len(ctx.Spec.Nodes))
	for _, node := range ctx.Spec.Nodes {
		addresses[node.Name] = node.Hostname
		names = append(names, node.Name)
	}

	outcomes := async.RunPerNode(ctx, names, func(runCtx context.Context, node string) error {
		return ctx.Remote.Ping(runCtx, addresses[node], ctx.Timeouts.Verify)
	})

	degraded := 0
	for _, name := range names {
		if err := outcomes[name]; err != nil {
			ctx.State.Results.Record(name, "verify", pipeline.StatusWarning, err.Error())
			degraded++
			continue
		}
		ctx.State.Results.Record(name, "verify", pipeline.StatusOK, "reachable")
	}

	if degraded > 0 {
		ctx.Observer.Printf("WARNING: %d of %d nodes unreachable after deploy", degraded, len(names))
	}
	return nil
}
