package phases

import (
	"errors"
	"sort"

	"github.com/imamik/k3fleet/internal/pipeline"
)

var errMissingResult = errors.New("no result reported by deploy executor")

// Deploy hands the full node list to the external deploy executor and
// records one outcome per node. Any failure is fatal: the fleet may be
// left in a mixed state, and the per-node table says exactly where.
type Deploy struct{}

// NewDeploy creates the deploy phase.
func NewDeploy() *Deploy {
	return &Deploy{}
}

// Name implements the pipeline.Phase interface.
func (*Deploy) Name() string {
	return "deploy"
}

// Run implements the pipeline.Phase interface.
func (*Deploy) Run(ctx *pipeline.Context) error {
	names := make([]string, 0, len(ctx.Spec.Nodes))
	for _, node := range ctx.Spec.Nodes {
		names = append(names, node.Name)
	}
	sort.Strings(names)

	outcomes, err := ctx.Deployer.Deploy(ctx, names)
	if err != nil {
		return err
	}

	failed := make(map[string]error)
	for _, name := range names {
		outcome, reported := outcomes[name]
		switch {
		case !reported:
			ctx.State.Results.Record(name, "deploy", pipeline.StatusError, "no result reported by deploy executor")
			failed[name] = errMissingResult
		case outcome != nil:
			ctx.State.Results.Record(name, "deploy", pipeline.StatusError, outcome.Error())
			failed[name] = outcome
		default:
			ctx.State.Results.Record(name, "deploy", pipeline.StatusOK, "deployed")
		}
	}

	if len(failed) > 0 {
		return &pipeline.DeployError{Failed: failed}
	}
	ctx.Observer.Printf("deployed to %d nodes", len(names))
	return nil
}
