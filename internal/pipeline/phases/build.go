package phases

import (
	"context"
	"errors"
	"sort"

	"github.com/imamik/k3fleet/internal/pipeline"
	"github.com/imamik/k3fleet/internal/util/async"
)

// Build evaluates every declared node's configuration through the
// external builder. Any failure aborts the pipeline before deploy; a
// half-built fleet never ships.
type Build struct{}

// NewBuild creates the build phase.
func NewBuild() *Build {
	return &Build{}
}

// Name implements the pipeline.Phase interface.
func (*Build) Name() string {
	return "build"
}

// Run implements the pipeline.Phase interface.
func (*Build) Run(ctx *pipeline.Context) error {
	names := make([]string, 0, len(ctx.Spec.Nodes))
	for _, node := range ctx.Spec.Nodes {
		names = append(names, node.Name)
	}

	outcomes := async.RunPerNode(ctx, names, func(runCtx context.Context, node string) error {
		return ctx.Evaluator.Evaluate(runCtx, node)
	})

	var failed []string
	var firstErr error
	sort.Strings(names)
	for _, name := range names {
		err := outcomes[name]
		if err == nil {
			ctx.State.Results.Record(name, "build", pipeline.StatusOK, "configuration built")
			continue
		}
		ctx.State.Results.Record(name, "build", pipeline.StatusError, err.Error())
		failed = append(failed, name)
		if firstErr == nil {
			firstErr = err
		}
	}

	if len(failed) > 0 {
		var buildErr *pipeline.BuildError
		if errors.As(firstErr, &buildErr) {
			return firstErr
		}
		return &pipeline.BuildError{Node: failed[0], Err: firstErr}
	}

	ctx.Observer.Printf("built configurations for %d nodes", len(names))
	return nil
}
