package phases

import (
	"github.com/imamik/k3fleet/internal/artifact"
	"github.com/imamik/k3fleet/internal/pipeline"
)

// Generate reconciles the artifact store against the declared topology.
// In dry-run mode it computes the same diff without writing anything.
type Generate struct{}

// NewGenerate creates the artifact generation phase.
func NewGenerate() *Generate {
	return &Generate{}
}

// Name implements the pipeline.Phase interface.
func (*Generate) Name() string {
	return "generate"
}

// Run implements the pipeline.Phase interface.
func (*Generate) Run(ctx *pipeline.Context) error {
	reconciler := artifact.NewReconciler(ctx.Store)

	var diff artifact.Diff
	var err error
	if ctx.Options.DryRun {
		diff, err = reconciler.Plan(ctx.Spec)
	} else {
		diff, err = reconciler.Reconcile(ctx.Spec)
	}
	if err != nil {
		return err
	}
	ctx.State.Diff = diff

	emit := func(eventType pipeline.EventType, verb string, names []string) {
		for _, name := range names {
			message := verb
			if ctx.Options.DryRun {
				message = "would " + verb
			}
			ctx.Observer.Event(pipeline.Event{
				Type:    eventType,
				Phase:   "generate",
				Node:    name,
				Message: message,
			})
			ctx.State.Results.Record(name, "generate", pipeline.StatusOK, message)
		}
	}
	emit(pipeline.EventArtifactCreated, "artifact created", diff.Created)
	emit(pipeline.EventArtifactUpdated, "artifact updated", diff.Updated)
	emit(pipeline.EventArtifactDeleted, "artifact deleted", diff.Deleted)
	for _, name := range diff.Unchanged {
		ctx.State.Results.Record(name, "generate", pipeline.StatusOK, "unchanged")
	}

	if !ctx.Options.DryRun {
		pipeline.RecordArtifactOps(len(diff.Created), len(diff.Updated), len(diff.Deleted))
	}

	if diff.Empty() {
		ctx.Observer.Printf("artifacts already in sync (%d unchanged)", len(diff.Unchanged))
	}
	return nil
}
