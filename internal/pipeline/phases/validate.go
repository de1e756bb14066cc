package phases

import "github.com/imamik/k3fleet/internal/pipeline"

// Validate checks the loaded topology before anything else runs. All
// violations are collected and reported together; warnings are logged
// and do not block the run.
type Validate struct{}

// NewValidate creates the validation phase.
func NewValidate() *Validate {
	return &Validate{}
}

// Name implements the pipeline.Phase interface.
func (*Validate) Name() string {
	return "validate"
}

// Run implements the pipeline.Phase interface.
func (*Validate) Run(ctx *pipeline.Context) error {
	issues := ctx.Spec.Validate()

	for _, warning := range issues.Warnings() {
		ctx.Observer.Event(pipeline.Event{
			Type:    pipeline.EventValidationWarning,
			Phase:   "validate",
			Message: warning.Error(),
			Fields:  map[string]string{"field": warning.Field},
		})
	}

	if errs := issues.Errors(); len(errs) > 0 {
		for _, violation := range errs {
			ctx.Observer.Event(pipeline.Event{
				Type:    pipeline.EventValidationError,
				Phase:   "validate",
				Message: violation.Error(),
				Fields:  map[string]string{"field": violation.Field},
			})
		}
		return errs
	}

	// Validation guarantees exactly one server at this point.
	agents := ctx.Spec.Agents()
	pipeline.RecordDesiredNodes(1, len(agents))

	ctx.Observer.Printf("topology valid: 1 server, %d agents in %s", len(agents), ctx.Spec.Subnet)
	return nil
}
