package pipeline

import "fmt"

// BuildError reports that a node's configuration failed evaluation.
// Fatal: it blocks deploy before any mutating call.
type BuildError struct {
	Node string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed for %s: %v", e.Node, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// DeployError reports executor failure for one or more nodes. Fatal:
// the cluster may be left in a mixed state, which is surfaced per node
// rather than swallowed.
type DeployError struct {
	Failed map[string]error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("deploy failed on %d node(s)", len(e.Failed))
}

// ErrConfirmationDeclined aborts the pipeline when the operator answers
// no at the confirmation gate.
var ErrConfirmationDeclined = fmt.Errorf("confirmation declined by operator")
