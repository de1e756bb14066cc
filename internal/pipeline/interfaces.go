// Package pipeline provides shared types and interfaces for the
// deployment pipeline.
//
// The pipeline domain is organized into focused pieces:
//   - phases/ holds the ordered steps (validate, generate, cleanup,
//     build, confirm, deploy, verify) composed by the CLI handlers
//   - the adapter interfaces for the external collaborators (builder,
//     deploy executor, remote shell)
//
// This root package contains the shared context, observer, result and
// error types used across phases.
package pipeline

import (
	"context"
	"time"
)

// Phase defines the interface for a pipeline phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Run executes the phase against the shared pipeline context.
	Run(ctx *Context) error
}

// EvaluatorClient evaluates (builds) the configuration of a single
// node, returning an error when the build fails. Implemented by
// platform/executor.Builder over the external build tool.
type EvaluatorClient interface {
	Evaluate(ctx context.Context, nodeName string) error
}

// DeployExecutor pushes built artifacts to a list of nodes and reports
// a per-node outcome. Implemented by platform/executor.Deployer over
// the external deploy tool.
type DeployExecutor interface {
	// Deploy returns one entry per requested node; a nil error value
	// marks success. A missing entry is treated as a failure.
	Deploy(ctx context.Context, nodeNames []string) (map[string]error, error)
}

// RemoteShellClient is the management channel onto a physical node.
// Implemented by platform/remote.Client over SSH.
type RemoteShellClient interface {
	// StopService stops and disables the node's k3s unit and removes
	// the on-node join credential. An unreachable host is returned as
	// *cluster.ConnectivityError.
	StopService(ctx context.Context, address string, role string) error

	// Ping checks reachability of the node's management channel within
	// the timeout.
	Ping(ctx context.Context, address string, timeout time.Duration) error
}

// Confirmer obtains the operator's go-ahead before mutating steps. The
// pipeline blocks in AwaitingConfirmation until it answers; the
// non-interactive implementation answers immediately.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}
