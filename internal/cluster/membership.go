// Package cluster defines the contract against the live k3s control
// plane and the read-only membership inspection used to find stale
// nodes. The control plane is never mutated outside the decommission
// state machine.
package cluster

import (
	"context"
	"fmt"
	"time"
)

// Member is a node as observed in the live control plane. It is a
// read-only snapshot; ownership stays with the orchestrator.
type Member struct {
	Name        string
	Ready       bool
	Schedulable bool

	// ControlPlane is set when the member carries the control-plane
	// role label. Decommissioning such a member requires an explicit
	// operator override.
	ControlPlane bool
}

// ControlPlaneClient is the narrow interface against the orchestration
// control plane. Implemented by platform/kube.Client; tests use mocks.
type ControlPlaneClient interface {
	// ListMembers returns the current member nodes. A connectivity
	// failure is returned as *ConnectivityError and must never be
	// interpreted as an empty cluster.
	ListMembers(ctx context.Context) ([]Member, error)

	// Cordon marks a member unschedulable. Idempotent.
	Cordon(ctx context.Context, name string) error

	// Drain evicts all evictable workloads from the member within the
	// timeout. On timeout it returns *DrainTimeoutError; the caller
	// decides whether to proceed forcibly.
	Drain(ctx context.Context, name string, timeout time.Duration) error

	// DeleteMember removes the member object from the control plane.
	// Deleting an already-absent member is a success.
	DeleteMember(ctx context.Context, name string) error
}

// ConnectivityError marks a control-plane or remote-host communication
// failure. It is recoverable and distinct from "node absent".
type ConnectivityError struct {
	Target string // what we failed to reach (API server, host address)
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Target, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// DrainTimeoutError reports that a drain did not complete within its
// timeout. It is a soft failure: decommission proceeds under force.
type DrainTimeoutError struct {
	Node    string
	Timeout time.Duration
	Pending int // workloads still on the node when the timeout hit
}

func (e *DrainTimeoutError) Error() string {
	return fmt.Sprintf("drain of %s did not finish within %v (%d pods remaining)", e.Node, e.Timeout, e.Pending)
}
