// Package decommission drives stale nodes out of the cluster through
// an idempotent, resumable state machine:
//
//	pending → draining → deleted-from-cluster → service-stopped → token-purged
//
// Every transition re-checks the observed system state before acting,
// so an interrupted run can be restarted at any point without redoing
// finished work or erroring on already-satisfied conditions. Nothing is
// persisted: each node's stage is re-derived from the control plane and
// the local credential cache on every run.
package decommission

import "github.com/imamik/k3fleet/internal/cluster"

// Stage is a node's position in the decommission state machine.
type Stage string

const (
	// StagePending means the node is still a schedulable cluster member.
	StagePending Stage = "pending"
	// StageDraining means the node is cordoned; workloads may remain.
	StageDraining Stage = "draining"
	// StageDeletedFromCluster means the member object is gone from the
	// control plane.
	StageDeletedFromCluster Stage = "deleted-from-cluster"
	// StageServiceStopped means the node's local k3s unit was stopped.
	StageServiceStopped Stage = "service-stopped"
	// StageTokenPurged is the terminal stage: no local credential
	// material remains for the node.
	StageTokenPurged Stage = "token-purged"
)

// Record captures a node's derived decommission position. It is
// re-derivable from observed state and never persisted independently.
type Record struct {
	Node  string
	Stage Stage
}

// Candidate is one stale node queued for decommission. Member is nil
// when the node is already gone from the live membership and only local
// bookkeeping remains.
type Candidate struct {
	Name   string
	Member *cluster.Member
}

// deriveStage computes where to resume for a candidate.
//
// Service-stopped is not remotely observable without trusting the
// unreachable host, so a node that is gone from the control plane but
// still has cached credentials resumes at the service stop; stopping an
// already-stopped unit is harmless.
func deriveStage(c Candidate, hasToken bool) Stage {
	if c.Member != nil {
		if c.Member.Schedulable {
			return StagePending
		}
		return StageDraining
	}
	if hasToken {
		return StageDeletedFromCluster
	}
	return StageTokenPurged
}
