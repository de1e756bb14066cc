package decommission

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/config"
	"github.com/imamik/k3fleet/internal/pipeline"
)

const phaseName = "cleanup"

// CredentialStore is the local join-credential bookkeeping the
// orchestrator purges at the terminal stage. Implemented by
// artifact.Store.
type CredentialStore interface {
	HasToken(name string) bool
	PurgeToken(name string) error
	Tokens() ([]string, error)
}

// Orchestrator walks stale nodes through the decommission state
// machine. One node's failure never blocks another's processing.
type Orchestrator struct {
	ControlPlane cluster.ControlPlaneClient
	Remote       pipeline.RemoteShellClient
	Credentials  CredentialStore
	Observer     pipeline.Observer
	Timeouts     *config.Timeouts

	// Domain resolves a stale node's management address as
	// <name>.<domain>; stale nodes are no longer declared, so their
	// address can only come from the naming convention.
	Domain string

	// DryRun computes every transition without issuing mutating calls.
	DryRun bool

	// ForceServerRemoval overrides the sole-server guard.
	ForceServerRemoval bool
}

// ErrServerRemoval is the fatal precondition failure raised when the
// stale set contains a control-plane member and no override was given.
var ErrServerRemoval = errors.New("refusing to decommission the sole server node (use --force-server-removal to override)")

// Candidates merges the live stale members with locally cached
// credentials of undeclared nodes, so interrupted decommissions of
// already-deleted members are resumed.
func Candidates(stale []cluster.Member, desired map[string]bool, creds CredentialStore) ([]Candidate, error) {
	var out []Candidate
	seen := make(map[string]bool)

	for i := range stale {
		out = append(out, Candidate{Name: stale[i].Name, Member: &stale[i]})
		seen[stale[i].Name] = true
	}

	cached, err := creds.Tokens()
	if err != nil {
		return nil, err
	}
	for _, name := range cached {
		if !seen[name] && !desired[name] {
			out = append(out, Candidate{Name: name})
		}
	}
	return out, nil
}

// Run decommissions every candidate, returning after all have been
// processed. The returned error is the sole-server guard; per-node
// failures land in results instead.
func (o *Orchestrator) Run(ctx context.Context, candidates []Candidate, results *pipeline.ResultSet) error {
	if err := o.guardServerRemoval(candidates); err != nil {
		return err
	}

	for _, candidate := range candidates {
		o.decommission(ctx, candidate, results)
	}
	return nil
}

// guardServerRemoval rejects the batch before any mutation when it
// would remove a control-plane member. Normal topology shrinkage must
// never take the sole server down as a side effect.
func (o *Orchestrator) guardServerRemoval(candidates []Candidate) error {
	for _, c := range candidates {
		if c.Member != nil && c.Member.ControlPlane && !o.ForceServerRemoval {
			return fmt.Errorf("%w: %s", ErrServerRemoval, c.Name)
		}
	}
	return nil
}

// decommission drives a single node to the terminal stage, recording
// one result per node. Soft failures (drain timeout, unreachable host)
// downgrade the result to a warning and processing continues.
func (o *Orchestrator) decommission(ctx context.Context, c Candidate, results *pipeline.ResultSet) {
	observer := o.Observer.WithFields(map[string]string{"node": c.Name})
	stage := deriveStage(c, o.Credentials.HasToken(c.Name))

	if stage == StageTokenPurged {
		observer.Event(pipeline.Event{
			Type:    pipeline.EventDecommissionSkipped,
			Phase:   phaseName,
			Node:    c.Name,
			Message: "already fully decommissioned",
		})
		results.Record(c.Name, phaseName, pipeline.StatusOK, "already decommissioned")
		return
	}

	observer.Printf("decommissioning %s (resuming at %s)", c.Name, stage)

	status := pipeline.StatusOK
	var notes []string

	if stage == StagePending {
		if err := o.cordon(ctx, c.Name, observer); err != nil {
			results.Record(c.Name, phaseName, pipeline.StatusError, fmt.Sprintf("cordon failed: %v", err))
			return
		}
		stage = StageDraining
	}

	if stage == StageDraining {
		switch err := o.drain(ctx, c.Name, observer); {
		case err == nil:
		case isDrainTimeout(err):
			pipeline.RecordDecommissionStage(string(StageDraining), "timeout")
			observer.Printf("WARNING: %v; proceeding with forced removal", err)
			status = pipeline.StatusWarning
			notes = append(notes, "drain timed out, removal forced")
		default:
			results.Record(c.Name, phaseName, pipeline.StatusError, fmt.Sprintf("drain failed: %v", err))
			return
		}

		if err := o.deleteMember(ctx, c.Name, observer); err != nil {
			results.Record(c.Name, phaseName, pipeline.StatusError, fmt.Sprintf("delete failed: %v", err))
			return
		}
		stage = StageDeletedFromCluster
	}

	if stage == StageDeletedFromCluster {
		switch err := o.stopService(ctx, c, observer); {
		case err == nil:
		case isConnectivity(err):
			observer.Printf("WARNING: %v; node may be powered off, continuing with local cleanup", err)
			status = pipeline.StatusWarning
			notes = append(notes, "host unreachable, service stop skipped")
		default:
			results.Record(c.Name, phaseName, pipeline.StatusError, fmt.Sprintf("service stop failed: %v", err))
			return
		}
		stage = StageServiceStopped
	}

	if stage == StageServiceStopped {
		if err := o.purgeToken(ctx, c.Name, observer); err != nil {
			results.Record(c.Name, phaseName, pipeline.StatusError, fmt.Sprintf("token purge failed: %v", err))
			return
		}
	}

	detail := "decommissioned"
	if len(notes) > 0 {
		detail = fmt.Sprintf("decommissioned (%s)", joinNotes(notes))
	}
	if o.DryRun {
		detail = "dry-run: " + detail
	}
	results.Record(c.Name, phaseName, status, detail)
}

func (o *Orchestrator) cordon(ctx context.Context, name string, observer pipeline.Observer) error {
	if o.DryRun {
		pipeline.LogDryRun(observer, phaseName, name, "cordon node")
		return nil
	}
	if err := o.ControlPlane.Cordon(ctx, name); err != nil {
		pipeline.RecordDecommissionStage(string(StagePending), "error")
		return err
	}
	o.stageDone(observer, name, StageDraining)
	return nil
}

func (o *Orchestrator) drain(ctx context.Context, name string, observer pipeline.Observer) error {
	if o.DryRun {
		pipeline.LogDryRun(observer, phaseName, name, "drain workloads")
		return nil
	}
	return o.ControlPlane.Drain(ctx, name, o.Timeouts.Drain)
}

func (o *Orchestrator) deleteMember(ctx context.Context, name string, observer pipeline.Observer) error {
	if o.DryRun {
		pipeline.LogDryRun(observer, phaseName, name, "delete member from control plane")
		return nil
	}
	if err := o.ControlPlane.DeleteMember(ctx, name); err != nil {
		pipeline.RecordDecommissionStage(string(StageDraining), "error")
		return err
	}
	o.stageDone(observer, name, StageDeletedFromCluster)
	return nil
}

func (o *Orchestrator) stopService(ctx context.Context, c Candidate, observer pipeline.Observer) error {
	role := string(config.RoleAgent)
	if c.Member != nil && c.Member.ControlPlane {
		role = string(config.RoleServer)
	}
	address := fmt.Sprintf("%s.%s", c.Name, o.Domain)

	if o.DryRun {
		pipeline.LogDryRun(observer, phaseName, c.Name, fmt.Sprintf("stop %s service on %s", role, address))
		return nil
	}
	if err := o.Remote.StopService(ctx, address, role); err != nil {
		return err
	}
	o.stageDone(observer, c.Name, StageServiceStopped)
	return nil
}

func (o *Orchestrator) purgeToken(ctx context.Context, name string, observer pipeline.Observer) error {
	if o.DryRun {
		pipeline.LogDryRun(observer, phaseName, name, "purge cached join token")
		return nil
	}
	if err := o.Credentials.PurgeToken(name); err != nil {
		pipeline.RecordDecommissionStage(string(StageServiceStopped), "error")
		return err
	}
	o.stageDone(observer, name, StageTokenPurged)
	return nil
}

func (o *Orchestrator) stageDone(observer pipeline.Observer, name string, reached Stage) {
	pipeline.RecordDecommissionStage(string(reached), "ok")
	observer.Event(pipeline.Event{
		Type:    pipeline.EventDecommissionStage,
		Phase:   phaseName,
		Node:    name,
		Message: fmt.Sprintf("reached %s", reached),
	})
}

func isDrainTimeout(err error) bool {
	var timeoutErr *cluster.DrainTimeoutError
	return errors.As(err, &timeoutErr)
}

func isConnectivity(err error) bool {
	var connErr *cluster.ConnectivityError
	return errors.As(err, &connErr)
}

func joinNotes(notes []string) string {
	out := notes[0]
	for _, n := range notes[1:] {
		out += "; " + n
	}
	return out
}
