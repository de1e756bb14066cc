package cluster

import (
	"context"
	"sort"

	"github.com/imamik/k3fleet/internal/config"
)

// Inspector performs read-only membership queries and computes the
// stale-node candidates for decommission.
type Inspector struct {
	client ControlPlaneClient
}

// NewInspector creates an Inspector over the given control-plane client.
func NewInspector(client ControlPlaneClient) *Inspector {
	return &Inspector{client: client}
}

// Members returns the current live membership. Errors pass through
// unchanged so callers can distinguish *ConnectivityError from an
// empty cluster.
func (i *Inspector) Members(ctx context.Context) ([]Member, error) {
	return i.client.ListMembers(ctx)
}

// StaleMembers returns, in stable name order, the live members that are
// absent from the desired topology. These are the only nodes the
// decommission path may touch; a node that never joined is never a
// candidate.
func (i *Inspector) StaleMembers(ctx context.Context, spec *config.ClusterSpec) ([]Member, error) {
	live, err := i.client.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	return Stale(live, spec.NodeNames()), nil
}

// Stale filters live members down to those not in the desired name set.
func Stale(live []Member, desired map[string]bool) []Member {
	var stale []Member
	for _, m := range live {
		if !desired[m.Name] {
			stale = append(stale, m)
		}
	}
	sort.Slice(stale, func(a, b int) bool { return stale[a].Name < stale[b].Name })
	return stale
}
