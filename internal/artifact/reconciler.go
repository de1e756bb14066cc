package artifact

import (
	"bytes"
	"sort"

	"github.com/imamik/k3fleet/internal/config"
)

// Diff summarizes one reconciliation pass. Node names only; the
// pipeline renders it into the operator-facing plan.
type Diff struct {
	Created   []string
	Updated   []string
	Deleted   []string
	Unchanged []string

	// DescriptorChanged is set when the aggregate descriptor needs
	// rewriting even though no per-node artifact changed (e.g. a
	// domain rename).
	DescriptorChanged bool
}

// Empty reports whether the pass changed nothing.
func (d Diff) Empty() bool {
	return len(d.Created) == 0 && len(d.Updated) == 0 && len(d.Deleted) == 0 && !d.DescriptorChanged
}

// Reconciler diffs the desired topology against the materialized
// artifact set and brings the store in line with it.
type Reconciler struct {
	store *Store
}

// NewReconciler creates a Reconciler over the given store.
func NewReconciler(store *Store) *Reconciler {
	return &Reconciler{store: store}
}

// Plan computes the diff without writing anything. Used for dry runs
// and plan rendering; Reconcile performs the same computation.
func (r *Reconciler) Plan(spec *config.ClusterSpec) (Diff, error) {
	diff, _, _, err := r.compute(spec)
	return diff, err
}

// Reconcile brings the artifact store in line with the topology:
// renders an artifact for every declared node, deletes artifacts whose
// node is no longer declared, and regenerates the aggregate descriptor.
// The whole batch lands atomically or not at all. When nothing changed,
// no file is touched: reconciling the same topology twice yields a
// diff with only Unchanged entries on the second pass.
func (r *Reconciler) Reconcile(spec *config.ClusterSpec) (Diff, error) {
	diff, batch, descriptor, err := r.compute(spec)
	if err != nil {
		return Diff{}, err
	}

	if diff.Empty() {
		return diff, nil
	}

	if err := r.store.Apply(batch, descriptor); err != nil {
		return Diff{}, err
	}
	return diff, nil
}

func (r *Reconciler) compute(spec *config.ClusterSpec) (Diff, map[string][]byte, []byte, error) {
	batch, err := RenderAll(spec)
	if err != nil {
		return Diff{}, nil, nil, err
	}

	descriptor, err := RenderDescriptor(spec)
	if err != nil {
		return Diff{}, nil, nil, err
	}

	existing, err := r.store.ExistingNodes()
	if err != nil {
		return Diff{}, nil, nil, err
	}
	existingSet := make(map[string]bool, len(existing))
	for _, name := range existing {
		existingSet[name] = true
	}

	var diff Diff
	for name, rendered := range batch {
		if !existingSet[name] {
			diff.Created = append(diff.Created, name)
			continue
		}
		current, err := r.store.ReadNode(name)
		if err != nil {
			return Diff{}, nil, nil, err
		}
		if bytes.Equal(current, rendered) {
			diff.Unchanged = append(diff.Unchanged, name)
		} else {
			diff.Updated = append(diff.Updated, name)
		}
	}
	for _, name := range existing {
		if _, declared := batch[name]; !declared {
			diff.Deleted = append(diff.Deleted, name)
		}
	}

	currentDescriptor, err := r.store.ReadDescriptor()
	if err != nil {
		return Diff{}, nil, nil, err
	}
	diff.DescriptorChanged = !bytes.Equal(currentDescriptor, descriptor)

	sort.Strings(diff.Created)
	sort.Strings(diff.Updated)
	sort.Strings(diff.Deleted)
	sort.Strings(diff.Unchanged)

	return diff, batch, descriptor, nil
}
