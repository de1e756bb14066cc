package testing

import (
	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/pipeline"
)

// ReadyMember returns a healthy, schedulable agent member.
func ReadyMember(name string) cluster.Member {
	return cluster.Member{Name: name, Ready: true, Schedulable: true}
}

// CordonedMember returns a member that is already unschedulable, as
// left behind by an interrupted decommission.
func CordonedMember(name string) cluster.Member {
	return cluster.Member{Name: name, Ready: true, Schedulable: false}
}

// ServerMember returns a healthy control-plane member.
func ServerMember(name string) cluster.Member {
	return cluster.Member{Name: name, Ready: true, Schedulable: true, ControlPlane: true}
}

// NopObserver is an Observer that discards everything. Tests that
// assert on behavior rather than logging use it to keep output quiet.
type NopObserver struct{}

// Printf implements the Logger interface.
func (NopObserver) Printf(string, ...interface{}) {}

// Event implements the Observer interface.
func (NopObserver) Event(pipeline.Event) {}

// Progress implements the Observer interface.
func (NopObserver) Progress(string, int, int) {}

// WithFields implements the Observer interface.
func (o NopObserver) WithFields(map[string]string) pipeline.Observer { return o }
