package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "k3fleet",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by result",
		},
		[]string{"result"},
	)

	phaseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "k3fleet",
			Subsystem: "pipeline",
			Name:      "phase_failures_total",
			Help:      "Total number of phase failures by phase",
		},
		[]string{"phase"},
	)

	artifactOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "k3fleet",
			Subsystem: "artifacts",
			Name:      "operations_total",
			Help:      "Total number of artifact operations by kind",
		},
		[]string{"kind"},
	)

	decommissionStages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "k3fleet",
			Subsystem: "decommission",
			Name:      "stages_total",
			Help:      "Total number of decommission stage transitions by stage and result",
		},
		[]string{"stage", "result"},
	)

	nodesDesired = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "k3fleet",
			Subsystem: "cluster",
			Name:      "nodes_desired",
			Help:      "Number of declared nodes by role",
		},
		[]string{"role"},
	)
)

func init() {
	prometheus.MustRegister(
		runsTotal,
		phaseFailures,
		artifactOps,
		decommissionStages,
		nodesDesired,
	)
}

// RecordArtifactOps counts artifact create/update/delete operations.
func RecordArtifactOps(created, updated, deleted int) {
	artifactOps.WithLabelValues("created").Add(float64(created))
	artifactOps.WithLabelValues("updated").Add(float64(updated))
	artifactOps.WithLabelValues("deleted").Add(float64(deleted))
}

// RecordDecommissionStage counts one decommission stage transition.
func RecordDecommissionStage(stage, result string) {
	decommissionStages.WithLabelValues(stage, result).Inc()
}

// RecordDesiredNodes publishes the declared node counts.
func RecordDesiredNodes(servers, agents int) {
	nodesDesired.WithLabelValues("server").Set(float64(servers))
	nodesDesired.WithLabelValues("agent").Set(float64(agents))
}
