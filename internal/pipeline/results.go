package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Status classifies a per-node outcome.
type Status string

const (
	// StatusOK marks a fully successful operation.
	StatusOK Status = "ok"
	// StatusWarning marks a degraded but non-blocking outcome.
	StatusWarning Status = "warning"
	// StatusError marks a failed operation.
	StatusError Status = "error"
)

// NodeResult is the outcome of one phase for one node.
type NodeResult struct {
	Node   string
	Phase  string
	Status Status
	Detail string
}

// ResultSet accumulates per-node results across the run. Safe for
// concurrent use; verification and decommission fan out per node.
type ResultSet struct {
	mu      sync.Mutex
	results []NodeResult
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Add records one result.
func (rs *ResultSet) Add(result NodeResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.results = append(rs.results, result)
}

// Record is shorthand for Add.
func (rs *ResultSet) Record(node, phase string, status Status, detail string) {
	rs.Add(NodeResult{Node: node, Phase: phase, Status: status, Detail: detail})
}

// All returns the results sorted by node name, then insertion order.
func (rs *ResultSet) All() []NodeResult {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := make([]NodeResult, len(rs.results))
	copy(out, rs.results)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Node < out[b].Node })
	return out
}

// HasErrors reports whether any result carries error status.
func (rs *ResultSet) HasErrors() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, r := range rs.results {
		if r.Status == StatusError {
			return true
		}
	}
	return false
}

// Warnings returns all warning-status results.
func (rs *ResultSet) Warnings() []NodeResult {
	var out []NodeResult
	for _, r := range rs.All() {
		if r.Status == StatusWarning {
			out = append(out, r)
		}
	}
	return out
}

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	okStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	detailStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	okMark   = "[OK]"
	warnMark = "[??]"
	failMark = "[!!]"
)

// RenderTable renders the per-node status table the pipeline always
// prints, one row per result, never collapsed into a single verdict.
func (rs *ResultSet) RenderTable() string {
	results := rs.All()
	if len(results) == 0 {
		return detailStyle.Render("no per-node results")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-16s %-14s %s", "", "NODE", "PHASE", "DETAIL")))
	b.WriteString("\n")

	for _, r := range results {
		var mark string
		switch r.Status {
		case StatusOK:
			mark = okStyle.Render(okMark)
		case StatusWarning:
			mark = warningStyle.Render(warnMark)
		default:
			mark = errorStyle.Render(failMark)
		}
		b.WriteString(fmt.Sprintf("%s %-16s %-14s %s\n", mark, r.Node, r.Phase, detailStyle.Render(r.Detail)))
	}

	return b.String()
}
