package pipeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/k3fleet/internal/artifact"
	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/config"
)

var (
	planTitleStyle   = lipgloss.NewStyle().Bold(true)
	planSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	planRemoveStyle  = lipgloss.NewStyle().Foreground(colorRed)
	planCreateStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	planUpdateStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// RenderPlan renders the human-readable execution plan the operator
// confirms before any mutating step: the declared topology, the
// artifact diff, and the stale members queued for decommission.
func RenderPlan(spec *config.ClusterSpec, diff artifact.Diff, stale []cluster.Member) string {
	var b strings.Builder

	b.WriteString(planTitleStyle.Render(fmt.Sprintf("Cluster %s (%s)", spec.Domain, spec.Subnet)))
	b.WriteString("\n\n")

	b.WriteString(planSectionStyle.Render("Nodes"))
	b.WriteString("\n")
	for _, node := range spec.Nodes {
		b.WriteString(fmt.Sprintf("  %-12s %-8s %-16s %s\n", node.Name, node.Role, node.IP, node.Hostname))
	}

	b.WriteString("\n")
	b.WriteString(planSectionStyle.Render("Artifacts"))
	b.WriteString("\n")
	writePlanLines(&b, planCreateStyle, "create", diff.Created)
	writePlanLines(&b, planUpdateStyle, "update", diff.Updated)
	writePlanLines(&b, planRemoveStyle, "delete", diff.Deleted)
	if len(diff.Unchanged) > 0 {
		b.WriteString(detailStyle.Render(fmt.Sprintf("  unchanged: %d", len(diff.Unchanged))))
		b.WriteString("\n")
	}
	if diff.Empty() {
		b.WriteString(detailStyle.Render("  nothing to do"))
		b.WriteString("\n")
	}

	if len(stale) > 0 {
		b.WriteString("\n")
		b.WriteString(planSectionStyle.Render("Decommission"))
		b.WriteString("\n")
		for _, m := range stale {
			b.WriteString(planRemoveStyle.Render(fmt.Sprintf("  remove %s", m.Name)))
			b.WriteString(detailStyle.Render("  (drain, delete from cluster, stop service, purge token)"))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writePlanLines(b *strings.Builder, style lipgloss.Style, verb string, names []string) {
	for _, name := range names {
		b.WriteString(style.Render(fmt.Sprintf("  %s %s", verb, name)))
		b.WriteString("\n")
	}
}
