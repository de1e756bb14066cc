package artifact

import (
	"fmt"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/imamik/k3fleet/internal/config"
)

// DescriptorFile is the aggregate descriptor consumed by the external
// deployment executor. It enumerates every current target node with its
// connection parameters.
const DescriptorFile = "inventory.yaml"

// DescriptorEntry is one node's connection record in the aggregate
// descriptor.
type DescriptorEntry struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Hostname      string `json:"hostname"`
	Role          string `json:"role"`
	CredentialRef string `json:"credentialRef,omitempty"`
}

// Descriptor is the aggregate node inventory.
type Descriptor struct {
	Domain string            `json:"domain"`
	Nodes  []DescriptorEntry `json:"nodes"`
}

// RenderDescriptor produces the aggregate descriptor for the current
// topology. Entries are sorted by node name so re-rendering an
// unchanged topology is byte-identical.
func RenderDescriptor(spec *config.ClusterSpec) ([]byte, error) {
	desc := Descriptor{Domain: spec.Domain}
	for _, node := range spec.Nodes {
		entry := DescriptorEntry{
			Name:     node.Name,
			Address:  node.IP,
			Hostname: node.Hostname,
			Role:     string(node.Role),
		}
		if node.Role == config.RoleAgent {
			entry.CredentialRef = AgentTokenFile
		}
		desc.Nodes = append(desc.Nodes, entry)
	}
	sort.Slice(desc.Nodes, func(a, b int) bool { return desc.Nodes[a].Name < desc.Nodes[b].Name })

	data, err := yaml.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal descriptor: %w", err)
	}
	return data, nil
}
