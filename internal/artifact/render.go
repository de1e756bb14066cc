// Package artifact generates and reconciles the per-node k3s
// configuration artifacts derived from the cluster topology.
//
// One artifact exists per declared node, keyed by node name. Content is
// a pure function of the NodeSpec and its role config: rendering the
// same input twice produces byte-identical output. Artifacts for nodes
// no longer declared are removed in the same reconciliation pass.
package artifact

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/imamik/k3fleet/internal/config"
)

const (
	// KubeAPIPort is the k3s API server port agents join against.
	KubeAPIPort = 6443

	// AgentTokenFile is the on-node path of the join credential. The
	// rendered artifact references this path; the token value itself
	// never appears in any artifact.
	AgentTokenFile = "/etc/rancher/k3s/agent-token"
)

// Render produces the k3s configuration artifact for a single node.
// The server node advertises itself as the join target with
// cluster-init enabled; agents point at the server's address and the
// local token file reference.
//
// Marshalling goes through sigs.k8s.io/yaml, which emits map keys in
// sorted order, so identical input always yields identical bytes.
func Render(node config.NodeSpec, spec *config.ClusterSpec) ([]byte, error) {
	doc := map[string]interface{}{
		"node-name": node.Name,
		"node-ip":   node.IP,
	}

	switch node.Role {
	case config.RoleServer:
		doc["cluster-init"] = true
		doc["tls-san"] = []string{node.Hostname, node.IP}
		doc["advertise-address"] = node.IP
		for k, v := range spec.ServerConfig {
			doc[k] = v
		}

	case config.RoleAgent:
		server := spec.Server()
		if server == nil {
			return nil, fmt.Errorf("cannot render agent %s: topology has no unique server node", node.Name)
		}
		doc["server"] = fmt.Sprintf("https://%s:%d", server.IP, KubeAPIPort)
		doc["token-file"] = AgentTokenFile
		for k, v := range spec.AgentConfig {
			doc[k] = v
		}

	default:
		return nil, fmt.Errorf("cannot render %s: unknown role %q", node.Name, node.Role)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact for %s: %w", node.Name, err)
	}
	return data, nil
}

// RenderAll renders the artifact for every declared node, keyed by
// node name.
func RenderAll(spec *config.ClusterSpec) (map[string][]byte, error) {
	out := make(map[string][]byte, len(spec.Nodes))
	for _, node := range spec.Nodes {
		data, err := Render(node, spec)
		if err != nil {
			return nil, err
		}
		out[node.Name] = data
	}
	return out, nil
}
