// Package config loads and validates the declarative cluster topology.
//
// The topology lives in a single YAML document (cluster.yaml by default)
// describing every node in the fleet, the network they share, and the
// role-specific k3s settings applied to servers and agents. Everything
// else in the tool is derived from this document.
package config

import "net"

// Role identifies how a node participates in the k3s cluster.
type Role string

const (
	// RoleServer runs the k3s control plane. Exactly one node carries
	// this role; it is the cluster-init target agents join against.
	RoleServer Role = "server"

	// RoleAgent runs the k3s agent and joins the server node.
	RoleAgent Role = "agent"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleServer || r == RoleAgent
}

// NodeSpec describes a single declared node.
type NodeSpec struct {
	Name        string `yaml:"name"`
	Hostname    string `yaml:"hostname"`
	IP          string `yaml:"ip"`
	Role        Role   `yaml:"role"`
	Description string `yaml:"description"`
}

// ClusterSpec is the parsed topology document.
type ClusterSpec struct {
	Domain       string            `yaml:"domain"`
	Subnet       string            `yaml:"subnet"`
	Nodes        []NodeSpec        `yaml:"nodes"`
	ServerConfig map[string]string `yaml:"server_config"`
	AgentConfig  map[string]string `yaml:"agent_config"`
}

// Server returns the single server-role node, or nil if the spec does
// not declare exactly one. Callers that need the join target should
// have validated the spec first.
func (s *ClusterSpec) Server() *NodeSpec {
	var found *NodeSpec
	for i := range s.Nodes {
		if s.Nodes[i].Role == RoleServer {
			if found != nil {
				return nil
			}
			found = &s.Nodes[i]
		}
	}
	return found
}

// Agents returns all agent-role nodes in declaration order.
func (s *ClusterSpec) Agents() []NodeSpec {
	var agents []NodeSpec
	for _, n := range s.Nodes {
		if n.Role == RoleAgent {
			agents = append(agents, n)
		}
	}
	return agents
}

// Node returns the node with the given name, or nil.
func (s *ClusterSpec) Node(name string) *NodeSpec {
	for i := range s.Nodes {
		if s.Nodes[i].Name == name {
			return &s.Nodes[i]
		}
	}
	return nil
}

// NodeNames returns the set of declared node names. This is the target
// set every reconciliation diff is computed against.
func (s *ClusterSpec) NodeNames() map[string]bool {
	names := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		names[n.Name] = true
	}
	return names
}

// subnetContains reports whether ip lies within the declared subnet.
// An unparseable subnet or ip returns false; Validate reports those
// as their own violations.
func (s *ClusterSpec) subnetContains(ip string) bool {
	_, network, err := net.ParseCIDR(s.Subnet)
	if err != nil {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return network.Contains(parsed)
}
