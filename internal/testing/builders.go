package testing

import (
	"fmt"

	"github.com/imamik/k3fleet/internal/config"
)

// SpecBuilder provides a fluent interface for constructing test cluster
// specifications. Each method returns a new builder (immutable) for
// chaining.
type SpecBuilder struct {
	spec config.ClusterSpec
}

// NewSpecBuilder creates a SpecBuilder with sensible defaults: the
// test domain, a /24 subnet, and empty config maps.
func NewSpecBuilder() *SpecBuilder {
	return &SpecBuilder{
		spec: config.ClusterSpec{
			Domain:       "lab.example.net",
			Subnet:       "10.0.0.0/24",
			ServerConfig: map[string]string{},
			AgentConfig:  map[string]string{},
		},
	}
}

// WithDomain sets the cluster domain.
func (b *SpecBuilder) WithDomain(domain string) *SpecBuilder {
	nb := b.clone()
	nb.spec.Domain = domain
	return nb
}

// WithSubnet sets the cluster subnet CIDR.
func (b *SpecBuilder) WithSubnet(cidr string) *SpecBuilder {
	nb := b.clone()
	nb.spec.Subnet = cidr
	return nb
}

// WithServer adds a server node.
func (b *SpecBuilder) WithServer(name, ip string) *SpecBuilder {
	return b.withNode(name, ip, config.RoleServer)
}

// WithAgent adds an agent node.
func (b *SpecBuilder) WithAgent(name, ip string) *SpecBuilder {
	return b.withNode(name, ip, config.RoleAgent)
}

// WithServerConfig merges entries into the shared server k3s config.
func (b *SpecBuilder) WithServerConfig(key, value string) *SpecBuilder {
	nb := b.clone()
	nb.spec.ServerConfig[key] = value
	return nb
}

// WithAgentConfig merges entries into the shared agent k3s config.
func (b *SpecBuilder) WithAgentConfig(key, value string) *SpecBuilder {
	nb := b.clone()
	nb.spec.AgentConfig[key] = value
	return nb
}

// Build returns the constructed specification.
func (b *SpecBuilder) Build() *config.ClusterSpec {
	spec := b.clone().spec
	return &spec
}

func (b *SpecBuilder) withNode(name, ip string, role config.Role) *SpecBuilder {
	nb := b.clone()
	nb.spec.Nodes = append(nb.spec.Nodes, config.NodeSpec{
		Name:        name,
		Hostname:    fmt.Sprintf("%s.%s", name, nb.spec.Domain),
		IP:          ip,
		Role:        role,
		Description: fmt.Sprintf("test %s node", role),
	})
	return nb
}

func (b *SpecBuilder) clone() *SpecBuilder {
	nb := &SpecBuilder{spec: b.spec}
	nb.spec.Nodes = append([]config.NodeSpec(nil), b.spec.Nodes...)
	nb.spec.ServerConfig = make(map[string]string, len(b.spec.ServerConfig))
	for k, v := range b.spec.ServerConfig {
		nb.spec.ServerConfig[k] = v
	}
	nb.spec.AgentConfig = make(map[string]string, len(b.spec.AgentConfig))
	for k, v := range b.spec.AgentConfig {
		nb.spec.AgentConfig[k] = v
	}
	return nb
}
