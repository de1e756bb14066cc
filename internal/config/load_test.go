package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTopology = `
domain: home.lab
subnet: 192.168.1.0/24
nodes:
  - name: nuc1
    hostname: nuc1.home.lab
    ip: 192.168.1.141
    role: server
    description: control plane
  - name: nuc2
    hostname: nuc2.home.lab
    ip: 192.168.1.142
    role: agent
    description: worker
server_config:
  disable: traefik
agent_config:
  node-label: tier=worker
`

func writeTopology(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile_ParsesTopology(t *testing.T) {
	spec, err := LoadFile(writeTopology(t, sampleTopology))
	require.NoError(t, err)

	assert.Equal(t, "home.lab", spec.Domain)
	assert.Equal(t, "192.168.1.0/24", spec.Subnet)
	require.Len(t, spec.Nodes, 2)
	assert.Equal(t, RoleServer, spec.Nodes[0].Role)
	assert.Equal(t, "192.168.1.142", spec.Nodes[1].IP)
	assert.Equal(t, "traefik", spec.ServerConfig["disable"])
	assert.Equal(t, "tier=worker", spec.AgentConfig["node-label"])
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read topology file")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("nodes: [unbalanced"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestLoadValidated_ReturnsAllViolations(t *testing.T) {
	bad := `
domain: home.lab
subnet: 192.168.1.0/24
nodes:
  - name: nuc1
    hostname: nuc1.home.lab
    ip: 192.168.1.141
    role: server
    description: a
  - name: nuc1
    hostname: nuc2.home.lab
    ip: 10.9.9.9
    role: agent
    description: b
server_config: {}
agent_config: {}
`
	spec, _, err := LoadValidated(writeTopology(t, bad))
	require.Error(t, err)
	assert.Nil(t, spec)
	assert.Contains(t, err.Error(), "duplicate node name")
	assert.Contains(t, err.Error(), "outside subnet")
}

func TestLoadValidated_ValidSpecWithWarnings(t *testing.T) {
	withWarning := `
domain: home.lab
subnet: 192.168.1.0/24
nodes:
  - name: nuc1
    hostname: nuc1.home.lab
    ip: 192.168.1.141
    role: server
server_config: {}
agent_config: {}
`
	spec, warnings, err := LoadValidated(writeTopology(t, withWarning))
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.NotEmpty(t, warnings)
}
