package artifact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k3fleet/internal/config"
)

func testSpec() *config.ClusterSpec {
	return &config.ClusterSpec{
		Domain: "home.lab",
		Subnet: "10.0.0.0/24",
		Nodes: []config.NodeSpec{
			{Name: "n1", Hostname: "n1.home.lab", IP: "10.0.0.1", Role: config.RoleServer, Description: "server"},
			{Name: "n2", Hostname: "n2.home.lab", IP: "10.0.0.2", Role: config.RoleAgent, Description: "agent"},
		},
		ServerConfig: map[string]string{"disable": "traefik"},
		AgentConfig:  map[string]string{"node-label": "tier=worker"},
	}
}

func TestRender_ServerAdvertisesItselfAsJoinTarget(t *testing.T) {
	spec := testSpec()
	data, err := Render(spec.Nodes[0], spec)
	require.NoError(t, err)

	rendered := string(data)
	assert.Contains(t, rendered, "cluster-init: true")
	assert.Contains(t, rendered, "advertise-address: 10.0.0.1")
	assert.Contains(t, rendered, "n1.home.lab")
	assert.Contains(t, rendered, "disable: traefik")
}

func TestRender_AgentReferencesServerAndTokenFile(t *testing.T) {
	spec := testSpec()
	data, err := Render(spec.Nodes[1], spec)
	require.NoError(t, err)

	rendered := string(data)
	assert.Contains(t, rendered, "server: https://10.0.0.1:6443")
	assert.Contains(t, rendered, "token-file: "+AgentTokenFile)
	assert.Contains(t, rendered, "node-label: tier=worker")
	assert.NotContains(t, rendered, "token:", "artifacts must reference the credential, never carry its value")
}

func TestRender_Deterministic(t *testing.T) {
	spec := testSpec()
	for _, node := range spec.Nodes {
		first, err := Render(node, spec)
		require.NoError(t, err)
		second, err := Render(node, spec)
		require.NoError(t, err)
		assert.Equal(t, first, second, "re-rendering %s with identical input must be byte-identical", node.Name)
	}
}

func TestRender_AgentWithoutServerFails(t *testing.T) {
	spec := testSpec()
	spec.Nodes[0].Role = config.RoleAgent

	_, err := Render(spec.Nodes[1], spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no unique server node")
}

func TestRender_UnknownRoleFails(t *testing.T) {
	spec := testSpec()
	node := config.NodeSpec{Name: "odd", Role: "controller"}

	_, err := Render(node, spec)
	require.Error(t, err)
}

func TestRenderDescriptor_ListsAllNodesSorted(t *testing.T) {
	spec := testSpec()
	spec.Nodes[0], spec.Nodes[1] = spec.Nodes[1], spec.Nodes[0]

	data, err := RenderDescriptor(spec)
	require.NoError(t, err)

	rendered := string(data)
	assert.Contains(t, rendered, "domain: home.lab")
	assert.Contains(t, rendered, "name: n1")
	assert.Contains(t, rendered, "name: n2")
	assert.Contains(t, rendered, "address: 10.0.0.1")
	assert.Contains(t, rendered, "credentialRef: "+AgentTokenFile)
	assert.Less(t, strings.Index(rendered, "name: n1"), strings.Index(rendered, "name: n2"),
		"descriptor entries must be in stable name order")
}

func TestRenderDescriptor_Deterministic(t *testing.T) {
	spec := testSpec()
	first, err := RenderDescriptor(spec)
	require.NoError(t, err)
	second, err := RenderDescriptor(spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
