package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() *ClusterSpec {
	return &ClusterSpec{
		Domain: "home.lab",
		Subnet: "192.168.1.0/24",
		Nodes: []NodeSpec{
			{Name: "nuc1", Hostname: "nuc1.home.lab", IP: "192.168.1.141", Role: RoleServer, Description: "control plane"},
			{Name: "nuc2", Hostname: "nuc2.home.lab", IP: "192.168.1.142", Role: RoleAgent, Description: "worker"},
		},
		ServerConfig: map[string]string{"disable": "traefik"},
		AgentConfig:  map[string]string{},
	}
}

func TestValidate_ValidSpec(t *testing.T) {
	errs := validSpec().Validate()
	assert.Empty(t, errs.Errors())
}

func TestValidate_DuplicateName(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].Name = "nuc1"

	errs := validSpec().Validate()
	require.Empty(t, errs.Errors())

	errs = spec.Validate()
	require.NotEmpty(t, errs.Errors())
	assert.Contains(t, errs.Error(), `duplicate node name "nuc1"`)
}

func TestValidate_DuplicateIP(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].IP = "192.168.1.141"

	errs := spec.Validate()
	require.NotEmpty(t, errs.Errors())
	assert.Contains(t, errs.Error(), `duplicate node IP "192.168.1.141"`)
}

func TestValidate_IPOutsideSubnet(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].IP = "10.0.0.5"

	errs := spec.Validate()
	require.NotEmpty(t, errs.Errors())
	assert.Contains(t, errs.Error(), "outside subnet 192.168.1.0/24")
}

func TestValidate_InvalidRole(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].Role = "controller"

	errs := spec.Validate()
	require.NotEmpty(t, errs.Errors())
	assert.Contains(t, errs.Error(), `invalid role "controller"`)
}

func TestValidate_NoServer(t *testing.T) {
	spec := validSpec()
	spec.Nodes[0].Role = RoleAgent

	errs := spec.Validate()
	require.NotEmpty(t, errs.Errors())
	assert.Contains(t, errs.Error(), "found none")
}

func TestValidate_TwoServers(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].Role = RoleServer

	errs := spec.Validate()
	require.NotEmpty(t, errs.Errors())
	assert.Contains(t, errs.Error(), "found 2")
}

func TestValidate_MissingConfigSections(t *testing.T) {
	spec := validSpec()
	spec.ServerConfig = nil
	spec.AgentConfig = nil

	errs := spec.Validate()
	messages := errs.Error()
	assert.Contains(t, messages, "server_config section is required")
	assert.Contains(t, messages, "agent_config section is required")
}

func TestValidate_InvalidSubnet(t *testing.T) {
	spec := validSpec()
	spec.Subnet = "not-a-cidr"

	errs := spec.Validate()
	require.NotEmpty(t, errs.Errors())
	assert.Contains(t, errs.Error(), "invalid CIDR")
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].Name = "nuc1"
	spec.Nodes[1].IP = "10.0.0.5"
	spec.Nodes[1].Role = "controller"
	spec.ServerConfig = nil

	errs := spec.Validate().Errors()
	assert.GreaterOrEqual(t, len(errs), 4, "all violations should be collected in one pass")
}

func TestValidate_MissingDescriptionIsWarning(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].Description = ""

	errs := spec.Validate()
	assert.Empty(t, errs.Errors())
	assert.Len(t, errs.Warnings(), 1)
}

func TestServer_ReturnsSingleServer(t *testing.T) {
	spec := validSpec()
	server := spec.Server()
	require.NotNil(t, server)
	assert.Equal(t, "nuc1", server.Name)
}

func TestServer_NilWhenAmbiguous(t *testing.T) {
	spec := validSpec()
	spec.Nodes[1].Role = RoleServer
	assert.Nil(t, spec.Server())
}

func TestNodeNames(t *testing.T) {
	names := validSpec().NodeNames()
	assert.Equal(t, map[string]bool{"nuc1": true, "nuc2": true}, names)
}
