package testing

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/k3fleet/internal/cluster"
)

// MockControlPlane is a mock implementation of cluster.ControlPlaneClient.
type MockControlPlane struct {
	mock.Mock
}

// ListMembers returns the mocked member list.
func (m *MockControlPlane) ListMembers(ctx context.Context) ([]cluster.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cluster.Member), args.Error(1)
}

// Cordon marks a member unschedulable.
func (m *MockControlPlane) Cordon(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// Drain evicts workloads from a member.
func (m *MockControlPlane) Drain(ctx context.Context, name string, timeout time.Duration) error {
	args := m.Called(ctx, name, timeout)
	return args.Error(0)
}

// DeleteMember removes a member from the control plane.
func (m *MockControlPlane) DeleteMember(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// NewMockControlPlane creates a control-plane mock with no expectations.
func NewMockControlPlane() *MockControlPlane {
	return &MockControlPlane{}
}

// WithMembers configures the mock to return the given membership.
func (m *MockControlPlane) WithMembers(members ...cluster.Member) *MockControlPlane {
	m.On("ListMembers", mock.Anything).Return(members, nil)
	return m
}

// WithHappyDecommission configures cordon, drain, and delete to succeed
// for any node.
func (m *MockControlPlane) WithHappyDecommission() *MockControlPlane {
	m.On("Cordon", mock.Anything, mock.Anything).Return(nil)
	m.On("Drain", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.On("DeleteMember", mock.Anything, mock.Anything).Return(nil)
	return m
}

// MockRemoteShell is a mock implementation of pipeline.RemoteShellClient.
type MockRemoteShell struct {
	mock.Mock
}

// StopService stops the k3s unit on a host.
func (m *MockRemoteShell) StopService(ctx context.Context, address, role string) error {
	args := m.Called(ctx, address, role)
	return args.Error(0)
}

// Ping checks host reachability.
func (m *MockRemoteShell) Ping(ctx context.Context, address string, timeout time.Duration) error {
	args := m.Called(ctx, address, timeout)
	return args.Error(0)
}

// NewMockRemoteShell creates a remote-shell mock with no expectations.
func NewMockRemoteShell() *MockRemoteShell {
	return &MockRemoteShell{}
}

// WithStopService configures StopService to succeed for any host.
func (m *MockRemoteShell) WithStopService() *MockRemoteShell {
	m.On("StopService", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

// MockEvaluator is a mock implementation of pipeline.EvaluatorClient.
type MockEvaluator struct {
	mock.Mock
}

// Evaluate builds and checks the artifact for one node.
func (m *MockEvaluator) Evaluate(ctx context.Context, nodeName string) error {
	args := m.Called(ctx, nodeName)
	return args.Error(0)
}

// MockDeployExecutor is a mock implementation of pipeline.DeployExecutor.
type MockDeployExecutor struct {
	mock.Mock
}

// Deploy pushes artifacts to the given nodes.
func (m *MockDeployExecutor) Deploy(ctx context.Context, nodeNames []string) (map[string]error, error) {
	args := m.Called(ctx, nodeNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]error), args.Error(1)
}

// MockConfirmer is a mock implementation of pipeline.Confirmer.
type MockConfirmer struct {
	mock.Mock
}

// Confirm returns the mocked operator answer.
func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

// MockCredentialStore is a mock of the local join-credential cache.
type MockCredentialStore struct {
	mock.Mock
}

// HasToken reports whether a token is cached for the node.
func (m *MockCredentialStore) HasToken(name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

// PurgeToken removes the cached token for the node.
func (m *MockCredentialStore) PurgeToken(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// Tokens lists the node names with cached tokens.
func (m *MockCredentialStore) Tokens() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
