// Package remote executes host-level cleanup on fleet nodes over SSH.
// It handles connection establishment with retry logic, key-based
// authentication, and command execution with context support.
//
// Security: host key verification is disabled by default; the fleet
// lives on a private homelab subnet. Configure HostKeyCallback for
// environments where the hosts are reachable from untrusted networks.
package remote

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/util/retry"
)

const (
	defaultPort           = 22
	defaultUser           = "root"
	defaultDialTimeout    = 10 * time.Second
	defaultCommandTimeout = 30 * time.Second
	defaultMaxRetries     = 3
	defaultRetryDelay     = 1 * time.Second
	defaultMaxDelay       = 10 * time.Second

	serverUnit     = "k3s"
	agentUnit      = "k3s-agent"
	agentTokenFile = "/etc/rancher/k3s/agent-token"
)

// Config holds SSH client configuration shared across all fleet hosts.
type Config struct {
	User       string
	Port       int
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// CommandTimeout bounds each remote command. A host whose sshd
	// accepts the session but whose system hangs must not stall the
	// run. If zero, defaultCommandTimeout is used.
	CommandTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification. If nil,
	// ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// Shell executes commands on fleet hosts via SSH. It parses the
// private key once during construction and dials per operation; the
// fleet is small enough that connection pooling buys nothing.
type Shell struct {
	config Config
	signer ssh.Signer
}

// NewShell creates an SSH shell and validates the private key.
func NewShell(cfg Config) (*Shell, error) {
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("private key cannot be empty")
	}
	if cfg.User == "" {
		cfg.User = defaultUser
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.HostKeyCallback == nil {
		cfg.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Private homelab subnet
	}

	signer, err := ssh.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Shell{config: cfg, signer: signer}, nil
}

// StopService implements the pipeline.RemoteShellClient interface: it
// stops and disables the node's k3s unit and removes the cached join
// token from the host. Stopping an already-stopped unit is harmless,
// which keeps the decommission transition idempotent.
func (s *Shell) StopService(ctx context.Context, address, role string) error {
	unit := agentUnit
	if role == "server" {
		unit = serverUnit
	}

	commands := []string{
		fmt.Sprintf("systemctl stop %s", unit),
		fmt.Sprintf("systemctl disable %s", unit),
		fmt.Sprintf("rm -f %s", agentTokenFile),
	}

	client, err := s.connect(ctx, address)
	if err != nil {
		return &cluster.ConnectivityError{Target: address, Err: err}
	}
	defer func() { _ = client.Close() }()

	for _, command := range commands {
		if output, err := s.runCommand(ctx, client, command); err != nil {
			return fmt.Errorf("command %q failed on %s: %w\nOutput: %s", command, address, err, output)
		}
	}
	return nil
}

// Ping implements the pipeline.RemoteShellClient interface: a bare TCP
// reachability check against the host's SSH port within the timeout.
func (s *Shell) Ping(ctx context.Context, address string, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.hostPort(address))
	if err != nil {
		return &cluster.ConnectivityError{Target: address, Err: err}
	}
	return conn.Close()
}

// connect establishes the SSH connection with retry logic.
func (s *Shell) connect(ctx context.Context, address string) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: s.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(s.signer),
		},
		HostKeyCallback: s.config.HostKeyCallback,
		Timeout:         s.config.DialTimeout,
	}

	addr := s.hostPort(address)
	var client *ssh.Client

	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		return dialErr
	},
		retry.WithMaxRetries(s.config.MaxRetries),
		retry.WithInitialDelay(s.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}

func (s *Shell) hostPort(address string) string {
	return fmt.Sprintf("%s:%d", address, s.config.Port)
}

// runCommand executes one command bounded by CommandTimeout and the
// caller's context. CombinedOutput has no deadline of its own; closing
// the session unblocks it when the bound expires.
func (s *Shell) runCommand(ctx context.Context, client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer func() { _ = session.Close() }()

	cmdCtx, cancel := context.WithTimeout(ctx, s.config.CommandTimeout)
	defer cancel()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := session.CombinedOutput(command)
		done <- result{output: output, err: err}
	}()

	select {
	case res := <-done:
		return string(res.output), res.err
	case <-cmdCtx.Done():
		_ = session.Close()
		return "", cmdCtx.Err()
	}
}
