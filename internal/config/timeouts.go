package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Drain             time.Duration // Timeout for draining workloads off a node
	ControlPlane      time.Duration // Timeout for control-plane API calls
	SSH               time.Duration // Timeout for remote shell connections
	Verify            time.Duration // Per-node timeout for post-deploy reachability checks
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - K3FLEET_TIMEOUT_DRAIN (default: 2m)
//   - K3FLEET_TIMEOUT_CONTROL_PLANE (default: 30s)
//   - K3FLEET_TIMEOUT_SSH (default: 10s)
//   - K3FLEET_TIMEOUT_VERIFY (default: 15s)
//   - K3FLEET_RETRY_MAX_ATTEMPTS (default: 3)
//   - K3FLEET_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Drain:             parseDuration("K3FLEET_TIMEOUT_DRAIN", 2*time.Minute),
		ControlPlane:      parseDuration("K3FLEET_TIMEOUT_CONTROL_PLANE", 30*time.Second),
		SSH:               parseDuration("K3FLEET_TIMEOUT_SSH", 10*time.Second),
		Verify:            parseDuration("K3FLEET_TIMEOUT_VERIFY", 15*time.Second),
		RetryMaxAttempts:  parseInt("K3FLEET_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("K3FLEET_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
