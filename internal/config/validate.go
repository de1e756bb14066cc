package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a topology validation error or warning.
type ValidationError struct {
	Field    string // Topology field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationErrors aggregates every violation found in a single pass so
// the operator can fix the whole document at once.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ves ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ves))
	for _, ve := range ves {
		msgs = append(msgs, ve.Error())
	}
	return fmt.Sprintf("topology validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

// Validate checks the whole topology and returns every violation found.
// It never fails fast: duplicate names, duplicate IPs, out-of-subnet
// addresses, unknown roles, server-count violations and missing config
// sections are all collected in one pass.
func (s *ClusterSpec) Validate() ValidationErrors {
	var errs ValidationErrors

	if s.Domain == "" {
		errs = append(errs, ValidationError{
			Field:    "domain",
			Message:  "domain is required",
			Severity: "error",
		})
	}

	subnetOK := true
	if s.Subnet == "" {
		subnetOK = false
		errs = append(errs, ValidationError{
			Field:    "subnet",
			Message:  "subnet CIDR is required",
			Severity: "error",
		})
	} else if _, _, err := net.ParseCIDR(s.Subnet); err != nil {
		subnetOK = false
		errs = append(errs, ValidationError{
			Field:    "subnet",
			Message:  fmt.Sprintf("invalid CIDR: %v", err),
			Severity: "error",
		})
	}

	if len(s.Nodes) == 0 {
		errs = append(errs, ValidationError{
			Field:    "nodes",
			Message:  "at least one node is required",
			Severity: "error",
		})
	}

	seenNames := make(map[string]bool)
	seenIPs := make(map[string]bool)
	serverCount := 0

	for i, node := range s.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)

		if node.Name == "" {
			errs = append(errs, ValidationError{
				Field:    field + ".name",
				Message:  "name is required",
				Severity: "error",
			})
		} else if seenNames[node.Name] {
			errs = append(errs, ValidationError{
				Field:    field + ".name",
				Message:  fmt.Sprintf("duplicate node name %q", node.Name),
				Severity: "error",
			})
		}
		seenNames[node.Name] = true

		if node.Hostname == "" {
			errs = append(errs, ValidationError{
				Field:    field + ".hostname",
				Message:  "hostname is required",
				Severity: "error",
			})
		}

		switch {
		case node.IP == "":
			errs = append(errs, ValidationError{
				Field:    field + ".ip",
				Message:  "ip is required",
				Severity: "error",
			})
		case net.ParseIP(node.IP) == nil:
			errs = append(errs, ValidationError{
				Field:    field + ".ip",
				Message:  fmt.Sprintf("invalid IP address %q", node.IP),
				Severity: "error",
			})
		default:
			if seenIPs[node.IP] {
				errs = append(errs, ValidationError{
					Field:    field + ".ip",
					Message:  fmt.Sprintf("duplicate node IP %q", node.IP),
					Severity: "error",
				})
			}
			seenIPs[node.IP] = true

			if subnetOK && !s.subnetContains(node.IP) {
				errs = append(errs, ValidationError{
					Field:    field + ".ip",
					Message:  fmt.Sprintf("IP %q is outside subnet %s", node.IP, s.Subnet),
					Severity: "error",
				})
			}
		}

		switch node.Role {
		case RoleServer:
			serverCount++
		case RoleAgent:
		default:
			errs = append(errs, ValidationError{
				Field:    field + ".role",
				Message:  fmt.Sprintf("invalid role %q: must be %q or %q", node.Role, RoleServer, RoleAgent),
				Severity: "error",
			})
		}

		if node.Description == "" {
			errs = append(errs, ValidationError{
				Field:    field + ".description",
				Message:  "description is recommended for fleet inventory",
				Severity: "warning",
			})
		}
	}

	switch {
	case serverCount == 0 && len(s.Nodes) > 0:
		errs = append(errs, ValidationError{
			Field:    "nodes",
			Message:  "exactly one server node is required, found none",
			Severity: "error",
		})
	case serverCount > 1:
		errs = append(errs, ValidationError{
			Field:    "nodes",
			Message:  fmt.Sprintf("exactly one server node is required, found %d", serverCount),
			Severity: "error",
		})
	}

	if s.ServerConfig == nil {
		errs = append(errs, ValidationError{
			Field:    "server_config",
			Message:  "server_config section is required",
			Severity: "error",
		})
	}
	if s.AgentConfig == nil {
		errs = append(errs, ValidationError{
			Field:    "agent_config",
			Message:  "agent_config section is required",
			Severity: "error",
		})
	}

	return errs
}

// Errors returns only the violations with error severity.
func (ves ValidationErrors) Errors() ValidationErrors {
	var out ValidationErrors
	for _, ve := range ves {
		if ve.IsError() {
			out = append(out, ve)
		}
	}
	return out
}

// Warnings returns only the violations with warning severity.
func (ves ValidationErrors) Warnings() ValidationErrors {
	var out ValidationErrors
	for _, ve := range ves {
		if !ve.IsError() {
			out = append(out, ve)
		}
	}
	return out
}
