// Package testing provides test utilities, builders, and fixtures for
// unit tests.
//
// This package centralizes common testing patterns to avoid duplication
// across test files:
//   - SpecBuilder: Fluent builder for creating cluster specifications
//   - MockControlPlane and friends: testify mocks for the platform-facing
//     interfaces
//   - Fixture helpers for canned membership and token-cache scenarios
//
// Usage:
//
//	spec := testing.NewSpecBuilder().
//	    WithServer("srv", "10.0.0.10").
//	    WithAgent("n1", "10.0.0.11").
//	    Build()
//
//	cp := testing.NewMockControlPlane().
//	    WithMembers(testing.ReadyMember("n1")).
//	    WithHappyDecommission()
//
// It is imported only from _test.go files. Production code must not
// depend on it.
package testing
