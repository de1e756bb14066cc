// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay, and maximum delay. It is used for SSH dialing
// against fleet hosts and other operations that may fail transiently.
package retry
