// Package phases contains the ordered steps of the deployment
// pipeline: validate, generate, cleanup, build, confirm, deploy,
// verify. The CLI handlers compose the sequence a given invocation
// needs; each phase reads and extends the shared pipeline context.
package phases
