// Package executor shells out to the external build and deploy
// tooling. The tool does not build node systems itself; it hands the
// generated artifacts to whatever builder and deployer the operator
// configured and interprets their exit status per node.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/imamik/k3fleet/internal/pipeline"
)

// CommandTemplate is an argv template for an external tool. Occurrences
// of the {node} placeholder are replaced with the node name; {nodes}
// expands to one argument per node for batch invocations.
type CommandTemplate []string

const (
	nodePlaceholder  = "{node}"
	nodesPlaceholder = "{nodes}"
)

func (t CommandTemplate) render(node string, nodes []string) []string {
	var argv []string
	for _, arg := range t {
		switch arg {
		case nodesPlaceholder:
			argv = append(argv, nodes...)
		default:
			argv = append(argv, strings.ReplaceAll(arg, nodePlaceholder, node))
		}
	}
	return argv
}

// Builder implements pipeline.EvaluatorClient by invoking the external
// builder once per node.
type Builder struct {
	// Template is the builder invocation, e.g.
	// ["nix", "build", ".#nodes.{node}"].
	Template CommandTemplate

	// Dir is the working directory for the invocation; empty means the
	// current directory.
	Dir string
}

// Evaluate implements the pipeline.EvaluatorClient interface. A non-zero
// exit is returned as *pipeline.BuildError carrying the tool's output.
func (b *Builder) Evaluate(ctx context.Context, nodeName string) error {
	argv := b.Template.render(nodeName, nil)
	if len(argv) == 0 {
		return &pipeline.BuildError{Node: nodeName, Err: fmt.Errorf("builder command not configured")}
	}

	output, err := run(ctx, b.Dir, argv)
	if err != nil {
		return &pipeline.BuildError{
			Node: nodeName,
			Err:  fmt.Errorf("%w\nCommand: %s\nOutput: %s", err, strings.Join(argv, " "), output),
		}
	}
	return nil
}

// Deployer implements pipeline.DeployExecutor by invoking the external
// deployer once per node. Per-node failures are collected instead of
// aborting the batch, so the caller can report exactly which nodes are
// left behind.
type Deployer struct {
	// Template is the deployer invocation, e.g.
	// ["deploy", ".#{node}", "--skip-checks"].
	Template CommandTemplate

	// Dir is the working directory for the invocation; empty means the
	// current directory.
	Dir string
}

// Deploy implements the pipeline.DeployExecutor interface. The returned
// map holds one entry per node; a nil value marks success.
func (d *Deployer) Deploy(ctx context.Context, nodeNames []string) (map[string]error, error) {
	if len(d.Template) == 0 {
		return nil, fmt.Errorf("deployer command not configured")
	}

	results := make(map[string]error, len(nodeNames))
	for _, node := range nodeNames {
		argv := d.Template.render(node, nodeNames)
		output, err := run(ctx, d.Dir, argv)
		if err != nil {
			results[node] = fmt.Errorf("%w\nCommand: %s\nOutput: %s", err, strings.Join(argv, " "), output)
			continue
		}
		results[node] = nil
	}
	return results, nil
}

// run executes argv and returns the combined output. The command name
// comes from operator configuration, not remote input.
func run(ctx context.Context, dir string, argv []string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) // #nosec G204
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}
