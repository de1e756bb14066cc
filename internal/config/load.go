package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the topology document looked for when no --config flag
// is given.
const DefaultFile = "cluster.yaml"

// LoadFile reads and parses the topology document from a YAML file.
// The returned spec is parsed but not validated; call Validate to
// collect violations.
func LoadFile(path string) (*ClusterSpec, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a topology document from raw YAML bytes.
func Parse(data []byte) (*ClusterSpec, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var spec ClusterSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode topology: %w", err)
	}

	return &spec, nil
}

// LoadValidated loads the topology document and runs full validation.
// Warnings are returned alongside a valid spec; any error-severity
// violation fails the load with the complete violation list.
func LoadValidated(path string) (*ClusterSpec, ValidationErrors, error) {
	spec, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	violations := spec.Validate()
	if errs := violations.Errors(); len(errs) > 0 {
		return nil, violations.Warnings(), violations
	}

	return spec, violations.Warnings(), nil
}
