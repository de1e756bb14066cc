package handlers

import (
	"errors"

	"github.com/imamik/k3fleet/internal/config"
)

// Validate loads the topology document and reports every violation
// found, warnings included. It never touches the cluster.
func Validate(path string) error {
	spec, warnings, err := loadValidated(configPath(path))

	for _, warning := range warnings {
		printf("WARNING: %s\n", warning.Error())
	}

	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, violation := range verrs.Errors() {
				printf("ERROR: [%s] %s\n", violation.Field, violation.Message)
			}
		}
		return err
	}

	printf("%s: %d nodes, topology valid\n", spec.Domain, len(spec.Nodes))
	return nil
}
