package workout

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParsePlanYAML decodes a plan file. Unknown fields are rejected so that typos in rest overrides surface early.
// The plan is not validated.
func ParsePlanYAML(r io.Reader) (Plan, error) {
	var plan Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return Plan{}, fmt.Errorf("decode plan yaml: %w", err)
	}
	return plan, nil
}
