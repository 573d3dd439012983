// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"reviewgate/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON, stamping LastUpdated.
func (r *ActivityRegistry) Save(path string, now time.Time) error {
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate checks activity naming, uniqueness, and that every required input
// is a declared property.
func (r *ActivityRegistry) Validate() error {
	ids := map[string]bool{}
	taskTypes := map[string]bool{}
	for _, a := range r.Activities {
		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			return fmt.Errorf("activity %q: %w", a.ID, err)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %q: taskType is required", a.ID)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true

		for _, field := range a.InputSchema.Required {
			if _, ok := a.InputSchema.Properties[field]; !ok {
				return fmt.Errorf("activity %q: required input %q is not a declared property", a.ID, field)
			}
		}
	}
	return nil
}

// Diff lists task types present in only one of the registries.
func Diff(a, b *ActivityRegistry) (onlyA, onlyB []string) {
	inB := map[string]bool{}
	for _, act := range b.Activities {
		inB[act.TaskType] = true
	}
	inA := map[string]bool{}
	for _, act := range a.Activities {
		inA[act.TaskType] = true
		if !inB[act.TaskType] {
			onlyA = append(onlyA, act.TaskType)
		}
	}
	for _, act := range b.Activities {
		if !inA[act.TaskType] {
			onlyB = append(onlyB, act.TaskType)
		}
	}
	return onlyA, onlyB
}
