package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// DecodeVariables checks raw job variables against schema and unmarshals
// them into out. Failures are validation errors.
func DecodeVariables(raw string, schema validation.JSONSchema, out interface{}) error {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	res, err := validation.ValidateDocument(schema, []byte(raw))
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("parse variables: %v", err))
	}
	if !res.Valid {
		return errors.NewValidationError(strings.Join(res.GetErrorMessages(), "; "))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.NewValidationError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}

// DecodeJob is DecodeVariables for an activated job.
func DecodeJob(job entities.Job, schema validation.JSONSchema, out interface{}) error {
	return DecodeVariables(job.Variables, schema, out)
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}
