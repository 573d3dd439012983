package main

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"time"

	"reviewgate/internal/common/validation"
	"reviewgate/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name        string
	PackageName string
	TaskType    string
	TaskConst   string
	Description string
	Timeout     string
	Input       []Field
	Output      []Field
	UsesModels  bool
}

// Field is one generated struct field.
type Field struct {
	Name    string
	Type    string
	JSON    string
	Comment string
}

// knownTaskConsts maps task types to their registry constant names.
var knownTaskConsts = map[string]string{
	registry.TaskSubmitRating:   "TaskSubmitRating",
	registry.TaskSubmitFeedback: "TaskSubmitFeedback",
	registry.TaskTriageFeedback: "TaskTriageFeedback",
	registry.TaskSendReply:      "TaskSendReply",
	registry.TaskFeedbackAlert:  "TaskFeedbackAlert",
	registry.TaskSummarize:      "TaskSummarize",
}

func newWorkerData(a registry.Activity, dir string) WorkerData {
	data := WorkerData{
		Name:        a.DisplayName,
		PackageName: strings.ReplaceAll(dir, "-", ""),
		TaskType:    a.TaskType,
		TaskConst:   knownTaskConsts[a.TaskType],
		Description: a.Description,
		Timeout:     durationExpr(a.Timeout),
	}
	data.Input, data.UsesModels = fields(a.InputSchema)
	var outModels bool
	data.Output, outModels = fields(a.OutputSchema)
	data.UsesModels = data.UsesModels || outModels
	return data
}

// fields lists schema properties in name order. The second result reports
// whether any field needs the models package.
func fields(schema validation.JSONSchema) ([]Field, bool) {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	usesModels := false
	out := make([]Field, 0, len(names))
	for _, name := range names {
		p := schema.Properties[name]
		typ := goType(name, p)
		if strings.HasPrefix(typ, "models.") {
			usesModels = true
		}
		out = append(out, Field{
			Name:    fieldName(name),
			Type:    typ,
			JSON:    name,
			Comment: p.Description,
		})
	}
	return out, usesModels
}

// goType maps a schema property to a Go type.
func goType(name string, p validation.Property) string {
	if name == "session" && p.Type == "object" {
		return "models.Session"
	}
	switch p.Type {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		if p.Items != nil && p.Items.Type != "" && p.Items.Type != "array" {
			return "[]" + goType("", *p.Items)
		}
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

var initialisms = [][2]string{{"Ids", "IDs"}, {"Id", "ID"}, {"Url", "URL"}}

// fieldName exports a JSON property name, keeping common initialisms upper
// case (feedbackId becomes FeedbackID).
func fieldName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	for _, r := range initialisms {
		if strings.HasSuffix(name, r[0]) {
			return strings.TrimSuffix(name, r[0]) + r[1]
		}
	}
	return name
}

// durationExpr turns a registry timeout such as "10s" into Go source.
// Unparsable or empty values use 30 seconds.
func durationExpr(s string) string {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return "30 * time.Second"
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

// render executes tmpl with data and gofmts the result.
func render(name, tmpl string, data WorkerData) ([]byte, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return src, nil
}

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"

	"reviewgate/internal/common/camunda"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/validation"
	"reviewgate/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
{{- if .TaskConst }}
	TaskType = registry.{{ .TaskConst }}
{{- else }}
	TaskType = "{{ .TaskType }}"
{{- end }}
)

type Handler struct {
	config    *Config
	schema    validation.JSONSchema
	jobErrors *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	return &Handler{
		config:    config,
		schema:    registry.MustInput(TaskType),
		jobErrors: errors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.process(ctx, job)
	if err != nil {
		h.jobErrors.HandleJobError(ctx, client, job, err)
		return err
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	var input Input
	if err := camunda.DecodeJob(job, h.schema, &input); err != nil {
		return nil, err
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO: implement {{ .Name }}
	return &Output{}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const configTemplate = `package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}
`

const modelsTemplate = `package {{ .PackageName }}
{{ if .UsesModels }}
import "reviewgate/internal/models"
{{ end }}
type Input struct {
{{- range .Input }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}

type Output struct {
{{- range .Output }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"reviewgate/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	h := NewHandler(&Config{}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}
`
