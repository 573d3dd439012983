package registry

import (
	v "reviewgate/internal/common/validation"
)

// Task types of the job workers.
const (
	TaskSubmitRating   = "review-submit-rating"
	TaskSubmitFeedback = "review-submit-feedback"
	TaskTriageFeedback = "feedback-triage"
	TaskSendReply      = "feedback-send-reply"
	TaskFeedbackAlert  = "feedback-alert"
	TaskSummarize      = "events-summarize"
)

// Triage actions accepted by feedback-triage.
var TriageActions = []string{
	"set-status", "undo", "toggle-flag", "mark-read", "add-note",
	"mark-all-read", "bulk-status", "delete", "undo-delete",
}

const Version = "1.0.0"

var (
	str        = v.Property{Type: "string"}
	nonEmpty   = v.Property{Type: "string", MinLength: v.Int(1)}
	rating     = v.Property{Type: "integer", Minimum: v.Float(1), Maximum: v.Float(5)}
	stringList = v.Property{Type: "array", Items: &v.Property{Type: "string"}}
	statuses   = []string{"new", "resolved", "flagged", "spam", "deleted"}
	session    = v.Property{
		Type:        "object",
		Description: "Operator session the action runs as",
		Properties: map[string]v.Property{
			"role":       {Type: "string", Enum: []string{"SUPER", "ADMIN"}},
			"businessId": str,
		},
		Required: []string{"role"},
	}
)

func object(required []string, props map[string]v.Property) v.JSONSchema {
	return v.JSONSchema{Type: "object", Properties: props, Required: required}
}

// Default is the registry of every activity this service implements.
func Default() *ActivityRegistry {
	reg := &ActivityRegistry{
		Version: Version,
		Activities: []Activity{
			{
				ID:          "review.rating.submit",
				DisplayName: "Submit Rating",
				Description: "Routes a star rating to the public review platform or to private feedback",
				Category:    "public",
				TaskType:    TaskSubmitRating,
				InputSchema: object([]string{"slug", "rating"}, map[string]v.Property{
					"slug":       nonEmpty,
					"rating":     rating,
					"source":     str,
					"recordScan": {Type: "boolean", Description: "Record a page scan before rating"},
				}),
				OutputSchema: object([]string{"outcome", "businessId"}, map[string]v.Property{
					"outcome":     {Type: "string", Enum: []string{"redirect", "intercept"}},
					"businessId":  str,
					"redirectUrl": str,
					"questions":   {Type: "array"},
				}),
				ErrorCodes: []string{"VALIDATION_FAILED", "BUSINESS_NOT_FOUND", "STORAGE_READ_FAILED", "STORAGE_WRITE_FAILED"},
				Timeout:    "10s",
				Retries:    3,
				Workflows:  []string{"review-funnel"},
				Tags:       []string{"public", "rating"},
			},
			{
				ID:          "review.feedback.submit",
				DisplayName: "Submit Private Feedback",
				Description: "Stores private feedback for an intercepted rating",
				Category:    "public",
				TaskType:    TaskSubmitFeedback,
				InputSchema: object([]string{"slug", "rating", "comment"}, map[string]v.Property{
					"slug":    nonEmpty,
					"rating":  rating,
					"comment": nonEmpty,
					"name":    str,
					"email":   str,
					"photos":  {Type: "array", MaxItems: v.Int(3), Items: &v.Property{Type: "string"}},
					"answers": {Type: "object"},
					"source":  str,
				}),
				OutputSchema: object([]string{"feedbackId", "businessId"}, map[string]v.Property{
					"feedbackId":      str,
					"businessId":      str,
					"status":          str,
					"exitRedirectUrl": str,
				}),
				ErrorCodes: []string{"VALIDATION_FAILED", "BUSINESS_NOT_FOUND", "STORAGE_READ_FAILED", "STORAGE_WRITE_FAILED"},
				Timeout:    "10s",
				Retries:    3,
				Workflows:  []string{"review-funnel"},
				Tags:       []string{"public", "feedback"},
			},
			{
				ID:          "feedback.inbox.triage",
				DisplayName: "Triage Feedback",
				Description: "Changes status, read state, flags, notes and deletions in the feedback inbox",
				Category:    "inbox",
				TaskType:    TaskTriageFeedback,
				InputSchema: object([]string{"action", "session"}, map[string]v.Property{
					"action":      {Type: "string", Enum: TriageActions},
					"session":     session,
					"feedbackId":  str,
					"feedbackIds": stringList,
					"businessId":  str,
					"status":      {Type: "string", Enum: statuses},
					"isRead":      {Type: "boolean"},
					"note":        str,
				}),
				OutputSchema: object([]string{"action"}, map[string]v.Property{
					"action":         str,
					"found":          {Type: "boolean"},
					"mutated":        {Type: "boolean"},
					"count":          {Type: "integer"},
					"pendingDeletes": {Type: "integer"},
				}),
				ErrorCodes: []string{"VALIDATION_FAILED", "FEEDBACK_NOT_FOUND", "UNAUTHORIZED", "STORAGE_READ_FAILED", "STORAGE_WRITE_FAILED"},
				Timeout:    "5s",
				Retries:    3,
				Workflows:  []string{"feedback-inbox"},
				Tags:       []string{"inbox"},
			},
			{
				ID:          "feedback.reply.send",
				DisplayName: "Send Reply",
				Description: "Emails the customer and records the reply on the feedback timeline",
				Category:    "inbox",
				TaskType:    TaskSendReply,
				InputSchema: object([]string{"feedbackId", "to", "message", "session"}, map[string]v.Property{
					"feedbackId": nonEmpty,
					"to":         nonEmpty,
					"message":    nonEmpty,
					"session":    session,
				}),
				OutputSchema: object([]string{"activityId"}, map[string]v.Property{
					"activityId":  str,
					"to":          str,
					"delivered":   {Type: "boolean"},
					"resolved":    {Type: "boolean"},
					"completedAt": str,
				}),
				ErrorCodes: []string{"VALIDATION_FAILED", "FEEDBACK_NOT_FOUND", "UNAUTHORIZED", "REPLY_DELIVERY_FAILED"},
				Timeout:    "15s",
				Retries:    3,
				Workflows:  []string{"feedback-inbox"},
				Tags:       []string{"inbox", "email"},
			},
			{
				ID:          "feedback.alert.notify",
				DisplayName: "Alert Operator",
				Description: "Notifies the business operator of new low-rating feedback by email and SMS",
				Category:    "notification",
				TaskType:    TaskFeedbackAlert,
				InputSchema: object([]string{"feedbackId"}, map[string]v.Property{
					"feedbackId": nonEmpty,
				}),
				OutputSchema: object([]string{"skipped"}, map[string]v.Property{
					"skipped":  {Type: "boolean"},
					"channels": stringList,
				}),
				ErrorCodes: []string{"FEEDBACK_NOT_FOUND", "BUSINESS_NOT_FOUND", "ALERT_PUBLISH_FAILED"},
				Timeout:    "10s",
				Retries:    3,
				Workflows:  []string{"review-funnel"},
				Tags:       []string{"notification", "email", "sms"},
			},
			{
				ID:          "events.summary.compute",
				DisplayName: "Summarize Events",
				Description: "Computes the dashboard summary of scans, redirects and intercepted ratings",
				Category:    "analytics",
				TaskType:    TaskSummarize,
				InputSchema: object([]string{"session"}, map[string]v.Property{
					"session":    session,
					"businessId": str,
					"windowDays": {Type: "integer", Minimum: v.Float(1), Maximum: v.Float(365)},
					"recent":     {Type: "integer", Minimum: v.Float(0), Maximum: v.Float(100)},
				}),
				OutputSchema: object([]string{"summary"}, map[string]v.Property{
					"summary": {Type: "object"},
				}),
				ErrorCodes: []string{"VALIDATION_FAILED", "UNAUTHORIZED", "STORAGE_READ_FAILED", "STORAGE_WRITE_FAILED"},
				Timeout:    "10s",
				Retries:    2,
				Workflows:  []string{"dashboard"},
				Tags:       []string{"analytics"},
			},
		},
	}
	for i := range reg.Activities {
		reg.Activities[i].Version = Version
		reg.Activities[i].ImplementationStatus = "implemented"
	}
	return reg
}

// MustInput returns the input schema of taskType from the default registry.
// It panics for unknown task types, which is a programming error.
func MustInput(taskType string) v.JSONSchema {
	a, ok := Default().Find(taskType)
	if !ok {
		panic("registry: unknown task type " + taskType)
	}
	return a.InputSchema
}
