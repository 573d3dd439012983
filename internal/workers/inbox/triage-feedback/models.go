package triagefeedback

import "reviewgate/internal/models"

const (
	ActionSetStatus   = "set-status"
	ActionUndo        = "undo"
	ActionToggleFlag  = "toggle-flag"
	ActionMarkRead    = "mark-read"
	ActionAddNote     = "add-note"
	ActionMarkAllRead = "mark-all-read"
	ActionBulkStatus  = "bulk-status"
	ActionDelete      = "delete"
	ActionUndoDelete  = "undo-delete"
)

type Input struct {
	Action      string         `json:"action"`
	Session     models.Session `json:"session"`
	FeedbackID  string         `json:"feedbackId"`
	FeedbackIDs []string       `json:"feedbackIds"`
	BusinessID  string         `json:"businessId"`
	Status      models.Status  `json:"status"`
	IsRead      *bool          `json:"isRead"`
	Note        string         `json:"note"`
}

// ids merges FeedbackID into FeedbackIDs.
func (in *Input) ids() []string {
	out := make([]string, 0, len(in.FeedbackIDs)+1)
	if in.FeedbackID != "" {
		out = append(out, in.FeedbackID)
	}
	for _, id := range in.FeedbackIDs {
		if id != "" && id != in.FeedbackID {
			out = append(out, id)
		}
	}
	return out
}

type Output struct {
	Action         string `json:"action"`
	Found          bool   `json:"found"`
	Mutated        bool   `json:"mutated"`
	Count          int    `json:"count"`
	Status         string `json:"status,omitempty"`
	PendingDeletes int    `json:"pendingDeletes"`
}
