package feedbackalert

type Input struct {
	FeedbackID string `json:"feedbackId"`
}

type Output struct {
	FeedbackID string   `json:"feedbackId"`
	BusinessID string   `json:"businessId"`
	Skipped    bool     `json:"skipped"`
	Channels   []string `json:"channels"`
}
