package submitfeedback

import "reviewgate/internal/models"

type Input struct {
	Slug    string                   `json:"slug"`
	Rating  int                      `json:"rating"`
	Comment string                   `json:"comment"`
	Name    string                   `json:"name"`
	Email   string                   `json:"email"`
	Photos  []string                 `json:"photos"`
	Answers map[string]models.Answer `json:"answers"`
	Source  string                   `json:"source"`
}

type Output struct {
	FeedbackID      string `json:"feedbackId"`
	BusinessID      string `json:"businessId"`
	Rating          int    `json:"rating"`
	Status          string `json:"status"`
	Source          string `json:"source,omitempty"`
	ExitRedirectURL string `json:"exitRedirectUrl,omitempty"`
}
