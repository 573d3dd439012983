package submitrating

import "reviewgate/internal/models"

type Input struct {
	Slug       string `json:"slug"`
	Rating     int    `json:"rating"`
	Source     string `json:"source"`
	RecordScan bool   `json:"recordScan"`
}

type Output struct {
	Outcome      string                     `json:"outcome"`
	BusinessID   string                     `json:"businessId"`
	BusinessName string                     `json:"businessName,omitempty"`
	Rating       int                        `json:"rating"`
	Source       string                     `json:"source,omitempty"`
	RedirectURL  string                     `json:"redirectUrl,omitempty"`
	Questions    []models.LowRatingQuestion `json:"questions,omitempty"`
}
