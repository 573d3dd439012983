// internal/models/business.go
package models

import "time"

// DefaultThresholdRating applies when a stored business has no usable threshold.
const DefaultThresholdRating float64 = 4

// QuestionType controls whether a low-rating question accepts one or many options.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// Theme holds the colours and logo used by the public and dashboard screens.
type Theme struct {
	AccentColor         string `json:"accentColor"`
	CustomerBackground  string `json:"customerBackground"`
	DashboardBackground string `json:"dashboardBackground"`
	CardBackground      string `json:"cardBackground"`
	LogoURL             string `json:"logoUrl,omitempty"`
}

// DefaultTheme is the base every stored theme is merged onto.
func DefaultTheme() Theme {
	return Theme{
		AccentColor:         "#3b82f6",
		CustomerBackground:  "#ffffff",
		DashboardBackground: "#f8fafc",
		CardBackground:      "#ffffff",
	}
}

// Merge overlays the non-empty fields of t onto base. A zero field means
// unset; stored themes that set a key to "" are decoded by the normalize
// package instead.
func (t Theme) Merge(base Theme) Theme {
	out := base
	if t.AccentColor != "" {
		out.AccentColor = t.AccentColor
	}
	if t.CustomerBackground != "" {
		out.CustomerBackground = t.CustomerBackground
	}
	if t.DashboardBackground != "" {
		out.DashboardBackground = t.DashboardBackground
	}
	if t.CardBackground != "" {
		out.CardBackground = t.CardBackground
	}
	if t.LogoURL != "" {
		out.LogoURL = t.LogoURL
	}
	return out
}

// LowRatingQuestion is asked after a rating below the business threshold.
type LowRatingQuestion struct {
	ID       string       `json:"id"`
	Prompt   string       `json:"prompt"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options"`
	Required bool         `json:"required,omitempty"`
}

// ContactSettings decides where operator alerts for new feedback go.
type ContactSettings struct {
	NotifyEmail string `json:"notifyEmail,omitempty"`
	NotifyPhone string `json:"notifyPhone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// Business is a tenant with its own public review page.
type Business struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Slug               string              `json:"slug"`
	Timezone           string              `json:"timezone"`
	ThresholdRating    float64             `json:"thresholdRating"`
	GoogleReviewURL    string              `json:"googleReviewUrl"`
	ExitRedirectURL    string              `json:"exitRedirectUrl"`
	Theme              Theme               `json:"theme"`
	LowRatingQuestions []LowRatingQuestion `json:"lowRatingQuestions"`
	ContactSettings    ContactSettings     `json:"contactSettings"`
	CreatedAt          time.Time           `json:"createdAt"`
}

// Redirects reports whether a rating clears the business threshold and should
// be sent to the public review platform.
func (b Business) Redirects(rating int) bool {
	return float64(rating) >= b.ThresholdRating
}
