// Package funnel is the public review flow: a customer opens a business's
// page, picks a star rating and is either sent to the public review platform
// or asked for private feedback.
package funnel

import (
	"context"
	"strings"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/models"
)

// Outcome is the routing decision for a rating.
type Outcome string

const (
	OutcomeRedirect  Outcome = "redirect"
	OutcomeIntercept Outcome = "intercept"
)

type BusinessLookup interface {
	BySlug(ctx context.Context, slug string) (models.Business, bool, error)
}

type EventRecorder interface {
	RecordScan(ctx context.Context, businessID, source string) (models.ReviewEvent, error)
	RecordRedirect(ctx context.Context, businessID string, rating int, source string) (models.ReviewEvent, error)
}

type FeedbackStore interface {
	Add(ctx context.Context, in models.NewFeedback) (models.Feedback, error)
}

// Decision is the result of Rate.
type Decision struct {
	Outcome     Outcome                    `json:"outcome"`
	BusinessID  string                     `json:"businessId"`
	Rating      int                        `json:"rating"`
	Source      string                     `json:"source,omitempty"`
	RedirectURL string                     `json:"redirectUrl,omitempty"`
	Questions   []models.LowRatingQuestion `json:"questions,omitempty"`
}

// Submission is the private feedback form.
type Submission struct {
	Rating  int                      `json:"rating"`
	Comment string                   `json:"comment"`
	Name    string                   `json:"name,omitempty"`
	Email   string                   `json:"email,omitempty"`
	Photos  []string                 `json:"photos,omitempty"`
	Answers map[string]models.Answer `json:"answers,omitempty"`
	Source  string                   `json:"source,omitempty"`
}

// Receipt is the result of Submit.
type Receipt struct {
	Feedback        models.Feedback `json:"feedback"`
	ExitRedirectURL string          `json:"exitRedirectUrl,omitempty"`
}

type Funnel struct {
	directory BusinessLookup
	events    EventRecorder
	feedback  FeedbackStore
	log       logger.Logger
}

func New(directory BusinessLookup, events EventRecorder, feedback FeedbackStore, log logger.Logger) *Funnel {
	return &Funnel{
		directory: directory,
		events:    events,
		feedback:  feedback,
		log:       logger.Component(log, "funnel"),
	}
}

// Visit resolves the business behind a public page and records the scan.
func (f *Funnel) Visit(ctx context.Context, slug, source string) (models.Business, error) {
	b, err := f.business(ctx, slug)
	if err != nil {
		return models.Business{}, err
	}
	if _, err := f.events.RecordScan(ctx, b.ID, cleanSource(source)); err != nil {
		return models.Business{}, err
	}
	return b, nil
}

// Rate routes a rating. Ratings at or above the business threshold are
// recorded as redirects; lower ratings are intercepted and the caller shows
// the business's low-rating questions.
func (f *Funnel) Rate(ctx context.Context, slug string, rating int, source string) (Decision, error) {
	if err := ValidateRating(rating); err != nil {
		return Decision{}, err
	}
	b, err := f.business(ctx, slug)
	if err != nil {
		return Decision{}, err
	}

	source = cleanSource(source)
	d := Decision{BusinessID: b.ID, Rating: rating, Source: source}
	if b.Redirects(rating) {
		if _, err := f.events.RecordRedirect(ctx, b.ID, rating, source); err != nil {
			return Decision{}, err
		}
		d.Outcome = OutcomeRedirect
		d.RedirectURL = b.GoogleReviewURL
	} else {
		d.Outcome = OutcomeIntercept
		d.Questions = b.LowRatingQuestions
	}

	metrics.RatingDecisions.WithLabelValues(string(d.Outcome)).Inc()
	f.log.Debug("rating routed", map[string]interface{}{
		"businessId": b.ID,
		"rating":     rating,
		"outcome":    string(d.Outcome),
	})
	return d, nil
}

// Submit validates and stores private feedback. The feedback engine records
// the matching internal event.
func (f *Funnel) Submit(ctx context.Context, slug string, s Submission) (Receipt, error) {
	b, err := f.business(ctx, slug)
	if err != nil {
		return Receipt{}, err
	}
	s.Source = cleanSource(s.Source)
	s.Comment = strings.TrimSpace(s.Comment)
	if err := ValidateSubmission(b, s); err != nil {
		return Receipt{}, err
	}

	fb, err := f.feedback.Add(ctx, models.NewFeedback{
		BusinessID: b.ID,
		Rating:     s.Rating,
		Comment:    s.Comment,
		Name:       strings.TrimSpace(s.Name),
		Email:      strings.TrimSpace(s.Email),
		Photos:     s.Photos,
		Answers:    s.Answers,
		Source:     s.Source,
	})
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Feedback: fb, ExitRedirectURL: b.ExitRedirectURL}, nil
}

func (f *Funnel) business(ctx context.Context, slug string) (models.Business, error) {
	b, found, err := f.directory.BySlug(ctx, slug)
	if err != nil {
		return models.Business{}, err
	}
	if !found {
		return models.Business{}, errors.NewBusinessNotFoundError(slug)
	}
	return b, nil
}

func cleanSource(source string) string {
	return strings.TrimSpace(source)
}
