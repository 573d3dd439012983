// Package seed loads the starter businesses and links used to populate empty
// storage partitions.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"reviewgate/internal/ident"
	"reviewgate/internal/models"
	"reviewgate/internal/normalize"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

// Set is a parsed seed document.
type Set struct {
	Businesses []BusinessSeed `yaml:"businesses"`
	Links      []LinkSeed     `yaml:"links"`
}

type BusinessSeed struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	Slug               string         `yaml:"slug"`
	Timezone           string         `yaml:"timezone"`
	ThresholdRating    float64        `yaml:"thresholdRating"`
	GoogleReviewURL    string         `yaml:"googleReviewUrl"`
	ExitRedirectURL    string         `yaml:"exitRedirectUrl"`
	Theme              ThemeSeed      `yaml:"theme"`
	LowRatingQuestions []QuestionSeed `yaml:"lowRatingQuestions"`
	Contact            ContactSeed    `yaml:"contactSettings"`
}

type ThemeSeed struct {
	AccentColor         string `yaml:"accentColor"`
	CustomerBackground  string `yaml:"customerBackground"`
	DashboardBackground string `yaml:"dashboardBackground"`
	CardBackground      string `yaml:"cardBackground"`
	LogoURL             string `yaml:"logoUrl"`
}

type QuestionSeed struct {
	ID       string   `yaml:"id"`
	Prompt   string   `yaml:"prompt"`
	Type     string   `yaml:"type"`
	Options  []string `yaml:"options"`
	Required bool     `yaml:"required"`
}

type ContactSeed struct {
	NotifyEmail string `yaml:"notifyEmail"`
	NotifyPhone string `yaml:"notifyPhone"`
	Enabled     bool   `yaml:"enabled"`
}

type LinkSeed struct {
	BusinessID string `yaml:"businessId"`
	Label      string `yaml:"label"`
	Source     string `yaml:"source"`
}

// Default returns the built-in seed set.
func Default() (*Set, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file. An empty path returns Default.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and checks a seed document. Business ids must be unique and
// every link must belong to a seeded business.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse seed document: %w", err)
	}

	ids := make(map[string]bool, len(s.Businesses))
	for i, b := range s.Businesses {
		if b.ID == "" {
			return nil, fmt.Errorf("seed business %d has no id", i)
		}
		if ids[b.ID] {
			return nil, fmt.Errorf("duplicate seed business id %q", b.ID)
		}
		ids[b.ID] = true
	}
	for i, l := range s.Links {
		if !ids[l.BusinessID] {
			return nil, fmt.Errorf("seed link %d references unknown business %q", i, l.BusinessID)
		}
	}
	return &s, nil
}

// BusinessList returns the seeded businesses in canonical form.
func (s *Set) BusinessList(now time.Time) []models.Business {
	out := make([]models.Business, 0, len(s.Businesses))
	for _, b := range s.Businesses {
		questions := make([]models.LowRatingQuestion, 0, len(b.LowRatingQuestions))
		for _, q := range b.LowRatingQuestions {
			questions = append(questions, models.LowRatingQuestion{
				ID:       q.ID,
				Prompt:   q.Prompt,
				Type:     models.QuestionType(q.Type),
				Options:  q.Options,
				Required: q.Required,
			})
		}
		out = append(out, normalize.NormalizeBusiness(models.Business{
			ID:              b.ID,
			Name:            b.Name,
			Slug:            b.Slug,
			Timezone:        b.Timezone,
			ThresholdRating: b.ThresholdRating,
			GoogleReviewURL: b.GoogleReviewURL,
			ExitRedirectURL: b.ExitRedirectURL,
			Theme: models.Theme{
				AccentColor:         b.Theme.AccentColor,
				CustomerBackground:  b.Theme.CustomerBackground,
				DashboardBackground: b.Theme.DashboardBackground,
				CardBackground:      b.Theme.CardBackground,
				LogoURL:             b.Theme.LogoURL,
			},
			LowRatingQuestions: questions,
			ContactSettings: models.ContactSettings{
				NotifyEmail: b.Contact.NotifyEmail,
				NotifyPhone: b.Contact.NotifyPhone,
				Enabled:     b.Contact.Enabled,
			},
			CreatedAt: now.UTC(),
		}))
	}
	return out
}

// LinkList returns the seeded links with fresh ids.
func (s *Set) LinkList(now time.Time) []models.LinkEntry {
	out := make([]models.LinkEntry, 0, len(s.Links))
	for _, l := range s.Links {
		source := l.Source
		if source == "" {
			source = l.Label
		}
		out = append(out, models.LinkEntry{
			ID:         ident.NewID(),
			BusinessID: l.BusinessID,
			Label:      l.Label,
			Source:     ident.SourceToken(source),
			CreatedAt:  now.UTC(),
		})
	}
	return out
}
