package normalize

import (
	"reviewgate/internal/ident"
	"reviewgate/internal/models"
)

// NormalizeBusiness returns the canonical form of b. It is idempotent.
//   - theme is merged onto models.DefaultTheme, non-empty caller fields win
//   - slug is re-derived from slug, falling back to name
//   - a zero threshold becomes models.DefaultThresholdRating
//   - lowRatingQuestions is never nil
func NormalizeBusiness(b models.Business) models.Business {
	out := canonical(b)
	out.Theme = b.Theme.Merge(models.DefaultTheme())
	if out.ThresholdRating == 0 {
		out.ThresholdRating = models.DefaultThresholdRating
	}
	return out
}

// canonical applies the rules shared by typed and stored businesses.
func canonical(b models.Business) models.Business {
	out := b
	slug := b.Slug
	if slug == "" {
		slug = b.Name
	}
	out.Slug = ident.Slug(slug)

	out.LowRatingQuestions = make([]models.LowRatingQuestion, 0, len(b.LowRatingQuestions))
	for _, q := range b.LowRatingQuestions {
		if q.Type != models.QuestionMultiple {
			q.Type = models.QuestionSingle
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		out.LowRatingQuestions = append(out.LowRatingQuestions, q)
	}
	return out
}

// Business decodes a loosely-shaped stored business. Unlike NormalizeBusiness
// it sees which keys are present: any finite stored threshold is kept, and a
// theme key stored as "" overrides the default.
func Business(raw map[string]interface{}) models.Business {
	b := models.Business{
		ID:              str(raw["id"]),
		Name:            str(raw["name"]),
		Slug:            str(raw["slug"]),
		Timezone:        str(raw["timezone"]),
		GoogleReviewURL: str(raw["googleReviewUrl"]),
		ExitRedirectURL: str(raw["exitRedirectUrl"]),
		CreatedAt:       timestamp(raw["createdAt"]),
	}

	b.ThresholdRating = models.DefaultThresholdRating
	if threshold, ok := finite(raw["thresholdRating"]); ok {
		b.ThresholdRating = threshold
	}

	b.Theme = models.DefaultTheme()
	if theme := object(raw["theme"]); theme != nil {
		overlay(&b.Theme.AccentColor, theme["accentColor"])
		overlay(&b.Theme.CustomerBackground, theme["customerBackground"])
		overlay(&b.Theme.DashboardBackground, theme["dashboardBackground"])
		overlay(&b.Theme.CardBackground, theme["cardBackground"])
		overlay(&b.Theme.LogoURL, theme["logoUrl"])
	}

	if questions, ok := raw["lowRatingQuestions"].([]interface{}); ok {
		b.LowRatingQuestions = make([]models.LowRatingQuestion, 0, len(questions))
		for _, item := range questions {
			q := object(item)
			if q == nil {
				continue
			}
			b.LowRatingQuestions = append(b.LowRatingQuestions, models.LowRatingQuestion{
				ID:       str(q["id"]),
				Prompt:   str(q["prompt"]),
				Type:     models.QuestionType(str(q["type"])),
				Options:  stringList(q["options"]),
				Required: truthy(q["required"]),
			})
		}
	}

	if contact := object(raw["contactSettings"]); contact != nil {
		b.ContactSettings = models.ContactSettings{
			NotifyEmail: str(contact["notifyEmail"]),
			NotifyPhone: str(contact["notifyPhone"]),
			Enabled:     truthy(contact["enabled"]),
		}
	}

	return canonical(b)
}

func overlay(dst *string, v interface{}) {
	if s, ok := v.(string); ok {
		*dst = s
	}
}
