package directory

import (
	"regexp"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks business settings before they are saved.
func Validate(b models.Business) error {
	err := validation.ValidateStruct(&b,
		validation.Field(&b.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&b.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&b.ThresholdRating, validation.Required, validation.Min(1.0), validation.Max(5.0)),
		validation.Field(&b.GoogleReviewURL, is.URL),
		validation.Field(&b.ExitRedirectURL, is.URL),
		validation.Field(&b.Theme, validation.By(validateTheme)),
		validation.Field(&b.LowRatingQuestions, validation.Each(validation.By(validateQuestion))),
		validation.Field(&b.ContactSettings, validation.By(validateContact)),
	)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

func validateQuestion(value interface{}) error {
	q, ok := value.(models.LowRatingQuestion)
	if !ok {
		return validation.NewError("validation_question_type", "must be a question")
	}
	return validation.ValidateStruct(&q,
		validation.Field(&q.ID, validation.Required),
		validation.Field(&q.Prompt, validation.Required),
		validation.Field(&q.Type, validation.In(models.QuestionSingle, models.QuestionMultiple)),
		validation.Field(&q.Options, validation.Required),
	)
}

func validateTheme(value interface{}) error {
	t, _ := value.(models.Theme)
	return validation.ValidateStruct(&t,
		validation.Field(&t.AccentColor, is.HexColor),
		validation.Field(&t.CustomerBackground, is.HexColor),
		validation.Field(&t.DashboardBackground, is.HexColor),
		validation.Field(&t.CardBackground, is.HexColor),
	)
}

// validateContact requires a destination whenever alerts are enabled.
func validateContact(value interface{}) error {
	c, _ := value.(models.ContactSettings)
	return validation.ValidateStruct(&c,
		validation.Field(&c.NotifyEmail, is.EmailFormat,
			validation.When(c.Enabled && c.NotifyPhone == "", validation.Required.Error("is required when alerts are enabled"))),
		validation.Field(&c.NotifyPhone, is.E164),
	)
}
