package funnel

import (
	"fmt"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MaxPhotos is the number of photos a submission may carry.
const MaxPhotos = 3

// ValidateRating accepts whole stars from 1 to 5.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.NewInvalidRatingError(rating)
	}
	return nil
}

// ValidateSubmission checks the feedback form against the business's
// questions: required questions need an answer, single-choice questions take
// one value and every value must be a listed option.
func ValidateSubmission(b models.Business, s Submission) error {
	if err := ValidateRating(s.Rating); err != nil {
		return err
	}

	err := validation.ValidateStruct(&s,
		validation.Field(&s.Comment, validation.Required, validation.Length(1, 5000)),
		validation.Field(&s.Email, is.EmailFormat),
		validation.Field(&s.Photos, validation.Length(0, MaxPhotos)),
		validation.Field(&s.Answers, validation.By(answersRule(b.LowRatingQuestions))),
	)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

func answersRule(questions []models.LowRatingQuestion) validation.RuleFunc {
	return func(value interface{}) error {
		answers, _ := value.(map[string]models.Answer)
		known := make(map[string]models.LowRatingQuestion, len(questions))
		for _, q := range questions {
			known[q.ID] = q

			a, answered := answers[q.ID]
			if q.Required && (!answered || len(a.Values) == 0) {
				return fmt.Errorf("question %s is required", q.ID)
			}
			if answered && q.Type == models.QuestionSingle && (a.Multi || len(a.Values) > 1) {
				return fmt.Errorf("question %s takes a single answer", q.ID)
			}
			for _, v := range a.Values {
				if !contains(q.Options, v) {
					return fmt.Errorf("question %s has no option %q", q.ID, v)
				}
			}
		}
		for id := range answers {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("unknown question %s", id)
			}
		}
		return nil
	}
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
