package keywords

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/seo-optimizer/forecaster/forecast"
)

var validate = validator.New()

// FieldError describes one invalid keyword field
type FieldError struct {
	Index   int    `json:"index"`
	Keyword string `json:"keyword"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field in a keyword set
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("keyword %d: %s", f.Index, f.Message))
	}
	return "invalid keywords: " + strings.Join(msgs, "; ")
}

// Validate rejects the entire set if it is empty or any keyword breaks a field constraint
func Validate(set []forecast.Keyword) error {
	if len(set) == 0 {
		return forecast.ErrNoKeywords
	}

	var out ValidationError
	for i, k := range set {
		err := validate.Struct(k)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate keyword %d: %w", i, err)
		}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{
				Index:   i,
				Keyword: k.Text,
				Field:   fe.Field(),
				Message: message(fe),
			})
		}
	}

	if len(out.Fields) > 0 {
		return &out
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "Text":
		return "Keyword cannot be empty."
	case "SearchVolume":
		return "Search Volume must be positive."
	case "Position", "TargetPosition":
		return "Positions must be between 1 and 100."
	case "Difficulty":
		return "Difficulty must be between 1 and 100."
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
