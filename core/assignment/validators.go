package assignment

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/studysphere/backend/core"
)

var (
	difficultyTag  = "difficulty"
	difficultyText = "difficulty must be one of: " + strings.Join(Difficulties, ", ")
)

// InitValidators registers the Assignment validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(difficultyTag, difficultyValidation)
	core.RegisterCustomTranslation(validate, translator, difficultyTag, difficultyText)
}

// difficultyValidation checks that the provided difficulty is one of Difficulties
func difficultyValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, d := range Difficulties {
		if val == d {
			return true
		}
	}
	return false
}
