package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/tankops/bath-planner/internal/correction"
)

var (
	moduleNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._+-]*$`)
	unitRegex       = regexp.MustCompile(`^[a-zA-Zµ%]+(/[a-zA-Z]+)?$`)
)

func moduleNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return moduleNameRegex.MatchString(val)
}

func moduleTypeValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return correction.ModuleType(val).Valid()
}

// chemicalUnitValidator accepts any concentration-like unit. Units whose amount is unknown are
// treated as solids by the calculator, so only the shape is checked here.
func chemicalUnitValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return unitRegex.MatchString(val)
}
