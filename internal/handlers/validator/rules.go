package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewModuleValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("module_name", moduleNameValidator),
		},
		{
			Rule: registerFn("module_type", moduleTypeValidator),
		},
		{
			Rule: registerFn("chemical_unit", chemicalUnitValidator),
		},
	}
}
