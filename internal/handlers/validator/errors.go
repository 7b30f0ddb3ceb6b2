package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrInvalidForm struct {
	error
}

func NewErrInvalidForm(format string, args ...any) *ErrInvalidForm {
	return &ErrInvalidForm{fmt.Errorf(format, args...)}
}

// describe turns validator errors into a message an operator can act on.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), rootNamespace(fe))
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "module_name":
			msgs = append(msgs, fmt.Sprintf("%s contains invalid characters", field))
		case "module_type":
			msgs = append(msgs, fmt.Sprintf("%s: unknown module type %q", field, fe.Value()))
		case "chemical_unit":
			msgs = append(msgs, fmt.Sprintf("%s: invalid unit %q", field, fe.Value()))
		case "unique":
			msgs = append(msgs, fmt.Sprintf("%s must have unique names", field))
		case "gte", "gt", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
		}
	}
	return NewErrInvalidForm("%s", strings.Join(msgs, "; "))
}

func rootNamespace(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
