package correction

import "fmt"

// ErrInvalidInput is returned for measurements or module definitions that cannot be calculated on.
// Calculation problems never produce an error: they yield a best effort result instead.
type ErrInvalidInput struct {
	error
}

func NewErrInvalidInput(format string, args ...any) *ErrInvalidInput {
	return &ErrInvalidInput{fmt.Errorf(format, args...)}
}

type ErrUnsupportedModuleType struct {
	error
}

func NewErrUnsupportedModuleType(t ModuleType) *ErrUnsupportedModuleType {
	return &ErrUnsupportedModuleType{fmt.Errorf("no corrector registered for module type %q", t)}
}
