package service

import (
	"fmt"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(name, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %q not found", resourceType, name)}
}

func NewErrModuleNotFound(name string) *ErrResourceNotFound {
	return NewErrResourceNotFound(name, "module")
}

type ErrResourceExists struct {
	error
}

func NewErrModuleExists(name string) *ErrResourceExists {
	return &ErrResourceExists{fmt.Errorf("module %q already exists", name)}
}

// ErrInvalidRequest is returned for input the calculator or the store rejects.
type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(err error) *ErrInvalidRequest {
	return &ErrInvalidRequest{err}
}

func NewErrInvalidRequestf(format string, args ...any) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf(format, args...)}
}

// ErrSetupRequired is returned when an operation needs modules but none are configured.
type ErrSetupRequired struct {
	error
}

func NewErrSetupRequired() *ErrSetupRequired {
	return &ErrSetupRequired{fmt.Errorf("no modules are configured; complete the setup first")}
}
