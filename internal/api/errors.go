package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError represents a resource not found error with contextual information.
// It is returned when a component, service, group, command or node referenced
// by name cannot be resolved.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "component", "service", "group")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewNotFoundErrorWithMessage creates a new NotFoundError with a custom message.
func NewNotFoundErrorWithMessage(resourceType, resourceName, message string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
		Message:      message,
	}
}

// Specific NotFoundError constructors for each resource type.
var (
	NewComponentNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("component", name)
	}

	// NewServiceNotFoundError reports a service missing from its component.
	NewServiceNotFoundError = func(component, name string) *NotFoundError {
		return NewNotFoundErrorWithMessage("service", name,
			fmt.Sprintf("service %s not found in component %s", name, component))
	}

	// NewGroupNotFoundError reports a group missing from its component.
	NewGroupNotFoundError = func(component, name string) *NotFoundError {
		return NewNotFoundErrorWithMessage("group", name,
			fmt.Sprintf("group %s not found in component %s", name, component))
	}

	NewCommandNotFoundError = func(component, name string) *NotFoundError {
		return NewNotFoundErrorWithMessage("command", name,
			fmt.Sprintf("command %s not found in component %s", name, component))
	}

	NewNodeNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("node", name)
	}

	NewContextNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("context", name)
	}

	NewJobNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("job", id)
	}
)

// ValidationError reports malformed declarative model input: a missing
// required field, a value of the wrong type or a duplicate name.
type ValidationError struct {
	// Resource is the kind of object being built ("component", "group", ...)
	Resource string

	// Field is the offending attribute
	Field string

	// Reason describes what is wrong with the field
	Reason string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Resource, e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for resource.field.
func NewValidationError(resource, field, reason string) *ValidationError {
	return &ValidationError{Resource: resource, Field: field, Reason: reason}
}

// IsValidation checks if an error is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// ValidationErrors aggregates every problem found while building one object.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// As lets errors.As find the first contained ValidationError.
func (v ValidationErrors) As(target interface{}) bool {
	if len(v) == 0 {
		return false
	}
	if t, ok := target.(**ValidationError); ok {
		*t = v[0]
		return true
	}
	return false
}

// Err returns nil for an empty collection.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// InvalidDynamicServiceError is returned when a dotted "component.service"
// identifier cannot be parsed. Both fragments are kept, either may be empty.
type InvalidDynamicServiceError struct {
	Input     string
	Component string
	Service   string
}

func (e *InvalidDynamicServiceError) Error() string {
	return fmt.Sprintf("invalid dynamic service %q: expected \"<component>.<service>\" (component=%q, service=%q)",
		e.Input, e.Component, e.Service)
}

// IsInvalidDynamicService checks if an error is or wraps an InvalidDynamicServiceError.
func IsInvalidDynamicService(err error) bool {
	var target *InvalidDynamicServiceError
	return errors.As(err, &target)
}
