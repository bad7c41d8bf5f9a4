package golive

import (
	"errors"
	"fmt"
)

// Sentinel errors for component operations.
var (
	// ErrComponentNotFound is returned by Mount when no constructor is
	// registered under the requested name.
	ErrComponentNotFound = errors.New("golive: component not found")

	// ErrActionNotFound is returned by dispatch when an action name does
	// not resolve to a registered handler on the instance.
	ErrActionNotFound = errors.New("golive: action not found")

	// ErrInstanceExpired marks the soft-failure path: the cached instance
	// is gone (expired, evicted, or never mounted). It is reported to the
	// client as a refresh prompt, never rendered as an error page.
	ErrInstanceExpired = errors.New("golive: component expired or not found")

	// ErrFieldNotFound is returned when hydration or a field update names
	// a state field the component does not declare.
	ErrFieldNotFound = errors.New("golive: state field not found")
)

// IsComponentNotFound checks if err means an unregistered component name.
func IsComponentNotFound(err error) bool {
	return errors.Is(err, ErrComponentNotFound)
}

// IsActionNotFound checks if err means an unresolvable action.
func IsActionNotFound(err error) bool {
	return errors.Is(err, ErrActionNotFound)
}

// CoercionError reports a parameter that could not be converted to the
// type a handler declares. Position is the zero-based parameter index as
// supplied by the client, before any context.Context offset.
type CoercionError struct {
	Action   string
	Position int
	Value    any
	Target   string
}

// Error returns the error message.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("golive: action %q: cannot coerce param %d (%v) to %s",
		e.Action, e.Position, e.Value, e.Target)
}

// IsCoercionError checks if err is a parameter coercion failure.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}

// ActionError wraps a failure raised while an action executed, carrying
// the component and action names for logging and error pages.
type ActionError struct {
	Component string
	Action    string
	Err       error
}

// Error returns the error message with component context.
func (e *ActionError) Error() string {
	return fmt.Sprintf("golive: component %q action %q: %v", e.Component, e.Action, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ActionError) Unwrap() error {
	return e.Err
}
