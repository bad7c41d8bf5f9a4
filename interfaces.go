package golive

import (
	"context"
	"net/http"
)

// Renderer turns a component's state into an HTML fragment. It is an
// external collaborator - the core treats rendering as a pure function of
// (templateID, state) and never inspects the produced HTML.
//
// The state map always carries the instance id under "id" so templates can
// emit the live:id attribute on the fragment's root node.
type Renderer interface {
	Render(ctx context.Context, templateID string, state map[string]any) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, templateID string, state map[string]any) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, templateID string, state map[string]any) (string, error) {
	return f(ctx, templateID, state)
}

// ErrorRenderer produces a best-effort HTML error fragment when an action
// fails, so the client can still replace the component's DOM node instead
// of losing it. Implementations should never panic; an empty return means
// no visual fallback was possible.
type ErrorRenderer interface {
	RenderError(ctx context.Context, err error) string
}

// ErrorRendererFunc adapts a function to the ErrorRenderer interface.
type ErrorRendererFunc func(ctx context.Context, err error) string

// RenderError calls f.
func (f ErrorRendererFunc) RenderError(ctx context.Context, err error) string {
	return f(ctx, err)
}

// CSRFValidator validates the CSRF token header on an incoming action
// request before the core is invoked. External collaborator; token
// issuance lives with the host application.
type CSRFValidator interface {
	Validate(r *http.Request) bool
}

// CSRFValidatorFunc adapts a function to the CSRFValidator interface.
type CSRFValidatorFunc func(r *http.Request) bool

// Validate calls f.
func (f CSRFValidatorFunc) Validate(r *http.Request) bool { return f(r) }

// SessionResolver supplies the session identifier that prefixes cache
// keys. ok reports whether a session was present; absent sessions fall
// back to an anonymous identity (see NewHandler).
type SessionResolver interface {
	SessionID(r *http.Request) (id string, ok bool)
}

// SessionResolverFunc adapts a function to the SessionResolver interface.
type SessionResolverFunc func(r *http.Request) (string, bool)

// SessionID calls f.
func (f SessionResolverFunc) SessionID(r *http.Request) (string, bool) { return f(r) }

// ValidationErrors maps a field name to the first validation message
// recorded for it. Produced by the external validation collaborator;
// components surface it to the client by assigning it to a
// `live:"errors"` state field.
type ValidationErrors map[string]string

// Validator is the external request-validation collaborator: it checks
// data against rules and returns the validated values plus the first error
// per field.
type Validator interface {
	Validate(data map[string]any, rules map[string]string) (map[string]any, ValidationErrors)
}
