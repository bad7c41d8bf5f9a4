package golive

// ActionRequest is the wire-level request the client runtime POSTs to the
// single action endpoint.
type ActionRequest struct {
	// ComponentID is the instance id, suffixing the cache key.
	ComponentID string `json:"componentId"`

	// Action is a name or call-syntax string ("vote('Functional')").
	// Empty for bare field updates is not legal; field updates use the
	// updateField_<name> pseudo-action.
	Action string `json:"action"`

	// State is the client-visible field values, hydrated onto the
	// instance before the action runs.
	State map[string]any `json:"state"`

	// Params are already-decoded JSON scalars, in order. Ignored when the
	// action string itself carries call-syntax parameters.
	Params []any `json:"params"`
}

// ActionResponse is the wire-level reply.
type ActionResponse struct {
	Success bool `json:"success"`

	// HTML is the rendered fragment: present on success, and on failure
	// when an error page could be produced.
	HTML string `json:"html,omitempty"`

	// State echoes the captured post-action state, and may carry a nested
	// "errors" entry when validation ran.
	State map[string]any `json:"state,omitempty"`

	// Error is the failure message; empty on success.
	Error string `json:"error,omitempty"`
}

// successResponse builds the reply for a completed action.
func successResponse(html string, state map[string]any) ActionResponse {
	return ActionResponse{Success: true, HTML: html, State: state}
}

// failureResponse builds a failure reply carrying best-effort error HTML.
func failureResponse(message, html string) ActionResponse {
	return ActionResponse{Success: false, Error: message, HTML: html}
}
