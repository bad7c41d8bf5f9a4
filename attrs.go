package golive

import (
	"strconv"

	"github.com/a-h/templ"
)

// LiveAttrs is a fluent builder for the live:* authoring surface, producing
// templ.Attributes for component templates:
//
//	<button { golive.Click("increment()").Attrs()... }>+1</button>
//	<input { golive.Model("query").Debounce(500).Attrs()... }/>
//	<div { golive.Poll("__refresh", "5s").Attrs()... }>...</div>
//
// The attribute values are plain strings interpreted by the client runtime;
// the builder only spares templates the raw attribute names.
type LiveAttrs struct {
	attrs templ.Attributes
}

// Click starts a builder for a live:click action. The action string is
// call syntax: "vote('Functional')" or a bare name for zero parameters.
func Click(action string) *LiveAttrs {
	return newAttrs("live:click", action)
}

// Model starts a builder for a live:model two-way binding on a state field.
func Model(field string) *LiveAttrs {
	return newAttrs("live:model", field)
}

// Submit starts a builder for a live:submit form binding.
func Submit(action string) *LiveAttrs {
	return newAttrs("live:submit", action)
}

// Poll starts a builder for a repeating live:poll action. interval is raw
// milliseconds ("500") or suffixed seconds/minutes ("5s", "2m"); empty
// means the runtime default. Use "__refresh" as the action to re-render
// without mutating state.
func Poll(action, interval string) *LiveAttrs {
	name := "live:poll"
	if interval != "" {
		name += "." + interval
	}
	return newAttrs(name, action)
}

// Init starts a builder for a live:init action fired shortly after mount.
func Init(action string) *LiveAttrs {
	return newAttrs("live:init", action)
}

func newAttrs(name, value string) *LiveAttrs {
	return &LiveAttrs{attrs: templ.Attributes{name: value}}
}

// Confirm gates the action behind a native confirmation dialog; cancel
// aborts the call.
func (a *LiveAttrs) Confirm(message string) *LiveAttrs {
	a.attrs["live:confirm"] = message
	return a
}

// Debounce overrides the model update debounce in milliseconds.
func (a *LiveAttrs) Debounce(ms int) *LiveAttrs {
	a.attrs["live:debounce"] = strconv.Itoa(ms)
	return a
}

// Blur switches a model binding to update on blur only.
func (a *LiveAttrs) Blur() *LiveAttrs {
	a.attrs["live:blur"] = ""
	return a
}

// Lazy switches a model binding to update on Enter only.
func (a *LiveAttrs) Lazy() *LiveAttrs {
	a.attrs["live:lazy"] = ""
	return a
}

// LoadingClass adds the class to the element while its component loads.
func (a *LiveAttrs) LoadingClass(class string) *LiveAttrs {
	a.attrs["live:loading.class"] = class
	return a
}

// Attrs returns the accumulated templ attributes.
func (a *LiveAttrs) Attrs() templ.Attributes {
	return a.attrs
}
