// Package golive provides a server-driven reactive component system for Go
// web applications: the server holds live UI state, a thin browser runtime
// sends discrete user actions to a single endpoint, and the server answers
// with a re-rendered HTML fragment plus the authoritative post-action state.
//
// # Core Concepts
//
// Components are plain structs that embed *golive.Base and tag their state
// fields with `live:"name"`. State fields are what the system captures after
// every action and hydrates before the next one - the client is the source
// of truth for state between round-trips.
//
//	type Counter struct {
//	    *golive.Base
//	    Count int `live:"count"`
//	}
//
// Actions are registered explicitly in the component's constructor. There is
// no runtime method scanning - the action table is built once, when the
// constructor runs:
//
//	func NewCounter() golive.Component {
//	    c := &Counter{Base: golive.NewBase("counter")}
//	    c.Action("increment", c.Increment)
//	    c.Action("add", c.Add)
//	    return c
//	}
//
//	func (c *Counter) Increment() { c.Count++ }
//	func (c *Counter) Add(n int)  { c.Count += n }
//
// Handler parameters are coerced positionally from the decoded JSON values
// the client sends; an optional leading context.Context and an optional
// trailing error return are recognized.
//
// # Lifecycle
//
// A component is mounted into a page once, which allocates an instance,
// stores it in the instance cache under (session, instance id), and returns
// the initial render. Every subsequent action runs the sequence
// hydrate -> dispatch -> capture -> render under the instance's exclusive
// lock, so at most one action executes per instance at a time while
// unrelated instances never contend.
//
// Instances expire after an hour without access (configurable) and the
// cache holds at most 10,000 instances before shrinking by oldest access.
// An action against an expired instance is a soft failure: the client is
// told to refresh the page rather than shown an error fragment.
//
// # Wiring
//
// The Manager orchestrates the lifecycle. Rendering, CSRF validation and
// session identity are collaborators supplied by the host application:
//
//	mgr := golive.NewManager(renderer, golive.WithErrorRenderer(pages))
//	mgr.Register("counter", NewCounter)
//
//	mux.Handle("/live/components", golive.NewHandler(mgr, golive.WithCSRF(csrf)))
//	mux.Handle("/live/livecomponents.js", golive.ScriptHandler())
//
// Templates mount components inline with the templ helper:
//
//	@golive.MountComponent(mgr, "counter")
//
// # Client Runtime
//
// The embedded JavaScript runtime discovers components by their live:id
// attribute and binds the authoring surface - live:click, live:model,
// live:submit, live:poll, live:init - to server actions. Successful actions
// replace the component's DOM node wholesale; validation errors found under
// state.errors decorate the matching inputs; failures show a transient
// banner. See ScriptHandler and the attribute builders for the full surface.
//
// # Design Rationale
//
// The system favors explicitness over magic:
//   - Explicit registration (no init() side effects, no scanning)
//   - Explicit action tables (no reflective method search per request)
//   - Explicit collaborators (rendering and auth stay outside the core)
//   - Whole-fragment replacement (no virtual-DOM diffing)
package golive
