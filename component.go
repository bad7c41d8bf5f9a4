package golive

import (
	"fmt"

	"github.com/google/uuid"
)

// Component is the interface all live components satisfy by embedding *Base.
//
// A component is a unit of server-held UI state plus action handlers. Its
// state fields are declared with `live:"name"` struct tags; its actions are
// registered against the embedded Base in the component's constructor.
type Component interface {
	// InstanceID returns the stable identifier generated at construction.
	// It suffixes the cache key for the instance's whole lifetime.
	InstanceID() string

	// ComponentName returns the component's registered name.
	ComponentName() string

	// TemplateID names the template the external renderer uses for this
	// component.
	TemplateID() string

	// actionTable is implemented by *Base; embedding it is the only way
	// to satisfy Component.
	actionTable() map[string]*actionDef
}

// Constructor allocates a fresh component instance. Registered with a
// Manager (or Registry) under a component name; invoked once per mount.
type Constructor func() Component

// Base is embedded by user components to gain an instance identity and an
// action table.
//
// Example:
//
//	type Counter struct {
//	    *golive.Base
//	    Count int `live:"count"`
//	}
//
//	func NewCounter() golive.Component {
//	    c := &Counter{Base: golive.NewBase("counter")}
//	    c.Action("increment", c.Increment)
//	    return c
//	}
type Base struct {
	id       string
	name     string
	template string
	actions  map[string]*actionDef
}

// NewBase creates the embeddable component base. The instance id is
// generated here and never changes. The template id defaults to
// "components/<name>"; override it with UseTemplate.
func NewBase(name string) *Base {
	return &Base{
		id:       uuid.NewString(),
		name:     name,
		template: "components/" + name,
		actions:  make(map[string]*actionDef),
	}
}

// UseTemplate overrides the default template id. Returns the base for
// constructor chaining:
//
//	Base: golive.NewBase("survey").UseTemplate("widgets/poll")
func (b *Base) UseTemplate(id string) *Base {
	b.template = id
	return b
}

// InstanceID returns the instance identifier.
func (b *Base) InstanceID() string { return b.id }

// ComponentName returns the component name given to NewBase.
func (b *Base) ComponentName() string { return b.name }

// TemplateID returns the template id for the renderer.
func (b *Base) TemplateID() string { return b.template }

// Action registers a named action handler.
//
// The handler is any func. Its signature is analyzed once, here, and the
// resulting invoker coerces client-supplied parameters positionally at
// dispatch time. An optional leading context.Context parameter and an
// optional trailing error return are recognized:
//
//	c.Action("increment", c.Increment)            // func()
//	c.Action("vote", c.Vote)                      // func(string) error
//	c.Action("load", c.Load)                      // func(ctx context.Context)
//
// Registering a non-func, or re-registering a name, panics: both are
// programmer errors caught at construction, not at request time.
func (b *Base) Action(name string, handler any) {
	if _, exists := b.actions[name]; exists {
		panic(fmt.Sprintf("golive: action %q registered twice on component %q", name, b.name))
	}
	def, err := newActionDef(name, handler)
	if err != nil {
		panic(fmt.Sprintf("golive: component %q: %v", b.name, err))
	}
	b.actions[name] = def
}

func (b *Base) actionTable() map[string]*actionDef { return b.actions }
