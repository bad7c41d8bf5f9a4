package golive

import (
	"context"
	"fmt"
	"sync"
)

// TestClient drives components through the full mount/action lifecycle
// without HTTP or a real template engine. It wires a Manager to a
// recording renderer that produces a deterministic fragment per render,
// so tests can assert on state, render calls, and failure responses.
//
//	tc := golive.NewTestClient()
//	tc.Register("counter", NewCounter)
//
//	inst, err := tc.Mount("counter")
//	resp := inst.Call("increment")
//	if resp.State["count"] != 1 { ... }
type TestClient struct {
	Manager *Manager

	mu      sync.Mutex
	renders []RenderCall
}

// RenderCall records one renderer invocation.
type RenderCall struct {
	TemplateID string
	State      map[string]any
}

// testSession is the session id TestClient mounts under.
const testSession = "test-session"

// NewTestClient creates a test client. Extra manager options (a custom
// cache config, an error renderer) are applied on top of the recording
// renderer.
func NewTestClient(opts ...ManagerOption) *TestClient {
	tc := &TestClient{}

	renderer := RendererFunc(func(_ context.Context, templateID string, state map[string]any) (string, error) {
		tc.mu.Lock()
		tc.renders = append(tc.renders, RenderCall{TemplateID: templateID, State: state})
		tc.mu.Unlock()
		return fmt.Sprintf(`<div live:id="%v">%s</div>`, state["id"], templateID), nil
	})

	base := []ManagerOption{WithCacheConfig(&CacheConfig{
		TTL:        DefaultCacheConfig().TTL,
		MaxEntries: DefaultCacheConfig().MaxEntries,
		// No sweeper goroutine in tests.
		SweepInterval: 0,
	})}
	tc.Manager = NewManager(renderer, append(base, opts...)...)
	return tc
}

// Register adds a component constructor.
func (tc *TestClient) Register(name string, ctor Constructor) {
	tc.Manager.Register(name, ctor)
}

// Renders returns the recorded renderer invocations, oldest first.
func (tc *TestClient) Renders() []RenderCall {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	out := make([]RenderCall, len(tc.renders))
	copy(out, tc.renders)
	return out
}

// LastRender returns the most recent render call, or a zero RenderCall.
func (tc *TestClient) LastRender() RenderCall {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if len(tc.renders) == 0 {
		return RenderCall{}
	}
	return tc.renders[len(tc.renders)-1]
}

// TestInstance is a mounted component under test.
type TestInstance struct {
	// ID is the instance id generated at mount.
	ID string

	// HTML is the fragment from the most recent render.
	HTML string

	client *TestClient
	state  map[string]any
}

// Mount mounts the named component under the test session and returns a
// handle for driving actions against it.
func (tc *TestClient) Mount(name string) (*TestInstance, error) {
	html, err := tc.Manager.Mount(context.Background(), name, testSession)
	if err != nil {
		return nil, err
	}

	last := tc.LastRender()
	id, _ := last.State["id"].(string)
	return &TestInstance{
		ID:     id,
		HTML:   html,
		client: tc,
		state:  last.State,
	}, nil
}

// Call invokes an action the way the client runtime would: the state from
// the previous round-trip is echoed back, the action may be a bare name or
// call syntax, and extra params ride alongside. On success the handle's
// state and HTML advance to the response's.
func (i *TestInstance) Call(action string, params ...any) ActionResponse {
	req := ActionRequest{
		ComponentID: i.ID,
		Action:      action,
		State:       i.clientState(),
		Params:      params,
	}

	resp := i.client.Manager.HandleAction(context.Background(), req, testSession)
	if resp.Success {
		i.state = resp.State
		i.HTML = resp.HTML
	}
	return resp
}

// CallAs is Call under a different session id, for isolation tests.
func (i *TestInstance) CallAs(sessionID, action string, params ...any) ActionResponse {
	req := ActionRequest{
		ComponentID: i.ID,
		Action:      action,
		State:       i.clientState(),
		Params:      params,
	}
	return i.client.Manager.HandleAction(context.Background(), req, sessionID)
}

// State returns the state from the last successful round-trip.
func (i *TestInstance) State() map[string]any {
	return i.state
}

// clientState copies the held state the way the browser serializes it.
func (i *TestInstance) clientState() map[string]any {
	out := make(map[string]any, len(i.state))
	for k, v := range i.state {
		out[k] = v
	}
	return out
}
