package golive

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// expiredMessage is the soft-failure text shown when an action targets an
// instance the cache no longer holds. The client prompts a page refresh.
const expiredMessage = "Component expired or not found. Please refresh the page."

// Manager orchestrates the component lifecycle: registry, instance cache,
// state codec and dispatcher. One Manager serves the whole process.
type Manager struct {
	registry *Registry
	cache    *InstanceCache
	renderer Renderer
	errors   ErrorRenderer
	logger   *slog.Logger
	metrics  *Metrics

	cacheConfig *CacheConfig
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithErrorRenderer sets the collaborator that renders best-effort error
// fragments for failed actions. Without one, failure responses carry no
// HTML and the client keeps the old fragment with a transient banner.
func WithErrorRenderer(er ErrorRenderer) ManagerOption {
	return func(m *Manager) { m.errors = er }
}

// WithCacheConfig overrides the instance cache configuration.
func WithCacheConfig(config *CacheConfig) ManagerOption {
	return func(m *Manager) { m.cacheConfig = config }
}

// WithMetrics attaches Prometheus instrumentation. See NewMetrics.
func WithMetrics(metrics *Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager creates a Manager rendering through the given collaborator.
func NewManager(renderer Renderer, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: NewRegistry(),
		renderer: renderer,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "live_manager")
	m.cache = NewInstanceCache(m.cacheConfig, m.logger)
	if m.metrics != nil {
		m.metrics.trackCache(m.cache)
	}
	return m
}

// Register adds a component constructor under name. Idempotent; the last
// registration for a name wins.
func (m *Manager) Register(name string, ctor Constructor) {
	m.registry.Register(name, ctor)
}

// Mount constructs a new instance of the named component, stores it in the
// cache under sessionID, and returns its initial render.
//
// The instance id generated at construction is stable for the instance's
// cache lifetime; templates emit it as live:id from the "id" state entry.
// Mounting an unregistered name fails with ErrComponentNotFound - an
// HTTP-layer concern to translate.
func (m *Manager) Mount(ctx context.Context, componentName, sessionID string) (string, error) {
	ctor, ok := m.registry.Lookup(componentName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrComponentNotFound, componentName)
	}

	instance := ctor()
	key := sessionID + ":" + instance.InstanceID()
	m.cache.Put(key, instance)

	state := CaptureState(instance)
	state["id"] = instance.InstanceID()

	html, err := m.renderer.Render(ctx, instance.TemplateID(), state)
	if err != nil {
		return "", fmt.Errorf("golive: mount %q: %w", componentName, err)
	}

	m.metrics.recordMount(componentName)
	m.logger.Debug("component mounted",
		"name", componentName,
		"instance_id", instance.InstanceID(),
		"active_instances", m.cache.Len())

	return html, nil
}

// HandleAction executes one client action against a cached instance.
//
// The instance's exclusive execution lock is held for the whole
// hydrate -> dispatch -> capture -> render sequence, so concurrent calls
// on the same instance serialize while distinct instances never contend.
// Every failure is recovered here into a failure ActionResponse; nothing
// escapes the boundary.
func (m *Manager) HandleAction(ctx context.Context, req ActionRequest, sessionID string) ActionResponse {
	key := sessionID + ":" + req.ComponentID

	comp, release, ok := m.cache.Checkout(key)
	if !ok {
		m.metrics.recordAction("", "expired", 0)
		m.logger.Debug("action on missing instance",
			"instance_id", req.ComponentID)
		return failureResponse(expiredMessage, "")
	}

	start := time.Now()
	resp, err := m.runAction(ctx, comp, release, req)
	if err != nil {
		m.metrics.recordAction(comp.ComponentName(), "error", time.Since(start))
		m.logger.Error("action failed",
			"name", comp.ComponentName(),
			"instance_id", req.ComponentID,
			"action", req.Action,
			"error", err)
		return failureResponse(err.Error(), m.renderErrorFragment(ctx, err))
	}

	m.metrics.recordAction(comp.ComponentName(), "success", time.Since(start))
	return resp
}

// runAction performs the locked action sequence. The release func from the
// cache checkout is held until the render completes so the captured state
// and fragment are consistent.
func (m *Manager) runAction(ctx context.Context, comp Component, release func(), req ActionRequest) (resp ActionResponse, err error) {
	defer release()
	defer func() {
		if r := recover(); r != nil {
			err = &ActionError{
				Component: comp.ComponentName(),
				Action:    req.Action,
				Err:       fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if err := Hydrate(comp, req.State); err != nil {
		return ActionResponse{}, err
	}

	parsed := ParseAction(req.Action)
	params := req.Params
	if len(parsed.Params) > 0 {
		params = parsed.Params
	}

	if err := Dispatch(ctx, comp, parsed.Name, params); err != nil {
		return ActionResponse{}, err
	}

	state := CaptureState(comp)
	state["id"] = comp.InstanceID()

	html, err := m.renderer.Render(ctx, comp.TemplateID(), state)
	if err != nil {
		return ActionResponse{}, &ActionError{Component: comp.ComponentName(), Action: req.Action, Err: err}
	}

	return successResponse(html, state), nil
}

// renderErrorFragment asks the external error renderer for best-effort
// HTML. Empty means the client keeps the old fragment and shows a banner.
func (m *Manager) renderErrorFragment(ctx context.Context, err error) string {
	if m.errors == nil {
		return ""
	}
	return m.errors.RenderError(ctx, err)
}

// ClearSession removes every cached instance belonging to the session.
// Called on logout or session invalidation; a no-op when nothing matches.
func (m *Manager) ClearSession(sessionID string) {
	if removed := m.cache.RemovePrefix(sessionID + ":"); removed > 0 {
		m.logger.Info("session instances cleared",
			"removed", removed,
			"active_instances", m.cache.Len())
	}
}

// ActiveInstanceCount returns the cache's estimated live size. Eviction is
// lazy, so this is an estimate, not an exact count.
func (m *Manager) ActiveInstanceCount() int {
	return m.cache.Len()
}

// Close stops the cache's background sweeper.
func (m *Manager) Close() {
	m.cache.Close()
}
