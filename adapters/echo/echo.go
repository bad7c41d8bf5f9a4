// Package goliveecho provides Echo framework integration for golive.
//
// Mount the action endpoint and client runtime on an Echo instance:
//
//	e := echo.New()
//	goliveecho.Mount(e, mgr)
//
// Or on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	goliveecho.MountGroup(g, mgr)
package goliveecho

import (
	"crypto/rand"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kainovaii/golive"
	"github.com/kainovaii/golive/lib/token"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	path     string
	csrf     golive.CSRFValidator
	sessions golive.SessionResolver
	minter   *token.Minter
}

// WithPath sets the URL path prefix for the live routes.
// Defaults to "/live".
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithCSRF installs the CSRF collaborator on the action endpoint.
func WithCSRF(v golive.CSRFValidator) Option {
	return func(o *options) { o.csrf = v }
}

// WithSessions installs the session collaborator.
func WithSessions(r golive.SessionResolver) Option {
	return func(o *options) { o.sessions = r }
}

// WithTokenKey sets the signing key for anonymous session cookies. The key
// should be at least 32 bytes of cryptographically random data. If not
// provided, a random key is generated (suitable for development only - the
// anonymous sessions it signs die with the process).
func WithTokenKey(key []byte) Option {
	return func(o *options) {
		minter, err := token.NewMinter(key)
		if err != nil {
			panic(fmt.Sprintf("goliveecho: failed to create token minter: %v", err))
		}
		o.minter = minter
	}
}

// Mount registers the action endpoint and script route on an Echo instance.
//
//	e := echo.New()
//	goliveecho.Mount(e, mgr, goliveecho.WithTokenKey(key))
func Mount(e *echo.Echo, mgr *golive.Manager, opts ...Option) {
	o := buildOptions(opts)
	e.POST(o.path+"/components", echo.WrapHandler(o.actionHandler(mgr)))
	e.GET(o.path+"/livecomponents.js", echo.WrapHandler(golive.ScriptHandler()))
}

// MountGroup registers the live routes on an Echo group so components
// share the group's middleware (auth, rate limiting, logging).
func MountGroup(g *echo.Group, mgr *golive.Manager, opts ...Option) {
	o := buildOptions(opts)
	g.POST(o.path+"/components", echo.WrapHandler(o.actionHandler(mgr)))
	g.GET(o.path+"/livecomponents.js", echo.WrapHandler(golive.ScriptHandler()))
}

func buildOptions(opts []Option) *options {
	o := &options{path: "/live"}
	for _, opt := range opts {
		opt(o)
	}
	if o.minter == nil {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("goliveecho: failed to generate random key: %v", err))
		}
		minter, err := token.NewMinter(key)
		if err != nil {
			panic(fmt.Sprintf("goliveecho: failed to create token minter: %v", err))
		}
		o.minter = minter
	}
	return o
}

func (o *options) actionHandler(mgr *golive.Manager) http.Handler {
	hopts := []golive.HandlerOption{golive.WithAnonymousCookies(o.minter, 0)}
	if o.csrf != nil {
		hopts = append(hopts, golive.WithCSRF(o.csrf))
	}
	if o.sessions != nil {
		hopts = append(hopts, golive.WithSessions(o.sessions))
	}
	return golive.NewHandler(mgr, hopts...)
}
