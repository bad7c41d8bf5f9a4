package golive

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders using the request's context.
// Use this for the host pages that embed live components:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    golive.Render(w, r, indexPage())
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// sessionKey carries the session id through a render context.
type sessionKey struct{}

// WithSession returns a context carrying the session id for inline mounts.
// Host middleware typically installs it per request:
//
//	ctx := golive.WithSession(r.Context(), sessionID)
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the session id installed by WithSession, or
// AnonymousSession when none is.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		return id
	}
	return AnonymousSession
}

// MountComponent returns a templ component that mounts the named live
// component inline where it is placed in a page:
//
//	@golive.MountComponent(mgr, "counter")
//
// The mount uses the session id carried by the render context (see
// WithSession). A mount failure renders an HTML comment instead of
// breaking the whole page; the error is also returned through templ's
// render error path for unregistered names.
func MountComponent(m *Manager, name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := m.Mount(ctx, name, SessionFromContext(ctx))
		if err != nil {
			if IsComponentNotFound(err) {
				return err
			}
			_, werr := fmt.Fprintf(w, "<!-- livecomponent %q failed to mount -->", name)
			return werr
		}
		_, err = io.WriteString(w, html)
		return err
	})
}

// Scripts returns a templ component emitting the client runtime script tag
// for the default mount path:
//
//	@golive.Scripts()
func Scripts() templ.Component {
	return ScriptTag("/live/livecomponents.js")
}

// ScriptTag is Scripts with a custom script URL, for hosts that serve the
// runtime from their own asset pipeline.
func ScriptTag(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<script src="%s"></script>`, templ.EscapeString(src))
		return err
	})
}
