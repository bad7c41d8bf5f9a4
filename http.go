package golive

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kainovaii/golive/lib/token"
)

// AnonymousSession is the last-resort session key for callers with no
// session and no working cookie jar. Instances cached under it are shared
// by every such caller; the anonymous-cookie path below exists precisely
// to keep real browsers out of this bucket.
const AnonymousSession = "anonymous"

// SessionCookie is the name of the anonymous-session cookie.
const SessionCookie = "golive_session"

// HandlerOption configures NewHandler.
type HandlerOption func(*handler)

// WithCSRF installs the CSRF collaborator. Requests failing validation
// are rejected with 403 before the core is invoked.
func WithCSRF(v CSRFValidator) HandlerOption {
	return func(h *handler) { h.csrf = v }
}

// WithSessions installs the session collaborator. When it reports a
// session, that id prefixes cache keys; otherwise the anonymous-cookie
// fallback applies.
func WithSessions(r SessionResolver) HandlerOption {
	return func(h *handler) { h.sessions = r }
}

// WithAnonymousCookies enables per-browser anonymous sessions: callers
// without a real session get a signed cookie carrying a generated session
// id, so unauthenticated browsers stop sharing one cache namespace.
// maxAge of zero keeps tokens valid indefinitely.
func WithAnonymousCookies(minter *token.Minter, maxAge time.Duration) HandlerOption {
	return func(h *handler) {
		h.minter = minter
		h.tokenMaxAge = maxAge
	}
}

// handler is the thin transport shim around Manager.HandleAction. The
// core stays transport-free; this only speaks the JSON wire protocol.
type handler struct {
	manager     *Manager
	csrf        CSRFValidator
	sessions    SessionResolver
	minter      *token.Minter
	tokenMaxAge time.Duration
}

// NewHandler returns the http.Handler for the single action endpoint.
//
//	mux.Handle("/live/components", golive.NewHandler(mgr,
//	    golive.WithCSRF(csrf),
//	    golive.WithSessions(sessions),
//	    golive.WithAnonymousCookies(minter, 0)))
func NewHandler(manager *Manager, opts ...HandlerOption) http.Handler {
	h := &handler{manager: manager}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.csrf != nil && !h.csrf.Validate(r) {
		http.Error(w, "Forbidden: invalid CSRF token", http.StatusForbidden)
		return
	}

	sessionID := h.resolveSession(w, r)

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, failureResponse("Server error: "+err.Error(), ""))
		return
	}

	writeJSON(w, h.manager.HandleAction(r.Context(), req, sessionID))
}

// resolveSession picks the cache-key prefix for this request: the real
// session when present, a cookie-scoped anonymous id when cookies work,
// and the shared AnonymousSession constant as the last resort.
func (h *handler) resolveSession(w http.ResponseWriter, r *http.Request) string {
	if h.sessions != nil {
		if id, ok := h.sessions.SessionID(r); ok {
			return id
		}
	}
	if h.minter == nil {
		return AnonymousSession
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if claims, err := h.minter.Verify(cookie.Value, false, h.tokenMaxAge); err == nil {
			return claims.SessionID
		}
	}

	id := "anon-" + uuid.NewString()
	tok, err := h.minter.Mint(token.Claims{SessionID: id, IssuedAt: time.Now()}, false)
	if err != nil {
		return AnonymousSession
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSON(w http.ResponseWriter, resp ActionResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Encoding a flat response should not fail; emit the fixed
		// fallback body the client knows how to read.
		_, _ = w.Write([]byte(`{"success":false,"error":"Fatal error"}`))
	}
}
