package golive

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kainovaii/golive/lib/token"
)

// extractLiveID pulls the instance id out of a rendered fragment.
func extractLiveID(t *testing.T, html string) string {
	t.Helper()
	const marker = `live:id="`
	start := strings.Index(html, marker)
	if start < 0 {
		t.Fatalf("fragment %q has no live:id", html)
	}
	rest := html[start+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		t.Fatalf("fragment %q has an unterminated live:id", html)
	}
	return rest[:end]
}

func newHandlerHarness(t *testing.T, opts ...HandlerOption) (*TestClient, http.Handler) {
	t.Helper()
	tc := NewTestClient()
	t.Cleanup(tc.Manager.Close)
	tc.Register("gadget", func() Component { return newGadget() })
	return tc, NewHandler(tc.Manager, opts...)
}

func postAction(h http.Handler, req ActionRequest, mutate func(*http.Request)) *httptest.ResponseRecorder {
	body, _ := json.Marshal(req)
	r := httptest.NewRequest(http.MethodPost, "/live/components", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(r)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHandlerActionRoundTrip(t *testing.T) {
	tc, h := newHandlerHarness(t)

	inst, err := tc.Mount("gadget")
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	w := postAction(h, ActionRequest{
		ComponentID: inst.ID,
		Action:      "bump",
		State:       inst.State(),
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp ActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Success = false, error = %q", resp.Error)
	}
	// JSON round-trip turns the int into float64.
	if resp.State["count"] != float64(1) {
		t.Errorf("State[count] = %v, want 1", resp.State["count"])
	}
	if resp.State["id"] != inst.ID {
		t.Errorf("State[id] = %v, want %q", resp.State["id"], inst.ID)
	}
}

func TestHandlerWireFieldNames(t *testing.T) {
	tc, h := newHandlerHarness(t)
	inst, _ := tc.Mount("gadget")

	// Raw body exercises the exact field names the client runtime sends.
	body := `{"componentId":"` + inst.ID + `","action":"add(3)","state":{"count":0}}`
	r := httptest.NewRequest(http.MethodPost, "/live/components", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var resp ActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Success = false, error = %q", resp.Error)
	}
	if resp.State["count"] != float64(3) {
		t.Errorf("State[count] = %v, want 3", resp.State["count"])
	}
	if !strings.Contains(w.Body.String(), `"html":`) {
		t.Errorf("body %q missing html field", w.Body.String())
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	_, h := newHandlerHarness(t)

	r := httptest.NewRequest(http.MethodGet, "/live/components", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestHandlerCSRF(t *testing.T) {
	tc, h := newHandlerHarness(t, WithCSRF(CSRFValidatorFunc(func(r *http.Request) bool {
		return r.Header.Get("X-CSRF-Token") == "good"
	})))
	inst, _ := tc.Mount("gadget")

	w := postAction(h, ActionRequest{ComponentID: inst.ID, Action: "bump"}, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status without token = %d, want 403", w.Code)
	}

	w = postAction(h, ActionRequest{ComponentID: inst.ID, Action: "bump", State: inst.State()},
		func(r *http.Request) { r.Header.Set("X-CSRF-Token", "good") })
	if w.Code != http.StatusOK {
		t.Errorf("status with token = %d, want 200", w.Code)
	}
}

func TestHandlerDecodeFailure(t *testing.T) {
	_, h := newHandlerHarness(t)

	r := httptest.NewRequest(http.MethodPost, "/live/components", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	// Malformed bodies still get the JSON failure envelope, not an HTTP
	// error page.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp ActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Success {
		t.Error("Success = true for malformed body")
	}
	if !strings.HasPrefix(resp.Error, "Server error:") {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestHandlerExpiredInstance(t *testing.T) {
	_, h := newHandlerHarness(t)

	w := postAction(h, ActionRequest{ComponentID: "never-mounted", Action: "bump"}, nil)

	var resp ActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Success {
		t.Error("Success = true for unmounted instance")
	}
	if resp.Error != expiredMessage {
		t.Errorf("Error = %q, want %q", resp.Error, expiredMessage)
	}
}

func TestHandlerSessionResolver(t *testing.T) {
	tc, h := newHandlerHarness(t, WithSessions(SessionResolverFunc(func(r *http.Request) (string, bool) {
		if id := r.Header.Get("X-Session"); id != "" {
			return id, true
		}
		return "", false
	})))

	// Mount under a real session; only requests carrying that session see
	// the instance.
	html, err := tc.Manager.Mount(context.Background(), "gadget", "alice")
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	id := extractLiveID(t, html)

	w := postAction(h, ActionRequest{ComponentID: id, Action: "bump", State: map[string]any{}},
		func(r *http.Request) { r.Header.Set("X-Session", "alice") })
	var resp ActionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success {
		t.Errorf("owner session failed: %q", resp.Error)
	}

	w = postAction(h, ActionRequest{ComponentID: id, Action: "bump", State: map[string]any{}},
		func(r *http.Request) { r.Header.Set("X-Session", "mallory") })
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success {
		t.Error("foreign session reached the instance")
	}
}

func TestHandlerAnonymousCookies(t *testing.T) {
	minter, err := token.NewMinter([]byte("test key"))
	if err != nil {
		t.Fatalf("NewMinter() error = %v", err)
	}
	tc, h := newHandlerHarness(t, WithAnonymousCookies(minter, 0))

	// First contact: no cookie, so the handler mints one.
	w := postAction(h, ActionRequest{ComponentID: "x", Action: "bump"}, nil)
	cookies := w.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie set on first contact")
	}
	if !session.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	claims, err := minter.Verify(session.Value, false, 0)
	if err != nil {
		t.Fatalf("minted cookie does not verify: %v", err)
	}
	if !strings.HasPrefix(claims.SessionID, "anon-") {
		t.Errorf("SessionID = %q, want anon- prefix", claims.SessionID)
	}

	// Mount under that anonymous session; the returning cookie reaches it.
	html, err := tc.Manager.Mount(context.Background(), "gadget", claims.SessionID)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	id := extractLiveID(t, html)

	w = postAction(h, ActionRequest{ComponentID: id, Action: "bump", State: map[string]any{}},
		func(r *http.Request) { r.AddCookie(session) })
	var resp ActionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success {
		t.Errorf("returning anonymous session failed: %q", resp.Error)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("handler re-minted a cookie for a valid session")
	}

	// A tampered cookie is ignored and replaced.
	bad := &http.Cookie{Name: SessionCookie, Value: session.Value + "x"}
	w = postAction(h, ActionRequest{ComponentID: id, Action: "bump"},
		func(r *http.Request) { r.AddCookie(bad) })
	if len(w.Result().Cookies()) == 0 {
		t.Error("tampered cookie was not replaced")
	}
}
