// Command example runs a small demo app with three live components:
// a counter, a survey with polling, and a signup form with validation
// feedback.
//
//	go run ./example
//	open http://localhost:8080
package main

import (
	"crypto/rand"
	"encoding/hex"
	"html/template"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kainovaii/golive"
	"github.com/kainovaii/golive/lib/token"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	renderer, err := newTemplateRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	mgr := golive.NewManager(renderer,
		golive.WithLogger(logger),
		golive.WithErrorRenderer(renderer),
		golive.WithMetrics(golive.NewMetrics(golive.WithNamespace("example"))))
	defer mgr.Close()

	mgr.Register("counter", NewCounter)
	mgr.Register("survey", NewSurvey)
	mgr.Register("signup", NewSignup)

	minter, err := token.NewMinter(randomKey())
	if err != nil {
		logger.Error("failed to create token minter", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)

	r.Get("/", indexHandler(mgr))
	r.Method(http.MethodPost, "/live/components", golive.NewHandler(mgr,
		golive.WithCSRF(golive.CSRFValidatorFunc(validateCSRF)),
		golive.WithAnonymousCookies(minter, 0)))
	r.Method(http.MethodGet, "/live/livecomponents.js", golive.ScriptHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	logger.Info("example app listening", "addr", ":8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// indexHandler mounts the page's components and renders the shell.
func indexHandler(mgr *golive.Manager) http.HandlerFunc {
	page := template.Must(template.ParseFS(templateFiles, "templates/index.html"))

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		csrf := ensureCSRFCookie(w, r)
		ctx := r.Context()

		counter, err := mgr.Mount(ctx, "counter", golive.AnonymousSession)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		survey, _ := mgr.Mount(ctx, "survey", golive.AnonymousSession)
		signup, _ := mgr.Mount(ctx, "signup", golive.AnonymousSession)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = page.Execute(w, map[string]any{
			"CSRF":    csrf,
			"Counter": template.HTML(counter),
			"Survey":  template.HTML(survey),
			"Signup":  template.HTML(signup),
		})
	}
}

// CSRF uses the double-submit pattern: the token lives in a cookie and the
// page's meta tag; the client runtime echoes it in X-CSRF-Token.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie("csrf"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	tok := hex.EncodeToString(randomKey()[:16])
	http.SetCookie(w, &http.Cookie{Name: "csrf", Value: tok, Path: "/", SameSite: http.SameSiteLaxMode})
	return tok
}

func validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie("csrf")
	if err != nil || cookie.Value == "" {
		return false
	}
	return r.Header.Get("X-CSRF-Token") == cookie.Value
}

func randomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}
