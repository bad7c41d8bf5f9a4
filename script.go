package golive

import (
	_ "embed"
	"net/http"
)

// clientScript is the browser runtime, embedded so the module ships as a
// single import with no asset pipeline.
//
//go:embed client/livecomponents.js
var clientScript []byte

// ClientScript returns the embedded browser runtime. The cmd/golive
// "script" command uses this to extract the file for asset pipelines that
// prefer serving it themselves.
func ClientScript() []byte {
	return clientScript
}

// ScriptHandler serves the client runtime with long-lived cache headers.
//
//	mux.Handle("/live/livecomponents.js", golive.ScriptHandler())
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		_, _ = w.Write(clientScript)
	})
}
