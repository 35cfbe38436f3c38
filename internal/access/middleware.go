package access

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/diewo77/go-cms/httpx"
)

// Middleware runs the decider before every non-static request. Redirects use
// 303 for browsers; JSON clients get a 401 carrying the redirect target.
// Event-stream clients cannot follow a redirect, so they get a single
// "revoked" event naming the target.
func Middleware(d *Decider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ShouldEvaluate(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			act := d.Decide(r.Context(), r.URL.Path, r.URL.Query(), r.Cookies())
			if !act.IsRedirect() {
				next.ServeHTTP(w, r)
				return
			}
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", map[string]string{"redirect": act.Target})
				return
			}
			if wantsEventStream(r) {
				w.Header().Set("Content-Type", "text/event-stream")
				w.Header().Set("Cache-Control", "no-cache")
				fmt.Fprintf(w, "event: revoked\ndata: %s\n\n", act.Target)
				return
			}
			http.Redirect(w, r, act.Target, http.StatusSeeOther)
		})
	}
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
