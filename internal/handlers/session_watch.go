package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/go-cms/auth"
	"github.com/diewo77/go-cms/httpx"
	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/metrics"
	"github.com/diewo77/go-cms/internal/sessionwatch"
)

// SessionWatchHandler streams profile checks of an open dashboard as
// server-sent events. A "revoked" event carries the login URL the page must
// navigate to; the stream ends with it.
type SessionWatchHandler struct {
	poller *sessionwatch.Poller
	view   sessionwatch.View
	log    *slog.Logger
}

func NewSessionWatchHandler(poller *sessionwatch.Poller, v sessionwatch.View, log *slog.Logger) *SessionWatchHandler {
	return &SessionWatchHandler{poller: poller, view: v, log: log}
}

type profileEvent struct {
	Role     access.Role   `json:"role"`
	Status   access.Status `json:"status"`
	FullName string        `json:"full_name"`
}

type sseWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (s sseWriter) send(event, data string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (h *SessionWatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", map[string]string{"redirect": h.view.RevokeTarget()})
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.log.Warn("clear write deadline", "error", err)
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	out := sseWriter{w: w, rc: rc}
	if _, err := fmt.Fprint(w, ": watching\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Error("session watch needs a flushable writer", "error", err)
		return
	}

	metrics.SessionWatchers.Inc()
	defer metrics.SessionWatchers.Dec()

	err := h.poller.Watch(r.Context(), h.view, uid, sessionwatch.Hooks{
		OnRevoke: func(ctx context.Context, target string) error {
			return out.send("revoked", target)
		},
		OnProfile: func(ctx context.Context, p *access.Profile) error {
			b, err := json.Marshal(profileEvent{Role: p.Role, Status: p.Status, FullName: p.FullName})
			if err != nil {
				return err
			}
			return out.send("profile", string(b))
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Debug("session watch ended", "view", h.view.String(), "user_id", uid, "error", err)
	}
}
