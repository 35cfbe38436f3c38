package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-cms/httpx"
	"github.com/diewo77/go-cms/internal/db"
	"gorm.io/gorm"
)

// HealthHandler reports liveness and database readiness.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// PingDB adapts a gorm connection for NewHealthHandler.
func PingDB(conn *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error { return db.Ping(ctx, conn) }
}

// Health answers as long as the process serves requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the database within two seconds.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
