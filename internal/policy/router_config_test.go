package policy

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/config"
	"github.com/diewo77/go-cms/internal/logger"
	"github.com/diewo77/go-cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterConfigZeroCacheTTLReadsThrough(t *testing.T) {
	conn := setupTestDB(t)
	cfg := &config.Config{
		Session: config.SessionConfig{Secret: "test-secret", TTL: time.Hour},
		Access: config.AccessConfig{
			FailurePolicy:    string(access.FailOpen),
			ProfileCacheTTL:  0,
			ProfileCacheSize: 16,
			PollInterval:     time.Second,
		},
	}
	rc := NewRouterConfig(conn, cfg, logger.NewWithWriter(io.Discard, false))
	require.False(t, rc.Profiles.Enabled())

	u := models.User{Email: "sari@example.org", Password: "x"}
	require.NoError(t, conn.Create(&u).Error)
	require.NoError(t, conn.Model(&models.Profile{}).Where("id = ?", u.ID).Update("status", access.StatusApproved).Error)

	ctx := context.Background()
	p, err := rc.Profiles.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, access.StatusApproved, p.Status)

	// Changed outside the admin service, so nothing invalidates.
	require.NoError(t, conn.Model(&models.Profile{}).Where("id = ?", u.ID).Update("status", access.StatusRejected).Error)
	p, err = rc.Profiles.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, access.StatusRejected, p.Status)
}
