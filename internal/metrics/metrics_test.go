package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMethodLabel(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "GET"},
		{http.MethodPost, "POST"},
		{http.MethodOptions, "OPTIONS"},
		{"BREW", "other"},
		{"get", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MethodLabel(tt.method), tt.method)
	}
}

func TestObserveRequestFoldsUnknownMethods(t *testing.T) {
	before := testutil.CollectAndCount(HTTPRequests)
	ObserveRequest("PROPFIND-7f3a", http.StatusMethodNotAllowed, time.Millisecond)
	ObserveRequest("PROPFIND-9c21", http.StatusMethodNotAllowed, time.Millisecond)
	assert.Equal(t, before+1, testutil.CollectAndCount(HTTPRequests))
}
