package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tableside/internal/models"
)

// fakeUpstream is a scripted restaurant API.
type fakeUpstream struct {
	t          *testing.T
	authCalls  atomic.Int64
	orderCalls atomic.Int64
	rejectNext atomic.Bool
	order      models.Order
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		f.authCalls.Add(1)
		var req struct {
			APIKey string `json:"api_key"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		if req.APIKey != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"access_token": "tok-1", "expires_in": 3600},
		})
	})

	mux.HandleFunc("GET /api/customer/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.orderCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-1" || f.rejectNext.Swap(false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.PathValue("id") != f.order.ID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": f.order})
	})

	mux.HandleFunc("GET /api/admin/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]int{"count": 12}})
	})

	return mux
}

func newTestClient(t *testing.T, f *fakeUpstream) *UpstreamClient {
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)
	return NewUpstreamClient(server.URL+"/api", server.URL+"/auth/token", "secret")
}

func TestUpstreamGetOrder(t *testing.T) {
	fake := &fakeUpstream{t: t, order: models.Order{
		ID:          "ord-1",
		OrderNumber: "ORD-0001",
		Status:      models.StatusPreparing,
		TotalAmount: 26.95,
	}}
	client := newTestClient(t, fake)

	order, err := client.GetOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-0001", order.OrderNumber)
	assert.Equal(t, models.StatusPreparing, order.Status)
}

func TestUpstreamGetOrderNotFound(t *testing.T) {
	fake := &fakeUpstream{t: t, order: models.Order{ID: "ord-1"}}
	client := newTestClient(t, fake)

	_, err := client.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpstreamTokenIsCachedAcrossCalls(t *testing.T) {
	fake := &fakeUpstream{t: t, order: models.Order{ID: "ord-1"}}
	client := newTestClient(t, fake)
	ctx := context.Background()

	_, err := client.GetOrder(ctx, "ord-1")
	require.NoError(t, err)
	_, err = client.GetOrder(ctx, "ord-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), fake.authCalls.Load())
}

func TestUpstreamRetriesOnceOn401(t *testing.T) {
	fake := &fakeUpstream{t: t, order: models.Order{ID: "ord-1", Status: models.StatusReady}}
	client := newTestClient(t, fake)
	ctx := context.Background()

	// Warm the token cache, then have the next API call reject it.
	_, err := client.Token(ctx)
	require.NoError(t, err)
	fake.rejectNext.Store(true)

	order, err := client.GetOrder(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, order.Status)
	assert.Equal(t, int64(2), fake.orderCalls.Load(), "expected exactly one retry")
	assert.Equal(t, int64(2), fake.authCalls.Load(), "retry must refresh the token")
}

func TestUpstreamUnreadNotificationCount(t *testing.T) {
	fake := &fakeUpstream{t: t}
	client := newTestClient(t, fake)

	count, err := client.UnreadNotificationCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}
