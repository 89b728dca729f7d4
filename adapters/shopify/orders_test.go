package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postlift/domain/core"
)

const ordersPage = `{
	"orders": [
		{
			"id": 450789469,
			"created_at": "2024-06-03T13:00:00Z",
			"total_price": "129.90",
			"email": "mia@example.com",
			"line_items": [
				{"title": "Glow Serum 30ml", "quantity": 1, "price": "49.90"},
				{"title": "Night Cream", "quantity": 2, "price": "40.00"}
			]
		},
		{
			"id": 450789470,
			"created_at": "2024-06-03T14:30:00Z",
			"total_price": "not-a-number",
			"customer": {"email": "jake@example.com"},
			"line_items": []
		}
	]
}`

func TestFetchOrders_NormalizesWirePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("X-Shopify-Access-Token"))
		assert.Contains(t, r.URL.Path, "/admin/api/2024-04/orders.json")
		assert.Equal(t, "250", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ordersPage))
	}))
	defer server.Close()

	client := &OrderClient{
		accessToken: "secret-token",
		apiVersion:  "2024-04",
		httpClient:  server.Client(),
		baseURL:     server.URL,
	}

	orders, err := client.FetchOrders(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "450789469", orders[0].ID.String())
	assert.Equal(t, 129.90, orders[0].TotalPrice)
	assert.Equal(t, "mia@example.com", orders[0].CustomerEmail)
	require.Len(t, orders[0].LineItems, 2)
	assert.Equal(t, "Glow Serum 30ml", orders[0].LineItems[0].Title)
	assert.Equal(t, 49.90, orders[0].LineItems[0].Price)

	// Malformed price degrades to 0, customer email backfills the top level.
	assert.Equal(t, 0.0, orders[1].TotalPrice)
	assert.Equal(t, "jake@example.com", orders[1].CustomerEmail)
}

func TestFetchOrders_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	calls := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.Header().Set("Link", `<`+server.URL+`/admin/api/2024-04/orders.json?page_info=abc>; rel="next"`)
			_, _ = w.Write([]byte(`{"orders":[{"id":1,"created_at":"2024-06-01T10:00:00Z","total_price":"10.00"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"orders":[{"id":2,"created_at":"2024-06-02T10:00:00Z","total_price":"20.00"}]}`))
	}))
	defer server.Close()

	client := &OrderClient{
		apiVersion: "2024-04",
		httpClient: server.Client(),
		baseURL:    server.URL,
	}

	orders, err := client.FetchOrders(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, orders, 2)
	assert.Equal(t, 30.0, orders[0].TotalPrice+orders[1].TotalPrice)
}

func TestFetchOrders_SurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Not authorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := &OrderClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}

	_, err := client.FetchOrders(context.Background(), time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.True(t, errors.Is(err, core.ErrSourceUnavailable))
}

func TestFetchOrders_FlagsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders": [{`))
	}))
	defer server.Close()

	client := &OrderClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}

	_, err := client.FetchOrders(context.Background(), time.Time{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMalformedPayload))
	assert.True(t, core.IsUpstreamError(err))
}

func TestNextPageLink(t *testing.T) {
	assert.Equal(t, "", nextPageLink(""))
	assert.Equal(t, "", nextPageLink(`<https://x/prev>; rel="previous"`))
	assert.Equal(t, "https://x/next",
		nextPageLink(`<https://x/prev>; rel="previous", <https://x/next>; rel="next"`))
}
