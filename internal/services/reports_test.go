package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"restaurant_chat/internal/config"
	"restaurant_chat/src/model"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalogue(t *testing.T) *config.Catalogue {
	t.Helper()
	catalogue, err := config.ParseCatalogue([]byte(`
domains:
  orders:
    - path: /api/orders/total
      time_filter: true
    - path: /api/orders
  store:
    - path: /api/store
`))
	require.NoError(t, err)
	return catalogue
}

func TestCollectNoDomains(t *testing.T) {
	client := NewReportClient("http://127.0.0.1:1", testCatalogue(t))
	assert.Equal(t, NoDomainsSelected, client.Collect(context.Background(), model.ToolAnalysisResult{}))
}

func TestCollectOrdersWithTimeFilter(t *testing.T) {
	var mu sync.Mutex
	queries := map[string]string{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries[r.URL.Path] = r.URL.RawQuery
		mu.Unlock()

		switch r.URL.Path {
		case "/api/orders/total":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true,"data":{"total":42,"cached":false}}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	client := NewReportClient(server.URL, testCatalogue(t), WithClock(func() time.Time { return now }))

	out := client.Collect(context.Background(), model.ToolAnalysisResult{
		Orders:     model.DomainUsage{Use: true, Why: "order count"},
		TimeFilter: &model.TimeFilter{Type: model.TimeFilterLastDay},
	})

	assert.True(t, strings.HasPrefix(out, "\n=== ORDERS DATA ===\n"))
	assert.NotContains(t, out, "STORE DATA")
	assert.Contains(t, out, "--- /api/orders/total (1d) ---\n{\n  \"total\": 42\n}")
	assert.Contains(t, out, "--- /api/orders ---\nError: 500 Internal Server Error")
	assert.Less(t, strings.Index(out, "/api/orders/total"), strings.Index(out, "--- /api/orders ---"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "endDate=2025-08-20T23%3A59%3A59.999Z&startDate=2025-08-19T23%3A59%3A59.999Z", queries["/api/orders/total"])
	assert.Empty(t, queries["/api/orders"])
}

func TestCollectMultipleDomainsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"name":"Cantina"}}`))
	}))
	defer server.Close()

	client := NewReportClient(server.URL, testCatalogue(t))
	out := client.Collect(context.Background(), model.ToolAnalysisResult{
		Store:  model.DomainUsage{Use: true},
		Orders: model.DomainUsage{Use: true},
	})

	orders := strings.Index(out, "=== ORDERS DATA ===")
	store := strings.Index(out, "=== STORE DATA ===")
	require.GreaterOrEqual(t, orders, 0)
	require.GreaterOrEqual(t, store, 0)
	assert.Less(t, orders, store)
	assert.Contains(t, out, "--- /api/orders/total ---")
}

func TestFetchEndpointUnreachable(t *testing.T) {
	client := NewReportClient("http://127.0.0.1:1", testCatalogue(t), WithHTTPClient(&http.Client{Timeout: time.Second}))
	out := client.FetchEndpoint(context.Background(), "/api/store", "", "")
	assert.True(t, strings.HasPrefix(out, "Error fetching /api/store: "), out)
}

func TestFetchEndpointInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	out := NewReportClient(server.URL, testCatalogue(t)).FetchEndpoint(context.Background(), "/api/store", "", "")
	assert.True(t, strings.HasPrefix(out, "Error fetching /api/store: "), out)
}

func TestDateRange(t *testing.T) {
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    *model.TimeFilter
		wantStart string
		wantEnd   string
	}{
		{"nil", nil, "", ""},
		{"all", &model.TimeFilter{Type: model.TimeFilterAll}, "", ""},
		{"1d", &model.TimeFilter{Type: model.TimeFilterLastDay}, "2025-08-19T23:59:59.999Z", "2025-08-20T23:59:59.999Z"},
		{"7d", &model.TimeFilter{Type: model.TimeFilterLast7Days}, "2025-08-13T23:59:59.999Z", "2025-08-20T23:59:59.999Z"},
		{"30d", &model.TimeFilter{Type: model.TimeFilterLast30Days}, "2025-07-21T23:59:59.999Z", "2025-08-20T23:59:59.999Z"},
		{
			"custom",
			&model.TimeFilter{Type: model.TimeFilterCustomRange, StartDate: "2025-01-01T00:00:00.000Z", EndDate: "2025-01-31T23:59:59.999Z"},
			"2025-01-01T00:00:00.000Z",
			"2025-01-31T23:59:59.999Z",
		},
		{"unknown", &model.TimeFilter{Type: "90d"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DateRange(tt.filter, now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
