package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"restaurant_chat/internal/config"
	"restaurant_chat/src/logger"
	"restaurant_chat/src/model"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// NoDomainsSelected is the tool result when the model flagged nothing
const NoDomainsSelected = "No APIs were selected for data retrieval."

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ReportClient fetches report endpoints on behalf of the analyze tool
type ReportClient struct {
	baseURL       string
	httpClient    *http.Client
	catalogue     *config.Catalogue
	maxArrayItems int
	now           func() time.Time
}

// ReportClientOption customises a ReportClient
type ReportClientOption func(*ReportClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) ReportClientOption {
	return func(c *ReportClient) { c.httpClient = client }
}

// WithMaxArrayItems changes how many list items survive cleaning
func WithMaxArrayItems(n int) ReportClientOption {
	return func(c *ReportClient) { c.maxArrayItems = n }
}

// WithClock fixes the time used to resolve relative periods
func WithClock(now func() time.Time) ReportClientOption {
	return func(c *ReportClient) { c.now = now }
}

// NewReportClient creates a client rooted at baseURL
func NewReportClient(baseURL string, catalogue *config.Catalogue, opts ...ReportClientOption) *ReportClient {
	c := &ReportClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		catalogue:     catalogue,
		maxArrayItems: DefaultMaxArrayItems,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches every endpoint of every domain flagged in analysis, all
// concurrently, and renders the results as labelled text blocks. Endpoint
// failures are reported inline.
func (c *ReportClient) Collect(ctx context.Context, analysis model.ToolAnalysisResult) string {
	selected := analysis.Selected()
	if len(selected) == 0 {
		return NoDomainsSelected
	}

	startDate, endDate := DateRange(analysis.TimeFilter, c.now())

	// Each goroutine owns one slot, so results keep catalogue order
	blocks := make([][]string, len(selected))
	var wg sync.WaitGroup

	for di, domain := range selected {
		endpoints := c.catalogue.Endpoints(domain)
		blocks[di] = make([]string, len(endpoints))

		for ei, endpoint := range endpoints {
			wg.Add(1)
			go func(di, ei int, endpoint config.Endpoint) {
				defer wg.Done()

				filtered := analysis.TimeFilter != nil && endpoint.TimeFilter
				label := endpoint.Path
				if filtered {
					label = fmt.Sprintf("%s (%s)", endpoint.Path, analysis.TimeFilter.Type)
				}

				var body string
				if filtered {
					body = c.FetchEndpoint(ctx, endpoint.Path, startDate, endDate)
				} else {
					body = c.FetchEndpoint(ctx, endpoint.Path, "", "")
				}
				blocks[di][ei] = fmt.Sprintf("\n--- %s ---\n%s", label, body)
			}(di, ei, endpoint)
		}
	}

	wg.Wait()

	sections := make([]string, 0, len(selected))
	for di, domain := range selected {
		sections = append(sections, fmt.Sprintf("\n=== %s DATA ===\n%s", strings.ToUpper(string(domain)), strings.Join(blocks[di], "\n")))
	}

	logger.Debug().
		Int("domains", len(selected)).
		Str("start_date", startDate).
		Str("end_date", endDate).
		Msg("report data collected")

	return strings.Join(sections, "\n\n")
}

// FetchEndpoint GETs one endpoint and returns its cleaned JSON, or an
// inline error string.
func (c *ReportClient) FetchEndpoint(ctx context.Context, path, startDate, endDate string) string {
	target := c.baseURL + path

	params := url.Values{}
	if startDate != "" {
		params.Set("startDate", startDate)
	}
	if endDate != "" {
		params.Set("endDate", endDate)
	}
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Sprintf("Error fetching %s: %v", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("endpoint", path).Msg("report endpoint unreachable")
		return fmt.Sprintf("Error fetching %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().Int("status", resp.StatusCode).Str("endpoint", path).Msg("report endpoint failed")
		return fmt.Sprintf("Error: %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error fetching %s: %v", path, err)
	}

	var decoded any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return fmt.Sprintf("Error fetching %s: %v", path, err)
	}

	out, err := sonic.ConfigStd.MarshalIndent(CleanForLLM(decoded, c.maxArrayItems), "", "  ")
	if err != nil {
		return fmt.Sprintf("Error fetching %s: %v", path, err)
	}
	return string(out)
}

// DateRange resolves a time filter into ISO-8601 bounds. Relative periods
// end at the last millisecond of today; "all" and nil yield no bounds.
func DateRange(filter *model.TimeFilter, now time.Time) (startDate, endDate string) {
	if filter == nil {
		return "", ""
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(999*time.Millisecond), now.Location())

	var days int
	switch filter.Type {
	case model.TimeFilterLastDay:
		days = 1
	case model.TimeFilterLast7Days:
		days = 7
	case model.TimeFilterLast30Days:
		days = 30
	case model.TimeFilterCustomRange:
		return filter.StartDate, filter.EndDate
	default:
		return "", ""
	}

	start := end.AddDate(0, 0, -days)
	return start.UTC().Format(isoMillis), end.UTC().Format(isoMillis)
}
