// Package opendata implements the Vancouver open-data explore API client.
package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/areacheck/property-insight-service/internal/config"
	"github.com/areacheck/property-insight-service/internal/domain"
	"github.com/areacheck/property-insight-service/internal/observability"
)

const (
	datasetTaxReport = "property-tax-report"
	datasetAddresses = "property-addresses"
)

// Client queries the explore API's record endpoints. Calls are serialized
// through a client-side rate limiter to stay polite toward the public API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	pageLimit  int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an open-data API client from the service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.OpenDataTimeout},
		baseURL:    strings.TrimSuffix(cfg.OpenDataBaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(cfg.OpenDataRateLimit), 1),
		pageLimit:  cfg.OpenDataPageLimit,
		metrics:    metrics,
		logger:     logger,
	}
}

// PropertyHistory fetches a property's assessment rows ordered by report
// year ascending. unit, when non-empty, constrains the address range's
// from_civic_number (strata lookups).
func (c *Client) PropertyHistory(ctx context.Context, civicNumber int, streetName, unit string) ([]domain.RawRecord, error) {
	where := fmt.Sprintf("to_civic_number='%d' AND street_name='%s'", civicNumber, escapeLiteral(streetName))
	if unit != "" {
		where = fmt.Sprintf("to_civic_number='%d' AND from_civic_number='%s' AND street_name='%s'",
			civicNumber, escapeLiteral(unit), escapeLiteral(streetName))
	}

	rows, err := c.fetch(ctx, query{dataset: datasetTaxReport, where: where, orderBy: "report_year asc"})
	if err != nil {
		return nil, err
	}
	return decodeTaxRows(rows)
}

// NeighbourhoodParents fetches the parent records (no from_civic_number) of
// a neighbourhood for a single report year.
func (c *Client) NeighbourhoodParents(ctx context.Context, code string, year int) ([]domain.RawRecord, error) {
	where := fmt.Sprintf("neighbourhood_code='%s' AND from_civic_number IS NULL AND report_year='%d'",
		escapeLiteral(code), year)

	rows, err := c.fetch(ctx, query{dataset: datasetTaxReport, where: where})
	if err != nil {
		return nil, err
	}
	return decodeTaxRows(rows)
}

// StreetNames returns the sorted unique street names that have tax records
// for a civic number.
func (c *Client) StreetNames(ctx context.Context, civicNumber int) ([]string, error) {
	where := fmt.Sprintf("to_civic_number='%d'", civicNumber)

	rows, err := c.fetch(ctx, query{dataset: datasetTaxReport, where: where, groupBy: "street_name"})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		var rec struct {
			StreetName string `json:"street_name"`
		}
		if err := json.Unmarshal(row, &rec); err != nil {
			return nil, fmt.Errorf("decode street row: %w", err)
		}
		if rec.StreetName != "" {
			seen[rec.StreetName] = struct{}{}
		}
	}

	streets := make([]string, 0, len(seen))
	for s := range seen {
		streets = append(streets, s)
	}
	sort.Strings(streets)
	return streets, nil
}

// Coordinates resolves a land coordinate (pcoord) to latitude/longitude via
// the property-addresses dataset. Returns nil without error when the
// coordinate has no address row or the geometry is malformed.
func (c *Client) Coordinates(ctx context.Context, pcoord string) (*domain.Coordinates, error) {
	where := fmt.Sprintf("pcoord='%s'", escapeLiteral(pcoord))

	rows, err := c.fetch(ctx, query{dataset: datasetAddresses, where: where})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var rec struct {
		Geom struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"` // [lon, lat]
			} `json:"geometry"`
		} `json:"geom"`
	}
	if err := json.Unmarshal(rows[0], &rec); err != nil {
		return nil, fmt.Errorf("decode address row: %w", err)
	}
	if len(rec.Geom.Geometry.Coordinates) != 2 {
		return nil, nil
	}

	return &domain.Coordinates{
		Lat: rec.Geom.Geometry.Coordinates[1],
		Lon: rec.Geom.Geometry.Coordinates[0],
	}, nil
}

// Probe issues a minimal query against the tax dataset, used by the
// readiness check.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.fetch(ctx, query{dataset: datasetTaxReport, limit: 1})
	return err
}

type query struct {
	dataset string
	where   string
	orderBy string
	groupBy string
	limit   int // 0 means the configured page limit
}

func (c *Client) fetch(ctx context.Context, q query) ([]json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	limit := q.limit
	if limit == 0 {
		limit = c.pageLimit
	}

	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if q.where != "" {
		params.Set("where", q.where)
	}
	if q.orderBy != "" {
		params.Set("order_by", q.orderBy)
	}
	if q.groupBy != "" {
		params.Set("group_by", q.groupBy)
	}

	fullURL := fmt.Sprintf("%s/catalog/datasets/%s/records?%s", c.baseURL, q.dataset, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(q.dataset, "error").Inc()
		return nil, fmt.Errorf("open-data request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.UpstreamDuration.WithLabelValues(q.dataset).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(q.dataset, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("open-data API error: status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(q.dataset, "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	outcome := "success"
	if len(payload.Results) == 0 {
		outcome = "empty"
	}
	c.metrics.UpstreamRequests.WithLabelValues(q.dataset, outcome).Inc()

	return payload.Results, nil
}

func decodeTaxRows(rows []json.RawMessage) ([]domain.RawRecord, error) {
	records := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		var rec domain.RawRecord
		if err := json.Unmarshal(row, &rec); err != nil {
			return nil, fmt.Errorf("decode tax row: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// escapeLiteral doubles single quotes for interpolation into a where clause.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
