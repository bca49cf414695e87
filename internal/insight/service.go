// Package insight orchestrates property insight queries: it pulls assessment
// history, neighbourhood series, and coordinates from the open-data API,
// runs the domain statistics, and assembles the report the dashboard renders.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/areacheck/property-insight-service/internal/apperr"
	"github.com/areacheck/property-insight-service/internal/chart"
	"github.com/areacheck/property-insight-service/internal/domain"
	"github.com/areacheck/property-insight-service/internal/observability"
)

// Fetcher is the open-data access needed by the service.
type Fetcher interface {
	// PropertyHistory returns a property's assessment rows ordered by report
	// year ascending; unit, when non-empty, constrains from_civic_number.
	PropertyHistory(ctx context.Context, civicNumber int, streetName, unit string) ([]domain.RawRecord, error)

	// NeighbourhoodParents returns a neighbourhood's parent records for one
	// report year.
	NeighbourhoodParents(ctx context.Context, code string, year int) ([]domain.RawRecord, error)

	// StreetNames returns the sorted unique street names for a civic number.
	StreetNames(ctx context.Context, civicNumber int) ([]string, error)

	// Coordinates resolves a land coordinate to latitude/longitude, or nil
	// when unknown.
	Coordinates(ctx context.Context, pcoord string) (*domain.Coordinates, error)

	// Probe checks that the upstream API is reachable.
	Probe(ctx context.Context) error
}

// Service answers dashboard queries. All state is per-request; the only
// shared mutable state is the latched readiness flag.
type Service struct {
	fetcher Fetcher
	years   []int
	metrics *observability.Metrics
	logger  *slog.Logger
	ready   atomic.Bool
}

// New creates a Service querying the given report years for the
// neighbourhood comparison.
func New(fetcher Fetcher, years []int, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		years:   years,
		metrics: metrics,
		logger:  logger,
	}
}

// Summary is the property info card: identity and latest-assessment facts.
type Summary struct {
	PID            string `json:"pid"`
	ZoningDistrict string `json:"zoning_district"`
	YearBuilt      string `json:"year_built"`
	ReportYear     string `json:"report_year"`
	TaxLevy        string `json:"tax_levy"`
}

// Report is the full response for one insight query. Figures are omitted on
// their documented degradation paths: ChangeFigure when no neighbourhood
// series could be built, MapFigure when coordinates are unavailable.
type Report struct {
	ID                 string                  `json:"id"`
	GeneratedAt        time.Time               `json:"generated_at"`
	RequiresUnitNumber bool                    `json:"requires_unit_number"`
	Summary            *Summary                `json:"summary,omitempty"`
	History            []domain.PropertyRecord `json:"history,omitempty"`
	ValueFigure        *chart.Figure           `json:"value_figure,omitempty"`
	ChangeFigure       *chart.Figure           `json:"change_figure,omitempty"`
	MapFigure          *chart.Figure           `json:"map_figure,omitempty"`
}

// Streets returns the street names matching a civic number for the
// dashboard's dropdown. Remote failure degrades to an empty list.
func (s *Service) Streets(ctx context.Context, civicNumber int) []string {
	streets, err := s.fetcher.StreetNames(ctx, civicNumber)
	if err != nil {
		s.logger.Warn("street lookup failed, degrading to empty",
			"civic_number", civicNumber, "error", err)
		return []string{}
	}
	return streets
}

// RequiresUnitNumber reports whether any historical row for the address has
// a non-null from_civic_number, meaning the address is a subdivided range
// and needs a unit number. Remote failure degrades to false: the query
// proceeds as if no unit were required.
func (s *Service) RequiresUnitNumber(ctx context.Context, civicNumber int, streetName string) bool {
	raws, err := s.fetcher.PropertyHistory(ctx, civicNumber, streetName, "")
	if err != nil {
		s.logger.Warn("disambiguation check failed, degrading to false",
			"civic_number", civicNumber, "street_name", streetName, "error", err)
		return false
	}
	for _, raw := range raws {
		if raw.FromCivicNumber != nil {
			return true
		}
	}
	return false
}

// Report runs a full insight query for an address.
func (s *Service) Report(ctx context.Context, civicNumber int, streetName, unitNumber string) (*Report, error) {
	start := time.Now()

	report, err := s.buildReport(ctx, civicNumber, streetName, unitNumber)
	switch {
	case err != nil:
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			s.metrics.InsightQueries.WithLabelValues("not_found").Inc()
		} else {
			s.metrics.InsightQueries.WithLabelValues("error").Inc()
		}
	case report.RequiresUnitNumber:
		s.metrics.InsightQueries.WithLabelValues("unit_required").Inc()
	default:
		s.metrics.InsightQueries.WithLabelValues("success").Inc()
		s.metrics.InsightDuration.Observe(time.Since(start).Seconds())
	}
	return report, err
}

func (s *Service) buildReport(ctx context.Context, civicNumber int, streetName, unitNumber string) (*Report, error) {
	requiresUnit := s.RequiresUnitNumber(ctx, civicNumber, streetName)
	if requiresUnit && unitNumber == "" {
		return &Report{
			ID:                 uuid.NewString(),
			GeneratedAt:        clock.Now(),
			RequiresUnitNumber: true,
		}, nil
	}

	unit := ""
	if requiresUnit {
		unit = unitNumber
	}

	raws, err := s.fetcher.PropertyHistory(ctx, civicNumber, streetName, unit)
	if err != nil {
		// Degrade to empty: the query then resolves as "no property data".
		s.logger.Warn("property history fetch failed, degrading to empty",
			"civic_number", civicNumber, "street_name", streetName, "error", err)
		raws = nil
	}
	history := domain.NormalizeAll(raws)
	if len(history) == 0 {
		return nil, apperr.NotFound("no property data available")
	}
	latest := history[len(history)-1]

	report := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: clock.Now(),
		Summary:     summarize(latest),
		History:     history,
		ValueFigure: chart.ValueFigure(history),
	}

	series := s.neighbourhoodSeries(ctx, latest.NeighbourhoodCode)
	if len(series) > 0 {
		densities, err := domain.EstimateDensities(series, averageValueChange(history))
		if err != nil {
			return nil, err
		}
		report.ChangeFigure = chart.ChangeFigure(densities)
		s.metrics.DensityCurves.Add(float64(len(densities.Curves)))
	}

	if latest.LandCoordinate != "" {
		coords, err := s.fetcher.Coordinates(ctx, latest.LandCoordinate)
		if err != nil {
			// Degrade: the report ships without a map figure.
			s.logger.Warn("coordinate lookup failed, omitting map",
				"land_coordinate", latest.LandCoordinate, "error", err)
			coords = nil
		}
		if coords != nil {
			report.MapFigure = chart.MapFigure(coords.Lat, coords.Lon)
		}
	}

	return report, nil
}

// neighbourhoodSeries fetches one year of parent records per configured
// year. An empty neighbourhood code yields an empty series and a diagnostic;
// a failed per-year fetch degrades to an empty list for that year.
func (s *Service) neighbourhoodSeries(ctx context.Context, code string) domain.NeighbourhoodSeries {
	if code == "" {
		s.logger.Info("no neighbourhood code in property history, skipping comparison")
		return nil
	}

	series := make(domain.NeighbourhoodSeries, len(s.years))
	for _, year := range s.years {
		raws, err := s.fetcher.NeighbourhoodParents(ctx, code, year)
		if err != nil {
			s.logger.Warn("neighbourhood fetch failed, degrading to empty",
				"neighbourhood_code", code, "year", year, "error", err)
			raws = nil
		}
		series[year] = domain.NormalizeAll(raws)
	}
	return series
}

// CheckReadiness probes the open-data API on first call and latches the
// result, so a flaky upstream doesn't flap the readiness probe afterwards.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	if err := s.fetcher.Probe(ctx); err != nil {
		return fmt.Errorf("open-data API unreachable: %w", err)
	}
	s.ready.Store(true)
	s.metrics.UpstreamReady.Set(1)
	return nil
}

// averageValueChange is the mean of the property's own non-null value
// changes, or 0 when the history has none.
func averageValueChange(history []domain.PropertyRecord) float64 {
	var sum float64
	var n int
	for _, rec := range history {
		if rec.ValueChange == nil {
			continue
		}
		sum += *rec.ValueChange
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func summarize(latest domain.PropertyRecord) *Summary {
	return &Summary{
		PID:            latest.PID,
		ZoningDistrict: latest.ZoningDistrict,
		YearBuilt:      latest.YearBuilt,
		ReportYear:     latest.ReportYear,
		TaxLevy:        formatTaxLevy(latest.TaxLevy),
	}
}

// formatTaxLevy renders "$1,234.56", or "N/A" when the levy is absent.
func formatTaxLevy(levy *float64) string {
	if levy == nil {
		return "N/A"
	}
	return "$" + groupThousands(fmt.Sprintf("%.2f", *levy))
}

// groupThousands inserts commas into the integer part of a fixed-point
// decimal string.
func groupThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if frac != "" {
		out += "." + frac
	}
	return out
}
