package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areacheck/property-insight-service/internal/apperr"
	"github.com/areacheck/property-insight-service/internal/domain"
	"github.com/areacheck/property-insight-service/internal/observability"
)

type stubFetcher struct {
	propertyHistory      func(ctx context.Context, civicNumber int, streetName, unit string) ([]domain.RawRecord, error)
	neighbourhoodParents func(ctx context.Context, code string, year int) ([]domain.RawRecord, error)
	streetNames          func(ctx context.Context, civicNumber int) ([]string, error)
	coordinates          func(ctx context.Context, pcoord string) (*domain.Coordinates, error)
	probe                func(ctx context.Context) error
}

func (s *stubFetcher) PropertyHistory(ctx context.Context, civicNumber int, streetName, unit string) ([]domain.RawRecord, error) {
	return s.propertyHistory(ctx, civicNumber, streetName, unit)
}

func (s *stubFetcher) NeighbourhoodParents(ctx context.Context, code string, year int) ([]domain.RawRecord, error) {
	return s.neighbourhoodParents(ctx, code, year)
}

func (s *stubFetcher) StreetNames(ctx context.Context, civicNumber int) ([]string, error) {
	return s.streetNames(ctx, civicNumber)
}

func (s *stubFetcher) Coordinates(ctx context.Context, pcoord string) (*domain.Coordinates, error) {
	return s.coordinates(ctx, pcoord)
}

func (s *stubFetcher) Probe(ctx context.Context) error {
	return s.probe(ctx)
}

func newTestService(f Fetcher) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(f, []int{2023, 2024}, observability.NewMetricsForTesting(), logger)
}

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }

// history with enough rows that every comparison year qualifies for a curve.
func taxRows() []domain.RawRecord {
	return []domain.RawRecord{
		{
			PID:                      "029-123-456",
			LegalType:                "STRATA",
			LandCoordinate:           "12345678",
			ZoningDistrict:           "RS-1",
			StreetName:               "W CORDOVA ST",
			CurrentLandValue:         fptr(500000),
			CurrentImprovementValue:  fptr(300000),
			PreviousLandValue:        fptr(480000),
			PreviousImprovementValue: fptr(290000),
			YearBuilt:                "1995",
			TaxLevy:                  fptr(1234.5),
			NeighbourhoodCode:        "017",
			ReportYear:               "2024",
		},
		{
			PID:                      "029-123-456",
			LegalType:                "STRATA",
			LandCoordinate:           "12345678",
			ZoningDistrict:           "RS-1",
			StreetName:               "W CORDOVA ST",
			CurrentLandValue:         fptr(540000),
			CurrentImprovementValue:  fptr(310000),
			PreviousLandValue:        fptr(500000),
			PreviousImprovementValue: fptr(300000),
			YearBuilt:                "1995",
			TaxLevy:                  fptr(1301.75),
			NeighbourhoodCode:        "017",
			ReportYear:               "2025",
		},
	}
}

func neighbourRows() []domain.RawRecord {
	rows := make([]domain.RawRecord, 0, 4)
	for _, vals := range [][4]float64{
		{800000, 200000, 760000, 190000},
		{900000, 250000, 850000, 240000},
		{700000, 150000, 680000, 145000},
		{650000, 120000, 600000, 110000},
	} {
		rows = append(rows, domain.RawRecord{
			CurrentLandValue:         fptr(vals[0]),
			CurrentImprovementValue:  fptr(vals[1]),
			PreviousLandValue:        fptr(vals[2]),
			PreviousImprovementValue: fptr(vals[3]),
		})
	}
	return rows
}

func TestService_Streets(t *testing.T) {
	t.Run("returns upstream streets", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			streetNames: func(_ context.Context, civicNumber int) ([]string, error) {
				assert.Equal(t, 128, civicNumber)
				return []string{"ALEXANDER ST", "W CORDOVA ST"}, nil
			},
		})

		assert.Equal(t, []string{"ALEXANDER ST", "W CORDOVA ST"}, svc.Streets(context.Background(), 128))
	})

	t.Run("degrades to empty on error", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			streetNames: func(context.Context, int) ([]string, error) {
				return nil, errors.New("upstream down")
			},
		})

		assert.Equal(t, []string{}, svc.Streets(context.Background(), 128))
	})
}

func TestService_RequiresUnitNumber(t *testing.T) {
	t.Run("true when any row has a from_civic_number", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(_ context.Context, _ int, _, unit string) ([]domain.RawRecord, error) {
				assert.Empty(t, unit)
				return []domain.RawRecord{{}, {FromCivicNumber: sptr("301")}}, nil
			},
		})

		assert.True(t, svc.RequiresUnitNumber(context.Background(), 128, "W CORDOVA ST"))
	})

	t.Run("false for plain addresses", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return []domain.RawRecord{{}, {}}, nil
			},
		})

		assert.False(t, svc.RequiresUnitNumber(context.Background(), 128, "W CORDOVA ST"))
	})

	t.Run("degrades to false on error", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return nil, errors.New("upstream down")
			},
		})

		assert.False(t, svc.RequiresUnitNumber(context.Background(), 128, "W CORDOVA ST"))
	})
}

func TestService_Report(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(clockwork.NewRealClock()) })

	t.Run("full report", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return taxRows(), nil
			},
			neighbourhoodParents: func(_ context.Context, code string, _ int) ([]domain.RawRecord, error) {
				assert.Equal(t, "017", code)
				return neighbourRows(), nil
			},
			coordinates: func(_ context.Context, pcoord string) (*domain.Coordinates, error) {
				assert.Equal(t, "12345678", pcoord)
				return &domain.Coordinates{Lat: 49.2827, Lon: -123.1093}, nil
			},
		})

		report, err := svc.Report(context.Background(), 128, "W CORDOVA ST", "")
		require.NoError(t, err)

		assert.NotEmpty(t, report.ID)
		assert.Equal(t, fakeClock.Now(), report.GeneratedAt)
		assert.False(t, report.RequiresUnitNumber)

		require.NotNil(t, report.Summary)
		assert.Equal(t, "029-123-456", report.Summary.PID)
		assert.Equal(t, "RS-1", report.Summary.ZoningDistrict)
		assert.Equal(t, "1995", report.Summary.YearBuilt)
		assert.Equal(t, "2025", report.Summary.ReportYear)
		assert.Equal(t, "$1,301.75", report.Summary.TaxLevy)

		require.Len(t, report.History, 2)
		assert.NotNil(t, report.ValueFigure)
		assert.NotNil(t, report.ChangeFigure)
		assert.NotNil(t, report.MapFigure)
	})

	t.Run("unit required without unit number", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return []domain.RawRecord{{FromCivicNumber: sptr("301")}}, nil
			},
		})

		report, err := svc.Report(context.Background(), 128, "W CORDOVA ST", "")
		require.NoError(t, err)

		assert.True(t, report.RequiresUnitNumber)
		assert.Nil(t, report.Summary)
		assert.Nil(t, report.ValueFigure)
	})

	t.Run("unit passed through when required", func(t *testing.T) {
		var gotUnit string
		svc := newTestService(&stubFetcher{
			propertyHistory: func(_ context.Context, _ int, _, unit string) ([]domain.RawRecord, error) {
				if unit == "" {
					// Disambiguation pass.
					return []domain.RawRecord{{FromCivicNumber: sptr("301")}}, nil
				}
				gotUnit = unit
				return taxRows(), nil
			},
			neighbourhoodParents: func(context.Context, string, int) ([]domain.RawRecord, error) {
				return neighbourRows(), nil
			},
			coordinates: func(context.Context, string) (*domain.Coordinates, error) {
				return nil, nil
			},
		})

		report, err := svc.Report(context.Background(), 128, "W CORDOVA ST", "301")
		require.NoError(t, err)
		assert.Equal(t, "301", gotUnit)
		assert.False(t, report.RequiresUnitNumber)
	})

	t.Run("not found on empty history", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return nil, nil
			},
		})

		_, err := svc.Report(context.Background(), 999, "NOWHERE ST", "")
		require.Error(t, err)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindNotFound, appErr.Kind)
	})

	t.Run("history fetch failure resolves as not found", func(t *testing.T) {
		calls := 0
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				calls++
				return nil, errors.New("upstream down")
			},
		})

		_, err := svc.Report(context.Background(), 128, "W CORDOVA ST", "")
		require.Error(t, err)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindNotFound, appErr.Kind)
		assert.Equal(t, 2, calls) // disambiguation + history
	})

	t.Run("no neighbourhood code skips comparison", func(t *testing.T) {
		rows := taxRows()
		for i := range rows {
			rows[i].NeighbourhoodCode = ""
		}
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return rows, nil
			},
			coordinates: func(context.Context, string) (*domain.Coordinates, error) {
				return nil, nil
			},
		})

		report, err := svc.Report(context.Background(), 128, "W CORDOVA ST", "")
		require.NoError(t, err)
		assert.Nil(t, report.ChangeFigure)
		assert.NotNil(t, report.ValueFigure)
	})

	t.Run("neighbourhood series with no observations surfaces validation error", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return taxRows(), nil
			},
			neighbourhoodParents: func(context.Context, string, int) ([]domain.RawRecord, error) {
				return nil, errors.New("upstream down")
			},
			coordinates: func(context.Context, string) (*domain.Coordinates, error) {
				return nil, nil
			},
		})

		// All years degrade to empty lists, so there are no observations and
		// density estimation reports a validation error.
		_, err := svc.Report(context.Background(), 128, "W CORDOVA ST", "")
		require.Error(t, err)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
	})

	t.Run("coordinate failure omits map", func(t *testing.T) {
		svc := newTestService(&stubFetcher{
			propertyHistory: func(context.Context, int, string, string) ([]domain.RawRecord, error) {
				return taxRows(), nil
			},
			neighbourhoodParents: func(context.Context, string, int) ([]domain.RawRecord, error) {
				return neighbourRows(), nil
			},
			coordinates: func(context.Context, string) (*domain.Coordinates, error) {
				return nil, errors.New("geometry service down")
			},
		})

		report, err := svc.Report(context.Background(), 128, "W CORDOVA ST", "")
		require.NoError(t, err)
		assert.Nil(t, report.MapFigure)
		assert.NotNil(t, report.ChangeFigure)
	})
}

func TestService_CheckReadiness(t *testing.T) {
	t.Run("latches after first success", func(t *testing.T) {
		probes := 0
		svc := newTestService(&stubFetcher{
			probe: func(context.Context) error {
				probes++
				return nil
			},
		})

		require.NoError(t, svc.CheckReadiness(context.Background()))
		require.NoError(t, svc.CheckReadiness(context.Background()))
		assert.Equal(t, 1, probes)
	})

	t.Run("reports probe failure until success", func(t *testing.T) {
		var probeErr error = errors.New("unreachable")
		svc := newTestService(&stubFetcher{
			probe: func(context.Context) error { return probeErr },
		})

		require.Error(t, svc.CheckReadiness(context.Background()))

		probeErr = nil
		require.NoError(t, svc.CheckReadiness(context.Background()))
	})
}

func TestAverageValueChange(t *testing.T) {
	records := []domain.PropertyRecord{
		{ValueChange: fptr(2.0)},
		{ValueChange: nil},
		{ValueChange: fptr(4.0)},
	}
	assert.InDelta(t, 3.0, averageValueChange(records), 1e-9)
	assert.Zero(t, averageValueChange(nil))
}

func TestFormatTaxLevy(t *testing.T) {
	assert.Equal(t, "N/A", formatTaxLevy(nil))
	assert.Equal(t, "$1,234.50", formatTaxLevy(fptr(1234.5)))
	assert.Equal(t, "$987.00", formatTaxLevy(fptr(987)))
	assert.Equal(t, "$1,234,567.89", formatTaxLevy(fptr(1234567.89)))
}
