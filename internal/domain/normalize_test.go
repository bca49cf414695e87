package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func sptr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	t.Run("derives totals and value change", func(t *testing.T) {
		raw := RawRecord{
			PID:                      "029-123-456",
			LegalType:                "LAND",
			ZoningDistrict:           "RS-1",
			ToCivicNumber:            "128",
			StreetName:               "W CORDOVA ST",
			CurrentLandValue:         fptr(500000),
			CurrentImprovementValue:  fptr(300000),
			PreviousLandValue:        fptr(480000),
			PreviousImprovementValue: fptr(290000),
			NeighbourhoodCode:        "017",
			ReportYear:               "2025",
		}

		rec := Normalize(raw)

		assert.Equal(t, 800000.0, rec.TotalValue)
		assert.Equal(t, 770000.0, rec.PreviousValue)
		require.NotNil(t, rec.ValueChange)
		assert.Equal(t, 3.9, *rec.ValueChange)
	})

	t.Run("projects source fields unchanged", func(t *testing.T) {
		raw := RawRecord{
			PID:               "029-123-456",
			LegalType:         "STRATA",
			LandCoordinate:    "12345678",
			ZoningDistrict:    "CD-1",
			FromCivicNumber:   sptr("301"),
			ToCivicNumber:     "128",
			StreetName:        "W CORDOVA ST",
			YearBuilt:         "1996",
			TaxLevy:           fptr(4321.09),
			NeighbourhoodCode: "017",
			ReportYear:        "2024",
		}

		rec := Normalize(raw)

		assert.Equal(t, "029-123-456", rec.PID)
		assert.Equal(t, "STRATA", rec.LegalType)
		assert.Equal(t, "12345678", rec.LandCoordinate)
		assert.Equal(t, "CD-1", rec.ZoningDistrict)
		require.NotNil(t, rec.FromCivicNumber)
		assert.Equal(t, "301", *rec.FromCivicNumber)
		assert.Equal(t, "1996", rec.YearBuilt)
		require.NotNil(t, rec.TaxLevy)
		assert.Equal(t, 4321.09, *rec.TaxLevy)
		assert.Equal(t, "2024", rec.ReportYear)
	})

	t.Run("missing numerics count as zero", func(t *testing.T) {
		raw := RawRecord{
			CurrentLandValue: fptr(650000),
			// current improvement, previous land, previous improvement absent
		}

		rec := Normalize(raw)

		assert.Equal(t, 650000.0, rec.TotalValue)
		assert.Equal(t, 0.0, rec.PreviousValue)
		assert.Nil(t, rec.CurrentImprovementValue)
	})

	t.Run("no previous value yields nil change, not a division error", func(t *testing.T) {
		raw := RawRecord{
			CurrentLandValue:         fptr(500000),
			CurrentImprovementValue:  fptr(300000),
			PreviousLandValue:        fptr(0),
			PreviousImprovementValue: fptr(0),
		}

		rec := Normalize(raw)

		assert.Equal(t, 800000.0, rec.TotalValue)
		assert.Equal(t, 0.0, rec.PreviousValue)
		assert.Nil(t, rec.ValueChange)
	})

	t.Run("empty row normalizes without error", func(t *testing.T) {
		rec := Normalize(RawRecord{})

		assert.Equal(t, 0.0, rec.TotalValue)
		assert.Equal(t, 0.0, rec.PreviousValue)
		assert.Nil(t, rec.ValueChange)
	})

	t.Run("change is rounded to two decimals", func(t *testing.T) {
		raw := RawRecord{
			CurrentLandValue:  fptr(1000000),
			PreviousLandValue: fptr(300000),
		}

		rec := Normalize(raw)

		require.NotNil(t, rec.ValueChange)
		assert.Equal(t, 233.33, *rec.ValueChange)
	})
}

func TestNormalizeAll(t *testing.T) {
	raws := []RawRecord{
		{ReportYear: "2023", CurrentLandValue: fptr(100)},
		{ReportYear: "2024", CurrentLandValue: fptr(200)},
	}

	records := NormalizeAll(raws)

	require.Len(t, records, 2)
	assert.Equal(t, "2023", records[0].ReportYear)
	assert.Equal(t, 100.0, records[0].TotalValue)
	assert.Equal(t, "2024", records[1].ReportYear)
	assert.Equal(t, 200.0, records[1].TotalValue)
}
