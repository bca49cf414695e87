package domain

import "math"

// Normalize projects a raw row into a PropertyRecord and computes the derived
// valuation fields. Missing or null numeric inputs count as zero toward the
// sums; the original pointers are preserved so callers can tell "absent" from
// "zero". Malformed rows never error: absent fields simply stay zero-valued.
func Normalize(raw RawRecord) PropertyRecord {
	rec := PropertyRecord{
		PID:                      raw.PID,
		LegalType:                raw.LegalType,
		LandCoordinate:           raw.LandCoordinate,
		ZoningDistrict:           raw.ZoningDistrict,
		FromCivicNumber:          raw.FromCivicNumber,
		ToCivicNumber:            raw.ToCivicNumber,
		StreetName:               raw.StreetName,
		CurrentLandValue:         raw.CurrentLandValue,
		CurrentImprovementValue:  raw.CurrentImprovementValue,
		PreviousLandValue:        raw.PreviousLandValue,
		PreviousImprovementValue: raw.PreviousImprovementValue,
		YearBuilt:                raw.YearBuilt,
		TaxLevy:                  raw.TaxLevy,
		NeighbourhoodCode:        raw.NeighbourhoodCode,
		ReportYear:               raw.ReportYear,
	}

	rec.TotalValue = valueOrZero(raw.CurrentLandValue) + valueOrZero(raw.CurrentImprovementValue)
	rec.PreviousValue = valueOrZero(raw.PreviousLandValue) + valueOrZero(raw.PreviousImprovementValue)
	rec.ValueChange = percentChange(rec.TotalValue, rec.PreviousValue)

	return rec
}

// NormalizeAll normalizes a batch of raw rows, preserving order.
func NormalizeAll(raws []RawRecord) []PropertyRecord {
	records := make([]PropertyRecord, len(raws))
	for i, raw := range raws {
		records[i] = Normalize(raw)
	}
	return records
}

// percentChange returns round((total/previous - 1) * 100, 2), or nil when
// previous is not strictly positive. No previous assessment means there is
// nothing to compare against, and previous == 0 would divide by zero.
func percentChange(total, previous float64) *float64 {
	if previous <= 0 {
		return nil
	}
	change := round2((total/previous - 1) * 100)
	return &change
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
