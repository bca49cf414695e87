package domain

// RawRecord is the projection of a property-tax-report row as returned by
// the open-data API. Numeric fields may be null or absent in the source,
// so they decode to pointers.
type RawRecord struct {
	PID                      string   `json:"pid"`
	LegalType                string   `json:"legal_type"`
	LandCoordinate           string   `json:"land_coordinate"`
	ZoningDistrict           string   `json:"zoning_district"`
	FromCivicNumber          *string  `json:"from_civic_number"`
	ToCivicNumber            string   `json:"to_civic_number"`
	StreetName               string   `json:"street_name"`
	CurrentLandValue         *float64 `json:"current_land_value"`
	CurrentImprovementValue  *float64 `json:"current_improvement_value"`
	PreviousLandValue        *float64 `json:"previous_land_value"`
	PreviousImprovementValue *float64 `json:"previous_improvement_value"`
	YearBuilt                string   `json:"year_built"`
	TaxLevy                  *float64 `json:"tax_levy"`
	NeighbourhoodCode        string   `json:"neighbourhood_code"`
	ReportYear               string   `json:"report_year"`
}

// PropertyRecord is a normalized assessment row: the projected source fields
// plus the three derived valuation fields. Records are immutable once built.
type PropertyRecord struct {
	PID                      string   `json:"pid"`
	LegalType                string   `json:"legal_type"`
	LandCoordinate           string   `json:"land_coordinate"`
	ZoningDistrict           string   `json:"zoning_district"`
	FromCivicNumber          *string  `json:"from_civic_number"`
	ToCivicNumber            string   `json:"to_civic_number"`
	StreetName               string   `json:"street_name"`
	CurrentLandValue         *float64 `json:"current_land_value"`
	CurrentImprovementValue  *float64 `json:"current_improvement_value"`
	PreviousLandValue        *float64 `json:"previous_land_value"`
	PreviousImprovementValue *float64 `json:"previous_improvement_value"`
	YearBuilt                string   `json:"year_built"`
	TaxLevy                  *float64 `json:"tax_levy"`
	NeighbourhoodCode        string   `json:"neighbourhood_code"`
	ReportYear               string   `json:"report_year"`

	// Derived fields.
	TotalValue    float64  `json:"total_value"`
	PreviousValue float64  `json:"previous_value"`
	ValueChange   *float64 `json:"value_change"`
}

// NeighbourhoodSeries maps a report year to the parent records of a single
// neighbourhood for that year. Built per query and discarded after rendering.
type NeighbourhoodSeries map[int][]PropertyRecord

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
