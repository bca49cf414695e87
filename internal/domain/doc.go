// Package domain models City of Vancouver property-tax assessment data.
//
// # Data Source
//
// Records come from the Vancouver open-data explore API
// (https://opendata.vancouver.ca/api/explore/v2.1), datasets
// "property-tax-report" (assessments) and "property-addresses" (geometry).
// The API accepts a SQL-ish `where` filter plus optional `order_by` and
// `group_by`, and returns a JSON body with a `results` array of rows.
//
// # Dataset Conventions
//
// Address ranges:
//
//	A tax record covers a civic-number range [from_civic_number,
//	to_civic_number] on a street. Undivided ("parent") parcels carry a null
//	from_civic_number; subdivided/strata records set it to the unit's number.
//	Neighbourhood-level statistics use parent records only, so strata lots
//	don't double-count a building.
//
// Valuations:
//
//	Each row carries four raw figures: current and previous land and
//	improvement values. Any of them may be null or absent; missing figures
//	are treated as zero when summing. Derived fields:
//
//	  total_value    = current_land_value + current_improvement_value
//	  previous_value = previous_land_value + previous_improvement_value
//	  value_change   = round((total_value/previous_value - 1) * 100, 2)
//
//	value_change is null when previous_value is not strictly positive, which
//	also covers the division-by-zero case for newly assessed parcels.
//
// Report years:
//
//	The dataset publishes one row per parcel per report_year (a text field in
//	the source). The most recent row for a property determines its current
//	neighbourhood_code and land_coordinate.
//
// Geometry:
//
//	land_coordinate joins to the property-addresses dataset's pcoord field.
//	Coordinates arrive GeoJSON-style as [longitude, latitude].
//
// # Density Estimation
//
// The neighbourhood comparison evaluates one Gaussian kernel density
// estimate per report year over a shared 1000-point grid spanning
// [min-2, max+2] of all observed value changes, using Scott's rule for the
// bandwidth. Years with fewer than two observations are skipped; an entirely
// empty observation set is a caller error. See [EstimateDensities].
package domain
